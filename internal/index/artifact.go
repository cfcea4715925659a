package index

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"docnav/internal/errs"
	"docnav/internal/models"
)

// vectors are rounded to this many decimal places before encoding. The
// per-component error is at most 5e-6, far inside the 1e-4 tolerance the
// ranker can absorb, and the shorter decimals compress much better.
const vectorPrecision = 1e5

// Metadata describes how an artifact was built.
type Metadata struct {
	ModelID      string    `json:"model_id"`
	Dimension    int       `json:"dimension"`
	ChunkSize    int       `json:"chunk_size"`
	ChunkOverlap int       `json:"chunk_overlap"`
	TotalChunks  int       `json:"total_chunks"`
	BuiltAt      time.Time `json:"built_at"`
}

// Artifact is the complete persisted index: every chunk with its vector,
// plus build metadata. Immutable once loaded; replaced wholesale on rebuild.
type Artifact struct {
	Metadata Metadata       `json:"metadata"`
	Chunks   []models.Chunk `json:"chunks"`
}

// Encode serializes the artifact as gzipped JSON with quantized vectors.
func (a *Artifact) Encode() ([]byte, error) {
	quantized := make([]models.Chunk, len(a.Chunks))
	for i, c := range a.Chunks {
		c.Vector = quantize(c.Vector)
		quantized[i] = c
	}
	out := Artifact{Metadata: a.Metadata, Chunks: quantized}
	out.Metadata.TotalChunks = len(quantized)

	payload, err := json.Marshal(&out)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(payload); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a stored artifact and validates its shape before anything
// downstream sees it.
func Decode(data []byte) (*Artifact, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIndexCorrupt, err)
	}
	payload, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIndexCorrupt, err)
	}
	if err := zr.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIndexCorrupt, err)
	}
	var art Artifact
	if err := json.Unmarshal(payload, &art); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrIndexCorrupt, err)
	}
	for _, c := range art.Chunks {
		if len(c.Vector) != art.Metadata.Dimension {
			return nil, fmt.Errorf("%w: chunk %s has %d components, metadata says %d",
				errs.ErrDimensionMismatch, c.ChunkID, len(c.Vector), art.Metadata.Dimension)
		}
	}
	return &art, nil
}

func quantize(v []float32) []float32 {
	if v == nil {
		return nil
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(math.Round(float64(x)*vectorPrecision) / vectorPrecision)
	}
	return out
}
