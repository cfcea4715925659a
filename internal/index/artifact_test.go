package index

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"docnav/internal/errs"
	"docnav/internal/models"
)

func sampleArtifact() *Artifact {
	return &Artifact{
		Metadata: Metadata{
			ModelID:      "text-embedding-3-small",
			Dimension:    4,
			ChunkSize:    1000,
			ChunkOverlap: 100,
			BuiltAt:      time.Now().UTC(),
		},
		Chunks: []models.Chunk{
			{ChunkID: "a.pdf:0", DocumentID: "a.pdf", Text: "first", StartOffset: 0, Vector: []float32{0.123456789, -0.98765432, 0.5, 0.000001}},
			{ChunkID: "a.pdf:1", DocumentID: "a.pdf", Text: "second", StartOffset: 900, Vector: []float32{1, 0, -1, 0.25}},
			{ChunkID: "b.pdf:0", DocumentID: "b.pdf", Text: "third", StartOffset: 0, Vector: []float32{0.1, 0.2, 0.3, 0.4}},
		},
	}
}

func TestArtifactRoundTrip(t *testing.T) {
	art := sampleArtifact()

	data, err := art.Encode()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)

	require.Equal(t, len(art.Chunks), len(decoded.Chunks))
	require.Equal(t, len(art.Chunks), decoded.Metadata.TotalChunks)
	require.Equal(t, art.Metadata.ModelID, decoded.Metadata.ModelID)
	require.Equal(t, art.Metadata.Dimension, decoded.Metadata.Dimension)

	for i, c := range decoded.Chunks {
		require.Equal(t, art.Chunks[i].ChunkID, c.ChunkID)
		require.Equal(t, art.Chunks[i].DocumentID, c.DocumentID)
		require.Equal(t, art.Chunks[i].Text, c.Text)
		require.Equal(t, art.Chunks[i].StartOffset, c.StartOffset)
		require.Len(t, c.Vector, len(art.Chunks[i].Vector))
		for j := range c.Vector {
			require.InDelta(t, art.Chunks[i].Vector[j], c.Vector[j], 1e-4)
		}
	}
}

func TestArtifactRoundTripEmpty(t *testing.T) {
	art := &Artifact{Metadata: Metadata{ModelID: "m", Dimension: 4}}
	data, err := art.Encode()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.Empty(t, decoded.Chunks)
	require.Equal(t, 0, decoded.Metadata.TotalChunks)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not gzip at all"))
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.ErrIndexCorrupt))
}

func TestDecodeRejectsDimensionMismatch(t *testing.T) {
	art := sampleArtifact()
	art.Metadata.Dimension = 8

	data, err := art.Encode()
	require.NoError(t, err)

	_, err = Decode(data)
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.ErrDimensionMismatch))
}

func TestEncodeQuantizesWithinTolerance(t *testing.T) {
	art := &Artifact{
		Metadata: Metadata{Dimension: 2},
		Chunks: []models.Chunk{
			{ChunkID: "d:0", DocumentID: "d", Vector: []float32{0.123456789, 0.987654321}},
		},
	}
	data, err := art.Encode()
	require.NoError(t, err)

	decoded, err := Decode(data)
	require.NoError(t, err)
	require.InDelta(t, 0.1234568, decoded.Chunks[0].Vector[0], 1e-4)
	require.InDelta(t, 0.9876543, decoded.Chunks[0].Vector[1], 1e-4)

	// the input artifact must not be mutated by encoding
	require.Equal(t, float32(0.123456789), art.Chunks[0].Vector[0])
}
