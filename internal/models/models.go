package models

import "time"

// Document is one source file after text extraction, before chunking.
type Document struct {
	ID        string
	Text      string
	PageCount int
}

// Chunk is a bounded contiguous segment of a document's text, the atomic
// unit of retrieval.
type Chunk struct {
	ChunkID     string    `json:"chunk_id"`
	DocumentID  string    `json:"document_id"`
	Text        string    `json:"text"`
	StartOffset int       `json:"start_offset"`
	Vector      []float32 `json:"vector,omitempty"`
}

// ScoredChunk pairs a chunk with its cosine similarity to a query vector.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// TokenUsage is provider-reported (or estimated) token accounting.
type TokenUsage struct {
	Input  int `json:"input"`
	Output int `json:"output"`
}

// Metrics carries per-query timing and token metadata.
type Metrics struct {
	ResponseTime float64    `json:"response_time"`
	Tokens       TokenUsage `json:"tokens"`
}

// Answer is the final response for one question.
type Answer struct {
	Answer     string   `json:"answer"`
	Sources    []string `json:"sources"`
	ChunksUsed int      `json:"chunks_used"`
	ModelUsed  string   `json:"model_used"`
	Metrics    Metrics  `json:"metrics"`
	RequestID  string   `json:"-"`
	GeneratedAt time.Time `json:"-"`
}

// ErrorResponse is the wire shape for failed requests.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
