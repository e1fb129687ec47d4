package store

import (
	"context"
	"fmt"
)

// Section classifies which part of a judgment a chunk was drawn from.
type Section string

const (
	SectionFacts    Section = "facts"
	SectionIssues   Section = "issues"
	SectionAnalysis Section = "analysis"
	SectionHolding  Section = "holding"
	SectionGeneral  Section = "general"
)

// Chunk is the retrieval unit: a contiguous passage of a judgment with
// enough metadata to present a result without a second lookup.
type Chunk struct {
	// ChunkID is the stable opaque identifier shared by the lexical index,
	// the vector store, and the registry.
	ChunkID string `json:"chunk_id"`

	// Text is the chunk passage.
	Text string `json:"text"`

	// ParagraphIDs lists the source paragraph numbers, deduplicated,
	// in document order.
	ParagraphIDs []int `json:"paragraph_ids"`

	// TokenCount is the token length of Text under the chunking encoding.
	TokenCount int `json:"token_count"`

	Section   Section `json:"section"`
	CaseTitle string  `json:"case_title"`

	// CitationCount is the number of citations detected in the passage.
	CitationCount int `json:"citation_count"`
}

// LexicalResult is a single BM25 hit.
type LexicalResult struct {
	ChunkID string
	// Score is the raw BM25 score, unbounded and non-negative.
	Score float64
}

// SemanticHit is a single vector store hit.
type SemanticHit struct {
	ChunkID string
	// Score is the cosine similarity in [-1, 1].
	Score float64
	// Distance is the raw cosine distance reported by the backend.
	Distance float32
}

// SemanticIndex is the uniform contract over an approximate-nearest-neighbor
// backend holding one fixed-dimension vector per chunk.
type SemanticIndex interface {
	// Upsert inserts or replaces vectors keyed by chunk ID.
	Upsert(ctx context.Context, ids []string, vectors [][]float32) error

	// Search returns up to k nearest chunks by cosine similarity,
	// descending. A search against an empty index returns no hits.
	Search(ctx context.Context, query []float32, k int) ([]SemanticHit, error)

	// Reset drops all vectors.
	Reset(ctx context.Context) error

	// Count reports the number of live vectors.
	Count() int

	Close() error
}

// VectorPersister is implemented by semantic indexes that can snapshot
// their vectors to disk and restore them on startup.
type VectorPersister interface {
	Save(path string) error
	Load(path string) error
	Contains(chunkID string) bool
}

// ErrDimensionMismatch reports a vector whose length disagrees with the
// index dimensionality.
type ErrDimensionMismatch struct {
	Expected int
	Got      int
}

func (e ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("vector dimension mismatch: expected %d, got %d", e.Expected, e.Got)
}
