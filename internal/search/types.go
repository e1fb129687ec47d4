package search

import (
	"github.com/caselens/caselens/internal/store"
)

// PreviewLength is the number of characters of chunk text included in a
// hydrated result.
const PreviewLength = 200

// Default fusion weights. Lexical and semantic weights need not sum to 1;
// they are applied as-is to the normalized scores.
const (
	DefaultLexicalWeight  = 0.4
	DefaultSemanticWeight = 0.6
	DefaultTopK           = 5
)

// Weights holds the linear combination coefficients for the fusion ranker.
type Weights struct {
	Lexical  float64
	Semantic float64
}

// DefaultWeights returns the standard lexical/semantic split.
func DefaultWeights() Weights {
	return Weights{Lexical: DefaultLexicalWeight, Semantic: DefaultSemanticWeight}
}

// Result is one hydrated entry in a ranked response.
type Result struct {
	ChunkID     string  `json:"chunk_id"`
	Score       float64 `json:"score"`
	TextPreview string  `json:"text_preview"`
	Section     string  `json:"section"`
	CaseTitle   string  `json:"case_title"`
}

// Response is the outcome of one search. Degraded is set when the semantic
// backend failed transiently and the results reflect lexical ranking only.
type Response struct {
	Results        []Result `json:"results"`
	Degraded       bool     `json:"degraded"`
	DegradedReason string   `json:"degraded_reason,omitempty"`
}

// Options controls a single search call.
type Options struct {
	// TopK is the maximum number of results to return. Values <= 0 fall
	// back to DefaultTopK.
	TopK int

	// LexicalOnly skips the semantic ranker entirely. The response is not
	// marked degraded; the caller asked for keyword ranking.
	LexicalOnly bool
}

func (o *Options) applyDefaults() {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
}

// scoreRecord is the transient per-chunk accumulator used during fusion.
type scoreRecord struct {
	chunkID      string
	lexicalNorm  float64
	semanticNorm float64
	fused        float64
}

// snapshot is the immutable pair of registry and lexical index published
// atomically by a rebuild. Searches always observe a consistent pair.
type snapshot struct {
	registry *store.Registry
	lexical  *store.LexicalIndex
}
