package search

import (
	"fmt"
	"math"
	"sort"

	caseerr "github.com/caselens/caselens/internal/errors"
	"github.com/caselens/caselens/internal/store"
)

// fuseResults merges capped lexical and semantic candidate sets into one
// ranked list. Each set is max-normalized independently so the two signals
// become comparable, then combined linearly. A chunk present in only one set
// scores zero for the absent signal.
func fuseResults(lexical []store.LexicalResult, semantic []store.SemanticHit, weights Weights, topK int, registry *store.Registry) ([]Result, error) {
	lexMax := maxLexical(lexical)
	semMax := maxSemantic(semantic)

	records := make(map[string]*scoreRecord, len(lexical)+len(semantic))

	for _, lr := range lexical {
		records[lr.ChunkID] = &scoreRecord{
			chunkID:     lr.ChunkID,
			lexicalNorm: lr.Score / lexMax,
		}
	}
	for _, sh := range semantic {
		norm := sh.Score / semMax
		if norm < 0 {
			norm = 0
		}
		rec, ok := records[sh.ChunkID]
		if !ok {
			rec = &scoreRecord{chunkID: sh.ChunkID}
			records[sh.ChunkID] = rec
		}
		rec.semanticNorm = norm
	}

	// Every merged chunk id must resolve, including ids that will fall
	// below the top-k cut: an unresolvable id means the indexes and the
	// registry disagree about the corpus, and truncation must not mask
	// that.
	merged := make([]*scoreRecord, 0, len(records))
	for _, rec := range records {
		if !registry.Contains(rec.chunkID) {
			return nil, caseerr.ConsistencyError(
				fmt.Sprintf("ranker returned chunk %q not present in registry", rec.chunkID))
		}
		rec.fused = weights.Lexical*rec.lexicalNorm + weights.Semantic*rec.semanticNorm
		merged = append(merged, rec)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := merged[i], merged[j]
		if a.fused != b.fused {
			return a.fused > b.fused
		}
		if a.semanticNorm != b.semanticNorm {
			return a.semanticNorm > b.semanticNorm
		}
		return registry.Rank(a.chunkID) < registry.Rank(b.chunkID)
	})

	if len(merged) > topK {
		merged = merged[:topK]
	}

	return hydrate(merged, registry)
}

// hydrate resolves each fused record against the registry. A chunk identifier
// returned by a ranker but absent from the registry means the indexes and the
// registry disagree about the corpus, which is unrecoverable for this index
// generation.
func hydrate(records []*scoreRecord, registry *store.Registry) ([]Result, error) {
	results := make([]Result, 0, len(records))
	for _, rec := range records {
		chunk, ok := registry.Get(rec.chunkID)
		if !ok {
			return nil, caseerr.ConsistencyError(
				fmt.Sprintf("ranker returned chunk %q not present in registry", rec.chunkID))
		}
		results = append(results, Result{
			ChunkID:     rec.chunkID,
			Score:       round4(rec.fused),
			TextPreview: preview(chunk.Text),
			Section:     string(chunk.Section),
			CaseTitle:   chunk.CaseTitle,
		})
	}
	return results, nil
}

// maxLexical returns the normalization divisor for a lexical result set.
// Empty sets and non-positive maxima normalize against 1 so scores pass
// through unchanged instead of dividing by zero.
func maxLexical(results []store.LexicalResult) float64 {
	max := 0.0
	for _, r := range results {
		if r.Score > max {
			max = r.Score
		}
	}
	if max <= 0 {
		return 1
	}
	return max
}

func maxSemantic(hits []store.SemanticHit) float64 {
	max := 0.0
	for _, h := range hits {
		if h.Score > max {
			max = h.Score
		}
	}
	if max <= 0 {
		return 1
	}
	return max
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// preview returns the first PreviewLength characters of the chunk text.
// Truncation counts runes, not bytes, so section signs, accented names,
// and smart quotes never get cut mid-sequence.
func preview(text string) string {
	if len(text) <= PreviewLength {
		return text
	}
	seen := 0
	for i := range text {
		if seen == PreviewLength {
			return text[:i]
		}
		seen++
	}
	return text
}
