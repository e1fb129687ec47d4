package store

import (
	"math"
	"sort"
	"strings"

	caseerr "github.com/caselens/caselens/internal/errors"
)

// BM25 tuning parameters. K1 controls term-frequency saturation, B the
// strength of document-length normalization. Epsilon floors negative IDF
// values so very common terms still contribute a small positive weight.
const (
	DefaultBM25K1      = 1.5
	DefaultBM25B       = 0.75
	DefaultBM25Epsilon = 0.25
)

// lexicalDoc is the per-chunk state the scorer needs: term frequencies
// and the document length in tokens.
type lexicalDoc struct {
	chunkID   string
	termFreqs map[string]int
	length    int
}

// LexicalIndex is an immutable Okapi BM25 index over a chunk corpus.
// It is built once from a complete corpus and never mutated; rebuilds
// construct a fresh index and swap it in at the engine level. All
// methods are safe for concurrent use after Build returns.
type LexicalIndex struct {
	k1      float64
	b       float64
	epsilon float64

	docs      []lexicalDoc
	idf       map[string]float64
	avgDocLen float64
}

// LexicalParams carries the BM25 tuning parameters for a build.
// Zero values fall back to the defaults.
type LexicalParams struct {
	K1      float64
	B       float64
	Epsilon float64
}

// BuildLexicalIndex tokenizes the corpus and computes the BM25 statistics.
// Chunk order is preserved: it defines tie-breaking for equal scores.
// Building over an empty corpus is a configuration fault, not a silent
// success, because every later search would return nothing.
func BuildLexicalIndex(chunks []Chunk, params LexicalParams) (*LexicalIndex, error) {
	if len(chunks) == 0 {
		return nil, caseerr.EmptyCorpusError("cannot build lexical index over empty corpus")
	}

	if params.K1 == 0 {
		params.K1 = DefaultBM25K1
	}
	if params.B == 0 {
		params.B = DefaultBM25B
	}
	if params.Epsilon == 0 {
		params.Epsilon = DefaultBM25Epsilon
	}

	idx := &LexicalIndex{
		k1:      params.K1,
		b:       params.B,
		epsilon: params.Epsilon,
		docs:    make([]lexicalDoc, 0, len(chunks)),
		idf:     make(map[string]float64),
	}

	// First pass: term frequencies per document and document frequencies.
	docFreqs := make(map[string]int)
	totalLen := 0
	for _, chunk := range chunks {
		tokens := Tokenize(chunk.Text)
		tf := make(map[string]int, len(tokens))
		for _, tok := range tokens {
			tf[tok]++
		}
		for term := range tf {
			docFreqs[term]++
		}
		totalLen += len(tokens)
		idx.docs = append(idx.docs, lexicalDoc{
			chunkID:   chunk.ChunkID,
			termFreqs: tf,
			length:    len(tokens),
		})
	}
	idx.avgDocLen = float64(totalLen) / float64(len(idx.docs))

	// Second pass: IDF with the Okapi epsilon correction. Terms present
	// in more than half the corpus get a negative raw IDF; those are
	// floored at epsilon times the mean positive IDF so raw scores stay
	// non-negative.
	n := float64(len(idx.docs))
	var positiveSum float64
	var positiveCount int
	var negative []string
	for term, df := range docFreqs {
		v := math.Log(n-float64(df)+0.5) - math.Log(float64(df)+0.5)
		idx.idf[term] = v
		if v < 0 {
			negative = append(negative, term)
		} else {
			positiveSum += v
			positiveCount++
		}
	}
	var floor float64
	if positiveCount > 0 {
		floor = idx.epsilon * (positiveSum / float64(positiveCount))
	}
	for _, term := range negative {
		idx.idf[term] = floor
	}

	return idx, nil
}

// Size returns the number of indexed chunks.
func (idx *LexicalIndex) Size() int {
	return len(idx.docs)
}

// Search scores every document in the corpus against the query and
// returns the top k by raw BM25 score. Ties keep corpus insertion order.
// Zero-scoring documents are eligible: when fewer than k documents match
// any query term, the remainder of the top-k is filled in corpus order.
// An empty or whitespace-only query returns no results.
func (idx *LexicalIndex) Search(query string, k int) []LexicalResult {
	if k <= 0 || strings.TrimSpace(query) == "" {
		return nil
	}

	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	scores := make([]float64, len(idx.docs))
	for _, term := range queryTokens {
		idf, ok := idx.idf[term]
		if !ok {
			continue
		}
		for i := range idx.docs {
			tf := float64(idx.docs[i].termFreqs[term])
			if tf == 0 {
				continue
			}
			docLen := float64(idx.docs[i].length)
			norm := 1 - idx.b + idx.b*docLen/idx.avgDocLen
			scores[i] += idf * (tf * (idx.k1 + 1)) / (tf + idx.k1*norm)
		}
	}

	order := make([]int, len(idx.docs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}
	results := make([]LexicalResult, 0, k)
	for _, i := range order[:k] {
		results = append(results, LexicalResult{
			ChunkID: idx.docs[i].chunkID,
			Score:   scores[i],
		})
	}
	return results
}
