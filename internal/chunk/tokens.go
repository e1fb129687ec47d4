// Package chunk turns parsed judgments into retrieval-sized passages.
//
// Paragraphs are buffered into windows of roughly 200-400 tokens.
// Paragraphs longer than the window are split at sentence boundaries so
// a chunk never cuts a sentence in half.
package chunk

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TokenCounter counts tokens in text.
type TokenCounter interface {
	Count(text string) int
}

// tiktokenCounter counts tokens with an OpenAI BPE encoding.
type tiktokenCounter struct {
	enc *tiktoken.Tiktoken
}

func (c *tiktokenCounter) Count(text string) int {
	return len(c.enc.Encode(text, nil, nil))
}

// heuristicCounter approximates one token per four characters, the
// usual rule of thumb for English prose.
type heuristicCounter struct{}

func (heuristicCounter) Count(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}

var counterOnce sync.Once

// NewTokenCounter returns a counter for the given tiktoken encoding,
// falling back to a character heuristic when the encoding cannot be
// loaded (offline environments).
func NewTokenCounter(encoding string) TokenCounter {
	if encoding == "" {
		encoding = "cl100k_base"
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		counterOnce.Do(func() {
			slog.Warn("tiktoken encoding unavailable, using heuristic token counts",
				slog.String("encoding", encoding),
				slog.String("error", err.Error()))
		})
		return heuristicCounter{}
	}
	return &tiktokenCounter{enc: enc}
}
