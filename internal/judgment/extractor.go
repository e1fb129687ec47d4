package judgment

import (
	"context"
	"io"
	"strings"
)

// TextExtractor turns a source document into plain judgment text.
// PDF extraction lives behind this interface in an external service;
// the in-tree implementation handles plain text.
type TextExtractor interface {
	Extract(ctx context.Context, r io.Reader) (string, error)

	// Supports reports whether the extractor handles files with the
	// given extension (including the leading dot; "" for no extension).
	Supports(ext string) bool
}

// MetadataExtractor derives a structured judgment from raw text. The
// heuristic implementation uses pattern rules; an LLM-backed extractor
// can replace it without touching the pipeline.
type MetadataExtractor interface {
	ExtractMetadata(ctx context.Context, text string) (*Judgment, error)
}

// PlainTextExtractor reads UTF-8 judgment text as-is.
type PlainTextExtractor struct{}

func (PlainTextExtractor) Extract(_ context.Context, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (PlainTextExtractor) Supports(ext string) bool {
	switch strings.ToLower(ext) {
	case "", ".txt", ".text":
		return true
	default:
		return false
	}
}

// HeuristicExtractor derives metadata with the pattern rules in this
// package.
type HeuristicExtractor struct{}

func (HeuristicExtractor) ExtractMetadata(_ context.Context, text string) (*Judgment, error) {
	return Parse(text), nil
}

var (
	_ TextExtractor     = PlainTextExtractor{}
	_ MetadataExtractor = HeuristicExtractor{}
)
