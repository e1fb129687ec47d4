package judgment

import (
	"regexp"
	"strings"
)

// cleanPatterns strip per-page boilerplate that PDF extraction leaves
// behind: aggregator watermarks, e-signature blocks, page footers, and
// counsel listings. Applied line-anchored and case-insensitively.
var cleanPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?im)Indian Kanoon.*`),
	regexp.MustCompile(`(?im)Signature Not Verified.*`),
	regexp.MustCompile(`(?im)Digitally Signed.*`),
	regexp.MustCompile(`(?im)Signing Date.*`),
	regexp.MustCompile(`(?im)Page \d+ of \d+`),
	regexp.MustCompile(`(?im)^\s*\d{1,2}:\d{2}:\d{2}\s*$`),
	regexp.MustCompile(`(?im)W\.P\.\(C\).+connected matters`),
	regexp.MustCompile(`(?im)\bAdvocates?\b.*`),
}

// judgmentStartPattern marks where the operative judgment text begins,
// past cause titles and appearance listings.
var judgmentStartPattern = regexp.MustCompile(`(?i)\bJUDGMENT\b|\bORDER\b|Per [A-Za-z ]+ J|1\.\s+The|1\.\s+In the`)

var blockSeparator = regexp.MustCompile(`\n{2,}`)

// CleanText removes boilerplate from raw judgment text.
func CleanText(text string) string {
	for _, pat := range cleanPatterns {
		text = pat.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}

// SplitBlocks splits text into non-empty blocks on blank lines.
func SplitBlocks(text string) []string {
	raw := blockSeparator.Split(text, -1)
	blocks := make([]string, 0, len(raw))
	for _, b := range raw {
		b = strings.TrimSpace(b)
		if b != "" {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// DetectStart returns the index of the first block that looks like the
// start of the operative judgment, or 0 when no marker is found so the
// whole document is kept.
func DetectStart(blocks []string) int {
	for i, b := range blocks {
		if judgmentStartPattern.MatchString(b) {
			return i
		}
	}
	return 0
}

// ExtractParagraphs cleans raw text, drops leading material before the
// judgment proper, and numbers the remaining blocks from 1.
func ExtractParagraphs(raw string) []Paragraph {
	blocks := make([]string, 0)
	for _, b := range SplitBlocks(raw) {
		if cleaned := CleanText(b); cleaned != "" {
			blocks = append(blocks, cleaned)
		}
	}
	blocks = blocks[DetectStart(blocks):]

	paras := make([]Paragraph, 0, len(blocks))
	for i, b := range blocks {
		paras = append(paras, Paragraph{Num: i + 1, Text: b})
	}
	return paras
}
