package chunk

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/caselens/caselens/internal/judgment"
	"github.com/caselens/caselens/internal/store"
)

// Default chunk window in tokens.
const (
	DefaultMinTokens = 200
	DefaultMaxTokens = 400
)

// Chunker converts parsed judgments into chunks.
type Chunker struct {
	minTokens int
	maxTokens int
	counter   TokenCounter
}

// NewChunker creates a chunker with the given token window.
// Non-positive bounds fall back to the defaults.
func NewChunker(minTokens, maxTokens int, counter TokenCounter) *Chunker {
	if minTokens <= 0 {
		minTokens = DefaultMinTokens
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if counter == nil {
		counter = heuristicCounter{}
	}
	return &Chunker{minTokens: minTokens, maxTokens: maxTokens, counter: counter}
}

// sentenceBoundary splits after terminal punctuation followed by space
// and an uppercase letter or digit. Abbreviations like "No. 5" will
// occasionally split early; for windowing purposes that is harmless.
var sentenceBoundary = regexp.MustCompile(`([.!?])\s+([A-Z0-9])`)

// splitSentences breaks a paragraph into sentences.
func splitSentences(text string) []string {
	marked := sentenceBoundary.ReplaceAllString(text, "$1\x00$2")
	parts := strings.Split(marked, "\x00")
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// Build converts a judgment's paragraphs into chunks. Chunk IDs embed a
// case slug so IDs stay unique across a multi-judgment corpus. Every
// chunk records its source paragraphs, section classification, and case
// metadata for hydration at query time.
func (c *Chunker) Build(j *judgment.Judgment, caseSlug string) []store.Chunk {
	var chunks []store.Chunk
	var buffer strings.Builder
	var bufferParas []int
	bufferTokens := 0
	nextID := 1

	flush := func() {
		text := strings.TrimSpace(buffer.String())
		if text == "" {
			return
		}
		chunks = append(chunks, store.Chunk{
			ChunkID:       fmt.Sprintf("%s_chunk_%d", caseSlug, nextID),
			Text:          text,
			ParagraphIDs:  dedupeSorted(bufferParas),
			TokenCount:    c.counter.Count(text),
			Section:       DetectSection(text),
			CaseTitle:     j.Title,
			CitationCount: len(j.Citations),
		})
		nextID++
		buffer.Reset()
		bufferParas = nil
		bufferTokens = 0
	}

	appendText := func(text string, paraNum, tokens int) {
		if buffer.Len() > 0 {
			buffer.WriteString(" ")
		}
		buffer.WriteString(text)
		bufferParas = append(bufferParas, paraNum)
		bufferTokens += tokens
	}

	for _, para := range j.Paragraphs {
		text := strings.TrimSpace(para.Text)
		if text == "" {
			continue
		}

		paraTokens := c.counter.Count(text)

		if paraTokens > c.maxTokens {
			for _, sentence := range splitSentences(text) {
				sentTokens := c.counter.Count(sentence)
				if bufferTokens+sentTokens > c.maxTokens {
					flush()
				}
				appendText(sentence, para.Num, sentTokens)
			}
			continue
		}

		if bufferTokens+paraTokens > c.maxTokens {
			flush()
		}
		appendText(text, para.Num, paraTokens)
	}
	flush()

	return chunks
}

// dedupeSorted returns the unique paragraph numbers in ascending order.
func dedupeSorted(nums []int) []int {
	seen := make(map[int]bool, len(nums))
	out := make([]int, 0, len(nums))
	for _, n := range nums {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}

// DetectSection classifies a passage by keyword. The first matching
// class wins: facts, then issues, then analysis, then holding.
func DetectSection(text string) store.Section {
	t := strings.ToLower(text)

	switch {
	case strings.Contains(t, "facts") || strings.Contains(t, "background") || strings.Contains(t, "factual"):
		return store.SectionFacts
	case strings.Contains(t, "issue"):
		return store.SectionIssues
	case strings.Contains(t, "ratio") || strings.Contains(t, "reasoning") || strings.Contains(t, "analysis"):
		return store.SectionAnalysis
	case strings.Contains(t, "held") || strings.Contains(t, "final") || strings.Contains(t, "ordered"):
		return store.SectionHolding
	default:
		return store.SectionGeneral
	}
}
