package chunk

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caselens/caselens/internal/judgment"
	"github.com/caselens/caselens/internal/store"
)

// wordCounter counts whitespace-separated words, making token budgets
// easy to reason about in tests.
type wordCounter struct{}

func (wordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}

func testJudgment(paras ...string) *judgment.Judgment {
	j := &judgment.Judgment{
		Title:     "Ramesh Kumar v. State",
		Citations: []string{"(2019) 7 SCC 1", "AIR 2015 SC 3081"},
	}
	for i, p := range paras {
		j.Paragraphs = append(j.Paragraphs, judgment.Paragraph{Num: i + 1, Text: p})
	}
	return j
}

func TestChunker_BuffersSmallParagraphs(t *testing.T) {
	c := NewChunker(5, 20, wordCounter{})
	j := testJudgment(words(8), words(8), words(8))

	chunks := c.Build(j, "ramesh")
	require.Len(t, chunks, 2)

	// First two paragraphs fit one window, the third overflows into a
	// second chunk.
	assert.Equal(t, []int{1, 2}, chunks[0].ParagraphIDs)
	assert.Equal(t, []int{3}, chunks[1].ParagraphIDs)
	assert.Equal(t, "ramesh_chunk_1", chunks[0].ChunkID)
	assert.Equal(t, "ramesh_chunk_2", chunks[1].ChunkID)
}

func TestChunker_SplitsLongParagraphBySentence(t *testing.T) {
	c := NewChunker(5, 10, wordCounter{})
	// One paragraph of 4 sentences, 6 words each: 24 tokens > max 10.
	para := "Alpha one two three four five. Bravo one two three four five. Charlie one two three four five. Delta one two three four five."
	j := testJudgment(para)

	chunks := c.Build(j, "case")
	require.Len(t, chunks, 4)
	for _, ch := range chunks {
		assert.LessOrEqual(t, ch.TokenCount, 10)
		assert.Equal(t, []int{1}, ch.ParagraphIDs)
	}
	assert.True(t, strings.HasPrefix(chunks[0].Text, "Alpha"))
	assert.True(t, strings.HasPrefix(chunks[3].Text, "Delta"))
}

func TestChunker_ParagraphIDsDeduplicated(t *testing.T) {
	c := NewChunker(5, 15, wordCounter{})
	// Long paragraph splits into sentences that share one paragraph ID,
	// then a short paragraph joins the tail chunk.
	para1 := "First sentence here now one. Second sentence here now two. Third sentence here now three."
	j := testJudgment(para1+" "+para1, words(3))

	chunks := c.Build(j, "case")
	for _, ch := range chunks {
		seen := make(map[int]bool)
		for _, id := range ch.ParagraphIDs {
			assert.False(t, seen[id], "paragraph id repeated in %v", ch.ParagraphIDs)
			seen[id] = true
		}
	}
}

func TestChunker_CarriesCaseMetadata(t *testing.T) {
	c := NewChunker(5, 50, wordCounter{})
	j := testJudgment(words(10))

	chunks := c.Build(j, "ramesh")
	require.Len(t, chunks, 1)
	assert.Equal(t, "Ramesh Kumar v. State", chunks[0].CaseTitle)
	assert.Equal(t, 2, chunks[0].CitationCount)
}

func TestChunker_SkipsEmptyParagraphs(t *testing.T) {
	c := NewChunker(5, 50, wordCounter{})
	j := testJudgment("", "   ", words(5))

	chunks := c.Build(j, "case")
	require.Len(t, chunks, 1)
	assert.Equal(t, []int{3}, chunks[0].ParagraphIDs)
}

func TestChunker_EmptyJudgmentYieldsNoChunks(t *testing.T) {
	c := NewChunker(5, 50, wordCounter{})
	assert.Empty(t, c.Build(testJudgment(), "case"))
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("The appeal is allowed. Costs follow the event. No order as to interest!")
	assert.Equal(t, []string{
		"The appeal is allowed.",
		"Costs follow the event.",
		"No order as to interest!",
	}, got)

	assert.Equal(t, []string{"single sentence"}, splitSentences("single sentence"))
}

func TestDetectSection(t *testing.T) {
	tests := []struct {
		text string
		want store.Section
	}{
		{"The factual background of the case is as follows", store.SectionFacts},
		{"The principal issue for consideration", store.SectionIssues},
		{"Our analysis proceeds in three steps", store.SectionAnalysis},
		{"It was held that the appeal must fail", store.SectionHolding},
		{"The parties entered appearance", store.SectionGeneral},
		// Facts outranks holding when both keywords appear.
		{"On the facts, the court held", store.SectionFacts},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectSection(tt.text), tt.text)
	}
}

func TestHeuristicCounter(t *testing.T) {
	h := heuristicCounter{}
	assert.Equal(t, 0, h.Count("   "))
	assert.Equal(t, 1, h.Count("word"))
	assert.Equal(t, 3, h.Count("twelve chars"))
}
