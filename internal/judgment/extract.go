package judgment

import (
	"regexp"
	"strings"
)

var (
	courtPattern = regexp.MustCompile(`(?i)(SUPREME COURT OF INDIA|HIGH COURT OF [A-Z][A-Za-z]+|IN THE SUPREME COURT[^\n]*|IN THE HIGH COURT OF [^\n]*)`)

	titlePattern = regexp.MustCompile(`(?i)([A-Z][A-Za-z.,'&() ]+?)\s+(?:v\.?s?\.?|versus)\s+([A-Z][A-Za-z.,'&() ]+)`)

	datePattern = regexp.MustCompile(`(?i)\b(\d{1,2}(?:st|nd|rd|th)?\s+(?:January|February|March|April|May|June|July|August|September|October|November|December),?\s+\d{4}|\d{2}[./-]\d{2}[./-]\d{4})\b`)

	// citationPatterns cover the common Indian reporter formats:
	// "(2019) 7 SCC 1", "AIR 2015 SC 3081", "2020 SCC OnLine SC 571".
	citationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\(\d{4}\)\s+\d+\s+SCC\s+\d+`),
		regexp.MustCompile(`AIR\s+\d{4}\s+[A-Z][A-Za-z]*\s+\d+`),
		regexp.MustCompile(`\d{4}\s+SCC\s+OnLine\s+[A-Za-z]+\s+\d+`),
	}

	holdingPattern = regexp.MustCompile(`(?is)(final order.*?\.|held that.*?\.|the court held.*?\.)`)
	ratioPattern   = regexp.MustCompile(`(?is)(ratio decidendi.*?\.|reasoning.*?\.|analysis.*?\.)`)
	issuePattern   = regexp.MustCompile(`(?im)^\s*(?:\(?[ivx0-9]+[.)]\s+)?(whether\b[^\n?]*\??)`)
)

// Parse builds a Judgment from raw extracted text. All metadata is
// heuristic; missing fields stay empty rather than failing the parse.
// Metadata looks at the whole cleaned document because the cause title
// and court name precede the operative judgment, while paragraphs start
// at the judgment marker.
func Parse(raw string) *Judgment {
	cleaned := make([]string, 0)
	for _, b := range SplitBlocks(raw) {
		if c := CleanText(b); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	text := strings.Join(cleaned, "\n\n")

	operative := cleaned[DetectStart(cleaned):]
	paragraphs := make([]Paragraph, 0, len(operative))
	for i, b := range operative {
		paragraphs = append(paragraphs, Paragraph{Num: i + 1, Text: b})
	}

	j := &Judgment{
		Title:      extractTitle(text),
		Court:      extractCourt(text),
		Date:       extractDate(text),
		Issues:     extractIssues(text),
		Ratio:      firstMatch(ratioPattern, text),
		Holding:    firstMatch(holdingPattern, text),
		Citations:  ExtractCitations(text),
		Paragraphs: paragraphs,
	}
	if j.Title == "" {
		j.Title = "Unknown Case"
	}
	return j
}

func extractTitle(text string) string {
	m := titlePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	title := strings.TrimSpace(m[1]) + " v. " + strings.TrimSpace(m[2])
	return strings.Join(strings.Fields(title), " ")
}

func extractCourt(text string) string {
	if m := courtPattern.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	return "Unknown Court"
}

func extractDate(text string) string {
	return datePattern.FindString(text)
}

// ExtractCitations returns reporter citations in document order,
// deduplicated.
func ExtractCitations(text string) []string {
	seen := make(map[string]bool)
	var citations []string
	for _, pat := range citationPatterns {
		for _, m := range pat.FindAllString(text, -1) {
			m = strings.Join(strings.Fields(m), " ")
			if !seen[m] {
				seen[m] = true
				citations = append(citations, m)
			}
		}
	}
	return citations
}

func extractIssues(text string) []string {
	matches := issuePattern.FindAllStringSubmatch(text, 10)
	issues := make([]string, 0, len(matches))
	for _, m := range matches {
		issues = append(issues, strings.TrimSpace(m[1]))
	}
	return issues
}

func firstMatch(pat *regexp.Regexp, text string) string {
	return strings.TrimSpace(pat.FindString(text))
}
