// Package judgment models court judgments and extracts structure from
// raw judgment text: boilerplate removal, paragraph segmentation, and
// heuristic metadata extraction (court, date, citations, holding).
package judgment

// Paragraph is a numbered block of judgment text.
type Paragraph struct {
	Num  int    `json:"num"`
	Text string `json:"text"`
}

// Arguments holds the parties' contentions when they can be separated.
type Arguments struct {
	Petitioner string `json:"petitioner,omitempty"`
	Respondent string `json:"respondent,omitempty"`
}

// Judgment is the parsed form of a single decision. Fields beyond Title
// and Paragraphs are best-effort: extraction never fails a pipeline run,
// it just leaves a field empty.
type Judgment struct {
	Title      string      `json:"title"`
	Court      string      `json:"court"`
	Date       string      `json:"date,omitempty"`
	Facts      string      `json:"facts,omitempty"`
	Issues     []string    `json:"issues,omitempty"`
	Arguments  Arguments   `json:"arguments,omitempty"`
	Ratio      string      `json:"ratio,omitempty"`
	Holding    string      `json:"holding,omitempty"`
	Citations  []string    `json:"citations,omitempty"`
	Paragraphs []Paragraph `json:"paragraphs"`
}
