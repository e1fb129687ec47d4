// Package output renders CLI results with optional color.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

const (
	colorBlue   = "45"
	colorGreen  = "78"
	colorYellow = "220"
	colorRed    = "196"
	colorGray   = "245"
)

// Styles holds the render styles for one writer.
type Styles struct {
	Title   lipgloss.Style
	Score   lipgloss.Style
	Section lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style
}

func colorStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorBlue)),
		Score:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorGreen)),
		Section: lipgloss.NewStyle().Foreground(lipgloss.Color(colorYellow)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(colorYellow)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorRed)),
		Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)),
	}
}

func plainStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle(),
		Score:   lipgloss.NewStyle(),
		Section: lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Dim:     lipgloss.NewStyle(),
	}
}

// Writer formats CLI output.
type Writer struct {
	out    io.Writer
	styles Styles
}

// New creates a Writer, enabling color when out is a terminal and NO_COLOR
// is unset.
func New(out io.Writer) *Writer {
	if useColor(out) {
		return &Writer{out: out, styles: colorStyles()}
	}
	return &Writer{out: out, styles: plainStyles()}
}

// NewPlain creates a Writer that never colors.
func NewPlain(out io.Writer) *Writer {
	return &Writer{out: out, styles: plainStyles()}
}

func useColor(w io.Writer) bool {
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		return false
	}
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// Printf writes formatted text.
func (w *Writer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, format, args...)
}

// Println writes a line.
func (w *Writer) Println(msg string) {
	_, _ = fmt.Fprintln(w.out, msg)
}

// Title writes a bold heading.
func (w *Writer) Title(msg string) {
	_, _ = fmt.Fprintln(w.out, w.styles.Title.Render(msg))
}

// Warning writes a warning line.
func (w *Writer) Warning(msg string) {
	_, _ = fmt.Fprintln(w.out, w.styles.Warning.Render("warning: "+msg))
}

// Error writes an error line.
func (w *Writer) Error(msg string) {
	_, _ = fmt.Fprintln(w.out, w.styles.Error.Render("error: "+msg))
}

// Result writes one ranked search hit.
func (w *Writer) Result(rank int, score float64, section, caseTitle, preview string) {
	_, _ = fmt.Fprintf(w.out, "%2d. %s %s %s\n",
		rank,
		w.styles.Score.Render(fmt.Sprintf("%.4f", score)),
		w.styles.Section.Render("["+section+"]"),
		w.styles.Title.Render(caseTitle))
	for _, line := range wrap(preview, 76) {
		_, _ = fmt.Fprintf(w.out, "    %s\n", w.styles.Dim.Render(line))
	}
}

// wrap splits text into lines of at most width characters, breaking on
// spaces.
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		line += " " + word
	}
	return append(lines, line)
}
