package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "lowercases and splits on whitespace",
			input: "The Court HELD",
			want:  []string{"the", "court", "held"},
		},
		{
			name:  "punctuation separates tokens",
			input: "bail, anticipatory-bail; s.438",
			want:  []string{"bail", "anticipatory", "bail", "s", "438"},
		},
		{
			name:  "citation breaks into alphanumeric runs",
			input: "(2019) 7 SCC 1",
			want:  []string{"2019", "7", "scc", "1"},
		},
		{
			name:  "empty string",
			input: "",
			want:  []string{},
		},
		{
			name:  "only separators",
			input: "  ...  ---  ",
			want:  []string{},
		},
		{
			name:  "non-ascii characters are separators",
			input: "Sec§438 régime",
			want:  []string{"sec", "438", "r", "gime"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.input))
		})
	}
}
