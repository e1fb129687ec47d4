package store

// Tokenize lowercases text and splits it into maximal runs of ASCII
// letters and digits. Everything else is a separator. Citations like
// "(2019) 7 SCC 1" therefore tokenize to ["2019", "7", "scc", "1"],
// which keeps exact-citation queries effective.
func Tokenize(text string) []string {
	tokens := make([]string, 0, len(text)/6)
	buf := make([]byte, 0, 32)

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			buf = append(buf, c)
		case c >= 'A' && c <= 'Z':
			buf = append(buf, c+('a'-'A'))
		default:
			if len(buf) > 0 {
				tokens = append(tokens, string(buf))
				buf = buf[:0]
			}
		}
	}
	if len(buf) > 0 {
		tokens = append(tokens, string(buf))
	}

	return tokens
}
