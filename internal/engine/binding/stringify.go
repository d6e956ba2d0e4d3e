package binding

import "strings"

// Substitution maps template parameter names to the argument text of one
// specialization.
type Substitution map[string]string

// NewSubstitution pairs params with the comma-split args. The split is naive:
// "std::map<int, int>" is two arguments. Nested template arguments in this
// position are unsupported. The second result reports whether the counts
// matched; on mismatch the shorter side wins.
func NewSubstitution(params []string, args string) (Substitution, bool) {
	parts := strings.Split(args, ",")
	if strings.TrimSpace(args) == "" {
		parts = nil
	}
	s := make(Substitution, len(params))
	for i, p := range params {
		if i >= len(parts) {
			break
		}
		s[p] = strings.TrimSpace(parts[i])
	}
	return s, len(parts) == len(params)
}

// Render returns spelling with every identifier token that names a parameter
// replaced by its argument. Whitespace and punctuation are kept as written.
func (s Substitution) Render(spelling string) string {
	if len(s) == 0 {
		return spelling
	}
	var b strings.Builder
	for _, tok := range tokenize(spelling) {
		if repl, ok := s[tok]; ok {
			b.WriteString(repl)
			continue
		}
		b.WriteString(tok)
	}
	return b.String()
}

// Extend returns a copy of s with inner layered on top.
func (s Substitution) Extend(inner Substitution) Substitution {
	if len(s) == 0 {
		return inner
	}
	out := make(Substitution, len(s)+len(inner))
	for k, v := range s {
		out[k] = v
	}
	for k, v := range inner {
		out[k] = v
	}
	return out
}

// tokenize splits into identifier runs, whitespace runs and single punctuation
// bytes. Joining the tokens yields the input unchanged.
func tokenize(s string) []string {
	var toks []string
	for i := 0; i < len(s); {
		j := i + 1
		switch {
		case isIdentByte(s[i]):
			for j < len(s) && isIdentByte(s[j]) {
				j++
			}
		case isSpace(s[i]):
			for j < len(s) && isSpace(s[j]) {
				j++
			}
		}
		toks = append(toks, s[i:j])
		i = j
	}
	return toks
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
