package lint

// A handful of rules (E001, E008) key off raw token shape rather than
// store facts; this is a small, self-contained scanner rather than a
// dependency on internal/extract's unexported helpers, matching the
// extractor's own "recognize positionally" approach at a lower level.

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func skipLiteral(src []byte, i int) int {
	quote := src[i]
	i++
	for i < len(src) {
		if src[i] == '\\' {
			i += 2
			continue
		}
		if src[i] == quote {
			return i + 1
		}
		i++
	}
	return i
}

// lexToken is one lexical token: an identifier run, a single punctuation
// byte, or a string/char literal (kept whole so its bytes are never
// inspected for nested punctuation).
type lexToken struct {
	Start, End int
	Text       string
}

// lex splits src into a flat token stream, skipping comments but keeping
// string/char literals as single opaque tokens so punctuation inside them
// is never mistaken for code punctuation.
func lex(src []byte) []lexToken {
	var toks []lexToken
	i := 0
	n := len(src)
	for i < n {
		switch {
		case src[i] == '/' && i+1 < n && src[i+1] == '/':
			for i < n && src[i] != '\n' {
				i++
			}
		case src[i] == '/' && i+1 < n && src[i+1] == '*':
			i += 2
			for i+1 < n && !(src[i] == '*' && src[i+1] == '/') {
				i++
			}
			i += 2
		case src[i] == ' ' || src[i] == '\t' || src[i] == '\n' || src[i] == '\r':
			i++
		case src[i] == '"' || src[i] == '\'':
			start := i
			i = skipLiteral(src, i)
			toks = append(toks, lexToken{Start: start, End: i, Text: string(src[start:i])})
		case isIdentStart(src[i]):
			start := i
			for i < n && isIdentPart(src[i]) {
				i++
			}
			toks = append(toks, lexToken{Start: start, End: i, Text: string(src[start:i])})
		default:
			toks = append(toks, lexToken{Start: i, End: i + 1, Text: string(src[i])})
			i++
		}
	}
	return toks
}
