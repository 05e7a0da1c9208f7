// Package format is the formatter engine (C7) and formatter rules (C8):
// a fixed pipeline of phases, each working over a shared buffer that is
// re-tokenized as it changes. The buffer is never re-parsed with the
// tree-sitter façade; every phase works on bytes and tokens only.
package format

import "strings"

// tokenKind classifies a lexical token for the structural rules; it is a
// much coarser view than the parser's grammar kinds, sufficient for the
// token-shape rules in §4.8 (spacing, quoting, brace placement) without
// needing a full AST for every micro-decision.
type tokenKind uint8

const (
	tokIdent tokenKind = iota
	tokNumber
	tokString
	tokChar
	tokPunct
	tokLineComment
	tokBlockComment
	tokNewline
)

type token struct {
	Kind       tokenKind
	Start, End int
	Text       string
}

var controlKeywords = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "return": true,
}

var multiCharOps = []string{
	"<<=", ">>=", "==", "!=", "<=", ">=", "&&", "||", "+=", "-=", "*=", "/=",
	"%=", "&=", "|=", "^=", "<<", ">>", "++", "--",
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// lex tokenizes the full buffer, keeping comments and newlines as
// explicit tokens so downstream rules can reason about line structure
// without re-scanning the buffer themselves.
func lex(src []byte) []token {
	var toks []token
	i, n := 0, len(src)
	for i < n {
		c := src[i]
		switch {
		case c == '\n':
			toks = append(toks, token{Kind: tokNewline, Start: i, End: i + 1, Text: "\n"})
			i++
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '/' && i+1 < n && src[i+1] == '/':
			start := i
			for i < n && src[i] != '\n' {
				i++
			}
			toks = append(toks, token{Kind: tokLineComment, Start: start, End: i, Text: string(src[start:i])})
		case c == '/' && i+1 < n && src[i+1] == '*':
			start := i
			i += 2
			for i+1 < n && !(src[i] == '*' && src[i+1] == '/') {
				i++
			}
			i = min(i+2, n)
			toks = append(toks, token{Kind: tokBlockComment, Start: start, End: i, Text: string(src[start:i])})
		case c == '"':
			start := i
			i = skipLiteral(src, i)
			toks = append(toks, token{Kind: tokString, Start: start, End: i, Text: string(src[start:i])})
		case c == '\'':
			start := i
			i = skipLiteral(src, i)
			toks = append(toks, token{Kind: tokChar, Start: start, End: i, Text: string(src[start:i])})
		case isIdentStart(c):
			start := i
			for i < n && isIdentPart(src[i]) {
				i++
			}
			toks = append(toks, token{Kind: tokIdent, Start: start, End: i, Text: string(src[start:i])})
		case isDigit(c):
			start := i
			for i < n && (isIdentPart(src[i]) || src[i] == '.') {
				i++
			}
			toks = append(toks, token{Kind: tokNumber, Start: start, End: i, Text: string(src[start:i])})
		default:
			matched := false
			for _, op := range multiCharOps {
				if strings.HasPrefix(string(src[i:min(i+len(op), n)]), op) {
					toks = append(toks, token{Kind: tokPunct, Start: i, End: i + len(op), Text: op})
					i += len(op)
					matched = true
					break
				}
			}
			if !matched {
				toks = append(toks, token{Kind: tokPunct, Start: i, End: i + 1, Text: string(c)})
				i++
			}
		}
	}
	return toks
}

func skipLiteral(src []byte, i int) int {
	quote := src[i]
	i++
	n := len(src)
	for i < n {
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

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
