package format

import "github.com/standardbeagle/caplint/internal/config"

// render is SpacingRule: it turns a token list back into text, deciding
// the separator between each adjacent pair. Leading whitespace for a
// line is never emitted here (the indentation phase recomputes it from
// scratch), so this only has to get in-line spacing right.
func render(toks []token, cfg *config.Config) []byte {
	var out []byte
	for i, t := range toks {
		if i == 0 {
			out = append(out, t.Text...)
			continue
		}
		prev := toks[i-1]
		if t.Kind == tokNewline {
			out = append(out, '\n')
			continue
		}
		if prev.Kind == tokNewline {
			out = append(out, t.Text...)
			continue
		}
		var before token
		hasBefore := false
		if i >= 2 && toks[i-2].Kind != tokNewline {
			before = toks[i-2]
			hasBefore = true
		}
		if needsSpace(prev, t, before, hasBefore) {
			out = append(out, ' ')
		}
		out = append(out, t.Text...)
	}
	return out
}

var noSpaceBefore = map[string]bool{
	",": true, ";": true, ")": true, "]": true, ".": true,
}

var noSpaceAfter = map[string]bool{
	"(": true, "[": true, ".": true, "!": true, "~": true,
}

var binaryOps = map[string]bool{
	"=": true, "==": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
	"&&": true, "||": true, "+": true, "-": true, "*": true, "/": true, "%": true,
	"&": true, "|": true, "^": true, "<<": true, ">>": true,
	"+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
}

// startsExpression reports whether a token immediately preceding an
// operator means that operator is being used as a unary prefix (e.g.
// `return -1`, `(-x)`, `a = -b`) rather than a binary operator.
func startsExpression(t token) bool {
	if t.Kind == tokPunct {
		switch t.Text {
		case "(", "[", ",", "{", ";":
			return true
		}
		return binaryOps[t.Text]
	}
	if t.Kind == tokIdent {
		return controlKeywords[t.Text] || t.Text == "return"
	}
	return false
}

// unaryPrefixOps are operators that are ambiguous between binary and
// unary-prefix use; sign and address-of/dereference are the common CAPL
// cases (`-x`, `+x`, `*p`, `&v`).
var unaryPrefixOps = map[string]bool{"-": true, "+": true, "*": true, "&": true}

func needsSpace(prev, cur, before token, hasBefore bool) bool {
	switch {
	case cur.Kind == tokPunct && noSpaceBefore[cur.Text]:
		return false
	case prev.Kind == tokPunct && noSpaceAfter[prev.Text]:
		return false
	case prev.Text == "++" || prev.Text == "--" || cur.Text == "++" || cur.Text == "--":
		return false
	case cur.Kind == tokPunct && cur.Text == "(":
		return prev.Kind == tokIdent && controlKeywords[prev.Text]
	case prev.Kind == tokPunct && unaryPrefixOps[prev.Text] && (!hasBefore || startsExpression(before)):
		return false // unary prefix, no space before its operand
	case cur.Kind == tokPunct && binaryOps[cur.Text]:
		return true
	case prev.Kind == tokPunct && binaryOps[prev.Text]:
		return true
	default:
		return true
	}
}
