package format

import "github.com/standardbeagle/caplint/internal/config"

// restructure implements phase 2's line-breaking rules in one combined
// token-list pass: BlockExpansionRule (split a brace body that starts on
// the same line as `{`), BraceStyleRule (join a header with its `{` on
// one line), StatementSplitRule (one statement per line after `;`), and
// SwitchNormalizationRule (`case`/`default` always starts a new line).
// Indentation itself is left untouched here; the final indentation phase
// recomputes every line's leading whitespace from scratch, so these
// rules only need to get newline placement right, not column alignment.
func restructure(toks []token) []token {
	out := make([]token, 0, len(toks)+8)
	nl := token{Kind: tokNewline, Text: "\n"}

	endsWithNewline := func() bool {
		return len(out) > 0 && out[len(out)-1].Kind == tokNewline
	}
	trimTrailingNewlines := func() {
		for len(out) > 0 && out[len(out)-1].Kind == tokNewline {
			out = out[:len(out)-1]
		}
	}

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.Kind == tokPunct && t.Text == "{":
			trimTrailingNewlines() // BraceStyleRule: join header and brace
			out = append(out, t)
			if i+1 < len(toks) && toks[i+1].Kind != tokNewline && toks[i+1].Text != "}" {
				out = append(out, nl) // BlockExpansionRule
			}
		case t.Kind == tokPunct && t.Text == "}":
			if len(out) > 0 && out[len(out)-1].Text != "{" && !endsWithNewline() {
				out = append(out, nl)
			}
			out = append(out, t)
		case t.Kind == tokPunct && t.Text == ";":
			out = append(out, t)
			if i+1 < len(toks) && toks[i+1].Kind != tokNewline && toks[i+1].Text != "}" {
				out = append(out, nl) // StatementSplitRule
			}
		case t.Kind == tokIdent && (t.Text == "case" || t.Text == "default") && !endsWithNewline() && len(out) > 0:
			out = append(out, nl) // SwitchNormalizationRule
			out = append(out, t)
		default:
			out = append(out, t)
		}
	}
	return out
}

// quoteNormalize implements QuoteNormalizationRule: a single-quoted
// literal with more than one (unescaped) content character is a string,
// not a character literal, and is rewritten to double quotes. A true
// one-character literal is left alone.
func quoteNormalize(toks []token) []token {
	out := make([]token, len(toks))
	copy(out, toks)
	for i, t := range out {
		if t.Kind != tokChar {
			continue
		}
		if len(t.Text) < 2 {
			continue
		}
		inner := t.Text[1 : len(t.Text)-1]
		if isSingleCharLiteral(inner) {
			continue
		}
		out[i] = token{Kind: tokString, Start: t.Start, End: t.End, Text: `"` + inner + `"`}
	}
	return out
}

func isSingleCharLiteral(inner string) bool {
	if len(inner) == 1 {
		return true
	}
	if len(inner) == 2 && inner[0] == '\\' {
		return true // \n, \t, \\, \', ...
	}
	return false
}

// structuralConverge runs the phase-2 rule set to a fixpoint (bounded by
// cfg.MaxPasses, matching the same cap the autofix driver uses for its
// own convergence loop).
func structuralConverge(src []byte, cfg *config.Config) []byte {
	cur := src
	for pass := 0; pass < cfg.MaxPasses; pass++ {
		toks := lex(cur)
		toks = quoteNormalize(toks)
		toks = restructure(toks)
		next := render(toks, cfg)
		if string(next) == string(cur) {
			return next
		}
		cur = next
	}
	return cur
}
