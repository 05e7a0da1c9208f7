package lint

import (
	"strings"

	"github.com/standardbeagle/caplint/internal/parser"
	"github.com/standardbeagle/caplint/internal/store"
	"github.com/standardbeagle/caplint/internal/types"
)

// ExternKeyword is E001: CAPL forbids `extern`; any occurrence at
// statement start is flagged and, on fix, deleted along with its
// trailing whitespace. Deleting it commonly leaves a bare top-level
// declaration, which the next pass's E006 picks up — see §9's ordering
// note, honored by this rule's placement before VariableOutsideBlock in
// the registry.
type ExternKeyword struct{ baseRule }

func (r *ExternKeyword) ID() string              { return "E001" }
func (r *ExternKeyword) Slug() string             { return "extern-keyword" }
func (r *ExternKeyword) Severity() types.Severity { return types.SeverityError }
func (r *ExternKeyword) AutoFixable() bool        { return true }

func (r *ExternKeyword) Check(sf *parser.SourceFile, st *store.Store) []types.Issue {
	toks := lex(sf.Bytes)
	var issues []types.Issue
	for i, tok := range toks {
		if tok.Text != "extern" {
			continue
		}
		if !atStatementStart(toks, i) {
			continue
		}
		issues = append(issues, types.Issue{
			RuleID: r.ID(), Severity: r.Severity(), File: sf.Path,
			PrimaryRange: sf.Lines.Range(tok.Start, tok.End),
			Message:      "extern is not permitted in CAPL",
			AutoFixable:  true, FixHint: "remove extern",
		})
	}
	return issues
}

func (r *ExternKeyword) Fix(sf *parser.SourceFile, issues []types.Issue) []types.Transformation {
	src := sf.Bytes
	var out []types.Transformation
	for _, is := range issues {
		end := is.PrimaryRange.End
		for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
			end++
		}
		out = append(out, types.Transformation{
			Start: is.PrimaryRange.Start, End: end, Replacement: nil,
			OriginatingRuleID: r.ID(),
		})
	}
	return out
}

// atStatementStart reports whether toks[i] is the first token of a
// statement: the preceding token (if any) is ';', '{', or '}'.
func atStatementStart(toks []lexToken, i int) bool {
	if i == 0 {
		return true
	}
	switch toks[i-1].Text {
	case ";", "{", "}":
		return true
	}
	return false
}

// MissingEnumKeyword is E004: a declarator's type text names a known enum
// but omits the `enum` keyword.
type MissingEnumKeyword struct{ baseRule }

func (r *MissingEnumKeyword) ID() string              { return "E004" }
func (r *MissingEnumKeyword) Slug() string             { return "missing-enum-keyword" }
func (r *MissingEnumKeyword) Severity() types.Severity { return types.SeverityError }
func (r *MissingEnumKeyword) AutoFixable() bool        { return true }

func (r *MissingEnumKeyword) Check(sf *parser.SourceFile, st *store.Store) []types.Issue {
	return checkMissingTypeKeyword(sf, st, r.ID(), types.SymbolEnum, "enum")
}
func (r *MissingEnumKeyword) Fix(sf *parser.SourceFile, issues []types.Issue) []types.Transformation {
	return fixMissingTypeKeyword(issues, r.ID(), "enum ")
}

// MissingStructKeyword is E005: same as E004 but for `struct`.
type MissingStructKeyword struct{ baseRule }

func (r *MissingStructKeyword) ID() string              { return "E005" }
func (r *MissingStructKeyword) Slug() string             { return "missing-struct-keyword" }
func (r *MissingStructKeyword) Severity() types.Severity { return types.SeverityError }
func (r *MissingStructKeyword) AutoFixable() bool        { return true }

func (r *MissingStructKeyword) Check(sf *parser.SourceFile, st *store.Store) []types.Issue {
	return checkMissingTypeKeyword(sf, st, r.ID(), types.SymbolStruct, "struct")
}
func (r *MissingStructKeyword) Fix(sf *parser.SourceFile, issues []types.Issue) []types.Transformation {
	return fixMissingTypeKeyword(issues, r.ID(), "struct ")
}

func checkMissingTypeKeyword(sf *parser.SourceFile, st *store.Store, ruleID string, kind types.SymbolKind, keyword string) []types.Issue {
	names := map[string]bool{}
	for _, sym := range st.VisibleSymbols(sf.Path) {
		if sym.Kind == kind {
			names[sym.Name] = true
		}
	}
	var issues []types.Issue
	for _, sym := range st.SymbolsIn(sf.Path) {
		if sym.Kind != types.SymbolVariable {
			continue
		}
		t := strings.TrimSpace(sym.TypeText)
		if t == "" || !names[t] {
			continue
		}
		if strings.HasPrefix(t, keyword+" ") || t == keyword {
			continue
		}
		issues = append(issues, types.Issue{
			RuleID: ruleID, Severity: types.SeverityError, File: sf.Path,
			PrimaryRange: sym.Range,
			Message:      "declaration of " + sym.Name + " uses " + t + " without the " + keyword + " keyword",
			AutoFixable:  true, FixHint: "prepend " + keyword,
		})
	}
	return issues
}

func fixMissingTypeKeyword(issues []types.Issue, ruleID, prefix string) []types.Transformation {
	var out []types.Transformation
	for _, is := range issues {
		out = append(out, types.Transformation{
			Start: is.PrimaryRange.Start, End: is.PrimaryRange.Start,
			Replacement: []byte(prefix), OriginatingRuleID: ruleID,
		})
	}
	return out
}

// ArrowOperator is E008: CAPL has no pointers, so `->` never denotes
// member access through one; it is always a typo for `.`.
type ArrowOperator struct{ baseRule }

func (r *ArrowOperator) ID() string              { return "E008" }
func (r *ArrowOperator) Slug() string             { return "arrow-operator" }
func (r *ArrowOperator) Severity() types.Severity { return types.SeverityError }
func (r *ArrowOperator) AutoFixable() bool        { return true }

func (r *ArrowOperator) Check(sf *parser.SourceFile, st *store.Store) []types.Issue {
	toks := lex(sf.Bytes)
	var issues []types.Issue
	for i := 0; i+1 < len(toks); i++ {
		if toks[i].Text == "-" && toks[i+1].Text == ">" && toks[i].End == toks[i+1].Start {
			issues = append(issues, types.Issue{
				RuleID: r.ID(), Severity: r.Severity(), File: sf.Path,
				PrimaryRange: sf.Lines.Range(toks[i].Start, toks[i+1].End),
				Message:      "-> is not valid CAPL member access",
				AutoFixable:  true, FixHint: "replace with .",
			})
		}
	}
	return issues
}

func (r *ArrowOperator) Fix(sf *parser.SourceFile, issues []types.Issue) []types.Transformation {
	var out []types.Transformation
	for _, is := range issues {
		out = append(out, types.Transformation{
			Start: is.PrimaryRange.Start, End: is.PrimaryRange.End,
			Replacement: []byte("."), OriginatingRuleID: r.ID(),
		})
	}
	return out
}
