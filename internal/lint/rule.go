// Package lint is the rule framework (C4) and lint rules (C5): every rule
// advertises an id, severity and auto-fixability, checks a parsed file
// against the symbol store, and optionally emits transformations. The
// registry enumerates rules in a fixed order so that passes are
// deterministic, grounded on the teacher's community-parser registry
// pattern of a tagged list rather than reflection or plugin loading.
package lint

import (
	"fmt"

	"github.com/standardbeagle/caplint/internal/parser"
	"github.com/standardbeagle/caplint/internal/store"
	"github.com/standardbeagle/caplint/internal/types"
)

// Rule is the capability set every lint rule implements: an id, a check,
// and an optional fix. Rules that cannot auto-fix still implement Fix,
// returning nil, to keep the interface uniform; AutoFixable() tells the
// driver whether to bother calling it.
type Rule interface {
	ID() string
	Slug() string
	Severity() types.Severity
	AutoFixable() bool
	Check(sf *parser.SourceFile, st *store.Store) []types.Issue
	Fix(sf *parser.SourceFile, issues []types.Issue) []types.Transformation
}

// baseRule supplies the static metadata every rule shares, so each
// concrete rule only implements Check/Fix.
type baseRule struct {
	id          string
	slug        string
	severity    types.Severity
	autoFixable bool
}

func (b baseRule) ID() string { return b.id }
func (b baseRule) Slug() string { return b.slug }
func (b baseRule) Severity() types.Severity { return b.severity }
func (b baseRule) AutoFixable() bool { return b.autoFixable }

// All returns every known rule in the registry's fixed order: E-series
// before W-series, and within E, keyword rules (E001, E004, E005, E008)
// before placement rules (E002, E003, E006, E007) that move or delete
// whole declarations, per §4.4's ordering contract — §9's open question
// on E001/E006 interaction is resolved by this same ordering, letting
// E001's fix create the bare declaration E006 picks up on the next pass.
func All() []Rule {
	return []Rule{
		&ExternKeyword{},
		&MissingEnumKeyword{},
		&MissingStructKeyword{},
		&ArrowOperator{},
		&FunctionDeclaration{},
		&GlobalTypeDefinition{},
		&VariableOutsideBlock{},
		&VariableMidBlock{},
		&PointerParameter{},
		&UndefinedSymbol{},
		&DuplicateFunction{},
		&CircularInclude{},
	}
}

// Filter narrows rules to those not in disabled and, if allow is
// non-empty, further to those whose id appears in allow. Unknown ids in
// either set are silently ignored rather than aborting, per §4.4.
func Filter(rules []Rule, disabled, allow []string) []Rule {
	disabledSet := toSet(disabled)
	allowSet := toSet(allow)
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if disabledSet[r.ID()] {
			continue
		}
		if len(allowSet) > 0 && !allowSet[r.ID()] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// ExcludeIDs returns rules with every id in ids removed, preserving
// order. Used by the autofix driver to disable a rule on a file for the
// remainder of the session after it introduces a new parse error (§3.2
// invariant 4).
func ExcludeIDs(rules []Rule, ids []string) []Rule {
	excl := toSet(ids)
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if excl[r.ID()] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SafeCheck invokes r.Check, recovering from any panic and converting it
// into a synthetic rule_internal_error issue at the file's first byte
// rather than letting it abort the rest of the analyze pass (§4.9/§7).
func SafeCheck(r Rule, sf *parser.SourceFile, st *store.Store) (issues []types.Issue) {
	defer func() {
		if rec := recover(); rec != nil {
			issues = []types.Issue{internalErrorIssue(r, sf, rec)}
		}
	}()
	return r.Check(sf, st)
}

// SafeFix invokes r.Fix the same way SafeCheck guards Check: a panic
// yields no transformations plus a synthetic rule_internal_error issue
// instead of crashing the fix pass. panicIssue is nil on a normal return.
func SafeFix(r Rule, sf *parser.SourceFile, issues []types.Issue) (transforms []types.Transformation, panicIssue *types.Issue) {
	defer func() {
		if rec := recover(); rec != nil {
			synthetic := internalErrorIssue(r, sf, rec)
			panicIssue = &synthetic
			transforms = nil
		}
	}()
	return r.Fix(sf, issues), nil
}

func internalErrorIssue(r Rule, sf *parser.SourceFile, rec interface{}) types.Issue {
	return types.Issue{
		RuleID:       "rule_internal_error",
		Severity:     types.SeverityError,
		File:         sf.Path,
		PrimaryRange: types.Range{Start: 0, End: 0},
		Message:      fmt.Sprintf("rule %s panicked: %v", r.ID(), rec),
	}
}

func toSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}
