package lint

import (
	"fmt"
	"sort"

	"github.com/standardbeagle/caplint/internal/parser"
	"github.com/standardbeagle/caplint/internal/store"
	"github.com/standardbeagle/caplint/internal/types"
)

// builtins lists the CAPL runtime surface the extractor never sees a
// definition for: standard library functions, reserved system
// identifiers, and built-in scalar keywords that tokenize as
// identifiers in the C grammar. Not exhaustive; E011 is a reporting aid,
// not a type checker, per §1's non-goal of deep semantic analysis.
var builtins = map[string]bool{
	"write": true, "writeLineEx": true, "runError": true,
	"testStep": true, "testCase": true, "testCaseDescription": true,
	"testWaitForTimeout": true, "TestWaitForTimeout": true,
	"testWaitForMessage": true, "setTimer": true, "cancelTimer": true,
	"isTimerActive": true, "output": true, "this": true, "elcount": true,
	"sysSetVariableInt": true, "sysGetVariableInt": true,
	"sysSetVariableFloat": true, "sysGetVariableFloat": true,
	"sysSetVariableString": true, "sysGetVariableString": true,
	"envVarGetValue": true, "envVarSetValue": true,
	"getValue": true, "setValue": true, "putValue": true,
	"TestModule": true, "timeNow": true, "timeNowNS": true,
}

// UndefinedSymbol is E011: a reference whose name resolves to nothing
// visible. A same-file fallback covers symbols local to the enclosing
// function or handler, since the extractor does not track per-block
// scope chains precisely enough to tell "local to this function" from
// "local to a sibling one" — a deliberate simplification for a tool that
// explicitly excludes dataflow analysis (§1 Non-goals); it trades a rare
// false negative (a name that really is only valid in a different
// function) for no false positives on legitimate same-file locals.
type UndefinedSymbol struct{ baseRule }

func (r *UndefinedSymbol) ID() string              { return "E011" }
func (r *UndefinedSymbol) Slug() string             { return "undefined-symbol" }
func (r *UndefinedSymbol) Severity() types.Severity { return types.SeverityError }
func (r *UndefinedSymbol) AutoFixable() bool        { return false }

func (r *UndefinedSymbol) Check(sf *parser.SourceFile, st *store.Store) []types.Issue {
	known := map[string]bool{}
	for _, sym := range st.VisibleSymbols(sf.Path) {
		known[sym.Name] = true
	}
	for _, sym := range st.SymbolsIn(sf.Path) {
		known[sym.Name] = true
	}

	var issues []types.Issue
	for _, ref := range st.ReferencesFrom(sf.Path) {
		if ref.Context == types.ContextMemberAccess {
			continue
		}
		if known[ref.ReferencedName] || builtins[ref.ReferencedName] {
			continue
		}
		issues = append(issues, types.Issue{
			RuleID: r.ID(), Severity: r.Severity(), File: sf.Path,
			PrimaryRange: ref.Range,
			Message:      "undefined symbol " + ref.ReferencedName,
			AutoFixable:  false,
		})
	}
	sort.Slice(issues, func(i, j int) bool { return issues[i].PrimaryRange.Start < issues[j].PrimaryRange.Start })
	return issues
}

func (r *UndefinedSymbol) Fix(sf *parser.SourceFile, issues []types.Issue) []types.Transformation {
	return nil
}

// DuplicateFunction is E012: two or more function bodies share a name
// across the analyzed project.
type DuplicateFunction struct{ baseRule }

func (r *DuplicateFunction) ID() string              { return "E012" }
func (r *DuplicateFunction) Slug() string             { return "duplicate-function" }
func (r *DuplicateFunction) Severity() types.Severity { return types.SeverityError }
func (r *DuplicateFunction) AutoFixable() bool        { return false }

func (r *DuplicateFunction) Check(sf *parser.SourceFile, st *store.Store) []types.Issue {
	dups := st.DuplicateFunctions()
	var issues []types.Issue
	for name, syms := range dups {
		for _, sym := range syms {
			if sym.DefiningFile != sf.Path {
				continue
			}
			issues = append(issues, types.Issue{
				RuleID: r.ID(), Severity: r.Severity(), File: sf.Path,
				PrimaryRange: sym.Range,
				Message:      fmt.Sprintf("function %s is defined more than once across the project", name),
				AutoFixable:  false,
			})
		}
	}
	sort.Slice(issues, func(i, j int) bool { return issues[i].PrimaryRange.Start < issues[j].PrimaryRange.Start })
	return issues
}

func (r *DuplicateFunction) Fix(sf *parser.SourceFile, issues []types.Issue) []types.Transformation {
	return nil
}

// CircularInclude is W001: a cycle in the #include graph. It is the
// only rule that treats cycle membership as meaningful rather than
// merely tolerating it (§3.2 invariant 6); reported once per cycle,
// attached to the lexicographically first file in the cycle.
type CircularInclude struct{ baseRule }

func (r *CircularInclude) ID() string              { return "W001" }
func (r *CircularInclude) Slug() string             { return "circular-include" }
func (r *CircularInclude) Severity() types.Severity { return types.SeverityWarning }
func (r *CircularInclude) AutoFixable() bool        { return false }

func (r *CircularInclude) Check(sf *parser.SourceFile, st *store.Store) []types.Issue {
	var issues []types.Issue
	for _, group := range st.GroupedCycles() {
		if group[0] != sf.Path {
			continue
		}
		issues = append(issues, types.Issue{
			RuleID: r.ID(), Severity: r.Severity(), File: sf.Path,
			PrimaryRange: types.Range{},
			Message:      "circular include among " + joinFileIDs(group),
			AutoFixable:  false,
		})
	}
	return issues
}

func (r *CircularInclude) Fix(sf *parser.SourceFile, issues []types.Issue) []types.Transformation {
	return nil
}

func joinFileIDs(files []types.FileID) string {
	s := ""
	for i, f := range files {
		if i > 0 {
			s += ", "
		}
		s += string(f)
	}
	return s
}
