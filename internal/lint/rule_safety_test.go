package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/caplint/internal/parser"
	"github.com/standardbeagle/caplint/internal/store"
	"github.com/standardbeagle/caplint/internal/types"
)

// panickingRule is a test double that panics on every Check/Fix call, to
// exercise SafeCheck/SafeFix without depending on any real rule actually
// having a bug.
type panickingRule struct{ baseRule }

func (panickingRule) Check(sf *parser.SourceFile, st *store.Store) []types.Issue {
	panic("boom")
}

func (panickingRule) Fix(sf *parser.SourceFile, issues []types.Issue) []types.Transformation {
	panic("boom")
}

func TestSafeCheckRecoversPanicIntoInternalErrorIssue(t *testing.T) {
	sf := mustParse(t, "void f() {}\n")
	r := panickingRule{baseRule{id: "E999"}}

	issues := SafeCheck(r, sf, store.New(1))
	require.Len(t, issues, 1)
	assert.Equal(t, "rule_internal_error", issues[0].RuleID)
	assert.Equal(t, types.SeverityError, issues[0].Severity)
	assert.Equal(t, 0, issues[0].PrimaryRange.Start)
	assert.Contains(t, issues[0].Message, "E999")
}

func TestSafeFixRecoversPanicIntoInternalErrorIssue(t *testing.T) {
	sf := mustParse(t, "void f() {}\n")
	r := panickingRule{baseRule{id: "E999"}}

	transforms, panicIssue := SafeFix(r, sf, nil)
	assert.Nil(t, transforms)
	require.NotNil(t, panicIssue)
	assert.Equal(t, "rule_internal_error", panicIssue.RuleID)
}

func TestSafeCheckPassesThroughNormalResult(t *testing.T) {
	sf := mustParse(t, "int gCounter;\n")
	r := &VariableOutsideBlock{}

	st := store.New(1)
	st.AddFile(sf.Path)
	st.AddSymbol(types.Symbol{
		ID: 1, Name: "gCounter", Kind: types.SymbolVariable, DefiningFile: sf.Path,
		DeclaredInScope: types.ScopeTopLevel,
		Range:           types.Range{Start: 0, End: len("int gCounter;")},
	})

	issues := SafeCheck(r, sf, st)
	require.Len(t, issues, 1)
	assert.Equal(t, "E006", issues[0].RuleID)
}
