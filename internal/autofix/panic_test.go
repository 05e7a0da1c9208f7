package autofix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/caplint/internal/config"
	"github.com/standardbeagle/caplint/internal/lint"
	"github.com/standardbeagle/caplint/internal/parser"
	"github.com/standardbeagle/caplint/internal/store"
	"github.com/standardbeagle/caplint/internal/types"
)

// panickingRule is a test double exercising the driver's recover-guarded
// rule invocation path (§4.9/§7): it always panics, regardless of input.
type panickingRule struct{}

func (panickingRule) ID() string               { return "E999" }
func (panickingRule) Slug() string             { return "panicking-rule" }
func (panickingRule) Severity() types.Severity { return types.SeverityError }
func (panickingRule) AutoFixable() bool        { return true }
func (panickingRule) Check(sf *parser.SourceFile, st *store.Store) []types.Issue {
	panic("boom")
}
func (panickingRule) Fix(sf *parser.SourceFile, issues []types.Issue) []types.Transformation {
	panic("boom")
}

func TestDriverCheckAllSurvivesPanickingRule(t *testing.T) {
	p, err := parser.NewParser()
	require.NoError(t, err)
	t.Cleanup(p.Close)
	sf, err := p.Parse(types.FileID("t.can"), []byte("void f() {}\n"))
	require.NoError(t, err)
	t.Cleanup(sf.Close)

	d := &Driver{
		p:        p,
		cfg:      config.Default(),
		rules:    []lint.Rule{panickingRule{}},
		disabled: map[string]bool{},
	}
	issues := d.checkAll(sf, store.New(1))
	require.Len(t, issues, 1)
	assert.Equal(t, "rule_internal_error", issues[0].RuleID)
}

func TestDriverCollectFixesSurvivesPanickingRule(t *testing.T) {
	p, err := parser.NewParser()
	require.NoError(t, err)
	t.Cleanup(p.Close)
	sf, err := p.Parse(types.FileID("t.can"), []byte("void f() {}\n"))
	require.NoError(t, err)
	t.Cleanup(sf.Close)

	d := &Driver{
		p:        p,
		cfg:      config.Default(),
		rules:    []lint.Rule{panickingRule{}},
		disabled: map[string]bool{},
	}
	issues := []types.Issue{{RuleID: "E999", AutoFixable: true}}
	transforms, panics := d.collectFixes(sf, store.New(1), issues)
	assert.Empty(t, transforms)
	require.Len(t, panics, 1)
	assert.Equal(t, "rule_internal_error", panics[0].RuleID)
}
