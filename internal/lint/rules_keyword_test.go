package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/caplint/internal/parser"
	"github.com/standardbeagle/caplint/internal/store"
	"github.com/standardbeagle/caplint/internal/types"
)

func mustParse(t *testing.T, src string) *parser.SourceFile {
	t.Helper()
	p, err := parser.NewParser()
	require.NoError(t, err)
	t.Cleanup(p.Close)
	sf, err := p.Parse(types.FileID("t.can"), []byte(src))
	require.NoError(t, err)
	t.Cleanup(sf.Close)
	return sf
}

func TestArrowOperatorFlagsAndFixes(t *testing.T) {
	sf := mustParse(t, "void f() {\n  msg->dlc = 1;\n}\n")
	r := &ArrowOperator{}
	issues := r.Check(sf, store.New(1))
	require.Len(t, issues, 1)
	assert.Equal(t, "E008", issues[0].RuleID)

	transforms := r.Fix(sf, issues)
	require.Len(t, transforms, 1)
	assert.Equal(t, []byte("."), transforms[0].Replacement)
}

func TestArrowOperatorIgnoresSeparatedTokens(t *testing.T) {
	sf := mustParse(t, "int a = x - > y;\n")
	r := &ArrowOperator{}
	issues := r.Check(sf, store.New(1))
	assert.Empty(t, issues)
}

func TestExternKeywordFlagsAtStatementStart(t *testing.T) {
	sf := mustParse(t, "extern int counter;\n")
	r := &ExternKeyword{}
	issues := r.Check(sf, store.New(1))
	require.Len(t, issues, 1)

	transforms := r.Fix(sf, issues)
	require.Len(t, transforms, 1)
	out, ok := applyForTest(sf.Bytes, transforms)
	require.True(t, ok)
	assert.Equal(t, "int counter;\n", string(out))
}

func applyForTest(src []byte, transforms []types.Transformation) ([]byte, bool) {
	if len(transforms) != 1 {
		return nil, false
	}
	t := transforms[0]
	out := append([]byte{}, src[:t.Start]...)
	out = append(out, t.Replacement...)
	out = append(out, src[t.End:]...)
	return out, true
}
