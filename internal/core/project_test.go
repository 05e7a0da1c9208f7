package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/caplint/internal/config"
	"github.com/standardbeagle/caplint/internal/parser"
	"github.com/standardbeagle/caplint/internal/types"
)

func newTestProject(t *testing.T, known ...types.FileID) (*Project, *parser.Parser) {
	t.Helper()
	p, err := parser.NewParser()
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return NewProject(p, config.Default(), known), p
}

func TestAnalyzeFileResolvesQuotedIncludeAgainstKnownFiles(t *testing.T) {
	a := types.FileID("main.can")
	b := types.FileID("util.cin")
	pr, _ := newTestProject(t, a, b)

	_, err := pr.AnalyzeFile(b, []byte("variables\n{\n  int gShared;\n}\n"))
	require.NoError(t, err)

	_, err = pr.AnalyzeFile(a, []byte("#include \"util.cin\"\n\nvoid main(void)\n{\n}\n"))
	require.NoError(t, err)

	var found bool
	for _, inc := range pr.Store().IncludesIn(a) {
		if inc.TargetPathText == "util.cin" {
			found = true
			assert.Equal(t, b, inc.ResolvedPath)
		}
	}
	assert.True(t, found)
}

func TestAnalyzeFileDetectsCircularInclude(t *testing.T) {
	a := types.FileID("a.cin")
	b := types.FileID("b.cin")
	pr, _ := newTestProject(t, a, b)

	_, err := pr.AnalyzeFile(a, []byte("#include \"b.cin\"\n"))
	require.NoError(t, err)
	_, err = pr.AnalyzeFile(b, []byte("#include \"a.cin\"\n"))
	require.NoError(t, err)

	cycles := pr.Store().IncludeCycles()
	assert.Contains(t, cycles, a)
	assert.Contains(t, cycles, b)
}

func TestAnalyzeFileParseErrorNamesFile(t *testing.T) {
	pr, _ := newTestProject(t, types.FileID("broken.can"))
	_, err := pr.AnalyzeFile(types.FileID("broken.can"), []byte("{{{{"))
	if err != nil {
		assert.Contains(t, err.Error(), "broken.can")
	}
}

func TestFormatCheckOnlyWithholdsBytesButReportsViolations(t *testing.T) {
	src := []byte("void f()\n{\nwrite(\"x\");\n}\n")
	rep := Format(src, config.Default(), true)
	assert.Nil(t, rep.NewBytes)
	if rep.Changed {
		assert.NotEmpty(t, rep.Violations)
	}
}
