package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/caplint/internal/parser"
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

// TestExtractRecordsFactsEvenForQuestionableCode asserts the extractor
// never withholds a fact because the placement looks wrong: that verdict
// belongs to internal/lint, not here.
func TestExtractRecordsFactsEvenForQuestionableCode(t *testing.T) {
	sf := mustParse(t, "int gCounter;\n\nvoid helper(void);\n")
	e := New(nil)
	facts := e.Extract(sf)

	names := map[string]bool{}
	for _, s := range facts.Symbols {
		names[s.Name] = true
	}
	assert.True(t, names["gCounter"], "a top-level variable is still a recorded fact, not suppressed")
	assert.True(t, names["helper"], "a forward declaration is still a recorded fact, not suppressed")
}

func TestExtractRecordsVariablesBlockRange(t *testing.T) {
	sf := mustParse(t, "variables\n{\n  int gX;\n}\n")
	e := New(nil)
	facts := e.Extract(sf)

	require.NotNil(t, facts.VariablesBlockRange)
	block := string(sf.Bytes[facts.VariablesBlockRange.Start:facts.VariablesBlockRange.End])
	assert.Contains(t, block, "int gX;")
}

func TestExtractRecordsQuotedInclude(t *testing.T) {
	sf := mustParse(t, "#include \"local.cin\"\nvoid f() {}\n")
	e := New(nil)
	facts := e.Extract(sf)

	require.Len(t, facts.Includes, 1)
	assert.False(t, facts.Includes[0].Angled)
	assert.Equal(t, "local.cin", facts.Includes[0].TargetPathText)
}

func TestExtractRecordsAngledInclude(t *testing.T) {
	sf := mustParse(t, "#include <system.cin>\nvoid f() {}\n")
	e := New(nil)
	facts := e.Extract(sf)

	require.Len(t, facts.Includes, 1)
	assert.True(t, facts.Includes[0].Angled)
	assert.Equal(t, "system.cin", facts.Includes[0].TargetPathText)
}

func TestExtractRecordsMidBlockStatementsBeforeCount(t *testing.T) {
	sf := mustParse(t, "void f()\n{\n  write(\"a\");\n  int x;\n}\n")
	e := New(nil)
	facts := e.Extract(sf)

	var found bool
	for _, s := range facts.Symbols {
		if s.Name == "x" {
			found = true
			assert.Greater(t, s.StatementsBeforeInBlock, 0)
		}
	}
	assert.True(t, found)
}
