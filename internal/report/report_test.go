package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/caplint/internal/core"
	"github.com/standardbeagle/caplint/internal/types"
)

func TestExitCodeReflectsHasErrors(t *testing.T) {
	assert.Equal(t, 0, ExitCode(false))
	assert.Equal(t, 1, ExitCode(true))
}

func TestWriteAnalysisJSONRoundTrips(t *testing.T) {
	rep := core.AnalysisReport{
		Issues: []types.Issue{
			{RuleID: "E001", Severity: types.SeverityError, File: types.FileID("a.can"), Message: "extern is not permitted in CAPL"},
		},
		SymbolsAdded:    2,
		ReferencesAdded: 1,
	}
	var buf bytes.Buffer
	require.NoError(t, WriteAnalysis(&buf, rep, JSON))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, float64(2), decoded["symbolsAdded"])
	issues := decoded["issues"].([]any)
	require.Len(t, issues, 1)
	assert.Equal(t, "E001", issues[0].(map[string]any)["ruleId"])
}

func TestWriteAnalysisTextListsEachIssue(t *testing.T) {
	rep := core.AnalysisReport{
		Issues: []types.Issue{
			{RuleID: "E008", Severity: types.SeverityError, File: types.FileID("a.can"), Message: "-> is not valid CAPL member access"},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteAnalysis(&buf, rep, Text))
	assert.Contains(t, buf.String(), "E008")
	assert.Contains(t, buf.String(), "1 issue(s)")
}

func TestWriteFormatTextReportsUnchanged(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFormat(&buf, types.FileID("a.can"), core.FormatReport{Changed: false}, Text))
	assert.Contains(t, buf.String(), "already formatted")
}

func TestWriteFormatTextReportsViolationCount(t *testing.T) {
	var buf bytes.Buffer
	rep := core.FormatReport{Changed: true, Violations: []int{3, 7}}
	require.NoError(t, WriteFormat(&buf, types.FileID("a.can"), rep, Text))
	assert.Contains(t, buf.String(), "2 line(s)")
}
