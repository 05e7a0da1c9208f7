// Package report renders the core's three report types as text or JSON
// and computes the CLI's exit code, grounded on the teacher's
// json.NewEncoder(os.Stdout).Encode idiom in cmd/lci/main.go and
// cmd/lci/search.go for JSON output, with a parallel plain-text writer
// for the default, human-facing mode.
package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/standardbeagle/caplint/internal/core"
	"github.com/standardbeagle/caplint/internal/types"
)

// Format selects the rendering the CLI writes to stdout.
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
)

// ExitCode computes §6's exit-code contract: 0 clean, 1 on detected
// errors/violations, 2 only ever returned by the caller itself on an
// internal/IO failure (a report never represents that case, since the
// core never got far enough to build one).
func ExitCode(hasErrors bool) int {
	if hasErrors {
		return 1
	}
	return 0
}

// analysisJSON and fixJSON give the reports field names stable across a
// Go rename, since this is an external, scriptable contract.
type analysisJSON struct {
	Issues          []issueJSON `json:"issues"`
	SymbolsAdded    int         `json:"symbolsAdded"`
	ReferencesAdded int         `json:"referencesAdded"`
}

type issueJSON struct {
	RuleID      string `json:"ruleId"`
	Severity    string `json:"severity"`
	File        string `json:"file"`
	Line        int    `json:"line"`
	Column      int    `json:"column"`
	Message     string `json:"message"`
	AutoFixable bool   `json:"autoFixable"`
}

type fixJSON struct {
	Changed         bool     `json:"changed"`
	RemainingIssues int      `json:"remainingIssues"`
	AppliedRuleIDs  []string `json:"appliedRuleIds"`
	PassesUsed      int      `json:"passesUsed"`
	Converged       bool     `json:"converged"`
}

type formatJSON struct {
	Changed    bool  `json:"changed"`
	Violations []int `json:"violations"`
}

func toIssueJSON(issues []types.Issue) []issueJSON {
	out := make([]issueJSON, len(issues))
	for i, is := range issues {
		out[i] = issueJSON{
			RuleID:      is.RuleID,
			Severity:    is.Severity.String(),
			File:        string(is.File),
			Line:        is.PrimaryRange.StartPos.Row + 1,
			Column:      is.PrimaryRange.StartPos.Column + 1,
			Message:     is.Message,
			AutoFixable: is.AutoFixable,
		}
	}
	return out
}

// WriteAnalysis renders an AnalysisReport to w.
func WriteAnalysis(w io.Writer, rep core.AnalysisReport, format Format) error {
	if format == JSON {
		return json.NewEncoder(w).Encode(analysisJSON{
			Issues:          toIssueJSON(rep.Issues),
			SymbolsAdded:    rep.SymbolsAdded,
			ReferencesAdded: rep.ReferencesAdded,
		})
	}
	for _, is := range rep.Issues {
		fmt.Fprintf(w, "%s:%d:%d: %s [%s] %s\n",
			is.File, is.PrimaryRange.StartPos.Row+1, is.PrimaryRange.StartPos.Column+1,
			is.Severity, is.RuleID, is.Message)
	}
	fmt.Fprintf(w, "%d issue(s), %d symbol(s), %d reference(s)\n",
		len(rep.Issues), rep.SymbolsAdded, rep.ReferencesAdded)
	return nil
}

// WriteFix renders a FixReport to w.
func WriteFix(w io.Writer, path types.FileID, rep core.FixReport, format Format) error {
	if format == JSON {
		return json.NewEncoder(w).Encode(fixJSON{
			Changed:         rep.PassesUsed > 0,
			RemainingIssues: len(rep.RemainingIssues),
			AppliedRuleIDs:  rep.AppliedRuleIDs,
			PassesUsed:      rep.PassesUsed,
			Converged:       rep.Converged,
		})
	}
	status := "converged"
	if !rep.Converged {
		status = "pass cap reached"
	}
	fmt.Fprintf(w, "%s: %s in %d pass(es), %d rule(s) applied, %d issue(s) remaining\n",
		path, status, rep.PassesUsed, len(rep.AppliedRuleIDs), len(rep.RemainingIssues))
	for _, is := range rep.RemainingIssues {
		fmt.Fprintf(w, "  %s:%d: [%s] %s\n", path, is.PrimaryRange.StartPos.Row+1, is.RuleID, is.Message)
	}
	return nil
}

// WriteFormat renders a FormatReport to w.
func WriteFormat(w io.Writer, path types.FileID, rep core.FormatReport, format Format) error {
	if format == JSON {
		return json.NewEncoder(w).Encode(formatJSON{Changed: rep.Changed, Violations: rep.Violations})
	}
	if !rep.Changed {
		fmt.Fprintf(w, "%s: already formatted\n", path)
		return nil
	}
	fmt.Fprintf(w, "%s: %d line(s) would change\n", path, len(rep.Violations))
	return nil
}
