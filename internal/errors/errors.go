// Package errors defines the typed error hierarchy caplint's core returns,
// grounded on the teacher's internal/errors package: one struct per
// failure category, each carrying the file it happened to and unwrapping
// to its underlying cause for errors.Is/errors.As.
package errors

import (
	"fmt"

	"github.com/standardbeagle/caplint/internal/types"
)

// ParseFailure reports that the parser façade could not produce a tree at
// all for a file (not merely a file with ERROR subtrees, which is
// non-fatal and recorded on SourceFile.ErrorsPresent instead).
type ParseFailure struct {
	File       types.FileID
	Underlying error
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("parse failed for %s: %v", e.File, e.Underlying)
}
func (e *ParseFailure) Unwrap() error { return e.Underlying }

// RuleFailure reports that a lint rule's check or fix returned an error
// instead of issues/transformations.
type RuleFailure struct {
	RuleID     string
	File       types.FileID
	Underlying error
}

func (e *RuleFailure) Error() string {
	return fmt.Sprintf("rule %s failed on %s: %v", e.RuleID, e.File, e.Underlying)
}
func (e *RuleFailure) Unwrap() error { return e.Underlying }

// FixRejection reports that a fix pass was discarded because applying its
// transformations would have introduced a parse ERROR that was not
// present before, or because its transformations overlapped.
type FixRejection struct {
	RuleID string
	File   types.FileID
	Reason string
}

func (e *FixRejection) Error() string {
	return fmt.Sprintf("fix from %s on %s rejected: %s", e.RuleID, e.File, e.Reason)
}

// ConvergenceFailure reports that lint_fix or format did not reach a
// stable fixed point within the configured pass budget.
type ConvergenceFailure struct {
	File     types.FileID
	Passes   int
	MaxPasses int
}

func (e *ConvergenceFailure) Error() string {
	return fmt.Sprintf("%s did not converge after %d/%d passes", e.File, e.Passes, e.MaxPasses)
}

// StoreFailure reports a failure persisting or loading facts through the
// aic.db store.
type StoreFailure struct {
	Operation  string
	Underlying error
}

func (e *StoreFailure) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Operation, e.Underlying)
}
func (e *StoreFailure) Unwrap() error { return e.Underlying }
