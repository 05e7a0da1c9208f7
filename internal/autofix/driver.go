// Package autofix is the auto-fix driver (C6): an iterative
// extract-check-fix-apply-reparse loop bounded by a pass cap, with the
// no-new-error and monotonic-progress guarantees of §4.6.
package autofix

import (
	"sort"

	"github.com/standardbeagle/caplint/internal/config"
	"github.com/standardbeagle/caplint/internal/extract"
	"github.com/standardbeagle/caplint/internal/lint"
	"github.com/standardbeagle/caplint/internal/parser"
	"github.com/standardbeagle/caplint/internal/store"
	"github.com/standardbeagle/caplint/internal/types"
)

// Report is lint_fix's external result (§6 FixReport).
type Report struct {
	NewBytes        []byte
	RemainingIssues []types.Issue
	AppliedRuleIDs  []string
	PassesUsed      int
	Converged       bool
}

// Driver runs the fix loop for one file at a time. It is not safe for
// concurrent use on the same file; the caller gives each goroutine its
// own Driver and Parser, per §5's reentrancy contract.
type Driver struct {
	p        *parser.Parser
	cfg      *config.Config
	rules    []lint.Rule
	disabled map[string]bool // ruleID -> disabled for this file, this session
}

// New builds a Driver with cfg's disabled_rules already applied to the
// registry; fix_only is applied per issue when fixes are collected.
func New(p *parser.Parser, cfg *config.Config) *Driver {
	rules := lint.Filter(lint.All(), cfg.DisabledRules, nil)
	return &Driver{p: p, cfg: cfg, rules: rules, disabled: map[string]bool{}}
}

// Run applies fixes to source until convergence, rejection-free, or the
// pass cap, whichever comes first.
func (d *Driver) Run(path types.FileID, source []byte) (Report, error) {
	cur := source
	var appliedIDs []string
	appliedSet := map[string]bool{}
	var lastIssues []types.Issue
	converged := false
	pass := 0

	for ; pass < d.cfg.MaxPasses; pass++ {
		sf, err := d.p.Parse(path, cur)
		if err != nil {
			return Report{}, err
		}
		preErrors := countErrors(sf)

		st := singleFileStore(path, extractOne(d.p, sf))
		issues := d.checkAll(sf, st)
		lastIssues = issues

		transforms, fixPanics := d.collectFixes(sf, st, issues)
		if len(fixPanics) > 0 {
			lastIssues = append(lastIssues, fixPanics...)
		}
		if len(transforms) == 0 {
			sf.Close()
			converged = true
			break
		}

		next, ok := applyTransformations(cur, transforms)
		if !ok {
			sf.Close()
			break // overlapping transformations; stop rather than corrupt the buffer
		}
		if string(next) == string(cur) {
			sf.Close()
			converged = true
			break // no textual progress; §4.6 monotonic-progress termination
		}

		postSF, err := d.p.Parse(path, next)
		if err != nil {
			sf.Close()
			return Report{}, err
		}
		postErrors := countErrors(postSF)
		sf.Close()

		if postErrors > preErrors {
			offenders := originatingRules(transforms)
			for _, id := range offenders {
				d.disabled[id] = true
			}
			d.rules = lint.ExcludeIDs(d.rules, offenders)
			postSF.Close()
			continue // retry this pass without the offending rule(s)
		}

		for _, id := range originatingRules(transforms) {
			if !appliedSet[id] {
				appliedSet[id] = true
				appliedIDs = append(appliedIDs, id)
			}
		}
		cur = next
		postSF.Close()
	}

	sort.Strings(appliedIDs)
	return Report{
		NewBytes: cur, RemainingIssues: lastIssues, AppliedRuleIDs: appliedIDs,
		PassesUsed: pass, Converged: converged,
	}, nil
}

// checkAll runs every enabled rule through lint.SafeCheck, so a panicking
// rule yields a rule_internal_error issue instead of crashing the pass
// (§4.9/§7).
func (d *Driver) checkAll(sf *parser.SourceFile, st *store.Store) []types.Issue {
	var issues []types.Issue
	for _, r := range d.rules {
		if d.disabled[r.ID()] {
			continue
		}
		issues = append(issues, lint.SafeCheck(r, sf, st)...)
	}
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].PrimaryRange.Start != issues[j].PrimaryRange.Start {
			return issues[i].PrimaryRange.Start < issues[j].PrimaryRange.Start
		}
		return issues[i].RuleID < issues[j].RuleID
	})
	return issues
}

// collectFixes groups issues by rule and calls each fixable rule's Fix
// once, respecting fix_only. Each Fix call goes through lint.SafeFix, so
// a panicking rule contributes no transformations but a synthetic
// rule_internal_error issue, returned alongside the transformations
// rather than crashing the pass.
func (d *Driver) collectFixes(sf *parser.SourceFile, st *store.Store, issues []types.Issue) ([]types.Transformation, []types.Issue) {
	byRule := map[string][]types.Issue{}
	for _, is := range issues {
		if !is.AutoFixable {
			continue
		}
		if !d.cfg.FixAllowed(is.RuleID) {
			continue
		}
		byRule[is.RuleID] = append(byRule[is.RuleID], is)
	}
	var out []types.Transformation
	var panics []types.Issue
	for _, r := range d.rules {
		group := byRule[r.ID()]
		if len(group) == 0 || !r.AutoFixable() {
			continue
		}
		transforms, panicIssue := lint.SafeFix(r, sf, group)
		out = append(out, transforms...)
		if panicIssue != nil {
			panics = append(panics, *panicIssue)
		}
	}
	return out, panics
}

func extractOne(p *parser.Parser, sf *parser.SourceFile) extract.Facts {
	return extract.New(p).Extract(sf)
}

func singleFileStore(path types.FileID, facts extract.Facts) *store.Store {
	st := store.New(1)
	st.AddFile(path)
	for _, sym := range facts.Symbols {
		st.AddSymbol(sym)
	}
	for _, inc := range facts.Includes {
		st.AddInclude(inc)
	}
	for _, ref := range facts.References {
		st.AddReference(ref)
	}
	if facts.VariablesBlockRange != nil {
		st.SetVariablesBlock(path, *facts.VariablesBlockRange)
	}
	return st
}

func countErrors(sf *parser.SourceFile) int {
	n := 0
	for _, e := range parser.Walk(sf.Root()) {
		if e.Node.IsError() {
			n++
		}
	}
	return n
}

func originatingRules(transforms []types.Transformation) []string {
	set := map[string]bool{}
	var out []string
	for _, t := range transforms {
		if !set[t.OriginatingRuleID] {
			set[t.OriginatingRuleID] = true
			out = append(out, t.OriginatingRuleID)
		}
	}
	return out
}
