// Package core wires the parser, extractor, symbol store, rule engine,
// auto-fix driver and formatter into the three entry points §6 exposes:
// analyze, lint_fix and format. Grounded on the teacher's top-level
// orchestration in cmd/lci/main.go, which owns the same parse -> extract
// -> store -> analyze sequence over a multi-file project.
package core

import (
	"path"
	"sort"

	"github.com/standardbeagle/caplint/internal/autofix"
	"github.com/standardbeagle/caplint/internal/config"
	"github.com/standardbeagle/caplint/internal/errors"
	"github.com/standardbeagle/caplint/internal/extract"
	"github.com/standardbeagle/caplint/internal/format"
	"github.com/standardbeagle/caplint/internal/lint"
	"github.com/standardbeagle/caplint/internal/parser"
	"github.com/standardbeagle/caplint/internal/store"
	"github.com/standardbeagle/caplint/internal/types"
)

// AnalysisReport is analyze()'s external result (§6).
type AnalysisReport struct {
	Issues          []types.Issue
	SymbolsAdded    int
	ReferencesAdded int
}

// FixReport is lint_fix()'s external result; it is exactly the autofix
// driver's Report, re-exported under the core package so callers only
// need to import one package for all three entry points.
type FixReport = autofix.Report

// FormatReport is format()'s external result (§6). In check-only mode
// NewBytes is nil and Changed reports whether the file would change;
// Violations lists the same line numbers a diff would show, so a CLI
// can print something actionable without materializing the full diff.
type FormatReport struct {
	NewBytes   []byte
	Changed    bool
	Violations []int
}

// Project holds the facts accumulated across every file analyzed so
// far, so cross-file rules (undefined-symbol via an include chain,
// circular-include, duplicate-function) see the whole graph rather than
// one file at a time. It is not safe for concurrent use; callers that
// analyze files in parallel give each worker its own Project and merge
// afterward, per §5's reentrancy contract.
type Project struct {
	p      *parser.Parser
	cfg    *config.Config
	st     *store.Store
	rules  []lint.Rule
	known  map[types.FileID]bool
	facts  map[types.FileID]extract.Facts
}

// NewProject builds an empty Project. known lists every file path the
// project is aware of (typically a directory walk's result), used to
// resolve quoted #include targets to an actual FileID; angle-bracket
// includes are never resolved, matching types.Include.Resolved()'s
// documented contract.
func NewProject(p *parser.Parser, cfg *config.Config, known []types.FileID) *Project {
	knownSet := make(map[types.FileID]bool, len(known))
	for _, f := range known {
		knownSet[f] = true
	}
	return &Project{
		p:     p,
		cfg:   cfg,
		st:    store.New(len(known)),
		rules: lint.Filter(lint.All(), cfg.DisabledRules, nil),
		known: knownSet,
		facts: make(map[types.FileID]extract.Facts, len(known)),
	}
}

// AnalyzeFile implements analyze(): parse source, extract its facts,
// fold them into the project-wide store (replacing any facts this file
// contributed on a prior call), resolve its includes against the known
// file set, and run every enabled rule with the now-current store. Each
// rule runs through lint.SafeCheck, so one rule panicking turns into a
// rule_internal_error issue rather than aborting the rest of the pass.
func (pr *Project) AnalyzeFile(fpath types.FileID, source []byte) (AnalysisReport, error) {
	pr.known[fpath] = true
	sf, err := pr.p.Parse(fpath, source)
	if err != nil {
		return AnalysisReport{}, &errors.ParseFailure{File: fpath, Underlying: err}
	}
	defer sf.Close()

	facts := extract.New(pr.p).Extract(sf)
	for i := range facts.Includes {
		facts.Includes[i].ResolvedPath = resolveInclude(fpath, facts.Includes[i], pr.known)
	}
	pr.facts[fpath] = facts
	pr.rebuildStore()

	var issues []types.Issue
	for _, r := range pr.rules {
		issues = append(issues, lint.SafeCheck(r, sf, pr.st)...)
	}
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].PrimaryRange.Start != issues[j].PrimaryRange.Start {
			return issues[i].PrimaryRange.Start < issues[j].PrimaryRange.Start
		}
		return issues[i].RuleID < issues[j].RuleID
	})

	return AnalysisReport{
		Issues:          issues,
		SymbolsAdded:    len(facts.Symbols),
		ReferencesAdded: len(facts.References),
	}, nil
}

// Store exposes the project-wide symbol store for callers that want to
// sync it to persist (C9) or inspect it directly (e.g. a `symbols`
// CLI subcommand).
func (pr *Project) Store() *store.Store { return pr.st }

// rebuildStore replays every file's last-recorded facts into a fresh
// Store. Facts are immutable once extracted and a project rarely holds
// more than a few hundred files, so a full rebuild on each analyzed file
// is simpler and cheap enough to prefer over incremental index surgery.
func (pr *Project) rebuildStore() {
	st := store.New(len(pr.known))
	for f := range pr.known {
		st.AddFile(f)
	}
	for fpath, facts := range pr.facts {
		st.AddFile(fpath)
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
			st.SetVariablesBlock(fpath, *facts.VariablesBlockRange)
		}
	}
	pr.st = st
}

// resolveInclude joins a quoted include's target against its source
// file's directory and accepts the join only if it names a file the
// project already knows about; angle-bracket includes (system headers)
// are left unresolved.
func resolveInclude(source types.FileID, inc types.Include, known map[types.FileID]bool) types.FileID {
	if inc.Angled || inc.TargetPathText == "" {
		return ""
	}
	dir := path.Dir(string(source))
	joined := path.Clean(path.Join(dir, inc.TargetPathText))
	if known[types.FileID(joined)] {
		return types.FileID(joined)
	}
	// Fall back to a bare basename match, tolerating projects whose
	// include paths don't mirror directory layout exactly.
	base := path.Base(inc.TargetPathText)
	for f := range known {
		if path.Base(string(f)) == base {
			return f
		}
	}
	return ""
}

// Fix implements lint_fix(): delegates to the auto-fix driver (C6),
// which is inherently single-file since every fixable rule's Fix is a
// pure function of one file's issues.
func Fix(p *parser.Parser, cfg *config.Config, fpath types.FileID, source []byte) (FixReport, error) {
	return autofix.New(p, cfg).Run(fpath, source)
}

// Format implements format(): a pure function of one file's bytes and
// the active config, needing no symbol store at all. checkOnly mirrors
// §6's check-only mode: NewBytes is withheld and Violations lists the
// 1-based line numbers that differ.
func Format(source []byte, cfg *config.Config, checkOnly bool) FormatReport {
	rep := format.Format(source, cfg)
	out := FormatReport{Changed: rep.Changed}
	if !checkOnly {
		out.NewBytes = rep.Formatted
	}
	if rep.Changed {
		out.Violations = diffLines(source, rep.Formatted)
	}
	return out
}

// diffLines returns the 1-based line numbers where a and b differ, for
// FormatReport.Violations in check-only mode. It is a coarse line-level
// diff (no LCS alignment): good enough to point a user at the first
// divergent lines without pulling in a diff library the formatter has no
// other use for.
func diffLines(a, b []byte) []int {
	linesA := splitLines(a)
	linesB := splitLines(b)
	n := len(linesA)
	if len(linesB) > n {
		n = len(linesB)
	}
	var out []int
	for i := 0; i < n; i++ {
		var la, lb string
		if i < len(linesA) {
			la = linesA[i]
		}
		if i < len(linesB) {
			lb = linesB[i]
		}
		if la != lb {
			out = append(out, i+1)
		}
	}
	return out
}

func splitLines(b []byte) []string {
	var out []string
	start := 0
	for i, c := range b {
		if c == '\n' {
			out = append(out, string(b[start:i]))
			start = i + 1
		}
	}
	out = append(out, string(b[start:]))
	return out
}
