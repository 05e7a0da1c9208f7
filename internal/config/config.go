// Package config loads caplint's per-project configuration from a
// .caplint.kdl file, mirroring the teacher's internal/config package: a
// Config struct with defaults baked in, overridden node-by-node by
// whatever the KDL document actually sets.
package config

// BraceStyle is the brace_style setting. It is decoded and stored, but
// the formatter does not read it: an opening brace is always placed on
// the line of the statement that introduces its block.
type BraceStyle string

const (
	BraceSameLine BraceStyle = "same_line"
	BraceNewLine  BraceStyle = "new_line"
)

// QuoteStyle is the quote_style setting. It is decoded and stored, but
// the formatter does not read it: multi-character single-quoted literals
// are always rewritten to double quotes.
type QuoteStyle string

const (
	QuoteDouble QuoteStyle = "double"
	QuoteSingle QuoteStyle = "single"
)

// Config is caplint's full configuration surface (§6).
type Config struct {
	IndentSize           int
	LineLength           int
	BraceStyle           BraceStyle
	QuoteStyle           QuoteStyle
	ReorderTopLevel      bool
	EnableCommentFeatures bool
	MaxPasses            int
	DisabledRules        []string
	FixOnly              []string
	Include              []string
	Exclude              []string
	ParallelFileWorkers  int
}

// Default returns caplint's built-in defaults, the same values LoadKDL
// starts from before applying whatever a .caplint.kdl document overrides.
func Default() *Config {
	return &Config{
		IndentSize:            2,
		LineLength:            100,
		BraceStyle:            BraceSameLine,
		QuoteStyle:            QuoteDouble,
		ReorderTopLevel:       false,
		EnableCommentFeatures: true,
		MaxPasses:             10,
		DisabledRules:         nil,
		FixOnly:               nil,
		Include:               []string{"**/*.can", "**/*.cin"},
		Exclude:               []string{"**/Release/**", "**/Debug/**"},
		ParallelFileWorkers:   4,
	}
}

// RuleEnabled reports whether ruleID is absent from DisabledRules.
// FixOnly does not affect it: analyze() still reports every non-disabled
// rule's issues, and FixAllowed applies FixOnly on top of this check.
func (c *Config) RuleEnabled(ruleID string) bool {
	for _, d := range c.DisabledRules {
		if d == ruleID {
			return false
		}
	}
	return true
}

// FixAllowed reports whether ruleID may apply an auto-fix under FixOnly.
// An empty FixOnly means every non-disabled, auto-fixable rule may fix.
func (c *Config) FixAllowed(ruleID string) bool {
	if !c.RuleEnabled(ruleID) {
		return false
	}
	if len(c.FixOnly) == 0 {
		return true
	}
	for _, r := range c.FixOnly {
		if r == ruleID {
			return true
		}
	}
	return false
}
