package format

import "github.com/standardbeagle/caplint/internal/config"

// Report is the outcome of formatting one file.
type Report struct {
	Formatted []byte
	Changed   bool
}

// Format runs the five-phase pipeline over src and returns the
// formatted buffer: pre-normalization, structural convergence, vertical
// whitespace normalization, comment rules, and finally indentation.
// Each phase consumes the previous phase's output; nothing here needs
// the symbol store; formatting is purely a function of one file's text
// and the active config. TopLevelOrderingRule (§4.8) runs right after
// pre-normalization, since it reorders whole top-level segments and is a
// no-op unless cfg.ReorderTopLevel is set.
func Format(src []byte, cfg *config.Config) Report {
	cur := preNormalize(src)
	cur = reorderTopLevel(cur, cfg)
	cur = structuralConverge(cur, cfg)
	cur = normalizeVertical(cur)
	if cfg.EnableCommentFeatures {
		cur = alignTrailingComments(cur)
		cur = reflowComments(cur, cfg)
	}
	cur = indent(cur, cfg)

	return Report{Formatted: cur, Changed: string(cur) != string(src)}
}
