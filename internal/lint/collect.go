package lint

import "github.com/standardbeagle/caplint/internal/types"

// collectRemoveInsert implements §4.5's mandatory pattern for rules that
// move code (E003, E006, E007): given the full source bytes and the byte
// ranges of items to relocate (already in their original, AST order),
// emit one deletion Transformation per item and a single insertion
// Transformation at insertAt whose replacement is the concatenation of
// the moved text, each item terminated by a newline, in original
// relative order. Deletions never overlap the insertion point because
// insertAt is always outside every moved range (§4.5, §5 ordering).
func collectRemoveInsert(src []byte, moves []types.Range, insertAt int, ruleID string) []types.Transformation {
	if len(moves) == 0 {
		return nil
	}

	var buf []byte
	out := make([]types.Transformation, 0, len(moves)+1)
	for _, m := range moves {
		text := src[m.Start:m.End]
		buf = append(buf, text...)
		if len(text) == 0 || text[len(text)-1] != '\n' {
			buf = append(buf, '\n')
		}
		out = append(out, types.Transformation{
			Start: m.Start, End: m.End, Replacement: nil,
			OriginatingRuleID: ruleID,
		})
	}
	out = append(out, types.Transformation{
		Start: insertAt, End: insertAt, Replacement: buf,
		OriginatingRuleID: ruleID,
	})
	return out
}
