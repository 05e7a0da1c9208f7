package autofix

import (
	"sort"

	"github.com/standardbeagle/caplint/internal/types"
)

// applyTransformations builds the post-fix buffer from src and a batch
// of transformations, asserting §3.2 invariant 3 (non-overlapping
// within a pass). Transformations are sorted by (start, priority) and
// spliced left to right; ok is false if two transformations overlap,
// in which case src is returned unchanged and the caller should stop
// rather than risk corrupting the buffer.
func applyTransformations(src []byte, transforms []types.Transformation) (out []byte, ok bool) {
	if len(transforms) == 0 {
		return src, true
	}
	sorted := make([]types.Transformation, len(transforms))
	copy(sorted, transforms)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].Priority < sorted[j].Priority
	})

	var buf []byte
	cursor := 0
	for _, t := range sorted {
		if t.Start < cursor {
			return src, false // overlap
		}
		buf = append(buf, src[cursor:t.Start]...)
		buf = append(buf, t.Replacement...)
		cursor = t.End
	}
	buf = append(buf, src[cursor:]...)
	return buf, true
}
