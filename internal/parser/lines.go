package parser

import (
	"sort"

	"github.com/standardbeagle/caplint/internal/types"
)

// LineTable indexes the byte offset at which every line begins. It gives
// O(log n) row/column lookup from a byte offset and O(1) row-to-offset
// lookup, the two directions the formatter and lint rules need when they
// translate between byte ranges and user-facing positions.
type LineTable struct {
	starts []int // starts[i] = byte offset of the first byte of row i
}

// NewLineTable scans src once and records the offset after every '\n'.
func NewLineTable(src []byte) *LineTable {
	starts := make([]int, 1, 64)
	starts[0] = 0
	for i, b := range src {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineTable{starts: starts}
}

// Position resolves a byte offset to its (row, column) pair. Offsets past
// the end of the buffer clamp to the last known row.
func (lt *LineTable) Position(offset int) types.Position {
	row := sort.Search(len(lt.starts), func(i int) bool {
		return lt.starts[i] > offset
	}) - 1
	if row < 0 {
		row = 0
	}
	return types.Position{Row: row, Column: offset - lt.starts[row], Offset: offset}
}

// RowOffset returns the byte offset of the first byte of row, or -1 if row
// is out of range.
func (lt *LineTable) RowOffset(row int) int {
	if row < 0 || row >= len(lt.starts) {
		return -1
	}
	return lt.starts[row]
}

// LineCount reports the number of lines recorded (including the final,
// possibly-partial, line).
func (lt *LineTable) LineCount() int { return len(lt.starts) }

// Range builds a types.Range from raw byte offsets, resolving both
// endpoints through this table so every Range in the system maps
// consistently to its (row, column) pair.
func (lt *LineTable) Range(start, end int) types.Range {
	return types.Range{
		Start:    start,
		End:      end,
		StartPos: lt.Position(start),
		EndPos:   lt.Position(end),
	}
}
