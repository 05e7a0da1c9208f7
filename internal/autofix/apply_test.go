package autofix

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/caplint/internal/types"
)

func TestApplyTransformationsSplicesInOrder(t *testing.T) {
	src := []byte("extern int x;\n")
	transforms := []types.Transformation{
		{Start: 0, End: 7, Replacement: nil},
	}
	out, ok := applyTransformations(src, transforms)
	assert.True(t, ok)
	assert.Equal(t, "int x;\n", string(out))
}

func TestApplyTransformationsRejectsOverlap(t *testing.T) {
	src := []byte("abcdef")
	transforms := []types.Transformation{
		{Start: 0, End: 3, Replacement: []byte("X")},
		{Start: 2, End: 5, Replacement: []byte("Y")},
	}
	out, ok := applyTransformations(src, transforms)
	assert.False(t, ok)
	assert.Equal(t, src, out)
}

func TestApplyTransformationsHandlesAbuttingRanges(t *testing.T) {
	src := []byte("abcdef")
	transforms := []types.Transformation{
		{Start: 0, End: 3, Replacement: []byte("X")},
		{Start: 3, End: 6, Replacement: []byte("Y")},
	}
	out, ok := applyTransformations(src, transforms)
	assert.True(t, ok)
	assert.Equal(t, "XY", string(out))
}
