package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/caplint/internal/types"
)

func TestCollectRemoveInsertDeletesThenInsertsAtTarget(t *testing.T) {
	src := []byte("int x;\nvoid f()\n{\n}\n")
	moves := []types.Range{{Start: 0, End: 7}}
	transforms := collectRemoveInsert(src, moves, 18, "E006")

	require.Len(t, transforms, 2)
	assert.Equal(t, 0, transforms[0].Start)
	assert.Equal(t, 7, transforms[0].End)
	assert.Nil(t, transforms[0].Replacement)

	assert.Equal(t, 18, transforms[1].Start)
	assert.Equal(t, 18, transforms[1].End)
	assert.Equal(t, "int x;\n", string(transforms[1].Replacement))
}

func TestCollectRemoveInsertReturnsNilForNoMoves(t *testing.T) {
	transforms := collectRemoveInsert([]byte("abc"), nil, 0, "E006")
	assert.Nil(t, transforms)
}
