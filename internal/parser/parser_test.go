package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/caplint/internal/types"
)

func TestParseProducesCleanTreeForWellFormedSource(t *testing.T) {
	p, err := NewParser()
	require.NoError(t, err)
	defer p.Close()

	sf, err := p.Parse(types.FileID("t.can"), []byte("void f()\n{\n  write(\"hi\");\n}\n"))
	require.NoError(t, err)
	defer sf.Close()

	assert.False(t, sf.ErrorsPresent())
	assert.NotNil(t, sf.Root())
}

func TestParseDoesNotMutateCallerBuffer(t *testing.T) {
	p, err := NewParser()
	require.NoError(t, err)
	defer p.Close()

	src := []byte("void f() {}\n")
	original := append([]byte{}, src...)

	sf, err := p.Parse(types.FileID("t.can"), src)
	require.NoError(t, err)
	defer sf.Close()

	assert.Equal(t, original, src)
}

func TestWalkVisitsRootFirstInPreOrder(t *testing.T) {
	p, err := NewParser()
	require.NoError(t, err)
	defer p.Close()

	sf, err := p.Parse(types.FileID("t.can"), []byte("void f() {}\n"))
	require.NoError(t, err)
	defer sf.Close()

	entries := Walk(sf.Root())
	require.NotEmpty(t, entries)
	assert.Equal(t, 0, entries[0].Depth)
}

func TestIsCAPLFileRecognizesExtensions(t *testing.T) {
	assert.True(t, IsCAPLFile("a.can"))
	assert.True(t, IsCAPLFile("b.cin"))
	assert.False(t, IsCAPLFile("c.cpp"))
}
