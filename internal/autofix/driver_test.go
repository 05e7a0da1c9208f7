package autofix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/caplint/internal/config"
	"github.com/standardbeagle/caplint/internal/parser"
	"github.com/standardbeagle/caplint/internal/types"
)

func TestRunFixesExternKeyword(t *testing.T) {
	p, err := parser.NewParser()
	require.NoError(t, err)
	defer p.Close()

	src := []byte("extern int gCounter;\n\nvoid main(void)\n{\n  write(\"hi\");\n}\n")
	d := New(p, config.Default())
	rep, err := d.Run(types.FileID("t.can"), src)
	require.NoError(t, err)

	assert.NotContains(t, string(rep.NewBytes), "extern")
	assert.Contains(t, rep.AppliedRuleIDs, "E001")
}

func TestRunIsIdempotent(t *testing.T) {
	p, err := parser.NewParser()
	require.NoError(t, err)
	defer p.Close()

	src := []byte("extern int gCounter;\nvoid main(void)\n{\n  write(\"hi\");\n}\n")
	d := New(p, config.Default())

	first, err := d.Run(types.FileID("t.can"), src)
	require.NoError(t, err)

	d2 := New(p, config.Default())
	second, err := d2.Run(types.FileID("t.can"), first.NewBytes)
	require.NoError(t, err)

	assert.Equal(t, string(first.NewBytes), string(second.NewBytes))
}
