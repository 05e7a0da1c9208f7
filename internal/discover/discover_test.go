package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/caplint/internal/config"
)

func writeFile(t *testing.T, root, rel string) {
	t.Helper()
	full := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("void f() {}\n"), 0o644))
}

func TestFilesMatchesIncludeAndSkipsExclude(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/main.can")
	writeFile(t, root, "src/util.cin")
	writeFile(t, root, "Release/generated.can")
	writeFile(t, root, "README.md")

	cfg := config.Default()
	files, err := Files(root, cfg)
	require.NoError(t, err)

	rels := make([]string, len(files))
	for i, f := range files {
		rel, _ := filepath.Rel(root, f)
		rels[i] = filepath.ToSlash(rel)
	}

	assert.Contains(t, rels, "src/main.can")
	assert.Contains(t, rels, "src/util.cin")
	assert.NotContains(t, rels, "Release/generated.can")
	assert.NotContains(t, rels, "README.md")
}

func TestShouldIncludeWithNoPatternsIncludesEverything(t *testing.T) {
	assert.True(t, shouldInclude("anything.can", nil))
}

func TestShouldExcludeMatchesDoublestarPattern(t *testing.T) {
	assert.True(t, shouldExclude("Debug/out.can", []string{"**/Debug/**"}))
	assert.False(t, shouldExclude("src/out.can", []string{"**/Debug/**"}))
}
