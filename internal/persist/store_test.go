package persist

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/caplint/internal/store"
	"github.com/standardbeagle/caplint/internal/types"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSyncFileCreatesThenReplacesFacts(t *testing.T) {
	db := openTestDB(t)
	f := types.FileID("a.can")

	st := store.New(1)
	st.AddFile(f)
	st.AddSymbol(types.Symbol{ID: 1, Name: "gX", Kind: types.SymbolVariable, DefiningFile: f})

	require.NoError(t, db.SyncFile(f, "hash1", st))
	hash, ok := db.FileHash(f)
	require.True(t, ok)
	assert.Equal(t, "hash1", hash)

	st2 := store.New(1)
	st2.AddFile(f)
	st2.AddSymbol(types.Symbol{ID: 1, Name: "gY", Kind: types.SymbolVariable, DefiningFile: f})
	require.NoError(t, db.SyncFile(f, "hash2", st2))

	hash, ok = db.FileHash(f)
	require.True(t, ok)
	assert.Equal(t, "hash2", hash)
}

func TestFileHashReportsMissingFile(t *testing.T) {
	db := openTestDB(t)
	_, ok := db.FileHash(types.FileID("missing.can"))
	assert.False(t, ok)
}

func TestSyncEdgesSkipsUnsyncedFiles(t *testing.T) {
	db := openTestDB(t)
	a := types.FileID("a.cin")
	b := types.FileID("b.cin")

	require.NoError(t, db.SyncFile(a, "h1", store.New(1)))

	err := db.SyncEdges([]types.VisibilityEdge{{From: a, To: b}})
	assert.NoError(t, err)
}

func TestRecordIssuesRequiresSyncedFile(t *testing.T) {
	db := openTestDB(t)
	f := types.FileID("a.can")
	require.NoError(t, db.SyncFile(f, "h1", store.New(1)))

	issues := []types.Issue{{RuleID: "E001", Severity: types.SeverityError, File: f}}
	assert.NoError(t, db.RecordIssues(f, issues))
}
