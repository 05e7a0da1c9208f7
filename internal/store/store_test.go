package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/caplint/internal/types"
)

func TestVisibleSymbolsTransitiveClosure(t *testing.T) {
	st := New(3)
	a := types.FileID("a.can")
	b := types.FileID("b.cin")
	c := types.FileID("c.cin")

	st.AddInclude(types.Include{SourceFile: a, ResolvedPath: b, TargetPathText: "b.cin"})
	st.AddInclude(types.Include{SourceFile: b, ResolvedPath: c, TargetPathText: "c.cin"})

	st.AddSymbol(types.Symbol{ID: 1, Name: "fromC", Kind: types.SymbolFunction, DefiningFile: c, DeclaredInScope: types.ScopeTopLevel})

	visible := st.VisibleSymbols(a)
	require.Len(t, visible, 1)
	assert.Equal(t, "fromC", visible[0].Name)
}

func TestVisibleSymbolsExcludesLocalScope(t *testing.T) {
	st := New(1)
	f := types.FileID("a.can")
	st.AddSymbol(types.Symbol{ID: 1, Name: "topLevel", Kind: types.SymbolVariable, DefiningFile: f, DeclaredInScope: types.ScopeTopLevel})
	st.AddSymbol(types.Symbol{ID: 2, Name: "inner", Kind: types.SymbolVariable, DefiningFile: f, DeclaredInScope: types.ScopeInsideBlock})

	visible := st.VisibleSymbols(f)
	names := map[string]bool{}
	for _, s := range visible {
		names[s.Name] = true
	}
	assert.True(t, names["topLevel"])
	assert.False(t, names["inner"])
}

func TestIncludeCyclesToleratesAndGroups(t *testing.T) {
	st := New(2)
	a := types.FileID("a.cin")
	b := types.FileID("b.cin")
	st.AddInclude(types.Include{SourceFile: a, ResolvedPath: b, TargetPathText: "b.cin"})
	st.AddInclude(types.Include{SourceFile: b, ResolvedPath: a, TargetPathText: "a.cin"})

	cycles := st.IncludeCycles()
	assert.ElementsMatch(t, []types.FileID{a, b}, cycles)

	groups := st.GroupedCycles()
	require.Len(t, groups, 1)
	assert.Equal(t, a, groups[0][0]) // lexicographically first
}

func TestDuplicateFunctionsIgnoresSingleForwardDecl(t *testing.T) {
	st := New(1)
	f := types.FileID("a.can")
	st.AddSymbol(types.Symbol{ID: 1, Name: "foo", Kind: types.SymbolFunction, DefiningFile: f, IsForwardDeclaration: true})
	st.AddSymbol(types.Symbol{ID: 2, Name: "foo", Kind: types.SymbolFunction, DefiningFile: f, HasBody: true})
	st.AddSymbol(types.Symbol{ID: 3, Name: "bar", Kind: types.SymbolFunction, DefiningFile: f, HasBody: true})
	st.AddSymbol(types.Symbol{ID: 4, Name: "bar", Kind: types.SymbolFunction, DefiningFile: f, HasBody: true})

	dups := st.DuplicateFunctions()
	assert.NotContains(t, dups, "foo") // one decl + one def is not a duplicate
	assert.Contains(t, dups, "bar")
	assert.Len(t, dups["bar"], 2)
}
