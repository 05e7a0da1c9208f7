package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/caplint/internal/store"
	"github.com/standardbeagle/caplint/internal/types"
)

func TestVariableOutsideBlockFlagsAndRelocates(t *testing.T) {
	src := "int gCounter;\n\nvariables\n{\n  int gOther;\n}\n"
	sf := mustParse(t, src)

	st := store.New(1)
	st.AddFile(sf.Path)
	blockStart := len("int gCounter;\n\n")
	blockEnd := len(src)
	st.SetVariablesBlock(sf.Path, types.Range{Start: blockStart, End: blockEnd})
	st.AddSymbol(types.Symbol{
		ID: 1, Name: "gCounter", Kind: types.SymbolVariable, DefiningFile: sf.Path,
		DeclaredInScope: types.ScopeTopLevel,
		Range:           types.Range{Start: 0, End: len("int gCounter;")},
	})

	r := &VariableOutsideBlock{}
	issues := r.Check(sf, st)
	require.Len(t, issues, 1)
	assert.Equal(t, "E006", issues[0].RuleID)
	assert.True(t, issues[0].AutoFixable)

	transforms := r.Fix(sf, issues)
	assert.NotEmpty(t, transforms)
}

func TestVariableOutsideBlockNotAutoFixableWithoutBlock(t *testing.T) {
	src := "int gCounter;\n"
	sf := mustParse(t, src)

	st := store.New(1)
	st.AddFile(sf.Path)
	st.AddSymbol(types.Symbol{
		ID: 1, Name: "gCounter", Kind: types.SymbolVariable, DefiningFile: sf.Path,
		DeclaredInScope: types.ScopeTopLevel,
		Range:           types.Range{Start: 0, End: len("int gCounter;")},
	})

	r := &VariableOutsideBlock{}
	issues := r.Check(sf, st)
	require.Len(t, issues, 1)
	assert.False(t, issues[0].AutoFixable)
}

func TestFunctionDeclarationFlagsForwardDeclOnly(t *testing.T) {
	src := "void helper(void);\n\nvoid main(void)\n{\n}\n"
	sf := mustParse(t, src)

	st := store.New(1)
	st.AddFile(sf.Path)
	st.AddSymbol(types.Symbol{
		ID: 1, Name: "helper", Kind: types.SymbolFunction, DefiningFile: sf.Path,
		DeclaredInScope: types.ScopeTopLevel, HasBody: false,
		Range: types.Range{Start: 0, End: len("void helper(void);")},
	})
	st.AddSymbol(types.Symbol{
		ID: 2, Name: "main", Kind: types.SymbolFunction, DefiningFile: sf.Path,
		DeclaredInScope: types.ScopeTopLevel, HasBody: true,
	})

	r := &FunctionDeclaration{}
	issues := r.Check(sf, st)
	require.Len(t, issues, 1)
	assert.Equal(t, "E002", issues[0].RuleID)
	assert.Contains(t, issues[0].Message, "helper")
}

func TestPointerParameterIgnoresEthernetpacket(t *testing.T) {
	src := "void onHandler(ethernetpacket * pkt)\n{\n}\n"
	sf := mustParse(t, src)

	st := store.New(1)
	st.AddFile(sf.Path)
	st.AddSymbol(types.Symbol{
		ID: 1, Name: "pkt", Kind: types.SymbolVariable, DefiningFile: sf.Path,
		DeclaredInScope: types.ScopeLocalBlock, ParentSymbol: 99, TypeText: "ethernetpacket",
		Range: types.Range{Start: 15, End: 35},
	})

	r := &PointerParameter{}
	issues := r.Check(sf, st)
	assert.Empty(t, issues)
}

func TestPointerParameterFlagsOtherPointerTypes(t *testing.T) {
	src := "void onHandler(int * pkt)\n{\n}\n"
	sf := mustParse(t, src)

	st := store.New(1)
	st.AddFile(sf.Path)
	st.AddSymbol(types.Symbol{
		ID: 1, Name: "pkt", Kind: types.SymbolVariable, DefiningFile: sf.Path,
		DeclaredInScope: types.ScopeLocalBlock, ParentSymbol: 99, TypeText: "int",
		Range: types.Range{Start: 15, End: 24},
	})

	r := &PointerParameter{}
	issues := r.Check(sf, st)
	require.Len(t, issues, 1)
	assert.Equal(t, "E009", issues[0].RuleID)
	assert.False(t, issues[0].AutoFixable)
}
