package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/caplint/internal/parser"
	"github.com/standardbeagle/caplint/internal/store"
	"github.com/standardbeagle/caplint/internal/types"
)

func mustParseAs(t *testing.T, path types.FileID, src string) *parser.SourceFile {
	t.Helper()
	p, err := parser.NewParser()
	require.NoError(t, err)
	t.Cleanup(p.Close)
	sf, err := p.Parse(path, []byte(src))
	require.NoError(t, err)
	t.Cleanup(sf.Close)
	return sf
}

func TestUndefinedSymbolFlagsUnknownReference(t *testing.T) {
	sf := mustParse(t, "void f()\n{\n  doSomething();\n}\n")
	st := store.New(1)
	st.AddFile(sf.Path)
	st.AddReference(types.Reference{File: sf.Path, ReferencedName: "doSomething", Range: types.Range{Start: 14, End: 25}})

	r := &UndefinedSymbol{}
	issues := r.Check(sf, st)
	require.Len(t, issues, 1)
	assert.Equal(t, "E011", issues[0].RuleID)
}

func TestUndefinedSymbolIgnoresKnownBuiltin(t *testing.T) {
	sf := mustParse(t, "void f()\n{\n  write(\"hi\");\n}\n")
	st := store.New(1)
	st.AddFile(sf.Path)
	st.AddReference(types.Reference{File: sf.Path, ReferencedName: "write", Range: types.Range{Start: 14, End: 19}})

	r := &UndefinedSymbol{}
	issues := r.Check(sf, st)
	assert.Empty(t, issues)
}

func TestUndefinedSymbolIgnoresVisibleSymbol(t *testing.T) {
	sf := mustParse(t, "void f()\n{\n  helper();\n}\n")
	st := store.New(1)
	st.AddFile(sf.Path)
	st.AddSymbol(types.Symbol{ID: 1, Name: "helper", Kind: types.SymbolFunction, DefiningFile: sf.Path, HasBody: true})
	st.AddReference(types.Reference{File: sf.Path, ReferencedName: "helper", Range: types.Range{Start: 14, End: 20}})

	r := &UndefinedSymbol{}
	issues := r.Check(sf, st)
	assert.Empty(t, issues)
}

func TestDuplicateFunctionFlagsOnlyFilesWithMultipleBodies(t *testing.T) {
	sf := mustParse(t, "void dup()\n{\n}\n")
	st := store.New(1)
	st.AddFile(sf.Path)
	st.AddSymbol(types.Symbol{ID: 1, Name: "dup", Kind: types.SymbolFunction, DefiningFile: sf.Path, HasBody: true})
	st.AddSymbol(types.Symbol{ID: 2, Name: "dup", Kind: types.SymbolFunction, DefiningFile: types.FileID("other.can"), HasBody: true})

	r := &DuplicateFunction{}
	issues := r.Check(sf, st)
	require.Len(t, issues, 1)
	assert.Equal(t, "E012", issues[0].RuleID)
}

func TestMissingEnumKeywordFlagsBareEnumName(t *testing.T) {
	sf := mustParse(t, "Color gColor;\n")
	st := store.New(1)
	st.AddFile(sf.Path)
	st.AddSymbol(types.Symbol{ID: 1, Name: "Color", Kind: types.SymbolEnum, DefiningFile: sf.Path})
	st.AddSymbol(types.Symbol{ID: 2, Name: "gColor", Kind: types.SymbolVariable, DefiningFile: sf.Path, TypeText: "Color", Range: types.Range{Start: 0, End: 13}})

	r := &MissingEnumKeyword{}
	issues := r.Check(sf, st)
	require.Len(t, issues, 1)
	assert.Equal(t, "E004", issues[0].RuleID)

	transforms := r.Fix(sf, issues)
	require.Len(t, transforms, 1)
	assert.Equal(t, []byte("enum "), transforms[0].Replacement)
}

func TestMissingEnumKeywordIgnoresAlreadyPrefixed(t *testing.T) {
	sf := mustParse(t, "enum Color gColor;\n")
	st := store.New(1)
	st.AddFile(sf.Path)
	st.AddSymbol(types.Symbol{ID: 1, Name: "Color", Kind: types.SymbolEnum, DefiningFile: sf.Path})
	st.AddSymbol(types.Symbol{ID: 2, Name: "gColor", Kind: types.SymbolVariable, DefiningFile: sf.Path, TypeText: "enum Color"})

	r := &MissingEnumKeyword{}
	issues := r.Check(sf, st)
	assert.Empty(t, issues)
}

func TestCircularIncludeReportsOnceOnLexFirstFile(t *testing.T) {
	a := types.FileID("a.cin")
	b := types.FileID("b.cin")
	st := store.New(2)
	st.AddFile(a)
	st.AddFile(b)
	st.AddInclude(types.Include{SourceFile: a, ResolvedPath: b, TargetPathText: "b.cin"})
	st.AddInclude(types.Include{SourceFile: b, ResolvedPath: a, TargetPathText: "a.cin"})

	sfA := mustParseAs(t, a, "#include \"b.cin\"\n")
	r := &CircularInclude{}
	issues := r.Check(sfA, st)
	require.Len(t, issues, 1)
	assert.Equal(t, "W001", issues[0].RuleID)
	assert.Equal(t, types.SeverityWarning, issues[0].Severity)
}
