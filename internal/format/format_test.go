package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/caplint/internal/config"
)

func TestFormatIsIdempotent(t *testing.T) {
	cfg := config.Default()
	src := []byte("void f()\n{\nif(x>1){\nwrite(\"hi\");}\n}\n")

	first := Format(src, cfg)
	second := Format(first.Formatted, cfg)

	assert.Equal(t, string(first.Formatted), string(second.Formatted))
	assert.False(t, second.Changed)
}

func TestQuoteNormalizeRewritesMultiCharSingleQuotes(t *testing.T) {
	toks := lex([]byte(`x = 'hello';`))
	out := quoteNormalize(toks)
	found := false
	for _, tok := range out {
		if tok.Kind == tokString && tok.Text == `"hello"` {
			found = true
		}
	}
	assert.True(t, found)
}

func TestQuoteNormalizeKeepsSingleCharLiteral(t *testing.T) {
	toks := lex([]byte(`x = 'a';`))
	out := quoteNormalize(toks)
	for _, tok := range out {
		if tok.Start == toks[2].Start {
			require.Equal(t, tokChar, tok.Kind)
		}
	}
}

func TestPreNormalizeStripsTopLevelIndentOnly(t *testing.T) {
	src := []byte("   void f()\n   {\n      write(\"x\");\n   }\n")
	out := preNormalize(src)
	assert.Contains(t, string(out), "void f()\n")
	assert.NotContains(t, string(out), "   void f()")
}

func TestReflowCommentsLeavesFileHeaderBannerAlone(t *testing.T) {
	cfg := config.Default()
	cfg.LineLength = 20
	long := "// this is a long file header banner comment that exceeds the configured line length"
	src := []byte(long + "\n\nvoid f() {}\n")
	out := reflowComments(src, cfg)
	assert.Contains(t, string(out), long)
}

func TestReflowCommentsWrapsOverlongNonHeaderComment(t *testing.T) {
	cfg := config.Default()
	cfg.LineLength = 20
	src := []byte("void f() {}\n\n// this is a long trailing comment that exceeds the configured line length\n")
	out := reflowComments(src, cfg)
	assert.NotContains(t, string(out), "this is a long trailing comment that exceeds the configured line length")
}

func TestReorderTopLevelIsNoopWhenDisabled(t *testing.T) {
	cfg := config.Default()
	src := []byte("void b() {}\n\nvoid a() {}\n")
	out := reorderTopLevel(src, cfg)
	assert.Equal(t, string(src), string(out))
}

func TestReorderTopLevelOrdersByKindThenName(t *testing.T) {
	cfg := config.Default()
	cfg.ReorderTopLevel = true
	src := []byte(
		"void zFunc() {}\n\n" +
			"testcase tc1() {}\n\n" +
			"variables\n{\n  int g;\n}\n\n" +
			"#include \"util.can\"\n\n" +
			"#include <proto.cin>\n\n" +
			"void aFunc() {}\n")

	out := string(reorderTopLevel(src, cfg))

	incIdx := strings.Index(out, "#include <proto.cin>")
	quotedIdx := strings.Index(out, "#include \"util.can\"")
	varsIdx := strings.Index(out, "variables")
	tcIdx := strings.Index(out, "testcase tc1")
	aIdx := strings.Index(out, "void aFunc")
	zIdx := strings.Index(out, "void zFunc")

	require.True(t, incIdx >= 0 && quotedIdx >= 0 && varsIdx >= 0 && tcIdx >= 0 && aIdx >= 0 && zIdx >= 0)
	assert.Less(t, incIdx, quotedIdx)
	assert.Less(t, quotedIdx, varsIdx)
	assert.Less(t, varsIdx, tcIdx)
	assert.Less(t, tcIdx, aIdx)
	assert.Less(t, aIdx, zIdx)
}

func TestReorderTopLevelDropsDuplicateInclude(t *testing.T) {
	cfg := config.Default()
	cfg.ReorderTopLevel = true
	src := []byte("#include \"util.can\"\n\n#include \"util.can\"\n\nvoid f() {}\n")
	out := string(reorderTopLevel(src, cfg))
	assert.Equal(t, 1, strings.Count(out, "#include \"util.can\""))
}

func TestReflowCommentsWrapsOverlongBlockComment(t *testing.T) {
	cfg := config.Default()
	cfg.LineLength = 20
	src := []byte("void f() {}\n\n/* this is a long plain block comment that exceeds the configured line length */\n")
	out := reflowComments(src, cfg)
	assert.NotContains(t, string(out), "this is a long plain block comment that exceeds the configured line length")
	assert.Contains(t, string(out), "/* this")
	assert.Contains(t, string(out), "*/")
}

// TestCollapseSetupZonesPreservesZoneTransitionBlank is scenario S5: the
// blank line between a block's last declaration and its first logic
// statement must survive, while blanks between setup-zone declarations
// are dropped.
func TestCollapseSetupZonesPreservesZoneTransitionBlank(t *testing.T) {
	src := []byte("{\n\n  int x;\n\n  int y;\n\n  write(\"hi\");\n\n  write(\"bye\");\n}")
	out := collapseSetupZones(src)

	want := "{\n  int x;\n  int y;\n\n  write(\"hi\");\n\n  write(\"bye\");\n}"
	assert.Equal(t, want, string(out))
}

func TestIndentRecomputesLeadingWhitespace(t *testing.T) {
	cfg := config.Default()
	src := []byte("void f()\n{\nwrite(\"x\");\n}\n")
	out := indent(src, cfg)
	assert.Contains(t, string(out), "  write(\"x\");")
}
