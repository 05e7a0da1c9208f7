package format

import (
	"bytes"
	"strings"

	"github.com/standardbeagle/caplint/internal/config"
)

// commentRole classifies a comment by its relationship to surrounding
// code, per §4.7's attachment map.
type commentRole uint8

const (
	roleHeader commentRole = iota // precedes a declaration, no code between it and the declaration
	roleTrailing                  // shares a line with code
	roleFloating                  // blank lines on both sides, attached to nothing
	roleFileHeader                // the very first comment(s) in the file, before any code
)

type attachedComment struct {
	tok  token
	role commentRole
}

// attachComments builds the attachment map: for every comment token,
// decide whether it trails code on its own line, heads the next
// declaration, floats free, or opens the file.
func attachComments(toks []token) []attachedComment {
	var out []attachedComment
	sawCode := false
	for i, t := range toks {
		if t.Kind != tokLineComment && t.Kind != tokBlockComment {
			if t.Kind != tokNewline {
				sawCode = true
			}
			continue
		}
		role := roleFloating
		switch {
		case !sawCode:
			role = roleFileHeader
		case i > 0 && toks[i-1].Kind != tokNewline:
			role = roleTrailing
		case precededByBlankLine(toks, i) && followedByBlankLine(toks, i):
			role = roleFloating
		default:
			role = roleHeader
		}
		out = append(out, attachedComment{tok: t, role: role})
	}
	return out
}

func precededByBlankLine(toks []token, i int) bool {
	nl := 0
	for j := i - 1; j >= 0 && toks[j].Kind == tokNewline; j-- {
		nl++
	}
	return nl >= 2
}

func followedByBlankLine(toks []token, i int) bool {
	nl := 0
	for j := i + 1; j < len(toks) && toks[j].Kind == tokNewline; j++ {
		nl++
	}
	return nl >= 2
}

// exemptFromReflow lists comment shapes CommentReflowRule must leave
// alone even when they exceed the line length: Doxygen blocks, ASCII-art
// banners, and preprocessor-adjacent pragmas, per §4.8.
func exemptFromReflow(text string) bool {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, "/**") || strings.HasPrefix(t, "///") {
		return true
	}
	if strings.Contains(t, "#pragma") {
		return true
	}
	asciiArt := 0
	for _, r := range t {
		if r == '=' || r == '-' || r == '*' || r == '#' {
			asciiArt++
		}
	}
	return len(t) > 0 && asciiArt*2 > len(t)
}

// commentAlignmentColumn, when non-zero, is the column CommentAlignmentRule
// pads trailing comments on a contiguous run of declaration lines to, so
// that aligned trailing comments in e.g. a struct body line up visually.
func commentAlignmentColumn(lines [][]byte) int {
	max := 0
	for _, line := range lines {
		idx := trailingCommentStart(line)
		if idx < 0 {
			continue
		}
		if idx > max {
			max = idx
		}
	}
	return max
}

func trailingCommentStart(line []byte) int {
	idx := bytes.Index(line, []byte("//"))
	if idx < 0 {
		return -1
	}
	code := bytes.TrimRight(line[:idx], " \t")
	if len(code) == 0 {
		return -1 // a comment-only line is not "trailing"
	}
	return len(code)
}

// alignTrailingComments applies CommentAlignmentRule: within each
// maximal run of consecutive lines that all carry a trailing `//`
// comment, pad the code portion so the comments start in the same
// column.
func alignTrailingComments(src []byte) []byte {
	lines := bytes.Split(src, []byte("\n"))
	i := 0
	for i < len(lines) {
		if trailingCommentStart(lines[i]) < 0 {
			i++
			continue
		}
		j := i
		for j < len(lines) && trailingCommentStart(lines[j]) >= 0 {
			j++
		}
		col := commentAlignmentColumn(lines[i:j])
		for k := i; k < j; k++ {
			lines[k] = padTrailingComment(lines[k], col)
		}
		i = j
	}
	return bytes.Join(lines, []byte("\n"))
}

func padTrailingComment(line []byte, col int) []byte {
	idx := bytes.Index(line, []byte("//"))
	code := bytes.TrimRight(line[:idx], " \t")
	comment := line[idx:]
	pad := col - len(code)
	if pad < 1 {
		pad = 1
	}
	out := append([]byte{}, code...)
	out = append(out, bytes.Repeat([]byte{' '}, pad)...)
	out = append(out, comment...)
	return out
}

// reflowComments applies CommentReflowRule: a line (`//`) or block (`/*
// */`) comment whose line exceeds cfg.LineLength, and is not exempt, is
// wrapped onto additional lines at the same indentation. File-header
// comments (the banner before any code, per attachComments'
// roleFileHeader) are left alone regardless of length: reflowing a
// license or file banner changes its hand-laid-out shape for no benefit.
func reflowComments(src []byte, cfg *config.Config) []byte {
	fileHeaderStarts := map[int]bool{}
	for _, ac := range attachComments(lex(src)) {
		if ac.role == roleFileHeader {
			fileHeaderStarts[ac.tok.Start] = true
		}
	}

	lines := bytes.Split(src, []byte("\n"))
	var out [][]byte
	offset := 0
	for _, line := range lines {
		lineStart := offset
		offset += len(line) + 1

		if idx := bytes.Index(line, []byte("//")); idx >= 0 {
			if wrapped, ok := reflowLineComment(line, idx, lineStart, cfg, fileHeaderStarts); ok {
				out = append(out, wrapped...)
				continue
			}
			out = append(out, line)
			continue
		}

		if start := bytes.Index(line, []byte("/*")); start >= 0 {
			if rel := bytes.Index(line[start:], []byte("*/")); rel >= 0 {
				end := start + rel + 2
				if wrapped, ok := reflowBlockComment(line, start, end, lineStart, cfg, fileHeaderStarts); ok {
					out = append(out, wrapped...)
					continue
				}
			}
		}

		out = append(out, line)
	}
	return bytes.Join(out, []byte("\n"))
}

// reflowLineComment wraps a single `//` comment line, returning ok=false
// when the line should be left untouched (too short, exempt, a file
// header, a trailing comment on a code line, or too narrow to wrap).
func reflowLineComment(line []byte, idx, lineStart int, cfg *config.Config, fileHeaderStarts map[int]bool) ([][]byte, bool) {
	if len(line) <= cfg.LineLength || exemptFromReflow(string(line)) || fileHeaderStarts[lineStart+idx] {
		return nil, false
	}
	indent := line[:len(line)-len(bytes.TrimLeft(line, " \t"))]
	code := line[:idx]
	text := strings.TrimSpace(string(line[idx+2:]))
	width := cfg.LineLength - len(indent) - 3
	if width < 10 {
		return nil, false
	}
	if len(strings.TrimSpace(string(code))) > 0 {
		return nil, false // trailing comment on a code line: leave wrapping to a human
	}
	var out [][]byte
	for _, wrapped := range wrapWords(text, width) {
		out = append(out, append(append([]byte{}, indent...), []byte("// "+wrapped)...))
	}
	return out, true
}

// reflowBlockComment wraps a self-contained `/* ... */` comment that
// opens and closes on the same line, producing an opening line prefixed
// `/* `, continuation lines indented to the same column, and a closing
// ` */` suffix on the last wrapped line. Block comments that share a
// line with code (either before the `/*` or after the `*/`), or that
// are exempt/file-header/too-narrow, are left alone exactly as
// reflowLineComment leaves line comments alone in those cases.
func reflowBlockComment(line []byte, start, end, lineStart int, cfg *config.Config, fileHeaderStarts map[int]bool) ([][]byte, bool) {
	if len(line) <= cfg.LineLength || exemptFromReflow(string(line[start:end])) || fileHeaderStarts[lineStart+start] {
		return nil, false
	}
	if len(bytes.TrimSpace(line[:start])) > 0 {
		return nil, false // trailing block comment on a code line: leave wrapping to a human
	}
	if len(bytes.TrimSpace(line[end:])) > 0 {
		return nil, false // code follows the comment's close: leave wrapping to a human
	}
	indent := line[:len(line)-len(bytes.TrimLeft(line, " \t"))]
	text := strings.TrimSpace(string(line[start+2 : end-2]))
	width := cfg.LineLength - len(indent) - 3
	if width < 10 {
		return nil, false
	}
	words := wrapWords(text, width)
	var out [][]byte
	for i, wrapped := range words {
		prefix := "   "
		if i == 0 {
			prefix = "/* "
		}
		suffix := ""
		if i == len(words)-1 {
			suffix = " */"
		}
		out = append(out, append(append([]byte{}, indent...), []byte(prefix+wrapped+suffix)...))
	}
	return out, true
}

func wrapWords(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}
	var lines []string
	cur := words[0]
	for _, w := range words[1:] {
		if len(cur)+1+len(w) > width {
			lines = append(lines, cur)
			cur = w
			continue
		}
		cur += " " + w
	}
	lines = append(lines, cur)
	return lines
}
