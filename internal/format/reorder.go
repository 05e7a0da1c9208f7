package format

import (
	"bytes"
	"sort"
	"strings"

	"github.com/standardbeagle/caplint/internal/config"
)

// topLevelKind orders a reordered segment per §4.8's target order:
// includes, then the variables block, then testcase defs, then event
// handlers, then user functions. The const order below IS the sort
// order, so adding a kind between two existing ones changes behavior.
type topLevelKind int

const (
	kindIncludeCin topLevelKind = iota
	kindIncludeCan
	kindVariablesBlock
	kindTestcase
	kindEventHandler
	kindFunction
	kindOther
)

// topLevelSegment is one reorderable top-level unit: its attached header
// comment (the contiguous comment run immediately above it, no blank
// line in between) kept separate from its code, since a segment's
// original surrounding blank lines don't mean anything once it moves to
// a new position — the output re-synthesizes exactly one blank line
// between segments instead of carrying old spacing along.
type topLevelSegment struct {
	header string // attached header comment, blank if none; includes its own trailing newline
	code   string // the segment's own text, trimmed, terminator included
	kind   topLevelKind
	key    string // sort key within kind: include path, or "kind subject"/name
	order  int    // original source order, used as the tie-break / testcase order
}

func (s topLevelSegment) empty() bool { return s.header == "" && s.code == "" }

// reorderTopLevel implements TopLevelOrderingRule (§4.8): when
// cfg.ReorderTopLevel is set, top-level nodes are re-ordered into
// `#include`s (`.cin` before `.can`, alphabetical within each group,
// de-duplicated), the `variables` block, `testcase` defs in source
// order, event handlers alphabetically by (kind, subject), then user
// functions alphabetically. Each segment's attached header comment
// travels with it; everything else is re-joined with a single blank
// line, since old spacing carries no meaning once a segment moves.
func reorderTopLevel(src []byte, cfg *config.Config) []byte {
	if !cfg.ReorderTopLevel {
		return src
	}
	raw := splitTopLevelSegments(src)

	segs := make([]topLevelSegment, 0, len(raw))
	seenInclude := map[string]bool{}
	for _, seg := range raw {
		if seg.empty() {
			continue
		}
		if seg.kind == kindIncludeCin || seg.kind == kindIncludeCan {
			if seenInclude[seg.key] {
				continue // duplicate #include target, dropped per §4.8
			}
			seenInclude[seg.key] = true
		}
		segs = append(segs, seg)
	}
	if len(segs) < 2 {
		return src
	}

	sort.SliceStable(segs, func(i, j int) bool {
		a, b := segs[i], segs[j]
		if a.kind != b.kind {
			return a.kind < b.kind
		}
		if a.kind == kindTestcase || a.kind == kindOther {
			return a.order < b.order // source order preserved within these kinds
		}
		return a.key < b.key
	})

	parts := make([]string, len(segs))
	for i, seg := range segs {
		parts[i] = seg.header + seg.code
	}
	return []byte(strings.Join(parts, "\n\n") + "\n")
}

// splitTopLevelSegments partitions src into contiguous, gap-free spans:
// each segment runs from the end of the previous segment (0 for the
// first) through its own top-level terminator, so leading whitespace,
// blank lines and header comments belong to the segment they precede.
func splitTopLevelSegments(src []byte) []topLevelSegment {
	n := len(src)
	var segs []topLevelSegment
	depth := 0
	segStart := 0
	codeStart := -1 // first non-trivia byte of the current segment, -1 until seen

	i := 0
	for i < n {
		c := src[i]
		switch {
		case c == '/' && i+1 < n && src[i+1] == '/':
			for i < n && src[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < n && src[i+1] == '*':
			i += 2
			for i+1 < n && !(src[i] == '*' && src[i+1] == '/') {
				i++
			}
			i = min(i+2, n)
		case c == '"' || c == '\'':
			i = skipLiteral(src, i)
		case c == '\n' && depth == 0 && codeStart >= 0 && src[codeStart] == '#':
			// A #include directive has no terminating ';' or brace; it
			// ends at end-of-line like any C preprocessor directive.
			segs = append(segs, newTopLevelSegment(src, segStart, i, codeStart, len(segs)))
			segStart = i
			codeStart = -1
			i++
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '{':
			if codeStart == -1 {
				codeStart = i
			}
			depth++
			i++
		case c == '}':
			if depth > 0 {
				depth--
			}
			i++
			if depth == 0 {
				segs = append(segs, newTopLevelSegment(src, segStart, i, codeStart, len(segs)))
				segStart = i
				codeStart = -1
			}
		case c == ';':
			i++
			if depth == 0 {
				segs = append(segs, newTopLevelSegment(src, segStart, i, codeStart, len(segs)))
				segStart = i
				codeStart = -1
			}
		default:
			if codeStart == -1 {
				codeStart = i
			}
			i++
		}
	}
	if segStart < n {
		segs = append(segs, newTopLevelSegment(src, segStart, n, codeStart, len(segs)))
	}
	return segs
}

func newTopLevelSegment(src []byte, start, end, codeStart, order int) topLevelSegment {
	if codeStart < 0 || codeStart >= end {
		// No real code in this span: either pure whitespace (dropped via
		// empty()) or a trailing/orphan comment with nothing after it,
		// which is kept as its own kindOther segment so it isn't lost.
		text := strings.TrimSpace(string(src[start:end]))
		return topLevelSegment{code: text, kind: kindOther, order: order}
	}
	code := strings.TrimSpace(string(src[codeStart:end]))
	header := leadingCommentHeader(src, start, codeStart)
	kind, key := classifyTopLevel(code)
	return topLevelSegment{header: header, code: code, kind: kind, key: key, order: order}
}

// leadingCommentHeader returns the contiguous run of comment-only lines
// immediately above codeStart, with no blank line separating them from
// the code or each other; everything above that run (earlier comments,
// blank lines) is treated as mere spacing and dropped.
func leadingCommentHeader(src []byte, start, codeStart int) string {
	lines := bytes.Split(src[start:codeStart], []byte("\n"))
	end := len(lines) - 1 // the last entry is the (empty) run-up to codeStart's column
	j := end - 1
	for j >= 0 {
		t := bytes.TrimSpace(lines[j])
		if len(t) == 0 || (!bytes.HasPrefix(t, []byte("//")) && !bytes.HasPrefix(t, []byte("/*"))) {
			break
		}
		j--
	}
	if j+1 >= end {
		return ""
	}
	return string(bytes.Join(lines[j+1:end], []byte("\n"))) + "\n"
}

// classifyTopLevel inspects one segment's code (header comments already
// stripped) and returns its TopLevelOrderingRule kind and sort key.
func classifyTopLevel(code string) (topLevelKind, string) {
	if strings.HasPrefix(code, "#include") {
		rest := strings.TrimSpace(strings.TrimPrefix(code, "#include"))
		if strings.HasPrefix(rest, "\"") {
			target := strings.Trim(rest, "\"")
			if strings.HasSuffix(target, ".cin") {
				return kindIncludeCin, target
			}
			return kindIncludeCan, target
		}
		if strings.HasPrefix(rest, "<") {
			target := strings.TrimSuffix(strings.TrimPrefix(rest, "<"), ">")
			if strings.HasSuffix(target, ".cin") {
				return kindIncludeCin, target
			}
			return kindIncludeCan, target
		}
		return kindIncludeCan, rest
	}
	switch firstWord(code) {
	case "variables":
		return kindVariablesBlock, ""
	case "testcase":
		return kindTestcase, ""
	case "on":
		return kindEventHandler, eventHandlerKey(code)
	}
	if name, ok := functionName(code); ok {
		return kindFunction, name
	}
	return kindOther, ""
}

// firstWord returns code's leading identifier token, so a keyword check
// only matches the whole word (e.g. a function named "variablesInit"
// does not get mistaken for a `variables` block).
func firstWord(code string) string {
	fields := strings.Fields(code)
	if len(fields) == 0 {
		return ""
	}
	w := fields[0]
	for i, r := range w {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return w[:i]
		}
	}
	return w
}

// eventHandlerKey builds the "(kind, subject)" sort key for `on kind
// subject { ... }` handlers, e.g. "on message 0x100" -> "message 0x100".
func eventHandlerKey(code string) string {
	fields := strings.Fields(code)
	if len(fields) < 2 {
		return code
	}
	end := len(fields)
	for idx, f := range fields {
		if idx >= 2 && (strings.HasPrefix(f, "{") || f == "{") {
			end = idx
			break
		}
	}
	return strings.Join(fields[1:end], " ")
}

// functionName extracts the identifier preceding the first '(' in a
// segment that isn't one of the other recognized shapes, i.e. a plain
// user function definition/declaration.
func functionName(code string) (string, bool) {
	paren := strings.Index(code, "(")
	if paren <= 0 {
		return "", false
	}
	before := strings.Fields(code[:paren])
	if len(before) == 0 {
		return "", false
	}
	return before[len(before)-1], true
}
