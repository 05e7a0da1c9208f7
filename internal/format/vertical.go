package format

import "bytes"

// normalizeVertical is phase 3 (§4.7): blank-line collapsing. Three or
// more consecutive newlines are collapsed to exactly two (one blank
// line) everywhere. Within a block's "setup zone" — the leading run of
// declarations and comments at the top of a `{ }` body, before the
// first statement with side effects — every blank line is removed
// outright; the "logic zone" that follows keeps at most one blank line
// between statements, same as the global rule.
func normalizeVertical(src []byte) []byte {
	collapsed := collapseBlankRuns(src)
	return collapseSetupZones(collapsed)
}

// collapseBlankRuns collapses any run of 3+ newlines to exactly 2.
func collapseBlankRuns(src []byte) []byte {
	var out []byte
	n := len(src)
	i := 0
	for i < n {
		if src[i] == '\n' {
			j := i
			for j < n && src[j] == '\n' {
				j++
			}
			if j-i >= 2 {
				out = append(out, '\n', '\n')
			} else {
				out = append(out, '\n')
			}
			i = j
			continue
		}
		out = append(out, src[i])
		i++
	}
	return out
}

// collapseSetupZones removes blank lines from the leading declaration
// run of every brace-delimited block. A line belongs to the setup zone
// while every line seen so far in the current block is a comment, a
// brace line, or a line with no `(`; the first line containing `(` (a
// call or control statement) ends the zone for that block. A plain
// assignment with no call, such as `x = 1;`, stays in the zone.
func collapseSetupZones(src []byte) []byte {
	lines := bytes.Split(src, []byte("\n"))
	depthSetup := []bool{true} // setup-zone flag per open brace depth, index 0 unused at top level
	var out [][]byte

	for i, line := range lines {
		trimmed := bytes.TrimSpace(line)
		depth := len(depthSetup) - 1

		if depth >= 1 && depthSetup[depth] && len(trimmed) == 0 {
			// A blank line inside the setup zone is dropped only if the
			// zone is still open once the next non-blank line is seen:
			// the blank separating the last declaration from the first
			// logic-zone statement is the transition itself and must
			// survive, not be swallowed by the declaration run above it.
			if nextEndsSetupZone(lines, i+1) {
				out = append(out, line)
			}
			continue
		}
		if len(trimmed) > 0 && depth >= 1 && depthSetup[depth] && !looksLikeSetupLine(trimmed) {
			depthSetup[depth] = false
		}

		out = append(out, line)

		opens := bytes.Count(line, []byte("{"))
		closes := bytes.Count(line, []byte("}"))
		for k := 0; k < opens; k++ {
			depthSetup = append(depthSetup, true)
		}
		for k := 0; k < closes; k++ {
			if len(depthSetup) > 1 {
				depthSetup = depthSetup[:len(depthSetup)-1]
			}
		}
	}
	return bytes.Join(out, []byte("\n"))
}

// nextEndsSetupZone peeks past any further blank lines starting at i to
// find the next non-blank line and reports whether it would end the
// enclosing block's setup zone (i.e. is neither a comment, brace, nor
// bare declaration). Only that first non-blank line after a blank run
// matters: it is the line the blank actually separates from the setup
// zone above it.
func nextEndsSetupZone(lines [][]byte, i int) bool {
	for ; i < len(lines); i++ {
		trimmed := bytes.TrimSpace(lines[i])
		if len(trimmed) == 0 {
			continue
		}
		return !looksLikeSetupLine(trimmed)
	}
	return false
}

func looksLikeSetupLine(trimmed []byte) bool {
	if bytes.HasPrefix(trimmed, []byte("//")) || bytes.HasPrefix(trimmed, []byte("/*")) {
		return true
	}
	if bytes.HasSuffix(trimmed, []byte("{")) || bytes.Equal(trimmed, []byte("}")) {
		return true
	}
	if !bytes.Contains(trimmed, []byte("(")) {
		return true // bare declaration, no call/control syntax
	}
	return false
}
