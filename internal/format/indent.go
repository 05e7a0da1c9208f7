package format

import (
	"bytes"

	"github.com/standardbeagle/caplint/internal/config"
)

// indent is phase 5: every physical line's leading whitespace is
// recomputed from its brace depth (parentheses are not counted),
// replacing whatever earlier phases left behind. `case`/`default` labels
// directly inside a switch's braces are dedented by one level, to the
// `switch` line's own level; the statements under a label keep their
// brace depth, one level in from the label.
func indent(src []byte, cfg *config.Config) []byte {
	lines := bytes.Split(src, []byte("\n"))
	depth := 0
	var switchDepths []int // depths (post-open) at which a switch body started

	var out [][]byte
	for _, raw := range lines {
		trimmed := bytes.TrimLeft(raw, " \t")
		trimmedRight := bytes.TrimRight(trimmed, " \t")

		closesFirst := len(trimmedRight) > 0 && (trimmedRight[0] == '}')
		isCaseLabel := bytes.HasPrefix(trimmedRight, []byte("case ")) || bytes.HasPrefix(trimmedRight, []byte("default:")) || bytes.HasPrefix(trimmedRight, []byte("default "))

		level := depth
		if closesFirst {
			level--
		}
		if isCaseLabel && len(switchDepths) > 0 && switchDepths[len(switchDepths)-1] == depth {
			level--
		}
		if level < 0 {
			level = 0
		}

		if len(trimmedRight) == 0 {
			out = append(out, []byte{})
		} else {
			out = append(out, append(bytes.Repeat([]byte{' '}, level*cfg.IndentSize), trimmedRight...))
		}

		if bytes.HasPrefix(trimmedRight, []byte("switch")) && bytes.HasSuffix(trimmedRight, []byte("{")) {
			switchDepths = append(switchDepths, depth+1)
		}

		for _, c := range trimmedRight {
			switch c {
			case '{':
				depth++
			case '}':
				depth--
				if len(switchDepths) > 0 && switchDepths[len(switchDepths)-1] > depth {
					switchDepths = switchDepths[:len(switchDepths)-1]
				}
			}
		}
		if depth < 0 {
			depth = 0
		}
	}
	return bytes.Join(out, []byte("\n"))
}
