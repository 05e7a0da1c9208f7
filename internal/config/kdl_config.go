package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// FileName is the per-project config file caplint looks for, following the
// teacher's ".lci.kdl at project root" convention.
const FileName = ".caplint.kdl"

// LoadKDL loads FileName from projectRoot, layered over Default(). It
// returns Default() unmodified, not an error, when no config file exists.
func LoadKDL(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, FileName)
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return parseKDL(string(content))
}

func parseKDL(content string) (*Config, error) {
	cfg := Default()

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("config: parse kdl: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "indent_size":
			if v, ok := firstIntArg(n); ok {
				cfg.IndentSize = v
			}
		case "line_length":
			if v, ok := firstIntArg(n); ok {
				cfg.LineLength = v
			}
		case "brace_style":
			if s, ok := firstStringArg(n); ok {
				cfg.BraceStyle = BraceStyle(s)
			}
		case "quote_style":
			if s, ok := firstStringArg(n); ok {
				cfg.QuoteStyle = QuoteStyle(s)
			}
		case "reorder_top_level":
			if b, ok := firstBoolArg(n); ok {
				cfg.ReorderTopLevel = b
			}
		case "enable_comment_features":
			if b, ok := firstBoolArg(n); ok {
				cfg.EnableCommentFeatures = b
			}
		case "max_passes":
			if v, ok := firstIntArg(n); ok {
				cfg.MaxPasses = v
			}
		case "parallel_file_workers":
			if v, ok := firstIntArg(n); ok {
				cfg.ParallelFileWorkers = v
			}
		case "disabled_rules":
			cfg.DisabledRules = collectStringArgs(n)
		case "fix_only":
			cfg.FixOnly = collectStringArgs(n)
		case "include":
			cfg.Include = collectStringArgs(n)
		case "exclude":
			cfg.Exclude = collectStringArgs(n)
		}
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

// collectStringArgs reads string args inline ("exclude \"a\" \"b\"") or, if
// none, from child nodes ("exclude { \"a\" \"b\" }"), matching the two KDL
// shapes the teacher's config accepts for list-valued settings.
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
				continue
			}
			if name := nodeName(child); name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}
