// Package parser wraps the tree-sitter-cpp grammar behind the façade the
// rest of the core depends on: parse, query, and AST walk over an
// immutable source buffer. CAPL has no dedicated tree-sitter grammar; like
// the teacher's community parser framework routes plain C/C++ extensions
// through a single C++ grammar instance, CAPL's `.can`/`.cin` sources are
// parsed with tree-sitter-cpp and the CAPL-only keywords (`variables`,
// `on`, `testcase`, `msTimer`, ...) are recognized positionally by the
// fact extractor rather than by dedicated grammar rules.
package parser

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"

	"github.com/standardbeagle/caplint/internal/types"
)

// Node is a handle into a parse tree: a grammar rule kind, a byte range
// resolved through the owning SourceFile's line table, and child
// enumeration. ERROR kind marks a parse-repair region the grammar
// produced when it could not make sense of a CAPL-only construct.
type Node struct {
	raw   *tree_sitter.Node
	lines *LineTable
}

// Kind is the grammar rule name, or "ERROR" for a parse-repair region.
func (n *Node) Kind() string { return n.raw.Kind() }

// IsError reports whether this node itself is an ERROR node.
func (n *Node) IsError() bool { return n.raw.IsError() }

// HasError reports whether this node or any descendant is an ERROR node
// or a missing-token node.
func (n *Node) HasError() bool { return n.raw.HasError() }

// Range returns the node's byte range resolved to row/column via the
// owning file's line table.
func (n *Node) Range() types.Range {
	return n.lines.Range(int(n.raw.StartByte()), int(n.raw.EndByte()))
}

// Text returns the exact source bytes spanned by the node.
func (n *Node) Text(source []byte) []byte {
	return source[n.raw.StartByte():n.raw.EndByte()]
}

// ChildCount returns the number of children, named and anonymous.
func (n *Node) ChildCount() int { return int(n.raw.ChildCount()) }

// Child returns the i'th child, or nil if out of range.
func (n *Node) Child(i int) *Node {
	c := n.raw.Child(uint(i))
	if c == nil {
		return nil
	}
	return &Node{raw: c, lines: n.lines}
}

// NamedChildCount returns the number of named (non-anonymous) children.
func (n *Node) NamedChildCount() int { return int(n.raw.NamedChildCount()) }

// NamedChild returns the i'th named child, or nil if out of range.
func (n *Node) NamedChild(i int) *Node {
	c := n.raw.NamedChild(uint(i))
	if c == nil {
		return nil
	}
	return &Node{raw: c, lines: n.lines}
}

// Parent returns the node's parent, or nil at the root.
func (n *Node) Parent() *Node {
	p := n.raw.Parent()
	if p == nil {
		return nil
	}
	return &Node{raw: p, lines: n.lines}
}

// NextSibling returns the following sibling, or nil.
func (n *Node) NextSibling() *Node {
	s := n.raw.NextSibling()
	if s == nil {
		return nil
	}
	return &Node{raw: s, lines: n.lines}
}

// PrevSibling returns the preceding sibling, or nil.
func (n *Node) PrevSibling() *Node {
	s := n.raw.PrevSibling()
	if s == nil {
		return nil
	}
	return &Node{raw: s, lines: n.lines}
}

// StartByte and EndByte expose the raw offsets for callers that need them
// without going through Range (e.g. the autofix driver's overlap checks).
func (n *Node) StartByte() int { return int(n.raw.StartByte()) }
func (n *Node) EndByte() int   { return int(n.raw.EndByte()) }

// SourceFile is the immutable unit of analysis: canonical path, byte
// content, a computed parse tree, a line-start index table, and a content
// hash. A SourceFile never mutates; rewrites produce a new SourceFile with
// a fresh parse (invariant 3.2.1).
type SourceFile struct {
	Path          types.FileID
	Bytes         []byte
	Lines         *LineTable
	Hash          uint64
	tree          *tree_sitter.Tree
	errorsPresent bool
}

// Root returns the tree's root node.
func (sf *SourceFile) Root() *Node {
	root := sf.tree.RootNode()
	return &Node{raw: &root, lines: sf.Lines}
}

// ErrorsPresent reports whether the grammar emitted any ERROR subtrees.
// A best-effort tree still exists; only a failure to construct a tree at
// all is a hard error (see Parser.Parse).
func (sf *SourceFile) ErrorsPresent() bool { return sf.errorsPresent }

// Close releases the underlying tree-sitter tree. Safe to call on a nil
// receiver.
func (sf *SourceFile) Close() {
	if sf == nil || sf.tree == nil {
		return
	}
	sf.tree.Close()
	sf.tree = nil
}

// Parser is the parser façade (C1): it owns one tree-sitter parser/query
// pair, shared by both CAPL extensions, and is safe for concurrent use across
// files, provided each goroutine calls Parse independently — the
// underlying tree_sitter.Parser is not reentrant, so access is serialized
// with a mutex the way the teacher's TreeSitterParser protects lazily
// initialized language state.
type Parser struct {
	mu       sync.Mutex
	ts       *tree_sitter.Parser
	language *tree_sitter.Language
	query    *tree_sitter.Query
}

// Extensions recognized as CAPL source.
var Extensions = []string{".can", ".cin"}

// IsCAPLFile reports whether path has a recognized CAPL extension.
func IsCAPLFile(path string) bool {
	for _, ext := range Extensions {
		if len(path) > len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// structuralQuery captures the plain-C-family constructs the grammar does
// recognize natively: function definitions/declarations, struct/enum
// specifiers, preprocessor includes, and parameter declarators. CAPL-only
// shapes layered on top of these (event handlers, testcases, the
// `variables` block) are recognized positionally by the fact extractor,
// which scans the source bytes rather than relying on this query.
const structuralQuery = `
(function_definition) @function.def
(declaration) @decl
(struct_specifier name: (type_identifier) @struct.name) @struct
(enum_specifier name: (type_identifier) @enum.name) @enum
(preproc_include) @include
(parameter_declaration) @param
(field_declaration) @field
(ERROR) @error
`

// NewParser constructs the façade with the tree-sitter-cpp grammar loaded
// and the structural query compiled.
func NewParser() (*Parser, error) {
	ts := tree_sitter.NewParser()
	languagePtr := tree_sitter_cpp.Language()
	language := tree_sitter.NewLanguage(languagePtr)
	if err := ts.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("parser: set language: %w", err)
	}
	query, err := tree_sitter.NewQuery(language, structuralQuery)
	if err != nil {
		return nil, fmt.Errorf("parser: compile structural query: %w", err)
	}
	return &Parser{ts: ts, language: language, query: query}, nil
}

// Close releases the underlying tree-sitter parser and query.
func (p *Parser) Close() {
	if p.query != nil {
		p.query.Close()
	}
	if p.ts != nil {
		p.ts.Close()
	}
}

// Parse parses source into a SourceFile. Failure to construct a tree at
// all is a hard error surfaced to the caller (§4.9 "Parse failure");
// ERROR subtrees in an otherwise-present tree are non-fatal and recorded
// on SourceFile.ErrorsPresent.
func (p *Parser) Parse(path types.FileID, source []byte) (*SourceFile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// tree-sitter's C core mutates the buffer it is handed; keep the
	// caller's slice untouched by parsing a private copy.
	buf := make([]byte, len(source))
	copy(buf, source)

	tree := p.ts.Parse(buf, nil)
	if tree == nil {
		return nil, fmt.Errorf("parser: %s: grammar produced no tree", path)
	}

	lines := NewLineTable(buf)
	sf := &SourceFile{
		Path:  path,
		Bytes: buf,
		Lines: lines,
		Hash:  xxhash.Sum64(buf),
		tree:  tree,
	}
	root := tree.RootNode()
	sf.errorsPresent = root.HasError()
	return sf, nil
}

// QueryMatch mirrors one tree-sitter query match: capture names bound to
// nodes, in the order the query declared them.
type QueryMatch struct {
	Captures map[string]*Node
}

// Query runs the façade's compiled structural query over sf and returns
// every match. It is the thin, generic half of the parser's contract;
// CAPL-specific recognition happens in the fact extractor's byte scan,
// not here, because the grammar has no CAPL-aware capture names to bind.
func (p *Parser) Query(sf *SourceFile) []QueryMatch {
	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()

	names := p.query.CaptureNames()
	root := sf.tree.RootNode()
	matches := qc.Matches(p.query, &root, sf.Bytes)

	var out []QueryMatch
	for {
		m := matches.Next()
		if m == nil {
			break
		}
		qm := QueryMatch{Captures: make(map[string]*Node, len(m.Captures))}
		for _, c := range m.Captures {
			node := c.Node
			qm.Captures[names[c.Index]] = &Node{raw: &node, lines: sf.Lines}
		}
		out = append(out, qm)
	}
	return out
}

// WalkEntry is one step of a document-order AST walk: the node and its
// depth from the walked root (root itself is depth 0).
type WalkEntry struct {
	Node  *Node
	Depth int
}

// Walker is an explicit producer-of-nodes iterator. Rules pull nodes from
// it and apply their own filtering; the walker itself makes no judgment
// about what is interesting (design note: "do not hide the yield surface
// inside rules").
type Walker struct {
	stack []walkFrame
}

type walkFrame struct {
	node  *Node
	depth int
}

// NewWalker starts a pre-order walk rooted at root.
func NewWalker(root *Node) *Walker {
	return &Walker{stack: []walkFrame{{node: root, depth: 0}}}
}

// Next returns the next node in document order along with its depth. ok
// is false once the walk is exhausted.
func (w *Walker) Next() (node *Node, depth int, ok bool) {
	if len(w.stack) == 0 {
		return nil, 0, false
	}
	n := len(w.stack) - 1
	frame := w.stack[n]
	w.stack = w.stack[:n]

	childCount := frame.node.ChildCount()
	for i := childCount - 1; i >= 0; i-- {
		if c := frame.node.Child(i); c != nil {
			w.stack = append(w.stack, walkFrame{node: c, depth: frame.depth + 1})
		}
	}
	return frame.node, frame.depth, true
}

// Walk eagerly collects a full pre-order traversal. CAPL source files are
// small scripts, not whole programs, so the core favors the simplicity of
// an eager slice over incremental streaming.
func Walk(root *Node) []WalkEntry {
	w := NewWalker(root)
	var out []WalkEntry
	for {
		n, d, ok := w.Next()
		if !ok {
			break
		}
		out = append(out, WalkEntry{Node: n, Depth: d})
	}
	return out
}
