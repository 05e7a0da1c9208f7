// Package types holds the neutral data model shared by the parser, fact
// extractor, symbol store, lint rules and formatter: positions, ranges,
// symbols, issues and the byte-offset transformations every rewrite emits.
package types

import "fmt"

// FileID is a canonical, absolute path. It is the identity of a SourceFile.
type FileID string

// Position is a (row, column) pair plus the absolute byte offset it maps
// to. Row and Column are 0-based internally; callers that render
// user-facing output add 1 to both.
type Position struct {
	Row    int
	Column int
	Offset int
}

// Range is an inclusive-start, exclusive-end byte pair with the
// corresponding Positions resolved through a SourceFile's line table.
type Range struct {
	Start    int
	End      int
	StartPos Position
	EndPos   Position
}

func (r Range) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", r.StartPos.Row+1, r.StartPos.Column+1, r.EndPos.Row+1, r.EndPos.Column+1)
}

// Len reports the byte length of the range.
func (r Range) Len() int { return r.End - r.Start }

// Overlaps reports whether r and o share any byte in [Start, End).
func (r Range) Overlaps(o Range) bool {
	return r.Start < o.End && o.Start < r.End
}

// SymbolKind enumerates the neutral fact kinds the extractor emits.
type SymbolKind uint8

const (
	SymbolVariable SymbolKind = iota
	SymbolFunction
	SymbolEventHandler
	SymbolTestcase
	SymbolEnum
	SymbolEnumMember
	SymbolStruct
	SymbolStructMember
	SymbolTimer
	SymbolMessage
	SymbolIncludeTarget
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolVariable:
		return "variable"
	case SymbolFunction:
		return "function"
	case SymbolEventHandler:
		return "event_handler"
	case SymbolTestcase:
		return "testcase"
	case SymbolEnum:
		return "enum"
	case SymbolEnumMember:
		return "enum_member"
	case SymbolStruct:
		return "struct"
	case SymbolStructMember:
		return "struct_member"
	case SymbolTimer:
		return "timer"
	case SymbolMessage:
		return "message"
	case SymbolIncludeTarget:
		return "include_target"
	default:
		return "unknown"
	}
}

// DeclScope records where a symbol was declared, as a fact, not a verdict.
type DeclScope uint8

const (
	ScopeGlobalVariablesBlock DeclScope = iota
	ScopeLocalBlock
	ScopeTopLevel
	ScopeInsideBlock
)

func (s DeclScope) String() string {
	switch s {
	case ScopeGlobalVariablesBlock:
		return "global_variables_block"
	case ScopeLocalBlock:
		return "local_block"
	case ScopeTopLevel:
		return "top_level"
	case ScopeInsideBlock:
		return "inside_block"
	default:
		return "unknown"
	}
}

// Symbol is a neutral fact: a recorded property of the source with no
// evaluative judgment attached. Verdicts belong to lint rules, not here.
type Symbol struct {
	ID                  int
	Name                string
	Kind                SymbolKind
	DefiningFile        FileID
	Range               Range
	DeclaredInScope     DeclScope
	TypeText            string
	HasBody             bool
	ParamCount          int
	IsForwardDeclaration bool
	ParentSymbol        int // 0 means "no parent"; valid ids start at 1
	StatementsBeforeInBlock int
}

// Include is a #include fact. ResolvedPath is empty when the target could
// not be located on the configured search path (e.g. an angle-bracket
// include, which never resolves against user paths).
type Include struct {
	SourceFile     FileID
	TargetPathText string
	ResolvedPath   FileID
	Angled         bool
	Range          Range
}

// Resolved reports whether the include target was located.
func (i Include) Resolved() bool { return i.ResolvedPath != "" }

// VisibilityEdge is one edge of the transitive include-visibility DAG.
type VisibilityEdge struct {
	From FileID
	To   FileID
}

// ContextKind classifies how a Reference uses its target symbol.
type ContextKind uint8

const (
	ContextCall ContextKind = iota
	ContextRead
	ContextWrite
	ContextMemberAccess
	ContextTimerSet
)

// Reference is a symbol usage site.
type Reference struct {
	File           FileID
	Range          Range
	ReferencedName string
	Context        ContextKind
}

// Severity is an attribute of a rule, never a reflection of user
// preference: the same rule always reports at the same severity.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityStyle
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityStyle:
		return "style"
	default:
		return "unknown"
	}
}

// Issue is one rule violation report.
type Issue struct {
	RuleID          string
	Severity        Severity
	File            FileID
	PrimaryRange    Range
	Message         string
	AutoFixable     bool
	FixHint         string
}

// Transformation is the atomic unit every rewrite emits: within
// [Start, End) of the pre-rewrite buffer, replace with exactly
// Replacement. Transformations within one pass must not overlap; they may
// abut.
type Transformation struct {
	Start             int
	End               int
	Replacement       []byte
	Priority          int
	OriginatingRuleID string
}

func (t Transformation) Range() Range {
	return Range{Start: t.Start, End: t.End}
}
