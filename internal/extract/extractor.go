// Package extract performs the single byte-level pass over a parsed CAPL
// source file's text that turns it into neutral facts: symbols, includes, event handlers and
// references. It records state, never a verdict — whether a mid-block
// local variable is wrong is for the lint rules in internal/lint to
// decide, grounded on the same split the teacher draws between its
// symbol extractors (internal/symbollinker/extractor.go) and its
// verdict-bearing analyzers.
package extract

import (
	"strings"

	"github.com/standardbeagle/caplint/internal/parser"
	"github.com/standardbeagle/caplint/internal/types"
)

// Facts is everything one Extract call produces for a single file.
type Facts struct {
	Symbols             []types.Symbol
	Includes            []types.Include
	References          []types.Reference
	VariablesBlockRange *types.Range // nil if the file has no `variables { }` block
}

// Extractor walks a parsed file once and emits Facts. It holds no
// cross-file state; visibility and cross-reference queries live in the
// symbol store (C3), one layer up.
type Extractor struct {
	p *parser.Parser
}

// New builds an Extractor holding p, the façade used for the top-level
// parse. Extraction scans sf.Bytes directly and does not call p; nothing
// is reparsed.
func New(p *parser.Parser) *Extractor {
	return &Extractor{p: p}
}

// Extract walks sf once and returns its neutral facts.
func (e *Extractor) Extract(sf *parser.SourceFile) Facts {
	var f Facts
	nextID := 1
	alloc := func() int {
		id := nextID
		nextID++
		return id
	}

	for _, it := range segmentTopLevel(sf.Bytes) {
		e.classifyTopLevel(sf, it, &f, alloc, 0)
	}
	return f
}

// classifyTopLevel recognizes one top-level (or variables-block-nested)
// construct by its leading tokens, per §4.2's positional-recognition
// contract, and appends the facts it implies.
func (e *Extractor) classifyTopLevel(sf *parser.SourceFile, it item, f *Facts, alloc func() int, parent int) {
	src := sf.Bytes
	text := src[it.Start:it.End]
	tok, next := word(src, it.Start)
	if tok == "" {
		return
	}

	trimmed := strings.TrimSpace(string(text))
	if strings.HasPrefix(trimmed, "#include") {
		e.extractInclude(sf, it, f)
		return
	}

	switch tok {
	case "variables":
		e.extractVariablesBlock(sf, it, next, f, alloc)
		return
	case "on":
		e.extractEventHandler(sf, it, next, f, alloc, parent)
		return
	case "testcase":
		e.extractTestcase(sf, it, next, f, alloc, parent)
		return
	case "enum":
		e.extractEnum(sf, it, next, f, alloc, types.ScopeTopLevel, parent)
		return
	case "struct":
		e.extractStruct(sf, it, next, f, alloc, types.ScopeTopLevel, parent)
		return
	}

	// Anything else is either a function (declaration or definition) or a
	// plain variable declaration; both share "type-ish tokens ... ( or ;".
	e.extractDeclarationLike(sf, it, f, alloc, types.ScopeTopLevel, parent)
}

func (e *Extractor) extractInclude(sf *parser.SourceFile, it item, f *Facts) {
	src := sf.Bytes
	rest := string(src[it.Start:it.End])
	hashIdx := strings.Index(rest, "#")
	if hashIdx < 0 {
		return
	}
	rest = rest[hashIdx:]
	angled := false
	var target string
	if q := strings.Index(rest, "\""); q >= 0 {
		if end := strings.Index(rest[q+1:], "\""); end >= 0 {
			target = rest[q+1 : q+1+end]
		}
	} else if a := strings.Index(rest, "<"); a >= 0 {
		angled = true
		if end := strings.Index(rest[a+1:], ">"); end >= 0 {
			target = rest[a+1 : a+1+end]
		}
	}
	if target == "" {
		return
	}
	f.Includes = append(f.Includes, types.Include{
		SourceFile:     sf.Path,
		TargetPathText: target,
		Angled:         angled,
		Range:          sf.Lines.Range(it.Start, it.End),
	})
}

// braceOf returns the byte offset of the first '{' at or after i.
func braceOf(src []byte, i int) int {
	for i < len(src) {
		if src[i] == '{' {
			return i
		}
		if src[i] == '/' {
			w := skipWS(src, i)
			if w != i {
				i = w
				continue
			}
		}
		if src[i] == '"' || src[i] == '\'' {
			i = skipLiteral(src, i)
			continue
		}
		i++
	}
	return -1
}

func (e *Extractor) extractVariablesBlock(sf *parser.SourceFile, it item, after int, f *Facts, alloc func() int) {
	src := sf.Bytes
	open := braceOf(src, after)
	if open < 0 || open >= it.End {
		return
	}
	blockRange := sf.Lines.Range(it.Start, it.End)
	f.VariablesBlockRange = &blockRange
	inner := item{Start: open + 1, End: it.End - 1} // drop outer braces
	for _, sub := range segmentTopLevel(src[inner.Start:inner.End]) {
		shifted := item{Start: sub.Start + inner.Start, End: sub.End + inner.Start}
		e.classifyNestedInVariablesBlock(sf, shifted, f, alloc)
	}
}

func (e *Extractor) classifyNestedInVariablesBlock(sf *parser.SourceFile, it item, f *Facts, alloc func() int) {
	src := sf.Bytes
	tok, next := word(src, it.Start)
	switch tok {
	case "enum":
		e.extractEnum(sf, it, next, f, alloc, types.ScopeGlobalVariablesBlock, 0)
		return
	case "struct":
		e.extractStruct(sf, it, next, f, alloc, types.ScopeGlobalVariablesBlock, 0)
		return
	}
	e.extractDeclarationLike(sf, it, f, alloc, types.ScopeGlobalVariablesBlock, 0)
}

func (e *Extractor) extractEnum(sf *parser.SourceFile, it item, after int, f *Facts, alloc func() int, scope types.DeclScope, parent int) {
	src := sf.Bytes
	name, afterName := word(src, after)
	open := braceOf(src, afterName)
	enumID := alloc()
	enumSym := types.Symbol{
		ID: enumID, Name: name, Kind: types.SymbolEnum, DefiningFile: sf.Path,
		Range: sf.Lines.Range(it.Start, it.End), DeclaredInScope: scope,
	}
	f.Symbols = append(f.Symbols, enumSym)
	if open < 0 {
		return
	}
	close := findMatchingBrace(src, open)
	if close < 0 {
		close = it.End
	}
	for _, member := range splitTopLevelCommas(src, open+1, close-1) {
		mname, _ := word(src, member.Start)
		if mname == "" {
			continue
		}
		f.Symbols = append(f.Symbols, types.Symbol{
			ID: alloc(), Name: mname, Kind: types.SymbolEnumMember, DefiningFile: sf.Path,
			Range: sf.Lines.Range(member.Start, member.End), DeclaredInScope: scope, ParentSymbol: enumID,
		})
	}
}

func (e *Extractor) extractStruct(sf *parser.SourceFile, it item, after int, f *Facts, alloc func() int, scope types.DeclScope, parent int) {
	src := sf.Bytes
	name, afterName := word(src, after)
	open := braceOf(src, afterName)
	structID := alloc()
	f.Symbols = append(f.Symbols, types.Symbol{
		ID: structID, Name: name, Kind: types.SymbolStruct, DefiningFile: sf.Path,
		Range: sf.Lines.Range(it.Start, it.End), DeclaredInScope: scope,
	})
	if open < 0 {
		return
	}
	close := findMatchingBrace(src, open)
	if close < 0 {
		close = it.End
	}
	for _, member := range segmentTopLevel(src[open+1 : close-1]) {
		shifted := item{Start: member.Start + open + 1, End: member.End + open + 1}
		mTok, mAfter := word(src, shifted.Start)
		if mTok == "" {
			continue
		}
		typeText, nameText := splitTypeAndDeclarator(src, shifted.Start, shifted.End)
		_ = mAfter
		if nameText == "" {
			continue
		}
		f.Symbols = append(f.Symbols, types.Symbol{
			ID: alloc(), Name: nameText, Kind: types.SymbolStructMember, DefiningFile: sf.Path,
			Range: sf.Lines.Range(shifted.Start, shifted.End), DeclaredInScope: scope,
			TypeText: typeText, ParentSymbol: structID,
		})
	}
}

// splitTopLevelCommas splits [start,end) on top-level commas (used for
// enum members and parameter lists), skipping nested parens/braces and
// literals.
func splitTopLevelCommas(src []byte, start, end int) []item {
	var out []item
	depth := 0
	itemStart := start
	i := start
	for i < end {
		switch src[i] {
		case '"', '\'':
			i = skipLiteral(src, i)
			continue
		case '(', '{', '[':
			depth++
		case ')', '}', ']':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, item{Start: itemStart, End: i})
				itemStart = i + 1
			}
		}
		i++
	}
	if itemStart < end {
		out = append(out, item{Start: itemStart, End: end})
	}
	return out
}

// splitTypeAndDeclarator splits a C-ish declaration's text into its
// leading type token sequence and its final declarator name, e.g.
// "unsigned long x" -> ("unsigned long", "x"), "Point p" -> ("Point", "p").
// It is a best-effort lexical split, not a full C grammar: CAPL
// declarations are simple enough (no function pointers) for this to be
// exact in practice.
func splitTypeAndDeclarator(src []byte, start, end int) (typeText, name string) {
	var tokens []string
	i := start
	for i < end {
		tok, next := word(src, i)
		if tok == "" {
			break
		}
		if tok == ";" || tok == "=" || tok == "," || tok == "[" {
			break
		}
		tokens = append(tokens, tok)
		i = next
	}
	if len(tokens) == 0 {
		return "", ""
	}
	name = strings.TrimLeft(tokens[len(tokens)-1], "*")
	typeText = strings.Join(tokens[:len(tokens)-1], " ")
	return typeText, name
}

// extractDeclarationLike handles the two constructs that share "leading
// type tokens, then a declarator, then '(' or ';'": functions (with or
// without a body) and plain variable declarations.
func (e *Extractor) extractDeclarationLike(sf *parser.SourceFile, it item, f *Facts, alloc func() int, scope types.DeclScope, parent int) {
	src := sf.Bytes
	parenAt := -1
	i := it.Start
	for i < it.End {
		switch src[i] {
		case '"', '\'':
			i = skipLiteral(src, i)
			continue
		case '(':
			parenAt = i
		}
		if parenAt >= 0 {
			break
		}
		i++
	}

	if parenAt < 0 {
		e.extractVariableDecl(sf, it, f, alloc, scope, parent)
		return
	}
	e.extractFunctionLike(sf, it, parenAt, f, alloc, scope, parent)
}

func (e *Extractor) extractVariableDecl(sf *parser.SourceFile, it item, f *Facts, alloc func() int, scope types.DeclScope, parent int) {
	src := sf.Bytes
	// Multiple comma-separated declarators share one type, e.g. "int a, b;"
	body := it
	if body.End > it.Start && src[body.End-1] == ';' {
		body.End--
	}
	for _, decl := range splitTopLevelCommas(src, body.Start, body.End) {
		typeText, name := splitTypeAndDeclarator(src, decl.Start, decl.End)
		if name == "" {
			continue
		}
		f.Symbols = append(f.Symbols, types.Symbol{
			ID: alloc(), Name: name, Kind: types.SymbolVariable, DefiningFile: sf.Path,
			Range: sf.Lines.Range(decl.Start, decl.End), DeclaredInScope: scope,
			TypeText: typeText, ParentSymbol: parent,
		})
	}
}

func (e *Extractor) extractFunctionLike(sf *parser.SourceFile, it item, parenAt int, f *Facts, alloc func() int, scope types.DeclScope, parent int) {
	src := sf.Bytes
	name := lastIdentBefore(src, parenAt)
	closeParen := matchingParen(src, parenAt)
	if closeParen < 0 {
		return
	}
	params := splitTopLevelCommas(src, parenAt+1, closeParen-1)
	paramCount := 0
	for _, p := range params {
		if strings.TrimSpace(string(src[p.Start:p.End])) != "" {
			paramCount++
		}
	}
	bodyOpen := braceOf(src, closeParen)
	hasBody := bodyOpen >= 0 && bodyOpen < it.End
	funcID := alloc()
	f.Symbols = append(f.Symbols, types.Symbol{
		ID: funcID, Name: name, Kind: types.SymbolFunction, DefiningFile: sf.Path,
		Range: sf.Lines.Range(it.Start, it.End), DeclaredInScope: scope,
		HasBody: hasBody, ParamCount: paramCount, IsForwardDeclaration: !hasBody,
		ParentSymbol: parent,
	})

	for _, p := range params {
		ptext := strings.TrimSpace(string(src[p.Start:p.End]))
		if ptext == "" {
			continue
		}
		typeText, pname := splitTypeAndDeclarator(src, p.Start, p.End)
		f.Symbols = append(f.Symbols, types.Symbol{
			ID: alloc(), Name: pname, Kind: types.SymbolVariable, DefiningFile: sf.Path,
			Range: sf.Lines.Range(p.Start, p.End), DeclaredInScope: types.ScopeLocalBlock,
			TypeText: typeText, ParentSymbol: funcID,
		})
	}

	if hasBody {
		e.extractBlockBody(sf, item{Start: bodyOpen, End: it.End}, f, alloc, funcID)
	}
}

func lastIdentBefore(src []byte, at int) string {
	i := at
	for i > 0 && (src[i-1] == ' ' || src[i-1] == '\t' || src[i-1] == '\n' || src[i-1] == '\r') {
		i--
	}
	end := i
	for i > 0 && isIdentPart(src[i-1]) {
		i--
	}
	return string(src[i:end])
}

func matchingParen(src []byte, openAt int) int {
	depth := 0
	i := openAt
	for i < len(src) {
		switch src[i] {
		case '"', '\'':
			i = skipLiteral(src, i)
			continue
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
		i++
	}
	return -1
}

func (e *Extractor) extractTestcase(sf *parser.SourceFile, it item, after int, f *Facts, alloc func() int, parent int) {
	src := sf.Bytes
	name, afterName := word(src, after)
	parenAt := after
	for parenAt < it.End && src[parenAt] != '(' {
		parenAt++
	}
	closeParen := matchingParen(src, parenAt)
	if closeParen < 0 {
		return
	}
	params := splitTopLevelCommas(src, parenAt+1, closeParen-1)
	paramCount := 0
	for _, p := range params {
		if strings.TrimSpace(string(src[p.Start:p.End])) != "" {
			paramCount++
		}
	}
	_ = afterName
	bodyOpen := braceOf(src, closeParen)
	tcID := alloc()
	f.Symbols = append(f.Symbols, types.Symbol{
		ID: tcID, Name: name, Kind: types.SymbolTestcase, DefiningFile: sf.Path,
		Range: sf.Lines.Range(it.Start, it.End), DeclaredInScope: types.ScopeTopLevel,
		HasBody: bodyOpen >= 0, ParamCount: paramCount,
	})
	if bodyOpen >= 0 {
		e.extractBlockBody(sf, item{Start: bodyOpen, End: it.End}, f, alloc, tcID)
	}
}

// eventKinds are the CAPL event-handler introducers recognized after `on`.
var eventKinds = map[string]bool{"message": true, "timer": true, "start": true, "key": true, "msTimer": true}

func (e *Extractor) extractEventHandler(sf *parser.SourceFile, it item, after int, f *Facts, alloc func() int, parent int) {
	src := sf.Bytes
	kind, afterKind := word(src, after)
	if !eventKinds[kind] {
		return
	}
	open := braceOf(src, afterKind)
	var subject string
	if open > afterKind {
		subject = strings.TrimSpace(string(src[afterKind:open]))
	}
	hID := alloc()
	f.Symbols = append(f.Symbols, types.Symbol{
		ID: hID, Name: kind + " " + subject, Kind: types.SymbolEventHandler, DefiningFile: sf.Path,
		Range: sf.Lines.Range(it.Start, it.End), DeclaredInScope: types.ScopeTopLevel,
		TypeText: kind, HasBody: open >= 0,
	})
	if kind == "timer" || kind == "msTimer" {
		f.Symbols = append(f.Symbols, types.Symbol{
			ID: alloc(), Name: subject, Kind: types.SymbolTimer, DefiningFile: sf.Path,
			Range: sf.Lines.Range(afterKind, open), DeclaredInScope: types.ScopeTopLevel, ParentSymbol: hID,
		})
		f.References = append(f.References, types.Reference{
			File: sf.Path, Range: sf.Lines.Range(afterKind, open), ReferencedName: subject, Context: types.ContextTimerSet,
		})
	}
	if kind == "message" {
		f.Symbols = append(f.Symbols, types.Symbol{
			ID: alloc(), Name: subject, Kind: types.SymbolMessage, DefiningFile: sf.Path,
			Range: sf.Lines.Range(afterKind, open), DeclaredInScope: types.ScopeTopLevel, ParentSymbol: hID,
		})
	}
	if open >= 0 {
		e.extractBlockBody(sf, item{Start: open, End: it.End}, f, alloc, hID)
	}
}

// extractBlockBody walks the statements of a `{ ... }` body (function,
// handler, testcase, or nested local block), recording local variable
// facts with their position relative to preceding executable statements
// (statements_before_in_block) — state only; E007 decides whether that
// position is a violation.
func (e *Extractor) extractBlockBody(sf *parser.SourceFile, block item, f *Facts, alloc func() int, parent int) {
	src := sf.Bytes
	inner := item{Start: block.Start + 1, End: block.End - 1}
	if inner.Start >= inner.End {
		return
	}
	statementsSoFar := 0
	for _, stmt := range segmentTopLevel(src[inner.Start:inner.End]) {
		shifted := item{Start: stmt.Start + inner.Start, End: stmt.End + inner.Start}
		tok, after := word(src, shifted.Start)
		switch {
		case tok == "":
			continue
		case isCAPLBlockKeyword(tok):
			// nested on/testcase/variables inside a body is not legal CAPL;
			// still walk it so its own facts surface.
			e.classifyTopLevel(sf, shifted, f, alloc, parent)
			statementsSoFar++
		case looksLikeLocalDecl(src, shifted, tok, after):
			e.extractLocalDecl(sf, shifted, f, alloc, parent, statementsSoFar)
		default:
			e.recordReferences(sf, shifted, f)
			statementsSoFar++
		}
	}
}

func isCAPLBlockKeyword(tok string) bool {
	switch tok {
	case "variables", "on", "testcase":
		return true
	}
	return false
}

// looksLikeLocalDecl distinguishes "Type name ...;" declarations from
// expression/control statements: the leading token is an identifier (not
// a control keyword) and, scanning forward, a second identifier appears
// before any '(' that would make it a call, or the statement has no '('
// at all before its ';'.
func looksLikeLocalDecl(src []byte, it item, tok string, after int) bool {
	switch tok {
	case "if", "for", "while", "switch", "return", "break", "continue", "else", "do":
		return false
	}
	if !isIdentStart(tok[0]) {
		return false
	}
	next, afterNext := word(src, after)
	if next == "" || !isIdentStart(next[0]) {
		// "x = 1;" / "foo();" — single leading identifier, not a decl
		if next == "*" {
			// "Type *name;" still a declaration once struct/enum keyword stripped
			n2, _ := word(src, afterNext)
			return n2 != "" && isIdentStart(n2[0])
		}
		return false
	}
	return true
}

func (e *Extractor) extractLocalDecl(sf *parser.SourceFile, it item, f *Facts, alloc func() int, parent int, stmtsBefore int) {
	src := sf.Bytes
	body := it
	if body.End > it.Start && src[body.End-1] == ';' {
		body.End--
	}
	for _, decl := range splitTopLevelCommas(src, body.Start, body.End) {
		typeText, name := splitTypeAndDeclarator(src, decl.Start, decl.End)
		if name == "" {
			continue
		}
		f.Symbols = append(f.Symbols, types.Symbol{
			ID: alloc(), Name: name, Kind: types.SymbolVariable, DefiningFile: sf.Path,
			Range: sf.Lines.Range(decl.Start, decl.End), DeclaredInScope: types.ScopeInsideBlock,
			TypeText: typeText, ParentSymbol: parent, StatementsBeforeInBlock: stmtsBefore,
		})
	}
}

// recordReferences emits a read/write/call Reference for the identifiers
// in a non-declaration statement. This is a lexical pass, not a full
// expression parse: good enough for undefined-symbol checking (E011),
// which only needs every identifier that is used.
func (e *Extractor) recordReferences(sf *parser.SourceFile, it item, f *Facts) {
	src := sf.Bytes
	i := it.Start
	for i < it.End {
		switch {
		case src[i] == '"' || src[i] == '\'':
			i = skipLiteral(src, i)
			continue
		case isIdentStart(src[i]):
			start := i
			for i < it.End && isIdentPart(src[i]) {
				i++
			}
			name := string(src[start:i])
			if isCKeyword(name) {
				continue
			}
			ctx := types.ContextRead
			j := skipWS(src, i)
			if j < it.End && src[j] == '(' {
				ctx = types.ContextCall
			} else if j < it.End && src[j] == '=' && (j+1 >= it.End || src[j+1] != '=') {
				ctx = types.ContextWrite
			}
			prevNonWS := prevNonSpace(src, start)
			if prevNonWS >= 0 && src[prevNonWS] == '.' {
				ctx = types.ContextMemberAccess
			}
			f.References = append(f.References, types.Reference{
				File: sf.Path, Range: sf.Lines.Range(start, i), ReferencedName: name, Context: ctx,
			})
		default:
			i++
		}
	}
}

func prevNonSpace(src []byte, i int) int {
	i--
	for i >= 0 && (src[i] == ' ' || src[i] == '\t' || src[i] == '\n' || src[i] == '\r') {
		i--
	}
	return i
}

var cKeywords = map[string]bool{
	"if": true, "else": true, "for": true, "while": true, "do": true, "switch": true,
	"case": true, "default": true, "break": true, "continue": true, "return": true,
	"void": true, "int": true, "char": true, "float": true, "double": true, "long": true,
	"short": true, "unsigned": true, "signed": true, "const": true, "static": true,
	"struct": true, "enum": true, "sizeof": true, "byte": true, "word": true, "dword": true,
	"qword": true, "int64": true, "true": true, "false": true,
}

func isCKeyword(s string) bool { return cKeywords[s] }
