// Package store holds the per-analysis symbol store (C3): a parallel-array
// symbol table, the file -> includes graph, and queries derived from both
// (visible_symbols, references_to, include_cycles, duplicate_functions).
// The array-plus-index layout is grounded on the teacher's
// internal/core/symbol_store.go; nothing here is safe for concurrent
// mutation, matching the teacher's documented "caller holds the lock"
// contract — a Store belongs to one analyze() call.
package store

import (
	"sort"

	"github.com/standardbeagle/caplint/internal/types"
)

// Store holds every fact extracted across a set of files plus the
// derived include-visibility graph between them.
type Store struct {
	symbols      []types.Symbol
	symbolIndex  map[int]int // Symbol.ID -> index into symbols
	byFile       map[types.FileID][]int
	byName       map[string][]int

	includes    []types.Include
	includesBy  map[types.FileID][]int

	references  []types.Reference
	refsByFile  map[types.FileID][]int
	refsByName  map[string][]int

	edges       []types.VisibilityEdge
	adjacency   map[types.FileID][]types.FileID

	variablesBlock map[types.FileID]types.Range

	files []types.FileID
}

// New builds an empty Store with room for expectedFiles files.
func New(expectedFiles int) *Store {
	return &Store{
		symbolIndex: make(map[int]int, expectedFiles*16),
		byFile:      make(map[types.FileID][]int, expectedFiles),
		byName:      make(map[string][]int, expectedFiles*16),
		includesBy:  make(map[types.FileID][]int, expectedFiles),
		refsByFile:  make(map[types.FileID][]int, expectedFiles),
		refsByName:  make(map[string][]int, expectedFiles*16),
		adjacency:   make(map[types.FileID][]types.FileID, expectedFiles),
		variablesBlock: make(map[types.FileID]types.Range, expectedFiles),
	}
}

// SetVariablesBlock records the byte range of file's `variables { }` block,
// if it has one. E003 and E006 insert relocated declarations just before
// its closing brace.
func (s *Store) SetVariablesBlock(file types.FileID, r types.Range) {
	s.AddFile(file)
	s.variablesBlock[file] = r
}

// VariablesBlock returns file's `variables { }` range and whether it has
// one.
func (s *Store) VariablesBlock(file types.FileID) (types.Range, bool) {
	r, ok := s.variablesBlock[file]
	return r, ok
}

// AddFile registers path as a known file even if it contributes no facts
// (an empty file is still a node in the visibility graph).
func (s *Store) AddFile(path types.FileID) {
	if _, ok := s.byFile[path]; ok {
		return
	}
	s.byFile[path] = nil
	s.files = append(s.files, path)
}

// AddSymbol records sym. Symbol.ID must be unique within its defining file;
// the extractor allocates IDs per-file starting at 1, so the store
// namespaces them internally by (file, id) to stay unique across files.
func (s *Store) AddSymbol(sym types.Symbol) {
	s.AddFile(sym.DefiningFile)
	idx := len(s.symbols)
	s.symbols = append(s.symbols, sym)
	key := namespacedID(sym.DefiningFile, sym.ID)
	s.symbolIndex[key] = idx
	s.byFile[sym.DefiningFile] = append(s.byFile[sym.DefiningFile], idx)
	s.byName[sym.Name] = append(s.byName[sym.Name], idx)
}

// namespacedID folds a per-file symbol ID into a single map key: an
// FNV-style xor-multiply hash of the file path, times 31, plus id. It is
// computed inline to keep this package free of extra deps for an
// internal-only key.
func namespacedID(file types.FileID, id int) int {
	h := 1469598103934665603
	for i := 0; i < len(file); i++ {
		h = (h ^ int(file[i])) * 1099511628211
	}
	return h*31 + id
}

// SymbolByFileAndID looks up the symbol the extractor assigned `id` within
// `file`, or the zero value and false if none exists.
func (s *Store) SymbolByFileAndID(file types.FileID, id int) (types.Symbol, bool) {
	idx, ok := s.symbolIndex[namespacedID(file, id)]
	if !ok {
		return types.Symbol{}, false
	}
	return s.symbols[idx], true
}

// AddInclude records an include fact and, once ResolvedPath is known,
// folds it into the visibility adjacency.
func (s *Store) AddInclude(inc types.Include) {
	s.AddFile(inc.SourceFile)
	idx := len(s.includes)
	s.includes = append(s.includes, inc)
	s.includesBy[inc.SourceFile] = append(s.includesBy[inc.SourceFile], idx)
	if inc.Resolved() {
		s.AddFile(inc.ResolvedPath)
		s.adjacency[inc.SourceFile] = append(s.adjacency[inc.SourceFile], inc.ResolvedPath)
		s.edges = append(s.edges, types.VisibilityEdge{From: inc.SourceFile, To: inc.ResolvedPath})
	}
}

// AddReference records a usage-site fact.
func (s *Store) AddReference(ref types.Reference) {
	s.AddFile(ref.File)
	idx := len(s.references)
	s.references = append(s.references, ref)
	s.refsByFile[ref.File] = append(s.refsByFile[ref.File], idx)
	s.refsByName[ref.ReferencedName] = append(s.refsByName[ref.ReferencedName], idx)
}

// Files returns every known file, in registration order.
func (s *Store) Files() []types.FileID {
	out := make([]types.FileID, len(s.files))
	copy(out, s.files)
	return out
}

// SymbolsIn returns every symbol defined directly in file, in extraction
// order.
func (s *Store) SymbolsIn(file types.FileID) []types.Symbol {
	idxs := s.byFile[file]
	out := make([]types.Symbol, len(idxs))
	for i, idx := range idxs {
		out[i] = s.symbols[idx]
	}
	return out
}

// SymbolsNamed returns every symbol (in any file) with the given name.
func (s *Store) SymbolsNamed(name string) []types.Symbol {
	idxs := s.byName[name]
	out := make([]types.Symbol, len(idxs))
	for i, idx := range idxs {
		out[i] = s.symbols[idx]
	}
	return out
}

// ReferencesTo returns every reference to name across every file.
func (s *Store) ReferencesTo(name string) []types.Reference {
	idxs := s.refsByName[name]
	out := make([]types.Reference, len(idxs))
	for i, idx := range idxs {
		out[i] = s.references[idx]
	}
	return out
}

// ReferencesFrom returns every reference recorded within file.
func (s *Store) ReferencesFrom(file types.FileID) []types.Reference {
	idxs := s.refsByFile[file]
	out := make([]types.Reference, len(idxs))
	for i, idx := range idxs {
		out[i] = s.references[idx]
	}
	return out
}

// IncludesIn returns the includes written directly in file.
func (s *Store) IncludesIn(file types.FileID) []types.Include {
	idxs := s.includesBy[file]
	out := make([]types.Include, len(idxs))
	for i, idx := range idxs {
		out[i] = s.includes[idx]
	}
	return out
}

// VisibleSymbols returns every symbol visible from file: file's own
// top-level symbols plus the top-level symbols of every file transitively
// reachable through resolved includes. Cycles in the include graph are
// tolerated (a visited-set guards the traversal) per §4.3's
// "include_cycles is non-fatal" contract; local-block symbols of other
// files are never visible regardless of reachability.
func (s *Store) VisibleSymbols(file types.FileID) []types.Symbol {
	visited := map[types.FileID]bool{file: true}
	queue := []types.FileID{file}
	var out []types.Symbol

	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		for _, sym := range s.SymbolsIn(f) {
			if sym.DeclaredInScope == types.ScopeInsideBlock || sym.DeclaredInScope == types.ScopeLocalBlock {
				continue
			}
			out = append(out, sym)
		}
		for _, next := range s.adjacency[f] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return out
}

// IncludeCycles returns the set of files that participate in at least one
// cycle of the resolved-include graph, via Tarjan-free repeated DFS
// (the graphs here are a handful of files, not worth a stronger
// algorithm).
func (s *Store) IncludeCycles() []types.FileID {
	cyc := map[types.FileID]bool{}
	for _, f := range s.files {
		visiting := map[types.FileID]bool{}
		var dfs func(types.FileID) bool
		dfs = func(cur types.FileID) bool {
			if cur == f && visiting[cur] {
				return true
			}
			if visiting[cur] {
				return false
			}
			visiting[cur] = true
			for _, next := range s.adjacency[cur] {
				if next == f || dfs(next) {
					return true
				}
			}
			delete(visiting, cur)
			return false
		}
		for _, next := range s.adjacency[f] {
			if next == f || dfs(next) {
				cyc[f] = true
				break
			}
		}
	}
	out := make([]types.FileID, 0, len(cyc))
	for f := range cyc {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// reaches reports whether from can reach to by following resolved include
// edges.
func (s *Store) reaches(from, to types.FileID) bool {
	visited := map[types.FileID]bool{from: true}
	queue := []types.FileID{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range s.adjacency[cur] {
			if next == to {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// GroupedCycles partitions the files returned by IncludeCycles into
// mutually-reachable groups (one per cycle), each sorted with its
// lexicographically smallest file first, and the groups themselves
// ordered by their first file. W001 reports one issue per group, per
// §4.5's "report each cycle once" contract.
func (s *Store) GroupedCycles() [][]types.FileID {
	members := s.IncludeCycles()
	assigned := map[types.FileID]bool{}
	var groups [][]types.FileID

	for _, f := range members {
		if assigned[f] {
			continue
		}
		group := []types.FileID{f}
		assigned[f] = true
		for _, g := range members {
			if assigned[g] {
				continue
			}
			if s.reaches(f, g) && s.reaches(g, f) {
				group = append(group, g)
				assigned[g] = true
			}
		}
		sort.Slice(group, func(i, j int) bool { return group[i] < group[j] })
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	return groups
}

// DuplicateFunctions groups function symbols by name and returns, as a
// map keyed by name, every group in which two or more symbols HasBody.
// A forward declaration paired with its own definition is not a
// duplicate, and neither are forward declarations with no body anywhere.
func (s *Store) DuplicateFunctions() map[string][]types.Symbol {
	byName := map[string][]types.Symbol{}
	for _, sym := range s.symbols {
		if sym.Kind != types.SymbolFunction {
			continue
		}
		byName[sym.Name] = append(byName[sym.Name], sym)
	}
	out := map[string][]types.Symbol{}
	for name, syms := range byName {
		bodies := 0
		for _, sym := range syms {
			if sym.HasBody {
				bodies++
			}
		}
		if bodies > 1 {
			out[name] = syms
		}
	}
	return out
}

// Edges returns every resolved visibility edge recorded.
func (s *Store) Edges() []types.VisibilityEdge {
	out := make([]types.VisibilityEdge, len(s.edges))
	copy(out, s.edges)
	return out
}
