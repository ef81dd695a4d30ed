package service

import (
	"github.com/duynguyendang/sir/pkg/kb"
	"github.com/duynguyendang/sir/pkg/pattern"
)

// SearchOptions bounds the work a single path search may do.
type SearchOptions struct {
	// MaxDepth is the longest fact chain a branch may grow to.
	MaxDepth int
	// MaxSteps caps the number of facts traversed across all branches.
	MaxSteps int
}

// DefaultSearchOptions returns the limits used when none are configured.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		MaxDepth: 64,
		MaxSteps: 100000,
	}
}

// Result is the outcome of a path search.
type Result struct {
	Found bool `json:"found"`
	// Paths holds each distinct relation string that satisfied the
	// pattern, in discovery order.
	Paths []string `json:"paths"`
	// Chains holds, per entry of Paths, the facts of its first discovery.
	Chains [][]kb.Fact `json:"chains,omitempty"`
	// Visited counts facts traversed (classified Partial or Full).
	Visited int `json:"visited"`
	// Examined counts facts leaving an expanded node, pruned ones included.
	Examined int `json:"examined"`
	// Truncated is set when a limit in SearchOptions stopped the search.
	Truncated bool `json:"truncated,omitempty"`
}

// Pathfinder runs depth-first searches for relation chains that satisfy
// a pattern. It keeps no state between searches.
type Pathfinder struct {
	opts     SearchOptions
	observer Observer
}

// NewPathfinder creates a Pathfinder. Non-positive limits fall back to the
// defaults and a nil observer is replaced by NopObserver.
func NewPathfinder(opts SearchOptions, observer Observer) *Pathfinder {
	def := DefaultSearchOptions()
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = def.MaxDepth
	}
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = def.MaxSteps
	}
	if observer == nil {
		observer = NopObserver{}
	}
	return &Pathfinder{opts: opts, observer: observer}
}

// Search looks for chains of facts from start to end whose concatenated
// relations are fully matched by pat.
//
// A fact is used at most once per branch, which bounds every branch by the
// number of facts and keeps cyclic graphs finite. Sibling branches carry
// their own visited sets and may reuse the same fact. A chain that reaches
// end with a full match is recorded and not extended.
func (pf *Pathfinder) Search(store *kb.Store, start kb.Term, pat *pattern.Pattern, end kb.Term) Result {
	s := &search{
		pf:    pf,
		store: store,
		pat:   pat,
		end:   end,
		seen:  make(map[string]bool),
	}
	pf.observer.SearchStarted(start, pat, end)
	s.walk(start, "", newBitset(store.Len()), nil)
	s.res.Found = len(s.res.Paths) > 0
	return s.res
}

type search struct {
	pf    *Pathfinder
	store *kb.Store
	pat   *pattern.Pattern
	end   kb.Term
	res   Result
	seen  map[string]bool
	steps int
}

func (s *search) walk(node kb.Term, sofar string, visited bitset, chain []kb.Fact) {
	for i := 0; i < s.store.Len(); i++ {
		f := s.store.Fact(i)
		if f.Subject != node || visited.has(i) {
			continue
		}
		s.res.Examined++

		candidate := sofar + f.Relation.String()
		level := s.pat.Classify(candidate)
		if level == pattern.None {
			continue
		}

		if s.steps >= s.pf.opts.MaxSteps {
			s.res.Truncated = true
			return
		}
		s.steps++
		s.res.Visited++
		s.pf.observer.FactTraversed(len(chain)+1, f, candidate, level)

		next := append(chain[:len(chain):len(chain)], f)
		if f.Object == s.end && level == pattern.Full {
			s.record(candidate, next)
			continue
		}
		if len(next) >= s.pf.opts.MaxDepth {
			s.res.Truncated = true
			continue
		}
		s.walk(f.Object, candidate, visited.with(i), next)
	}
}

func (s *search) record(path string, chain []kb.Fact) {
	s.pf.observer.PathFound(path, chain)
	if s.seen[path] {
		return
	}
	s.seen[path] = true
	s.res.Paths = append(s.res.Paths, path)
	s.res.Chains = append(s.res.Chains, chain)
}

// bitset marks fact indices used on one branch.
type bitset []uint64

func newBitset(n int) bitset {
	return make(bitset, (n+63)/64)
}

func (b bitset) has(i int) bool {
	return b[i/64]&(1<<(uint(i)%64)) != 0
}

// with returns a copy of b with bit i set, leaving b untouched for the
// caller's remaining siblings.
func (b bitset) with(i int) bitset {
	c := make(bitset, len(b))
	copy(c, b)
	c[i/64] |= 1 << (uint(i) % 64)
	return c
}
