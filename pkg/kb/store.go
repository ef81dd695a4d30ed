// Package kb holds the session fact store: an append-only, ordered
// multigraph of relation-labelled edges between terms.
//
// The store keeps no index. Readers scan it linearly, which is what the
// path search does for every node it expands.
//
// Example usage:
//
//	s := kb.NewStore()
//	s.AssertPair("cat", kb.MemberOf, "mammal", kb.HasMember)
//	for _, f := range s.Facts() {
//	    fmt.Println(f)
//	}
package kb

// Store is an append-only sequence of facts. Duplicates are kept.
// A Store is not safe for concurrent use; callers that share one across
// goroutines must serialise access.
type Store struct {
	facts []Fact
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// Assert appends one fact. It performs no validation.
func (s *Store) Assert(f Fact) {
	s.facts = append(s.facts, f)
}

// AssertPair appends (t1, rel, t2) followed by (t2, inv, t1), keeping the
// graph traversable in both directions without a reverse index.
func (s *Store) AssertPair(t1 Term, rel Relation, t2 Term, inv Relation) {
	s.facts = append(s.facts, Fact{t1, rel, t2}, Fact{t2, inv, t1})
}

// Facts returns a copy of all facts in insertion order.
func (s *Store) Facts() []Fact {
	out := make([]Fact, len(s.facts))
	copy(out, s.facts)
	return out
}

// Len returns the number of facts.
func (s *Store) Len() int {
	return len(s.facts)
}

// Fact returns the i-th fact in insertion order.
func (s *Store) Fact(i int) Fact {
	return s.facts[i]
}

// Terms returns every distinct term in the order it was first seen.
func (s *Store) Terms() []Term {
	seen := make(map[Term]bool)
	var out []Term
	for _, f := range s.facts {
		for _, t := range [2]Term{f.Subject, f.Object} {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// HasTerm reports whether t appears in any fact.
func (s *Store) HasTerm(t Term) bool {
	for _, f := range s.facts {
		if f.Subject == t || f.Object == t {
			return true
		}
	}
	return false
}
