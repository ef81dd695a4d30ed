package kb

import (
	"fmt"
	"strings"
)

// Term names a concept or an instance. Terms are compared by exact
// string equality after Normalize.
type Term string

// Normalize trims, lower-cases and collapses internal whitespace.
func Normalize(s string) Term {
	return Term(strings.Join(strings.Fields(strings.ToLower(s)), " "))
}

// Fact is a directed, relation-labelled edge between two terms.
type Fact struct {
	Subject  Term     `json:"subject"`
	Relation Relation `json:"relation"`
	Object   Term     `json:"object"`
}

// NewFact creates a Fact.
func NewFact(subject Term, rel Relation, object Term) Fact {
	return Fact{Subject: subject, Relation: rel, Object: object}
}

// Inverse returns the fact read in the opposite direction.
func (f Fact) Inverse() Fact {
	return Fact{Subject: f.Object, Relation: f.Relation.Inverse(), Object: f.Subject}
}

// IsValid checks that both terms are present and the relation is known.
func (f Fact) IsValid() bool {
	return f.Subject != "" && f.Object != "" && f.Relation.Valid()
}

// String returns a human-readable representation of the Fact.
func (f Fact) String() string {
	return fmt.Sprintf("(%s, %s, %s)", f.Subject, f.Relation, f.Object)
}
