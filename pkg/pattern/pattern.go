// Package pattern compiles relation-path patterns and classifies relation
// strings against them.
//
// A pattern is a concatenation of tokens, each a relation character that
// matches exactly one hop, or a relation character followed by '*' that
// matches zero or more hops. "e*ms*e*" accepts "m", "ms", "ems", "msse"
// and so on.
package pattern

import (
	"fmt"
	"strings"

	apperrors "github.com/duynguyendang/sir/pkg/common/errors"
	"github.com/duynguyendang/sir/pkg/kb"
)

var ErrInvalidPattern = fmt.Errorf("%w: invalid pattern", apperrors.ErrInvalidInput)

// Level is the result of classifying a candidate relation string.
type Level int

const (
	// None means no truncation of the pattern accounts for the candidate.
	None Level = iota
	// Partial means a proper truncation accounts for it; the chain may
	// still grow into a full match.
	Partial
	// Full means the whole pattern accounts for it.
	Full
)

func (l Level) String() string {
	switch l {
	case Partial:
		return "partial"
	case Full:
		return "full"
	default:
		return "none"
	}
}

// Token is one relation with an optional zero-or-more quantifier.
type Token struct {
	Rel  kb.Relation
	Star bool
}

func (t Token) String() string {
	if t.Star {
		return t.Rel.String() + "*"
	}
	return t.Rel.String()
}

// Pattern is a compiled relation-path pattern.
type Pattern struct {
	src    string
	tokens []Token
}

// Compile parses s. Every character must be a relation, and '*' may only
// follow a relation.
func Compile(s string) (*Pattern, error) {
	p := &Pattern{src: s}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '*' {
			return nil, fmt.Errorf("%w %q: '*' at offset %d does not follow a relation", ErrInvalidPattern, s, i)
		}
		rel, err := kb.ParseRelation(c)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidPattern, s, err)
		}
		tok := Token{Rel: rel}
		if i+1 < len(s) && s[i+1] == '*' {
			tok.Star = true
			i++
		}
		p.tokens = append(p.tokens, tok)
	}
	return p, nil
}

// MustCompile is like Compile but panics on a malformed pattern.
func MustCompile(s string) *Pattern {
	p, err := Compile(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source text.
func (p *Pattern) String() string {
	return p.src
}

// Tokens returns a copy of the compiled tokens.
func (p *Pattern) Tokens() []Token {
	out := make([]Token, len(p.tokens))
	copy(out, p.tokens)
	return out
}

// Classify tests the whole pattern and then each right-truncation, longest
// first, against candidate. The first truncation that matches every
// character of candidate decides the level; shorter truncations are never
// consulted once a longer one succeeds.
func (p *Pattern) Classify(candidate string) Level {
	for n := len(p.tokens); n >= 0; n-- {
		if matchAnchored(p.tokens[:n], candidate) {
			if n == len(p.tokens) {
				return Full
			}
			return Partial
		}
	}
	return None
}

// matchAnchored simulates the token sequence as an NFA. live[i] holds when
// the first i tokens can account for the input read so far.
func matchAnchored(tokens []Token, candidate string) bool {
	n := len(tokens)
	live := make([]bool, n+1)
	live[0] = true
	skipStars(tokens, live)

	next := make([]bool, n+1)
	for j := 0; j < len(candidate); j++ {
		c := kb.Relation(candidate[j])
		moved := false
		clear(next)
		for i := 0; i < n; i++ {
			if !live[i] || tokens[i].Rel != c {
				continue
			}
			if tokens[i].Star {
				next[i] = true
			} else {
				next[i+1] = true
			}
			moved = true
		}
		if !moved {
			return false
		}
		skipStars(tokens, next)
		live, next = next, live
	}
	return live[n]
}

// skipStars propagates liveness past starred tokens, which may match
// nothing. A single forward pass suffices since skips only move forward.
func skipStars(tokens []Token, live []bool) {
	for i, t := range tokens {
		if live[i] && t.Star {
			live[i+1] = true
		}
	}
}

// Describe renders the pattern as a readable chain of relation names for
// search traces.
func (p *Pattern) Describe() string {
	parts := make([]string, len(p.tokens))
	for i, t := range p.tokens {
		if t.Star {
			parts[i] = "(" + t.Rel.Name() + ")*"
		} else {
			parts[i] = t.Rel.Name()
		}
	}
	return strings.Join(parts, " . ")
}
