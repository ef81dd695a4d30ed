package kb

import "fmt"

// Relation is a single-character edge label between two terms.
type Relation byte

const (
	SubsetOf     Relation = 's'
	SupersetOf   Relation = 'S'
	MemberOf     Relation = 'm'
	HasMember    Relation = 'M'
	Possesses    Relation = 'p'
	PossessedBy  Relation = 'P'
	EquivalentTo Relation = 'e'
)

type relationInfo struct {
	name    string
	inverse Relation
}

var relations = map[Relation]relationInfo{
	SubsetOf:     {"is-subset-of", SupersetOf},
	SupersetOf:   {"is-superset-of", SubsetOf},
	MemberOf:     {"is-member-of", HasMember},
	HasMember:    {"has-member", MemberOf},
	Possesses:    {"possesses", PossessedBy},
	PossessedBy:  {"is-possessed-by", Possesses},
	EquivalentTo: {"is-equivalent-to", EquivalentTo},
}

// alphabet fixes the iteration order of Relations().
var alphabet = []Relation{SubsetOf, SupersetOf, MemberOf, HasMember, Possesses, PossessedBy, EquivalentTo}

// Relations returns the full relation alphabet.
func Relations() []Relation {
	out := make([]Relation, len(alphabet))
	copy(out, alphabet)
	return out
}

// ParseRelation validates a relation character.
func ParseRelation(c byte) (Relation, error) {
	r := Relation(c)
	if !r.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRelation, c)
	}
	return r, nil
}

// ParseRelationString accepts a one-character string, as found in rule
// files and request bodies.
func ParseRelationString(s string) (Relation, error) {
	if len(s) != 1 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRelation, s)
	}
	return ParseRelation(s[0])
}

// Valid reports whether r belongs to the alphabet.
func (r Relation) Valid() bool {
	_, ok := relations[r]
	return ok
}

// Inverse returns the relation asserted in the opposite direction.
// e is its own inverse. Invalid relations return themselves.
func (r Relation) Inverse() Relation {
	if info, ok := relations[r]; ok {
		return info.inverse
	}
	return r
}

// Name returns the human-readable relation name.
func (r Relation) Name() string {
	if info, ok := relations[r]; ok {
		return info.name
	}
	return "unknown"
}

// Forward reports whether r is the canonical direction of its pair:
// the lower-case member, with e counting as forward.
func (r Relation) Forward() bool {
	return r >= 'a' && r <= 'z'
}

func (r Relation) String() string {
	return string(rune(r))
}

// MarshalText encodes r as its one-character form.
func (r Relation) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRelation, byte(r))
	}
	return []byte{byte(r)}, nil
}

// UnmarshalText decodes a one-character relation.
func (r *Relation) UnmarshalText(text []byte) error {
	rel, err := ParseRelationString(string(text))
	if err != nil {
		return err
	}
	*r = rel
	return nil
}
