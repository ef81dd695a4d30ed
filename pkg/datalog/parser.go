// Package datalog parses the small atom syntax accepted next to English
// sentences, e.g.
//
//	assert(fluff, m, cat)
//	path(fluff, "e*ms*e*", mammal), path(fluff, "e*pe*", collar).
package datalog

import (
	"fmt"
	"strings"
	"unicode"

	apperrors "github.com/duynguyendang/sir/pkg/common/errors"
)

var ErrSyntax = fmt.Errorf("%w: syntax error", apperrors.ErrInvalidInput)

// Atom represents a single unit such as path(a, "s*", b).
type Atom struct {
	Predicate string
	Args      []string
}

func (a Atom) String() string {
	return fmt.Sprintf("%s(%s)", a.Predicate, strings.Join(a.Args, ", "))
}

// LooksLikeAtom reports whether s starts with an identifier immediately
// followed by '(' and ends with ')' (ignoring a trailing dot), which is
// how the REPL tells atoms from sentences.
func LooksLikeAtom(s string) bool {
	s = strings.TrimSuffix(strings.TrimSpace(s), ".")
	open := strings.Index(s, "(")
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return false
	}
	return isIdent(strings.TrimSpace(s[:open]))
}

// Parse parses one or more comma-separated atoms. A trailing dot is allowed.
func Parse(query string) ([]Atom, error) {
	query = strings.TrimSpace(query)
	query = strings.TrimSuffix(query, ".")

	rawAtoms, err := SmartSplit(query)
	if err != nil {
		return nil, err
	}
	if len(rawAtoms) == 0 {
		return nil, fmt.Errorf("%w: empty query", ErrSyntax)
	}

	var atoms []Atom
	for _, raw := range rawAtoms {
		if raw == "" {
			continue
		}
		pred, args, err := parseAtomString(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse atom '%s': %w", raw, err)
		}
		atoms = append(atoms, Atom{Predicate: pred, Args: args})
	}
	if len(atoms) == 0 {
		return nil, fmt.Errorf("%w: empty query", ErrSyntax)
	}
	return atoms, nil
}

// parseAtomString parses "predicate(arg1, arg2, ...)".
func parseAtomString(s string) (string, []string, error) {
	start := strings.Index(s, "(")
	end := strings.LastIndex(s, ")")
	if start == -1 || end == -1 || start >= end || end != len(s)-1 {
		return "", nil, fmt.Errorf("%w: expected 'predicate(args...)' but got '%s'", ErrSyntax, s)
	}

	predicate := strings.TrimSpace(s[:start])
	if !isIdent(predicate) {
		return "", nil, fmt.Errorf("%w: bad predicate name '%s'", ErrSyntax, predicate)
	}

	args, err := SmartSplit(s[start+1 : end])
	if err != nil {
		return "", nil, err
	}
	for i, arg := range args {
		args[i] = strings.Trim(arg, "\"'")
	}
	return predicate, args, nil
}

// SmartSplit splits a string by top-level commas, respecting quotes and
// parentheses. e.g. `a, "b,c", f(d,e)` -> [a, "b,c", f(d,e)]
func SmartSplit(s string) ([]string, error) {
	var results []string
	var current strings.Builder
	depth := 0
	var quote rune

	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '(':
			depth++
		case r == ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced ')' in '%s'", ErrSyntax, s)
			}
		case r == ',' && depth == 0:
			results = append(results, strings.TrimSpace(current.String()))
			current.Reset()
			continue
		}
		current.WriteRune(r)
	}
	if quote != 0 {
		return nil, fmt.Errorf("%w: unterminated quote in '%s'", ErrSyntax, s)
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unbalanced '(' in '%s'", ErrSyntax, s)
	}
	if current.Len() > 0 {
		results = append(results, strings.TrimSpace(current.String()))
	}
	return results, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}
