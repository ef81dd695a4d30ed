package datalog

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    []Atom
		wantErr bool
	}{
		{
			name:  "Assert",
			query: `assert(fluff, m, cat)`,
			want: []Atom{
				{Predicate: "assert", Args: []string{"fluff", "m", "cat"}},
			},
		},
		{
			name:  "Quoted Pattern",
			query: `path(fluff, "e*ms*e*", mammal).`,
			want: []Atom{
				{Predicate: "path", Args: []string{"fluff", "e*ms*e*", "mammal"}},
			},
		},
		{
			name:  "Multiple Atoms",
			query: `assert(a, s, b), path(a, 's', b)`,
			want: []Atom{
				{Predicate: "assert", Args: []string{"a", "s", "b"}},
				{Predicate: "path", Args: []string{"a", "s", "b"}},
			},
		},
		{
			name:  "Multi-word Terms",
			query: `assert("the cat", p, "red collar")`,
			want: []Atom{
				{Predicate: "assert", Args: []string{"the cat", "p", "red collar"}},
			},
		},
		{
			name:  "Quoted Comma",
			query: `assert("a, b", e, c)`,
			want: []Atom{
				{Predicate: "assert", Args: []string{"a, b", "e", "c"}},
			},
		},
		{name: "Invalid Syntax", query: `path(A, B`, wantErr: true},
		{name: "Unterminated Quote", query: `path(a, "s*, b)`, wantErr: true},
		{name: "Trailing Garbage", query: `path(a, s, b) x`, wantErr: true},
		{name: "Bad Predicate", query: `1path(a)`, wantErr: true},
		{name: "Empty Query", query: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.query)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSmartSplit(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{`a, "b,c", d`, []string{"a", "\"b,c\"", "d"}},
		{`fn(a,b), c`, []string{"fn(a,b)", "c"}},
		{`path(a, "s*", b), assert(a, s, b)`, []string{`path(a, "s*", b)`, `assert(a, s, b)`}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := SmartSplit(tt.input)
			if err != nil {
				t.Fatalf("SmartSplit(%q) error = %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SmartSplit(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLooksLikeAtom(t *testing.T) {
	tests := map[string]bool{
		`path(a, s, b)`:           true,
		`assert(a, s, b).`:        true,
		`fluff is a cat`:          false,
		`is fluff (really) a cat`: false,
		`(a)`:                     false,
	}
	for in, want := range tests {
		if got := LooksLikeAtom(in); got != want {
			t.Errorf("LooksLikeAtom(%q) = %v, want %v", in, got, want)
		}
	}
}
