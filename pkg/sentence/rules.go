package sentence

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	apperrors "github.com/duynguyendang/sir/pkg/common/errors"
	"github.com/duynguyendang/sir/pkg/kb"
	"github.com/duynguyendang/sir/pkg/pattern"
)

var ErrInvalidRule = fmt.Errorf("%w: invalid sentence rule", apperrors.ErrInvalidInput)

//go:embed rules.yaml
var defaultRules []byte

// Kind says what a rule does with a matching sentence.
type Kind string

const (
	KindAssert Kind = "assert"
	KindQuery  Kind = "query"
)

// Rule maps one sentence shape to an assertion or a path query.
// Group fields are 1-based capture group numbers of Expr.
type Rule struct {
	Name string `yaml:"name"`
	Kind Kind   `yaml:"kind"`
	Expr string `yaml:"expr"`

	// assert
	Subject  int    `yaml:"subject,omitempty"`
	Relation string `yaml:"relation,omitempty"`
	Object   int    `yaml:"object,omitempty"`

	// query
	Start    int      `yaml:"start,omitempty"`
	End      int      `yaml:"end,omitempty"`
	Patterns []string `yaml:"patterns,omitempty"`

	re  *regexp.Regexp
	rel kb.Relation
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// DefaultRules returns the built-in rule table.
func DefaultRules() ([]Rule, error) {
	return ParseRules(defaultRules)
}

// LoadRules reads a rule table from a YAML file.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes and validates a YAML rule table. Order is kept.
func ParseRules(data []byte) ([]Rule, error) {
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("%w: no rules", ErrInvalidRule)
	}

	names := make(map[string]bool)
	for i := range file.Rules {
		r := &file.Rules[i]
		if r.Name == "" {
			return nil, fmt.Errorf("%w: rule %d has no name", ErrInvalidRule, i)
		}
		if names[r.Name] {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidRule, r.Name)
		}
		names[r.Name] = true
		if err := r.compile(); err != nil {
			return nil, fmt.Errorf("rule %q: %w", r.Name, err)
		}
	}
	return file.Rules, nil
}

func (r *Rule) compile() error {
	re, err := regexp.Compile(r.Expr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRule, err)
	}
	r.re = re

	groups := re.NumSubexp()
	checkGroup := func(field string, g int) error {
		if g < 1 || g > groups {
			return fmt.Errorf("%w: %s group %d outside 1..%d", ErrInvalidRule, field, g, groups)
		}
		return nil
	}

	switch r.Kind {
	case KindAssert:
		if err := checkGroup("subject", r.Subject); err != nil {
			return err
		}
		if err := checkGroup("object", r.Object); err != nil {
			return err
		}
		rel, err := kb.ParseRelationString(r.Relation)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRule, err)
		}
		r.rel = rel
	case KindQuery:
		if err := checkGroup("start", r.Start); err != nil {
			return err
		}
		if err := checkGroup("end", r.End); err != nil {
			return err
		}
		if len(r.Patterns) == 0 {
			return fmt.Errorf("%w: query without patterns", ErrInvalidRule)
		}
		for _, p := range r.Patterns {
			if _, err := pattern.Compile(p); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidRule, err)
			}
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRule, r.Kind)
	}
	return nil
}

// Match applies the rule to a normalised sentence and returns the capture
// groups, or nil when the shape does not match.
func (r *Rule) Match(info string) []string {
	return r.re.FindStringSubmatch(info)
}

// Rel returns the relation an assert rule produces.
func (r *Rule) Rel() kb.Relation {
	return r.rel
}
