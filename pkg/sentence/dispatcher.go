// Package sentence turns fixed-shape English sentences into fact
// assertions and path queries.
//
// Rules are tried in order and the first match wins:
//
//	"every cat is a mammal"   -> (cat, s, mammal)
//	"fluff is a cat"          -> (fluff, m, cat)
//	"every cat has a collar"  -> (cat, p, collar)
//	"does fluff have a collar" -> path query fluff -> collar
package sentence

import (
	"strings"

	"go.uber.org/zap"

	"github.com/duynguyendang/sir/pkg/kb"
	"github.com/duynguyendang/sir/pkg/metrics"
	"github.com/duynguyendang/sir/pkg/service"
)

// ReplyKind classifies a reply.
type ReplyKind string

const (
	Understood    ReplyKind = "understood"
	Yes           ReplyKind = "yes"
	NotSure       ReplyKind = "not_sure"
	NotUnderstood ReplyKind = "not_understood"
)

// Reply texts.
const (
	TextUnderstood    = "I understand"
	TextYes           = "Yes"
	TextNotSure       = "Not sure"
	TextNotUnderstood = "I don't understand your sentence."
)

// Reply is the answer to one sentence.
type Reply struct {
	Kind   ReplyKind       `json:"kind"`
	Text   string          `json:"text"`
	Rule   string          `json:"rule,omitempty"`
	Fact   *kb.Fact        `json:"fact,omitempty"`
	Result *service.Result `json:"result,omitempty"`
	// Suggestions maps a queried term missing from the store to known
	// terms that look like it.
	Suggestions map[string][]string `json:"suggestions,omitempty"`
}

// Knowledge is the part of the knowledge service the dispatcher drives.
type Knowledge interface {
	AssertFact(t1 string, rel kb.Relation, t2 string) kb.Fact
	QueryAny(start string, patterns []string, end string) (service.Result, error)
	Store() *kb.Store
}

// Dispatcher applies an ordered rule table to sentences.
type Dispatcher struct {
	knowledge Knowledge
	rules     []Rule
	logger    *zap.Logger
}

// NewDispatcher creates a Dispatcher over k.
func NewDispatcher(k Knowledge, rules []Rule, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{knowledge: k, rules: rules, logger: logger}
}

// With returns a copy of d that drives k instead.
func (d *Dispatcher) With(k Knowledge) *Dispatcher {
	c := *d
	c.knowledge = k
	return &c
}

// Rules returns the rule table in evaluation order.
func (d *Dispatcher) Rules() []Rule {
	return d.rules
}

// Normalize trims, lower-cases, collapses whitespace and drops trailing
// sentence punctuation.
func Normalize(text string) string {
	s := string(kb.Normalize(text))
	s = strings.TrimRight(s, ".?!")
	return strings.TrimSpace(s)
}

// Handle dispatches one sentence. The error is non-nil only if a rule
// carries a pattern the knowledge service rejects.
func (d *Dispatcher) Handle(text string) (Reply, error) {
	info := Normalize(text)
	for i := range d.rules {
		r := &d.rules[i]
		groups := r.Match(info)
		if groups == nil {
			continue
		}
		reply, err := d.apply(r, groups)
		if err != nil {
			return Reply{}, err
		}
		metrics.Sentences.WithLabelValues(string(reply.Kind)).Inc()
		return reply, nil
	}

	d.logger.Debug("no rule matched", zap.String("sentence", info))
	metrics.Sentences.WithLabelValues(string(NotUnderstood)).Inc()
	return Reply{Kind: NotUnderstood, Text: TextNotUnderstood}, nil
}

func (d *Dispatcher) apply(r *Rule, groups []string) (Reply, error) {
	switch r.Kind {
	case KindAssert:
		f := d.knowledge.AssertFact(groups[r.Subject], r.Rel(), groups[r.Object])
		d.logger.Debug("sentence asserted", zap.String("rule", r.Name), zap.Stringer("fact", f))
		return Reply{Kind: Understood, Text: TextUnderstood, Rule: r.Name, Fact: &f}, nil

	default:
		start, end := groups[r.Start], groups[r.End]
		res, err := d.knowledge.QueryAny(start, r.Patterns, end)
		if err != nil {
			return Reply{}, err
		}
		d.logger.Debug("sentence queried",
			zap.String("rule", r.Name),
			zap.String("start", start),
			zap.String("end", end),
			zap.Bool("found", res.Found),
		)
		if res.Found {
			return Reply{Kind: Yes, Text: TextYes, Rule: r.Name, Result: &res}, nil
		}
		return Reply{
			Kind:        NotSure,
			Text:        TextNotSure,
			Rule:        r.Name,
			Result:      &res,
			Suggestions: d.suggest(start, end),
		}, nil
	}
}

func (d *Dispatcher) suggest(terms ...string) map[string][]string {
	store := d.knowledge.Store()
	var known []kb.Term
	var out map[string][]string
	for _, t := range terms {
		term := kb.Normalize(t)
		if store.HasTerm(term) {
			continue
		}
		if known == nil {
			known = store.Terms()
		}
		if s := Suggest(term, known); len(s) > 0 {
			if out == nil {
				out = make(map[string][]string)
			}
			out[string(term)] = s
		}
	}
	return out
}
