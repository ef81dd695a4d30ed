package sentence

import (
	"sort"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/duynguyendang/sir/pkg/kb"
)

const (
	suggestThreshold = 0.5
	suggestLimit     = 3
)

type match struct {
	term  string
	score float64
}

// Suggest returns up to three known terms that look like a misspelling of
// term, best first.
func Suggest(term kb.Term, known []kb.Term) []string {
	query := string(term)
	if query == "" || len(known) == 0 {
		return nil
	}

	var results []match
	for _, k := range known {
		candidate := string(k)
		if candidate == "" || candidate == query {
			continue
		}
		if score := similarity(query, candidate); score >= suggestThreshold {
			results = append(results, match{term: candidate, score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
	if len(results) > suggestLimit {
		results = results[:suggestLimit]
	}

	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.term
	}
	return out
}

// similarity is a score in [0, 1]: the better of whole-string Levenshtein
// similarity and the mean best per-word similarity, so that "cat" is close
// to "the cat".
func similarity(a, b string) float64 {
	if strings.Contains(b, a) || strings.Contains(a, b) {
		return 0.9
	}
	global := levenshtein.Similarity(a, b, nil)

	words := strings.Fields(b)
	var total float64
	queryWords := strings.Fields(a)
	for _, qw := range queryWords {
		best := 0.0
		for _, w := range words {
			if s := levenshtein.Similarity(qw, w, nil); s > best {
				best = s
			}
		}
		total += best
	}
	tokens := 0.0
	if len(queryWords) > 0 {
		tokens = total / float64(len(queryWords))
	}

	if tokens > global {
		return tokens
	}
	return global
}
