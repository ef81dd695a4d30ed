package export

import (
	"encoding/json"
	"os"

	"github.com/duynguyendang/sir/pkg/kb"
)

// D3Node represents a term in the D3 force-directed graph.
type D3Node struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group,omitempty"` // "concept" or "instance"
}

// D3Link represents a fact in the D3 force-directed graph.
type D3Link struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
	Label    string `json:"label"`
	Type     string `json:"type"` // "fact" or "path"
}

// D3Graph represents the full graph structure for D3.js.
type D3Graph struct {
	Nodes []D3Node `json:"nodes"`
	Links []D3Link `json:"links"`
}

const (
	LinkFact = "fact"
	LinkPath = "path"

	GroupConcept  = "concept"
	GroupInstance = "instance"
)

type linkKey struct {
	s, o kb.Term
	r    kb.Relation
}

// canonical returns the forward reading of f. Symmetric e facts are keyed
// with their terms in sorted order so both halves of a pair collapse.
func canonical(f kb.Fact) linkKey {
	if !f.Relation.Forward() {
		f = f.Inverse()
	}
	if f.Relation == kb.EquivalentTo && f.Object < f.Subject {
		f = f.Inverse()
	}
	return linkKey{s: f.Subject, o: f.Object, r: f.Relation}
}

// D3Transformer converts a fact store into a D3 graph.
type D3Transformer struct {
	store *kb.Store
}

// NewD3Transformer creates a new transformer over store.
func NewD3Transformer(store *kb.Store) *D3Transformer {
	return &D3Transformer{store: store}
}

// Transform builds the graph. Each asserted pair becomes one link in its
// forward direction; links that appear in highlight (read in either
// direction) are marked as path links.
func (t *D3Transformer) Transform(highlight []kb.Fact) *D3Graph {
	onPath := make(map[linkKey]bool, len(highlight))
	for _, f := range highlight {
		onPath[canonical(f)] = true
	}

	graph := &D3Graph{Nodes: []D3Node{}, Links: []D3Link{}}
	seen := make(map[linkKey]bool)
	members := make(map[kb.Term]bool)

	for _, f := range t.store.Facts() {
		if f.Relation == kb.MemberOf {
			members[f.Subject] = true
		}
		key := canonical(f)
		if seen[key] {
			continue
		}
		seen[key] = true

		linkType := LinkFact
		if onPath[key] {
			linkType = LinkPath
		}
		graph.Links = append(graph.Links, D3Link{
			Source:   string(key.s),
			Target:   string(key.o),
			Relation: key.r.String(),
			Label:    key.r.Name(),
			Type:     linkType,
		})
	}

	for _, term := range t.store.Terms() {
		group := GroupConcept
		if members[term] {
			group = GroupInstance
		}
		graph.Nodes = append(graph.Nodes, D3Node{ID: string(term), Name: string(term), Group: group})
	}
	return graph
}

// ExportD3 is a convenience wrapper for D3Transformer.
func ExportD3(store *kb.Store, highlight []kb.Fact) *D3Graph {
	return NewD3Transformer(store).Transform(highlight)
}

// SaveD3Graph writes the graph to a JSON file.
func SaveD3Graph(graph *D3Graph, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(graph)
}
