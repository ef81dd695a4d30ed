package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynguyendang/sir/pkg/kb"
)

func testStore() *kb.Store {
	s := kb.NewStore()
	s.AssertPair("cat", kb.SubsetOf, "mammal", kb.SupersetOf)
	s.AssertPair("fluff", kb.MemberOf, "cat", kb.HasMember)
	s.AssertPair("tom", kb.EquivalentTo, "fluff", kb.EquivalentTo)
	s.AssertPair("cat", kb.Possesses, "collar", kb.PossessedBy)
	return s
}

func TestD3Transformer(t *testing.T) {
	graph := NewD3Transformer(testStore()).Transform(nil)

	require.Len(t, graph.Nodes, 5)
	assert.Equal(t, D3Node{ID: "cat", Name: "cat", Group: GroupConcept}, graph.Nodes[0])

	var fluff D3Node
	for _, n := range graph.Nodes {
		if n.ID == "fluff" {
			fluff = n
		}
	}
	assert.Equal(t, GroupInstance, fluff.Group)

	// one link per asserted pair, in forward direction
	require.Len(t, graph.Links, 4)
	assert.Equal(t, D3Link{Source: "cat", Target: "mammal", Relation: "s", Label: "is-subset-of", Type: LinkFact}, graph.Links[0])
	assert.Equal(t, "is-member-of", graph.Links[1].Label)
	assert.Equal(t, "e", graph.Links[2].Relation)
	for _, l := range graph.Links {
		assert.Equal(t, LinkFact, l.Type)
	}
}

func TestD3Transformer_Highlight(t *testing.T) {
	// a chain read against the asserted direction still marks the link
	chain := []kb.Fact{
		kb.NewFact("mammal", kb.SupersetOf, "cat"),
		kb.NewFact("cat", kb.HasMember, "fluff"),
		kb.NewFact("fluff", kb.EquivalentTo, "tom"),
	}
	graph := ExportD3(testStore(), chain)

	types := map[string]string{}
	for _, l := range graph.Links {
		types[l.Source+"-"+l.Relation+"-"+l.Target] = l.Type
	}
	assert.Equal(t, map[string]string{
		"cat-s-mammal": LinkPath,
		"fluff-m-cat":  LinkPath,
		"fluff-e-tom":  LinkPath,
		"cat-p-collar": LinkFact,
	}, types)
}

func TestD3Transformer_Empty(t *testing.T) {
	graph := ExportD3(kb.NewStore(), nil)
	data, err := json.Marshal(graph)
	require.NoError(t, err)
	assert.JSONEq(t, `{"nodes":[],"links":[]}`, string(data))
}

func TestSaveD3Graph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	graph := ExportD3(testStore(), nil)
	require.NoError(t, SaveD3Graph(graph, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got D3Graph
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, *graph, got)
	assert.Contains(t, string(data), "\n  \"nodes\"")

	assert.Error(t, SaveD3Graph(graph, filepath.Join(t.TempDir(), "missing", "graph.json")))
}
