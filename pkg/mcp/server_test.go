package mcp

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/duynguyendang/sir/internal/manager"
	"github.com/duynguyendang/sir/pkg/kb"
	"github.com/duynguyendang/sir/pkg/sentence"
	"github.com/duynguyendang/sir/pkg/service"
)

func newTestServer(t *testing.T) *MCPServer {
	t.Helper()
	rules, err := sentence.DefaultRules()
	require.NoError(t, err)
	return &MCPServer{session: manager.NewSession("mcp", service.DefaultSearchOptions(), rules, nil)}
}

func call(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)

	switch c := res.Content[0].(type) {
	case mcp.TextContent:
		return c.Text, res.IsError
	case *mcp.TextContent:
		return c.Text, res.IsError
	}
	t.Fatalf("unexpected content %T", res.Content[0])
	return "", false
}

func TestTell(t *testing.T) {
	ms := newTestServer(t)

	text, isErr := call(t, ms.handleTell, map[string]any{"text": "every cat is a mammal"})
	assert.False(t, isErr)
	assert.Equal(t, sentence.TextUnderstood, text)

	call(t, ms.handleTell, map[string]any{"text": "fluff is a cat"})
	text, _ = call(t, ms.handleTell, map[string]any{"text": "is fluff a mammal?"})
	assert.Equal(t, "Yes (ms)", text)

	text, _ = call(t, ms.handleTell, map[string]any{"text": "is fluff a mamal?"})
	assert.Contains(t, text, sentence.TextNotSure)
	assert.Contains(t, text, "mammal")

	_, isErr = call(t, ms.handleTell, map[string]any{})
	assert.True(t, isErr)
}

func TestTell_SuggestionsAreSorted(t *testing.T) {
	ms := newTestServer(t)
	call(t, ms.handleTell, map[string]any{"text": "every cat is a mammal"})
	call(t, ms.handleTell, map[string]any{"text": "fluff is a cat"})

	for i := 0; i < 10; i++ {
		text, _ := call(t, ms.handleTell, map[string]any{"text": "is flufy a mamal?"})
		assert.Equal(t, sentence.TextNotSure+
			"\nUnknown term \"flufy\". Did you mean: fluff?"+
			"\nUnknown term \"mamal\". Did you mean: mammal?", text)
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	rules, err := sentence.DefaultRules()
	require.NoError(t, err)
	session := manager.NewSession("mcp", service.DefaultSearchOptions(), rules, nil)

	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, session, zap.NewNop(), pr, io.Discard)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestAssertAndQuery(t *testing.T) {
	ms := newTestServer(t)

	text, isErr := call(t, ms.handleAssertFact, map[string]any{"subject": "fluff", "relation": "m", "object": "cat"})
	assert.False(t, isErr)
	assert.Equal(t, "Asserted (fluff, m, cat) and (cat, M, fluff)", text)

	_, isErr = call(t, ms.handleAssertFact, map[string]any{"subject": "fluff", "relation": "z", "object": "cat"})
	assert.True(t, isErr)
	_, isErr = call(t, ms.handleAssertFact, map[string]any{"subject": "fluff"})
	assert.True(t, isErr)

	text, isErr = call(t, ms.handleQueryPath, map[string]any{"start": "cat", "pattern": "M", "end": "fluff"})
	assert.False(t, isErr)
	assert.Equal(t, "M: (cat, M, fluff)", text)

	text, _ = call(t, ms.handleQueryPath, map[string]any{"start": "cat", "pattern": "s", "end": "fluff"})
	assert.Contains(t, text, "No path found")

	_, isErr = call(t, ms.handleQueryPath, map[string]any{"start": "cat", "pattern": "*", "end": "fluff"})
	assert.True(t, isErr)
}

func TestListFactsAndResources(t *testing.T) {
	ms := newTestServer(t)

	text, _ := call(t, ms.handleListFacts, nil)
	assert.Equal(t, "No facts.", text)

	call(t, ms.handleTell, map[string]any{"text": "tom is fluff"})
	text, _ = call(t, ms.handleListFacts, nil)
	assert.Equal(t, "(tom, e, fluff)\n(fluff, e, tom)", text)

	req := mcp.ReadResourceRequest{}
	req.Params.URI = factsURI
	contents, err := ms.handleFacts(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	tc, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	var facts []kb.Fact
	require.NoError(t, json.Unmarshal([]byte(tc.Text), &facts))
	assert.Equal(t, []kb.Fact{
		kb.NewFact("tom", kb.EquivalentTo, "fluff"),
		kb.NewFact("fluff", kb.EquivalentTo, "tom"),
	}, facts)

	req.Params.URI = relationsURI
	contents, err = ms.handleRelations(context.Background(), req)
	require.NoError(t, err)
	tc = contents[0].(mcp.TextResourceContents)
	assert.Contains(t, tc.Text, "'m' is-member-of (inverse 'M')")
}

func TestNewServer(t *testing.T) {
	rules, err := sentence.DefaultRules()
	require.NoError(t, err)
	s := NewServer(manager.NewSession("mcp", service.DefaultSearchOptions(), rules, nil), nil)
	assert.NotNil(t, s)
}
