package repl

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynguyendang/sir/internal/manager"
	"github.com/duynguyendang/sir/pkg/export"
	"github.com/duynguyendang/sir/pkg/sentence"
	"github.com/duynguyendang/sir/pkg/service"
)

func newSession(t *testing.T) *manager.Session {
	t.Helper()
	rules, err := sentence.DefaultRules()
	require.NoError(t, err)
	return manager.NewSession("test", service.DefaultSearchOptions(), rules, nil)
}

func run(t *testing.T, s *manager.Session, input string) string {
	t.Helper()
	var out bytes.Buffer
	err := Run(context.Background(), Config{}, s, strings.NewReader(input), &out)
	require.NoError(t, err)
	return out.String()
}

func TestRun_Conversation(t *testing.T) {
	out := run(t, newSession(t), `
the cat has a collar
fluff is a cat
does fluff have a collar?
every cat has a collar
does fluff have a collar?
hello there
`)
	assert.Equal(t, strings.Join([]string{
		sentence.TextUnderstood,
		sentence.TextUnderstood,
		sentence.TextNotSure,
		sentence.TextUnderstood,
		sentence.TextYes,
		sentence.TextNotUnderstood,
	}, "\n")+"\n", out)
}

func TestRun_StopsAtExit(t *testing.T) {
	s := newSession(t)
	out := run(t, s, "fluff is a cat\nexit\nfluff is a dog\n")
	assert.Equal(t, sentence.TextUnderstood+"\n", out)
	assert.Len(t, s.Facts(), 2)
}

func TestRun_PromptAndEcho(t *testing.T) {
	var out bytes.Buffer
	err := Run(context.Background(), Config{Prompt: ">> "}, newSession(t), strings.NewReader("quit\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, ">> ", out.String())

	out.Reset()
	err = Run(context.Background(), ScriptConfig(), newSession(t), strings.NewReader("fluff is a cat\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "> fluff is a cat\nI understand\n", out.String())
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	session := newSession(t)
	err := Run(ctx, DefaultConfig(), session, strings.NewReader("fluff is a cat\n"), &bytes.Buffer{})
	assert.NoError(t, err)
	assert.Empty(t, session.Facts())
}

func TestRun_CancelWhileWaitingForInput(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	session := newSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, DefaultConfig(), session, pr, io.Discard)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel while blocked on input")
	}
}

func TestRun_Atoms(t *testing.T) {
	out := run(t, newSession(t), `
assert(fluff, m, cat), assert(cat, s, mammal)
path(fluff, "ms*", mammal)
path(mammal, "s", fluff)
assert(fluff, x, cat)
path(fluff, "**", cat)
frob(a, b, c)
path(a, b)
`)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 8)
	assert.Equal(t, "I understand", lines[0])
	assert.Equal(t, "I understand", lines[1])
	assert.Equal(t, "Yes: ms", lines[2])
	assert.Equal(t, "Not sure", lines[3])
	assert.Contains(t, lines[4], "unknown relation")
	assert.Contains(t, lines[5], "Error:")
	assert.Contains(t, lines[6], `unknown predicate "frob"`)
	assert.Contains(t, lines[7], "takes 3 arguments")
}

func TestRun_Facts(t *testing.T) {
	out := run(t, newSession(t), ":facts\nfluff is a cat\n:facts\n")
	assert.Equal(t, "(no facts)\nI understand\n(fluff, m, cat)\n(cat, M, fluff)\n", out)
}

func TestRun_Why(t *testing.T) {
	out := run(t, newSession(t), `
:why
fluff is a cat
every cat is a mammal
is fluff a mammal
:why
is fluff a dog
:why
`)
	assert.Contains(t, out, "No query yet.")
	assert.Contains(t, out, "ms: fluff is-member-of cat -> cat is-subset-of mammal\n")
	assert.Contains(t, out, "No path found (")
}

func TestRun_Suggestions(t *testing.T) {
	out := run(t, newSession(t), "every cat is a mammal\nis fluff a mamal\n")
	assert.Contains(t, out, `I don't know "mamal". Did you mean: mammal?`)
}

func TestRun_Debug(t *testing.T) {
	out := run(t, newSession(t), ":debug on\nfluff is a cat\nis fluff a cat\n:debug off\nfluff is a pet\n:debug\n")
	assert.Contains(t, out, "debug on")
	assert.Contains(t, out, "Added relationship")
	assert.Contains(t, out, "Searching")
	assert.Contains(t, out, "(is-equivalent-to)* . is-member-of")
	assert.Contains(t, out, "Traversed")
	assert.Contains(t, out, "Path found")
	assert.Contains(t, out, "m: fluff is-member-of cat\n")
	assert.Contains(t, out, "debug off")
	assert.Contains(t, out, "Usage: :debug on|off")

	after := out[strings.Index(out, "debug off"):]
	assert.NotContains(t, after, "Added relationship")
}

func TestRun_Export(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	out := run(t, newSession(t), "fluff is a cat\nis fluff a cat\n:export "+path+"\n:export\n")
	assert.Contains(t, out, "Exported 2 nodes and 1 links to "+path)
	assert.Contains(t, out, "Usage: :export <file>")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var graph export.D3Graph
	require.NoError(t, json.Unmarshal(data, &graph))
	require.Len(t, graph.Links, 1)
	assert.Equal(t, export.LinkPath, graph.Links[0].Type)
}

func TestRun_HelpAndUnknown(t *testing.T) {
	out := run(t, newSession(t), ":help\n:frob\n")
	assert.Contains(t, out, ":export <file>")
	assert.Contains(t, out, "Unknown command :frob")
}
