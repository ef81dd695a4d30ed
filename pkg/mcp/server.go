package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/duynguyendang/sir/internal/manager"
	"github.com/duynguyendang/sir/pkg/kb"
	"github.com/duynguyendang/sir/pkg/sentence"
)

const (
	factsURI     = "sir://facts"
	relationsURI = "sir://schema/relations"
)

// MCPServer exposes one session's fact store via MCP.
type MCPServer struct {
	session *manager.Session
	logger  *zap.Logger
}

// NewServer registers the SIR tools and resources on a fresh MCP server.
func NewServer(session *manager.Session, logger *zap.Logger) *server.MCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := server.NewMCPServer(
		"SIR",
		"0.1.0",
		server.WithResourceCapabilities(true, true),
		server.WithLogging(),
	)
	ms := &MCPServer{session: session, logger: logger}

	// --- Resources ---

	s.AddResource(
		mcp.NewResource(
			factsURI,
			"Facts",
			mcp.WithResourceDescription("Every fact in the session, in insertion order"),
			mcp.WithMIMEType("application/json"),
		),
		ms.handleFacts,
	)

	s.AddResource(
		mcp.NewResource(
			relationsURI,
			"Relation Alphabet",
			mcp.WithResourceDescription("Relation characters and pattern syntax"),
			mcp.WithMIMEType("text/markdown"),
		),
		ms.handleRelations,
	)

	// --- Tools ---

	s.AddTool(
		mcp.NewTool(
			"tell",
			mcp.WithDescription("Say an English sentence such as 'every cat is a mammal' or ask 'is fluff a mammal?'."),
			mcp.WithString("text", mcp.Required(), mcp.Description("The sentence")),
		),
		ms.handleTell,
	)

	s.AddTool(
		mcp.NewTool(
			"assert_fact",
			mcp.WithDescription("Assert a fact (subject, relation, object). Its inverse is asserted too."),
			mcp.WithString("subject", mcp.Required(), mcp.Description("Subject term")),
			mcp.WithString("relation", mcp.Required(), mcp.Description("One of s S m M p P e")),
			mcp.WithString("object", mcp.Required(), mcp.Description("Object term")),
		),
		ms.handleAssertFact,
	)

	s.AddTool(
		mcp.NewTool(
			"query_path",
			mcp.WithDescription("Find chains of facts from start to end whose relations match a pattern like 'e*ms*e*'."),
			mcp.WithString("start", mcp.Required(), mcp.Description("Start term")),
			mcp.WithString("pattern", mcp.Required(), mcp.Description("Relation pattern")),
			mcp.WithString("end", mcp.Required(), mcp.Description("End term")),
		),
		ms.handleQueryPath,
	)

	s.AddTool(
		mcp.NewTool(
			"list_facts",
			mcp.WithDescription("List all facts in the session."),
		),
		ms.handleListFacts,
	)

	return s
}

// Run serves session over MCP on the process's stdin and stdout until ctx
// is done.
func Run(ctx context.Context, session *manager.Session, logger *zap.Logger) error {
	return Serve(ctx, session, logger, os.Stdin, os.Stdout)
}

// Serve speaks MCP over in and out. Cancelling ctx stops it cleanly.
func Serve(ctx context.Context, session *manager.Session, logger *zap.Logger, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(NewServer(session, logger))
	if logger != nil {
		stdio.SetErrorLogger(zap.NewStdLog(logger))
		logger.Info("Starting MCP server on Stdio")
	}
	err := stdio.Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (ms *MCPServer) handleFacts(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	facts := ms.session.Facts()
	if facts == nil {
		facts = []kb.Fact{}
	}
	jsonBytes, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal facts: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

func (ms *MCPServer) handleRelations(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	var b strings.Builder
	b.WriteString("# Relations\n\n")
	for _, r := range kb.Relations() {
		fmt.Fprintf(&b, "- '%s' %s (inverse '%s')\n", r, r.Name(), r.Inverse())
	}
	b.WriteString(`
# Patterns

A pattern is a sequence of relation characters, each optionally followed by
'*' (zero or more). A chain of facts matches when its relation string is
fully matched, e.g. 'e*ms*e*' reads "equivalent to something that is a
member of a (sub)set".
`)

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "text/markdown",
			Text:     b.String(),
		},
	}, nil
}

func (ms *MCPServer) handleTell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	text, ok := args["text"].(string)
	if !ok {
		return mcp.NewToolResultError("text argument required"), nil
	}

	reply, err := ms.session.Say(text)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("tell failed: %v", err)), nil
	}

	out := reply.Text
	if reply.Kind == sentence.Yes {
		out += " (" + strings.Join(reply.Result.Paths, ", ") + ")"
	}
	terms := make([]string, 0, len(reply.Suggestions))
	for term := range reply.Suggestions {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	for _, term := range terms {
		out += fmt.Sprintf("\nUnknown term %q. Did you mean: %s?", term, strings.Join(reply.Suggestions[term], ", "))
	}
	return mcp.NewToolResultText(out), nil
}

func (ms *MCPServer) handleAssertFact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	subject, relation, object, errResult := stringArgs(request, "subject", "relation", "object")
	if errResult != nil {
		return errResult, nil
	}

	fact, err := ms.session.AssertFact(subject, relation, object)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("assert failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Asserted %s and %s", fact, fact.Inverse())), nil
}

func (ms *MCPServer) handleQueryPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, pattern, end, errResult := stringArgs(request, "start", "pattern", "end")
	if errResult != nil {
		return errResult, nil
	}

	res, err := ms.session.QueryPath(start, pattern, end)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}
	if !res.Found {
		msg := fmt.Sprintf("No path found (%d facts visited).", res.Visited)
		if res.Truncated {
			msg = fmt.Sprintf("No path found; search truncated after %d facts.", res.Visited)
		}
		return mcp.NewToolResultText(msg), nil
	}

	var formatted []string
	for i, path := range res.Paths {
		hops := make([]string, len(res.Chains[i]))
		for j, f := range res.Chains[i] {
			hops[j] = f.String()
		}
		formatted = append(formatted, fmt.Sprintf("%s: %s", path, strings.Join(hops, " -> ")))
	}
	return mcp.NewToolResultText(strings.Join(formatted, "\n")), nil
}

func (ms *MCPServer) handleListFacts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	facts := ms.session.Facts()
	if len(facts) == 0 {
		return mcp.NewToolResultText("No facts."), nil
	}

	formatted := make([]string, len(facts))
	for i, f := range facts {
		formatted[i] = f.String()
	}
	return mcp.NewToolResultText(strings.Join(formatted, "\n")), nil
}

func stringArgs(request mcp.CallToolRequest, a, b, c string) (string, string, string, *mcp.CallToolResult) {
	args := request.GetArguments()
	var vals [3]string
	for i, name := range []string{a, b, c} {
		v, ok := args[name].(string)
		if !ok {
			return "", "", "", mcp.NewToolResultError(name + " argument required")
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], nil
}
