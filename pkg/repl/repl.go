package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/duynguyendang/sir/internal/logging"
	"github.com/duynguyendang/sir/internal/manager"
	"github.com/duynguyendang/sir/pkg/datalog"
	"github.com/duynguyendang/sir/pkg/export"
	"github.com/duynguyendang/sir/pkg/kb"
	"github.com/duynguyendang/sir/pkg/sentence"
	"github.com/duynguyendang/sir/pkg/service"
)

const helpText = `Say things like:
  every cat is a mammal        fluff is a cat        the cat has a collar
  is fluff a mammal?           does fluff have a collar?
Commands:
  assert(t1, r, t2)            assert a fact directly (r in s S m M p P e)
  path(start, "pattern", end)  run a path query, e.g. path(fluff, "ms*", animal)
  :facts                       list all facts
  :why                         show the paths behind the last answer
  :debug on|off                trace assertions and searches
  :export <file>               write the fact graph as D3 JSON
  :help                        show this help
  exit | quit                  leave`

// Run reads lines from in until EOF, exit/quit, or ctx is cancelled, and
// writes replies to out. Cancellation is a normal exit, even while waiting
// for input.
func Run(ctx context.Context, cfg Config, session *manager.Session, in io.Reader, out io.Writer) error {
	r := &repl{session: session, out: out}
	if cfg.Banner {
		fmt.Fprintln(out, "Type sentences, or ':help' for commands. 'exit' or 'quit' to stop.")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines, scanErr := readLines(ctx, in)
	for {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprint(out, cfg.Prompt)

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case l, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			line = strings.TrimSpace(l)
		}

		if line == "" {
			continue
		}
		if cfg.Echo {
			fmt.Fprintf(out, "> %s\n", line)
		}
		if line == "exit" || line == "quit" {
			return nil
		}
		r.exec(line)
	}
}

// readLines scans in on its own goroutine so that a blocked read does not
// hold up cancellation. The goroutine stops at EOF, on a read error, or
// once ctx is done and the pending read returns.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errc <- nil
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}

type repl struct {
	session *manager.Session
	out     io.Writer
	debug   bool
}

func (r *repl) exec(line string) {
	switch {
	case strings.HasPrefix(line, ":"):
		r.command(line)
	case datalog.LooksLikeAtom(line):
		r.atoms(line)
	default:
		r.say(line)
	}
}

func (r *repl) command(line string) {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	switch name {
	case ":help":
		fmt.Fprintln(r.out, helpText)

	case ":facts":
		facts := r.session.Facts()
		if len(facts) == 0 {
			fmt.Fprintln(r.out, "(no facts)")
			return
		}
		for _, f := range facts {
			fmt.Fprintln(r.out, f)
		}

	case ":debug":
		if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
			fmt.Fprintln(r.out, "Usage: :debug on|off")
			return
		}
		r.debug = args[0] == "on"
		if r.debug {
			r.session.Trace(service.NewLogObserver(logging.Console(r.out)))
		} else {
			r.session.Trace(nil)
		}
		fmt.Fprintf(r.out, "debug %s\n", args[0])

	case ":why":
		res, ok := r.session.Last()
		if !ok {
			fmt.Fprintln(r.out, "No query yet.")
			return
		}
		r.printResult(res)

	case ":export":
		if len(args) != 1 {
			fmt.Fprintln(r.out, "Usage: :export <file>")
			return
		}
		graph := r.session.Graph()
		if err := export.SaveD3Graph(graph, args[0]); err != nil {
			fmt.Fprintf(r.out, "Save error: %v\n", err)
			return
		}
		fmt.Fprintf(r.out, "Exported %d nodes and %d links to %s\n", len(graph.Nodes), len(graph.Links), args[0])

	default:
		fmt.Fprintf(r.out, "Unknown command %s. Type :help.\n", name)
	}
}

func (r *repl) atoms(line string) {
	atoms, err := datalog.Parse(line)
	if err != nil {
		fmt.Fprintf(r.out, "Error: %v\n", err)
		return
	}

	for _, a := range atoms {
		if len(a.Args) != 3 {
			fmt.Fprintf(r.out, "Error: %s takes 3 arguments, got %d\n", a.Predicate, len(a.Args))
			return
		}
		switch a.Predicate {
		case "assert":
			if _, err := r.session.AssertFact(a.Args[0], a.Args[1], a.Args[2]); err != nil {
				fmt.Fprintf(r.out, "Error: %v\n", err)
				return
			}
			fmt.Fprintln(r.out, sentence.TextUnderstood)
		case "path":
			res, err := r.session.QueryPath(a.Args[0], a.Args[1], a.Args[2])
			if err != nil {
				fmt.Fprintf(r.out, "Error: %v\n", err)
				return
			}
			if res.Found {
				fmt.Fprintf(r.out, "%s: %s\n", sentence.TextYes, strings.Join(res.Paths, ", "))
			} else {
				fmt.Fprintln(r.out, sentence.TextNotSure)
			}
		default:
			fmt.Fprintf(r.out, "Error: unknown predicate %q (use assert or path)\n", a.Predicate)
			return
		}
	}
}

func (r *repl) say(line string) {
	reply, err := r.session.Say(line)
	if err != nil {
		fmt.Fprintf(r.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintln(r.out, reply.Text)

	terms := make([]string, 0, len(reply.Suggestions))
	for term := range reply.Suggestions {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	for _, term := range terms {
		fmt.Fprintf(r.out, "  I don't know %q. Did you mean: %s?\n", term, strings.Join(reply.Suggestions[term], ", "))
	}

	if r.debug && reply.Result != nil {
		r.printResult(*reply.Result)
	}
}

func (r *repl) printResult(res service.Result) {
	if !res.Found {
		fmt.Fprintf(r.out, "No path found (%d facts visited", res.Visited)
		if res.Truncated {
			fmt.Fprint(r.out, ", search truncated")
		}
		fmt.Fprintln(r.out, ").")
		return
	}
	for i, path := range res.Paths {
		fmt.Fprintf(r.out, "%s: %s\n", path, formatChain(res.Chains[i]))
	}
}

func formatChain(chain []kb.Fact) string {
	parts := make([]string, len(chain))
	for i, f := range chain {
		parts[i] = fmt.Sprintf("%s %s %s", f.Subject, f.Relation.Name(), f.Object)
	}
	return strings.Join(parts, " -> ")
}
