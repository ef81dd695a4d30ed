package main

import (
	"fmt"
	"log"
	"os"

	"github.com/duynguyendang/sir/pkg/sentence"
)

// Prints which sentence rule each argument matches and the captured groups.
// Usage: go run ./devtools/debug_rules "is fluff a mammal?" "bob owns a boat"
// Set RULES to try a rule file instead of the built-in table.
func main() {
	rules, err := sentence.DefaultRules()
	if path := os.Getenv("RULES"); path != "" {
		rules, err = sentence.LoadRules(path)
	}
	if err != nil {
		log.Fatalf("Failed to load rules: %v", err)
	}

	for _, text := range os.Args[1:] {
		info := sentence.Normalize(text)
		fmt.Printf("%q -> %q\n", text, info)

		matched := false
		for _, r := range rules {
			groups := r.Match(info)
			if groups == nil {
				continue
			}
			matched = true
			fmt.Printf("  Rule: %s (%s)\n", r.Name, r.Kind)
			if r.Kind == sentence.KindAssert {
				fmt.Printf("  Fact: (%s, %s, %s)\n", groups[r.Subject], r.Rel(), groups[r.Object])
			} else {
				fmt.Printf("  Query: %s -> %s with %v\n", groups[r.Start], groups[r.End], r.Patterns)
			}
			break
		}
		if !matched {
			fmt.Println("  No rule matched")
		}
	}
}
