package main

import (
	"fmt"
	"log"
	"time"

	"github.com/duynguyendang/sir/pkg/kb"
	"github.com/duynguyendang/sir/pkg/service"
)

// Builds taxonomies of growing size and times path queries over them. Each
// level adds a subset chain with a member at the bottom and an equivalence
// cycle, so the search has to prune, reuse facts across siblings and stop
// on cycles.
func main() {
	for _, depth := range []int{10, 50, 100, 200} {
		store := kb.NewStore()
		svc := service.NewKnowledgeService(store)

		start := time.Now()
		for i := 0; i < depth; i++ {
			class := fmt.Sprintf("class%d", i)
			svc.AssertFact(class, kb.SubsetOf, fmt.Sprintf("class%d", i+1))
			svc.AssertFact(class, kb.EquivalentTo, fmt.Sprintf("alias%d", i))
			svc.AssertFact(fmt.Sprintf("alias%d", i), kb.EquivalentTo, class)
			svc.AssertFact(fmt.Sprintf("thing%d", i), kb.Possesses, class)
		}
		svc.AssertFact("fluff", kb.MemberOf, "class0")
		fmt.Printf("depth %d: asserted %d facts in %v\n", depth, store.Len(), time.Since(start))

		top := fmt.Sprintf("class%d", depth)
		for _, q := range []struct{ start, pattern, end string }{
			{"fluff", "e*ms*e*", top},
			{"class0", "s*", top},
			{"fluff", "e*pe*", top},
		} {
			start = time.Now()
			res, err := svc.QueryPath(q.start, q.pattern, q.end)
			if err != nil {
				log.Fatal(err)
			}
			fmt.Printf("  path(%s, %q, %s): found=%v paths=%d visited=%d examined=%d truncated=%v took %v\n",
				q.start, q.pattern, q.end, res.Found, len(res.Paths), res.Visited, res.Examined, res.Truncated, time.Since(start))
		}
	}
}
