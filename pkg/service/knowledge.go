package service

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/duynguyendang/sir/pkg/kb"
	"github.com/duynguyendang/sir/pkg/metrics"
	"github.com/duynguyendang/sir/pkg/pattern"
)

const patternCacheSize = 256

// KnowledgeService is the entry point to a fact store: it asserts symmetric
// fact pairs and answers path queries over them.
type KnowledgeService struct {
	store    *kb.Store
	opts     SearchOptions
	observer Observer
	logger   *zap.Logger
	patterns *lru.Cache[string, *pattern.Pattern]
}

// Option configures a KnowledgeService.
type Option func(*KnowledgeService)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *KnowledgeService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSearchOptions sets the path search limits.
func WithSearchOptions(opts SearchOptions) Option {
	return func(s *KnowledgeService) {
		s.opts = opts
	}
}

// WithObserver sets the trace observer.
func WithObserver(o Observer) Option {
	return func(s *KnowledgeService) {
		if o != nil {
			s.observer = o
		}
	}
}

// NewKnowledgeService creates a service over store.
func NewKnowledgeService(store *kb.Store, opts ...Option) *KnowledgeService {
	cache, _ := lru.New[string, *pattern.Pattern](patternCacheSize)
	s := &KnowledgeService{
		store:    store,
		opts:     DefaultSearchOptions(),
		observer: NopObserver{},
		logger:   zap.NewNop(),
		patterns: cache,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Traced returns a copy of s sharing its store whose events also reach o.
func (s *KnowledgeService) Traced(o Observer) *KnowledgeService {
	c := *s
	c.observer = multiObserver{s.observer, o}
	return &c
}

// Store returns the underlying fact store.
func (s *KnowledgeService) Store() *kb.Store {
	return s.store
}

// AssertFact normalises both terms and asserts (t1, rel, t2) together with
// its inverse. It never fails; the relation is trusted to be valid.
func (s *KnowledgeService) AssertFact(t1 string, rel kb.Relation, t2 string) kb.Fact {
	f := kb.NewFact(kb.Normalize(t1), rel, kb.Normalize(t2))
	s.store.AssertPair(f.Subject, f.Relation, f.Object, rel.Inverse())

	metrics.FactsAsserted.Add(2)
	s.observer.FactAsserted(f)
	s.observer.FactAsserted(f.Inverse())
	s.logger.Debug("fact asserted", zap.Stringer("fact", f), zap.Int("facts", s.store.Len()))
	return f
}

// QueryPath searches for a chain from start to end fully matching the
// pattern. The only error is a malformed pattern.
func (s *KnowledgeService) QueryPath(start, pat, end string) (Result, error) {
	return s.QueryAny(start, []string{pat}, end)
}

// QueryAny runs QueryPath for each pattern and merges the results. Paths
// keep pattern order, then discovery order, without duplicates.
func (s *KnowledgeService) QueryAny(start string, pats []string, end string) (Result, error) {
	compiled := make([]*pattern.Pattern, 0, len(pats))
	for _, src := range pats {
		p, err := s.compile(src)
		if err != nil {
			metrics.PathQueries.WithLabelValues(metrics.ResultInvalid).Inc()
			return Result{}, err
		}
		compiled = append(compiled, p)
	}

	from, to := kb.Normalize(start), kb.Normalize(end)
	pf := NewPathfinder(s.opts, s.observer)
	began := time.Now()

	merged := Result{Paths: []string{}}
	seen := make(map[string]bool)
	for _, p := range compiled {
		res := pf.Search(s.store, from, p, to)
		merged.Visited += res.Visited
		merged.Examined += res.Examined
		merged.Truncated = merged.Truncated || res.Truncated
		for i, path := range res.Paths {
			if seen[path] {
				continue
			}
			seen[path] = true
			merged.Paths = append(merged.Paths, path)
			merged.Chains = append(merged.Chains, res.Chains[i])
		}
	}
	merged.Found = len(merged.Paths) > 0

	metrics.PathQueryDuration.Observe(time.Since(began).Seconds())
	metrics.PathQueryVisited.Observe(float64(merged.Visited))
	metrics.PathQueries.WithLabelValues(resultLabel(merged)).Inc()

	s.logger.Debug("path query",
		zap.String("start", string(from)),
		zap.Strings("patterns", pats),
		zap.String("end", string(to)),
		zap.Bool("found", merged.Found),
		zap.Strings("paths", merged.Paths),
		zap.Int("visited", merged.Visited),
		zap.Bool("truncated", merged.Truncated),
	)
	return merged, nil
}

func (s *KnowledgeService) compile(src string) (*pattern.Pattern, error) {
	if p, ok := s.patterns.Get(src); ok {
		return p, nil
	}
	p, err := pattern.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", src, err)
	}
	s.patterns.Add(src, p)
	return p, nil
}

func resultLabel(r Result) string {
	switch {
	case r.Found:
		return metrics.ResultFound
	case r.Truncated:
		return metrics.ResultTruncated
	default:
		return metrics.ResultNotFound
	}
}
