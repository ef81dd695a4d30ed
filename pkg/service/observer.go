package service

import (
	"go.uber.org/zap"

	"github.com/duynguyendang/sir/pkg/kb"
	"github.com/duynguyendang/sir/pkg/pattern"
)

// Observer receives trace events from assertions and path searches.
// Implementations must not retain the chain slices passed to them.
type Observer interface {
	FactAsserted(f kb.Fact)
	SearchStarted(start kb.Term, pat *pattern.Pattern, end kb.Term)
	FactTraversed(depth int, f kb.Fact, candidate string, level pattern.Level)
	PathFound(path string, chain []kb.Fact)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) FactAsserted(kb.Fact)                              {}
func (NopObserver) SearchStarted(kb.Term, *pattern.Pattern, kb.Term)  {}
func (NopObserver) FactTraversed(int, kb.Fact, string, pattern.Level) {}
func (NopObserver) PathFound(string, []kb.Fact)                       {}

// LogObserver writes every event to a zap logger at debug level.
type LogObserver struct {
	Logger *zap.Logger
}

// NewLogObserver creates a LogObserver. A nil logger yields a no-op.
func NewLogObserver(logger *zap.Logger) *LogObserver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogObserver{Logger: logger}
}

func (o *LogObserver) FactAsserted(f kb.Fact) {
	o.Logger.Debug("Added relationship", zap.Stringer("fact", f))
}

func (o *LogObserver) SearchStarted(start kb.Term, pat *pattern.Pattern, end kb.Term) {
	o.Logger.Debug("Searching",
		zap.String("start", string(start)),
		zap.Stringer("pattern", pat),
		zap.String("reads", pat.Describe()),
		zap.String("end", string(end)),
	)
}

func (o *LogObserver) FactTraversed(depth int, f kb.Fact, candidate string, level pattern.Level) {
	o.Logger.Debug("Traversed",
		zap.Int("depth", depth),
		zap.Stringer("fact", f),
		zap.String("sofar", candidate),
		zap.Stringer("match", level),
	)
}

func (o *LogObserver) PathFound(path string, chain []kb.Fact) {
	o.Logger.Debug("Path found", zap.String("path", path), zap.Int("hops", len(chain)))
}

// multiObserver fans events out to several observers.
type multiObserver []Observer

func (m multiObserver) FactAsserted(f kb.Fact) {
	for _, o := range m {
		o.FactAsserted(f)
	}
}

func (m multiObserver) SearchStarted(start kb.Term, pat *pattern.Pattern, end kb.Term) {
	for _, o := range m {
		o.SearchStarted(start, pat, end)
	}
}

func (m multiObserver) FactTraversed(depth int, f kb.Fact, candidate string, level pattern.Level) {
	for _, o := range m {
		o.FactTraversed(depth, f, candidate, level)
	}
}

func (m multiObserver) PathFound(path string, chain []kb.Fact) {
	for _, o := range m {
		o.PathFound(path, chain)
	}
}
