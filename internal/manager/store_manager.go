package manager

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	apperrors "github.com/duynguyendang/sir/pkg/common/errors"
	"github.com/duynguyendang/sir/pkg/export"
	"github.com/duynguyendang/sir/pkg/kb"
	"github.com/duynguyendang/sir/pkg/metrics"
	"github.com/duynguyendang/sir/pkg/sentence"
	"github.com/duynguyendang/sir/pkg/service"
)

const DefaultMaxSessions = 1000

var ErrSessionNotFound = fmt.Errorf("%w: session not found", apperrors.ErrNotFound)

// Session is one conversation: a private fact store plus the services that
// read and write it. All methods serialise on the session lock, so a
// Session may be shared between request goroutines.
type Session struct {
	ID      string
	Created time.Time

	mu         sync.Mutex
	store      *kb.Store
	base       *service.KnowledgeService
	knowledge  *service.KnowledgeService
	dispatcher *sentence.Dispatcher
	last       *service.Result
}

// NewSession creates a session with an empty store.
func NewSession(id string, opts service.SearchOptions, rules []sentence.Rule, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("session", id))
	store := kb.NewStore()
	svc := service.NewKnowledgeService(store,
		service.WithSearchOptions(opts),
		service.WithLogger(logger),
	)
	return &Session{
		ID:         id,
		Created:    time.Now(),
		store:      store,
		base:       svc,
		knowledge:  svc,
		dispatcher: sentence.NewDispatcher(svc, rules, logger),
	}
}

// Trace routes search and assertion events to o. A nil observer turns
// tracing off.
func (s *Session) Trace(o service.Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.knowledge = s.base
	if o != nil {
		s.knowledge = s.base.Traced(o)
	}
	s.dispatcher = s.dispatcher.With(s.knowledge)
}

// Say dispatches one English sentence.
func (s *Session) Say(text string) (sentence.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply, err := s.dispatcher.Handle(text)
	if err != nil {
		return reply, err
	}
	if reply.Result != nil {
		s.last = reply.Result
	}
	return reply, nil
}

// AssertFact asserts (subject, relation, object) and its inverse. The
// relation is a single character from the relation alphabet.
func (s *Session) AssertFact(subject, relation, object string) (kb.Fact, error) {
	rel, err := kb.ParseRelationString(strings.TrimSpace(relation))
	if err != nil {
		return kb.Fact{}, err
	}
	if err := checkTerms(subject, object); err != nil {
		return kb.Fact{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.knowledge.AssertFact(subject, rel, object), nil
}

// QueryPath runs a single-pattern path query.
func (s *Session) QueryPath(start, pattern, end string) (service.Result, error) {
	if err := checkTerms(start, end); err != nil {
		return service.Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.knowledge.QueryPath(start, pattern, end)
	if err != nil {
		return res, err
	}
	s.last = &res
	return res, nil
}

// Facts returns a snapshot of the session's facts in insertion order.
func (s *Session) Facts() []kb.Fact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Facts()
}

// Last returns the most recent query result, if any.
func (s *Session) Last() (service.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return service.Result{}, false
	}
	return *s.last, true
}

// Graph exports the session's facts, highlighting the chains found by the
// most recent query.
func (s *Session) Graph() *export.D3Graph {
	s.mu.Lock()
	defer s.mu.Unlock()

	var highlight []kb.Fact
	if s.last != nil {
		for _, chain := range s.last.Chains {
			highlight = append(highlight, chain...)
		}
	}
	return export.ExportD3(s.store, highlight)
}

func checkTerms(terms ...string) error {
	for _, t := range terms {
		if kb.Normalize(t) == "" {
			return kb.ErrEmptyTerm
		}
	}
	return nil
}

// SessionManager keeps live sessions in an LRU. When full, the least
// recently used session is dropped along with its facts.
type SessionManager struct {
	sessions *lru.Cache[string, *Session]
	opts     service.SearchOptions
	rules    []sentence.Rule
	logger   *zap.Logger
}

// NewSessionManager creates a SessionManager holding at most maxSessions.
func NewSessionManager(maxSessions int, opts service.SearchOptions, rules []sentence.Rule, logger *zap.Logger) *SessionManager {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// Eviction callback keeps the open-sessions gauge honest
	cache, _ := lru.NewWithEvict[string, *Session](maxSessions, func(id string, s *Session) {
		metrics.SessionsOpen.Dec()
		logger.Debug("session closed", zap.String("session", id), zap.Duration("age", time.Since(s.Created)))
	})

	return &SessionManager{
		sessions: cache,
		opts:     opts,
		rules:    rules,
		logger:   logger,
	}
}

// Create opens a new session with a random ID.
func (sm *SessionManager) Create() *Session {
	s := NewSession(uuid.NewString(), sm.opts, sm.rules, sm.logger)
	sm.sessions.Add(s.ID, s)
	metrics.SessionsOpen.Inc()
	sm.logger.Debug("session opened", zap.String("session", s.ID))
	return s
}

// Get retrieves a session by ID.
func (sm *SessionManager) Get(id string) (*Session, error) {
	s, ok := sm.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Delete closes a session.
func (sm *SessionManager) Delete(id string) error {
	if !sm.sessions.Remove(id) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

// Len returns the number of open sessions.
func (sm *SessionManager) Len() int {
	return sm.sessions.Len()
}

// CloseAll closes all open sessions.
func (sm *SessionManager) CloseAll() {
	sm.sessions.Purge()
}
