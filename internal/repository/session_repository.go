package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/catalog"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/relay"
	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
)

// Session is the typed state of one shopper: the catalog screen controller
// and the relay carrying state between screens
type Session struct {
	ID      string
	Catalog *catalog.View
	Relay   *relay.Relay

	mu       sync.Mutex
	lastSeen time.Time
}

// LastSeen returns when the session was last used
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// SessionRepository defines the interface for session access
type SessionRepository interface {
	Get(ctx context.Context, id string) (*Session, error)
	Create(ctx context.Context) (*Session, error)
	EvictIdle(ctx context.Context) int
}

// SessionOptions configures new sessions
type SessionOptions struct {
	TTL       time.Duration
	Debounce  time.Duration
	Scheduler catalog.Scheduler // nil uses runtime timers
}

// InMemorySessionRepository implements SessionRepository with in-memory storage.
// Relay slots live in the shared relay store so they can be backed by Redis.
type InMemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	store    relay.Store
	opts     SessionOptions
	now      func() time.Time
}

// NewInMemorySessionRepository creates an empty session repository
func NewInMemorySessionRepository(store relay.Store, opts SessionOptions) *InMemorySessionRepository {
	return &InMemorySessionRepository{
		sessions: make(map[string]*Session),
		store:    store,
		opts:     opts,
		now:      time.Now,
	}
}

// Get returns a live session by its ID and marks it as used
func (r *InMemorySessionRepository) Get(ctx context.Context, id string) (*Session, error) {
	r.mu.RLock()
	s, exists := r.sessions[id]
	r.mu.RUnlock()

	if !exists {
		return nil, ErrSessionNotFound
	}
	s.touch(r.now())
	return s, nil
}

// Create starts a new session with a random ID
func (r *InMemorySessionRepository) Create(ctx context.Context) (*Session, error) {
	id := uuid.New().String()
	s := &Session{
		ID:       id,
		Catalog:  catalog.NewView(catalog.NewDebouncer(r.opts.Scheduler, r.opts.Debounce)),
		Relay:    relay.New(r.store, id, r.opts.TTL),
		lastSeen: r.now(),
	}

	r.mu.Lock()
	r.sessions[id] = s
	r.mu.Unlock()

	return s, nil
}

// EvictIdle removes sessions unused for longer than the TTL and returns how
// many were removed
func (r *InMemorySessionRepository) EvictIdle(ctx context.Context) int {
	cutoff := r.now().Add(-r.opts.TTL)

	r.mu.Lock()
	var idle []*Session
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.Catalog.Close()
		_ = s.Relay.Clear(ctx)
	}
	return len(idle)
}

// Len returns the number of live sessions
func (r *InMemorySessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
