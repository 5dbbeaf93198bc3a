// Package session keeps per-user generator sessions in a bounded, expiring cache.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/hyperjump/testgen/internal/generator"
)

// CookieName is the HTTP cookie carrying the session ID.
const CookieName = "testgen_session"

type entry struct {
	mu   sync.Mutex
	sess *generator.Session
}

// Store is an in-memory session store. Sessions beyond capacity are evicted least
// recently used first, and every session expires ttl after its last save.
type Store struct {
	cache  *expirable.LRU[string, *entry]
	logger *zap.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger for the store.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a store holding at most capacity sessions.
func NewStore(capacity int, ttl time.Duration, opts ...StoreOption) *Store {
	s := &Store{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = expirable.NewLRU[string, *entry](capacity, func(id string, _ *entry) {
		s.logger.Debug("session evicted", zap.String("session", id))
	}, ttl)
	return s
}

// Create starts a new empty session with a random ID.
func (s *Store) Create() *generator.Session {
	sess := generator.NewSession(uuid.NewString())
	s.cache.Add(sess.ID, &entry{sess: sess})
	return sess
}

// lookup returns the session for id if it exists and has not expired.
func (s *Store) lookup(id string) (*generator.Session, bool) {
	if id == "" {
		return nil, false
	}
	e, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	return e.sess, true
}

// GetOrCreate returns the session for id, or a new one when id is unknown or expired.
// created reports whether a new session (with a new ID) was made.
func (s *Store) GetOrCreate(id string) (sess *generator.Session, created bool) {
	if sess, ok := s.lookup(id); ok {
		return sess, false
	}
	return s.Create(), true
}

// Save stores sess and restarts its expiry.
func (s *Store) Save(sess *generator.Session) {
	if e, ok := s.cache.Peek(sess.ID); ok {
		e.sess = sess
		s.cache.Add(sess.ID, e)
		return
	}
	s.cache.Add(sess.ID, &entry{sess: sess})
}

// Lock serializes actions on one session. The caller must call unlock when done.
// ok is false when the session does not exist.
func (s *Store) Lock(id string) (sess *generator.Session, unlock func(), ok bool) {
	e, ok := s.cache.Get(id)
	if !ok {
		return nil, func() {}, false
	}
	e.mu.Lock()
	return e.sess, e.mu.Unlock, true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.cache.Len()
}
