// internal/services/session_store.go
package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	apperrors "github.com/doutorgpt/carousel-maker/internal/errors"
	"github.com/doutorgpt/carousel-maker/internal/metrics"
)

const DefaultSessionTTL = 2 * time.Hour

// SessionStore keeps sessions in memory. Every Get extends the session's
// lifetime; idle sessions expire after the TTL.
type SessionStore struct {
	cache *cache.Cache
	ttl   time.Duration
	opts  SessionOptions
}

// NewSessionStore creates a store whose sessions share opts.
func NewSessionStore(ttl time.Duration, opts SessionOptions) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	c := cache.New(ttl, ttl/2)
	c.OnEvicted(func(string, interface{}) {
		metrics.ActiveSessions.Dec()
	})
	return &SessionStore{cache: c, ttl: ttl, opts: opts}
}

// Create starts a new session, optionally prefilled with the demo data.
func (st *SessionStore) Create(demo bool) *Session {
	s := NewSession(uuid.NewString(), st.opts)
	if demo {
		s.LoadDemoData()
	}
	st.cache.Set(s.ID(), s, cache.DefaultExpiration)
	metrics.ActiveSessions.Inc()
	return s
}

// Get returns a live session and refreshes its expiry.
func (st *SessionStore) Get(id string) (*Session, error) {
	v, ok := st.cache.Get(id)
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("session %s not found", id), nil)
	}
	s := v.(*Session)
	// slide the expiry
	_ = st.cache.Replace(id, s, cache.DefaultExpiration)
	return s, nil
}

// Delete ends a session.
func (st *SessionStore) Delete(id string) {
	st.cache.Delete(id)
}

// Count returns the number of live sessions.
func (st *SessionStore) Count() int {
	return st.cache.ItemCount()
}
