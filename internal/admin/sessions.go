// ABOUTME: Per-browser-session registry of detail pages keyed by the sid cookie.
// ABOUTME: Idle sessions are evicted after a TTL so abandoned pages are released.

package admin

import (
	"net/http"
	"sync"
	"time"

	"github.com/2389/provadmin/internal/detail"
	"github.com/google/uuid"
)

// SessionCookie names the cookie identifying a browser session.
const SessionCookie = "sid"

type session struct {
	page     *detail.Page
	lastSeen time.Time
}

// Sessions maps session ids to the one detail page each session owns.
type Sessions struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*session
}

// NewSessions returns an empty registry. Sessions idle longer than ttl are
// evicted on the next write.
func NewSessions(ttl time.Duration) *Sessions {
	return &Sessions{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]*session),
	}
}

// ID returns the request's session id, issuing a new sid cookie when the
// request has none.
func (s *Sessions) ID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// Page returns the session's page, or nil.
func (s *Sessions) Page(id string) *detail.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil
	}
	e.lastSeen = s.now()
	return e.page
}

// Set replaces the session's page.
func (s *Sessions) Set(id string, p *detail.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.entries[id] = &session{page: p, lastSeen: s.now()}
}

// Drop discards the session's page.
func (s *Sessions) Drop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep evicts idle sessions and returns how many were removed.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked()
}

func (s *Sessions) sweepLocked() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}
