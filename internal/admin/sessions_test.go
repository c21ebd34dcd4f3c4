// ABOUTME: Tests for the per-session detail page registry.
// ABOUTME: Covers cookie issuance, page replacement and idle eviction.

package admin

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/2389/provadmin/internal/detail"
)

func TestSessionsIDIssuesCookie(t *testing.T) {
	s := NewSessions(time.Hour)

	w := httptest.NewRecorder()
	id := s.ID(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if id == "" {
		t.Fatal("expected a session id")
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookie || cookies[0].Value != id {
		t.Fatalf("expected sid cookie %q, got %+v", id, cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	if got := s.ID(w, req); got != id {
		t.Errorf("expected existing id %q, got %q", id, got)
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("existing session must not get a new cookie")
	}
}

func TestSessionsIDRejectsForgedCookie(t *testing.T) {
	s := NewSessions(time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "../../etc"})
	if id := s.ID(httptest.NewRecorder(), req); id == "../../etc" {
		t.Fatal("expected malformed session id to be replaced")
	}
}

func TestSessionsSetReplacesPage(t *testing.T) {
	s := NewSessions(time.Hour)
	first := detail.New("1", detail.Config{})
	second := detail.New("2", detail.Config{})

	s.Set("a", first)
	s.Set("a", second)

	if got := s.Page("a"); got != second {
		t.Fatal("expected the latest page")
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", s.Len())
	}

	s.Drop("a")
	if s.Page("a") != nil {
		t.Fatal("expected page dropped")
	}
}

func TestSessionsSweep(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewSessions(10 * time.Minute)
	s.now = func() time.Time { return now }

	s.Set("old", detail.New("1", detail.Config{}))
	now = now.Add(5 * time.Minute)
	s.Set("fresh", detail.New("2", detail.Config{}))

	now = now.Add(7 * time.Minute)
	if removed := s.Sweep(); removed != 1 {
		t.Fatalf("expected 1 eviction, got %d", removed)
	}
	if s.Page("old") != nil {
		t.Error("expected idle session evicted")
	}
	if s.Page("fresh") == nil {
		t.Error("expected recent session kept")
	}
}

func TestSessionsNoTTLKeepsEverything(t *testing.T) {
	s := NewSessions(0)
	s.Set("a", detail.New("1", detail.Config{}))
	if removed := s.Sweep(); removed != 0 {
		t.Fatalf("expected no eviction, got %d", removed)
	}
}
