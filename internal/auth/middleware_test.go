// ABOUTME: Tests for the route guard and token helpers.
// ABOUTME: Verifies redirect without token and pass-through with token.

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGuard(t *testing.T) {
	tests := []struct {
		name         string
		token        string
		present      bool
		wantStatus   int
		wantLocation string
		wantCalled   bool
	}{
		{"no token", "", false, http.StatusSeeOther, "/login", false},
		{"with token", "abc123", true, http.StatusOK, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := TokenSourceFunc(func(r *http.Request) (string, bool) {
				return tt.token, tt.present
			})

			called := false
			var gotToken string
			handler := Guard(src, "/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				gotToken, _ = TokenFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", "/admin/restaurantes/1", nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if loc := rr.Header().Get("Location"); loc != tt.wantLocation {
				t.Errorf("Location = %q, want %q", loc, tt.wantLocation)
			}
			if called != tt.wantCalled {
				t.Errorf("handler called = %v, want %v", called, tt.wantCalled)
			}
			if tt.wantCalled && gotToken != tt.token {
				t.Errorf("TokenFromContext() = %q, want %q", gotToken, tt.token)
			}
		})
	}
}

func TestCookieSource(t *testing.T) {
	tests := []struct {
		name   string
		cookie *http.Cookie
		want   string
		wantOK bool
	}{
		{"missing", nil, "", false},
		{"blank", &http.Cookie{Name: CookieName, Value: "  "}, "", false},
		{"present", &http.Cookie{Name: CookieName, Value: "jwt-value"}, "jwt-value", true},
		{"other cookie", &http.Cookie{Name: "sid", Value: "x"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			got, ok := CookieSource{}.Token(req)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Token() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer ", ""},
		{"Bearer abc", "abc"},
		{"Basic abc", ""},
	}

	for _, tt := range tests {
		if got := BearerToken(tt.header); got != tt.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}
