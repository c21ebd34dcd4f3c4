// ABOUTME: Route guard for the admin UI and session token plumbing.
// ABOUTME: Redirects to login without a token, otherwise stores it in the request context.

package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const tokenContextKey contextKey = "token"

// CookieName is the session-scoped cookie holding the backend access token.
const CookieName = "token"

// TokenSource reads the session token for a request. The guard depends on
// this interface so tests can inject token state directly.
type TokenSource interface {
	Token(r *http.Request) (string, bool)
}

// TokenSourceFunc adapts a function to TokenSource.
type TokenSourceFunc func(r *http.Request) (string, bool)

func (f TokenSourceFunc) Token(r *http.Request) (string, bool) { return f(r) }

// CookieSource reads the token from a named cookie.
type CookieSource struct {
	Name string
}

func (c CookieSource) Token(r *http.Request) (string, bool) {
	name := c.Name
	if name == "" {
		name = CookieName
	}
	cookie, err := r.Cookie(name)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(cookie.Value)
	return token, token != ""
}

// Guard protects next: requests without a token are redirected to loginPath
// with 303 so the guarded URL never lands in history; requests with a token
// pass through unchanged with the token available via TokenFromContext.
func Guard(src TokenSource, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := src.Token(r)
			if !ok {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithToken(r.Context(), token)))
		})
	}
}

// WithToken returns a copy of ctx carrying token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey, token)
}

// TokenFromContext returns the session token stored by Guard.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey).(string)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// SetTokenCookie stores token as a session cookie (no expiry).
func SetTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearTokenCookie removes the session cookie.
func ClearTokenCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(authHeader string) string {
	if authHeader == "" {
		return ""
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return ""
	}
	return strings.TrimSpace(token)
}
