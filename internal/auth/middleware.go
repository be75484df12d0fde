package auth

import (
	"context"
	"net/http"
	"strings"
)

// CookieName is the admin session cookie.
const CookieName = "site_admin_session"

type principalKey struct{}

// ContextWithPrincipal stores principal on ctx.
func ContextWithPrincipal(ctx context.Context, principal Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// PrincipalFromContext returns the principal stored by Middleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(Principal)
	return principal, ok
}

// TokenFromRequest reads the bearer token, falling back to the session
// cookie.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// Middleware rejects requests without a live session. onDenied writes the
// response for rejected requests.
func Middleware(sessions *Sessions, onDenied func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	if onDenied == nil {
		onDenied = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusUnauthorized)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := TokenFromRequest(r)
			if token == "" {
				onDenied(w, r, ErrUnauthenticated)
				return
			}
			session, ok := sessions.Lookup(token)
			if !ok {
				onDenied(w, r, ErrUnauthenticated)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), session.Principal)))
		})
	}
}
