package user

import (
	"context"
	"net/http"
	"strings"
)

/*
 * Authentication happens upstream (the dashboard/edge API). It forwards the authenticated identity
 * in trusted headers; this package moves that identity into the request context so the rate-limit
 * gateway and the tenant-scoped handlers can read it without parsing headers themselves.
 */

const (
	HeaderUserID         = "X-User-ID"
	HeaderOrganizationID = "X-Organization-ID"
)

type ctxKey struct{}

// Identity is the authenticated caller
type Identity struct {
	UserID         string
	OrganizationID string
}

// WithIdentity returns a copy of ctx carrying id
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the identity set by Middleware, if any
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}

// Middleware reads the identity headers and stores them in the request context
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := Identity{
			UserID:         strings.TrimSpace(r.Header.Get(HeaderUserID)),
			OrganizationID: strings.TrimSpace(r.Header.Get(HeaderOrganizationID)),
		}
		if id.UserID != "" {
			r = r.WithContext(WithIdentity(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// Require rejects requests without an identity
func Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := FromContext(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"missing authenticated user"}}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
