package user_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go2gg/edge/internal/user"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware(t *testing.T) {
	t.Run("success - identity from headers", func(t *testing.T) {
		var got user.Identity
		var found bool
		h := user.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got, found = user.FromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(user.HeaderUserID, "u_1")
		req.Header.Set(user.HeaderOrganizationID, "org_1")
		h.ServeHTTP(httptest.NewRecorder(), req)

		assert.True(t, found)
		assert.Equal(t, user.Identity{UserID: "u_1", OrganizationID: "org_1"}, got)
	})

	t.Run("success - no identity without user header", func(t *testing.T) {
		var found bool
		h := user.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, found = user.FromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(user.HeaderOrganizationID, "org_1")
		h.ServeHTTP(httptest.NewRecorder(), req)

		assert.False(t, found)
	})
}

func TestRequire(t *testing.T) {
	h := user.Middleware(user.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(user.HeaderUserID, "u_1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
