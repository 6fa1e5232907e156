package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mmeshcher/rental-store/internal/auth"
)

func TestAuthMiddleware_WithValidToken(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", 0)
	m := NewAuthMiddleware(tokens)
	userID := uuid.New()

	raw, err := tokens.Issue(userID, false)
	require.NoError(t, err)

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		id, ok := GetIdentityFromContext(r.Context())
		require.True(t, ok, "identity not in context")
		assert.Equal(t, userID, id.UserID)
		assert.False(t, id.IsAdmin)
	})

	r := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.Header.Set(AuthHeader, raw)

	m.Middleware(next).ServeHTTP(httptest.NewRecorder(), r)

	assert.True(t, nextCalled, "next handler was not called")
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	tokens := auth.NewTokenManager("test-secret", 0)
	foreign, err := auth.NewTokenManager("other-secret", 0).Issue(uuid.New(), true)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "no token", token: ""},
		{name: "garbage", token: "abc"},
		{name: "foreign signature", token: foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatalf("next handler should not be called")
			})

			r := httptest.NewRequest(http.MethodPost, "/api/rentals", nil)
			if tt.token != "" {
				r.Header.Set(AuthHeader, tt.token)
			}
			w := httptest.NewRecorder()

			NewAuthMiddleware(tokens).Middleware(next).ServeHTTP(w, r)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "message")
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name     string
		identity *auth.Identity
		status   int
	}{
		{name: "admin", identity: &auth.Identity{UserID: uuid.New(), IsAdmin: true}, status: http.StatusOK},
		{name: "regular user", identity: &auth.Identity{UserID: uuid.New()}, status: http.StatusForbidden},
		{name: "anonymous", identity: nil, status: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			r := httptest.NewRequest(http.MethodDelete, "/api/genres/1", nil)
			if tt.identity != nil {
				r = r.WithContext(WithIdentity(r.Context(), *tt.identity))
			}
			w := httptest.NewRecorder()

			RequireAdmin(next).ServeHTTP(w, r)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRecoverer(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/movies", nil)

	Recoverer(zap.NewNop())(next).ServeHTTP(w, r)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLogger_PassesThrough(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/movies", nil)

	Logger(zap.NewNop())(next).ServeHTTP(w, r)

	assert.Equal(t, http.StatusTeapot, w.Code)
}
