// Package middleware содержит HTTP middleware для сервиса проката.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mmeshcher/rental-store/internal/auth"
)

type contextKey string

const identityKey contextKey = "identity"

// AuthHeader задаёт заголовок, в котором передаётся токен доступа.
const AuthHeader = "x-auth-token"

// AuthMiddleware выполняет проверку аутентификации пользователя по подписанному токену.
type AuthMiddleware struct {
	tokens *auth.TokenManager
}

// NewAuthMiddleware создаёт новый экземпляр AuthMiddleware.
func NewAuthMiddleware(tokens *auth.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{
		tokens: tokens,
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// Middleware проверяет токен и добавляет данные пользователя в контекст запроса.
func (a *AuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(AuthHeader))
		if raw == "" {
			writeMessage(w, http.StatusUnauthorized, "access denied, no token provided")
			return
		}

		id, err := a.tokens.Parse(raw)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin пропускает только запросы администраторов. Должен идти после Middleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetIdentityFromContext(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "access denied, no token provided")
			return
		}
		if !id.IsAdmin {
			writeMessage(w, http.StatusForbidden, "access denied")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SetAuthHeader записывает токен в заголовок ответа.
func (a *AuthMiddleware) SetAuthHeader(w http.ResponseWriter, token string) {
	w.Header().Set(AuthHeader, token)
	w.Header().Add("Access-Control-Expose-Headers", AuthHeader)
}

// GetIdentityFromContext извлекает данные пользователя из контекста запроса.
func GetIdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}

// WithIdentity кладёт данные пользователя в контекст.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}
