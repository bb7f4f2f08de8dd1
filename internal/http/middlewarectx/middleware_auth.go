// Package middlewarectx содержит HTTP middleware для проверки JWT токена
// сессии и передачи данных пользователя через контекст запроса.
//
// SessionMiddleware проверяет наличие и валидность JWT в заголовке
// Authorization и в случае успеха добавляет в контекст идентификатор
// пользователя, тип его учётной записи и сам токен доступа.
//
// В случае ошибки проверки возвращает HTTP 401 Unauthorized.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	libjwt "github.com/cardshowhub/subscription-engine/internal/lib/jwt"
	"github.com/cardshowhub/subscription-engine/internal/http/response"
	"github.com/cardshowhub/subscription-engine/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserUID — ключ для идентификатора пользователя в контексте
	UserUID Key = "user_uid"
	// AccountType — ключ для типа учётной записи в контексте
	AccountType Key = "account_type"
	// AccessToken — ключ для токена доступа в контексте
	AccessToken Key = "access_token"
)

// SessionMiddleware возвращает HTTP middleware, который проверяет JWT
// в заголовке Authorization.
//
// Если токен валиден, добавляет данные пользователя в контекст запроса,
// иначе возвращает ошибку с HTTP статусом 401 Unauthorized.
func SessionMiddleware(maker libjwt.Maker, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.SessionMiddleware"
			authHeader := r.Header.Get("Authorization")

			log := log.With(
				sl.Op(op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing or invalid authorization header"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := maker.ParseToken(tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired token"))
				return
			}
			ctx := context.WithValue(r.Context(), UserUID, claims.UserUID)
			ctx = context.WithValue(ctx, AccountType, claims.AccountType)
			ctx = context.WithValue(ctx, AccessToken, tokenStr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
