package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-SpaBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-SpaBookingService/internal/domain"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	msgMissingUserID = "отсутствует или некорректен заголовок X-User-ID"
	msgInvalidRole   = "некорректная роль пользователя"
)

type actorKey struct{}

// Auth извлекает пользователя из заголовков, выставленных API gateway
// Без X-User-Role пользователь считается клиентом
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := strconv.ParseInt(r.Header.Get(HeaderUserID), 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, msgMissingUserID)
			return
		}

		role := domain.RoleClient
		if raw := r.Header.Get(HeaderUserRole); raw != "" {
			role = domain.ActorRole(raw)
			if !role.IsValid() {
				handlers.RespondUnauthorized(w, msgInvalidRole)
				return
			}
		}

		ctx := WithActor(r.Context(), domain.Actor{ID: userID, Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithActor кладёт актора в контекст
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// GetActor достаёт актора из контекста
func GetActor(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}

// GetUserID достаёт ID пользователя из контекста
func GetUserID(ctx context.Context) (int64, bool) {
	actor, ok := GetActor(ctx)
	return actor.ID, ok
}
