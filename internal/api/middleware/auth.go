package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CourtBookingService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtBookingService/internal/domain"
	"github.com/m04kA/SMC-CourtBookingService/internal/integrations/userservice"
)

const (
	// HeaderUserID заголовок с ID пользователя, проставляется API Gateway
	HeaderUserID = "X-User-ID"

	msgMissingUserID      = "отсутствует заголовок X-User-ID"
	msgInvalidUserID      = "некорректный формат ID пользователя"
	msgUserNotFound       = "пользователь не найден"
	msgUserServiceFailure = "не удалось проверить пользователя"
)

type identityCtxKey struct{}

// UserProvider интерфейс для получения данных пользователя из UserService
type UserProvider interface {
	GetUser(ctx context.Context, userID int64) (*userservice.User, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Auth аутентифицирует запрос по заголовку X-User-ID.
// Роль пользователя всегда запрашивается из UserService:
// роли из заголовков не принимаются, чтобы клиент не мог назначить ее себе сам.
func Auth(users UserProvider, logger Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawID := r.Header.Get(HeaderUserID)
			if rawID == "" {
				handlers.RespondUnauthorized(w, msgMissingUserID)
				return
			}

			userID, err := strconv.ParseInt(rawID, 10, 64)
			if err != nil || userID <= 0 {
				handlers.RespondUnauthorized(w, msgInvalidUserID)
				return
			}

			user, err := users.GetUser(r.Context(), userID)
			if err != nil {
				if errors.Is(err, userservice.ErrUserNotFound) {
					logger.Warn("Auth: user id=%d not found", userID)
					handlers.RespondUnauthorized(w, msgUserNotFound)
					return
				}
				logger.Error("Auth: failed to get user id=%d: %v", userID, err)
				handlers.RespondJSON(w, http.StatusServiceUnavailable, handlers.ErrorResponse{Error: msgUserServiceFailure})
				return
			}

			role := domain.Role(user.Role)
			if !role.IsValid() {
				logger.Warn("Auth: user id=%d has unknown role %q, defaulting to user", userID, user.Role)
				role = domain.RoleUser
			}

			identity := domain.Identity{
				UserID: userID,
				Role:   role,
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// WithIdentity кладет личность в контекст
func WithIdentity(ctx context.Context, identity domain.Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, identity)
}

// IdentityFrom извлекает аутентифицированную личность из контекста запроса
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityCtxKey{}).(domain.Identity)
	return identity, ok
}
