package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// HeaderRequestID заголовок со сквозным идентификатором запроса
const HeaderRequestID = "X-Request-ID"

type requestIDCtxKey struct{}

// RequestID проставляет сквозной идентификатор запроса.
// Если клиент прислал свой X-Request-ID, он сохраняется, иначе генерируется новый.
func RequestID() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(HeaderRequestID)
			if requestID == "" {
				requestID = uuid.NewString()
			}

			w.Header().Set(HeaderRequestID, requestID)

			ctx := context.WithValue(r.Context(), requestIDCtxKey{}, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDFrom извлекает идентификатор запроса из контекста
func RequestIDFrom(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDCtxKey{}).(string)
	return requestID
}
