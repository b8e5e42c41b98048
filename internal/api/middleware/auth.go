package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/m04kA/EVC-BookingService/internal/api/handlers"
)

const userIDHeader = "X-User-ID"

type contextKey struct{}

var userIDKey contextKey

// Auth извлекает ID пользователя из заголовка X-User-ID и кладет его в
// контекст запроса. Аутентификацию выполняет API-gateway, сервис доверяет
// заголовку внутри периметра.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(userIDHeader)
		if header == "" {
			handlers.RespondUnauthorized(w, "отсутствует заголовок X-User-ID")
			return
		}

		userID, err := strconv.ParseInt(header, 10, 64)
		if err != nil || userID <= 0 {
			handlers.RespondUnauthorized(w, "некорректный заголовок X-User-ID")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID возвращает ID пользователя из контекста запроса
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}
