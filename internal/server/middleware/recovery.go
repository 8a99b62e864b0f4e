package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// RecoveryMiddleware создает middleware для восстановления после паники
// Перехватывает panic, логирует стек вызовов и возвращает 500 Internal Server Error
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return RecoveryWithCustomError(logger, "internal server error")
}

// RecoveryWithCustomError создает middleware с кастомным сообщением об ошибке.
// http.ErrAbortHandler пробрасывается дальше: так net/http обрывает ответ.
// Если ответ уже начат, тело ошибки не пишется.
func RecoveryWithCustomError(logger *slog.Logger, errorMessage string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapped := wrapResponseWriter(w)

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				logger.Error("Panic recovered",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", requestIDOf(r),
					"response_started", wrapped.wroteHeader,
					"stack", string(debug.Stack()),
				)

				if wrapped.wroteHeader {
					return
				}
				// Детали паники клиенту не раскрываем
				writeError(wrapped, errorMessage, http.StatusInternalServerError)
			}()

			next.ServeHTTP(wrapped, r)
		})
	}
}

// requestIDOf берет id из контекста, а для внешних middleware из заголовка,
// который RequestID выставляет на запросе
func requestIDOf(r *http.Request) string {
	if id := GetRequestID(r.Context()); id != "" {
		return id
	}
	return r.Header.Get(RequestIDHeader)
}
