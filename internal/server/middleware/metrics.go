package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// RequestRecorder принимает итоги обработанных запросов
type RequestRecorder interface {
	RecordRequest(route, method string, statusCode int, d time.Duration)
}

// unmatchedRoute — метка для запросов без шаблона маршрута chi
const unmatchedRoute = "unmatched"

// Metrics учитывает запросы по шаблону маршрута chi, чтобы метки не
// зависели от фактических путей.
func Metrics(rec RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := wrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			route := unmatchedRoute
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if p := rctx.RoutePattern(); p != "" {
					route = p
				}
			}
			rec.RecordRequest(route, r.Method, wrapped.statusCode, time.Since(start))
		})
	}
}
