package handlers

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/iudanet/medportal/internal/server/guard"
	"github.com/iudanet/medportal/internal/server/middleware"
)

// ProxyMetrics учитывает ошибки обращения к бэкенду
type ProxyMetrics interface {
	RecordProxyError()
}

// NewAPIProxy проксирует /api/* на бэкенд портала.
// Браузер не видит access token: если заголовка Authorization нет, он
// подставляется из http-only cookie. Cookie портала бэкенду не передаются.
func NewAPIProxy(target *url.URL, metrics ProxyMetrics, logger *slog.Logger) http.Handler {
	errs := responder{logger: logger}

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()

			if pr.Out.Header.Get("Authorization") == "" {
				if c, err := pr.In.Cookie(guard.AccessTokenCookie); err == nil && c.Value != "" {
					pr.Out.Header.Set("Authorization", "Bearer "+c.Value)
				}
			}
			pr.Out.Header.Del("Cookie")
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			metrics.RecordProxyError()
			logger.ErrorContext(r.Context(), "api proxy failed",
				slog.String("path", r.URL.Path),
				slog.String("request_id", middleware.GetRequestID(r.Context())),
				slog.Any("error", err))
			errs.sendError(w, "portal backend unavailable", http.StatusBadGateway)
		},
	}
}
