package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/koxixo/orders-backend/pkg/metrics"
)

// Metrics records request duration and counts labelled by route pattern.
func Metrics(httpMetrics *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if httpMetrics == nil {
				next.ServeHTTP(w, r)
				return
			}

			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			next.ServeHTTP(rec, r)

			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			route := r.URL.Path
			if ctx := chi.RouteContext(r.Context()); ctx != nil {
				if pattern := ctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			httpMetrics.Observe(r.Method, route, rec.status, time.Since(start))
		})
	}
}
