package http

import (
	"context"
	"net/http"
	"time"

	"github.com/DRSN-tech/catalog-api/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const unmatchedRoute = "unmatched"

// HTTPMetrics принимает результат обработки запроса.
type HTTPMetrics interface {
	ObserveHTTPRequest(route, method string, status int, elapsed time.Duration)
}

// requestID берёт X-Request-Id клиента или генерирует UUID и кладёт его в контекст chi
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set(middleware.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// accessLog пишет строку лога и метрику на каждый запрос.
func accessLog(log logger.Logger, m HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				elapsed := time.Since(start)
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}

				route := unmatchedRoute
				if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
					route = rctx.RoutePattern()
				}

				m.ObserveHTTPRequest(route, r.Method, status, elapsed)
				log.Infof("%s %s %d %s request_id=%s", r.Method, r.URL.Path, status, elapsed, middleware.GetReqID(r.Context()))
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
