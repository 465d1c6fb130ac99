package http

import (
	"net/http"

	_ "github.com/DRSN-tech/catalog-api/docs" // Импорт сгенерированных файлов
	"github.com/DRSN-tech/catalog-api/internal/cfg"
	"github.com/DRSN-tech/catalog-api/internal/usecase"
	"github.com/DRSN-tech/catalog-api/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// Metrics — метрики HTTP-слоя и обработчик /metrics.
type Metrics interface {
	HTTPMetrics
	Handler() http.Handler
}

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(catUC usecase.CatalogUC, db Pinger, m Metrics, httpCfg *cfg.HTTPConfig) {
	r.router.Use(
		requestID,
		middleware.RealIP,
		accessLog(r.logger, m),
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: httpCfg.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"*"},
			ExposedHeaders: []string{middleware.RequestIDHeader},
			MaxAge:         300,
		}),
	)

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	r.router.Method(http.MethodGet, "/metrics", m.Handler())

	healthHandler := NewHealthHandler(db, r.logger)
	r.router.Get("/healthz", healthHandler.healthz)

	catHandler := NewCatalogHandler(catUC, r.logger)
	registerCatalogRoutes(r.router, catHandler)
}

func registerCatalogRoutes(router chi.Router, catHandler *CatalogHandler) {
	router.Post("/addCategory", catHandler.addCategory)
	router.Post("/addProduct", catHandler.addProduct)
}
