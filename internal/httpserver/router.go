package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"quran-mood-gateway/internal/handlers"
	"quran-mood-gateway/internal/metrics"
	"quran-mood-gateway/internal/middleware"
)

type RouterConfig struct {
	AllowedOrigins []string      // CORS; empty allows any origin
	RequestTimeout time.Duration // default: 30s
	MaxBodyBytes   int64         // default: 16 KB
}

func SetupRouter(r *chi.Mux, baseLogger *zap.Logger, cfg RouterConfig, versesHandler *handlers.VersesHandler, graphqlHandler http.Handler) {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 16 * 1024
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Use(metrics.Middleware)

	// base middleware
	r.Use(chimw.RequestID)
	r.Use(middleware.ClientIP)

	r.Use(middleware.LoggingContext(baseLogger))
	r.Use(middleware.Recoverer())
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization", "X-Request-Id"},
		ExposedHeaders: []string{"Retry-After", "X-Request-Id"},
		MaxAge:         300,
	}))

	// health check and metrics stay outside the request timeout
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
		r.Use(middleware.MaxBodySize(cfg.MaxBodyBytes))

		r.Post("/v1/verses", versesHandler.VersesByMood)
		r.Method(http.MethodPost, "/api/graphql", graphqlHandler)
		r.Method(http.MethodPost, "/graphql", graphqlHandler)
	})
}
