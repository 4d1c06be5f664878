// internal/server/server.go
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sales-assistant/internal/chat"
	"sales-assistant/internal/common/config"
	"sales-assistant/internal/common/database"
	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/models"
	"sales-assistant/internal/store"
)

// Server exposes the chat pipeline over HTTP.
type Server struct {
	cfg    *config.Config
	chat   *chat.Service
	sales  *store.SalesStore
	pg     *database.PostgresClient
	redis  *database.RedisClient
	clock  models.Clock
	logger logger.Logger

	httpServer *http.Server
}

func New(cfg *config.Config, chatSvc *chat.Service, sales *store.SalesStore,
	pg *database.PostgresClient, rdb *database.RedisClient,
	clock models.Clock, log logger.Logger) *Server {

	if clock == nil {
		clock = time.Now
	}
	s := &Server{
		cfg:    cfg,
		chat:   chatSvc,
		sales:  sales,
		pg:     pg,
		redis:  rdb,
		clock:  clock,
		logger: log,
	}
	s.httpServer = &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      s.Router(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}
	return s
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.recoverer)
	r.Use(middleware.Timeout(config.GetDuration(s.cfg.Server.RequestTimeout)))

	origins := s.cfg.Server.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Post("/chat", s.handleChat)
	r.Get("/suggestions", s.handleSuggestions)
	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{
		"address": s.cfg.Server.Address,
	})
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// recoverer converts panics into a JSON error response instead of a
// dropped connection.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic while handling request", map[string]interface{}{
					"path":  r.URL.Path,
					"panic": rec,
				})
				writeError(w, http.StatusInternalServerError,
					"The assistant hit an unexpected error. Please try again.")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
