package delivery

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/atadzan/calc-operation-api/internal/constants"
	"github.com/atadzan/calc-operation-api/internal/metrics"
)

type ServerConfig struct {
	Port      int
	Log       zerolog.Logger
	Service   OperationService
	Validator *TokenValidator
}

type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
}

// route is one entry of the fixed route table.
type route struct {
	method  string
	pattern string
	handler http.HandlerFunc
	auth    bool
}

func routeTable(h *OperationHandler) []route {
	return []route{
		{http.MethodGet, constants.RouteHealth, h.Health, false},
		{http.MethodGet, constants.RouteMetrics, metrics.Handler().ServeHTTP, false},
		{http.MethodGet, constants.RouteTypes, h.ListOperationTypes, true},
		{http.MethodGet, constants.RouteRecords, h.ListOperations, true},
		{http.MethodPost, constants.RouteRecords, h.AddOperation, true},
		{http.MethodDelete, constants.RouteRecords, h.DeleteOperations, true},
		{http.MethodGet, constants.RouteDashboard, h.Dashboard, true},
	}
}

func NewServer(cfg ServerConfig) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
	}

	s.setupMiddleware()
	s.setupRoutes(NewOperationHandler(cfg.Service, cfg.Log), cfg.Validator)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes(h *OperationHandler, validator *TokenValidator) {
	authed := s.router.With(requireAuth(validator, s.log))
	for _, rt := range routeTable(h) {
		if rt.auth {
			authed.Method(rt.method, rt.pattern, rt.handler)
			continue
		}
		s.router.Method(rt.method, rt.pattern, rt.handler)
	}

	s.router.NotFound(h.NotFound)
	s.router.MethodNotAllowed(h.NotFound)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware writes one access log line per request and feeds the latency histogram.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start)

		pattern := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			pattern = rctx.RoutePattern()
		}
		metrics.ObserveHTTP(r.Method, pattern, elapsed)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", elapsed).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
