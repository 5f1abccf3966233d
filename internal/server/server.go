package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/quantrisk/internal/config"
	"github.com/aristath/quantrisk/internal/modules/institutional"
	"github.com/aristath/quantrisk/internal/modules/risk"
	"github.com/aristath/quantrisk/internal/modules/sizing"
)

// Config holds server configuration
type Config struct {
	Port    int
	Log     zerolog.Logger
	Config  *config.Config
	DevMode bool
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
	cfg    *config.Config

	riskHandler          *risk.Handler
	sizingHandler        *sizing.Handler
	institutionalHandler *institutional.Handler
}

// New creates a new HTTP server wired to the risk-analytics services
func New(cfg Config) *Server {
	calc := risk.NewCalculator(cfg.Log)
	stress := risk.NewStressTester(cfg.Log)
	sizer := sizing.NewSizer(cfg.Log)
	aggregator := institutional.NewAggregator(calc, cfg.Log)

	riskFreeRate := risk.DefaultRiskFreeRate
	simulations := risk.DefaultSimulations
	if cfg.Config != nil {
		riskFreeRate = cfg.Config.RiskFreeRate
		simulations = cfg.Config.MonteCarloSimulations
	}

	s := &Server{
		router:               chi.NewRouter(),
		log:                  cfg.Log.With().Str("component", "server").Logger(),
		cfg:                  cfg.Config,
		riskHandler:          risk.NewHandler(calc, stress, riskFreeRate, simulations, cfg.Log),
		sizingHandler:        sizing.NewHandler(sizer, cfg.Log),
		institutionalHandler: institutional.NewHandler(aggregator, cfg.Log),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// Timeout
	s.router.Use(middleware.Timeout(60 * time.Second))

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	// Health check
	s.router.Get("/health", s.handleHealth)

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Route("/risk", func(r chi.Router) {
			r.Post("/metrics", s.riskHandler.HandleMetrics)
			r.Post("/var/montecarlo", s.riskHandler.HandleMonteCarloVaR)
			r.Post("/correlation", s.riskHandler.HandleCorrelationMatrix)
			r.Post("/contributions", s.riskHandler.HandleRiskContributions)
			r.Get("/stress/scenarios", s.riskHandler.HandleScenarios)
			r.Post("/stress", s.riskHandler.HandleStressTest)
			r.Post("/stress/holdings", s.riskHandler.HandleStressTestByHolding)
		})

		r.Route("/sizing", func(r chi.Router) {
			r.Post("/position", s.sizingHandler.HandlePositionMetrics)
			r.Post("/stop-loss", s.sizingHandler.HandleStopLoss)
			r.Post("/monitor", s.sizingHandler.HandleMonitor)
		})

		r.Route("/institutional", func(r chi.Router) {
			r.Post("/metrics", s.institutionalHandler.HandleMetrics)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
