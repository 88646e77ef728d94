// Package api provides the orchestrator's HTTP facade: thin handlers over
// the evaluator, decision engine, state manager, metrics, breakers, and
// service registry.
package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	echo "github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/tmc/langchaingo/llms"

	"github.com/codeready-toolchain/pathwright/pkg/breaker"
	"github.com/codeready-toolchain/pathwright/pkg/config"
	"github.com/codeready-toolchain/pathwright/pkg/database"
	"github.com/codeready-toolchain/pathwright/pkg/decision"
	"github.com/codeready-toolchain/pathwright/pkg/evaluator"
	"github.com/codeready-toolchain/pathwright/pkg/metrics"
	"github.com/codeready-toolchain/pathwright/pkg/registry"
	"github.com/codeready-toolchain/pathwright/pkg/state"
)

// Server is the HTTP API server.
type Server struct {
	echo       *echo.Echo
	httpServer *http.Server

	cfg           config.ServerConfig
	modules       *config.ModuleRegistry
	dbClient      *database.Client
	evaluator     *evaluator.Evaluator
	engine        *decision.Engine
	stateMgr      *state.Manager
	metrics       *metrics.Collector
	breakers      *breaker.Registry
	services      *registry.Registry
	monitor       *registry.Monitor
	reasonLLM     llms.Model // nil disables reason decoration; rule_reason is used instead
	reasonTimeout time.Duration
	validate      *validator.Validate
	logger        *slog.Logger
}

// Deps bundles every dependency the server wires into its handlers.
type Deps struct {
	Config        config.ServerConfig
	Modules       *config.ModuleRegistry
	DBClient      *database.Client
	Evaluator     *evaluator.Evaluator
	Engine        *decision.Engine
	StateMgr      *state.Manager
	Metrics       *metrics.Collector
	Breakers      *breaker.Registry
	Services      *registry.Registry
	Monitor       *registry.Monitor
	ReasonLLM     llms.Model
	ReasonTimeout time.Duration
}

// NewServer creates a new API server with Echo v5, registering middleware
// and routes.
func NewServer(deps Deps) *Server {
	e := echo.New()
	logger := slog.Default()

	reasonTimeout := deps.ReasonTimeout
	if reasonTimeout <= 0 {
		reasonTimeout = 10 * time.Second
	}

	s := &Server{
		echo:          e,
		cfg:           deps.Config,
		modules:       deps.Modules,
		dbClient:      deps.DBClient,
		evaluator:     deps.Evaluator,
		engine:        deps.Engine,
		stateMgr:      deps.StateMgr,
		metrics:       deps.Metrics,
		breakers:      deps.Breakers,
		services:      deps.Services,
		monitor:       deps.Monitor,
		reasonLLM:     deps.ReasonLLM,
		reasonTimeout: reasonTimeout,
		validate:      validator.New(),
		logger:        logger,
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	// Server-wide body size limit: requests here are small JSON payloads,
	// not file uploads, so 1 MB is generous headroom.
	s.echo.Use(middleware.BodyLimit(1024 * 1024))
	s.echo.Use(securityHeaders())
	s.echo.Use(cors(s.cfg.CORSAllowOrigins))
	s.echo.Use(requestLogging(s.logger))
	s.echo.Use(jwtAuth(s.cfg.JWTSecret, s.cfg.JWTSecretLegacy))
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthHandler)
	s.echo.GET("/metrics", s.prometheusHandler)

	s.echo.POST("/api/evaluate", s.evaluateHandler)
	s.echo.GET("/api/next", s.nextHandler)
	s.echo.GET("/api/state/:user_id", s.stateHandler)

	s.echo.GET("/api/orchestrator/decisions", s.decisionsHandler)
	s.echo.GET("/api/orchestrator/metrics", s.orchestratorMetricsHandler)
	s.echo.GET("/api/orchestrator/circuit-breakers", s.circuitBreakersHandler)
	s.echo.GET("/api/orchestrator/services", s.servicesHandler)
}

// Start starts the HTTP server on the given address (blocking).
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.echo,
	}
	return s.httpServer.ListenAndServe()
}

// StartWithListener starts the HTTP server on a pre-created listener, such
// as one bound to a random OS-assigned port.
func (s *Server) StartWithListener(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.echo}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) prometheusHandler(c *echo.Context) error {
	s.metrics.PrometheusHandler().ServeHTTP(c.Response(), c.Request())
	return nil
}

const healthProbeTimeout = 2 * time.Second
