// Command pathwright runs the adaptive learning-path orchestrator: HTTP API,
// decision engine, evaluator, and the background service health monitor.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/codeready-toolchain/pathwright/pkg/api"
	"github.com/codeready-toolchain/pathwright/pkg/breaker"
	"github.com/codeready-toolchain/pathwright/pkg/config"
	"github.com/codeready-toolchain/pathwright/pkg/database"
	"github.com/codeready-toolchain/pathwright/pkg/decision"
	"github.com/codeready-toolchain/pathwright/pkg/evaluator"
	"github.com/codeready-toolchain/pathwright/pkg/metrics"
	"github.com/codeready-toolchain/pathwright/pkg/registry"
	"github.com/codeready-toolchain/pathwright/pkg/state"
	"github.com/codeready-toolchain/pathwright/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	log.Printf("starting %s", version.Full())

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("warning: could not load %s: %v", envPath, err)
		log.Printf("continuing with existing environment variables")
	} else {
		log.Printf("loaded environment from %s", envPath)
	}

	ctx := context.Background()

	engineCfg, err := config.LoadEngineConfig()
	if err != nil {
		log.Fatalf("failed to load engine config: %v", err)
	}
	serverCfg := config.LoadServerConfig()

	dbCfg, err := database.LoadConfigFromEnv()
	if err != nil {
		log.Fatalf("failed to load database config: %v", err)
	}
	dbClient, err := database.NewClient(ctx, dbCfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			log.Printf("error closing database client: %v", err)
		}
	}()
	log.Println("connected to PostgreSQL database, migrations applied")

	modules := config.NewModuleRegistry()
	goals := config.NewGoalWeightRegistry()
	engine := decision.New(modules, goals, engineCfg)
	stateMgr := state.New(dbClient.SQLX())

	mcollector := metrics.NewCollector(engineCfg.MetricsBufferSize)

	primaryModel, err := evaluator.NewGroqModel(os.Getenv("GROQ_API_KEY"))
	if err != nil {
		log.Fatalf("failed to build Groq scoring model: %v", err)
	}
	fallbackModel, err := evaluator.NewOpenRouterModel(os.Getenv("OPENROUTER_API_KEY"))
	if err != nil {
		log.Fatalf("failed to build OpenRouter scoring model: %v", err)
	}
	scorer := evaluator.NewScorer(primaryModel, fallbackModel, evaluator.ScoringTimeout, mcollector)
	aggregator := evaluator.NewAggregator(dbClient.SQLX())
	eval := evaluator.New(dbClient.SQLX(), scorer, aggregator)

	breakers := breaker.NewRegistry(
		engineCfg.CBFailureThreshold,
		time.Duration(engineCfg.CBRecoveryTimeoutS)*time.Second,
		engineCfg.CBHalfOpenMaxCalls,
	)

	var services []registry.ModuleService
	for _, m := range modules.GetAll() {
		if m.BaseURL != "" {
			services = append(services, registry.ModuleService{Name: m.Name, URL: m.BaseURL, Port: m.Port})
		}
	}
	serviceReg := registry.NewRegistry(services)
	monitor := registry.NewMonitor(
		serviceReg,
		breakers,
		mcollector,
		time.Duration(engineCfg.HealthCheckIntervalS)*time.Second,
		time.Duration(engineCfg.HealthCheckTimeoutS*float64(time.Second)),
	)
	monitorCtx, cancelMonitor := context.WithCancel(ctx)
	monitor.Start(monitorCtx)
	defer cancelMonitor()

	// Reason decoration reuses the primary scoring model when available; a
	// dedicated model isn't worth a third provider slot for a cosmetic
	// rewrite step that always has a safe fallback.
	var reasonLLM = primaryModel

	srv := api.NewServer(api.Deps{
		Config:        serverCfg,
		Modules:       modules,
		DBClient:      dbClient,
		Evaluator:     eval,
		Engine:        engine,
		StateMgr:      stateMgr,
		Metrics:       mcollector,
		Breakers:      breakers,
		Services:      serviceReg,
		Monitor:       monitor,
		ReasonLLM:     reasonLLM,
		ReasonTimeout: time.Duration(engineCfg.LLMTimeoutSeconds * float64(time.Second)),
	})

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", serverCfg.HTTPPort)
		if err := srv.Start(":" + serverCfg.HTTPPort); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("HTTP server failed: %v", err)
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig.String())
	}

	monitor.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("error during HTTP server shutdown: %v", err)
	}
}
