package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tmc/langchaingo/llms/openai"

	"kitchensync/internal/api"
	"kitchensync/internal/catalog"
	"kitchensync/internal/config"
	"kitchensync/internal/database"
	"kitchensync/internal/logger"
	"kitchensync/internal/monitoring"
	"kitchensync/internal/store"
	"kitchensync/internal/sync"
	"kitchensync/internal/textanalysis"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.Metrics.Port = *metricsPort
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Initialize database
	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatal("failed to open database", "error", err)
	}
	defer database.Close(db)
	if err := database.Migrate(db); err != nil {
		log.Fatal("failed to migrate database", "error", err)
	}

	st := store.New(db, log)

	// The text-analysis collaborator: deterministic keyword extraction by
	// default, LLM-backed when configured.
	extractor := buildExtractor(cfg, log)

	provider := catalog.NewHTTPClient(
		cfg.Provider.BaseURL,
		time.Duration(cfg.Provider.TimeoutSeconds)*time.Second,
		log,
	)

	planner := sync.NewPlanner(extractor, log)
	orch := sync.NewOrchestrator(st, provider, planner, log)

	monitor := monitoring.NewMonitor()
	metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)

	server := api.NewServer(cfg, st, orch, monitor, metrics, log)

	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics.Port, cfg.Metrics.Path, log)
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: server.Router,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutting down")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("API server shutdown error", "error", err)
		}
	}()

	log.Info("starting API server", "port", cfg.Server.Port)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal("API server error", "error", err)
	}
}

func buildExtractor(cfg *config.Config, log *logger.Logger) textanalysis.Extractor {
	keyword := textanalysis.NewKeywordExtractor()
	if cfg.Extractor.Mode != "llm" {
		return keyword
	}

	llm, err := openai.New(
		openai.WithModel(cfg.Extractor.Model),
		openai.WithToken(cfg.Extractor.OpenAIKey),
	)
	if err != nil {
		log.Warn("failed to initialize LLM extractor, using keyword extraction", "error", err)
		return keyword
	}
	return textanalysis.NewLLMExtractor(llm, keyword, log)
}

func startMetricsServer(port int, path string, log *logger.Logger) {
	metricsRouter := gin.Default()
	if path == "" {
		path = "/metrics"
	}
	metricsRouter.GET(path, gin.WrapH(promhttp.Handler()))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	log.Info("starting metrics server", "port", port)
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Error("metrics server error", "error", err)
	}
}
