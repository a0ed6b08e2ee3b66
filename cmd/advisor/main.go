package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/Advisor/internal/analyze"
	"github.com/MikeSquared-Agency/Advisor/internal/api"
	"github.com/MikeSquared-Agency/Advisor/internal/config"
	"github.com/MikeSquared-Agency/Advisor/internal/hermes"
	"github.com/MikeSquared-Agency/Advisor/internal/scoring"
	"github.com/MikeSquared-Agency/Advisor/internal/session"
	"github.com/MikeSquared-Agency/Advisor/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stderr, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Submission journal (optional)
	var journal store.Store
	if cfg.Database.URL != "" {
		db, err := store.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		journal = db
		logger.Info("connected to database")
	} else {
		logger.Info("no database configured, submission journal disabled")
	}

	// Hermes (optional)
	var hermesClient hermes.Client
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	// Scorer
	scorer := analyze.NewHTTPClient(cfg.Scorer.URL, cfg.Scorer.Token, cfg.ScorerTimeout())
	logger.Info("scorer configured", "url", cfg.Scorer.URL, "timeout", cfg.ScorerTimeout())

	// Sessions
	manager := session.NewManager(
		session.Deps{Scorer: scorer, Hermes: hermesClient, Store: journal, Logger: logger},
		session.Options{
			Weights:       weightsFromConfig(cfg.Weights),
			IdleTTL:       cfg.SessionIdleTTL(),
			SweepInterval: cfg.SessionSweepInterval(),
			MaxSessions:   cfg.Sessions.MaxSessions,
		},
	)
	manager.Start(ctx)
	defer manager.Stop()

	// API server
	router := api.NewRouter(manager, scorer, journal, api.RouterConfig{
		AdminToken:        cfg.Server.AdminToken,
		RequestsPerMinute: cfg.Server.RequestsPerMinute,
	}, logger)
	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           api.NewMetricsRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")

	// In-flight analyses finish before the context goes away.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ScorerTimeout()+5*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)
	cancel()

	logger.Info("shutdown complete")
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// weightsFromConfig clamps the configured defaults the same way a slider would.
func weightsFromConfig(d config.WeightDefaults) scoring.WeightVector {
	w := scoring.DefaultWeights()
	_ = w.Set(scoring.CriterionScenario, d.Scenario)
	_ = w.Set(scoring.CriterionTechReq, d.TechReq)
	_ = w.Set(scoring.CriterionTechStack, d.TechStack)
	_ = w.Set(scoring.CriterionCitySize, d.CitySize)
	_ = w.Set(scoring.CriterionBudget, d.Budget)
	return w
}
