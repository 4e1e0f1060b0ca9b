package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"menuperf/internal/advisory"
	"menuperf/internal/api"
	"menuperf/internal/catalog"
	"menuperf/internal/config"
	"menuperf/internal/database"
	"menuperf/internal/logger"
	"menuperf/internal/menuengine"
	"menuperf/internal/models/providers"
	"menuperf/internal/monitoring"
	"menuperf/internal/pos"
	"menuperf/internal/reconcile"

	"github.com/gin-gonic/gin"
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
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.Metrics.Port = *metricsPort
	}

	zlog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()
	if cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.Database.Dialect, cfg.Database.URL)
	if err != nil {
		zlog.Fatal("Failed to initialize database", "error", err)
	}
	defer db.Close()

	monitor := monitoring.NewMonitor()
	deps := menuengine.Deps{
		Catalog: catalog.New(db),
		Sales:   reconcile.New(db, zlog),
		Cache:   advisory.NewStore(db),
		Monitor: monitor,
		Logger:  zlog,
	}

	advisor, err := initializeAdvisor(cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to initialize LLM", "error", err)
	}
	if advisor != nil {
		deps.Advisor = advisor
	}

	hub := api.NewHub(zlog)
	engine := menuengine.NewEngine(deps, cfg.Advisory.Timeout, cfg.Advisory.MaxStale)
	adapters := pos.DefaultRegistry(&http.Client{Timeout: cfg.POS.Timeout}, cfg.POS.BaseURLs)
	syncer := menuengine.NewSyncService(deps, adapters, hub, cfg.POS.Window)

	srv := api.NewServer(engine, syncer, hub, monitor, zlog, api.Options{
		JWTSecret:   cfg.Auth.JWTSecret,
		CORSOrigins: cfg.Server.CORSOrigins,
	})
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Router,
	}

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metricsServer = startMetricsServer(cfg, monitor, zlog)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		zlog.Info("Shutting down servers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		hub.Close()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zlog.Error("API server shutdown error", "error", err)
		}
		if metricsServer != nil {
			metricsServer.Shutdown(shutdownCtx)
		}
	}()

	zlog.Info("Starting API server", "port", cfg.Server.Port, "pos_providers", adapters.Names(), "llm_provider", cfg.LLM.Provider)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		zlog.Fatal("API server error", "error", err)
	}

	// let in-flight advice generation finish its write-back
	engine.Wait()
}

func initializeAdvisor(cfg *config.Config, zlog *logger.Logger) (*advisory.Generator, error) {
	provider, err := providers.NewModelRegistry().Get(cfg.LLM)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		zlog.Warn("No LLM provider configured, menu advice will use fallback text")
		return nil, nil
	}
	zlog.Info("LLM provider ready", "provider", provider.Name(), "model", cfg.LLM.Model)
	return advisory.NewGenerator(provider, zlog), nil
}

func startMetricsServer(cfg *config.Config, monitor *monitoring.Monitor, zlog *logger.Logger) *http.Server {
	path := cfg.Metrics.Path
	if path == "" {
		path = "/metrics"
	}
	metricsRouter := gin.New()
	metricsRouter.GET(path, gin.WrapH(monitor.Handler()))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: metricsRouter,
	}
	go func() {
		zlog.Info("Starting metrics server", "port", cfg.Metrics.Port)
		if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			zlog.Error("Metrics server error", "error", err)
		}
	}()
	return metricsServer
}
