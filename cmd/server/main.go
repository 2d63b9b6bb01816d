package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segyhp/feedesk/internal/bootstrap"
	"github.com/segyhp/feedesk/internal/cache"
	"github.com/segyhp/feedesk/internal/config"
	"github.com/segyhp/feedesk/internal/dashboard"
	"github.com/segyhp/feedesk/internal/handler"
	"github.com/segyhp/feedesk/internal/log"
	"github.com/segyhp/feedesk/internal/service"
	"github.com/segyhp/feedesk/internal/validation"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := bootstrap.NewLogger(cfg, log.ComponentApp)
	log.SetDefault(logger)

	// Initialize data source
	store, closeStore, err := bootstrap.OpenStore(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize data source", log.FieldError, err)
		os.Exit(1)
	}
	defer closeStore()

	// Initialize Redis
	redisClient := bootstrap.NewRedis(cfg)
	defer redisClient.Close()
	digests := cache.NewDigestStore(redisClient, cfg.GetDigestTTL())

	// Initialize service
	loader := dashboard.NewLoader(store, dashboard.Options{
		PaymentsMode:     cfg.Dashboard.PaymentsMode,
		Location:         cfg.Location(),
		FlagOverpayments: cfg.Dashboard.FlagOverpayments,
		ViewerTTL:        cfg.GetViewerTTL(),
	}, logger)
	panelService := service.NewPanelService(store, loader, digests, validation.New(), logger)

	panelHandler := handler.NewPanelHandler(panelService, cfg, logger)
	healthHandler := handler.NewHealthHandler(cfg.GetHealthTimeout(), map[string]handler.Pinger{
		cfg.Source: store,
		"redis":    digests,
	})

	router := handler.NewRouter(panelHandler, healthHandler, logger)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting",
			"addr", server.Addr,
			"source", cfg.Source,
			"env", cfg.Server.Env,
			"payments_mode", cfg.Dashboard.PaymentsMode,
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed to start", log.FieldError, err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", log.FieldError, err)
		return
	}

	logger.Info("server exited")
}
