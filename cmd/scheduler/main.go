package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/segyhp/feedesk/internal/bootstrap"
	"github.com/segyhp/feedesk/internal/cache"
	"github.com/segyhp/feedesk/internal/config"
	"github.com/segyhp/feedesk/internal/dashboard"
	"github.com/segyhp/feedesk/internal/log"
	"github.com/segyhp/feedesk/internal/scheduler"
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

	logger := bootstrap.NewLogger(cfg, log.ComponentScheduler)
	log.SetDefault(logger)
	logger.Info("starting fee desk scheduler")

	store, closeStore, err := bootstrap.OpenStore(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize data source", log.FieldError, err)
		os.Exit(1)
	}
	defer closeStore()

	redisClient := bootstrap.NewRedis(cfg)
	defer redisClient.Close()

	loader := dashboard.NewLoader(store, dashboard.Options{Location: cfg.Location()}, logger)
	panelService := service.NewPanelService(
		store, loader, cache.NewDigestStore(redisClient, cfg.GetDigestTTL()), validation.New(), logger)

	location := cfg.SchedulerLocation()

	// Initialize cron scheduler
	cronLogger := scheduler.NewCronLogger(logger)
	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(location),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	// Schedule tasks
	jobs := scheduler.NewJobs(panelService, cfg.GetLoadTimeout(), logger)
	if err := jobs.Register(c, cfg.Scheduler.DigestSpec, cfg.Scheduler.ReminderSpec); err != nil {
		logger.Error("failed to schedule jobs", log.FieldError, err)
		os.Exit(1)
	}

	// Start the scheduler
	c.Start()
	logger.Info("scheduler started",
		"digest_spec", cfg.Scheduler.DigestSpec,
		"reminder_spec", cfg.Scheduler.ReminderSpec,
		"timezone", location.String(),
	)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	logger.Info("scheduler stopped")
}
