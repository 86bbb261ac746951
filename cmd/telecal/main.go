package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/telecal/telecal/internal/api"
	"github.com/telecal/telecal/internal/calendar"
	"github.com/telecal/telecal/internal/config"
	"github.com/telecal/telecal/internal/database"
	"github.com/telecal/telecal/internal/episodate"
	"github.com/telecal/telecal/internal/logger"
	"github.com/telecal/telecal/internal/scheduler"
	"github.com/telecal/telecal/internal/showcache"
	"github.com/telecal/telecal/internal/shows"
	"github.com/telecal/telecal/internal/showsync"
)

func main() {
	// .env is optional; real configuration comes from config.Load.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Path:       cfg.Logging.Path,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	defer log.Close()

	log.Info().
		Str("version", config.Version).
		Str("address", cfg.Server.Address()).
		Msg("Starting telecal")

	if cfg.Auth.Token == "" {
		log.Warn().Msg("No auth token configured; all guarded routes will reject requests")
	}

	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	client := episodate.NewClient(cfg.Episodate, log.Logger)

	cache, err := showcache.New(cfg.Cache.Path, client, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open show cache")
	}
	defer cache.Close()

	showService := shows.NewService(db.Conn(), cache, log.Logger)
	calendarService := calendar.NewService(showService, log.Logger)
	syncService := showsync.NewService(showService, cache, client, cfg.Sync.PageSize, log.Logger)

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scheduler")
	}
	if err := sched.RegisterTask(scheduler.TaskConfig{
		ID:         showsync.TaskID,
		Name:       "Episode Refresh",
		Cron:       cfg.Sync.Cron,
		Func:       syncService.Run,
		RunOnStart: cfg.Sync.RunOnStart,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to register refresh task")
	}
	sched.Start()

	server := api.NewServer(cfg, showService, calendarService, syncService, sched, log.Logger)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")

	if err := sched.Stop(); err != nil {
		log.Error().Err(err).Msg("Scheduler shutdown failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
}
