package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/lrstanley/go-ytdlp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lyricsync/lyricsync/internal/cleanup"
	"github.com/lyricsync/lyricsync/internal/config"
	"github.com/lyricsync/lyricsync/internal/handlers"
	"github.com/lyricsync/lyricsync/internal/queue"
	"github.com/lyricsync/lyricsync/internal/storage"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Console output plus an in-memory tail served at /logs.
	logBuffer := &LogBuffer{lines: make([]string, 0, 1000)}
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.MultiLevelWriter(
		zerolog.ConsoleWriter{Out: os.Stderr},
		logBuffer,
	))

	if err := cleanup.EnsureTempDirExists(cfg.Storage.TempDir); err != nil {
		log.Fatal().Err(err).Msg("failed to create temp directory")
	}

	audioStore, err := storage.NewAudioStore(cfg.Storage.AudioDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create audio directory")
	}

	store, err := storage.NewStore(cfg.Storage.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer store.Close()

	// Redis is optional: without it there is no document cache and no
	// leaderboard, but everything else works.
	var cache *storage.Cache
	if cfg.Redis.Addr != "" {
		cache, err = storage.NewCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Msg("redis not available, continuing without cache")
			cache = nil
		} else {
			defer cache.Close()
			log.Info().Str("addr", cfg.Redis.Addr).Msg("redis cache enabled")
		}
	}

	// Fetch the yt-dlp binary for the YouTube import path.
	ytdlp.MustInstall(context.Background(), nil)

	workerPool := queue.NewWorkerPool(cfg.Workers.Count, store, audioStore, cache)
	workerPool.Start()

	cleanupScheduler := cleanup.NewScheduler(
		cfg.Storage.TempDir,
		cfg.Cleanup.IntervalMinutes,
		cfg.Cleanup.MaxAgeHours,
	)
	cleanupScheduler.Start()
	defer cleanupScheduler.Stop()

	app := fiber.New(fiber.Config{
		BodyLimit: cfg.Limits.MaxFileSizeMB * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	uploadHandler := handlers.NewUploadHandler(workerPool, store, cfg.Storage.TempDir, cfg.Limits.MaxFileSizeMB)
	youtubeHandler := handlers.NewYouTubeHandler(workerPool, store, cfg.Storage.TempDir)
	songsHandler := handlers.NewSongsHandler(store)
	lrcHandler := handlers.NewLRCHandler(store, cache)
	leaderboardHandler := handlers.NewLeaderboardHandler(store, cache)
	syncHandler := handlers.NewSyncHandler(store, cache)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"version": version,
		})
	})

	api := app.Group("/api/v1")
	api.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "ok",
			"version":   version,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   "LyricSync API",
			"endpoints": fiber.Map{
				"songs":       "/api/v1/songs",
				"lrc":         "/api/v1/lrc/{song_id}",
				"upload":      "/api/v1/upload",
				"youtube":     "/api/v1/youtube",
				"leaderboard": "/api/v1/leaderboard",
				"sync":        "/ws/sync/{song_id}",
			},
		})
	})

	api.Get("/songs", songsHandler.List)
	api.Get("/songs/:id", songsHandler.Get)
	api.Post("/upload", uploadHandler.Handle)
	api.Post("/youtube", youtubeHandler.Handle)
	api.Get("/lrc/:songId", lrcHandler.Get)
	api.Put("/lrc/:songId", lrcHandler.Put)
	api.Get("/leaderboard", leaderboardHandler.Top)
	api.Get("/profiles/:id", leaderboardHandler.Profile)

	app.Get("/ws/sync/:id", websocket.New(syncHandler.Handle))

	app.Get("/logs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"logs": logBuffer.GetLogs(),
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("server starting")

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info().Msg("shutting down gracefully")
		if err := app.Shutdown(); err != nil {
			log.Error().Err(err).Msg("shutdown error")
		}
	}()

	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// LogBuffer captures logs in memory
type LogBuffer struct {
	lines []string
	mu    sync.Mutex
}

func (lb *LogBuffer) Write(p []byte) (n int, err error) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	lb.lines = append(lb.lines, string(p))

	// Keep last 1000 lines
	if len(lb.lines) > 1000 {
		lb.lines = lb.lines[len(lb.lines)-1000:]
	}

	return len(p), nil
}

func (lb *LogBuffer) GetLogs() []string {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	logs := make([]string, len(lb.lines))
	copy(logs, lb.lines)
	return logs
}
