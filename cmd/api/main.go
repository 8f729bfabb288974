package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/teamhub-go-api/internal/config"
	"github.com/noah-isme/teamhub-go-api/internal/database"
	"github.com/noah-isme/teamhub-go-api/internal/handler"
	"github.com/noah-isme/teamhub-go-api/internal/middleware"
	"github.com/noah-isme/teamhub-go-api/internal/repository"
	"github.com/noah-isme/teamhub-go-api/internal/router"
	"github.com/noah-isme/teamhub-go-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	level := zerolog.DebugLevel
	if cfg.IsProduction() {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", cfg.AppName).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := database.ConnectRedis(ctx, cfg.RedisURL, 5*time.Second)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	remote, err := repository.NewClient(repository.ClientConfig{
		BaseURL: cfg.RemoteURL,
		Timeout: cfg.RemoteTimeout,
		Logger:  logger,
	})
	if err != nil {
		log.Fatalf("failed to create remote client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	collections := repository.NewCollections(remote)
	authenticator := repository.NewRemoteAuthenticator(remote)
	sessionStore := repository.NewRedisSessionStore(redisClient, cfg.SessionName)

	session := service.NewAuthSession(authenticator, sessionStore, validate, logger)
	if _, err := session.Restore(ctx); err != nil && !errors.Is(err, service.ErrNotAuthenticated) {
		logger.Warn().Err(err).Msg("cached session not restored")
	}

	store := service.NewDataStore(collections, session, validate, service.DataStoreOptions{
		LocalOnlyEvents: cfg.EventsLocalOnly,
	}, logger)
	if err := store.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial load incomplete")
	}
	go watchSnapshots(ctx, store, logger)

	voting := service.NewVotingEngine(store, logger)

	sessionHandler := handler.NewSessionHandler(session, store, handler.SessionConfig{
		Secret:       cfg.JWTSecret,
		TokenTTL:     cfg.TokenTTL,
		LoginLimiter: middleware.RateLimit("login", cfg.LoginRateLimit, time.Minute),
	}, logger)
	snapshotHandler := handler.NewSnapshotHandler(store, logger)
	inventoryHandler := handler.NewInventoryHandler(store, logger)
	eventHandler := handler.NewEventHandler(store, voting, validate, logger)
	activityHandler := handler.NewActivityHandler(store, logger)
	teamHandler := handler.NewTeamHandler(store)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.AllowOrigins,
		AccessLog:    !cfg.IsProduction(),
	})
	router.Register(app, cfg, router.Dependencies{
		SessionHandler:   sessionHandler,
		SnapshotHandler:  snapshotHandler,
		InventoryHandler: inventoryHandler,
		EventHandler:     eventHandler,
		ActivityHandler:  activityHandler,
		TeamHandler:      teamHandler,
		Session:          session,
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(ctx, app, logger)
}

// watchSnapshots logs collection sizes after every committed change.
func watchSnapshots(ctx context.Context, store service.DataStore, logger zerolog.Logger) {
	updates, cancel := store.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			logger.Debug().
				Int("inventory", len(snap.Inventory)).
				Int("events", len(snap.Events)).
				Int("activities", len(snap.Activities)).
				Int("team_members", len(snap.TeamMembers)).
				Msg("snapshot updated")
		}
	}
}

func waitForShutdown(ctx context.Context, app *fiber.App, logger zerolog.Logger) {
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
