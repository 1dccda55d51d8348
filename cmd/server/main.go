package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	api "github.com/outgoapp/outgo/api/echo"
	"github.com/outgoapp/outgo/config"
	"github.com/outgoapp/outgo/internal/auth"
	"github.com/outgoapp/outgo/internal/federation"
	"github.com/outgoapp/outgo/log"
	"github.com/outgoapp/outgo/mongodb"
	"github.com/outgoapp/outgo/services"
	"github.com/outgoapp/outgo/tracing"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := log.Setup(cfg.LogLevel, cfg.LogPretty)
	logger.Info().
		Str("http_port", cfg.HTTPPort).
		Str("environment", cfg.Environment).
		Str("mongo_db_name", cfg.MongoDBName).
		Msg("Starting outgo server")

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	tp, err := tracing.InitTracerProvider(cfg.OtelServiceName)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize TracerProvider")
	}

	ctx := context.Background()
	if err := mongodb.InitMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	db := mongodb.GetDB()

	users, err := mongodb.NewUserRepository(ctx, db)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize user repository")
	}
	expenses, err := mongodb.NewExpenseRepository(ctx, db)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize expense repository")
	}

	tokens, err := services.NewTokenService(cfg.JWTSecretKey)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize token service")
	}
	hasher := auth.NewBcryptPasswordHasher(bcrypt.DefaultCost)
	authSvc := services.NewAuthService(users, hasher, tokens)
	fedSvc := services.NewFederationService(users, hasher, tokens)

	caps := cfg.AuthCapabilities()
	var provider federation.OAuth2Provider
	if caps.FederatedLoginEnabled {
		google, err := federation.NewGoogleProvider(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleCallbackURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize Google provider")
		}
		provider = google
		logger.Info().Str("callback_url", caps.CallbackURL).Msg("Google authentication enabled")
	} else {
		logger.Warn().Msg("Google credentials not configured, federated login disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.ClientURL},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	api.NewAPI(cfg, authSvc, fedSvc, tokens, users, expenses, provider).RegisterRoutes(e)

	go func() {
		addr := ":" + cfg.HTTPPort
		logger.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("TracerProvider shutdown failed")
	}
	mongodb.CloseMongoDB(shutdownCtx)
	logger.Info().Msg("Shutdown complete")
}
