// Command server boots the omnichannel dispatch engine: configuration,
// structured logging, SQLite storage, OpenTelemetry tracing, the channel
// adapter registry, and the Gin HTTP API, then serves until SIGINT/SIGTERM
// and drains gracefully.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/ianampudia11/go-omni-inbox/internal/adapters"
	"github.com/ianampudia11/go-omni-inbox/internal/channels"
	"github.com/ianampudia11/go-omni-inbox/internal/config"
	"github.com/ianampudia11/go-omni-inbox/internal/domain"
	httpapi "github.com/ianampudia11/go-omni-inbox/internal/http"
	"github.com/ianampudia11/go-omni-inbox/internal/observability"
	"github.com/ianampudia11/go-omni-inbox/internal/repo"
)

// version is stamped at build time via -ldflags "-X main.version=…".
var version = "dev"

func main() {
	// .env is optional; real deployments use the process environment.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	setupLogging(cfg)

	gin.SetMode(cfg.GinMode)

	log.Info().Str("version", version).Msg("starting dispatch engine")

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	shutdownOTel, err := observability.SetupOTel(context.Background(), cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("setup tracing")
	}

	registry := buildRegistry(db, cfg)

	r := gin.New()
	httpapi.RegisterRoutes(r, db, registry, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("base_path", cfg.APIBasePath).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// Block until a shutdown signal arrives, then drain.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := shutdownOTel(ctx); err != nil {
		log.Error().Err(err).Msg("otel shutdown")
	}
	log.Info().Msg("stopped")
}

// connSource adapts the channel repository to the adapters.ConnectionSource
// contract.
type connSource struct{ db *gorm.DB }

func (s connSource) GetChannelConnection(ctx context.Context, id uint) (*domain.ChannelConnection, error) {
	return repo.GetChannelConnection(ctx, s.db, id)
}

// buildRegistry wires the fixed channel-type → adapter table. The web-chat
// adapter ships in-process; external channel adapters register here as they
// are linked in.
func buildRegistry(db *gorm.DB, cfg config.Config) *channels.Registry {
	reg := channels.NewRegistry()
	reg.Register(channels.TypeWebchat, adapters.NewWebchat(connSource{db: db}, cfg.WebchatTimeout))
	return reg
}

// setupLogging configures the global zerolog logger from config.
func setupLogging(cfg config.Config) {
	lvl, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
