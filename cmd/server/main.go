package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Huddle/internal/adapters/httpapi"
	"github.com/dkeye/Huddle/internal/app"
	"github.com/dkeye/Huddle/internal/auth"
	"github.com/dkeye/Huddle/internal/config"
	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/storage"
)

// seedDev provisions default channels and a throwaway user so a debug server
// is usable without the external account service.
func seedDev(ctx context.Context, store *storage.Store, issuer *auth.JWTManager) {
	channels := []domain.Channel{
		{ID: "general", Name: "general", Kind: domain.ChannelText},
		{ID: "voice-1", Name: "voice", Kind: domain.ChannelVoice},
	}
	for _, ch := range channels {
		if err := store.EnsureChannel(ctx, ch); err != nil {
			log.Warn().Err(err).Str("channel", string(ch.ID)).Msg("seed channel")
		}
	}

	user, err := domain.NewUser("dev", "dev")
	if err != nil {
		log.Warn().Err(err).Msg("seed user")
		return
	}
	if err := store.EnsureUser(ctx, user.ID, user.Username); err != nil {
		log.Warn().Err(err).Msg("seed user")
		return
	}
	token, err := issuer.Issue(user.ID)
	if err != nil {
		log.Warn().Err(err).Msg("seed credential")
		return
	}
	log.Info().Str("user", string(user.ID)).Str("token", token).Msg("dev credential issued")
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("database_url is required")
	}
	store, err := storage.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable")
		}
	} else {
		log.Warn().Msg("no redis configured, token revocation disabled")
	}

	verifier := auth.NewJWTManager(cfg.Secret, cfg.TokenTTL, rdb)
	if cfg.Mode == "debug" {
		seedDev(ctx, store, verifier)
	}
	gw := app.NewGateway(verifier, store)

	r := httpapi.SetupRouter(ctx, cfg, gw, store)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Huddle server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
