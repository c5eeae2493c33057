package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/dkeye/Huddle/internal/domain"
	"github.com/dkeye/Huddle/internal/mesh"
)

func main() {
	server := pflag.String("server", "ws://localhost:8080/api/ws", "realtime endpoint URL")
	token := pflag.String("token", "", "bearer credential")
	channel := pflag.String("channel", "", "voice channel to join")
	stall := pflag.Duration("stall-timeout", 30*time.Second, "negotiation stall timeout per peer")
	debug := pflag.Bool("debug", false, "verbose logging")
	pflag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *token == "" || *channel == "" {
		pflag.Usage()
		log.Fatal().Msg("--token and --channel are required")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sig, err := mesh.DialSignaler(ctx, *server, *token)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect")
	}
	defer sig.Close()

	orch := mesh.New(mesh.Config{
		Signaler:     sig,
		StallTimeout: *stall,
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		orch.Run(ctx)
	}()

	if err := orch.JoinCall(domain.ChannelID(*channel)); err != nil {
		cancel()
		<-done
		log.Fatal().Err(err).Msg("failed to join call")
	}
	log.Info().Str("channel", *channel).Msg("in call, Ctrl-C to leave")

	<-ctx.Done()
	orch.LeaveCall()
	_ = sig.Close()
	<-done
}
