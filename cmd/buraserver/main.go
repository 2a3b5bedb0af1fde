// Command buraserver is the process entrypoint: it parses flags,
// wires the registry/hub/dispatcher, and serves the REST lobby glue
// and the duplex WebSocket endpoints. Grounded on the teacher's
// cmd/server/main.go for the kong CLI struct and zerolog setup.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	charmlog "github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/bura/server/internal/config"
	"github.com/bura/server/internal/dispatch"
	"github.com/bura/server/internal/hub"
	"github.com/bura/server/internal/matchlog"
	"github.com/bura/server/internal/registry"
)

// CLI is the set of flags buraserver accepts, grounded on the
// teacher's CLI struct in cmd/server/main.go.
type CLI struct {
	Addr       string `kong:"default=':8080',help='HTTP/WS listen address.'"`
	ConfigFile string `kong:"default='bura.hcl',help='Optional HCL table-preset file.'"`
	Debug      bool   `kong:"help='Enable debug logging.'"`
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("buraserver"),
		kong.Description("Real-time multiplayer server for Bura."),
		kong.UsageOnError(),
	)

	level := zerolog.InfoLevel
	if cli.Debug {
		level = zerolog.DebugLevel
	}
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	charmLevel := charmlog.InfoLevel
	if cli.Debug {
		charmLevel = charmlog.DebugLevel
	}
	componentLogger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{Level: charmLevel})

	cfg, err := config.Load(cli.ConfigFile)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to load configuration")
	}

	clock := quartz.NewReal()
	sink := matchlog.NewStdoutSink(componentLogger)
	reg := registry.New(clock, sink)
	h := hub.New(reg, clock, componentLogger)
	d := dispatch.New(reg, h, componentLogger)
	h.SetHandler(d)

	stop := make(chan struct{})
	go h.Run(stop)

	srv := newServer(reg, h, cfg, componentLogger, cli.Addr)

	zlog.Info().Str("addr", cli.Addr).Msg("starting bura server")
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			zlog.Error().Err(err).Msg("server stopped")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zlog.Info().Msg("shutting down")
	close(stop)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
