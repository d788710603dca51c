package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prxssh/thicketd/internal/carddb"
	"github.com/prxssh/thicketd/internal/server"
	"github.com/prxssh/thicketd/internal/serverconfig"
	"github.com/prxssh/thicketd/pkg/logging"
)

func main() {
	cfg := serverconfig.FromEnvironment(serverconfig.WithDefaultConfig())

	setupLogger(cfg)

	// Set data (booster slot templates, per-rarity pools) is loaded from
	// wherever an operator's card database lives; parsing that format is
	// explicitly out of scope here, so the process starts with an empty
	// StaticSetsData and relies on AddSet having been called by whatever
	// wires a real source in.
	data := carddb.NewStaticSetsData()

	srv := server.New(cfg, data, slog.Default())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx); err != nil {
		slog.Error("server stopped", "error", err.Error())
		os.Exit(1)
	}
}

func setupLogger(cfg *serverconfig.Config) {
	opts := logging.DefaultOptions()
	opts.SlogOpts.Level = cfg.LogLevel
	opts.SlogOpts.AddSource = cfg.LogAddSource

	h := logging.NewPrettyHandler(os.Stdout, &opts)
	l := slog.New(h)
	slog.SetDefault(l)
}
