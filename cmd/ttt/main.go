package main

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/jaminalder/minimax-tic-tac-toe/internal/config"
	"github.com/jaminalder/minimax-tic-tac-toe/internal/console"
	"github.com/jaminalder/minimax-tic-tac-toe/internal/logging"
	"github.com/jaminalder/minimax-tic-tac-toe/internal/search"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("session")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	verbose := flag.Bool("v", false, "log engine diagnostics to stderr")
	flag.StringVar(&cfg.TieBreak, "tie-break", cfg.TieBreak, "tie-break policy: random, lowest or seeded")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "seed for the seeded tie-break policy")
	flag.Parse()

	cfg.LogLevel = cfg.ConsoleLevel(*verbose)
	closer, err := logging.InitWriter(cfg, zerolog.ConsoleWriter{Out: os.Stderr})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open log file")
	}
	defer closer.Close()

	tie, err := search.ParseTieBreak(cfg.TieBreak, cfg.Seed)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := console.New(os.Stdin, os.Stdout, console.WithTieBreak(tie))
	if err := s.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
