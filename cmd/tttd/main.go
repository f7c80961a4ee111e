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

	"github.com/jaminalder/minimax-tic-tac-toe/internal/app"
	"github.com/jaminalder/minimax-tic-tac-toe/internal/config"
	"github.com/jaminalder/minimax-tic-tac-toe/internal/logging"
	"github.com/jaminalder/minimax-tic-tac-toe/internal/search"
	"github.com/jaminalder/minimax-tic-tac-toe/internal/web"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	flag.StringVar(&cfg.TieBreak, "tie-break", cfg.TieBreak, "tie-break policy: random, lowest or seeded")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "seed for the seeded tie-break policy")
	flag.Parse()

	tie, err := search.ParseTieBreak(cfg.TieBreak, cfg.Seed)
	if err != nil {
		log.Fatal().Err(err).Msg("tie-break")
	}

	closer, err := logging.Init(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open log file")
	}
	defer closer.Close()
	svc := app.NewService(app.WithTieBreak(tie))
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           web.NewServer(svc),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", cfg.Addr).Str("tieBreak", cfg.TieBreak).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
