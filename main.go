package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wasapjg/teg-engine/config"
	"github.com/wasapjg/teg-engine/engine"
	"github.com/wasapjg/teg-engine/game"
	"github.com/wasapjg/teg-engine/server"
	"github.com/wasapjg/teg-engine/store"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := log.With().Str("component", "engine").Logger()

	var st store.Store
	if cfg.DBPath != "" {
		st, err = store.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open store")
		}
		logger.Info().Str("path", cfg.DBPath).Msg("using sqlite store")
	} else {
		st = store.NewMemStore()
		logger.Info().Msg("using in-memory store")
	}
	defer st.Close()

	defaults := game.DefaultOptions()
	defaults.TurnTimeLimit = cfg.TurnTime

	manager := engine.NewManager(st, logger, cfg.MaxSessions)
	defer manager.Shutdown()

	srv := server.New(manager, defaults, logger)

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		<-sigc
		logger.Info().Msg("shutting down")
		manager.Shutdown()
		os.Exit(0)
	}()

	logger.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
	if err := srv.Router().Run(cfg.HTTPAddr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
