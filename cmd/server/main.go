package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mxcd/go-config/config"
	"github.com/rs/zerolog/log"

	"github.com/AbbyGrylls/impetus9-backend/internal/auth"
	"github.com/AbbyGrylls/impetus9-backend/internal/server"
	"github.com/AbbyGrylls/impetus9-backend/internal/store"
	"github.com/AbbyGrylls/impetus9-backend/internal/util"
)

func main() {
	// A missing .env file is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	if err := util.InitConfig(); err != nil {
		log.Panic().Err(err).Msg("error initializing config")
	}
	config.Print()

	if err := util.InitLogger(); err != nil {
		log.Panic().Err(err).Msg("error initializing logger")
	}

	registrationStore, err := store.Open(config.Get().String("DATABASE_PATH"))
	if err != nil {
		log.Panic().Err(err).Msg("error opening database")
	}
	defer registrationStore.Close()

	exportCacheTTL, err := time.ParseDuration(config.Get().String("EXPORT_CACHE_TTL"))
	if err != nil {
		log.Panic().Err(err).Msg("error parsing EXPORT_CACHE_TTL")
	}

	s, err := server.NewServer(&server.ServerOptions{
		DevMode:        config.Get().Bool("DEV"),
		Port:           config.Get().Int("PORT"),
		Store:          registrationStore,
		Secrets:        auth.EnvSecrets{},
		ExportCacheTTL: exportCacheTTL,
	})
	if err != nil {
		log.Panic().Err(err).Msg("error initializing server")
	}

	if err := s.RegisterRoutes(); err != nil {
		log.Panic().Err(err).Msg("error registering routes")
	}

	// Start server in a goroutine so we can listen for shutdown signals
	go func() {
		if err := s.Run(); err != nil {
			log.Panic().Err(err).Msg("error running server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.Shutdown(ctx)
	log.Info().Msg("server shutdown complete")
}
