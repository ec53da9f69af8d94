package util

import (
	"fmt"
	"os"
	"time"

	"github.com/mxcd/go-config/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger configures the global zerolog logger from the LOG_LEVEL config
// value. In dev mode output goes through the human-readable console writer.
func InitLogger() error {
	level, err := zerolog.ParseLevel(config.Get().String("LOG_LEVEL"))
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	if config.Get().Bool("DEV") {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return nil
}
