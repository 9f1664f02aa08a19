// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/urmzd/yeehome/pkg/config"
)

// Setup points the global logger at w with the configured level and format.
// Unknown levels fall back to info. w defaults to stderr.
func Setup(cfg config.LoggingConfig, w io.Writer) zerolog.Level {
	if w == nil {
		w = os.Stderr
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		log.Logger = zerolog.New(w).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: w})
	}

	if err != nil && cfg.Level != "" {
		log.Warn().Str("level", cfg.Level).Msg("Unknown log level, using info")
	}
	return level
}
