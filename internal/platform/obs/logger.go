package obs

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the process logger. Development gets human-readable
// console output; everything else logs JSON for collectors.
func NewLogger(env, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var log zerolog.Logger
	if env == "development" {
		out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
		log = zerolog.New(out)
	} else {
		log = zerolog.New(os.Stderr)
	}

	return log.Level(lvl).With().Timestamp().Str("service", "freight-matching").Logger()
}
