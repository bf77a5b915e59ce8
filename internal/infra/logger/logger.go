package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New devolve um logger colorido em desenvolvimento e JSON nos demais ambientes.
func New(env, level string) zerolog.Logger {
	return newWithWriter(os.Stderr, env, level)
}

func newWithWriter(out io.Writer, env, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if env == "development" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Str("service", "automatik-diagnostic").Logger()
}
