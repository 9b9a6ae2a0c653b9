package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// New creates a logger based on the ENV environment variable. Anything other
// than an explicit production setting gets the console writer, since this is
// an interactive CLI first and foremost.
func New() zerolog.Logger {
	switch os.Getenv("ENV") {
	case "production", "prod":
		return NewProduction()
	}
	return NewDevelopment()
}

// NewDevelopment creates a console logger with colors and human timestamps.
func NewDevelopment() zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "2006-01-02 15:04:05",
	}
	return zerolog.New(output).With().Timestamp().Logger()
}

// NewProduction creates a JSON logger with UNIX timestamps.
func NewProduction() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
