// Package logger is a thin structured-logging facade over zerolog.
package logger

import (
	"os"

	"github.com/rs/zerolog"
)

var log = zerolog.Nop()

func Init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log = zerolog.New(os.Stdout).With().Timestamp().Logger()
	log.Info().Msg("logger initialized")
}

func Debug(msg string, fields map[string]any) {
	emit(log.Debug(), msg, fields)
}

func Info(msg string, fields map[string]any) {
	emit(log.Info(), msg, fields)
}

func Warn(msg string, fields map[string]any) {
	emit(log.Warn(), msg, fields)
}

func Error(msg string, fields map[string]any) {
	emit(log.Error(), msg, fields)
}

// Fatal logs the message and exits the process.
func Fatal(msg string, fields map[string]any) {
	emit(log.Fatal(), msg, fields)
}

func emit(e *zerolog.Event, msg string, fields map[string]any) {
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	e.Msg(msg)
}
