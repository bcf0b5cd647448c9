// Package logger provides the configured zerolog loggers of the binaries.
package logger

import (
	"io"
	"os"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	zpkgerrors "github.com/rs/zerolog/pkgerrors"
)

type stackTracer interface{ StackTrace() pkgerrors.StackTrace }

// New returns a JSON logger on stdout tagged with serviceName.
// Call sites should use .Stack() on error events to include stacks.
func New(serviceName string) zerolog.Logger {
	return NewWithWriter(serviceName, os.Stdout)
}

// NewWithWriter is New with an explicit sink.
func NewWithWriter(serviceName string, w io.Writer) zerolog.Logger {
	installStackMarshaling()
	return zerolog.New(w).With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}

// NewConsole returns a human-readable logger for interactive tools.
func NewConsole(serviceName string, w io.Writer) zerolog.Logger {
	installStackMarshaling()
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).With().
		Str("service", serviceName).
		Timestamp().
		Logger()
}

// SetLevel parses a level name ("debug", "info", ...) and applies it
// globally. An empty name means info.
func SetLevel(name string) error {
	if strings.TrimSpace(name) == "" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(name))
	if err != nil {
		return pkgerrors.Wrapf(err, "invalid log level %q", name)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

// installStackMarshaling makes zerolog work with github.com/pkg/errors:
// stacks already carried by an error are marshaled, and std errors get one
// attached when .Stack() is used.
func installStackMarshaling() {
	zerolog.ErrorStackMarshaler = func(err error) interface{} {
		if _, ok := err.(stackTracer); !ok {
			err = pkgerrors.WithStack(err)
		}
		return zpkgerrors.MarshalStack(err)
	}
	zerolog.ErrorMarshalFunc = func(err error) interface{} {
		if _, ok := err.(stackTracer); ok {
			return err
		}
		return pkgerrors.WithStack(err)
	}
}
