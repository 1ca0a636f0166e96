// Package telemetry builds the logger and tracer handed to a titan World.
package telemetry

import (
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type Telemetry struct {
	Logger      zerolog.Logger
	Tracer      trace.Tracer
	serviceName string
}

// New loads the env config, lets opts override it, and builds a logger writing to stdout.
func New(opts Options) (Telemetry, error) {
	return NewWithWriter(opts, os.Stdout)
}

// NewWithWriter is New with an explicit log destination.
func NewWithWriter(opts Options, out io.Writer) (Telemetry, error) {
	config, err := loadConfig()
	if err != nil {
		return Telemetry{}, eris.Wrap(err, "failed to load telemetry config")
	}

	config, err = opts.override(config)
	if err != nil {
		return Telemetry{}, eris.Wrap(err, "invalid telemetry options")
	}

	var tracer trace.Tracer
	if config.TracingEnabled {
		tracer = otel.GetTracerProvider().Tracer(opts.ServiceName)
	} else {
		tracer = noop.NewTracerProvider().Tracer(opts.ServiceName)
	}

	return Telemetry{
		Logger:      newLogger(config, out),
		Tracer:      tracer,
		serviceName: opts.ServiceName,
	}, nil
}

// GetLogger returns a component-specific logger.
func (t *Telemetry) GetLogger(component string) zerolog.Logger {
	return t.Logger.With().Str("component", t.serviceName+"."+component).Logger()
}

func newLogger(cfg Config, out io.Writer) zerolog.Logger {
	writer := out
	if cfg.LogFormat == LogFormatPretty {
		writer = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(writer).
		Level(cfg.LogLevel).
		With().
		Timestamp().
		Logger()
}
