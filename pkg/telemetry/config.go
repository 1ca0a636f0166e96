package telemetry

import (
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// Config is read from the environment. Values are parsed by env, so a bad level or format fails
// loadConfig.
type Config struct {
	LogLevel  zerolog.Level `env:"TITAN_LOG_LEVEL" envDefault:"info"`
	LogFormat LogFormat     `env:"TITAN_LOG_FORMAT" envDefault:"json"`

	// TracingEnabled takes spans from the globally registered OpenTelemetry tracer provider.
	// When false every span is a noop.
	TracingEnabled bool `env:"TITAN_TRACING_ENABLED" envDefault:"false"`
}

func loadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return cfg, eris.Wrap(err, "failed to parse telemetry config")
	}
	return cfg, nil
}

// Options are set by the host and win over the environment.
type Options struct {
	ServiceName    string    // Prefix of every component logger name, required
	LogLevel       string    // Overrides TITAN_LOG_LEVEL when set
	LogFormat      LogFormat // Overrides TITAN_LOG_FORMAT when set
	TracingEnabled bool      // Turns tracing on whatever TITAN_TRACING_ENABLED says
}

// override layers the non-zero options over cfg.
func (opts Options) override(cfg Config) (Config, error) {
	if opts.ServiceName == "" {
		return cfg, eris.New("service name cannot be empty")
	}
	if opts.LogLevel != "" {
		level, err := zerolog.ParseLevel(strings.ToLower(opts.LogLevel))
		if err != nil {
			return cfg, eris.Wrapf(err, "invalid log level %q", opts.LogLevel)
		}
		cfg.LogLevel = level
	}
	if opts.LogFormat != LogFormatUndefined {
		cfg.LogFormat = opts.LogFormat
	}
	cfg.TracingEnabled = cfg.TracingEnabled || opts.TracingEnabled
	return cfg, nil
}

// LogFormat is the log output format.
type LogFormat uint8

const (
	LogFormatUndefined LogFormat = iota
	LogFormatJSON                // Structured JSON lines
	LogFormatPretty              // zerolog console writer
)

func (f LogFormat) String() string {
	switch f {
	case LogFormatJSON:
		return "json"
	case LogFormatPretty:
		return "pretty"
	default:
		return "undefined"
	}
}

// UnmarshalText lets env parse TITAN_LOG_FORMAT.
func (f *LogFormat) UnmarshalText(text []byte) error {
	*f = ParseLogFormat(string(text))
	if *f == LogFormatUndefined {
		return eris.Errorf("invalid log format %q (must be 'json' or 'pretty')", text)
	}
	return nil
}

// ParseLogFormat returns LogFormatUndefined for anything but "json" or "pretty", in any case.
func ParseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	case "pretty":
		return LogFormatPretty
	default:
		return LogFormatUndefined
	}
}
