// Package logger provides JSON structured logging using zerolog
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var globalLogger zerolog.Logger

type Config struct {
	Level      string `json:"level" yaml:"level" mapstructure:"level"`
	Debug      bool   `json:"debug" yaml:"debug" mapstructure:"debug"`
	Output     string `json:"output" yaml:"output" mapstructure:"output"`
	TimeFormat string `json:"time_format" yaml:"time_format" mapstructure:"time_format"`
	Pretty     bool   `json:"pretty" yaml:"pretty" mapstructure:"pretty"`
}

func init() {
	globalLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.TimeFieldFormat = time.RFC3339
}

// Init replaces the global logger. Logs go to stderr unless Output is "stdout",
// so that tables and CSV written to stdout stay clean.
func Init(config Config) error {
	var output io.Writer = os.Stderr

	if config.Output == "stdout" {
		output = os.Stdout
	}

	if config.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.Kitchen}
	}

	level := zerolog.InfoLevel

	if config.Debug {
		level = zerolog.DebugLevel
	} else if config.Level != "" {
		var err error

		level, err = zerolog.ParseLevel(strings.ToLower(config.Level))
		if err != nil {
			return err
		}
	}

	if config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	globalLogger = zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	log.Logger = globalLogger

	return nil
}

func GetLogger() zerolog.Logger {
	return globalLogger
}

// WithComponent returns a child logger tagged with the component name.
func WithComponent(component string) zerolog.Logger {
	return globalLogger.With().Str("component", component).Logger()
}

// Resty adapts a zerolog logger to resty's Logger interface.
func Resty(l zerolog.Logger) RestyLogger {
	return RestyLogger{l: l}
}

type RestyLogger struct {
	l zerolog.Logger
}

func (r RestyLogger) Errorf(format string, v ...interface{}) {
	r.l.Error().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (r RestyLogger) Warnf(format string, v ...interface{}) {
	r.l.Warn().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (r RestyLogger) Debugf(format string, v ...interface{}) {
	r.l.Debug().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
