// Package logging builds the zap loggers used by the CLI.
package logging

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Formats accepted by New
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options select the logger's level and encoding
type Options struct {
	Debug  bool
	Format string

	// Output defaults to stderr when nil
	Output io.Writer
}

// New builds a logger. Debug lowers the level from info to debug.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if opts.Debug {
		level = zapcore.DebugLevel
	}

	var enc zapcore.Encoder
	switch opts.Format {
	case "", FormatConsole:
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.TimeKey = ""
		enc = zapcore.NewConsoleEncoder(cfg)
	case FormatJSON:
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		return nil, fmt.Errorf("unknown log format %q (expected %s or %s)", opts.Format, FormatConsole, FormatJSON)
	}

	var sink zapcore.WriteSyncer
	if opts.Output != nil {
		sink = zapcore.AddSync(opts.Output)
	} else {
		stderr, _, err := zap.Open("stderr")
		if err != nil {
			return nil, err
		}
		sink = stderr
	}

	return zap.New(zapcore.NewCore(enc, sink, level)), nil
}
