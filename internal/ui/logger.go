package ui

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Log file formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// LoggerOptions configures NewLogger. A nil writer disables that output.
type LoggerOptions struct {
	File    io.Writer
	Console io.Writer
	Format  string
	Level   slog.Level
	Color   bool
}

// NewLogger builds a logger that writes every record to the log file and
// echoes it to the console.
func NewLogger(opts LoggerOptions) (*slog.Logger, error) {
	var handlers []slog.Handler

	if opts.File != nil {
		hopts := &slog.HandlerOptions{Level: opts.Level}
		switch opts.Format {
		case "", FormatText:
			handlers = append(handlers, slog.NewTextHandler(opts.File, hopts))
		case FormatJSON:
			handlers = append(handlers, slog.NewJSONHandler(opts.File, hopts))
		default:
			return nil, fmt.Errorf("unknown log format %q (want text or json)", opts.Format)
		}
	}

	if opts.Console != nil {
		handlers = append(handlers, tint.NewHandler(opts.Console, &tint.Options{
			Level:      opts.Level,
			TimeFormat: time.DateTime,
			NoColor:    !opts.Color,
		}))
	}

	return slog.New(NewMultiHandler(handlers...)), nil
}

// ParseLevel maps debug, info, warn or error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q (want debug, info, warn or error)", s)
	}
	return level, nil
}
