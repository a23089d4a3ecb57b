// Package logging builds the zerolog logger used by the sync commands.
//
// Output goes to the console (stdout) and, when configured, to a log file
// artifact in the same human-readable format, so a scheduler's captured output
// and the file tell the same story.
//
// Example usage:
//
//	out, err := logging.New(logging.Config{Level: "info", File: "sync.log"})
//	if err != nil {
//	    return err
//	}
//	defer out.Close()
//	out.Info().Str("entity", "fx_trade").Int("missing", 3).Msg("missing in target")
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// TimeFormat is used for console and file timestamps.
const TimeFormat = "2006-01-02 15:04:05"

// Config holds logger configuration options.
type Config struct {
	// Level is the minimum log level to output (debug, info, warn, error).
	Level string

	// File is the log artifact path. Empty disables the file.
	File string

	// Console receives console output. Defaults to os.Stdout.
	Console io.Writer

	// NoColor disables color output on the console.
	NoColor bool
}

// Output is a configured logger plus the plain text stream it writes to.
type Output struct {
	zerolog.Logger

	// Writer reaches the console and the log file; used for report blocks.
	Writer io.Writer

	file *os.File
}

// New creates the logger. The caller must Close the returned Output.
func New(cfg Config) (*Output, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	console := cfg.Console
	if console == nil {
		console = os.Stdout
	}

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: TimeFormat,
		NoColor:    cfg.NoColor || os.Getenv("NO_COLOR") != "",
	}}
	plain := []io.Writer{console}

	out := &Output{}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out.file = f
		writers = append(writers, zerolog.ConsoleWriter{Out: f, TimeFormat: TimeFormat, NoColor: true})
		plain = append(plain, f)
	}

	out.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	out.Writer = io.MultiWriter(plain...)
	return out, nil
}

// Close flushes and closes the log file, if any.
func (o *Output) Close() error {
	if o.file == nil {
		return nil
	}
	if err := o.file.Sync(); err != nil {
		o.file.Close()
		return err
	}
	return o.file.Close()
}

// ParseLevel maps a level name to a zerolog level. Empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	if s == "warning" {
		s = "warn"
	}
	level, err := zerolog.ParseLevel(s)
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}
