// Package logging builds the zerolog logger used by the sigkat CLI.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mahdiidarabi/sigkat/internal/config"
	"github.com/mahdiidarabi/sigkat/internal/errors"
)

// Rotation settings for the optional log file.
const (
	MaxSizeMB  = 10
	MaxBackups = 3
	MaxAgeDays = 14
)

// Options selects the level, format and destinations of a logger.
type Options struct {
	Level  string
	Format string
	File   string

	// Verbose forces debug level, Quiet forces warn level.
	Verbose bool
	Quiet   bool

	// Console receives console output. Defaults to os.Stderr.
	Console io.Writer
}

// FromConfig returns Options populated from the log section of cfg.
func FromConfig(cfg config.LogConfig) Options {
	return Options{Level: cfg.Level, Format: cfg.Format, File: cfg.File}
}

// New creates a logger and returns a closer for the log file, if any.
// The closer is never nil.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	level, err := selectLevel(opts)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	writer := selectOutput(console, opts.Format)

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		fileWriter, err := newFileWriter(opts.File)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, err
		}
		writer = zerolog.MultiLevelWriter(writer, fileWriter)
		closer = fileWriter
	}

	logger := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return logger, closer, nil
}

func selectLevel(opts Options) (zerolog.Level, error) {
	switch {
	case opts.Verbose:
		return zerolog.DebugLevel, nil
	case opts.Quiet:
		return zerolog.WarnLevel, nil
	case opts.Level == "":
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil {
		return zerolog.NoLevel, errors.Invalidf(errors.ErrInvalidConfig, "log level %q", opts.Level)
	}
	return level, nil
}

// selectOutput uses the console writer on a terminal without NO_COLOR,
// and plain JSON everywhere else, unless the format forces one of them.
func selectOutput(w io.Writer, format string) io.Writer {
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	switch strings.ToLower(format) {
	case "console":
		return console
	case "json":
		return w
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) && os.Getenv("NO_COLOR") == "" {
		return console
	}
	return w
}

func newFileWriter(path string) (*lumberjack.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, errors.Wrap(err, "failed to create log directory")
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    MaxSizeMB,
		MaxBackups: MaxBackups,
		MaxAge:     MaxAgeDays,
		Compress:   true,
	}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
