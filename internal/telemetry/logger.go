package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOptions controls the process logger.
type LogOptions struct {
	Format     string // "json" or "text"
	Debug      bool
	File       string // optional rotated log file, always JSON
	MaxSizeMB  int
	MaxBackups int
}

// NewLogger builds the slog logger used across the process. When File is set,
// records are also written as JSON to a lumberjack-rotated file. The returned
// closer releases the file and is never nil.
func NewLogger(console io.Writer, opts LogOptions) (*slog.Logger, io.Closer) {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(opts.Format, "text") {
		handler = slog.NewTextHandler(console, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(console, handlerOpts)
	}

	if opts.File == "" {
		return slog.New(handler), nopCloser{}
	}

	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		Compress:   true,
	}
	fileHandler := slog.NewJSONHandler(rotator, handlerOpts)

	return slog.New(teeHandler{handlers: []slog.Handler{handler, fileHandler}}), rotator
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// teeHandler fans a record out to several handlers.
type teeHandler struct {
	handlers []slog.Handler
}

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return teeHandler{handlers: next}
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithGroup(name)
	}
	return teeHandler{handlers: next}
}
