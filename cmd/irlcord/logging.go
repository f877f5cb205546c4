package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
)

// fanout sends every record to each of its handlers.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errList []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errList = append(errList, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errList...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// newLogger writes text to stderr and, when path is set, JSON to path.
// The returned closer releases the log file.
func newLogger(level slog.Level, stderr io.Writer, path string) (*slog.Logger, io.Closer, error) {
	opts := &slog.HandlerOptions{Level: level}
	handlers := fanout{slog.NewTextHandler(stderr, opts)}
	if path == "" {
		return slog.New(handlers), io.NopCloser(nil), nil
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	handlers = append(handlers, slog.NewJSONHandler(file, opts))
	return slog.New(handlers), file, nil
}
