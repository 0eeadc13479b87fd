package logger

import (
	"context"
	"errors"
	"log/slog"
)

// fanout dispatches each record to several handlers, so serve can print to
// the terminal and append JSON to a log file at once.
type fanout []slog.Handler

// Multi returns a logger writing every record to each of loggers. Nil and
// discarding loggers are skipped, and nested Multi loggers are flattened.
func Multi(loggers ...*slog.Logger) *slog.Logger {
	var hs fanout
	for _, l := range loggers {
		if l == nil {
			continue
		}
		switch h := l.Handler().(type) {
		case fanout:
			hs = append(hs, h...)
		default:
			if h == slog.DiscardHandler {
				continue
			}
			hs = append(hs, h)
		}
	}
	if len(hs) == 0 {
		return Nop()
	}
	return slog.New(hs)
}

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle passes each handler its own copy of r. A failing handler does not
// keep the record from the others.
func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f fanout) WithGroup(name string) slog.Handler {
	return f.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (f fanout) each(fn func(slog.Handler) slog.Handler) fanout {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = fn(h)
	}
	return out
}
