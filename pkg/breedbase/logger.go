package breedbase

import (
	"context"
	"log/slog"
)

// slogAdapter lets a caller-supplied Logger back the *slog.Logger used internally.
//
//nolint:govet // Simple adapter struct - alignment optimization minimal
type slogAdapter struct {
	attrs  []slog.Attr
	logger Logger
	group  string
}

func (a slogAdapter) Enabled(context.Context, slog.Level) bool {
	return true
}

//nolint:gocritic // slog.Handler interface requires passing Record by value
func (a slogAdapter) Handle(_ context.Context, r slog.Record) error {
	args := make([]any, 0, (len(a.attrs)+r.NumAttrs())*2)
	for _, attr := range a.attrs {
		args = append(args, attr.Key, attr.Value.Any())
	}
	r.Attrs(func(attr slog.Attr) bool {
		args = append(args, a.key(attr.Key), attr.Value.Any())
		return true
	})

	switch {
	case r.Level >= slog.LevelError:
		a.logger.Error(r.Message, args...)
	case r.Level >= slog.LevelWarn:
		a.logger.Warn(r.Message, args...)
	case r.Level >= slog.LevelInfo:
		a.logger.Info(r.Message, args...)
	default:
		a.logger.Debug(r.Message, args...)
	}
	return nil
}

func (a slogAdapter) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(a.attrs), len(a.attrs)+len(attrs))
	copy(newAttrs, a.attrs)
	for _, attr := range attrs {
		attr.Key = a.key(attr.Key)
		newAttrs = append(newAttrs, attr)
	}
	return slogAdapter{logger: a.logger, attrs: newAttrs, group: a.group}
}

func (a slogAdapter) WithGroup(name string) slog.Handler {
	if name == "" {
		return a
	}
	return slogAdapter{logger: a.logger, attrs: a.attrs, group: a.key(name)}
}

func (a slogAdapter) key(k string) string {
	if a.group == "" {
		return k
	}
	return a.group + "." + k
}

func newSlogLogger(l Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	if sl, ok := l.(*slog.Logger); ok {
		return sl
	}
	return slog.New(slogAdapter{logger: l})
}
