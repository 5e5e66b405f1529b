package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ashwch/jarvis/internal/safety"
	"github.com/lmittmann/tint"
)

var levelMap = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

type Options struct {
	Level  string
	Format string
	Redact bool
	// NoColor disables ANSI colours in text output.
	NoColor bool
}

func ParseLevel(value string) (slog.Level, error) {
	level, ok := levelMap[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", value)
	}
	return level, nil
}

func New(w io.Writer, opts Options) *slog.Logger {
	level, _ := ParseLevel(opts.Level)
	replace := func(_ []string, attr slog.Attr) slog.Attr { return attr }
	if opts.Redact {
		replace = redactAttr
	}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: replace,
		})
	default:
		handler = tint.NewHandler(w, &tint.Options{
			Level:       level,
			ReplaceAttr: replace,
			NoColor:     opts.NoColor,
			TimeFormat:  "15:04:05",
		})
	}
	return slog.New(handler)
}

func redactAttr(_ []string, attr slog.Attr) slog.Attr {
	switch attr.Value.Kind() {
	case slog.KindString:
		return slog.String(attr.Key, safety.RedactLog(attr.Value.String()))
	case slog.KindAny:
		if err, ok := attr.Value.Any().(error); ok {
			return slog.String(attr.Key, safety.RedactLog(err.Error()))
		}
		if s, ok := attr.Value.Any().(fmt.Stringer); ok {
			return slog.String(attr.Key, safety.RedactLog(s.String()))
		}
	}
	return attr
}
