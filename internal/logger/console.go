package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"sync"
)

// consoleHandler renders records as single human-readable lines:
//
//	2006-01-02 15:04:05.000 INFO  [prefix] [file.go:42] message key=value
type consoleHandler struct {
	mu       *sync.Mutex
	out      io.Writer
	level    slog.Leveler
	colorize bool
	attrs    []slog.Attr
	group    string
}

func newConsoleHandler(out io.Writer, level slog.Leveler, colorize bool) *consoleHandler {
	return &consoleHandler{
		mu:       &sync.Mutex{},
		out:      out,
		level:    level,
		colorize: colorize,
	}
}

func (h *consoleHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		if h.group != "" {
			a.Key = h.group + "." + a.Key
		}
		next.attrs = append(next.attrs, a)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	if h.group != "" {
		next.group = h.group + "." + name
	} else {
		next.group = name
	}
	return &next
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	var prefix string
	fields := make(map[string]string, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		if a.Key == prefixKey {
			prefix = a.Value.String()
			continue
		}
		fields[a.Key] = a.Value.String()
	}
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == prefixKey {
			prefix = a.Value.String()
			return true
		}
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		fields[key] = a.Value.String()
		return true
	})

	var sb strings.Builder
	sb.WriteString(r.Time.Format("2006-01-02 15:04:05.000"))
	sb.WriteString(" ")
	sb.WriteString(h.levelString(r.Level))
	sb.WriteString(" ")

	if prefix != "" {
		sb.WriteString("[")
		sb.WriteString(prefix)
		sb.WriteString("] ")
	}

	if r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		file := frame.File
		if idx := strings.LastIndex(file, "/"); idx >= 0 {
			file = file[idx+1:]
		}
		if file != "" {
			fmt.Fprintf(&sb, "[%s:%d] ", file, frame.Line)
		}
	}

	sb.WriteString(r.Message)

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(" ")
			sb.WriteString(k)
			sb.WriteString("=")
			sb.WriteString(fields[k])
		}
	}
	sb.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, sb.String())
	return err
}

func (h *consoleHandler) levelString(l slog.Level) string {
	name := fromSlog(l).String()
	if !h.colorize {
		return fmt.Sprintf("%-5s", name)
	}
	var color string
	switch {
	case l >= slog.LevelError:
		color = "\033[31m" // Red
	case l >= slog.LevelWarn:
		color = "\033[33m" // Yellow
	case l >= slog.LevelInfo:
		color = "\033[32m" // Green
	default:
		color = "\033[36m" // Cyan
	}
	return fmt.Sprintf("%s%-5s\033[0m", color, name)
}

func fromSlog(l slog.Level) Level {
	switch {
	case l >= slog.LevelError:
		return ERROR
	case l >= slog.LevelWarn:
		return WARN
	case l >= slog.LevelInfo:
		return INFO
	default:
		return DEBUG
	}
}
