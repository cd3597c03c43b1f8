// Package logging provides the process log: an append-only text file with
// one line per record, formatted as
//
//	[02/01/2006 15:04:05] - INFO. message key=value
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Defaults for Config fields left empty.
const (
	DefaultPath       = "./logs/info.log"
	DefaultTimeFormat = "02/01/2006 15:04:05"
	DefaultLevel      = "DEBUG"
)

// Config describes the log sink.
type Config struct {
	Path       string `yaml:"path"`
	TimeFormat string `yaml:"time_format"`
	Level      string `yaml:"level"`
	Append     bool   `yaml:"append"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Path:       DefaultPath,
		TimeFormat: DefaultTimeFormat,
		Level:      DefaultLevel,
		Append:     true,
	}
}

// New opens the log file described by cfg and returns a logger writing to
// it. The caller owns the returned Closer.
func New(cfg Config) (*slog.Logger, io.Closer, error) {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}

	mode := os.O_CREATE | os.O_WRONLY
	if cfg.Append {
		mode |= os.O_APPEND
	} else {
		mode |= os.O_TRUNC
	}
	f, err := os.OpenFile(cfg.Path, mode, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	return slog.New(NewHandler(f, cfg)), f, nil
}

// ParseLevel maps a level name to a slog.Level. Unknown names mean DEBUG so
// nothing is silently dropped.
func ParseLevel(name string) slog.Level {
	switch strings.ToUpper(name) {
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

// Handler is a slog.Handler producing the line format described in the
// package comment.
type Handler struct {
	mu         *sync.Mutex
	w          io.Writer
	level      slog.Leveler
	timeFormat string
	prefix     string
	attrs      string
}

// NewHandler returns a Handler writing to w. Only cfg.Level and
// cfg.TimeFormat are consulted.
func NewHandler(w io.Writer, cfg Config) *Handler {
	tf := cfg.TimeFormat
	if tf == "" {
		tf = DefaultTimeFormat
	}
	return &Handler{
		mu:         &sync.Mutex{},
		w:          w,
		level:      ParseLevel(cfg.Level),
		timeFormat: tf,
	}
}

// Enabled implements slog.Handler.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	var sb strings.Builder
	sb.WriteByte('[')
	sb.WriteString(ts.Format(h.timeFormat))
	sb.WriteString("] - ")
	sb.WriteString(r.Level.String())
	sb.WriteString(". ")
	sb.WriteString(r.Message)
	sb.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&sb, h.prefix, a)
		return true
	})
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, sb.String())
	return err
}

// WithAttrs implements slog.Handler.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var sb strings.Builder
	sb.WriteString(h.attrs)
	for _, a := range attrs {
		writeAttr(&sb, h.prefix, a)
	}
	h2 := *h
	h2.attrs = sb.String()
	return &h2
}

// WithGroup implements slog.Handler. Group names prefix attribute keys.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.prefix = h.prefix + name + "."
	return &h2
}

func writeAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			writeAttr(sb, p, ga)
		}
		return
	}
	sb.WriteByte(' ')
	sb.WriteString(prefix)
	sb.WriteString(a.Key)
	sb.WriteByte('=')
	v := a.Value.String()
	if strings.ContainsAny(v, " \t\"=") || v == "" {
		v = fmt.Sprintf("%q", v)
	}
	sb.WriteString(v)
}
