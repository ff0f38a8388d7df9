package loghandler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

const (
	colorReset   = "\033[0m"
	colorDim     = "\033[2m"
	colorCyan    = "\033[36m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBoldRed = "\033[1;31m"
)

// Options configures the Handler.
type Options struct {
	Level    slog.Level
	UseColor bool
}

// Handler is a compact, optionally colored slog.Handler for CLI output.
type Handler struct {
	w       io.Writer
	opts    Options
	mu      *sync.Mutex
	attrs   []slog.Attr
	groups  []string
	bufPool *sync.Pool
}

// NewHandler creates a new Handler writing to w.
func NewHandler(w io.Writer, opts *Options) *Handler {
	h := &Handler{
		w:  w,
		mu: &sync.Mutex{},
		bufPool: &sync.Pool{
			New: func() any { return new(bytes.Buffer) },
		},
	}
	if opts != nil {
		h.opts = *opts
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level
}

// Handle formats and writes the log record.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	buf := h.bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer h.bufPool.Put(buf)

	h.writeColored(buf, colorDim, r.Time.Format("15:04:05"))
	buf.WriteByte(' ')
	h.writeLevel(buf, r.Level)
	if r.Message != "" {
		buf.WriteByte(' ')
		buf.WriteString(r.Message)
	}

	for _, a := range h.attrs {
		h.writeAttr(buf, a, nil)
	}
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(buf, a, h.groups)
		return true
	})

	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := h.clone()
	for _, a := range attrs {
		h2.attrs = append(h2.attrs, qualifyAttr(a, h.groups))
	}
	return h2
}

// WithGroup returns a new Handler with the given group name appended.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := h.clone()
	h2.groups = append(h2.groups, name)
	return h2
}

func (h *Handler) clone() *Handler {
	return &Handler{
		w:       h.w,
		opts:    h.opts,
		mu:      h.mu,
		attrs:   append([]slog.Attr(nil), h.attrs...),
		groups:  append([]string(nil), h.groups...),
		bufPool: h.bufPool,
	}
}

func (h *Handler) writeLevel(buf *bytes.Buffer, level slog.Level) {
	switch {
	case level >= slog.LevelError:
		h.writeColored(buf, colorBoldRed, "ERR")
	case level >= slog.LevelWarn:
		h.writeColored(buf, colorYellow, "WRN")
	case level >= slog.LevelInfo:
		h.writeColored(buf, colorGreen, "INF")
	default:
		h.writeColored(buf, colorCyan, "DBG")
	}
}

func (h *Handler) writeColored(buf *bytes.Buffer, color, s string) {
	if h.opts.UseColor {
		buf.WriteString(color)
		buf.WriteString(s)
		buf.WriteString(colorReset)
		return
	}
	buf.WriteString(s)
}

func (h *Handler) writeAttr(buf *bytes.Buffer, a slog.Attr, groups []string) {
	a = qualifyAttr(a, groups)
	if a.Equal(slog.Attr{}) {
		return
	}

	buf.WriteByte(' ')
	h.writeColored(buf, colorDim, a.Key+"=")
	buf.WriteString(formatValue(a.Value))
}

// qualifyAttr resolves the value and prefixes the key with group names.
func qualifyAttr(a slog.Attr, groups []string) slog.Attr {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return a
	}
	for i := len(groups) - 1; i >= 0; i-- {
		a.Key = groups[i] + "." + a.Key
	}
	return a
}

func formatValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	default:
		return fmt.Sprint(v.Any())
	}
}
