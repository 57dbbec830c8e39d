// Package log provides structured logging (slog) for the boundary adapter.
//
// Nothing is logged until Init is called; afterwards Logger returns the
// process-wide logger built from config.Log.
package log

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
)

// WireHandler implements slog.Handler by writing one LogMessageWire JSON
// object per line to an io.Writer.
type WireHandler struct {
	opts   handlerConfig
	mu     *sync.Mutex
	w      io.Writer
	attrs  []LogAttrWire
	groups string // dotted prefix for attributes added after WithGroup
}

// HandlerOption configures the WireHandler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	level     slog.Leveler
	addSource bool
}

// defaultHandlerConfig returns the default configuration.
func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		level: slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report.
func WithLevel(level slog.Leveler) HandlerOption {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) HandlerOption {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// NewHandler creates a new WireHandler writing to w.
func NewHandler(w io.Writer, opts ...HandlerOption) *WireHandler {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &WireHandler{opts: cfg, mu: &sync.Mutex{}, w: w}
}

// Enabled reports whether the handler handles records at the given level.
func (h *WireHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.level.Level()
}

// Handle encodes the record and writes it as a single line.
func (h *WireHandler) Handle(_ context.Context, record slog.Record) error {
	msg := LogMessageWire{
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}
	if len(h.attrs) > 0 {
		msg.Attrs = append(msg.Attrs, h.attrs...)
	}
	record.Attrs(func(attr slog.Attr) bool {
		msg.Attrs = flattenAttr(h.groups, attr, msg.Attrs)
		return true
	})

	if h.opts.addSource && record.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{record.PC})
		frame, _ := frames.Next()
		msg.Source = fmt.Sprintf("%s:%d", frame.File, frame.Line)
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal log message: %w", err)
	}
	data = append(data, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.w.Write(data)
	return err
}

// WithAttrs returns a new WireHandler that includes the given attributes.
func (h *WireHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	newHandler := *h
	newHandler.attrs = append([]LogAttrWire(nil), h.attrs...)
	for _, attr := range attrs {
		newHandler.attrs = flattenAttr(h.groups, attr, newHandler.attrs)
	}
	return &newHandler
}

// WithGroup returns a new WireHandler that qualifies later attributes with name.
func (h *WireHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	newHandler := *h
	if h.groups == "" {
		newHandler.groups = name
	} else {
		newHandler.groups = h.groups + "." + name
	}
	return &newHandler
}
