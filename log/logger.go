package log

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/reglet-dev/vertical/config"
)

var (
	current atomic.Pointer[slog.Logger]
	initMu  sync.Mutex
	inited  bool

	discard = slog.New(slog.DiscardHandler)
)

// Logger returns the process-wide logger. It discards everything until Init.
func Logger() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return discard
}

// New builds a logger for cfg writing to w without installing it.
func New(cfg config.Log, w io.Writer) *slog.Logger {
	level, on := cfg.SlogLevel()
	if !on {
		return discard
	}

	if cfg.Style == "json" {
		return slog.New(NewHandler(w, WithLevel(level), WithSource(cfg.AddSource)))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}))
}

// Init installs the process-wide logger built from cfg. Only the first call
// has an effect; it reports whether this call installed the logger.
func Init(cfg config.Log) bool {
	initMu.Lock()
	defer initMu.Unlock()

	if inited {
		return false
	}
	inited = true
	current.Store(New(cfg, outputFor(cfg)))
	return true
}

// InitFromEnv loads config.Load and calls Init. A configuration error is
// reported through the installed default logger.
func InitFromEnv() bool {
	cfg, err := config.Load()
	installed := Init(cfg)
	if installed && err != nil {
		Logger().Error("Invalid logging configuration, using defaults", "error", err)
	}
	return installed
}

func outputFor(cfg config.Log) io.Writer {
	if cfg.Output == "stdout" {
		return os.Stdout
	}
	return os.Stderr
}
