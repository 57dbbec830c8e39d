// Package bridge implements the boundary adapter behind the C entry points.
//
// Every operation is safe to call from foreign code: panics are recovered,
// null pointers are checked before use, and failures are reported to the
// host only as a null return value. Diagnostic detail goes to the log.
//
// Ownership rules for the host:
//   - a non-null handle from VerticalNew must be passed to VerticalFree once;
//   - a non-null string from VerticalNextLine must be passed to StringFree once;
//   - a null string means the vertical is exhausted or failed, and stays null.
package bridge

import (
	stdErrors "errors"
	"io"
	"log/slog"
	"strings"
	"unsafe"

	"github.com/google/uuid"

	"github.com/reglet-dev/vertical/domain/errors"
	"github.com/reglet-dev/vertical/domain/ports"
	"github.com/reglet-dev/vertical/infrastructure/filesource"
	"github.com/reglet-dev/vertical/internal/abi"
	vlog "github.com/reglet-dev/vertical/log"
)

// Boundary operation names, as exported to C.
const (
	OpInitLogger   = "init_logger"
	OpStringFree   = "string_free"
	OpVerticalNew  = "vertical_new"
	OpVerticalFree = "vertical_free"
	OpNextLine     = "vertical_next_line"
)

// vertical is the Go value an opaque handle stands for.
type vertical struct {
	source ports.LineSource
	path   string
	id     uuid.UUID
	failed bool // set after the first error; later reads return null
}

// Adapter carries the dependencies of the boundary operations.
type Adapter struct {
	logger func() *slog.Logger
	opener ports.SourceOpener
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithLogger fixes the logger instead of following the process-wide one.
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = func() *slog.Logger { return l }
	}
}

// WithOpener replaces the file-backed line source.
func WithOpener(o ports.SourceOpener) Option {
	return func(a *Adapter) {
		a.opener = o
	}
}

// New creates an Adapter. By default it reads files with filesource and logs
// through log.Logger, resolved on every call so that a later InitLogger applies.
func New(opts ...Option) *Adapter {
	a := &Adapter{
		logger: vlog.Logger,
		opener: filesource.Opener(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// InitLogger configures process-wide logging from the environment. Only the
// first call has an effect.
func (a *Adapter) InitLogger() {
	defer a.recoverPanic(OpInitLogger, nil)
	vlog.InitFromEnv()
}

// StringFree releases a string returned by VerticalNextLine. Null is a no-op;
// a pointer that is unknown or already freed is ignored and logged.
func (a *Adapter) StringFree(p unsafe.Pointer) {
	defer a.recoverPanic(OpStringFree, nil)

	if p == nil {
		return
	}
	if !abi.FreeString(p) {
		a.logger().Warn("Ignoring free of unknown string")
		return
	}
	a.logger().Debug("Deallocating string")
}

// VerticalNew opens the file named by the borrowed C string path and returns
// an opaque handle, or null on failure.
func (a *Adapter) VerticalNew(path unsafe.Pointer) (handle unsafe.Pointer) {
	var src ports.LineSource
	defer a.recoverPanic(OpVerticalNew, func() {
		if handle != nil {
			abi.ReleaseHandle(handle)
			handle = nil
		}
		if src != nil {
			_ = src.Close()
		}
	})

	log := a.logger()
	if path == nil {
		a.logPrecondition(OpVerticalNew, "null path")
		return nil
	}
	p, err := abi.GoString(path)
	if err != nil {
		a.logPrecondition(OpVerticalNew, "path is not valid UTF-8")
		return nil
	}

	src, err = a.opener.Open(p)
	if err != nil {
		log.Error("Error in native code while opening", append([]any{"path", p}, errorAttrs(err)...)...)
		return nil
	}

	v := &vertical{source: src, path: p, id: uuid.New()}
	handle, err = abi.NewHandle(v)
	if err != nil {
		_ = src.Close()
		src = nil
		log.Error("Error in native code while allocating Vertical", append([]any{"path", p}, errorAttrs(err)...)...)
		return nil
	}

	log.Debug("Allocating Vertical", "path", p, "vertical_id", v.id.String())
	return handle
}

// VerticalFree closes the vertical behind handle and frees the handle. Null is
// a no-op; a handle that is unknown or already freed is ignored and logged.
func (a *Adapter) VerticalFree(handle unsafe.Pointer) {
	defer a.recoverPanic(OpVerticalFree, nil)

	if handle == nil {
		return
	}
	log := a.logger()

	val, ok := abi.ReleaseHandle(handle)
	if !ok {
		log.Warn("Ignoring free of unknown Vertical handle")
		return
	}
	v, ok := val.(*vertical)
	if !ok {
		log.Warn("Ignoring free of handle that is not a Vertical")
		return
	}

	if err := v.source.Close(); err != nil {
		log.Warn("Error in native code while closing Vertical",
			append([]any{"vertical_id", v.id.String()}, errorAttrs(err)...)...)
	}
	log.Debug("Deallocating Vertical", "vertical_id", v.id.String(), "lines_read", v.source.Info().LinesRead)
}

// VerticalNextLine returns the next line of the vertical as a new C string
// owned by the host, or null once the vertical is exhausted or has failed.
func (a *Adapter) VerticalNextLine(handle unsafe.Pointer) (line unsafe.Pointer) {
	var v *vertical
	defer a.recoverPanic(OpNextLine, func() {
		line = nil
		if v != nil {
			v.failed = true
		}
	})

	log := a.logger()
	v, err := lookup(handle)
	if err != nil {
		a.logError(err)
		return nil
	}
	if v.failed {
		return nil
	}

	text, err := v.source.Next()
	if stdErrors.Is(err, io.EOF) {
		return nil
	}
	if err == nil && strings.IndexByte(text, 0) >= 0 {
		err = &errors.DecodeError{Line: v.source.Info().LinesRead, Reason: "line contains a NUL byte"}
	}
	if err != nil {
		v.failed = true
		log.Error("Error in native code while reading next Vertical line",
			append([]any{"vertical_id", v.id.String()}, errorAttrs(err)...)...)
		return nil
	}

	line, err = abi.AllocString(text)
	if err != nil {
		v.failed = true
		log.Error("Error in native code while allocating Vertical line",
			append([]any{"vertical_id", v.id.String()}, errorAttrs(err)...)...)
		return nil
	}

	log.Debug("Allocating string", "line", text, "vertical_id", v.id.String())
	return line
}

func lookup(handle unsafe.Pointer) (*vertical, error) {
	if handle == nil {
		return nil, &errors.PreconditionError{Operation: OpNextLine, Reason: "null handle"}
	}
	val, ok := abi.LoadHandle(handle)
	if !ok {
		return nil, &errors.PreconditionError{Operation: OpNextLine, Reason: "unknown or freed handle"}
	}
	v, ok := val.(*vertical)
	if !ok {
		return nil, &errors.PreconditionError{Operation: OpNextLine, Reason: "handle is not a Vertical"}
	}
	return v, nil
}

func (a *Adapter) logPrecondition(op, reason string) {
	a.logError(&errors.PreconditionError{Operation: op, Reason: reason})
}

func (a *Adapter) logError(err error) {
	a.logger().Error("Invalid call into native code", errorAttrs(err)...)
}

// errorAttrs renders err with its category and structured detail for the log.
func errorAttrs(err error) []any {
	detail := errors.ToErrorDetail(err)
	return []any{
		"error", err,
		"error_type", detail.Type,
		"error_code", detail.Code,
		"error_detail", detail,
	}
}
