// Package errors provides domain-specific error types for the line reader and
// its foreign-call boundary.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"
	"io/fs"

	"github.com/reglet-dev/vertical/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// Error kinds reported by OpenError.Kind.
const (
	KindNotFound         = "not_found"
	KindPermissionDenied = "permission_denied"
	KindIO               = "io"
)

// DetailedError is an interface for custom error types that can convert themselves
// to a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to our structured ErrorDetail.
// This function recognizes custom error types and categorizes them appropriately.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// OpenError represents a failure to open a line source.
type OpenError struct {
	Err  error
	Path string
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("failed to open %q: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// Kind classifies the underlying OS failure.
func (e *OpenError) Kind() string {
	switch {
	case stdErrors.Is(e.Err, fs.ErrNotExist):
		return KindNotFound
	case stdErrors.Is(e.Err, fs.ErrPermission):
		return KindPermissionDenied
	default:
		return KindIO
	}
}

// ToErrorDetail implements DetailedError.
func (e *OpenError) ToErrorDetail() *entities.ErrorDetail {
	kind := e.Kind()
	return &entities.ErrorDetail{
		Message:    e.Error(),
		Type:       "io",
		Code:       kind,
		IsNotFound: kind == KindNotFound,
		Details:    map[string]any{"path": e.Path},
	}
}

// ReadError represents an I/O failure while reading the next line.
type ReadError struct {
	Err  error
	Line int // 1-based number of the line being read
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read failed at line %d: %v", e.Line, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ReadError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "io", Code: KindIO}
}

// DecodeError reports a line that is not representable as boundary text.
type DecodeError struct {
	Reason string
	Line   int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// ToErrorDetail implements DetailedError.
func (e *DecodeError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "decode", Code: "invalid_text"}
}

// PreconditionError represents a caller contract violation at the boundary,
// such as a null pointer where a value is required.
type PreconditionError struct {
	Operation string
	Reason    string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: precondition violated: %s", e.Operation, e.Reason)
}

// ToErrorDetail implements DetailedError.
func (e *PreconditionError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "precondition", Code: e.Operation}
}

// AllocationError represents a boundary allocation that would exceed the configured limit.
type AllocationError struct {
	Requested int // Requested allocation size
	Current   int // Current total allocated
	Limit     int // Maximum allowed
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("memory allocation failed: requested %d bytes, current %d bytes, limit %d bytes",
		e.Requested, e.Current, e.Limit)
}

// ToErrorDetail implements DetailedError.
func (e *AllocationError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "allocation", Code: "memory_limit"}
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "config", Code: e.Field}
}

// PanicError wraps a value recovered from a panic inside a boundary call.
type PanicError struct {
	Value     any
	Operation string
	Stack     []byte
}

func (e *PanicError) Error() string {
	var msg string
	switch v := e.Value.(type) {
	case error:
		msg = v.Error()
	case string:
		msg = v
	default:
		msg = fmt.Sprintf("%v", v)
	}
	return fmt.Sprintf("panic in %s: %s", e.Operation, msg)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// ToErrorDetail implements DetailedError.
func (e *PanicError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "panic", Code: e.Operation}
}
