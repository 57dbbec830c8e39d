// Package abi manages memory that crosses the C boundary: NUL-terminated
// strings handed to the host, and opaque handles standing in for Go values.
//
// Every allocation is tracked until it is released through the matching call,
// which makes leaks and double frees observable through Stats.
package abi

/*
#include <stdint.h>
#include <stdlib.h>
*/
import "C"

import (
	stdErrors "errors"
	"runtime/cgo"
	"strings"
	"sync"
	"unicode/utf8"
	"unsafe"

	"github.com/reglet-dev/vertical/domain/errors"
)

// NoLimit disables the cap on bytes held by the host. It is the default.
const NoLimit = 0

var (
	// ErrNullPointer is returned when a required pointer is null.
	ErrNullPointer = stdErrors.New("null pointer")
	// ErrInvalidUTF8 is returned when a borrowed C string is not valid UTF-8.
	ErrInvalidUTF8 = stdErrors.New("invalid UTF-8")
	// ErrEmbeddedNUL is returned for strings that cannot be NUL-terminated.
	ErrEmbeddedNUL = stdErrors.New("string contains a NUL byte")
)

// handleSize is the size of the C allocation backing one handle.
var handleSize = int(unsafe.Sizeof(C.uintptr_t(0)))

// memoryManager tracks every allocation handed to the host. Strings map to
// their size including the terminator; handles map to the cgo.Handle they hold.
var memoryManager = struct {
	sync.Mutex
	strings        map[unsafe.Pointer]int
	handles        map[unsafe.Pointer]cgo.Handle
	totalAllocated int
	maxTotal       int
}{
	strings:  make(map[unsafe.Pointer]int),
	handles:  make(map[unsafe.Pointer]cgo.Handle),
	maxTotal: NoLimit,
}

// Option configures the memory manager.
type Option func(*options)

type options struct {
	maxTotal int
}

// WithMaxTotalAllocations caps the bytes held by the host at once. Once the cap
// is reached, further allocations fail with an AllocationError. Non-positive
// values remove the cap.
func WithMaxTotalAllocations(n int) Option {
	return func(o *options) {
		o.maxTotal = max(n, NoLimit)
	}
}

// Configure applies options to the process-wide memory manager.
func Configure(opts ...Option) {
	memoryManager.Lock()
	defer memoryManager.Unlock()

	o := options{maxTotal: memoryManager.maxTotal}
	for _, opt := range opts {
		opt(&o)
	}
	memoryManager.maxTotal = o.maxTotal
}

// reserve accounts for size bytes. The caller must hold the lock.
func reserve(size int) error {
	limit := memoryManager.maxTotal
	if limit != NoLimit && memoryManager.totalAllocated+size > limit {
		return &errors.AllocationError{
			Requested: size,
			Current:   memoryManager.totalAllocated,
			Limit:     limit,
		}
	}
	memoryManager.totalAllocated += size
	return nil
}

// release gives back size bytes. The caller must hold the lock.
func release(size int) {
	memoryManager.totalAllocated -= size
	if memoryManager.totalAllocated < 0 {
		memoryManager.totalAllocated = 0
	}
}

// AllocString copies s into a new C string owned by the host until FreeString.
// The empty string yields a non-null pointer to a lone terminator.
func AllocString(s string) (unsafe.Pointer, error) {
	if strings.IndexByte(s, 0) >= 0 {
		return nil, ErrEmbeddedNUL
	}

	memoryManager.Lock()
	defer memoryManager.Unlock()

	size := len(s) + 1
	if err := reserve(size); err != nil {
		return nil, err
	}

	p := unsafe.Pointer(C.CString(s))
	memoryManager.strings[p] = size
	return p, nil
}

// FreeString releases a string returned by AllocString. Null, untracked and
// already-freed pointers are left alone and reported as false.
func FreeString(p unsafe.Pointer) bool {
	if p == nil {
		return false
	}

	memoryManager.Lock()
	defer memoryManager.Unlock()

	size, ok := memoryManager.strings[p]
	if !ok {
		return false
	}
	delete(memoryManager.strings, p)
	release(size)
	C.free(p)
	return true
}

// GoString copies a borrowed NUL-terminated C string into Go memory.
func GoString(p unsafe.Pointer) (string, error) {
	if p == nil {
		return "", ErrNullPointer
	}
	s := C.GoString((*C.char)(p))
	if !utf8.ValidString(s) {
		return "", ErrInvalidUTF8
	}
	return s, nil
}

// NewHandle stores v behind an opaque C pointer owned by the host until
// ReleaseHandle. Only C memory crosses the boundary; v stays in Go.
func NewHandle(v any) (unsafe.Pointer, error) {
	memoryManager.Lock()
	defer memoryManager.Unlock()

	if err := reserve(handleSize); err != nil {
		return nil, err
	}

	p := C.malloc(C.size_t(handleSize))
	h := cgo.NewHandle(v)
	*(*C.uintptr_t)(p) = C.uintptr_t(h)
	memoryManager.handles[p] = h
	return p, nil
}

// LoadHandle returns the value behind a live handle.
func LoadHandle(p unsafe.Pointer) (any, bool) {
	if p == nil {
		return nil, false
	}

	memoryManager.Lock()
	defer memoryManager.Unlock()

	h, ok := memoryManager.handles[p]
	if !ok {
		return nil, false
	}
	return h.Value(), true
}

// ReleaseHandle invalidates a handle, frees its C allocation and returns the
// value it held so the caller can release it.
func ReleaseHandle(p unsafe.Pointer) (any, bool) {
	if p == nil {
		return nil, false
	}

	memoryManager.Lock()
	defer memoryManager.Unlock()

	h, ok := memoryManager.handles[p]
	if !ok {
		return nil, false
	}
	delete(memoryManager.handles, p)
	release(handleSize)

	v := h.Value()
	h.Delete()
	C.free(p)
	return v, true
}

// Stats is a snapshot of the allocations currently owned by the host.
type Stats struct {
	Strings int // live strings
	Handles int // live handles
	Bytes   int // total bytes, terminators and handle slots included
}

// CurrentStats returns the live allocation counts.
func CurrentStats() Stats {
	memoryManager.Lock()
	defer memoryManager.Unlock()

	return Stats{
		Strings: len(memoryManager.strings),
		Handles: len(memoryManager.handles),
		Bytes:   memoryManager.totalAllocated,
	}
}

// FreeAllTracked frees every tracked allocation. Values behind handles are
// dropped without being closed. Intended for shutdown and test isolation.
func FreeAllTracked() {
	memoryManager.Lock()
	defer memoryManager.Unlock()

	for p := range memoryManager.strings {
		C.free(p)
		delete(memoryManager.strings, p)
	}
	for p, h := range memoryManager.handles {
		h.Delete()
		C.free(p)
		delete(memoryManager.handles, p)
	}
	memoryManager.totalAllocated = 0
}
