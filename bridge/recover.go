package bridge

import (
	"runtime/debug"

	"github.com/reglet-dev/vertical/domain/errors"
)

// recoverPanic stops a panic at the boundary. It must be deferred directly.
// fallback resets the named results to their null sentinel and releases
// whatever the call had acquired.
func (a *Adapter) recoverPanic(op string, fallback func()) {
	r := recover()
	if r == nil {
		return
	}
	err := &errors.PanicError{Operation: op, Value: r, Stack: debug.Stack()}
	if fallback != nil {
		func() {
			defer func() { _ = recover() }()
			fallback()
		}()
	}

	func() {
		// A failing logger must not take the host down either.
		defer func() { _ = recover() }()
		a.logger().Error("Recovered panic in native code",
			append(errorAttrs(err), "stack", string(err.Stack))...)
	}()
}
