package bridge

import "unsafe"

// std backs the package-level functions called by the C entry points.
var std = New()

// Default returns the adapter used by the package-level functions.
func Default() *Adapter { return std }

// InitLogger calls Default().InitLogger.
func InitLogger() { std.InitLogger() }

// StringFree calls Default().StringFree.
func StringFree(p unsafe.Pointer) { std.StringFree(p) }

// VerticalNew calls Default().VerticalNew.
func VerticalNew(path unsafe.Pointer) unsafe.Pointer { return std.VerticalNew(path) }

// VerticalFree calls Default().VerticalFree.
func VerticalFree(handle unsafe.Pointer) { std.VerticalFree(handle) }

// VerticalNextLine calls Default().VerticalNextLine.
func VerticalNextLine(handle unsafe.Pointer) unsafe.Pointer { return std.VerticalNextLine(handle) }
