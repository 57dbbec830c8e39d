// Command libvertical is built as a C shared library exposing a sequential
// line reader:
//
//	go build -buildmode=c-shared -o libvertical.so ./cmd/libvertical
//
// The generated libvertical.h declares:
//
//	void  init_logger(void);
//	void  string_free(char* s);
//	void* vertical_new(char* path);
//	void  vertical_free(void* handle);
//	char* vertical_next_line(void* handle);
//
// Strings returned by vertical_next_line belong to the caller and must be
// released with string_free; handles returned by vertical_new must be
// released with vertical_free. Null means failure or end of input; details
// are written to the log configured by init_logger (see VERTICAL_LOG).
package main

import "C"

import (
	"unsafe"

	"github.com/reglet-dev/vertical/bridge"
)

//export init_logger
//nolint:revive // snake_case names form the C ABI
func init_logger() {
	bridge.InitLogger()
}

//export string_free
//nolint:revive // snake_case names form the C ABI
func string_free(s *C.char) {
	bridge.StringFree(unsafe.Pointer(s))
}

//export vertical_new
//nolint:revive // snake_case names form the C ABI
func vertical_new(path *C.char) unsafe.Pointer {
	return bridge.VerticalNew(unsafe.Pointer(path))
}

//export vertical_free
//nolint:revive // snake_case names form the C ABI
func vertical_free(handle unsafe.Pointer) {
	bridge.VerticalFree(handle)
}

//export vertical_next_line
//nolint:revive // snake_case names form the C ABI
func vertical_next_line(handle unsafe.Pointer) *C.char {
	return (*C.char)(bridge.VerticalNextLine(handle))
}

func main() {}
