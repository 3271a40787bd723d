//go:build !windows

package dlfcn

import (
	"unsafe"
)

// cString copies a NUL-terminated string owned by native code.
func cString(p unsafe.Pointer) string {
	if p == nil {
		return ""
	}
	var n uintptr
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(p), n))
}
