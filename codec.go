package dlfcn

import (
	"encoding/binary"
	"unicode/utf8"
	"unsafe"
)

const (
	// SizeofPointer is the byte length of an address buffer.
	SizeofPointer = int(unsafe.Sizeof(uintptr(0)))
	// SizeofHandle is the byte length of a handle buffer.
	SizeofHandle = 256

	errLenOffset  = SizeofPointer
	errTextOffset = errLenOffset + 4
	// ErrorCapacity is the number of diagnostic bytes a handle buffer keeps.
	ErrorCapacity = SizeofHandle - errTextOffset

	ellipsis = "…"
)

func putWord(buf []byte, v uintptr) {
	if SizeofPointer == 8 {
		binary.NativeEndian.PutUint64(buf[:8], uint64(v))
		return
	}
	binary.NativeEndian.PutUint32(buf[:4], uint32(v))
}

func getWord(buf []byte) uintptr {
	if SizeofPointer == 8 {
		return uintptr(binary.NativeEndian.Uint64(buf[:8]))
	}
	return uintptr(binary.NativeEndian.Uint32(buf[:4]))
}

// putHandle stores the native handle in the first word of a handle buffer.
func putHandle(buf []byte, h uintptr) {
	putWord(buf[:SizeofPointer], h)
}

func getHandle(buf []byte) uintptr {
	return getWord(buf[:SizeofPointer])
}

// putDiagnostic records msg in the handle buffer. Loader messages end with
// the reason, so a message that does not fit keeps its tail behind an
// ellipsis, cut on a rune boundary. An empty msg clears the record.
func putDiagnostic(buf []byte, msg string) {
	if len(msg) > ErrorCapacity {
		start := len(msg) - (ErrorCapacity - len(ellipsis))
		for start < len(msg) && !utf8.RuneStart(msg[start]) {
			start++
		}
		msg = ellipsis + msg[start:]
	}
	binary.NativeEndian.PutUint32(buf[errLenOffset:errTextOffset], uint32(len(msg)))
	copy(buf[errTextOffset:SizeofHandle], msg)
}

func getDiagnostic(buf []byte) string {
	n := int(binary.NativeEndian.Uint32(buf[errLenOffset:errTextOffset]))
	if n == 0 {
		return ""
	}
	// a garbage length means the buffer was never populated by Open
	if n < 0 || n > ErrorCapacity {
		n = ErrorCapacity
	}
	return string(buf[errTextOffset : errTextOffset+n])
}

// PutAddress writes a resolved address into an address buffer.
func PutAddress(buf []byte, addr uintptr) {
	putWord(buf[:SizeofPointer], addr)
}

// Address reads the address stored in an address buffer.
func Address(buf []byte) uintptr {
	return getWord(buf[:SizeofPointer])
}
