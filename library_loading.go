package dlfcn

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// LibraryFileName returns the platform file name for a library base name,
// e.g. "m" becomes "libm.so" on linux and "libm.dylib" on darwin. Names
// that already carry a platform suffix are returned unchanged.
func LibraryFileName(base string) string {
	switch runtime.GOOS {
	case "darwin", "ios":
		if strings.HasSuffix(base, ".dylib") {
			return base
		}
		return fmt.Sprintf("lib%s.dylib", base)
	case "windows":
		if strings.HasSuffix(strings.ToLower(base), ".dll") {
			return base
		}
		return base + ".dll"
	default:
		if strings.Contains(base, ".so") {
			return base
		}
		return fmt.Sprintf("lib%s.so", base)
	}
}

// SystemLibrary returns the name of the library that provides the
// platform's C runtime entry points (malloc, getpid, ...). On windows it is
// kernel32, which every process has loaded.
func SystemLibrary() string {
	switch runtime.GOOS {
	case "darwin", "ios":
		return "/usr/lib/libSystem.B.dylib"
	case "linux":
		if isMusl() {
			return "libc.so"
		}
		return "libc.so.6"
	case "freebsd":
		return "libc.so.7"
	case "windows":
		return "kernel32.dll"
	default:
		return LibraryFileName("c")
	}
}

// isMusl checks if the current Linux system uses musl libc
func isMusl() bool {
	if _, err := os.Stat("/lib/ld-musl-x86_64.so.1"); err == nil {
		return true
	}
	if _, err := os.Stat("/lib/ld-musl-aarch64.so.1"); err == nil {
		return true
	}
	return false
}
