package dlfcn

// Export names published to runtime glue.
const (
	ExportSizeofHandle  = "sizeof_handle"
	ExportSizeofPointer = "sizeof_pointer"
	ExportDlopen        = "dlopen"
	ExportDlclose       = "dlclose"
	ExportDlsym         = "dlsym"
	ExportDlerror       = "dlerror"
)

// Exports returns the surface of m keyed by export name. ExportDlerror is
// present only when m implements ErrorReporter, so glue code can probe for
// the key instead of calling and checking for a placeholder.
func Exports(m Module) map[string]any {
	exports := map[string]any{
		ExportSizeofHandle:  uint32(SizeofHandle),
		ExportSizeofPointer: uint32(SizeofPointer),
		ExportDlopen:        m.Open,
		ExportDlclose:       m.Close,
		ExportDlsym:         m.Dlsym,
	}
	if r, ok := m.(ErrorReporter); ok {
		exports[ExportDlerror] = r.Dlerror
	}
	return exports
}
