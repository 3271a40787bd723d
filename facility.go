package dlfcn

// Facility is the process-wide dynamic loader. Its state (the set of
// loaded libraries and their reference counts) belongs to the platform;
// implementations must not cache handles of their own.
type Facility interface {
	// Open loads the named library, or returns a handle for the process
	// image when name is empty.
	Open(name string, mode int) (uintptr, error)
	Symbol(handle uintptr, name string) (uintptr, error)
	Close(handle uintptr) error
}

// Diagnoser is implemented by facilities that can turn a failure into the
// platform's diagnostic text after the fact. Bindings over a Diagnoser
// expose Dlerror; bindings over any other Facility do not.
type Diagnoser interface {
	Diagnose(err error) string
}

// SystemFacility returns the loader of the running platform.
func SystemFacility() Facility {
	return systemFacility{}
}
