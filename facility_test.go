package dlfcn

import (
	"github.com/pkg/errors"
)

// fakeFacility is an in-memory loader. It does not implement Diagnoser;
// wrap it in diagnosingFacility to get a reporting binding.
type fakeFacility struct {
	libs     map[string]uintptr
	symbols  map[uintptr]map[string]uintptr
	opened   []string
	modes    []int
	closed   []uintptr
	closeErr error
}

func newFakeFacility() *fakeFacility {
	return &fakeFacility{
		libs: map[string]uintptr{
			"":           0x1000,
			"libfake.so": 0x2000,
		},
		symbols: map[uintptr]map[string]uintptr{
			0x1000: {"main_symbol": 0xdead0000},
			0x2000: {"fake_add": 0xbeef0000, "fake_sub": 0xbeef0010},
		},
	}
}

func (f *fakeFacility) Open(name string, mode int) (uintptr, error) {
	f.opened = append(f.opened, name)
	f.modes = append(f.modes, mode)
	h, ok := f.libs[name]
	if !ok {
		cause := errors.Errorf("%s: cannot open shared object file: No such file or directory", name)
		return 0, errors.Wrapf(cause, "failed to load shared library: %s", name)
	}
	return h, nil
}

func (f *fakeFacility) Symbol(handle uintptr, name string) (uintptr, error) {
	if addr, ok := f.symbols[handle][name]; ok {
		return addr, nil
	}
	cause := errors.Errorf("undefined symbol: %s", name)
	return 0, errors.Wrapf(cause, "failed to resolve symbol: %s", name)
}

func (f *fakeFacility) Close(handle uintptr) error {
	f.closed = append(f.closed, handle)
	return f.closeErr
}

type diagnosingFacility struct {
	*fakeFacility
}

func (diagnosingFacility) Diagnose(err error) string {
	return errors.Cause(err).Error()
}

// guarded returns a buffer of n bytes surrounded by guard bytes, and a
// check that reports whether any guard byte was overwritten.
func guarded(n int) (buf []byte, intact func() bool) {
	const guard = 16
	raw := make([]byte, guard+n+guard)
	for i := range raw {
		raw[i] = 0xA5
	}
	// cap the slice so appends cannot reach the trailing guard either
	buf = raw[guard : guard+n : guard+n]
	return buf, func() bool {
		for i := 0; i < guard; i++ {
			if raw[i] != 0xA5 || raw[guard+n+i] != 0xA5 {
				return false
			}
		}
		return true
	}
}
