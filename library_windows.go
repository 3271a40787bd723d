//go:build windows

package dlfcn

import (
	"github.com/pkg/errors"

	"golang.org/x/sys/windows"
)

// LoadLibrary has no binding modes; the constants exist so options and
// configuration stay portable.
const (
	ModeLazy   = 0
	ModeNow    = 0
	ModeGlobal = 0
	ModeLocal  = 0
)

type systemFacility struct{}

func (systemFacility) Open(name string, _ int) (uintptr, error) {
	if name == "" {
		// GetModuleHandleEx without UNCHANGED_REFCOUNT takes a reference,
		// so FreeLibrary on close stays balanced.
		var h windows.Handle
		if err := windows.GetModuleHandleEx(0, nil, &h); err != nil {
			return 0, errors.Wrap(err, "failed to open process image")
		}
		return uintptr(h), nil
	}
	handle, err := windows.LoadLibrary(name)
	if err == nil && handle == 0 {
		err = errors.New("LoadLibrary returned a null handle")
	}
	if err != nil {
		return 0, errors.Wrapf(err, "failed to load shared library: %s", name)
	}
	return uintptr(handle), nil
}

func (systemFacility) Symbol(handle uintptr, name string) (uintptr, error) {
	proc, err := windows.GetProcAddress(windows.Handle(handle), name)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to resolve symbol: %s", name)
	}
	return proc, nil
}

func (systemFacility) Close(handle uintptr) error {
	if handle == 0 {
		return errors.New("invalid library handle")
	}
	if err := windows.FreeLibrary(windows.Handle(handle)); err != nil {
		return errors.Errorf("failed to close library: %s", err.Error())
	}
	return nil
}

// Diagnose returns the system message for the Win32 error carried by err.
func (systemFacility) Diagnose(err error) string {
	if err == nil {
		return ""
	}
	return errors.Cause(err).Error()
}
