//go:build !windows

package dlfcn

import (
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/pkg/errors"
)

const (
	ModeLazy   = purego.RTLD_LAZY
	ModeNow    = purego.RTLD_NOW
	ModeGlobal = purego.RTLD_GLOBAL
	ModeLocal  = purego.RTLD_LOCAL
)

// libc entry points that purego does not expose with C semantics:
// dlopen has to receive NULL, not "", to name the process image.
var (
	libcOnce    sync.Once
	libcErr     error
	libcDlopen  func(name unsafe.Pointer, mode int32) uintptr
	libcDlerror func() unsafe.Pointer
)

func bindLibc() error {
	libcOnce.Do(func() {
		open, err := purego.Dlsym(purego.RTLD_DEFAULT, "dlopen")
		if err != nil {
			libcErr = errors.Wrap(err, "failed to resolve dlopen")
			return
		}
		dlerr, err := purego.Dlsym(purego.RTLD_DEFAULT, "dlerror")
		if err != nil {
			libcErr = errors.Wrap(err, "failed to resolve dlerror")
			return
		}
		purego.RegisterFunc(&libcDlopen, open)
		purego.RegisterFunc(&libcDlerror, dlerr)
	})
	return libcErr
}

type systemFacility struct{}

func (systemFacility) Open(name string, mode int) (uintptr, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if name == "" {
		if err := bindLibc(); err != nil {
			return 0, err
		}
		h := libcDlopen(nil, int32(mode))
		if h == 0 {
			msg := cString(libcDlerror())
			if msg == "" {
				msg = "dlopen returned a null handle"
			}
			return 0, errors.Wrap(errors.New(msg), "failed to open process image")
		}
		return h, nil
	}
	libHandle, err := purego.Dlopen(name, mode)
	if err == nil && libHandle == 0 {
		err = errors.New("dlopen returned a null handle")
	}
	if err != nil {
		return 0, errors.Wrapf(err, "failed to load shared library: %s", name)
	}
	return libHandle, nil
}

func (systemFacility) Symbol(handle uintptr, name string) (uintptr, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	addr, err := purego.Dlsym(handle, name)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to resolve symbol: %s", name)
	}
	return addr, nil
}

func (systemFacility) Close(handle uintptr) error {
	if err := purego.Dlclose(handle); err != nil {
		return errors.Errorf("failed to close library: %s", err.Error())
	}
	return nil
}

// Diagnose returns the dlerror text carried by err.
func (systemFacility) Diagnose(err error) string {
	if err == nil {
		return ""
	}
	return errors.Cause(err).Error()
}
