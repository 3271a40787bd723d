package dlfcn

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrClosed is returned when a Library is used after Close.
var ErrClosed = errors.New("library is closed")

// Library owns one reference to a loaded library. Close releases it
// exactly once and waits for in-flight Lookup and Encode calls. There is
// no finalizer: a Library that is never closed keeps the library loaded
// until the process exits.
type Library struct {
	name     string
	handle   uintptr
	facility Facility
	logger   *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// Load opens the named library. An empty name opens the process image.
func Load(name string, opts ...Option) (*Library, error) {
	if strings.IndexByte(name, 0) >= 0 {
		return nil, &ArgumentError{Value: name}
	}
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load library")
	}
	h, err := cfg.facility.Open(name, cfg.mode)
	if err != nil {
		return nil, err
	}
	cfg.logger.Debug("library loaded", zap.String("name", name), zap.Uintptr("handle", h))
	return &Library{name: name, handle: h, facility: cfg.facility, logger: cfg.logger}, nil
}

// LoadSelf opens the process image.
func LoadSelf(opts ...Option) (*Library, error) {
	return Load("", opts...)
}

// Decode takes ownership of a handle buffer populated by a successful
// Module.Open. The buffer must not be closed through the Module afterwards.
func Decode(handle []byte, opts ...Option) (*Library, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode handle")
	}
	h := getHandle(handle)
	if h == 0 {
		return nil, errors.New("handle buffer does not hold an open library")
	}
	return &Library{handle: h, facility: cfg.facility, logger: cfg.logger}, nil
}

// Name is the name the library was loaded with; empty for the process
// image and for decoded handles.
func (l *Library) Name() string { return l.name }

// Handle returns the native handle, or 0 after Close.
func (l *Library) Handle() uintptr {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return 0
	}
	return l.handle
}

// Lookup resolves symbol. The address stays valid only while the library
// is open.
func (l *Library) Lookup(symbol string) (uintptr, error) {
	if symbol == "" {
		return 0, errors.New("symbol name cannot be empty")
	}
	if strings.IndexByte(symbol, 0) >= 0 {
		return 0, errors.Errorf("symbol name %q contains a NUL byte", symbol)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return 0, ErrClosed
	}
	return l.facility.Symbol(l.handle, symbol)
}

// Encode writes the handle into a SizeofHandle buffer for a managed
// caller. Ownership stays with l; the caller must not close the buffer.
func (l *Library) Encode(handle []byte) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrClosed
	}
	putHandle(handle, l.handle)
	putDiagnostic(handle, "")
	return nil
}

// Close releases the library. Calls after the first return ErrClosed.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrClosed
	}
	l.closed = true
	var err error
	if cerr := l.facility.Close(l.handle); cerr != nil {
		err = errors.Wrapf(cerr, "failed to close shared library %q", l.name)
	}
	l.logger.Debug("library closed", zap.String("name", l.name), zap.Error(err))
	return err
}
