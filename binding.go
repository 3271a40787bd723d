package dlfcn

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Status codes returned by Open and Dlsym. A failure code is a signal,
// not an error kind; pair it with Dlerror where available.
const (
	StatusOK      = 0
	StatusFailure = -1
)

const noError = "no error"

// ArgumentError reports a library name of the wrong shape. It is returned
// before any native call is made.
type ArgumentError struct {
	Value any
}

func (e *ArgumentError) Error() string {
	if s, ok := e.Value.(string); ok {
		return fmt.Sprintf("library name %q contains a NUL byte", s)
	}
	return fmt.Sprintf("a string filename, or nil must be passed as the library name (got %T)", e.Value)
}

// Module is the buffer-based loader surface handed to a managed caller.
//
// Handle buffers must be exactly SizeofHandle bytes and address buffers
// SizeofPointer bytes; lengths are not validated. A handle buffer is valid
// from a successful Open until Close. Passing an unopened or closed buffer
// to Dlsym, Close or Dlerror is undefined. No method takes a lock:
// concurrent opens and closes get whatever guarantees the platform loader
// gives.
type Module interface {
	// Open loads name (nil or "" for the process image) into handle.
	Open(name any, handle []byte) (int, error)
	// Close releases handle. Failures are discarded.
	Close(handle []byte)
	// Dlsym resolves symbol in handle and writes its address into addr.
	Dlsym(handle []byte, symbol string, addr []byte) int
}

// ErrorReporter is implemented by modules whose facility keeps diagnostic
// text. Probe for it with a type assertion.
type ErrorReporter interface {
	// Dlerror returns the diagnostic of the last failed operation on
	// handle, or "no error".
	Dlerror(handle []byte) string
}

// Binding implements Module over a Facility.
type Binding struct {
	facility  Facility
	diagnoser Diagnoser
	mode      int
	logger    *zap.Logger
}

// ReportingBinding is a Binding whose facility supports deferred error
// retrieval.
type ReportingBinding struct {
	*Binding
}

// New returns a Module over the configured facility. The result also
// implements ErrorReporter when the facility is a Diagnoser.
func New(opts ...Option) (Module, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create binding")
	}
	b := &Binding{
		facility: cfg.facility,
		mode:     cfg.mode,
		logger:   cfg.logger,
	}
	if d, ok := cfg.facility.(Diagnoser); ok {
		b.diagnoser = d
		return &ReportingBinding{Binding: b}, nil
	}
	return b, nil
}

func (b *Binding) Open(name any, handle []byte) (int, error) {
	var filename string
	switch v := name.(type) {
	case nil:
	case string:
		if strings.IndexByte(v, 0) >= 0 {
			return StatusFailure, &ArgumentError{Value: v}
		}
		filename = v
	default:
		return StatusFailure, &ArgumentError{Value: name}
	}

	h, err := b.facility.Open(filename, b.mode)
	if err != nil {
		b.logger.Debug("dlopen failed", zap.String("name", filename), zap.Error(err))
		putHandle(handle, 0)
		b.record(handle, err)
		return StatusFailure, nil
	}
	putHandle(handle, h)
	b.record(handle, nil)
	b.logger.Debug("dlopen", zap.String("name", filename), zap.Uintptr("handle", h))
	return StatusOK, nil
}

func (b *Binding) Close(handle []byte) {
	h := getHandle(handle)
	if h != 0 {
		if err := b.facility.Close(h); err != nil {
			b.logger.Debug("dlclose failed", zap.Uintptr("handle", h), zap.Error(err))
		}
	}
	putHandle(handle, 0)
	b.record(handle, nil)
}

func (b *Binding) Dlsym(handle []byte, symbol string, addr []byte) int {
	h := getHandle(handle)
	var (
		sym uintptr
		err error
	)
	if strings.IndexByte(symbol, 0) >= 0 {
		err = errors.Errorf("symbol name %q contains a NUL byte", symbol)
	} else {
		sym, err = b.facility.Symbol(h, symbol)
	}
	if err != nil {
		b.logger.Debug("dlsym failed", zap.String("symbol", symbol), zap.Error(err))
		b.record(handle, err)
		return StatusFailure
	}
	PutAddress(addr, sym)
	b.record(handle, nil)
	return StatusOK
}

// record stores the diagnostic for err, or clears it when err is nil.
// Without a Diagnoser the diagnostic area is left alone.
func (b *Binding) record(handle []byte, err error) {
	if b.diagnoser == nil {
		return
	}
	if err == nil {
		putDiagnostic(handle, "")
		return
	}
	msg := b.diagnoser.Diagnose(err)
	if msg == "" {
		msg = err.Error()
	}
	putDiagnostic(handle, msg)
}

func (b *ReportingBinding) Dlerror(handle []byte) string {
	if msg := getDiagnostic(handle); msg != "" {
		return msg
	}
	return noError
}
