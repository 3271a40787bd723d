package dlfcn

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ModeEnvVar selects the default binding mode: "lazy" or "now", optionally
// followed by "+global" or "+local".
const ModeEnvVar = "DLFCN_MODE"

// ModeDefault matches the lazy binding the loader has always used.
const ModeDefault = ModeLazy

type config struct {
	facility      Facility
	mode          int
	modeSet       bool
	logger        *zap.Logger
	abiConstraint string
}

// Option configures a Binding or a Library.
type Option func(c *config) error

// WithFacility replaces the platform loader, mostly for tests and for
// hosts that route loading through their own facility.
func WithFacility(f Facility) Option {
	return func(c *config) error {
		if f == nil {
			return errors.New("facility cannot be nil")
		}
		c.facility = f
		return nil
	}
}

// WithMode sets the dlopen mode flags (ModeLazy, ModeNow, ModeGlobal, ModeLocal).
func WithMode(mode int) Option {
	return func(c *config) error {
		if mode < 0 {
			return errors.Errorf("invalid mode: %d", mode)
		}
		c.mode = mode
		c.modeSet = true
		return nil
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *config) error {
		if l == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = l
		return nil
	}
}

// WithABIConstraint refuses construction unless ABIVersion satisfies constraint.
func WithABIConstraint(constraint string) Option {
	return func(c *config) error {
		if constraint == "" {
			return errors.New("ABI version constraint cannot be empty")
		}
		c.abiConstraint = constraint
		return nil
	}
}

func newConfig(opts []Option) (*config, error) {
	c := &config{
		facility: SystemFacility(),
		logger:   Logger(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, errors.Wrap(err, "failed to apply option")
		}
	}
	// WithMode wins over the environment
	if !c.modeSet {
		c.mode = modeFromEnv(c.logger)
	}
	if c.abiConstraint != "" {
		if err := CheckABI(c.abiConstraint); err != nil {
			return nil, errors.Wrap(err, "failed to check handle ABI")
		}
	}
	return c, nil
}

func modeFromEnv(log *zap.Logger) int {
	v := os.Getenv(ModeEnvVar)
	if v == "" {
		return ModeDefault
	}
	mode, err := parseMode(v)
	if err != nil {
		log.Warn("invalid loader mode, using default",
			zap.String("env", ModeEnvVar), zap.String("value", v), zap.Error(err))
		return ModeDefault
	}
	return mode
}

func parseMode(s string) (int, error) {
	var mode int
	binding := false
	for _, part := range strings.Split(strings.ToLower(s), "+") {
		switch strings.TrimSpace(part) {
		case "lazy":
			mode |= ModeLazy
			binding = true
		case "now":
			mode |= ModeNow
			binding = true
		case "global":
			mode |= ModeGlobal
		case "local":
			mode |= ModeLocal
		default:
			return 0, errors.Errorf("unknown mode flag %q", part)
		}
	}
	if !binding {
		mode |= ModeDefault
	}
	return mode, nil
}
