package dlfcn

import (
	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

// ABIVersion versions the handle buffer layout and the published sizes.
// The major version changes whenever either changes.
const ABIVersion = "1.0.0"

// CheckABI reports whether ABIVersion satisfies the caller's constraint,
// e.g. "^1.0" for glue code generated against layout 1.x.
func CheckABI(constraint string) error {
	if constraint == "" {
		return errors.New("ABI version constraint cannot be empty")
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.Wrapf(err, "failed to parse ABI version constraint: %s", constraint)
	}
	return abiCheck(ABIVersion, c)
}

func abiCheck(version string, constraint *semver.Constraints) error {
	if constraint == nil {
		return errors.New("ABI version constraint cannot be nil")
	}
	ver, err := semver.NewVersion(version)
	if err != nil {
		return errors.Wrapf(err, "failed to parse version string: %s", version)
	}
	if !constraint.Check(ver) {
		return errors.Errorf("handle layout version %s is not compatible with required constraint %s; "+
			"rebuild the caller against SizeofHandle=%d and SizeofPointer=%d",
			version, constraint.String(), SizeofHandle, SizeofPointer)
	}
	return nil
}
