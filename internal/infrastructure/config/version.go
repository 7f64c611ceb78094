package config

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	apperrors "github.com/reglet-dev/scatslx/internal/application/errors"
)

// SupportedVersions is the range of settings schema versions this build reads.
const SupportedVersions = ">= 1.0.0, < 2.0.0"

// CheckVersion reports whether a settings file's version is readable.
func CheckVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return apperrors.NewValidationError("version", fmt.Sprintf("invalid version %q", version), err.Error())
	}

	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return fmt.Errorf("invalid version constraint: %w", err)
	}
	if ok, errs := c.Validate(v); !ok {
		details := make([]string, 0, len(errs))
		for _, e := range errs {
			details = append(details, e.Error())
		}
		return apperrors.NewValidationError("version",
			fmt.Sprintf("version %s is not supported (want %s)", v, SupportedVersions), details...)
	}
	return nil
}
