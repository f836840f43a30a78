package config

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// SupportedSchema is the semver constraint a config's schema_version must
// satisfy to be loaded by this build.
const SupportedSchema = "^1"

// checkSchemaVersion verifies the declared schema version is one this build
// understands. An empty version is treated as DefaultSchemaVersion so configs
// written before versioning keep loading.
func checkSchemaVersion(version string) error {
	if version == "" {
		version = DefaultSchemaVersion
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("schema_version %q is not valid semver: %w", version, err)
	}

	constraint, err := semver.NewConstraint(SupportedSchema)
	if err != nil {
		return fmt.Errorf("parsing schema constraint %q: %w", SupportedSchema, err)
	}

	if !constraint.Check(v) {
		return fmt.Errorf("schema_version %s is not supported by this build (requires %s)", version, SupportedSchema)
	}
	return nil
}
