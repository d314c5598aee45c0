package common

import "fmt"

const (
	major = 0
	minor = 3
	patch = 0

	// Version of the protocol components. Stored by every component on
	// deployment.
	Version = major*1_000_000 + minor*1_000 + patch
)

// ErrVersionMismatch is returned by CheckVersion when the stored component
// state was written by an incompatible version.
var ErrVersionMismatch = NewConfigurationError("component version mismatch")

// CheckVersion checks that component state written by version 'from' can be
// served by the current one. Only the same major and not newer minor versions
// are compatible.
func CheckVersion(from int) error {
	if from/1_000_000 != major || from > Version {
		return fmt.Errorf("%w: stored %s, current %s", ErrVersionMismatch, VersionString(from), VersionString(Version))
	}
	return nil
}

// VersionString formats numeric version as 'major.minor.patch'.
func VersionString(v int) string {
	return fmt.Sprintf("%d.%d.%d", v/1_000_000, v%1_000_000/1_000, v%1_000)
}
