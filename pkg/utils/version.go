package utils

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// ParseGameVersion parses a dotted release id such as 1.12.2 or 1.20.
// Snapshot ids (24w14a) and old alphas do not parse.
func ParseGameVersion(id string) (*semver.Version, error) {
	v, err := semver.NewVersion(id)
	if err != nil {
		return nil, fmt.Errorf("unparsable game version %q: %w", id, err)
	}
	return v, nil
}

// VersionBefore reports whether id parses and is strictly older than major.minor.patch.
// Pre-releases of a version count as that version.
func VersionBefore(id string, major, minor, patch uint64) bool {
	v, err := ParseGameVersion(id)
	if err != nil {
		return false
	}
	return versionCmp(v, major, minor, patch) < 0
}

func versionCmp(v *semver.Version, major, minor, patch uint64) int {
	switch {
	case v.Major() != major:
		return cmp(v.Major(), major)
	case v.Minor() != minor:
		return cmp(v.Minor(), minor)
	default:
		return cmp(v.Patch(), patch)
	}
}

func cmp(a, b uint64) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
