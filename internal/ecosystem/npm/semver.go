package npm

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// isPrerelease reports whether an npm version string carries a semver
// prerelease component.
func isPrerelease(version string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return v.Prerelease() != ""
}

// compareSemver orders two version strings, newest-first-friendly.
// Unparsable versions (npm allows dist-tags like "latest" to leak into
// keys in malformed registries) sort last.
func compareSemver(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	switch {
	case errA != nil && errB != nil:
		return strings.Compare(a, b)
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	default:
		return va.Compare(vb)
	}
}

// parseConstraint translates an npm (node-semver) range into a
// Masterminds/semver constraint. The two dialects overlap closely enough
// (caret, tilde, comparator ranges, "||" alternatives, "x"/"*" wildcards)
// that no separate node-semver implementation is needed; exotic node-semver
// syntax this doesn't cover (build-metadata comparisons) is rare enough in
// manifests to accept as a known approximation, noted in SPEC_FULL.md §5.2.
func parseConstraint(requirement string) (*semver.Constraints, bool, error) {
	req := strings.TrimSpace(requirement)
	if req == "" || req == "*" || req == "latest" {
		return nil, false, nil
	}

	admitsPrerelease := false
	if strings.HasPrefix(req, "=") {
		bare := strings.TrimPrefix(req, "=")
		if v, err := semver.NewVersion(bare); err == nil && v.Prerelease() != "" {
			admitsPrerelease = true
		}
	} else if v, err := semver.NewVersion(req); err == nil && v.Prerelease() != "" {
		admitsPrerelease = true
	}

	c, err := semver.NewConstraint(req)
	if err != nil {
		return nil, false, err
	}
	return c, admitsPrerelease, nil
}

// constraintMatches reports whether version satisfies constraint.
func constraintMatches(constraint *semver.Constraints, version string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return constraint.Check(v)
}
