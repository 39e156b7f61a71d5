package cargo

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// isPrerelease reports whether a crates.io version string carries a semver
// prerelease component.
func isPrerelease(version string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return v.Prerelease() != ""
}

// compareSemver orders two version strings, newest-first-friendly (returns
// >0 if a is newer than b). Unparsable versions sort last.
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

// parseConstraint translates a Cargo requirement string into a
// Masterminds/semver constraint. Cargo's bare "1.2.3" form means caret
// (^1.2.3); "=1.2.3" is exact; "~1.2" is tilde; the rest ("^", ">=", ranges
// with commas) already match Masterminds' own syntax closely enough to
// pass through unchanged. admitsPrerelease is true only for an exact-pin
// requirement naming a prerelease version directly.
func parseConstraint(requirement string) (*semver.Constraints, bool, error) {
	req := strings.TrimSpace(requirement)
	if req == "" || req == "*" {
		return nil, false, nil
	}

	admitsPrerelease := false
	translated := req
	if !strings.ContainsAny(req[:1], "^~=<>*") {
		translated = "^" + req
	}
	if strings.HasPrefix(req, "=") {
		v, err := semver.NewVersion(strings.TrimPrefix(req, "="))
		if err == nil && v.Prerelease() != "" {
			admitsPrerelease = true
		}
	}

	c, err := semver.NewConstraint(translated)
	if err != nil {
		return nil, false, err
	}
	return c, admitsPrerelease, nil
}

// constraintMatches reports whether version satisfies constraint, treating
// parse failures as non-matches rather than propagating an error (the
// caller already validated the requirement string itself).
func constraintMatches(constraint *semver.Constraints, version string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return constraint.Check(v)
}
