package gomod

import "testing"

func TestCompareVersions_SemverFastPath(t *testing.T) {
	t.Parallel()

	if compareVersions("v1.2.0", "v1.10.0") >= 0 {
		t.Fatalf("expected v1.2.0 < v1.10.0")
	}
}

func TestCompareVersions_FallsBackForNonSemverTags(t *testing.T) {
	t.Parallel()

	// Pre-Go-modules tags like "1.2.3" (no leading "v") aren't valid
	// semver per x/mod/semver.IsValid, so this must use the go-version
	// fallback rather than treating the pair as equal.
	if compareVersions("1.2.3", "1.10.0") >= 0 {
		t.Fatalf("expected 1.2.3 < 1.10.0 via go-version fallback")
	}
	if compareVersions("1.10.0", "1.2.3") <= 0 {
		t.Fatalf("expected 1.10.0 > 1.2.3 via go-version fallback")
	}
}

func TestCompareVersions_UnparsableFallsBackToStringCompare(t *testing.T) {
	t.Parallel()

	if compareVersions("not-a-version", "also-not") == 0 && "not-a-version" != "also-not" {
		t.Fatalf("expected a deterministic non-zero comparison for distinct unparsable strings")
	}
}
