package pypi

import "testing"

func TestCompareVersions(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0", 0},
		{"1.0", "1.1", -1},
		{"2.0", "1.9", 1},
		{"1.0a1", "1.0", -1},
		{"1.0.dev1", "1.0a1", -1},
		{"1.0post1", "1.0", 1},
		{"1!1.0", "2.0", 1}, // epoch dominates release
	}
	for _, c := range cases {
		got := compareVersions(c.a, c.b)
		if (got < 0 && c.want >= 0) || (got > 0 && c.want <= 0) || (got == 0 && c.want != 0) {
			t.Errorf("compareVersions(%q, %q) = %d, want sign of %d", c.a, c.b, got, c.want)
		}
	}
}

func TestSpecifierMatches(t *testing.T) {
	t.Parallel()

	clauses, err := parseSpecifierSet(">=1.0,<2.0")
	if err != nil {
		t.Fatalf("parseSpecifierSet: %v", err)
	}
	if !specifierMatches("1.5", clauses) {
		t.Errorf("expected 1.5 to satisfy >=1.0,<2.0")
	}
	if specifierMatches("2.0", clauses) {
		t.Errorf("expected 2.0 to violate <2.0")
	}
}

func TestSpecifierMatches_CompatibleRelease(t *testing.T) {
	t.Parallel()

	clauses, err := parseSpecifierSet("~=2.2")
	if err != nil {
		t.Fatalf("parseSpecifierSet: %v", err)
	}
	if !specifierMatches("2.3", clauses) {
		t.Errorf("expected 2.3 to satisfy ~=2.2")
	}
	if specifierMatches("3.0", clauses) {
		t.Errorf("expected 3.0 to violate ~=2.2")
	}
}

func TestSpecifierMatches_Wildcard(t *testing.T) {
	t.Parallel()

	clauses, err := parseSpecifierSet("==1.2.*")
	if err != nil {
		t.Fatalf("parseSpecifierSet: %v", err)
	}
	if !specifierMatches("1.2.5", clauses) {
		t.Errorf("expected 1.2.5 to satisfy ==1.2.*")
	}
	if specifierMatches("1.3.0", clauses) {
		t.Errorf("expected 1.3.0 to violate ==1.2.*")
	}
}

func TestIsPrereleaseVersion(t *testing.T) {
	t.Parallel()

	if !isPrereleaseVersion("1.0a1") {
		t.Errorf("expected 1.0a1 to be a prerelease")
	}
	if isPrereleaseVersion("1.0") {
		t.Errorf("expected 1.0 to not be a prerelease")
	}
}
