package pypi

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

var nonAlphanumericRun = regexp.MustCompile(`[-_.]+`)

// NormalizeName implements PEP 503's name-normalization rule: runs of "-",
// "_", "." collapse to a single "-", lowercased.
func NormalizeName(name string) string {
	return strings.ToLower(nonAlphanumericRun.ReplaceAllString(name, "-"))
}

// Formatter implements ecosystem.Formatter for pyproject.toml.
type Formatter struct{}

func (Formatter) NormalizePackageName(name string) string { return NormalizeName(name) }

// VersionSatisfiesRequirement parses the manifest's PEP 440 specifier set
// directly rather than delegating to the shared prefix-boundary predicate:
// operators like "~=" and "!=1.2.*" don't fit that shape. A malformed
// specifier is treated as unsatisfied so the diagnostic still fires.
func (Formatter) VersionSatisfiesRequirement(version, requirement string) bool {
	clauses, err := parseSpecifierSet(requirement)
	if err != nil {
		return false
	}
	if len(clauses) == 0 {
		return true
	}
	return specifierMatches(version, clauses)
}

func (Formatter) FormatVersionForEdit(version string) string {
	return fmt.Sprintf(">=%s", version)
}

func (Formatter) PackageURL(name string) string {
	return fmt.Sprintf("https://pypi.org/project/%s/", NormalizeName(name))
}

func (Formatter) YankedMessage(v ecosystem.Version) string {
	if v.YankedReason != "" {
		return fmt.Sprintf("%s was yanked from PyPI: %s", v.Version, v.YankedReason)
	}
	return fmt.Sprintf("%s was yanked from PyPI", v.Version)
}

func (Formatter) YankedLabel() string { return "yanked" }

func (Formatter) MarkdownLanguage() string { return "toml" }
