package gomod

import (
	"fmt"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

// Formatter implements ecosystem.Formatter for go.mod/go.sum.
type Formatter struct{}

func (Formatter) NormalizePackageName(name string) string { return name }

// VersionSatisfiesRequirement applies the shared conservative
// prefix-with-boundary rule (ecosystem.PrefixBoundarySatisfies) to both
// sides after adding any missing "v" prefix: a full require-line version
// such as "v1.2.3" is satisfied only by itself, so a newer release is never
// treated as up to date. Pseudo-versions and "+incompatible" suffixes go
// through the same rule.
func (Formatter) VersionSatisfiesRequirement(version, requirement string) bool {
	return ecosystem.PrefixBoundarySatisfies(canonicalize(version), canonicalize(requirement))
}

// canonicalize adds a "v" prefix if missing, since golang.org/x/mod/semver
// requires the leading "v" that bare go.mod version fields always carry
// in practice but this defends against a hand-edited manifest.
func canonicalize(version string) string {
	if version == "" || version[0] == 'v' {
		return version
	}
	return "v" + version
}

func (Formatter) FormatVersionForEdit(version string) string {
	return canonicalize(version)
}

func (Formatter) PackageURL(name string) string {
	return fmt.Sprintf("https://pkg.go.dev/%s", name)
}

func (Formatter) YankedMessage(v ecosystem.Version) string {
	if v.YankedReason != "" {
		return fmt.Sprintf("%s has been retracted: %s", v.Version, v.YankedReason)
	}
	return fmt.Sprintf("%s has been retracted", v.Version)
}

func (Formatter) YankedLabel() string { return "retracted" }

func (Formatter) MarkdownLanguage() string { return "go" }
