package npm

import (
	"fmt"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

// Formatter implements ecosystem.Formatter for package.json/package-lock.json.
type Formatter struct{}

func (Formatter) NormalizePackageName(name string) string { return name }

func (Formatter) VersionSatisfiesRequirement(version, requirement string) bool {
	return ecosystem.PrefixBoundarySatisfies(version, requirement)
}

// FormatVersionForEdit keeps npm's conventional caret prefix, which is the
// default range operator `npm install` itself writes into package.json.
func (Formatter) FormatVersionForEdit(version string) string {
	return fmt.Sprintf("%q", "^"+version)
}

func (Formatter) PackageURL(name string) string {
	return fmt.Sprintf("https://www.npmjs.com/package/%s", name)
}

func (Formatter) YankedMessage(v ecosystem.Version) string {
	if v.YankedReason != "" {
		return fmt.Sprintf("%s is deprecated: %s", v.Version, v.YankedReason)
	}
	return fmt.Sprintf("%s is deprecated", v.Version)
}

func (Formatter) YankedLabel() string { return "deprecated" }

func (Formatter) MarkdownLanguage() string { return "json" }
