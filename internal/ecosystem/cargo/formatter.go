package cargo

import (
	"fmt"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

// Formatter implements ecosystem.Formatter for Cargo.toml/Cargo.lock.
type Formatter struct{}

func (Formatter) NormalizePackageName(name string) string { return name }

// VersionSatisfiesRequirement reuses the shared caret/tilde/exact-pin
// boundary predicate. Cargo's bare "1.2.3" requirement means caret, and the
// dotted-prefix rule is narrower than caret: requirement "1.2" is satisfied
// by "1.2.x" but not by "1.3.0", which a caret range would admit.
func (Formatter) VersionSatisfiesRequirement(version, requirement string) bool {
	return ecosystem.PrefixBoundarySatisfies(version, requirement)
}

func (Formatter) FormatVersionForEdit(version string) string {
	return fmt.Sprintf("%q", version)
}

func (Formatter) PackageURL(name string) string {
	return fmt.Sprintf("https://crates.io/crates/%s", name)
}

func (Formatter) YankedMessage(v ecosystem.Version) string {
	return fmt.Sprintf("%s has been yanked from crates.io", v.Version)
}

func (Formatter) YankedLabel() string { return "yanked" }

func (Formatter) MarkdownLanguage() string { return "toml" }
