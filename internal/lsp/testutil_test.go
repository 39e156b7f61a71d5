package lsp

import (
	"context"

	"go.lsp.dev/protocol"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

// fakeFormatter is a minimal ecosystem.Formatter for handler tests: names
// pass through unchanged, requirements match only on exact string equality
// unless prefixed with "^" (which matches any version whose first
// character equals the one after the caret, i.e. a single-digit major),
// mirroring the simplest possible semver-caret rule.
type fakeFormatter struct{}

func (fakeFormatter) NormalizePackageName(name string) string { return name }

func (fakeFormatter) VersionSatisfiesRequirement(version, requirement string) bool {
	if requirement == version {
		return true
	}
	if len(requirement) > 1 && requirement[0] == '^' {
		return len(version) > 0 && version[0] == requirement[1]
	}
	return false
}

func (fakeFormatter) FormatVersionForEdit(version string) string { return `"` + version + `"` }

func (fakeFormatter) PackageURL(name string) string { return "https://example.test/pkg/" + name }

func (fakeFormatter) YankedMessage(v ecosystem.Version) string { return "yanked: " + v.YankedReason }

func (fakeFormatter) YankedLabel() string { return "yanked" }

func (fakeFormatter) MarkdownLanguage() string { return "toml" }

// fakeRegistry serves GetVersions/Search from an in-memory table, so
// handler tests never hit the network.
type fakeRegistry struct {
	versions map[string][]ecosystem.Version
	search   []ecosystem.Metadata
}

func (r *fakeRegistry) GetVersions(_ context.Context, name string) ([]ecosystem.Version, error) {
	return r.versions[name], nil
}

func (r *fakeRegistry) GetLatestMatching(_ context.Context, name, _ string) (*ecosystem.Version, error) {
	vs := r.versions[name]
	if len(vs) == 0 {
		return nil, nil
	}
	return &vs[0], nil
}

func (r *fakeRegistry) Search(_ context.Context, _ string, _ int) ([]ecosystem.Metadata, error) {
	return r.search, nil
}

func (r *fakeRegistry) PackageURL(name string) string { return "https://example.test/pkg/" + name }

func testEcosystem(reg *fakeRegistry) *ecosystem.Ecosystem {
	return &ecosystem.Ecosystem{
		ID:          "test",
		DisplayName: "Test",
		Registry:    reg,
		Format:      fakeFormatter{},
	}
}

// rng builds a protocol.Range spanning a single line from startChar to
// endChar, the shape every fake manifest fixture below uses.
func rng(line uint32, startChar, endChar uint32) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: line, Character: startChar},
		End:   protocol.Position{Line: line, Character: endChar},
	}
}
