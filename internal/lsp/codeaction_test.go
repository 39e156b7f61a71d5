package lsp

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

func TestServer_CodeAction_OffersQuickFixAndFixAll(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{versions: map[string][]ecosystem.Version{
		"serde": {{Version: "1.2.0"}},
	}}
	eco := testEcosystem(reg)
	dep := ecosystem.Dependency{
		Name: "serde", NameRange: rng(0, 0, 5),
		VersionReq: "1.0.0", VersionRange: rng(0, 8, 15),
		HasVersion: true, Source: ecosystem.SourceRegistry,
	}
	parsed := &ecosystem.ParseResult{Dependencies: []ecosystem.Dependency{dep}}

	s := newTestServer()
	doc := openDoc(s, "file:///Cargo.toml", eco, parsed)
	doc.setCachedVersions(map[string][]ecosystem.Version{"serde": reg.versions["serde"]})

	actions, err := s.CodeAction(t.Context(), &protocol.CodeActionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
		Range:        dep.VersionRange,
	})
	require.NoError(t, err)
	require.Len(t, actions, 2)
	require.Equal(t, protocol.QuickFix, actions[0].Kind)
	require.Equal(t, commandUpdateVersion, actions[0].Command.Command)
	require.Equal(t, protocol.SourceFixAll, actions[1].Kind)
	require.Equal(t, commandUpdateAllOutdated, actions[1].Command.Command)
}

func TestServer_CodeAction_NothingOutdated(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{versions: map[string][]ecosystem.Version{
		"serde": {{Version: "1.0.0"}},
	}}
	eco := testEcosystem(reg)
	dep := ecosystem.Dependency{
		Name: "serde", NameRange: rng(0, 0, 5),
		VersionReq: "1.0.0", VersionRange: rng(0, 8, 15),
		HasVersion: true, Source: ecosystem.SourceRegistry,
	}
	parsed := &ecosystem.ParseResult{Dependencies: []ecosystem.Dependency{dep}}

	s := newTestServer()
	doc := openDoc(s, "file:///Cargo.toml", eco, parsed)
	doc.setCachedVersions(map[string][]ecosystem.Version{"serde": reg.versions["serde"]})

	actions, err := s.CodeAction(t.Context(), &protocol.CodeActionParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
		Range:        dep.VersionRange,
	})
	require.NoError(t, err)
	require.Empty(t, actions)
}

func TestVersionEdit(t *testing.T) {
	t.Parallel()

	dep := ecosystem.Dependency{VersionRange: rng(0, 8, 15)}
	edit := versionEdit("file:///Cargo.toml", dep, `"1.2.0"`)
	require.Len(t, edit.Changes["file:///Cargo.toml"], 1)
	require.Equal(t, `"1.2.0"`, edit.Changes["file:///Cargo.toml"][0].NewText)
}

func TestParseUpdateVersionArgs(t *testing.T) {
	t.Parallel()

	uri, name, version, ok := parseUpdateVersionArgs([]interface{}{"file:///a", "serde", "1.2.0"})
	require.True(t, ok)
	require.Equal(t, "file:///a", uri)
	require.Equal(t, "serde", name)
	require.Equal(t, "1.2.0", version)

	_, _, _, ok = parseUpdateVersionArgs([]interface{}{"file:///a"})
	require.False(t, ok)
}

func TestParseURIArg(t *testing.T) {
	t.Parallel()

	uri, ok := parseURIArg([]interface{}{"file:///a"})
	require.True(t, ok)
	require.Equal(t, "file:///a", uri)

	_, ok = parseURIArg(nil)
	require.False(t, ok)
}

func TestRangesOverlap(t *testing.T) {
	t.Parallel()

	require.True(t, rangesOverlap(rng(0, 0, 10), rng(0, 5, 6)))
	require.False(t, rangesOverlap(rng(0, 0, 1), rng(1, 0, 1)))
}
