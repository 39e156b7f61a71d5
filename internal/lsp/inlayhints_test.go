package lsp

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

func TestServer_InlayHint_ShowsOutdatedAndYanked(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{versions: map[string][]ecosystem.Version{
		"serde": {{Version: "1.2.0"}, {Version: "1.0.0", Yanked: true, YankedReason: "CVE-2024-xyz"}},
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
	doc.setLoadingState(LoadingLoaded, nil)

	hints, err := s.InlayHint(t.Context(), &InlayHintParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
		Range:        rng(0, 0, 20),
	})
	require.NoError(t, err)
	require.Len(t, hints, 1)
	require.Contains(t, hints[0].Label, "❌ 1.2.0")
	require.Contains(t, hints[0].Label, "⚠ CVE-2024-xyz")
}

func TestServer_InlayHint_UpToDate(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{versions: map[string][]ecosystem.Version{
		"serde": {{Version: "1.2.0"}},
	}}
	eco := testEcosystem(reg)
	dep := ecosystem.Dependency{
		Name: "serde", NameRange: rng(0, 0, 5),
		VersionReq: "1.2.0", VersionRange: rng(0, 8, 15),
		HasVersion: true, Source: ecosystem.SourceRegistry,
	}
	parsed := &ecosystem.ParseResult{Dependencies: []ecosystem.Dependency{dep}}

	s := newTestServer()
	doc := openDoc(s, "file:///Cargo.toml", eco, parsed)
	doc.setCachedVersions(map[string][]ecosystem.Version{"serde": reg.versions["serde"]})
	doc.setLoadingState(LoadingLoaded, nil)

	hints, err := s.InlayHint(t.Context(), &InlayHintParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
		Range:        rng(0, 0, 20),
	})
	require.NoError(t, err)
	require.Len(t, hints, 1)
	require.Equal(t, "✅", hints[0].Label)
}

func TestServer_InlayHint_UpToDateSuppressedByConfig(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{versions: map[string][]ecosystem.Version{
		"serde": {{Version: "1.2.0"}},
	}}
	eco := testEcosystem(reg)
	dep := ecosystem.Dependency{
		Name: "serde", NameRange: rng(0, 0, 5),
		VersionReq: "1.2.0", VersionRange: rng(0, 8, 15),
		HasVersion: true, Source: ecosystem.SourceRegistry,
	}
	parsed := &ecosystem.ParseResult{Dependencies: []ecosystem.Dependency{dep}}

	s := newTestServer()
	s.cfg.InlayHints.ShowUpToDateHints = false
	doc := openDoc(s, "file:///Cargo.toml", eco, parsed)
	doc.setCachedVersions(map[string][]ecosystem.Version{"serde": reg.versions["serde"]})
	doc.setLoadingState(LoadingLoaded, nil)

	hints, err := s.InlayHint(t.Context(), &InlayHintParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
		Range:        rng(0, 0, 20),
	})
	require.NoError(t, err)
	require.Empty(t, hints)
}

func TestServer_InlayHint_LoadingShowsSpinner(t *testing.T) {
	t.Parallel()

	eco := testEcosystem(&fakeRegistry{})
	dep := ecosystem.Dependency{
		Name: "serde", NameRange: rng(0, 0, 5),
		VersionReq: "1.0.0", VersionRange: rng(0, 8, 15),
		HasVersion: true, Source: ecosystem.SourceRegistry,
	}
	parsed := &ecosystem.ParseResult{Dependencies: []ecosystem.Dependency{dep}}

	s := newTestServer()
	doc := openDoc(s, "file:///Cargo.toml", eco, parsed)
	doc.setLoadingState(LoadingInProgress, nil)

	hints, err := s.InlayHint(t.Context(), &InlayHintParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
		Range:        rng(0, 0, 20),
	})
	require.NoError(t, err)
	require.Len(t, hints, 1)
	require.Equal(t, "Fetching latest version…", hints[0].Label)
}

func TestServer_InlayHint_LoadingSpinnerSuppressedByConfig(t *testing.T) {
	t.Parallel()

	eco := testEcosystem(&fakeRegistry{})
	dep := ecosystem.Dependency{
		Name: "serde", NameRange: rng(0, 0, 5),
		VersionReq: "1.0.0", VersionRange: rng(0, 8, 15),
		HasVersion: true, Source: ecosystem.SourceRegistry,
	}
	parsed := &ecosystem.ParseResult{Dependencies: []ecosystem.Dependency{dep}}

	s := newTestServer()
	s.cfg.InlayHints.ShowLoadingHints = false
	doc := openDoc(s, "file:///Cargo.toml", eco, parsed)
	doc.setLoadingState(LoadingInProgress, nil)

	hints, err := s.InlayHint(t.Context(), &InlayHintParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
		Range:        rng(0, 0, 20),
	})
	require.NoError(t, err)
	require.Empty(t, hints)
}

func TestServer_InlayHint_DisabledByConfig(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	s.cfg.InlayHints.Enabled = false
	eco := testEcosystem(&fakeRegistry{})
	doc := openDoc(s, "file:///Cargo.toml", eco, &ecosystem.ParseResult{})

	hints, err := s.InlayHint(t.Context(), &InlayHintParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
	})
	require.NoError(t, err)
	require.Nil(t, hints)
}

func TestStatusLabel_OnlyResolvedTreatedAsUpToDate(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	dep := ecosystem.Dependency{Name: "serde", VersionReq: "1.0.0", HasVersion: true}
	resolved := ecosystem.ResolvedPackages{"serde": {Name: "serde", Version: "1.0.0"}}
	require.Equal(t, "✅ 1.0.0", statusLabel(cfg, fakeFormatter{}, dep, resolved, nil))
}

func TestStatusLabel_NeitherPresentOmitsHint(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	dep := ecosystem.Dependency{Name: "serde", VersionReq: "1.0.0", HasVersion: true}
	require.Empty(t, statusLabel(cfg, fakeFormatter{}, dep, nil, nil))
}
