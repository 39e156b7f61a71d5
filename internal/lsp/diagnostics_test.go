package lsp

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

func TestBuildDependencyDiagnostics_UnknownPackage(t *testing.T) {
	t.Parallel()

	eco := testEcosystem(&fakeRegistry{})
	dep := ecosystem.Dependency{
		Name: "doesnt-exist", NameRange: rng(0, 0, 12),
		VersionReq: "1.0.0", VersionRange: rng(0, 14, 19),
		HasVersion: true, Source: ecosystem.SourceRegistry,
	}
	snap := snapshot{
		eco:            eco,
		parsed:         &ecosystem.ParseResult{Dependencies: []ecosystem.Dependency{dep}},
		cachedVersions: map[string][]ecosystem.Version{"doesnt-exist": {}},
	}

	s := newTestServer()
	diags := s.buildDependencyDiagnostics(snap)

	require.Len(t, diags, 1)
	require.Equal(t, codeUnknown, diags[0].Code)
	require.Equal(t, protocol.DiagnosticSeverityWarning, diags[0].Severity)
	require.Equal(t, dep.NameRange, diags[0].Range)
}

func TestBuildDependencyDiagnostics_OutdatedNotConfusedWithUnknown(t *testing.T) {
	t.Parallel()

	eco := testEcosystem(&fakeRegistry{})
	dep := ecosystem.Dependency{
		Name: "serde", NameRange: rng(0, 0, 5),
		VersionReq: "1.0.0", VersionRange: rng(0, 8, 15),
		HasVersion: true, Source: ecosystem.SourceRegistry,
	}
	snap := snapshot{
		eco:    eco,
		parsed: &ecosystem.ParseResult{Dependencies: []ecosystem.Dependency{dep}},
		cachedVersions: map[string][]ecosystem.Version{
			"serde": {{Version: "1.2.0"}},
		},
	}

	s := newTestServer()
	diags := s.buildDependencyDiagnostics(snap)

	require.Len(t, diags, 1)
	require.Equal(t, codeOutdated, diags[0].Code)
}

func TestBuildDependencyDiagnostics_NotYetFetchedEmitsNothing(t *testing.T) {
	t.Parallel()

	eco := testEcosystem(&fakeRegistry{})
	dep := ecosystem.Dependency{
		Name: "serde", NameRange: rng(0, 0, 5),
		VersionReq: "1.0.0", VersionRange: rng(0, 8, 15),
		HasVersion: true, Source: ecosystem.SourceRegistry,
	}
	snap := snapshot{
		eco:    eco,
		parsed: &ecosystem.ParseResult{Dependencies: []ecosystem.Dependency{dep}},
	}

	s := newTestServer()
	diags := s.buildDependencyDiagnostics(snap)

	require.Empty(t, diags)
}
