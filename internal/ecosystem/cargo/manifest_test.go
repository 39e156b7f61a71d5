package cargo

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

func TestParser_Parse(t *testing.T) {
	t.Parallel()

	const manifest = `[package]
name = "demo"

[dependencies]
serde = "1.0"
tokio = { version = "1.28", features = ["full"] }
local-crate = { path = "../local-crate" }
upstream = { git = "https://example.com/upstream.git", rev = "abc123" }
shared = { workspace = true }

[dev-dependencies]
criterion = "0.5"
`

	result, err := Parser{}.Parse([]byte(manifest), "file:///Cargo.toml")
	require.NoError(t, err)
	require.Len(t, result.Dependencies, 6)

	byName := make(map[string]ecosystem.Dependency, len(result.Dependencies))
	for _, d := range result.Dependencies {
		byName[d.Name] = d
	}

	serde := byName["serde"]
	if diff := cmp.Diff("1.0", serde.VersionReq); diff != "" {
		t.Errorf("serde.VersionReq mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, ecosystem.SourceRegistry, serde.Source)
	require.True(t, serde.HasVersion)

	tokio := byName["tokio"]
	if diff := cmp.Diff([]string{"full"}, tokio.Features); diff != "" {
		t.Errorf("tokio.Features mismatch (-want +got):\n%s", diff)
	}

	local := byName["local-crate"]
	require.Equal(t, ecosystem.SourcePath, local.Source)
	require.Equal(t, "../local-crate", local.PathDep)
	require.False(t, local.HasVersion)

	upstream := byName["upstream"]
	require.Equal(t, ecosystem.SourceGit, upstream.Source)
	require.Equal(t, "https://example.com/upstream.git", upstream.GitURL)
	require.Equal(t, "abc123", upstream.GitRev)

	shared := byName["shared"]
	require.Equal(t, ecosystem.SourceWorkspaceInherited, shared.Source)

	criterion := byName["criterion"]
	require.Equal(t, ecosystem.SectionDev, criterion.Section)

	// name and version ranges must be real, non-zero positions so hover and
	// completion can locate the cursor against them.
	require.NotEqual(t, serde.NameRange, serde.VersionRange)
	require.Greater(t, serde.VersionRange.Start.Line, uint32(0))
}

func TestParser_Parse_IgnoresNonDependencyTables(t *testing.T) {
	t.Parallel()

	const manifest = `[package]
name = "demo"
version = "0.1.0"
`
	result, err := Parser{}.Parse([]byte(manifest), "file:///Cargo.toml")
	require.NoError(t, err)
	if diff := cmp.Diff([]ecosystem.Dependency(nil), result.Dependencies, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("Dependencies mismatch (-want +got):\n%s", diff)
	}
}
