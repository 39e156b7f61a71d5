package lsp

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

func TestDocumentState_PruneVersions_RemovesOnlyNamedEntries(t *testing.T) {
	t.Parallel()

	doc := &DocumentState{URI: "file:///Cargo.toml"}
	doc.setCachedVersions(map[string][]ecosystem.Version{
		"serde": {{Version: "1.2.0"}},
		"tokio": {{Version: "1.40.0"}},
	})
	doc.setLockFile("/ws/Cargo.lock", ecosystem.ResolvedPackages{
		"serde": {Name: "serde", Version: "1.2.0"},
		"tokio": {Name: "tokio", Version: "1.40.0"},
	})

	doc.pruneVersions([]string{"serde"})

	snap := doc.snapshot()
	require.NotContains(t, snap.cachedVersions, "serde")
	require.Contains(t, snap.cachedVersions, "tokio")
	require.NotContains(t, snap.resolvedVersions, "serde")
	require.Contains(t, snap.resolvedVersions, "tokio")
}

func TestDocumentState_PruneVersions_NoOpOnEmptyInput(t *testing.T) {
	t.Parallel()

	doc := &DocumentState{URI: "file:///Cargo.toml"}
	doc.setCachedVersions(map[string][]ecosystem.Version{"serde": {{Version: "1.2.0"}}})

	doc.pruneVersions(nil)

	snap := doc.snapshot()
	require.Contains(t, snap.cachedVersions, "serde")
}
