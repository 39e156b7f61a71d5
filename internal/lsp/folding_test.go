package lsp

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

func TestSectionFoldingRanges_GroupsConsecutiveSameSection(t *testing.T) {
	t.Parallel()

	deps := []ecosystem.Dependency{
		{Name: "a", Section: ecosystem.SectionRegular, NameRange: rng(1, 0, 1), HasVersion: true, VersionRange: rng(1, 3, 4)},
		{Name: "b", Section: ecosystem.SectionRegular, NameRange: rng(2, 0, 1), HasVersion: true, VersionRange: rng(2, 3, 4)},
		{Name: "c", Section: ecosystem.SectionDev, NameRange: rng(5, 0, 1), HasVersion: true, VersionRange: rng(5, 3, 4)},
	}

	ranges := sectionFoldingRanges(deps)
	require.Len(t, ranges, 1)
	require.Equal(t, uint32(1), ranges[0].StartLine)
	require.Equal(t, uint32(2), ranges[0].EndLine)
}

func TestEntryFoldingRanges_MultilineEntryOnly(t *testing.T) {
	t.Parallel()

	deps := []ecosystem.Dependency{
		{Name: "a", NameRange: rng(1, 0, 1), HasVersion: true, VersionRange: rng(1, 3, 4)},
		{Name: "b", NameRange: rng(2, 0, 1), HasVersion: true, VersionRange: rng(4, 3, 4)},
	}

	ranges := entryFoldingRanges(deps)
	require.Len(t, ranges, 1)
	require.Equal(t, uint32(2), ranges[0].StartLine)
	require.Equal(t, uint32(4), ranges[0].EndLine)
}

func TestServer_FoldingRanges_UnknownDocument(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	ranges, err := s.FoldingRanges(t.Context(), &protocol.FoldingRangeParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: "file:///missing.toml"},
	})
	require.NoError(t, err)
	require.Nil(t, ranges)
}
