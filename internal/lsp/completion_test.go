package lsp

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

func TestServer_Completion_VersionList(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{versions: map[string][]ecosystem.Version{
		"serde": {
			{Version: "1.2.0"},
			{Version: "1.1.0"},
			{Version: "1.0.0", Yanked: true, YankedReason: "security"},
		},
	}}
	eco := testEcosystem(reg)
	parsed := &ecosystem.ParseResult{
		Dependencies: []ecosystem.Dependency{
			{
				Name:         "serde",
				NameRange:    rng(0, 0, 5),
				VersionReq:   "1.0.0",
				VersionRange: rng(0, 8, 15),
				HasVersion:   true,
				Source:       ecosystem.SourceRegistry,
			},
		},
	}

	s := newTestServer()
	doc := openDoc(s, "file:///Cargo.toml", eco, parsed)
	doc.setCachedVersions(map[string][]ecosystem.Version{"serde": reg.versions["serde"]})

	list, err := s.Completion(t.Context(), &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
			Position:     protocol.Position{Line: 0, Character: 10},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, list)
	require.Len(t, list.Items, 3)
	require.Equal(t, "1.2.0", list.Items[0].Label)
	require.Equal(t, `1.2.0`, list.Items[0].InsertText)

	var yankedItem *protocol.CompletionItem
	for i := range list.Items {
		if list.Items[i].Label == "1.0.0" {
			yankedItem = &list.Items[i]
		}
	}
	require.NotNil(t, yankedItem)
	require.Contains(t, yankedItem.Tags, protocol.CompletionItemTagDeprecated)
}

func TestServer_Completion_NameSearch(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{search: []ecosystem.Metadata{
		{Name: "tokio", Description: "async runtime", LatestVersion: "1.28.0"},
	}}
	eco := testEcosystem(reg)
	parsed := &ecosystem.ParseResult{
		Dependencies: []ecosystem.Dependency{
			{
				Name:         "tok",
				NameRange:    rng(0, 0, 3),
				VersionReq:   "1.0.0",
				VersionRange: rng(0, 6, 12),
				HasVersion:   true,
				Source:       ecosystem.SourceRegistry,
			},
		},
	}

	s := newTestServer()
	doc := openDoc(s, "file:///Cargo.toml", eco, parsed)

	list, err := s.Completion(t.Context(), &protocol.CompletionParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
			Position:     protocol.Position{Line: 0, Character: 1},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, list)
	require.True(t, list.IsIncomplete)
	require.Len(t, list.Items, 1)
	require.Equal(t, "tokio", list.Items[0].Label)
	require.Contains(t, list.Items[0].Documentation.Value, "1.28.0")
}

func TestTrimQuotes(t *testing.T) {
	t.Parallel()

	require.Equal(t, "1.0.0", trimQuotes(`"1.0.0"`))
	require.Equal(t, "1.0.0", trimQuotes("1.0.0"))
}
