package lsp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

func newTestServer() *Server {
	return &Server{
		logger: zap.NewNop(),
		docs:   newDocumentTable(),
		cfg:    DefaultConfig(),
	}
}

func openDoc(s *Server, uri protocol.DocumentURI, eco *ecosystem.Ecosystem, parsed *ecosystem.ParseResult) *DocumentState {
	doc := &DocumentState{URI: uri}
	doc.setOpenedOrChanged(1, []byte("irrelevant"), eco)
	doc.setParsed(parsed, nil, time.Now())
	s.docs.set(doc)
	return doc
}

func TestServer_Hover_OutdatedDependency(t *testing.T) {
	t.Parallel()

	reg := &fakeRegistry{versions: map[string][]ecosystem.Version{
		"serde": {{Version: "1.2.0"}, {Version: "1.0.0"}},
	}}
	eco := testEcosystem(reg)
	parsed := &ecosystem.ParseResult{
		Dependencies: []ecosystem.Dependency{
			{
				Name:         "serde",
				NameRange:    rng(1, 0, 5),
				VersionReq:   "1.0.0",
				VersionRange: rng(1, 8, 15),
				HasVersion:   true,
				Source:       ecosystem.SourceRegistry,
			},
		},
	}

	s := newTestServer()
	doc := openDoc(s, "file:///Cargo.toml", eco, parsed)
	doc.setCachedVersions(map[string][]ecosystem.Version{"serde": reg.versions["serde"]})
	doc.setLoadingState(LoadingLoaded, nil)

	hover, err := s.Hover(t.Context(), &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
			Position:     protocol.Position{Line: 1, Character: 2},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, hover)

	require.Contains(t, hover.Contents.Value, "serde")
	require.Contains(t, hover.Contents.Value, "latest: `1.2.0`")
	require.Contains(t, hover.Contents.Value, "newer version available")
}

func TestServer_Hover_NoDependencyUnderCursor(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	eco := testEcosystem(&fakeRegistry{})
	doc := openDoc(s, "file:///Cargo.toml", eco, &ecosystem.ParseResult{})

	hover, err := s.Hover(t.Context(), &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: doc.URI},
			Position:     protocol.Position{Line: 0, Character: 0},
		},
	})
	require.NoError(t, err)
	require.Nil(t, hover)
}

func TestServer_Hover_UnknownDocument(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	hover, err := s.Hover(t.Context(), &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: "file:///missing.toml"},
		},
	})
	require.NoError(t, err)
	require.Nil(t, hover)
}

func TestDependencyAt(t *testing.T) {
	t.Parallel()

	deps := []ecosystem.Dependency{
		{Name: "a", NameRange: rng(0, 0, 1), HasVersion: true, VersionRange: rng(0, 3, 4)},
		{Name: "b", NameRange: rng(1, 0, 1)},
	}

	_, foundRange, ok := dependencyAt(deps, protocol.Position{Line: 0, Character: 3})
	require.True(t, ok)
	require.Equal(t, deps[0].VersionRange, foundRange)

	_, _, ok = dependencyAt(deps, protocol.Position{Line: 5, Character: 0})
	require.False(t, ok)
}
