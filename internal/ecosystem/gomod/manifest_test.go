package gomod

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

func TestParser_Parse(t *testing.T) {
	t.Parallel()

	const manifest = `module example.com/demo

go 1.22

require (
	github.com/pkg/errors v0.9.1
	golang.org/x/mod v0.6.0 // indirect
)
`

	result, err := Parser{}.Parse([]byte(manifest), "file:///go.mod")
	require.NoError(t, err)
	require.Len(t, result.Dependencies, 2)

	byName := make(map[string]ecosystem.Dependency, len(result.Dependencies))
	for _, d := range result.Dependencies {
		byName[d.Name] = d
	}

	direct := byName["github.com/pkg/errors"]
	require.Equal(t, "v0.9.1", direct.VersionReq)
	require.True(t, direct.HasVersion)
	require.Equal(t, ecosystem.SectionRegular, direct.Section)
	require.NotEqual(t, direct.NameRange, direct.VersionRange)

	indirect := byName["golang.org/x/mod"]
	require.Equal(t, ecosystem.SectionDependencyGroup, indirect.Section)
	require.Equal(t, "v0.6.0", indirect.VersionReq)
}

func TestParser_Parse_InvalidModfile(t *testing.T) {
	t.Parallel()

	_, err := Parser{}.Parse([]byte("not a go.mod file {{{"), "file:///go.mod")
	require.Error(t, err)
	require.ErrorIs(t, err, ecosystem.ErrParse)
}

func TestIndexToken_AvoidsPrefixMatch(t *testing.T) {
	t.Parallel()

	line := `github.com/foo v1.0.0`
	idx := indexToken(line, "github.com/foo")
	require.Equal(t, 0, idx)

	// "foo" alone must not match inside "github.com/foo".
	idx = indexToken(line, "foo")
	require.Equal(t, -1, idx)
}
