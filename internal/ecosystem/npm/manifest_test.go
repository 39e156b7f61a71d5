package npm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

func TestParser_Parse(t *testing.T) {
	t.Parallel()

	const manifest = `{
  "name": "demo",
  "dependencies": {
    "lodash": "^4.17.21",
    "my-fork": "github:acme/my-fork",
    "local-lib": "file:../local-lib",
    "shared": "workspace:*"
  },
  "devDependencies": {
    "jest": "29.0.0"
  }
}`

	result, err := Parser{}.Parse([]byte(manifest), "file:///package.json")
	require.NoError(t, err)
	require.Len(t, result.Dependencies, 5)

	byName := make(map[string]ecosystem.Dependency, len(result.Dependencies))
	for _, d := range result.Dependencies {
		byName[d.Name] = d
	}

	lodash := byName["lodash"]
	require.Equal(t, ecosystem.SourceRegistry, lodash.Source)
	require.Equal(t, "^4.17.21", lodash.VersionReq)
	require.True(t, lodash.HasVersion)
	require.NotEqual(t, lodash.NameRange, lodash.VersionRange)

	fork := byName["my-fork"]
	require.Equal(t, ecosystem.SourceGit, fork.Source)
	require.False(t, fork.HasVersion)

	local := byName["local-lib"]
	require.Equal(t, ecosystem.SourcePath, local.Source)
	require.Equal(t, "../local-lib", local.PathDep)

	shared := byName["shared"]
	require.Equal(t, ecosystem.SourceWorkspaceInherited, shared.Source)

	jest := byName["jest"]
	require.Equal(t, ecosystem.SectionDev, jest.Section)
}

func TestParser_Parse_EmptyManifest(t *testing.T) {
	t.Parallel()

	result, err := Parser{}.Parse([]byte(`{"name": "demo"}`), "file:///package.json")
	require.NoError(t, err)
	require.Empty(t, result.Dependencies)
}

func TestParser_Parse_InvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := Parser{}.Parse([]byte(`{not json`), "file:///package.json")
	require.Error(t, err)
	require.ErrorIs(t, err, ecosystem.ErrParse)
}
