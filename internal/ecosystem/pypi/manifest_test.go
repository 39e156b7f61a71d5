package pypi

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

func TestParser_Parse(t *testing.T) {
	t.Parallel()

	const manifest = `[project]
name = "demo"
dependencies = [
    "requests>=2.31.0",
    "click[extras1,extras2]>=8.0; python_version >= '3.8'",
    "local-only",
]

[project.optional-dependencies]
test = ["pytest>=7.0"]

[dependency-groups]
dev = ["ruff>=0.4", "{include-group = 'test'}"]
`

	result, err := Parser{}.Parse([]byte(manifest), "file:///pyproject.toml")
	require.NoError(t, err)
	require.Len(t, result.Dependencies, 5)

	byName := make(map[string]ecosystem.Dependency, len(result.Dependencies))
	for _, d := range result.Dependencies {
		byName[d.Name] = d
	}

	requests := byName["requests"]
	require.Equal(t, ">=2.31.0", requests.VersionReq)
	require.True(t, requests.HasVersion)
	require.Equal(t, ecosystem.SectionRegular, requests.Section)
	require.NotEqual(t, requests.NameRange, requests.VersionRange)

	click := byName["click"]
	require.Equal(t, []string{"extras1", "extras2"}, click.Features)
	require.Equal(t, ">=8.0", click.VersionReq)

	local := byName["local-only"]
	require.False(t, local.HasVersion)

	pytest := byName["pytest"]
	require.Equal(t, ecosystem.SectionOptional, pytest.Section)

	ruff := byName["ruff"]
	require.Equal(t, ecosystem.SectionDependencyGroup, ruff.Section)
}

func TestSplitRequirement(t *testing.T) {
	t.Parallel()

	name, extras, specifier := splitRequirement(`click[extras1,extras2]>=8.0; python_version >= '3.8'`)
	require.Equal(t, "click", name)
	require.Equal(t, []string{"extras1", "extras2"}, extras)
	require.Equal(t, ">=8.0", specifier)

	name, extras, specifier = splitRequirement("local-only")
	require.Equal(t, "local-only", name)
	require.Empty(t, extras)
	require.Empty(t, specifier)
}
