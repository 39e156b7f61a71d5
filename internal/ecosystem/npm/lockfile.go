package npm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/segmentio/encoding/json"
	"go.lsp.dev/protocol"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

// LockFilename is npm's lock file name.
const LockFilename = "package-lock.json"

const maxWorkspaceDepth = 8

// lockDoc covers both the v2/v3 "packages" shape and the legacy v1
// "dependencies" tree; whichever is present (non-nil) is used.
type lockDoc struct {
	LockfileVersion int                    `json:"lockfileVersion"`
	Packages        map[string]lockPackage `json:"packages"`
	Dependencies    map[string]lockDepV1   `json:"dependencies"`
}

type lockPackage struct {
	Version      string            `json:"version"`
	Resolved     string            `json:"resolved"`
	Integrity    string            `json:"integrity"`
	Dependencies map[string]string `json:"dependencies"`
	Dev          bool              `json:"dev"`
	Link         bool              `json:"link"`
}

type lockDepV1 struct {
	Version      string               `json:"version"`
	Resolved     string               `json:"resolved"`
	Integrity    string               `json:"integrity"`
	Requires     map[string]string    `json:"requires"`
	Dependencies map[string]lockDepV1 `json:"dependencies"`
}

// LockFileProvider implements ecosystem.LockFileProvider for
// package-lock.json.
type LockFileProvider struct{}

func (LockFileProvider) Filename() string { return LockFilename }

// Transitive is true: package-lock.json enumerates the full dependency
// graph, not just direct dependencies, per spec.md §3 invariant 1's
// exception for npm and Go.
func (LockFileProvider) Transitive() bool { return true }

func (LockFileProvider) Locate(manifestURI protocol.DocumentURI) (string, bool) {
	dir := filepath.Dir(strings.TrimPrefix(string(manifestURI), "file://"))
	for i := 0; i < maxWorkspaceDepth; i++ {
		candidate := filepath.Join(dir, LockFilename)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

func (LockFileProvider) Parse(path string) (ecosystem.ResolvedPackages, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("npm: reading %s: %w", path, err)
	}

	var doc lockDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("npm: parsing %s: %w", path, err)
	}

	packages := make(ecosystem.ResolvedPackages)
	if len(doc.Packages) > 0 {
		parsePackagesV2(doc.Packages, packages)
	} else {
		parseDependenciesV1(doc.Dependencies, packages)
	}
	return packages, nil
}

// parsePackagesV2 reads the lockfileVersion 2/3 flat "packages" map, keyed
// by a node_modules path like "node_modules/left-pad" or
// "node_modules/foo/node_modules/left-pad" for nested duplicates. Only the
// base package name (after the final "node_modules/") is used as the key,
// first occurrence wins.
func parsePackagesV2(raw map[string]lockPackage, out ecosystem.ResolvedPackages) {
	for path, pkg := range raw {
		name := packageNameFromPath(path)
		if name == "" {
			continue // the "" key is the root project itself
		}
		if _, exists := out[name]; exists {
			continue
		}
		src := ecosystem.PackageSource{Kind: ecosystem.SourceRegistry, URL: pkg.Resolved, Checksum: pkg.Integrity}
		if pkg.Link {
			src.Kind = ecosystem.SourcePath
			src.Path = pkg.Resolved
		} else if strings.HasPrefix(pkg.Resolved, "git+") || strings.Contains(pkg.Resolved, "git://") {
			src.Kind = ecosystem.SourceGit
		}
		deps := make([]string, 0, len(pkg.Dependencies))
		for d := range pkg.Dependencies {
			deps = append(deps, d)
		}
		out[name] = ecosystem.ResolvedPackage{Name: name, Version: pkg.Version, Source: src, Dependencies: deps}
	}
}

func packageNameFromPath(path string) string {
	idx := strings.LastIndex(path, "node_modules/")
	if idx < 0 {
		return ""
	}
	return path[idx+len("node_modules/"):]
}

// parseDependenciesV1 walks the legacy recursive "dependencies" tree,
// flattening it into the same first-occurrence-wins map; this is the
// fallback for lockfileVersion 1 files.
func parseDependenciesV1(tree map[string]lockDepV1, out ecosystem.ResolvedPackages) {
	var walk func(map[string]lockDepV1)
	walk = func(deps map[string]lockDepV1) {
		for name, d := range deps {
			if _, exists := out[name]; !exists {
				reqs := make([]string, 0, len(d.Requires))
				for r := range d.Requires {
					reqs = append(reqs, r)
				}
				out[name] = ecosystem.ResolvedPackage{
					Name:         name,
					Version:      d.Version,
					Source:       ecosystem.PackageSource{Kind: ecosystem.SourceRegistry, URL: d.Resolved, Checksum: d.Integrity},
					Dependencies: reqs,
				}
			}
			if d.Dependencies != nil {
				walk(d.Dependencies)
			}
		}
	}
	walk(tree)
}
