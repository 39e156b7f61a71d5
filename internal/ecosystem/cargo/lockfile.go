package cargo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.lsp.dev/protocol"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

// LockFilename is Cargo's lock file name.
const LockFilename = "Cargo.lock"

// maxWorkspaceDepth bounds the upward directory walk when locating a lock
// file, per spec.md §6 "walking up the directory tree to some maximum
// depth to handle workspaces".
const maxWorkspaceDepth = 8

type lockDoc struct {
	Package []lockPackage `toml:"package"`
}

type lockPackage struct {
	Name         string   `toml:"name"`
	Version      string   `toml:"version"`
	Source       string   `toml:"source"`
	Checksum     string   `toml:"checksum"`
	Dependencies []string `toml:"dependencies"`
}

// LockFileProvider implements ecosystem.LockFileProvider for Cargo.lock.
type LockFileProvider struct{}

func (LockFileProvider) Filename() string { return LockFilename }

func (LockFileProvider) Transitive() bool { return false }

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
		return nil, fmt.Errorf("cargo: reading %s: %w", path, err)
	}

	var doc lockDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("cargo: parsing %s: %w", path, err)
	}

	packages := make(ecosystem.ResolvedPackages, len(doc.Package))
	for _, p := range doc.Package {
		if _, exists := packages[p.Name]; exists {
			continue // first occurrence wins, per spec.md §3
		}
		src := ecosystem.PackageSource{Kind: ecosystem.SourceRegistry, URL: p.Source, Checksum: p.Checksum}
		if strings.HasPrefix(p.Source, "git+") {
			src.Kind = ecosystem.SourceGit
			src.URL, src.GitRev = splitGitSource(p.Source)
		} else if p.Source == "" {
			src.Kind = ecosystem.SourcePath
		}
		packages[p.Name] = ecosystem.ResolvedPackage{
			Name:         p.Name,
			Version:      p.Version,
			Source:       src,
			Dependencies: p.Dependencies,
		}
	}
	return packages, nil
}

func splitGitSource(source string) (url, rev string) {
	s := strings.TrimPrefix(source, "git+")
	if idx := strings.LastIndex(s, "#"); idx >= 0 {
		return s[:idx], s[idx+1:]
	}
	return s, ""
}
