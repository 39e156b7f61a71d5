package gomod

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.lsp.dev/protocol"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

// LockFilename is Go's checksum database file name. It isn't a lock file
// in the Cargo/npm sense (it records checksums, not resolved versions),
// but it's the closest analog and is treated as one here: its presence
// pins the exact module version set the build uses, and a change to it
// triggers the same re-resolution flow a Cargo.lock edit would.
const LockFilename = "go.sum"

const maxWorkspaceDepth = 8

// LockFileProvider implements ecosystem.LockFileProvider for go.sum.
type LockFileProvider struct{}

func (LockFileProvider) Filename() string { return LockFilename }

// Transitive is true: go.sum lists every module in the build list,
// direct and indirect alike, per spec.md §3 invariant 1's exception.
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

// Parse reads go.sum's "module version hash" lines. Each module appears
// twice (once for the module zip, once suffixed "/go.mod" for the go.mod
// hash alone); only the zip-hash line contributes a ResolvedPackage, first
// occurrence wins.
func (LockFileProvider) Parse(path string) (ecosystem.ResolvedPackages, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gomod: reading %s: %w", path, err)
	}

	packages := make(ecosystem.ResolvedPackages)
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 3 {
			continue
		}
		modPath, version, hash := fields[0], fields[1], fields[2]
		if strings.HasSuffix(version, "/go.mod") {
			continue
		}
		if _, exists := packages[modPath]; exists {
			continue
		}
		packages[modPath] = ecosystem.ResolvedPackage{
			Name:    modPath,
			Version: version,
			Source:  ecosystem.PackageSource{Kind: ecosystem.SourceRegistry, Checksum: hash},
		}
	}
	return packages, nil
}
