package pypi

import (
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/httpcache"
)

// NewEcosystem assembles PyPI's collaborators around a shared HTTP cache.
// LockFile is left nil: PyPI has no lock file of its own (see the package
// doc comment in manifest.go).
func NewEcosystem(cache *httpcache.Cache) *ecosystem.Ecosystem {
	return &ecosystem.Ecosystem{
		ID:                "pypi",
		DisplayName:       "PyPI",
		ManifestFilenames: []string{ManifestFilename},
		LockFileFilenames: nil,

		Parser:   Parser{},
		LockFile: nil,
		Registry: NewRegistry(cache),
		Format:   Formatter{},
	}
}
