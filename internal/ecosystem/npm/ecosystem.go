package npm

import (
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/httpcache"
)

// NewEcosystem assembles npm's collaborators around a shared HTTP cache.
func NewEcosystem(cache *httpcache.Cache) *ecosystem.Ecosystem {
	return &ecosystem.Ecosystem{
		ID:                "npm",
		DisplayName:       "npm",
		ManifestFilenames: []string{"package.json"},
		LockFileFilenames: []string{LockFilename},

		Parser:   Parser{},
		LockFile: LockFileProvider{},
		Registry: NewRegistry(cache),
		Format:   Formatter{},
	}
}
