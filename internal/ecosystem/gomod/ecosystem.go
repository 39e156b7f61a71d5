package gomod

import (
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/httpcache"
)

// NewEcosystem assembles Go modules' collaborators around a shared HTTP
// cache.
func NewEcosystem(cache *httpcache.Cache) *ecosystem.Ecosystem {
	return &ecosystem.Ecosystem{
		ID:                "gomod",
		DisplayName:       "Go modules",
		ManifestFilenames: []string{ManifestFilename},
		LockFileFilenames: []string{LockFilename},

		Parser:   Parser{},
		LockFile: LockFileProvider{},
		Registry: NewRegistry(cache),
		Format:   Formatter{},
	}
}
