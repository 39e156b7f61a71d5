// Package cargo implements the deps-lsp ecosystem.Ecosystem for Rust's
// Cargo.toml/Cargo.lock, backed by the crates.io registry API.
package cargo

import (
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/httpcache"
)

// NewEcosystem assembles Cargo's collaborators around a shared HTTP cache.
func NewEcosystem(cache *httpcache.Cache) *ecosystem.Ecosystem {
	return &ecosystem.Ecosystem{
		ID:                "cargo",
		DisplayName:       "Cargo",
		ManifestFilenames: []string{"Cargo.toml"},
		LockFileFilenames: []string{LockFilename},

		Parser:   Parser{},
		LockFile: LockFileProvider{},
		Registry: NewRegistry(cache),
		Format:   Formatter{},
	}
}
