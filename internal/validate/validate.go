// Package validate holds the input-validation rules every registry client
// applies before constructing a URL, per spec.md §4.3 "Input validation"
// and §7 "InvalidInput".
package validate

import (
	"fmt"
	"strings"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

const (
	// MaxPackageNameLen is the length ceiling for module paths, per
	// spec.md §4.3 ">500 chars for module paths".
	MaxPackageNameLen = 500

	// MaxVersionLen is the length ceiling for version strings, per
	// spec.md §4.3 ">128 for version strings".
	MaxVersionLen = 128
)

// PackageName rejects empty, oversized, or path-traversal-containing
// package names before any URL is built.
func PackageName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty package name", ecosystem.ErrInvalidInput)
	}
	if len(name) > MaxPackageNameLen {
		return fmt.Errorf("%w: package name exceeds %d characters", ecosystem.ErrInvalidInput, MaxPackageNameLen)
	}
	if containsTraversal(name) {
		return fmt.Errorf("%w: package name %q contains a path traversal segment", ecosystem.ErrInvalidInput, name)
	}
	return nil
}

// Version rejects empty, oversized, or path-traversal-containing version
// strings before any URL is built.
func Version(version string) error {
	if version == "" {
		return fmt.Errorf("%w: empty version string", ecosystem.ErrInvalidInput)
	}
	if len(version) > MaxVersionLen {
		return fmt.Errorf("%w: version string exceeds %d characters", ecosystem.ErrInvalidInput, MaxVersionLen)
	}
	if containsTraversal(version) {
		return fmt.Errorf("%w: version %q contains a path traversal segment", ecosystem.ErrInvalidInput, version)
	}
	return nil
}

func containsTraversal(s string) bool {
	if strings.Contains(s, "..") {
		return true
	}
	for _, r := range s {
		if r == '\x00' {
			return true
		}
	}
	return false
}
