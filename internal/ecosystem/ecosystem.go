package ecosystem

import (
	"context"
	"errors"

	"go.lsp.dev/protocol"
)

// Sentinel errors surfaced by collaborators, per spec.md §7.
var (
	// ErrParse means the manifest could not be parsed; the caller keeps
	// the DocumentState without a ParseResult rather than treating this
	// as fatal.
	ErrParse = errors.New("deps-lsp: manifest parse error")

	// ErrUnsupportedEcosystem means a URI did not route to any
	// registered ecosystem.
	ErrUnsupportedEcosystem = errors.New("deps-lsp: unsupported ecosystem")

	// ErrInvalidInput means a package or version string failed validation
	// before any URL was constructed (oversized or path-traversal).
	ErrInvalidInput = errors.New("deps-lsp: invalid registry input")

	// ErrRegistry wraps network failures, non-2xx responses, and
	// unexpected response shapes from a registry client.
	ErrRegistry = errors.New("deps-lsp: registry error")
)

// Parser parses one manifest's content into a ParseResult, per spec.md
// §4.3 "Parser". Implementations must produce ranges whose coordinates
// reference positions in content exactly as received, in UTF-16 code
// units, per the LSP spec.
type Parser interface {
	Parse(content []byte, uri protocol.DocumentURI) (*ParseResult, error)
}

// LockFileProvider locates and parses an ecosystem's lock file, per
// spec.md §6 "Lock-file contract".
type LockFileProvider interface {
	// Locate walks up from the manifest's directory looking for the
	// ecosystem's lock-file filename, up to a bounded depth (workspace
	// support). Returns "", false if none is found.
	Locate(manifestURI protocol.DocumentURI) (path string, ok bool)

	// Parse reads and parses the lock file at path.
	Parse(path string) (ResolvedPackages, error)

	// Filename is the lock file's base name (e.g. "Cargo.lock"), used by
	// Registry for watch-event routing.
	Filename() string

	// Transitive reports whether the lock file enumerates transitive
	// dependencies (Go, npm) — spec.md §3 invariant 1's exception.
	Transitive() bool
}

// RegistryClient talks to one ecosystem's package registry, per spec.md
// §4.3 "Registry client". All network access must go through the shared
// HTTP cache the client is constructed with.
type RegistryClient interface {
	// GetVersions returns every known version, newest first, including
	// yanked ones (flagged, not filtered).
	GetVersions(ctx context.Context, name string) ([]Version, error)

	// GetLatestMatching returns the best version satisfying requirement,
	// excluding yanked and prerelease versions unless requirement
	// explicitly admits them. Returns nil, nil if no version matches.
	GetLatestMatching(ctx context.Context, name, requirement string) (*Version, error)

	// Search returns package metadata matching query, or an empty slice
	// for ecosystems without a search API (Go, PyPI), per spec.md §9
	// Open Question 2.
	Search(ctx context.Context, query string, limit int) ([]Metadata, error)

	// PackageURL is the documentation/registry URL for name, used in
	// hover and inlay-hint commands.
	PackageURL(name string) string
}

// Formatter holds the ecosystem-specific predicates that keep the LSP
// response helpers generic, per spec.md §4.3 "Formatter" and §9 "No deep
// inheritance".
type Formatter interface {
	// NormalizePackageName aligns a manifest name with its
	// registry/lock-file form (PyPI: PEP 503 lowercasing; others:
	// identity).
	NormalizePackageName(name string) string

	// VersionSatisfiesRequirement is the "up-to-date" predicate. Must be
	// conservative: equal strings always satisfy; a proper dotted-prefix
	// requirement terminated by a version-separator boundary satisfies;
	// exact-pin requirements satisfy only on exact match.
	VersionSatisfiesRequirement(version, requirement string) bool

	// FormatVersionForEdit is the textual form substituted by a code
	// action replacing a version range.
	FormatVersionForEdit(version string) string

	// PackageURL is the documentation URL for name.
	PackageURL(name string) string

	// YankedMessage is the human-readable diagnostic message for a
	// yanked/retracted/deprecated version.
	YankedMessage(v Version) string

	// YankedLabel is the short inlay-hint/completion label for a yanked
	// version (e.g. "yanked").
	YankedLabel() string

	// MarkdownLanguage is the fenced-code-block language tag for this
	// ecosystem's manifest syntax, used by hover.
	MarkdownLanguage() string
}

// Ecosystem bundles one package manager's collaborators, per spec.md §4.3.
// LockFile is nil for ecosystems with no lock file (PyPI).
type Ecosystem struct {
	ID                string
	DisplayName       string
	ManifestFilenames []string
	LockFileFilenames []string

	Parser   Parser
	LockFile LockFileProvider // nil if this ecosystem has none
	Registry RegistryClient
	Format   Formatter
}
