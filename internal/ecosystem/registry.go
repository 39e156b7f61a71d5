package ecosystem

import (
	"path"
	"strings"

	"go.lsp.dev/protocol"
)

// Registry is the process-wide, startup-populated map from manifest/lock
// filename to Ecosystem, per spec.md §4.4. It is immutable in structural
// shape after construction, matching spec.md §5's "process-wide singletons,
// initialised before the server accepts its first request".
//
// The teacher repo registers dialects by name in a package-level map
// (scaf's dialect.go RegisterDialectInstance/GetDialect); Registry follows
// the same register-by-key shape, keyed on filename instead of dialect
// name since routing here is purely syntactic (which file is this?).
type Registry struct {
	byManifestName  map[string]*Ecosystem
	byLockfileName  map[string]*Ecosystem
	all             []*Ecosystem
}

// NewRegistry builds a Registry from a fixed set of ecosystems. Called once
// at server startup with every compiled-in ecosystem.
func NewRegistry(ecosystems ...*Ecosystem) *Registry {
	r := &Registry{
		byManifestName: make(map[string]*Ecosystem),
		byLockfileName: make(map[string]*Ecosystem),
	}
	for _, e := range ecosystems {
		r.all = append(r.all, e)
		for _, fn := range e.ManifestFilenames {
			r.byManifestName[fn] = e
		}
		for _, fn := range e.LockFileFilenames {
			r.byLockfileName[fn] = e
		}
	}
	return r
}

// GetByFilename looks up an ecosystem by a manifest's base filename.
func (r *Registry) GetByFilename(filename string) (*Ecosystem, bool) {
	e, ok := r.byManifestName[filename]
	return e, ok
}

// GetByURI extracts the final path component of uri and looks it up by
// filename.
func (r *Registry) GetByURI(uri protocol.DocumentURI) (*Ecosystem, bool) {
	return r.GetByFilename(path.Base(strings.TrimRight(string(uri), "/")))
}

// GetByLockfileFilename is the reverse lookup used for watch-event routing.
func (r *Registry) GetByLockfileFilename(filename string) (*Ecosystem, bool) {
	e, ok := r.byLockfileName[filename]
	return e, ok
}

// AllLockfilePatterns returns one "**/<name>" glob per declared lock-file
// filename, for watcher registration at server-initialized time.
func (r *Registry) AllLockfilePatterns() []string {
	patterns := make([]string, 0, len(r.byLockfileName))
	for name := range r.byLockfileName {
		patterns = append(patterns, "**/"+name)
	}
	return patterns
}

// All returns every registered ecosystem, for startup diagnostics/logging.
func (r *Registry) All() []*Ecosystem {
	return r.all
}
