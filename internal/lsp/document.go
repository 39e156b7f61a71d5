package lsp

import (
	"context"
	"sync"
	"time"

	"go.lsp.dev/protocol"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

// LoadingState tracks where a document's background registry-fetch task
// stands, per spec.md §3 invariant 2: a document is never shown
// diagnostics/hints computed from a half-populated fetch.
type LoadingState int

const (
	LoadingIdle LoadingState = iota
	LoadingInProgress
	LoadingLoaded
	LoadingFailed
)

func (s LoadingState) String() string {
	switch s {
	case LoadingIdle:
		return "idle"
	case LoadingInProgress:
		return "loading"
	case LoadingLoaded:
		return "loaded"
	case LoadingFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DocumentState is the per-document record the lifecycle engine owns, per
// spec.md §3 "DocumentState". Every field below mu is read and written
// exclusively through its accessor methods, which take mu themselves; a
// DocumentState pointer is shared between the handler goroutine and its
// background fetch goroutine, so the fields can't rely on the
// documentTable's map-level lock the way the URI->*DocumentState lookup
// does.
type DocumentState struct {
	URI protocol.DocumentURI

	mu        sync.RWMutex
	version   int32
	content   []byte
	ecosystem *ecosystem.Ecosystem // nil if the URI matched no registered ecosystem

	parsed   *ecosystem.ParseResult
	parseErr error
	parsedAt time.Time

	// cachedVersions holds the last-fetched registry version list per
	// dependency name, populated by the background fetch task.
	cachedVersions map[string][]ecosystem.Version

	// resolvedVersions is the lock file's parsed contents, or nil if no
	// lock file was found (or the ecosystem has none).
	resolvedVersions ecosystem.ResolvedPackages
	lockFilePath     string

	loadingState     LoadingState
	loadingStartedAt time.Time
	loadErr          error

	// cancel aborts this document's in-flight background fetch task, per
	// spec.md §4.5: "spawning a new task aborts the prior one".
	cancel context.CancelFunc
}

// cancelBackground cancels any in-flight fetch task for this document.
func (d *DocumentState) cancelBackground() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

func (d *DocumentState) setCancel(cancel context.CancelFunc) {
	d.mu.Lock()
	d.cancel = cancel
	d.mu.Unlock()
}

func (d *DocumentState) setOpenedOrChanged(version int32, content []byte, eco *ecosystem.Ecosystem) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.version = version
	d.content = content
	d.ecosystem = eco
}

func (d *DocumentState) setParsed(result *ecosystem.ParseResult, err error, at time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.parsedAt = at
	if err != nil {
		d.parseErr = err
		return
	}
	d.parseErr = nil
	d.parsed = result
}

func (d *DocumentState) setLockFile(path string, resolved ecosystem.ResolvedPackages) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lockFilePath = path
	d.resolvedVersions = resolved
}

func (d *DocumentState) setLoadingState(state LoadingState, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loadingState = state
	d.loadErr = err
	if state == LoadingInProgress {
		d.loadingStartedAt = time.Now()
	}
}

func (d *DocumentState) setCachedVersions(v map[string][]ecosystem.Version) {
	d.mu.Lock()
	d.cachedVersions = v
	d.mu.Unlock()
}

// pruneVersions drops normalizedNames from both cached_versions and
// resolved_versions, per spec.md §4.5 step 4 / invariant 2: a dependency
// removed by an edit must not leave stale entries behind in either map.
// Each map is rebuilt rather than mutated in place, since snapshot() hands
// out the live map reference to readers that may be iterating it
// concurrently.
func (d *DocumentState) pruneVersions(normalizedNames []string) {
	if len(normalizedNames) == 0 {
		return
	}
	drop := make(map[string]struct{}, len(normalizedNames))
	for _, n := range normalizedNames {
		drop[n] = struct{}{}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.cachedVersions) > 0 {
		next := make(map[string][]ecosystem.Version, len(d.cachedVersions))
		for k, v := range d.cachedVersions {
			if _, gone := drop[k]; gone {
				continue
			}
			next[k] = v
		}
		d.cachedVersions = next
	}

	if len(d.resolvedVersions) > 0 {
		next := make(ecosystem.ResolvedPackages, len(d.resolvedVersions))
		for k, v := range d.resolvedVersions {
			if _, gone := drop[k]; gone {
				continue
			}
			next[k] = v
		}
		d.resolvedVersions = next
	}
}

// version_, ecosystemOf, parsedResult, lockFile and loading are narrow
// read accessors used by
// handlers that only need one field without paying for a full snapshot.
func (d *DocumentState) version_() int32                       { d.mu.RLock(); defer d.mu.RUnlock(); return d.version }
func (d *DocumentState) ecosystemOf() *ecosystem.Ecosystem      { d.mu.RLock(); defer d.mu.RUnlock(); return d.ecosystem }
func (d *DocumentState) parsedResult() *ecosystem.ParseResult   { d.mu.RLock(); defer d.mu.RUnlock(); return d.parsed }
func (d *DocumentState) lockFile() string                       { d.mu.RLock(); defer d.mu.RUnlock(); return d.lockFilePath }
func (d *DocumentState) loading() LoadingState                  { d.mu.RLock(); defer d.mu.RUnlock(); return d.loadingState }

// snapshot is a read-only, lock-free copy of the fields hover/completion/
// diagnostics/inlay-hints need, taken under d.mu and then used without
// holding it — so a slow markdown-building call never blocks a concurrent
// didChange or background fetch.
type snapshot struct {
	uri              protocol.DocumentURI
	content          []byte
	eco              *ecosystem.Ecosystem
	parsed           *ecosystem.ParseResult
	parseErr         error
	cachedVersions   map[string][]ecosystem.Version
	resolvedVersions ecosystem.ResolvedPackages
	loadingState     LoadingState
}

func (d *DocumentState) snapshot() snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return snapshot{
		uri:              d.URI,
		content:          d.content,
		eco:              d.ecosystem,
		parsed:           d.parsed,
		parseErr:         d.parseErr,
		cachedVersions:   d.cachedVersions,
		resolvedVersions: d.resolvedVersions,
		loadingState:     d.loadingState,
	}
}

// documentTable is the server's synchronized URI -> DocumentState map.
type documentTable struct {
	mu   sync.RWMutex
	byURI map[protocol.DocumentURI]*DocumentState
}

func newDocumentTable() *documentTable {
	return &documentTable{byURI: make(map[protocol.DocumentURI]*DocumentState)}
}

func (t *documentTable) get(uri protocol.DocumentURI) (*DocumentState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	d, ok := t.byURI[uri]
	return d, ok
}

func (t *documentTable) set(d *DocumentState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byURI[d.URI] = d
}

func (t *documentTable) delete(uri protocol.DocumentURI) (*DocumentState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	d, ok := t.byURI[uri]
	if ok {
		delete(t.byURI, uri)
	}
	return d, ok
}

// all returns every tracked document, used to find documents affected by a
// lock-file change event.
func (t *documentTable) all() []*DocumentState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*DocumentState, 0, len(t.byURI))
	for _, d := range t.byURI {
		out = append(out, d)
	}
	return out
}
