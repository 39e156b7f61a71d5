package lsp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

// parseInto runs doc's ecosystem Parser over its current content and
// updates doc's parse fields in place, per spec.md §3 invariant: a
// DocumentState always holds the most recent parse attempt's outcome,
// never a stale one from a prior version.
func (s *Server) parseInto(doc *DocumentState) {
	eco := doc.ecosystemOf()
	if eco == nil {
		doc.setParsed(nil, fmt.Errorf("%w: no ecosystem registered for %s", ecosystem.ErrUnsupportedEcosystem, doc.URI), time.Now())
		return
	}
	result, err := eco.Parser.Parse(doc.snapshot().content, doc.URI)
	doc.setParsed(result, err, time.Now())

	if eco.LockFile != nil && doc.snapshot().resolvedVersions == nil {
		s.reloadLockFile(doc)
	}
}

// reloadLockFile locates and (re)parses doc's lock file through the
// shared lockcache, replacing its resolved-versions snapshot.
func (s *Server) reloadLockFile(doc *DocumentState) {
	eco := doc.ecosystemOf()
	if eco == nil || eco.LockFile == nil {
		return
	}
	path, ok := eco.LockFile.Locate(doc.URI)
	if !ok {
		doc.setLockFile("", nil)
		return
	}
	resolved, err := s.lockCache.GetOrParse(eco.LockFile, path)
	if err != nil {
		s.logger.Warn("lock file parse failed", zap.String("path", path), zap.Error(err))
		return
	}
	doc.setLockFile(path, resolved)
}

// spawnFetch starts (or restarts) the background registry-fetch task for
// doc, per spec.md §4.5 "Open flow"/"Change flow". Any previously running
// fetch for this document is cancelled first — spawning a new task aborts
// the prior one, so a rapid sequence of edits never races its own stale
// fetch against the current one.
func (s *Server) spawnFetch(doc *DocumentState) {
	snap := doc.snapshot()
	if snap.eco == nil || snap.parsed == nil || len(snap.parsed.Dependencies) == 0 {
		return
	}
	if s.cfg.ColdStart.Enabled && !s.rateLimit.Allow(string(doc.URI)) {
		return
	}

	doc.cancelBackground()
	ctx, cancel := context.WithCancel(context.Background())
	doc.setCancel(cancel)
	doc.setLoadingState(LoadingInProgress, nil)

	go s.runFetch(ctx, doc)
}

// runFetch fetches the version list for every dependency not already
// present in doc's cached_versions, with bounded concurrency and a
// per-package timeout, then republishes diagnostics and refreshes inlay
// hints, per spec.md §4.5/§9.
//
// Fetching is incremental: a dependency whose name is already a key in
// cached_versions keeps its existing entry untouched and is never
// re-requested, per spec.md §1 item 5 and §4.5 step c. This matters both
// for avoiding redundant registry traffic on every keystroke and for
// invariant 4 — if the rest of the fetch succeeds but one in-flight
// request for an already-cached name were retried and timed out, a
// wholesale cache replacement would silently drop it; only ever adding
// to the map (never replacing it outright) rules that out structurally.
func (s *Server) runFetch(ctx context.Context, doc *DocumentState) {
	snap := doc.snapshot()
	existing := snap.cachedVersions

	names := dedupedNames(snap.parsed.Dependencies, snap.eco.Format)
	var toFetch []string
	for _, name := range names {
		if _, ok := existing[name]; !ok {
			toFetch = append(toFetch, name)
		}
	}

	if len(toFetch) == 0 {
		doc.setLoadingState(LoadingLoaded, nil)
		s.refreshInlayHints(context.Background(), doc)
		s.publishDiagnostics(context.Background(), doc)
		return
	}

	progress := newProgress(ctx, s.client, s.logger, fmt.Sprintf("deps-lsp: checking %d %s dependencies", len(toFetch), snap.eco.DisplayName))
	defer progress.end("done")

	results := make(map[string][]ecosystem.Version, len(toFetch))
	var resultsMu sync.Mutex
	var wg sync.WaitGroup

	total := len(toFetch)
	var completed int32

	for _, name := range toFetch {
		if ctx.Err() != nil {
			break
		}
		if err := s.fetchSem.Acquire(ctx, 1); err != nil {
			break
		}

		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			defer s.fetchSem.Release(1)

			fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout())
			defer cancel()

			versions, err := snap.eco.Registry.GetVersions(fetchCtx, name)
			resultsMu.Lock()
			completed++
			pct := uint32(0)
			if total > 0 {
				pct = uint32(completed * 100 / int32(total))
			}
			if err == nil {
				results[name] = versions
			}
			resultsMu.Unlock()
			progress.report(fmt.Sprintf("%s@%d/%d", name, completed, total), pct)
		}(name)
	}

	wg.Wait()

	if ctx.Err() != nil {
		return // superseded by a newer edit; drop this result silently
	}

	merged := make(map[string][]ecosystem.Version, len(existing)+len(results))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range results {
		merged[k] = v
	}
	doc.setCachedVersions(merged)
	if len(results) == 0 {
		doc.setLoadingState(LoadingFailed, fmt.Errorf("%w: no dependency versions could be fetched", ecosystem.ErrRegistry))
	} else {
		doc.setLoadingState(LoadingLoaded, nil)
	}

	// Hints first, then diagnostics, per spec.md §4.5 steps e→f: refreshing
	// inlay hints is a client-side nudge that should go out before the
	// heavier publishDiagnostics round-trip settles the buffer's squiggles.
	s.refreshInlayHints(context.Background(), doc)
	s.publishDiagnostics(context.Background(), doc)
}

// dedupedNames returns the normalized, deduplicated set of dependency
// names that need a registry round-trip.
func dedupedNames(deps []ecosystem.Dependency, format ecosystem.Formatter) []string {
	seen := make(map[string]struct{}, len(deps))
	names := make([]string, 0, len(deps))
	for _, d := range deps {
		if d.Source != ecosystem.SourceRegistry {
			continue
		}
		name := format.NormalizePackageName(d.Name)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
