// Package lsp implements a Language Server Protocol server that surfaces
// dependency-freshness information (outdated/yanked versions, latest
// versions, registry links) for Cargo, npm, PyPI, and Go module manifests.
package lsp

import (
	"context"
	"strings"
	"time"

	json "github.com/segmentio/encoding/json"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem/cargo"
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem/gomod"
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem/npm"
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem/pypi"
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/httpcache"
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/lockcache"
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ratelimit"
)

// changeDebounce is the delay between the last keystroke of a didChange
// burst and the moment the lifecycle engine re-parses and re-fetches, per
// spec.md §4.5 "Change flow".
const changeDebounce = 100 * time.Millisecond

// Server implements the go.lsp.dev/protocol Server interface for
// deps-lsp.
type Server struct {
	client protocol.Client
	logger *zap.Logger

	docs *documentTable

	registry   *ecosystem.Registry
	httpCache  *httpcache.Cache
	lockCache  *lockcache.Cache
	rateLimit  *ratelimit.Limiter
	fetchSem   *semaphore.Weighted

	cfg Config

	initialized   bool
	shutdown      bool
	workspaceRoot string
}

// NewServer constructs a Server with every ecosystem registered and the
// shared caches wired together.
func NewServer(client protocol.Client, logger *zap.Logger) *Server {
	cache := httpcache.New()
	registry := ecosystem.NewRegistry(
		cargo.NewEcosystem(cache),
		npm.NewEcosystem(cache),
		pypi.NewEcosystem(cache),
		gomod.NewEcosystem(cache),
	)
	cfg := DefaultConfig()

	return &Server{
		client:    client,
		logger:    logger,
		docs:      newDocumentTable(),
		registry:  registry,
		httpCache: cache,
		lockCache: lockcache.New(),
		rateLimit: ratelimit.New(ratelimit.DefaultMinInterval),
		fetchSem:  semaphore.NewWeighted(int64(cfg.Cache.MaxConcurrentFetches)),
		cfg:       cfg,
	}
}

// Initialize handles the initialize request.
func (s *Server) Initialize(_ context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s.logger.Info("Initialize")

	if params.RootURI != "" {
		s.workspaceRoot = uriToPath(params.RootURI)
	} else if params.RootPath != "" {
		s.workspaceRoot = params.RootPath
	}

	if s.workspaceRoot != "" {
		if path := FindConfigFile(s.workspaceRoot); path != "" {
			s.logger.Info("loaded workspace config", zap.String("path", path))
			s.cfg = LoadConfigFile(path)
		}
	}
	if params.InitializationOptions != nil {
		if encoded, err := json.Marshal(params.InitializationOptions); err == nil {
			if err := json.Unmarshal(encoded, &s.cfg); err != nil {
				s.logger.Warn("invalid initializationOptions, keeping prior config", zap.Error(err))
			}
		}
	}
	s.fetchSem = semaphore.NewWeighted(int64(s.cfg.Cache.MaxConcurrentFetches))

	executeCommands := []string{commandUpdateVersion, commandUpdateAllOutdated}

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			HoverProvider: true,
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{`"`, ".", "-"},
				ResolveProvider:   false,
			},
			CodeActionProvider: &protocol.CodeActionOptions{
				CodeActionKinds: []protocol.CodeActionKind{protocol.QuickFix, protocol.SourceFixAll},
			},
			ExecuteCommandProvider: &protocol.ExecuteCommandOptions{
				Commands: executeCommands,
			},
			// Inlay hints need LSP 3.17 types not present in
			// go.lsp.dev/protocol v0.12.0: this struct has no
			// inlayHintProvider field, so the capability is not
			// advertised. textDocument/inlayHint requests are still
			// answered through the route in cmd/deps-lsp/main.go.
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    "deps-lsp",
			Version: "0.1.0",
		},
	}, nil
}

// Initialized handles the initialized notification; this is when dynamic
// capability registration (file watchers) happens, per the LSP spec's
// requirement that RegisterCapability only be sent after initialized.
func (s *Server) Initialized(ctx context.Context, _ *protocol.InitializedParams) error {
	s.logger.Info("Initialized")
	s.initialized = true

	go s.registerWatchers(ctx)

	return nil
}

// Shutdown handles the shutdown request.
func (s *Server) Shutdown(_ context.Context) error {
	s.logger.Info("Shutdown")
	s.shutdown = true
	s.rateLimit.Close()
	return nil
}

// Exit handles the exit notification.
func (s *Server) Exit(_ context.Context) error {
	s.logger.Info("Exit")
	return nil
}

// DidOpen handles textDocument/didOpen notifications.
func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.logger.Info("DidOpen", zap.String("uri", string(uri)))

	eco, _ := s.registry.GetByURI(uri)
	doc := &DocumentState{URI: uri}
	doc.setOpenedOrChanged(params.TextDocument.Version, []byte(params.TextDocument.Text), eco)
	s.parseInto(doc)
	s.docs.set(doc)

	s.publishDiagnostics(ctx, doc)
	s.spawnFetch(doc)

	return nil
}

// DidChange handles textDocument/didChange notifications. Full-document
// sync means each notification carries the complete new text.
func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	doc, ok := s.docs.get(uri)
	if !ok {
		s.logger.Warn("DidChange for unknown document", zap.String("uri", string(uri)))
		return nil
	}
	if len(params.ContentChanges) == 0 {
		return nil
	}

	doc.cancelBackground()
	previousParsed := doc.parsedResult()
	previousEco := doc.ecosystemOf()
	previousNames := map[string]struct{}{}
	if previousParsed != nil {
		previousNames = previousParsed.DependencyNames()
	}
	newVersion := params.TextDocument.Version
	doc.setOpenedOrChanged(newVersion, []byte(params.ContentChanges[len(params.ContentChanges)-1].Text), doc.ecosystemOf())
	s.parseInto(doc)

	// Debounce the fetch: only dependency names that are new relative to
	// the previous parse need a fresh registry round-trip; everything
	// else keeps its cached versions across the edit. A name present
	// before but gone now is pruned from both version maps immediately,
	// per spec.md §4.5 step 4 / invariant 2 — it must not linger as a
	// stale entry just because nothing new triggered a fetch.
	newNames := map[string]struct{}{}
	if parsed := doc.parsedResult(); parsed != nil {
		newNames = parsed.DependencyNames()
	}
	hasNew := false
	for name := range newNames {
		if _, existed := previousNames[name]; !existed {
			hasNew = true
			break
		}
	}
	if previousEco != nil {
		var removed []string
		for name := range previousNames {
			if _, stillPresent := newNames[name]; !stillPresent {
				removed = append(removed, previousEco.Format.NormalizePackageName(name))
			}
		}
		doc.pruneVersions(removed)
	}

	s.publishDiagnostics(ctx, doc)

	if !hasNew && doc.loading() == LoadingLoaded {
		return nil
	}

	time.AfterFunc(changeDebounce, func() {
		if d, ok := s.docs.get(uri); ok && d.version_() == newVersion {
			s.spawnFetch(d)
		}
	})

	return nil
}

// DidClose handles textDocument/didClose notifications.
func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.logger.Info("DidClose", zap.String("uri", string(params.TextDocument.URI)))

	if doc, ok := s.docs.delete(params.TextDocument.URI); ok {
		doc.cancelBackground()
	}

	err := s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	if err != nil {
		s.logger.Error("failed to clear diagnostics", zap.Error(err))
	}

	return nil
}

// DidSave handles textDocument/didSave notifications. Content sync already
// happens via didChange; didSave is a no-op for deps-lsp.
func (s *Server) DidSave(_ context.Context, _ *protocol.DidSaveTextDocumentParams) error {
	return nil
}

// DidChangeWatchedFiles handles lock-file edits made outside the editor's
// buffers (a `cargo update`, `npm install`, `go mod tidy` run from a
// terminal), per spec.md §4.5 "Lock-file change flow".
func (s *Server) DidChangeWatchedFiles(ctx context.Context, params *protocol.DidChangeWatchedFilesParams) error {
	for _, change := range params.Changes {
		path := uriToPath(change.URI)
		s.lockCache.Invalidate(path)

		base := baseName(path)
		for _, doc := range s.docs.all() {
			eco := doc.ecosystemOf()
			if eco == nil || eco.LockFile == nil {
				continue
			}
			if eco.LockFile.Filename() != base {
				continue
			}
			if existing := doc.lockFile(); existing != "" && existing != path {
				continue
			}
			s.reloadLockFile(doc)
			s.publishDiagnostics(ctx, doc)
		}
	}
	return nil
}

func baseName(path string) string {
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

func uriToPath(uri protocol.DocumentURI) string {
	return strings.TrimPrefix(string(uri), "file://")
}
