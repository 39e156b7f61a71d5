package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

const watchRegistrationID = "deps-lsp-lockfiles"

// registerWatchers asks the client to notify us of lock-file edits made
// outside the editor's own buffers, per spec.md §4.5. Best-effort: a
// client without workspace.didChangeWatchedFiles.dynamicRegistration just
// won't send these. A manifest parse then locates and parses the lock file
// only while the document holds no resolved versions, so a lock file that
// was already loaded is not reloaded.
func (s *Server) registerWatchers(ctx context.Context) {
	patterns := s.registry.AllLockfilePatterns()
	if len(patterns) == 0 {
		return
	}

	watchers := make([]protocol.FileSystemWatcher, 0, len(patterns))
	for _, pattern := range patterns {
		watchers = append(watchers, protocol.FileSystemWatcher{GlobPattern: pattern})
	}

	err := s.client.RegisterCapability(ctx, &protocol.RegistrationParams{
		Registrations: []protocol.Registration{
			{
				ID:     watchRegistrationID,
				Method: "workspace/didChangeWatchedFiles",
				RegisterOptions: protocol.DidChangeWatchedFilesRegistrationOptions{
					Watchers: watchers,
				},
			},
		},
	})
	if err != nil {
		s.logger.Debug("client declined lock-file watcher registration", zap.Error(err))
	}
}
