package lsp

import (
	"context"
	"fmt"

	"go.lsp.dev/protocol"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

// CodeLens handles textDocument/codeLens requests, placing an "Update to
// latest" lens above every outdated dependency declaration.
func (s *Server) CodeLens(_ context.Context, params *protocol.CodeLensParams) ([]protocol.CodeLens, error) {
	doc, ok := s.docs.get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	snap := doc.snapshot()
	if snap.parsed == nil || snap.eco == nil {
		return nil, nil
	}

	var lenses []protocol.CodeLens
	for _, dep := range snap.parsed.Dependencies {
		if dep.Source != ecosystem.SourceRegistry || !dep.HasVersion {
			continue
		}
		name := snap.eco.Format.NormalizePackageName(dep.Name)
		versions, fetched := snap.cachedVersions[name]
		if !fetched {
			continue
		}
		latest := latestNonYanked(versions)
		if latest == nil || snap.eco.Format.VersionSatisfiesRequirement(latest.Version, dep.VersionReq) {
			continue
		}

		lenses = append(lenses, protocol.CodeLens{
			Range: dep.NameRange,
			Command: &protocol.Command{
				Title:     fmt.Sprintf("↑ Update to %s", latest.Version),
				Command:   commandUpdateVersion,
				Arguments: []interface{}{string(snap.uri), dep.Name, latest.Version},
			},
		})
	}

	return lenses, nil
}
