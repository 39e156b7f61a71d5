package lsp

import (
	"context"
	"fmt"
	"strings"

	"go.lsp.dev/protocol"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

// Hover handles textDocument/hover requests, rendering a markdown card for
// the dependency under the cursor per spec.md §4.3 "Hover".
func (s *Server) Hover(_ context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	defer s.traceHandler("Hover")()

	doc, ok := s.docs.get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	snap := doc.snapshot()
	if snap.parsed == nil || snap.eco == nil {
		return nil, nil
	}

	dep, rng, ok := dependencyAt(snap.parsed.Dependencies, params.Position)
	if !ok {
		return nil, nil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: hoverMarkdown(snap, dep),
		},
		Range: rng,
	}, nil
}

// dependencyAt returns the Dependency whose NameRange or VersionRange
// contains pos, along with that specific range, so the hover highlight is
// scoped to the token under the cursor rather than the whole entry.
func dependencyAt(deps []ecosystem.Dependency, pos protocol.Position) (ecosystem.Dependency, protocol.Range, bool) {
	for _, d := range deps {
		if positionInRange(pos, d.NameRange) {
			return d, d.NameRange, true
		}
		if d.HasVersion && positionInRange(pos, d.VersionRange) {
			return d, d.VersionRange, true
		}
	}
	return ecosystem.Dependency{}, protocol.Range{}, false
}

func positionInRange(pos protocol.Position, rng protocol.Range) bool {
	if rng == (protocol.Range{}) {
		return false
	}
	if pos.Line < rng.Start.Line || pos.Line > rng.End.Line {
		return false
	}
	if pos.Line == rng.Start.Line && pos.Character < rng.Start.Character {
		return false
	}
	if pos.Line == rng.End.Line && pos.Character > rng.End.Character {
		return false
	}
	return true
}

func hoverMarkdown(snap snapshot, dep ecosystem.Dependency) string {
	var b strings.Builder
	name := snap.eco.Format.NormalizePackageName(dep.Name)

	fmt.Fprintf(&b, "**%s**", dep.Name)
	if dep.HasVersion {
		fmt.Fprintf(&b, " `%s`", dep.VersionReq)
	}
	b.WriteString("\n\n")

	switch dep.Source {
	case ecosystem.SourceGit:
		fmt.Fprintf(&b, "git dependency: %s", dep.GitURL)
		if dep.GitRev != "" {
			fmt.Fprintf(&b, " @ %s", dep.GitRev)
		}
		b.WriteString("\n\n")
	case ecosystem.SourcePath:
		fmt.Fprintf(&b, "path dependency: `%s`\n\n", dep.PathDep)
	case ecosystem.SourceWorkspaceInherited:
		b.WriteString("inherited from workspace\n\n")
	}

	if installed, ok := resolvedVersion(snap.resolvedVersions, name); ok {
		fmt.Fprintf(&b, "resolved: `%s`\n\n", installed)
	}

	switch snap.loadingState {
	case LoadingInProgress:
		b.WriteString("_checking registry…_\n\n")
	case LoadingFailed:
		b.WriteString("_registry check failed_\n\n")
	case LoadingLoaded:
		if versions, ok := snap.cachedVersions[name]; ok {
			appendVersionSummary(&b, snap, dep, versions)
		}
	}

	if dep.Source == ecosystem.SourceRegistry {
		fmt.Fprintf(&b, "[%s](%s)", name, snap.eco.Format.PackageURL(name))
	}

	if len(dep.Features) > 0 {
		fmt.Fprintf(&b, "\n\nfeatures: %s", strings.Join(dep.Features, ", "))
	}

	return b.String()
}

func appendVersionSummary(b *strings.Builder, snap snapshot, dep ecosystem.Dependency, versions []ecosystem.Version) {
	latest := latestNonYanked(versions)
	if latest == nil {
		return
	}
	fmt.Fprintf(b, "latest: `%s`\n\n", latest.Version)

	if dep.HasVersion && !snap.eco.Format.VersionSatisfiesRequirement(latest.Version, dep.VersionReq) {
		fmt.Fprintf(b, "⚠ newer version available: `%s`\n\n", latest.Version)
	}

	if dep.HasVersion {
		if v, yanked := installedVersionInfo(versions, dep.VersionReq); yanked {
			fmt.Fprintf(b, "⚠ %s\n\n", snap.eco.Format.YankedMessage(v))
		}
	}
}
