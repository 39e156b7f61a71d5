package lsp

import (
	"context"
	"fmt"
	"time"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

// completionTimeout bounds how long a single completion request may take,
// so a slow registry search never freezes the editor.
const completionTimeout = 5 * time.Second

// Completion handles textDocument/completion requests: version completion
// inside an existing dependency's version string, and package-name search
// completion inside its name string, per spec.md §4.3 "Completion".
func (s *Server) Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	defer s.traceHandler("Completion")()

	ctx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	doc, ok := s.docs.get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	snap := doc.snapshot()
	if snap.parsed == nil || snap.eco == nil {
		return nil, nil
	}

	if dep, ok := dependencyAtLine(snap.parsed.Dependencies, params.Position); ok {
		if positionInRange(params.Position, dep.VersionRange) || !dep.HasVersion {
			return s.versionCompletions(snap, dep), nil
		}
		if positionInRange(params.Position, dep.NameRange) {
			return s.nameCompletions(ctx, snap, dep.Name), nil
		}
	}

	return nil, nil
}

// dependencyAtLine finds the Dependency whose declaration spans pos.Line,
// used because an in-progress edit (e.g. an empty version string being
// typed) may not yet produce a VersionRange that contains pos exactly.
func dependencyAtLine(deps []ecosystem.Dependency, pos protocol.Position) (ecosystem.Dependency, bool) {
	for _, d := range deps {
		if pos.Line >= d.NameRange.Start.Line && pos.Line <= d.NameRange.End.Line {
			return d, true
		}
		if d.HasVersion && pos.Line >= d.VersionRange.Start.Line && pos.Line <= d.VersionRange.End.Line {
			return d, true
		}
	}
	return ecosystem.Dependency{}, false
}

func (s *Server) versionCompletions(snap snapshot, dep ecosystem.Dependency) *protocol.CompletionList {
	name := snap.eco.Format.NormalizePackageName(dep.Name)
	versions, ok := snap.cachedVersions[name]
	if !ok {
		return nil
	}

	items := make([]protocol.CompletionItem, 0, len(versions))
	for i, v := range versions {
		item := protocol.CompletionItem{
			Label:    v.Version,
			Kind:     protocol.CompletionItemKindConstant,
			SortText: fmt.Sprintf("%04d", i), // preserve newest-first ordering
			InsertText: trimQuotes(snap.eco.Format.FormatVersionForEdit(v.Version)),
		}
		if v.Yanked {
			item.Detail = snap.eco.Format.YankedLabel()
			item.Tags = []protocol.CompletionItemTag{protocol.CompletionItemTagDeprecated}
		}
		if v.Prerelease {
			item.Detail = joinDetail(item.Detail, "prerelease")
		}
		items = append(items, item)
	}

	return &protocol.CompletionList{IsIncomplete: false, Items: items}
}

func (s *Server) nameCompletions(ctx context.Context, snap snapshot, prefix string) *protocol.CompletionList {
	results, err := snap.eco.Registry.Search(ctx, prefix, 20)
	if err != nil {
		s.logger.Debug("name completion search failed", zap.String("prefix", prefix), zap.Error(err))
		return nil
	}

	items := make([]protocol.CompletionItem, 0, len(results))
	for _, m := range results {
		item := protocol.CompletionItem{
			Label:  m.Name,
			Kind:   protocol.CompletionItemKindModule,
			Detail: m.Description,
		}
		if m.LatestVersion != "" {
			item.Documentation = &protocol.MarkupContent{
				Kind:  protocol.Markdown,
				Value: fmt.Sprintf("latest: `%s`", m.LatestVersion),
			}
		}
		items = append(items, item)
	}

	return &protocol.CompletionList{IsIncomplete: true, Items: items}
}

func joinDetail(existing, add string) string {
	if existing == "" {
		return add
	}
	return existing + ", " + add
}

// trimQuotes strips a FormatVersionForEdit result's enclosing quotes, since
// completion InsertText replaces just the version token, not the quotes
// around it.
func trimQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
