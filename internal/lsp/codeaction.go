package lsp

import (
	"context"
	"fmt"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

const (
	commandUpdateVersion     = "depsLsp.updateVersion"
	commandUpdateAllOutdated = "depsLsp.updateAllOutdated"
)

// CodeAction handles textDocument/codeAction requests, offering a quick fix
// to bump a dependency to its latest non-yanked version for every registry
// dependency in range whose requirement that version does not satisfy, per
// spec.md §4.3 "Code actions". A yanked installed version alone does not
// produce an action.
func (s *Server) CodeAction(_ context.Context, params *protocol.CodeActionParams) ([]protocol.CodeAction, error) {
	doc, ok := s.docs.get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	snap := doc.snapshot()
	if snap.parsed == nil || snap.eco == nil {
		return nil, nil
	}

	var actions []protocol.CodeAction
	anyOutdated := false

	for _, dep := range snap.parsed.Dependencies {
		if dep.Source != ecosystem.SourceRegistry || !dep.HasVersion {
			continue
		}
		if !rangesOverlap(params.Range, dep.VersionRange) {
			continue
		}
		name := snap.eco.Format.NormalizePackageName(dep.Name)
		versions, ok := snap.cachedVersions[name]
		if !ok {
			continue
		}
		latest := latestNonYanked(versions)
		if latest == nil || snap.eco.Format.VersionSatisfiesRequirement(latest.Version, dep.VersionReq) {
			continue
		}
		anyOutdated = true

		edit := versionEdit(snap.uri, dep, snap.eco.Format.FormatVersionForEdit(latest.Version))
		actions = append(actions, protocol.CodeAction{
			Title: fmt.Sprintf("Update %s to %s", dep.Name, latest.Version),
			Kind:  protocol.QuickFix,
			Edit:  edit,
			Command: &protocol.Command{
				Title:     fmt.Sprintf("Update %s to %s", dep.Name, latest.Version),
				Command:   commandUpdateVersion,
				Arguments: []interface{}{string(snap.uri), dep.Name, latest.Version},
			},
		})
	}

	if anyOutdated {
		actions = append(actions, protocol.CodeAction{
			Title:   "Update all outdated dependencies",
			Kind:    protocol.SourceFixAll,
			Command: &protocol.Command{
				Title:     "Update all outdated dependencies",
				Command:   commandUpdateAllOutdated,
				Arguments: []interface{}{string(snap.uri)},
			},
		})
	}

	return actions, nil
}

// ExecuteCommand handles workspace/executeCommand requests for the two
// commands this server registers.
func (s *Server) ExecuteCommand(ctx context.Context, params *protocol.ExecuteCommandParams) (interface{}, error) {
	switch params.Command {
	case commandUpdateVersion:
		return nil, s.executeUpdateVersion(ctx, params.Arguments)
	case commandUpdateAllOutdated:
		return nil, s.executeUpdateAllOutdated(ctx, params.Arguments)
	default:
		return nil, fmt.Errorf("deps-lsp: unknown command %q", params.Command)
	}
}

func (s *Server) executeUpdateVersion(ctx context.Context, args []interface{}) error {
	uri, name, version, ok := parseUpdateVersionArgs(args)
	if !ok {
		return fmt.Errorf("deps-lsp: %s: bad arguments", commandUpdateVersion)
	}
	doc, ok := s.docs.get(protocol.DocumentURI(uri))
	if !ok {
		return nil
	}
	snap := doc.snapshot()
	if snap.parsed == nil || snap.eco == nil {
		return nil
	}

	for _, dep := range snap.parsed.Dependencies {
		if dep.Name != name {
			continue
		}
		edit := versionEdit(snap.uri, dep, snap.eco.Format.FormatVersionForEdit(version))
		return s.applyEdit(ctx, edit)
	}
	return nil
}

func (s *Server) executeUpdateAllOutdated(ctx context.Context, args []interface{}) error {
	uri, ok := parseURIArg(args)
	if !ok {
		return fmt.Errorf("deps-lsp: %s: bad arguments", commandUpdateAllOutdated)
	}
	doc, ok := s.docs.get(protocol.DocumentURI(uri))
	if !ok {
		return nil
	}
	snap := doc.snapshot()
	if snap.parsed == nil || snap.eco == nil {
		return nil
	}

	changes := map[protocol.DocumentURI][]protocol.TextEdit{}
	for _, dep := range snap.parsed.Dependencies {
		if dep.Source != ecosystem.SourceRegistry || !dep.HasVersion {
			continue
		}
		name := snap.eco.Format.NormalizePackageName(dep.Name)
		versions, ok := snap.cachedVersions[name]
		if !ok {
			continue
		}
		latest := latestNonYanked(versions)
		if latest == nil || snap.eco.Format.VersionSatisfiesRequirement(latest.Version, dep.VersionReq) {
			continue
		}
		changes[snap.uri] = append(changes[snap.uri], protocol.TextEdit{
			Range:   dep.VersionRange,
			NewText: snap.eco.Format.FormatVersionForEdit(latest.Version),
		})
	}
	if len(changes) == 0 {
		return nil
	}
	return s.applyEdit(ctx, &protocol.WorkspaceEdit{Changes: changes})
}

func (s *Server) applyEdit(ctx context.Context, edit *protocol.WorkspaceEdit) error {
	resp, err := s.client.ApplyEdit(ctx, &protocol.ApplyWorkspaceEditParams{Edit: *edit})
	if err != nil {
		s.logger.Warn("ApplyEdit failed", zap.Error(err))
		return err
	}
	if resp != nil && !resp.Applied {
		s.logger.Warn("client declined workspace edit", zap.String("reason", resp.FailureReason))
	}
	return nil
}

func versionEdit(uri protocol.DocumentURI, dep ecosystem.Dependency, newText string) *protocol.WorkspaceEdit {
	return &protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentURI][]protocol.TextEdit{
			uri: {{Range: dep.VersionRange, NewText: newText}},
		},
	}
}

func parseUpdateVersionArgs(args []interface{}) (uri, name, version string, ok bool) {
	if len(args) < 3 {
		return "", "", "", false
	}
	uri, ok1 := args[0].(string)
	name, ok2 := args[1].(string)
	version, ok3 := args[2].(string)
	return uri, name, version, ok1 && ok2 && ok3
}

func parseURIArg(args []interface{}) (string, bool) {
	if len(args) < 1 {
		return "", false
	}
	uri, ok := args[0].(string)
	return uri, ok
}
