package lsp

import (
	"context"
	"fmt"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

// diagnostic codes, surfaced to the client so a code action handler can
// match on them rather than on message text.
const (
	codeOutdated    = "outdated-dependency"
	codeYanked      = "yanked-dependency"
	codeUnsatisfied = "unsatisfied-requirement"
	codeUnknown     = "unknown-package"
	codeParseError  = "parse-error"
)

// publishDiagnostics builds the full diagnostic set for doc from its
// current parse result and whatever registry data has been fetched so
// far, and pushes it to the client. Called after every parse (immediately,
// for syntax errors) and again once the background fetch completes (for
// outdated/yanked findings) — per spec.md §4.5, hints and diagnostics are
// never computed from a half-populated fetch, but a parse error is always
// reported right away regardless of loading state.
func (s *Server) publishDiagnostics(ctx context.Context, doc *DocumentState) {
	snap := doc.snapshot()

	var diagnostics []protocol.Diagnostic
	if snap.parseErr != nil {
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    protocol.Range{Start: protocol.Position{Line: 0, Character: 0}, End: protocol.Position{Line: 0, Character: 1}},
			Severity: protocol.DiagnosticSeverityError,
			Source:   "deps-lsp",
			Code:     codeParseError,
			Message:  snap.parseErr.Error(),
		})
	} else if snap.parsed != nil {
		diagnostics = s.buildDependencyDiagnostics(snap)
	}

	err := s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         snap.uri,
		Diagnostics: diagnostics,
	})
	if err != nil {
		s.logger.Error("publishDiagnostics: RPC failed", zap.Error(err))
	}
}

// buildDependencyDiagnostics evaluates every dependency against the
// cached registry data and the lock file's resolved version, per spec.md
// §4.3 "Diagnostics".
func (s *Server) buildDependencyDiagnostics(snap snapshot) []protocol.Diagnostic {
	var out []protocol.Diagnostic
	sev := s.severities()

	for _, dep := range snap.parsed.Dependencies {
		if dep.Source != ecosystem.SourceRegistry {
			continue
		}
		name := snap.eco.Format.NormalizePackageName(dep.Name)
		versions, fetched := snap.cachedVersions[name]

		installed, hasInstalled := resolvedVersion(snap.resolvedVersions, name)
		checkVersion := installed
		checkRange := dep.VersionRange
		if !hasInstalled {
			checkVersion = dep.VersionReq
		}

		if fetched && len(versions) == 0 {
			out = append(out, protocol.Diagnostic{
				Range:    dep.NameRange,
				Severity: sev.unknown,
				Source:   "deps-lsp",
				Code:     codeUnknown,
				Message:  fmt.Sprintf("%s: unknown package, the registry has no versions on record", dep.Name),
			})
			continue
		}

		if fetched {
			if v, yanked := installedVersionInfo(versions, checkVersion); yanked {
				out = append(out, protocol.Diagnostic{
					Range:    preferRange(checkRange, dep.NameRange),
					Severity: sev.yanked,
					Source:   "deps-lsp",
					Code:     codeYanked,
					Message:  snap.eco.Format.YankedMessage(v),
				})
				continue
			}

			if latest := latestNonYanked(versions); latest != nil && dep.HasVersion {
				if !snap.eco.Format.VersionSatisfiesRequirement(latest.Version, dep.VersionReq) {
					out = append(out, protocol.Diagnostic{
						Range:    dep.VersionRange,
						Severity: sev.outdated,
						Source:   "deps-lsp",
						Code:     codeOutdated,
						Message:  fmt.Sprintf("%s has a newer version available: %s", dep.Name, latest.Version),
					})
				}
			}
		}

		if hasInstalled && dep.HasVersion && !snap.eco.Format.VersionSatisfiesRequirement(installed, dep.VersionReq) {
			out = append(out, protocol.Diagnostic{
				Range:    dep.VersionRange,
				Severity: sev.outdated,
				Source:   "deps-lsp",
				Code:     codeUnsatisfied,
				Message:  fmt.Sprintf("installed version %s does not satisfy requirement %s", installed, dep.VersionReq),
			})
		}
	}
	return out
}

type severityConfig struct {
	outdated protocol.DiagnosticSeverity
	yanked   protocol.DiagnosticSeverity
	unknown  protocol.DiagnosticSeverity
}

func (s *Server) severities() severityConfig {
	return severityConfig{
		outdated: parseSeverity(s.cfg.Diagnostics.OutdatedSeverity, protocol.DiagnosticSeverityHint),
		yanked:   parseSeverity(s.cfg.Diagnostics.YankedSeverity, protocol.DiagnosticSeverityWarning),
		unknown:  parseSeverity(s.cfg.Diagnostics.UnknownSeverity, protocol.DiagnosticSeverityWarning),
	}
}

func parseSeverity(s string, fallback protocol.DiagnosticSeverity) protocol.DiagnosticSeverity {
	switch s {
	case "error":
		return protocol.DiagnosticSeverityError
	case "warning":
		return protocol.DiagnosticSeverityWarning
	case "information":
		return protocol.DiagnosticSeverityInformation
	case "hint":
		return protocol.DiagnosticSeverityHint
	default:
		return fallback
	}
}

func resolvedVersion(resolved ecosystem.ResolvedPackages, name string) (string, bool) {
	if resolved == nil {
		return "", false
	}
	pkg, ok := resolved[name]
	if !ok {
		return "", false
	}
	return pkg.Version, true
}

func installedVersionInfo(versions []ecosystem.Version, installed string) (ecosystem.Version, bool) {
	for _, v := range versions {
		if v.Version == installed {
			return v, v.Yanked
		}
	}
	return ecosystem.Version{}, false
}

func latestNonYanked(versions []ecosystem.Version) *ecosystem.Version {
	for i := range versions {
		if !versions[i].Yanked && !versions[i].Prerelease {
			return &versions[i]
		}
	}
	return nil
}

func preferRange(primary, fallback protocol.Range) protocol.Range {
	if primary != (protocol.Range{}) {
		return primary
	}
	return fallback
}
