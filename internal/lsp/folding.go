package lsp

import (
	"context"

	"go.lsp.dev/protocol"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
)

// FoldingRanges handles textDocument/foldingRange requests, returning one
// fold per contiguous run of same-section dependencies (e.g. the whole
// [dependencies] table, or a [dev-dependencies] block) plus one fold for
// any individual multi-line dependency entry (a Cargo inline table, a
// PyPI PEP 508 string split across lines).
func (s *Server) FoldingRanges(_ context.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	doc, ok := s.docs.get(params.TextDocument.URI)
	if !ok {
		return nil, nil
	}
	snap := doc.snapshot()
	if snap.parsed == nil {
		return nil, nil
	}

	var ranges []protocol.FoldingRange
	ranges = append(ranges, sectionFoldingRanges(snap.parsed.Dependencies)...)
	ranges = append(ranges, entryFoldingRanges(snap.parsed.Dependencies)...)

	return ranges, nil
}

// sectionFoldingRanges groups consecutive dependencies that share a
// Section into one fold spanning the lowest start line to the highest end
// line among them, so the fold does not depend on the order in which a
// parser emits the entries of one section (Cargo, npm and PyPI's grouped
// tables emit them in map order).
func sectionFoldingRanges(deps []ecosystem.Dependency) []protocol.FoldingRange {
	var ranges []protocol.FoldingRange

	var runStart, runEnd uint32
	var runSection ecosystem.Section
	inRun := false

	flush := func() {
		if inRun && runEnd > runStart {
			ranges = append(ranges, protocol.FoldingRange{
				StartLine: runStart,
				EndLine:   runEnd,
				Kind:      protocol.RegionFoldingRange,
			})
		}
		inRun = false
	}

	for _, d := range deps {
		end := d.NameRange.End.Line
		if d.HasVersion {
			end = d.VersionRange.End.Line
		}
		if !inRun || d.Section != runSection {
			flush()
			runStart, runEnd = d.NameRange.Start.Line, end
			runSection = d.Section
			inRun = true
		}
		runStart = min(runStart, d.NameRange.Start.Line)
		runEnd = max(runEnd, end)
	}
	flush()

	return ranges
}

// entryFoldingRanges folds a single dependency's declaration when its name
// and version tokens land on different lines (a multi-line inline table).
func entryFoldingRanges(deps []ecosystem.Dependency) []protocol.FoldingRange {
	var ranges []protocol.FoldingRange
	for _, d := range deps {
		if !d.HasVersion {
			continue
		}
		if d.VersionRange.End.Line > d.NameRange.Start.Line {
			ranges = append(ranges, protocol.FoldingRange{
				StartLine: d.NameRange.Start.Line,
				EndLine:   d.VersionRange.End.Line,
				Kind:      protocol.RegionFoldingRange,
			})
		}
	}
	return ranges
}
