// Package gomod is the Go-modules ecosystem collaborator: parses go.mod
// with golang.org/x/mod/modfile (true byte-position ASTs, unlike the
// TOML/JSON manifests handled by the other ecosystems), handles go.sum's
// transitive checksum list, talks to the Go module proxy protocol, and
// applies golang.org/x/mod/semver's ordering and pseudo-version rules.
package gomod

import (
	"fmt"
	"strings"

	"golang.org/x/mod/modfile"
	"go.lsp.dev/protocol"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/textutil"
)

// ManifestFilename is Go's manifest file name.
const ManifestFilename = "go.mod"

// Parser is the ecosystem.Parser for go.mod.
type Parser struct{}

func (Parser) Parse(content []byte, uri protocol.DocumentURI) (*ecosystem.ParseResult, error) {
	filename := string(uri)
	f, err := modfile.Parse(filename, content, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ecosystem.ErrParse, err)
	}

	lines := textutil.NewLineTable(content)
	result := &ecosystem.ParseResult{URI: uri}

	for _, req := range f.Require {
		dep := buildDependency(lines, content, req)
		result.Dependencies = append(result.Dependencies, dep)
	}

	return result, nil
}

// buildDependency recovers the name-token and version-token byte ranges
// from modfile's own Syntax position (a real AST, unlike go-toml/
// encoding-json's decoded maps) by slicing the line's source text between
// Start.Byte and End.Byte and locating the two substrings within it.
func buildDependency(lines *textutil.LineTable, content []byte, req *modfile.Require) ecosystem.Dependency {
	dep := ecosystem.Dependency{
		Name:       req.Mod.Path,
		VersionReq: req.Mod.Version,
		HasVersion: req.Mod.Version != "",
		Source:     ecosystem.SourceRegistry,
		Section:    ecosystem.SectionRegular,
	}
	if req.Indirect {
		dep.Section = ecosystem.SectionDependencyGroup
	}

	if req.Syntax == nil {
		return dep
	}
	lineStart := req.Syntax.Start.Byte
	lineEnd := req.Syntax.End.Byte
	if lineStart < 0 || lineEnd > len(content) || lineStart >= lineEnd {
		return dep
	}
	line := string(content[lineStart:lineEnd])

	if idx := indexToken(line, req.Mod.Path); idx >= 0 {
		dep.NameRange = lines.RangeForOffsets(lineStart+idx, lineStart+idx+len(req.Mod.Path))
	}
	if dep.HasVersion {
		if idx := indexToken(line, req.Mod.Version); idx >= 0 {
			dep.VersionRange = lines.RangeForOffsets(lineStart+idx, lineStart+idx+len(req.Mod.Version))
		}
	}

	return dep
}

// indexToken finds token as a whitespace-or-string-boundary-delimited
// substring of line, avoiding a false match inside a longer token (e.g.
// module path "foo" inside "foo/v2").
func indexToken(line, token string) int {
	if token == "" {
		return -1
	}
	start := 0
	for {
		idx := indexAt(line, token, start)
		if idx < 0 {
			return -1
		}
		before := byte(' ')
		if idx > 0 {
			before = line[idx-1]
		}
		after := byte(' ')
		if idx+len(token) < len(line) {
			after = line[idx+len(token)]
		}
		if isBoundary(before) && isBoundary(after) {
			return idx
		}
		start = idx + 1
	}
}

func indexAt(s, substr string, from int) int {
	if from >= len(s) {
		return -1
	}
	idx := strings.Index(s[from:], substr)
	if idx < 0 {
		return -1
	}
	return from + idx
}

func isBoundary(b byte) bool {
	switch b {
	case ' ', '\t', '"', '\n':
		return true
	default:
		return false
	}
}
