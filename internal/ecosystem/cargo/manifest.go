// Package cargo is the Cargo/crates.io ecosystem collaborator: parses
// Cargo.toml and Cargo.lock, talks to the crates.io registry API, and
// supplies Cargo's semver-with-implicit-caret formatting rules.
package cargo

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.lsp.dev/protocol"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/textutil"
)

// ManifestFilename is Cargo's manifest file name.
const ManifestFilename = "Cargo.toml"

// depValue is either a bare version string ("1.0") or an inline/expanded
// table ({ version = "1.0", features = [...] }). It implements
// toml.Unmarshaler so a single map[string]depValue field on the manifest
// struct accepts both forms, matching real Cargo.toml syntax.
type depValue struct {
	Version      string
	Features     []string
	Git          string
	Rev          string
	Branch       string
	Path         string
	Workspace    bool
	Optional     bool
}

// UnmarshalTOML implements toml.Unmarshaler. value is either a string (bare
// version requirement) or a map[string]any (expanded dependency table).
func (d *depValue) UnmarshalTOML(value any) error {
	switch v := value.(type) {
	case string:
		d.Version = v
	case map[string]any:
		if s, ok := v["version"].(string); ok {
			d.Version = s
		}
		if s, ok := v["git"].(string); ok {
			d.Git = s
		}
		if s, ok := v["rev"].(string); ok {
			d.Rev = s
		}
		if s, ok := v["branch"].(string); ok {
			d.Branch = s
		}
		if s, ok := v["path"].(string); ok {
			d.Path = s
		}
		if b, ok := v["workspace"].(bool); ok {
			d.Workspace = b
		}
		if b, ok := v["optional"].(bool); ok {
			d.Optional = b
		}
		if list, ok := v["features"].([]any); ok {
			for _, f := range list {
				if s, ok := f.(string); ok {
					d.Features = append(d.Features, s)
				}
			}
		}
	default:
		return fmt.Errorf("cargo: unsupported dependency value shape %T", value)
	}
	return nil
}

type manifestDoc struct {
	Dependencies      map[string]depValue `toml:"dependencies"`
	DevDependencies   map[string]depValue `toml:"dev-dependencies"`
	BuildDependencies map[string]depValue `toml:"build-dependencies"`
	Workspace         struct {
		Dependencies map[string]depValue `toml:"dependencies"`
		Members      []string            `toml:"members"`
	} `toml:"workspace"`
	Target map[string]struct {
		Dependencies    map[string]depValue `toml:"dependencies"`
		DevDependencies map[string]depValue `toml:"dev-dependencies"`
	} `toml:"target"`
}

var sectionHeader = regexp.MustCompile(`^\s*\[(.+)\]\s*$`)

// quotedSegment drops the quotes around a quoted dotted-key segment, so
// `target.'cfg(unix)'.dependencies` is keyed as `target.cfg(unix).dependencies`,
// the same form go-toml's decoded Target map key produces.
var quotedSegment = strings.NewReplacer(`.'`, ".", `'.`, ".", `."`, ".", `".`, ".")

// Parser is the ecosystem.Parser for Cargo.toml.
type Parser struct{}

func (Parser) Parse(content []byte, uri protocol.DocumentURI) (*ecosystem.ParseResult, error) {
	var doc manifestDoc
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ecosystem.ErrParse, err)
	}

	lines := textutil.NewLineTable(content)
	result := &ecosystem.ParseResult{URI: uri}

	sections := collectSections(string(content))

	addFromMap := func(names map[string]depValue, section ecosystem.Section, headerPattern string) {
		span, ok := sections[headerPattern]
		if !ok {
			return
		}
		for name, dv := range names {
			dep := buildDependency(lines, string(content), span, name, dv, section)
			result.Dependencies = append(result.Dependencies, dep)
		}
	}

	addFromMap(doc.Dependencies, ecosystem.SectionRegular, "dependencies")
	addFromMap(doc.DevDependencies, ecosystem.SectionDev, "dev-dependencies")
	addFromMap(doc.BuildDependencies, ecosystem.SectionBuild, "build-dependencies")
	addFromMap(doc.Workspace.Dependencies, ecosystem.SectionWorkspace, "workspace.dependencies")

	for target, t := range doc.Target {
		header := fmt.Sprintf("target.%s.dependencies", target)
		addFromMap(t.Dependencies, ecosystem.SectionRegular, header)
		header = fmt.Sprintf("target.%s.dev-dependencies", target)
		addFromMap(t.DevDependencies, ecosystem.SectionDev, header)
	}

	return result, nil
}

// sectionSpan is the half-open byte range [start, end) of one TOML table's
// body, not including its own "[header]" line.
type sectionSpan struct {
	start, end int
}

// collectSections returns the byte span of every top-level and dotted TOML
// table header's body, keyed by the header text with the quotes around
// quoted dotted-key segments stripped. Cargo.toml headers are simple enough (no array-of-tables for
// dependency sections) that a line scan suffices; this is the same
// "pre-computed line-offset table + linear section scan" primitive spec.md
// §4.3 recommends, applied to table boundaries instead of dependency
// tokens.
func collectSections(content string) map[string]sectionSpan {
	spans := make(map[string]sectionSpan)
	lines := strings.Split(content, "\n")

	type open struct {
		header     string
		startByte  int
	}
	var current *open
	byteOffset := 0

	closeCurrent := func(endByte int) {
		if current != nil {
			spans[current.header] = sectionSpan{start: current.startByte, end: endByte}
			current = nil
		}
	}

	for _, line := range lines {
		lineStart := byteOffset
		if m := sectionHeader.FindStringSubmatch(line); m != nil {
			closeCurrent(lineStart)
			header := strings.Trim(quotedSegment.Replace(strings.TrimSpace(m[1])), `"'`)
			current = &open{header: header, startByte: lineStart + len(line) + 1}
		}
		byteOffset += len(line) + 1
	}
	closeCurrent(len(content))

	return spans
}

var depLineRe = regexp.MustCompile(`^(\s*)("?[A-Za-z0-9_\-./]+"?)\s*=\s*(.+?)\s*$`)
var versionFieldRe = regexp.MustCompile(`version\s*=\s*"([^"]*)"`)
var quotedStringRe = regexp.MustCompile(`"([^"]*)"`)

// buildDependency recovers the precise name-token and version-token ranges
// for one dependency by scanning the raw text of its table's span, per
// spec.md §4.3's requirement that both ranges be recovered "even when the
// parser itself works on a higher-level AST" (here, the higher-level AST
// is go-toml's decoded map).
func buildDependency(lines *textutil.LineTable, content string, span sectionSpan, name string, dv depValue, section ecosystem.Section) ecosystem.Dependency {
	dep := ecosystem.Dependency{
		Name:     name,
		Section:  section,
		Features: dv.Features,
	}

	nameByteStart, nameByteEnd, valueText, valueByteStart := findKeyLine(content, span, name)
	if nameByteStart >= 0 {
		dep.NameRange = lines.RangeForOffsets(nameByteStart, nameByteEnd)
	}

	switch {
	case dv.Git != "":
		dep.Source = ecosystem.SourceGit
		dep.GitURL = dv.Git
		dep.GitRev = firstNonEmpty(dv.Rev, dv.Branch)
	case dv.Path != "":
		dep.Source = ecosystem.SourcePath
		dep.PathDep = dv.Path
	case dv.Workspace:
		dep.Source = ecosystem.SourceWorkspaceInherited
	default:
		dep.Source = ecosystem.SourceRegistry
	}

	if dv.Version != "" && valueText != "" {
		dep.VersionReq = dv.Version
		dep.HasVersion = true
		if m := versionFieldRe.FindStringSubmatchIndex(valueText); m != nil {
			start := valueByteStart + m[2]
			end := valueByteStart + m[3]
			dep.VersionRange = lines.RangeForOffsets(start, end)
		} else if m := quotedStringRe.FindStringSubmatchIndex(valueText); m != nil {
			start := valueByteStart + m[2]
			end := valueByteStart + m[3]
			dep.VersionRange = lines.RangeForOffsets(start, end)
		}
	}

	return dep
}

// findKeyLine scans the lines within span for `name = ...` and returns the
// byte offsets of the name token, the raw trailing value text, and the
// byte offset where that value text begins. Returns nameStart=-1 if not
// found (e.g. a dotted-table form this scanner doesn't special-case).
func findKeyLine(content string, span sectionSpan, name string) (nameStart, nameEnd int, valueText string, valueStart int) {
	body := content[span.start:span.end]
	offset := span.start
	for _, line := range strings.SplitAfter(body, "\n") {
		m := depLineRe.FindStringSubmatchIndex(line)
		if m != nil {
			rawKey := line[m[4]:m[5]]
			key := strings.Trim(rawKey, `"`)
			if key == name {
				keyStart := offset + m[4]
				keyEnd := offset + m[5]
				vStart := offset + m[6]
				return keyStart, keyEnd, line[m[6]:m[7]], vStart
			}
		}
		offset += len(line)
	}
	return -1, -1, "", -1
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
