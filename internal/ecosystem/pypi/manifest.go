// Package pypi is the PyPI ecosystem collaborator: parses pyproject.toml's
// PEP 621 dependency arrays, talks to the pypi.org JSON API, and supplies
// PEP 440/PEP 503 formatting rules. PyPI manifests have no lock-file
// counterpart in this module (SPEC_FULL.md §5.3's Open Question decision):
// pip's own lock mechanism (requirements.txt pins, pip-tools, PDM/Poetry
// lock files) is ecosystem-external tooling, not something PyPI itself
// defines, so there is no single authoritative lock format to implement.
package pypi

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"go.lsp.dev/protocol"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/textutil"
)

// ManifestFilename is the PEP 621 project manifest file name.
const ManifestFilename = "pyproject.toml"

type manifestDoc struct {
	Project struct {
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
	DependencyGroups map[string][]string `toml:"dependency-groups"`
}

// Parser is the ecosystem.Parser for pyproject.toml.
type Parser struct{}

func (Parser) Parse(content []byte, uri protocol.DocumentURI) (*ecosystem.ParseResult, error) {
	var doc manifestDoc
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ecosystem.ErrParse, err)
	}

	lines := textutil.NewLineTable(content)
	text := string(content)
	result := &ecosystem.ParseResult{URI: uri}

	if start, end, ok := findArraySpan(text, `project`, `dependencies`); ok {
		for _, raw := range doc.Project.Dependencies {
			dep := buildDependency(lines, text, start, end, raw, ecosystem.SectionRegular)
			result.Dependencies = append(result.Dependencies, dep)
		}
	}

	for group, entries := range doc.Project.OptionalDependencies {
		start, end, ok := findArraySpan(text, `project.optional-dependencies`, group)
		if !ok {
			continue
		}
		for _, raw := range entries {
			dep := buildDependency(lines, text, start, end, raw, ecosystem.SectionOptional)
			result.Dependencies = append(result.Dependencies, dep)
		}
	}

	for group, entries := range doc.DependencyGroups {
		start, end, ok := findArraySpan(text, `dependency-groups`, group)
		if !ok {
			continue
		}
		for _, raw := range entries {
			if strings.HasPrefix(strings.TrimSpace(raw), "{") {
				continue // include-group directive, not a package requirement
			}
			dep := buildDependency(lines, text, start, end, raw, ecosystem.SectionDependencyGroup)
			result.Dependencies = append(result.Dependencies, dep)
		}
	}

	return result, nil
}

// findArraySpan locates the value of `key = [...]` inside the given TOML
// table (either a `[table]` header's body, or a `key = { sub = [...] }`
// entry within it) and returns the half-open byte span of the array's
// contents. Like the Cargo and npm parsers, this is a raw-text secondary
// scan to recover positions go-toml's decoded values don't carry.
func findArraySpan(content, table, key string) (start, end int, ok bool) {
	tableBody, tableOK := tableSpan(content, table)
	search := content
	searchOffset := 0
	if tableOK {
		search = content[tableBody.start:tableBody.end]
		searchOffset = tableBody.start
	}

	keyPattern := regexp.MustCompile(`(?m)^\s*"?` + regexp.QuoteMeta(key) + `"?\s*=\s*\[`)
	loc := keyPattern.FindStringIndex(search)
	if loc == nil {
		return 0, 0, false
	}
	bracketStart := loc[1] - 1
	depth := 0
	inString := false
	var quote byte
	escaped := false
	for i := bracketStart; i < len(search); i++ {
		c := search[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				inString = false
			}
			continue
		}
		switch c {
		case '"', '\'':
			inString = true
			quote = c
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return searchOffset + bracketStart + 1, searchOffset + i, true
			}
		}
	}
	return 0, 0, false
}

type span struct{ start, end int }

// tableSpan finds the byte span of a top-level-or-dotted `[table]`
// header's body, reusing the same line-scan approach as Cargo's
// collectSections but for a single named table.
func tableSpan(content, table string) (span, bool) {
	headerRe := regexp.MustCompile(`(?m)^\s*\[` + regexp.QuoteMeta(table) + `\]\s*$`)
	loc := headerRe.FindStringIndex(content)
	if loc == nil {
		return span{}, false
	}
	bodyStart := loc[1] + 1
	nextHeaderRe := regexp.MustCompile(`(?m)^\s*\[`)
	rest := content[bodyStart:]
	if m := nextHeaderRe.FindStringIndex(rest); m != nil {
		return span{start: bodyStart, end: bodyStart + m[0]}, true
	}
	return span{start: bodyStart, end: len(content)}, true
}

var pep508NameRe = regexp.MustCompile(`^\s*([A-Za-z0-9][A-Za-z0-9._-]*)`)

// buildDependency parses one PEP 508 requirement string and recovers its
// name-token and version-specifier-token byte ranges relative to the
// array's span in the source text.
func buildDependency(lines *textutil.LineTable, content string, arrStart, arrEnd int, raw string, section ecosystem.Section) ecosystem.Dependency {
	arrBody := content[arrStart:arrEnd]
	entryIdx := strings.Index(arrBody, `"`+raw+`"`)
	var quoteStart int
	if entryIdx >= 0 {
		quoteStart = arrStart + entryIdx + 1
	} else if entryIdx = strings.Index(arrBody, `'`+raw+`'`); entryIdx >= 0 {
		quoteStart = arrStart + entryIdx + 1
	} else {
		quoteStart = -1
	}

	name, extras, specifier := splitRequirement(raw)
	dep := ecosystem.Dependency{
		Name:    name,
		Source:  ecosystem.SourceRegistry,
		Section: section,
	}
	if len(extras) > 0 {
		dep.Features = extras
	}

	if quoteStart >= 0 {
		if m := pep508NameRe.FindStringIndex(raw); m != nil {
			dep.NameRange = lines.RangeForOffsets(quoteStart+m[0], quoteStart+m[1])
		}
		if specifier != "" {
			if idx := strings.Index(raw, specifier); idx >= 0 {
				dep.VersionRange = lines.RangeForOffsets(quoteStart+idx, quoteStart+idx+len(specifier))
			}
		}
	}

	if specifier != "" {
		dep.VersionReq = specifier
		dep.HasVersion = true
	}

	return dep
}

// splitRequirement parses a PEP 508 requirement string into its package
// name, extras list, and raw version specifier (everything from the first
// comparison operator onward, environment markers after ";" stripped).
func splitRequirement(raw string) (name string, extras []string, specifier string) {
	s := raw
	if idx := strings.Index(s, ";"); idx >= 0 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	m := pep508NameRe.FindString(s)
	name = strings.TrimSpace(m)
	rest := s[len(m):]

	if strings.HasPrefix(strings.TrimSpace(rest), "[") {
		rest = strings.TrimSpace(rest)
		if end := strings.Index(rest, "]"); end >= 0 {
			extrasText := rest[1:end]
			for _, e := range strings.Split(extrasText, ",") {
				e = strings.TrimSpace(e)
				if e != "" {
					extras = append(extras, e)
				}
			}
			rest = rest[end+1:]
		}
	}

	specifier = strings.TrimSpace(rest)
	return name, extras, specifier
}
