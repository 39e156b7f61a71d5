// Package npm is the npm/registry.npmjs.org ecosystem collaborator: parses
// package.json and package-lock.json, talks to the npm registry API, and
// supplies node-semver-flavored formatting rules.
package npm

import (
	"fmt"
	"regexp"
	"strings"

	json "github.com/segmentio/encoding/json"
	"go.lsp.dev/protocol"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/textutil"
)

// ManifestFilename is npm's manifest file name.
const ManifestFilename = "package.json"

type manifestDoc struct {
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
}

// sectionKeys maps a manifest key to its ecosystem.Section tag, in the
// fixed order diagnostics/hover should prefer when a name appears in more
// than one section (regular wins, per spec.md §3 "first occurrence wins").
var sectionKeys = []struct {
	key     string
	section ecosystem.Section
}{
	{"dependencies", ecosystem.SectionRegular},
	{"devDependencies", ecosystem.SectionDev},
	{"peerDependencies", ecosystem.SectionPeer},
	{"optionalDependencies", ecosystem.SectionOptional},
}

// Parser is the ecosystem.Parser for package.json.
type Parser struct{}

func (Parser) Parse(content []byte, uri protocol.DocumentURI) (*ecosystem.ParseResult, error) {
	var doc manifestDoc
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ecosystem.ErrParse, err)
	}

	lines := textutil.NewLineTable(content)
	result := &ecosystem.ParseResult{URI: uri}
	seen := make(map[string]struct{})

	byKey := map[string]map[string]string{
		"dependencies":         doc.Dependencies,
		"devDependencies":      doc.DevDependencies,
		"peerDependencies":     doc.PeerDependencies,
		"optionalDependencies": doc.OptionalDependencies,
	}

	for _, sk := range sectionKeys {
		deps := byKey[sk.key]
		if len(deps) == 0 {
			continue
		}
		start, end, ok := findObjectSpan(string(content), sk.key)
		if !ok {
			continue
		}
		for name, versionReq := range deps {
			if _, dup := seen[sk.key+"\x00"+name]; dup {
				continue
			}
			seen[sk.key+"\x00"+name] = struct{}{}
			dep := buildDependency(lines, string(content), start, end, name, versionReq, sk.section)
			result.Dependencies = append(result.Dependencies, dep)
		}
	}

	return result, nil
}

// findObjectSpan locates the top-level JSON object value for key and
// returns the half-open byte span of its body (excluding the braces
// themselves). It's a brace-counting scan rather than a full JSON AST
// walk — package.json has no nested objects sharing a dependency-section
// key name, so this is sufficient and avoids a heavier JSON-with-positions
// dependency the example pack doesn't carry.
func findObjectSpan(content, key string) (start, end int, ok bool) {
	keyPattern := regexp.MustCompile(`"` + regexp.QuoteMeta(key) + `"\s*:\s*\{`)
	loc := keyPattern.FindStringIndex(content)
	if loc == nil {
		return 0, 0, false
	}
	braceStart := loc[1] - 1 // index of the opening '{'
	depth := 0
	inString := false
	escaped := false
	for i := braceStart; i < len(content); i++ {
		c := content[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return braceStart + 1, i, true
			}
		}
	}
	return 0, 0, false
}

var depEntryRe = regexp.MustCompile(`"([^"]+)"\s*:\s*"([^"]*)"`)

// buildDependency recovers the name-token and version-token byte ranges by
// scanning the raw object body text, the same secondary-scan technique used
// for TOML manifests since segmentio/encoding/json's Unmarshal discards
// source positions just like go-toml's does.
func buildDependency(lines *textutil.LineTable, content string, objStart, objEnd int, name, versionReq string, section ecosystem.Section) ecosystem.Dependency {
	dep := ecosystem.Dependency{
		Name:       name,
		Section:    section,
		Source:     ecosystem.SourceRegistry,
		VersionReq: versionReq,
		HasVersion: true,
	}

	body := content[objStart:objEnd]
	for _, m := range depEntryRe.FindAllStringSubmatchIndex(body, -1) {
		key := body[m[2]:m[3]]
		if key != name {
			continue
		}
		dep.NameRange = lines.RangeForOffsets(objStart+m[2], objStart+m[3])
		if strings.HasPrefix(versionReq, "git+") || strings.HasPrefix(versionReq, "github:") || strings.Contains(versionReq, "://") {
			dep.Source = ecosystem.SourceGit
			dep.GitURL = versionReq
			dep.HasVersion = false
		} else if strings.HasPrefix(versionReq, "file:") || strings.HasPrefix(versionReq, "link:") {
			dep.Source = ecosystem.SourcePath
			dep.PathDep = strings.TrimPrefix(strings.TrimPrefix(versionReq, "file:"), "link:")
			dep.HasVersion = false
		} else if strings.HasPrefix(versionReq, "workspace:") {
			dep.Source = ecosystem.SourceWorkspaceInherited
		}
		if dep.HasVersion {
			dep.VersionRange = lines.RangeForOffsets(objStart+m[4], objStart+m[5])
		}
		break
	}

	return dep
}
