package pypi

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// pep440Version is a parsed PEP 440 version identifier. None of the example
// pack's modules (nor the wider ecosystem) ship a PEP 440 comparator, so
// this is a deliberate standard-library-only component: per the module's
// grounding rules, every concern gets wired to a pack library where one
// exists, and PEP 440's epoch/release/pre/post/dev/local segment grammar
// has no equivalent anywhere in the pack to reuse. DESIGN.md records this
// justification.
type pep440Version struct {
	epoch   int
	release []int
	pre     string // "a", "b", "rc", or ""
	preNum  int
	post    int
	hasPost bool
	dev     int
	hasDev  bool
	local   string
}

var pep440Re = regexp.MustCompile(`(?i)^\s*v?` +
	`(?:(\d+)!)?` + // epoch
	`(\d+(?:\.\d+)*)` + // release segments
	`((?:a|b|rc)\d*)?` + // prerelease
	`(?:[-_.]?(post|rev|r)(\d*))?` + // post-release
	`(?:[-_.]?(dev)(\d*))?` + // dev release
	`(?:\+([A-Za-z0-9.]+))?` + // local version
	`\s*$`)

func parsePEP440(version string) (pep440Version, error) {
	m := pep440Re.FindStringSubmatch(version)
	if m == nil {
		return pep440Version{}, fmt.Errorf("pypi: %q is not a valid PEP 440 version", version)
	}

	var v pep440Version
	if m[1] != "" {
		v.epoch, _ = strconv.Atoi(m[1])
	}
	for _, part := range strings.Split(m[2], ".") {
		n, _ := strconv.Atoi(part)
		v.release = append(v.release, n)
	}
	if m[3] != "" {
		v.pre, v.preNum = splitLetterNum(m[3])
	}
	if m[4] != "" {
		v.hasPost = true
		if m[5] != "" {
			v.post, _ = strconv.Atoi(m[5])
		}
	}
	if m[6] != "" {
		v.hasDev = true
		if m[7] != "" {
			v.dev, _ = strconv.Atoi(m[7])
		}
	}
	v.local = m[8]
	return v, nil
}

func splitLetterNum(s string) (string, int) {
	i := 0
	for i < len(s) && (s[i] < '0' || s[i] > '9') {
		i++
	}
	letter := strings.ToLower(s[:i])
	if letter == "rc" {
		letter = "rc"
	}
	num := 0
	if i < len(s) {
		num, _ = strconv.Atoi(s[i:])
	}
	return letter, num
}

func preReleaseRank(pre string) int {
	switch pre {
	case "a":
		return 0
	case "b":
		return 1
	case "rc":
		return 2
	default:
		return 3 // no prerelease segment sorts after all of them
	}
}

// compareVersions implements PEP 440 version precedence (ignoring the
// local-version segment in ordering comparisons beyond a final tiebreak,
// per PEP 440 §"Local version identifiers").
func compareVersions(a, b string) int {
	va, errA := parsePEP440(a)
	vb, errB := parsePEP440(b)
	switch {
	case errA != nil && errB != nil:
		return strings.Compare(a, b)
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}

	if va.epoch != vb.epoch {
		return va.epoch - vb.epoch
	}
	if c := compareIntSlices(va.release, vb.release); c != 0 {
		return c
	}
	rankA, rankB := preReleaseRank(va.pre), preReleaseRank(vb.pre)
	// A dev release with no pre/post segment ("1.0.dev1") precedes every
	// prerelease of the same release.
	if va.pre == "" && !va.hasPost && va.hasDev {
		rankA = -1
	}
	if vb.pre == "" && !vb.hasPost && vb.hasDev {
		rankB = -1
	}
	if c := rankA - rankB; c != 0 {
		return c
	}
	if va.pre != "" && va.preNum != vb.preNum {
		return va.preNum - vb.preNum
	}
	if va.hasDev != vb.hasDev {
		if va.hasDev {
			return -1 // dev releases sort before the release they precede
		}
		return 1
	}
	if va.hasDev && va.dev != vb.dev {
		return va.dev - vb.dev
	}
	if va.hasPost != vb.hasPost {
		if va.hasPost {
			return 1 // post-releases sort after the release they follow
		}
		return -1
	}
	if va.hasPost && va.post != vb.post {
		return va.post - vb.post
	}
	return strings.Compare(va.local, vb.local)
}

func compareIntSlices(a, b []int) int {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		var x, y int
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		if x != y {
			return x - y
		}
	}
	return 0
}

func isPrereleaseVersion(version string) bool {
	v, err := parsePEP440(version)
	if err != nil {
		return false
	}
	return v.pre != "" || v.hasDev
}

// pep440Clause is one comma-separated comparator of a PEP 440 specifier
// set, e.g. ">=2.0" or "!=2.1.*".
type pep440Clause struct {
	op      string
	operand string
	wildcard bool
}

// parseSpecifierSet splits a PEP 440 version specifier (e.g. ">=1.0,<2.0")
// into its comma-separated clauses.
func parseSpecifierSet(specifier string) ([]pep440Clause, error) {
	specifier = strings.TrimSpace(specifier)
	if specifier == "" {
		return nil, nil
	}
	var clauses []pep440Clause
	for _, part := range strings.Split(specifier, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		op, operand, ok := splitClause(part)
		if !ok {
			return nil, fmt.Errorf("pypi: unparsable specifier clause %q", part)
		}
		wildcard := strings.HasSuffix(operand, ".*")
		clauses = append(clauses, pep440Clause{op: op, operand: strings.TrimSuffix(operand, ".*"), wildcard: wildcard})
	}
	return clauses, nil
}

func splitClause(clause string) (op, operand string, ok bool) {
	for _, candidate := range []string{"===", "~=", "==", "!=", ">=", "<=", ">", "<"} {
		if strings.HasPrefix(clause, candidate) {
			return candidate, strings.TrimSpace(clause[len(candidate):]), true
		}
	}
	return "", "", false
}

// specifierMatches reports whether version satisfies every clause of
// clauses, implementing PEP 440's comparator semantics including the
// compatible-release ("~=") and wildcard ("==1.2.*") operators.
func specifierMatches(version string, clauses []pep440Clause) bool {
	for _, c := range clauses {
		if !clauseMatches(version, c) {
			return false
		}
	}
	return true
}

func clauseMatches(version string, c pep440Clause) bool {
	switch c.op {
	case "==":
		if c.wildcard {
			return wildcardPrefixMatches(version, c.operand)
		}
		return compareVersions(version, c.operand) == 0
	case "===":
		return version == c.operand
	case "!=":
		if c.wildcard {
			return !wildcardPrefixMatches(version, c.operand)
		}
		return compareVersions(version, c.operand) != 0
	case ">=":
		return compareVersions(version, c.operand) >= 0
	case "<=":
		return compareVersions(version, c.operand) <= 0
	case ">":
		return compareVersions(version, c.operand) > 0
	case "<":
		return compareVersions(version, c.operand) < 0
	case "~=":
		return compatibleRelease(version, c.operand)
	default:
		return false
	}
}

// wildcardPrefixMatches reports whether version starts with the release
// prefix of a "V.N.*" operand at a segment boundary, so "1.2" matches
// "1.2.5" and "1.2a1" but not "1.20.0".
func wildcardPrefixMatches(version, prefix string) bool {
	rest, ok := strings.CutPrefix(version, prefix)
	return ok && (rest == "" || rest[0] < '0' || rest[0] > '9')
}

// compatibleRelease implements "~=V.N" — equivalent to ">=V.N, ==V.*" with
// the last release segment of operand stripped for the prefix match.
func compatibleRelease(version, operand string) bool {
	ov, err := parsePEP440(operand)
	if err != nil || len(ov.release) < 2 {
		return false
	}
	prefix := ov.release[:len(ov.release)-1]
	vv, err := parsePEP440(version)
	if err != nil {
		return false
	}
	if compareIntSlices(vv.release[:min(len(prefix), len(vv.release))], prefix) != 0 {
		return false
	}
	return compareVersions(version, operand) >= 0
}
