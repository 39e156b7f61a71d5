package gomod

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	hashiversion "github.com/hashicorp/go-version"
	json "github.com/segmentio/encoding/json"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/httpcache"
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/validate"
)

// compareVersions orders two Go module version strings. x/mod/semver
// handles the common case (everything the proxy's @v/list returns starts
// with "v" and follows semver), but a handful of modules predating Go
// modules carry tags that aren't valid semver at all (bare "1.2.3", SVN
// revision strings); for those, fall back to hashicorp/go-version's more
// permissive parser rather than treating them as always-equal.
func compareVersions(a, b string) int {
	if semver.IsValid(a) && semver.IsValid(b) {
		return semver.Compare(a, b)
	}
	va, errA := hashiversion.NewVersion(a)
	vb, errB := hashiversion.NewVersion(b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return va.Compare(vb)
}

const proxyBaseURL = "https://proxy.golang.org"

// Registry is the ecosystem.RegistryClient for the Go module proxy
// protocol (proxy.golang.org or GOPROXY).
type Registry struct {
	cache *httpcache.Cache
}

// NewRegistry constructs a Registry sharing the given HTTP cache.
func NewRegistry(cache *httpcache.Cache) *Registry {
	return &Registry{cache: cache}
}

type latestInfo struct {
	Version string    `json:"Version"`
	Time    time.Time `json:"Time"`
}

func (r *Registry) escapedPath(modPath string) (string, error) {
	if err := validate.PackageName(modPath); err != nil {
		return "", err
	}
	escaped, err := module.EscapePath(modPath)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ecosystem.ErrInvalidInput, modPath, err)
	}
	return escaped, nil
}

// GetVersions lists every known version via the proxy's @v/list endpoint,
// then consults the latest version's go.mod for retract directives to
// flag withdrawn versions, per spec.md's yanked-version support extended
// to Go's "retract" mechanism.
func (r *Registry) GetVersions(ctx context.Context, name string) ([]ecosystem.Version, error) {
	escaped, err := r.escapedPath(name)
	if err != nil {
		return nil, err
	}

	listBody, err := r.cache.Get(ctx, fmt.Sprintf("%s/%s/@v/list", proxyBaseURL, escaped))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ecosystem.ErrRegistry, err)
	}
	var nums []string
	for _, line := range strings.Split(string(listBody.Bytes), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			nums = append(nums, line)
		}
	}

	retracted := r.retractedRanges(ctx, name, escaped)

	versions := make([]ecosystem.Version, 0, len(nums))
	for _, num := range nums {
		info, _ := r.versionInfo(ctx, escaped, num)
		v := ecosystem.Version{
			Version:    num,
			Prerelease: semver.Prerelease(num) != "" || module.IsPseudoVersion(num),
		}
		if info != nil {
			v.PublishedAt = info.Time
		}
		if reason, yanked := matchesRetraction(num, retracted); yanked {
			v.Yanked = true
			v.YankedReason = reason
		}
		versions = append(versions, v)
	}

	sort.SliceStable(versions, func(i, j int) bool {
		return compareVersions(versions[i].Version, versions[j].Version) > 0
	})
	return versions, nil
}

func (r *Registry) versionInfo(ctx context.Context, escapedPath, version string) (*latestInfo, error) {
	body, err := r.cache.Get(ctx, fmt.Sprintf("%s/%s/@v/%s.info", proxyBaseURL, escapedPath, version))
	if err != nil {
		return nil, err
	}
	var info latestInfo
	if err := json.Unmarshal(body.Bytes, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

type retraction struct {
	low, high string
	rationale string
}

// retractedRanges fetches the latest version's go.mod and extracts its
// Retract directives. Failures (no go.mod, parse error) are silently
// treated as "nothing retracted" since this is a best-effort enrichment,
// not core version listing.
func (r *Registry) retractedRanges(ctx context.Context, modPath, escapedPath string) []retraction {
	latestBody, err := r.cache.Get(ctx, fmt.Sprintf("%s/%s/@latest", proxyBaseURL, escapedPath))
	if err != nil {
		return nil
	}
	var latest latestInfo
	if err := json.Unmarshal(latestBody.Bytes, &latest); err != nil || latest.Version == "" {
		return nil
	}

	modBody, err := r.cache.Get(ctx, fmt.Sprintf("%s/%s/@v/%s.mod", proxyBaseURL, escapedPath, latest.Version))
	if err != nil {
		return nil
	}
	f, err := modfile.Parse(modPath+"@"+latest.Version+"/go.mod", modBody.Bytes, nil)
	if err != nil {
		return nil
	}

	out := make([]retraction, 0, len(f.Retract))
	for _, ret := range f.Retract {
		out = append(out, retraction{low: ret.Low, high: ret.High, rationale: ret.Rationale})
	}
	return out
}

func matchesRetraction(version string, ranges []retraction) (reason string, yanked bool) {
	for _, ret := range ranges {
		low, high := ret.low, ret.high
		if low == "" {
			low = high
		}
		if compareVersions(version, low) >= 0 && compareVersions(version, high) <= 0 {
			return ret.rationale, true
		}
	}
	return "", false
}

func (r *Registry) GetLatestMatching(ctx context.Context, name, requirement string) (*ecosystem.Version, error) {
	versions, err := r.GetVersions(ctx, name)
	if err != nil {
		return nil, err
	}

	requirement = strings.TrimSpace(requirement)
	admitsPrerelease := semver.Prerelease(requirement) != "" || module.IsPseudoVersion(requirement)

	for i := range versions {
		v := versions[i]
		if v.Yanked {
			continue
		}
		if v.Prerelease && !admitsPrerelease {
			continue
		}
		if requirement == "" || compareVersions(v.Version, requirement) >= 0 {
			return &v, nil
		}
	}
	return nil, nil
}

// Search returns an empty slice: the Go module proxy protocol has no
// package-search endpoint (pkg.go.dev's search is a separate, undocumented
// surface), per the first of DESIGN.md's "Open Question decisions".
func (r *Registry) Search(ctx context.Context, query string, limit int) ([]ecosystem.Metadata, error) {
	return nil, nil
}

func (r *Registry) PackageURL(name string) string {
	return fmt.Sprintf("https://pkg.go.dev/%s", name)
}
