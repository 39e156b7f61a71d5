package pypi

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	json "github.com/segmentio/encoding/json"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/httpcache"
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/validate"
)

const registryBaseURL = "https://pypi.org/pypi"

// Registry is the ecosystem.RegistryClient for pypi.org's legacy JSON API.
type Registry struct {
	cache *httpcache.Cache
}

// NewRegistry constructs a Registry sharing the given HTTP cache.
func NewRegistry(cache *httpcache.Cache) *Registry {
	return &Registry{cache: cache}
}

type projectResponse struct {
	Info struct {
		Name         string `json:"name"`
		Summary      string `json:"summary"`
		HomePage     string `json:"home_page"`
		ProjectURLs  map[string]string `json:"project_urls"`
		Version      string `json:"version"`
		Yanked       bool   `json:"yanked"`
		YankedReason string `json:"yanked_reason"`
	} `json:"info"`
	Releases map[string][]releaseFile `json:"releases"`
}

type releaseFile struct {
	UploadTimeISO8601 string `json:"upload_time_iso_8601"`
	Yanked            bool   `json:"yanked"`
	YankedReason      string `json:"yanked_reason"`
}

func (r *Registry) fetchProject(ctx context.Context, name string) (*projectResponse, error) {
	if err := validate.PackageName(name); err != nil {
		return nil, err
	}
	fetchURL := fmt.Sprintf("%s/%s/json", registryBaseURL, url.PathEscape(NormalizeName(name)))
	body, err := r.cache.Get(ctx, fetchURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ecosystem.ErrRegistry, err)
	}
	var resp projectResponse
	if err := json.Unmarshal(body.Bytes, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding PyPI response for %s: %w", ecosystem.ErrRegistry, name, err)
	}
	return &resp, nil
}

func (r *Registry) GetVersions(ctx context.Context, name string) ([]ecosystem.Version, error) {
	resp, err := r.fetchProject(ctx, name)
	if err != nil {
		return nil, err
	}

	versions := make([]ecosystem.Version, 0, len(resp.Releases))
	for num, files := range resp.Releases {
		if len(files) == 0 {
			// PyPI keeps an entry for releases whose files were all
			// deleted; synthesize a yanked-looking placeholder rather
			// than silently dropping the version number from the list.
			versions = append(versions, ecosystem.Version{Version: num, Yanked: true, Prerelease: isPrereleaseVersion(num)})
			continue
		}
		yanked := false
		reason := ""
		for _, f := range files {
			if f.Yanked {
				yanked = true
				reason = f.YankedReason
				break
			}
		}
		versions = append(versions, ecosystem.Version{
			Version:      num,
			Yanked:       yanked,
			YankedReason: reason,
			Prerelease:   isPrereleaseVersion(num),
		})
	}
	sort.SliceStable(versions, func(i, j int) bool {
		return compareVersions(versions[i].Version, versions[j].Version) > 0
	})
	return versions, nil
}

func (r *Registry) GetLatestMatching(ctx context.Context, name, requirement string) (*ecosystem.Version, error) {
	versions, err := r.GetVersions(ctx, name)
	if err != nil {
		return nil, err
	}
	clauses, err := parseSpecifierSet(requirement)
	if err != nil {
		return nil, fmt.Errorf("%w: bad specifier %q for %s: %w", ecosystem.ErrInvalidInput, requirement, name, err)
	}
	admitsPrerelease := len(clauses) == 1 && (clauses[0].op == "==" || clauses[0].op == "===") && isPrereleaseVersion(clauses[0].operand)

	for i := range versions {
		v := versions[i]
		if v.Yanked {
			continue
		}
		if v.Prerelease && !admitsPrerelease {
			continue
		}
		if len(clauses) == 0 || specifierMatches(v.Version, clauses) {
			return &v, nil
		}
	}
	return nil, nil
}

// Search returns an empty slice: PyPI retired its XML-RPC/search API in
// 2018 and the JSON API has no replacement (same result as Go modules,
// which never had one).
func (r *Registry) Search(ctx context.Context, query string, limit int) ([]ecosystem.Metadata, error) {
	return nil, nil
}

func (r *Registry) PackageURL(name string) string {
	return fmt.Sprintf("https://pypi.org/project/%s/", NormalizeName(name))
}
