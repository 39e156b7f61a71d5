package npm

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	json "github.com/segmentio/encoding/json"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/httpcache"
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/validate"
)

const registryBaseURL = "https://registry.npmjs.org"

// Registry is the ecosystem.RegistryClient for registry.npmjs.org.
type Registry struct {
	cache *httpcache.Cache
}

// NewRegistry constructs a Registry sharing the given HTTP cache.
func NewRegistry(cache *httpcache.Cache) *Registry {
	return &Registry{cache: cache}
}

type packageResponse struct {
	Name     string                    `json:"name"`
	DistTags map[string]string         `json:"dist-tags"`
	Versions map[string]versionDetail  `json:"versions"`
	Time     map[string]time.Time      `json:"time"`
	Description string                 `json:"description"`
	Repository  struct {
		URL string `json:"url"`
	} `json:"repository"`
	Homepage string `json:"homepage"`
}

type versionDetail struct {
	Version     string `json:"version"`
	Deprecated  string `json:"deprecated"`
}

func (r *Registry) fetchPackage(ctx context.Context, name string) (*packageResponse, error) {
	if err := validate.PackageName(name); err != nil {
		return nil, err
	}
	fetchURL := fmt.Sprintf("%s/%s", registryBaseURL, url.PathEscape(name))
	body, err := r.cache.Get(ctx, fetchURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ecosystem.ErrRegistry, err)
	}
	var resp packageResponse
	if err := json.Unmarshal(body.Bytes, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding npm response for %s: %w", ecosystem.ErrRegistry, name, err)
	}
	return &resp, nil
}

func (r *Registry) GetVersions(ctx context.Context, name string) ([]ecosystem.Version, error) {
	resp, err := r.fetchPackage(ctx, name)
	if err != nil {
		return nil, err
	}

	versions := make([]ecosystem.Version, 0, len(resp.Versions))
	for num, detail := range resp.Versions {
		versions = append(versions, ecosystem.Version{
			Version:      num,
			Yanked:       detail.Deprecated != "",
			YankedReason: detail.Deprecated,
			Prerelease:   isPrerelease(num),
			PublishedAt:  resp.Time[num],
		})
	}
	sort.SliceStable(versions, func(i, j int) bool {
		return compareSemver(versions[i].Version, versions[j].Version) > 0
	})
	return versions, nil
}

func (r *Registry) GetLatestMatching(ctx context.Context, name, requirement string) (*ecosystem.Version, error) {
	versions, err := r.GetVersions(ctx, name)
	if err != nil {
		return nil, err
	}
	constraint, admitsPrerelease, err := parseConstraint(requirement)
	if err != nil {
		return nil, fmt.Errorf("%w: bad requirement %q for %s: %w", ecosystem.ErrInvalidInput, requirement, name, err)
	}
	for i := range versions {
		v := versions[i]
		if v.Yanked {
			continue
		}
		if v.Prerelease && !admitsPrerelease {
			continue
		}
		if constraint == nil || constraintMatches(constraint, v.Version) {
			return &v, nil
		}
	}
	return nil, nil
}

func (r *Registry) Search(ctx context.Context, query string, limit int) ([]ecosystem.Metadata, error) {
	if limit <= 0 {
		limit = 20
	}
	fetchURL := fmt.Sprintf("https://registry.npmjs.org/-/v1/search?text=%s&size=%d", url.QueryEscape(query), limit)
	body, err := r.cache.Get(ctx, fetchURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ecosystem.ErrRegistry, err)
	}

	var resp struct {
		Objects []struct {
			Package struct {
				Name        string `json:"name"`
				Description string `json:"description"`
				Version     string `json:"version"`
			} `json:"package"`
		} `json:"objects"`
	}
	if err := json.Unmarshal(body.Bytes, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding npm search response: %w", ecosystem.ErrRegistry, err)
	}

	out := make([]ecosystem.Metadata, 0, len(resp.Objects))
	for _, o := range resp.Objects {
		out = append(out, ecosystem.Metadata{
			Name:          o.Package.Name,
			Description:   o.Package.Description,
			LatestVersion: o.Package.Version,
		})
	}
	return out, nil
}

func (r *Registry) PackageURL(name string) string {
	return fmt.Sprintf("https://www.npmjs.com/package/%s", name)
}
