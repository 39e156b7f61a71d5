package cargo

import (
	"context"
	"fmt"
	"sort"
	"time"

	json "github.com/segmentio/encoding/json"

	"github.com/persubmyorujt831/deps-lsp-sub000/internal/ecosystem"
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/httpcache"
	"github.com/persubmyorujt831/deps-lsp-sub000/internal/validate"
)

const registryBaseURL = "https://crates.io/api/v1/crates"

// Registry is the ecosystem.RegistryClient for crates.io.
type Registry struct {
	cache *httpcache.Cache
}

// NewRegistry constructs a Registry sharing the given HTTP cache.
func NewRegistry(cache *httpcache.Cache) *Registry {
	return &Registry{cache: cache}
}

type crateResponse struct {
	Crate struct {
		Name          string `json:"name"`
		Description   string `json:"description"`
		Documentation string `json:"documentation"`
		Repository    string `json:"repository"`
		MaxVersion    string `json:"max_stable_version"`
	} `json:"crate"`
	Versions []crateVersion `json:"versions"`
}

type crateVersion struct {
	Num         string    `json:"num"`
	Yanked      bool      `json:"yanked"`
	CreatedAt   time.Time `json:"created_at"`
	Features    map[string][]string `json:"features"`
}

func (r *Registry) fetchCrate(ctx context.Context, name string) (*crateResponse, error) {
	if err := validate.PackageName(name); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/%s", registryBaseURL, name)
	body, err := r.cache.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ecosystem.ErrRegistry, err)
	}
	var resp crateResponse
	if err := json.Unmarshal(body.Bytes, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding crates.io response for %s: %w", ecosystem.ErrRegistry, name, err)
	}
	return &resp, nil
}

func (r *Registry) GetVersions(ctx context.Context, name string) ([]ecosystem.Version, error) {
	resp, err := r.fetchCrate(ctx, name)
	if err != nil {
		return nil, err
	}

	versions := make([]ecosystem.Version, 0, len(resp.Versions))
	for _, v := range resp.Versions {
		features := make([]string, 0, len(v.Features))
		for f := range v.Features {
			features = append(features, f)
		}
		sort.Strings(features)
		versions = append(versions, ecosystem.Version{
			Version:     v.Num,
			Yanked:      v.Yanked,
			Prerelease:  isPrerelease(v.Num),
			PublishedAt: v.CreatedAt,
			Features:    features,
		})
	}
	// crates.io already returns newest first, but don't rely on an
	// undocumented external ordering.
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
	url := fmt.Sprintf("%s?q=%s&per_page=%d", registryBaseURL, query, limit)
	body, err := r.cache.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ecosystem.ErrRegistry, err)
	}

	var resp struct {
		Crates []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			MaxVersion  string `json:"max_stable_version"`
		} `json:"crates"`
	}
	if err := json.Unmarshal(body.Bytes, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding crates.io search response: %w", ecosystem.ErrRegistry, err)
	}

	out := make([]ecosystem.Metadata, 0, len(resp.Crates))
	for _, c := range resp.Crates {
		out = append(out, ecosystem.Metadata{
			Name:          c.Name,
			Description:   c.Description,
			LatestVersion: c.MaxVersion,
		})
	}
	return out, nil
}

func (r *Registry) PackageURL(name string) string {
	return fmt.Sprintf("https://crates.io/crates/%s", name)
}
