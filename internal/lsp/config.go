package lsp

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the tuning knobs read from a workspace's .deps-lsp.yaml and
// from the client's initializationOptions, per spec.md §6. Both sources
// decode onto the same struct: the file supplies project-wide defaults, and
// initializationOptions (sent fresh on every client connection) layers on
// top and wins field-for-field.
type Config struct {
	InlayHints struct {
		Enabled           bool   `json:"enabled" yaml:"enabled"`
		ShowYanked        bool   `json:"showYanked" yaml:"showYanked"`
		UpToDateText      string `json:"upToDateText" yaml:"upToDateText"`
		NeedsUpdateText   string `json:"needsUpdateText" yaml:"needsUpdateText"`
		ShowUpToDateHints bool   `json:"showUpToDateHints" yaml:"showUpToDateHints"`
		ShowLoadingHints  bool   `json:"showLoadingHints" yaml:"showLoadingHints"`
		LoadingText       string `json:"loadingText" yaml:"loadingText"`
	} `json:"inlayHints" yaml:"inlayHints"`

	Diagnostics struct {
		OutdatedSeverity string `json:"outdatedSeverity" yaml:"outdatedSeverity"`
		YankedSeverity   string `json:"yankedSeverity" yaml:"yankedSeverity"`
		UnknownSeverity  string `json:"unknownSeverity" yaml:"unknownSeverity"`
		ErrorSeverity    string `json:"errorSeverity" yaml:"errorSeverity"`
	} `json:"diagnostics" yaml:"diagnostics"`

	Cache struct {
		FetchTimeoutSecs     int `json:"fetchTimeoutSecs" yaml:"fetchTimeoutSecs"`
		MaxConcurrentFetches int `json:"maxConcurrentFetches" yaml:"maxConcurrentFetches"`
	} `json:"cache" yaml:"cache"`

	ColdStart struct {
		Enabled bool `json:"enabled" yaml:"enabled"`
	} `json:"coldStart" yaml:"coldStart"`
}

// configFileNames are the filenames searched for in the workspace root and
// its ancestors, mirroring a project-level settings file convention.
var configFileNames = []string{".deps-lsp.yaml", ".deps-lsp.yml"}

// FindConfigFile searches dir and its ancestors for a .deps-lsp.yaml,
// returning "" if none exists.
func FindConfigFile(dir string) string {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		absDir = dir
	}
	for d := absDir; ; {
		for _, name := range configFileNames {
			path := filepath.Join(d, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		parent := filepath.Dir(d)
		if parent == d {
			return ""
		}
		d = parent
	}
}

// LoadConfigFile decodes a .deps-lsp.yaml over the defaults. A missing or
// malformed file yields the defaults unchanged rather than failing
// initialize: a workspace config file is an optional enrichment, not a
// prerequisite for the server to run.
func LoadConfigFile(path string) Config {
	cfg := DefaultConfig()
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig()
	}
	return cfg
}

// DefaultConfig returns the configuration used when the client sends no
// initializationOptions at all.
func DefaultConfig() Config {
	var c Config
	c.InlayHints.Enabled = true
	c.InlayHints.ShowYanked = true
	c.InlayHints.UpToDateText = "✅"
	c.InlayHints.NeedsUpdateText = "❌ {}"
	c.InlayHints.ShowUpToDateHints = true
	c.InlayHints.ShowLoadingHints = true
	c.InlayHints.LoadingText = "Fetching latest version…"
	c.Diagnostics.OutdatedSeverity = "hint"
	c.Diagnostics.YankedSeverity = "warning"
	c.Diagnostics.UnknownSeverity = "warning"
	c.Diagnostics.ErrorSeverity = "error"
	c.Cache.FetchTimeoutSecs = 5
	c.Cache.MaxConcurrentFetches = 20
	c.ColdStart.Enabled = true
	return c
}

// FetchTimeout is Cache.FetchTimeoutSecs as a time.Duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Cache.FetchTimeoutSecs) * time.Second
}
