package config

import (
	"time"
)

const (
	DefaultConfigFile = "dupguard.toml"

	OrderName      = "name"
	OrderFirstSeen = "first-seen"

	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatTSV      = "tsv"
	FormatJSON     = "json"
	FormatSARIF    = "sarif"
)

type Config struct {
	Version       int           `toml:"version"`
	Project       Project       `toml:"project"`
	Scan          Scan          `toml:"scan"`
	Exclude       Exclude       `toml:"exclude"`
	Performance   Performance   `toml:"performance"`
	Output        Output        `toml:"output"`
	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`
}

// Project locates the host module graph. When Manifest is set it takes
// precedence over Gradle settings discovery under RootDir.
type Project struct {
	RootDir  string `toml:"root_dir"`
	Manifest string `toml:"manifest"`
}

type Scan struct {
	RootModule string `toml:"root_module"`
	Variant    string `toml:"variant"`
	// IncludeRoot controls whether the root module's own sources take part.
	IncludeRoot      *bool         `toml:"include_root"`
	Kinds            []string      `toml:"kinds"`
	Order            string        `toml:"order"`
	FailOnDuplicates bool          `toml:"fail_on_duplicates"`
	Timeout          time.Duration `toml:"timeout"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Performance struct {
	Workers int `toml:"workers"`
	// WalkRate caps directory reads per second; 0 disables throttling.
	WalkRate float64 `toml:"walk_rate"`
}

type Output struct {
	Format string `toml:"format"`
	Path   string `toml:"path"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type Observability struct {
	Enabled      bool   `toml:"enabled"`
	Address      string `toml:"address"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
	OTLPInsecure bool   `toml:"otlp_insecure"`
}

// IncludesRoot reports the effective root-inclusion policy.
func (s Scan) IncludesRoot() bool {
	if s.IncludeRoot == nil {
		return true
	}
	return *s.IncludeRoot
}

// Default returns a fully defaulted config, used when no file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
