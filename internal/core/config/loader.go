package config

import (
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

// Parse decodes TOML content, applies defaults and validates the result.
func Parse(content string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	normalize(&cfg)

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errs[0]
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.Project.RootDir) == "" {
		cfg.Project.RootDir = "."
	}

	if strings.TrimSpace(cfg.Scan.RootModule) == "" {
		cfg.Scan.RootModule = ":app"
	}
	if strings.TrimSpace(cfg.Scan.Variant) == "" {
		cfg.Scan.Variant = "debug"
	}
	if len(cfg.Scan.Kinds) == 0 {
		cfg.Scan.Kinds = []string{"aidl", "java"}
	}
	if strings.TrimSpace(cfg.Scan.Order) == "" {
		cfg.Scan.Order = OrderName
	}

	if cfg.Performance.Workers <= 0 {
		cfg.Performance.Workers = runtime.NumCPU()
	}

	if strings.TrimSpace(cfg.Output.Format) == "" {
		cfg.Output.Format = FormatText
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}

	if strings.TrimSpace(cfg.Observability.Address) == "" {
		cfg.Observability.Address = "127.0.0.1:9464"
	}
}

func normalize(cfg *Config) {
	cfg.Project.RootDir = strings.TrimSpace(cfg.Project.RootDir)
	cfg.Project.Manifest = strings.TrimSpace(cfg.Project.Manifest)
	cfg.Scan.RootModule = strings.TrimSpace(cfg.Scan.RootModule)
	cfg.Scan.Variant = strings.TrimSpace(cfg.Scan.Variant)
	cfg.Scan.Order = strings.ToLower(strings.TrimSpace(cfg.Scan.Order))
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	cfg.Output.Path = strings.TrimSpace(cfg.Output.Path)

	kinds := make([]string, 0, len(cfg.Scan.Kinds))
	seen := make(map[string]bool, len(cfg.Scan.Kinds))
	for _, kind := range cfg.Scan.Kinds {
		kind = strings.TrimSpace(kind)
		if kind == "" || seen[kind] {
			continue
		}
		seen[kind] = true
		kinds = append(kinds, kind)
	}
	cfg.Scan.Kinds = kinds
}

// Finalize re-normalizes and re-validates cfg after env or flag overrides.
func Finalize(cfg *Config) error {
	normalize(cfg)
	if errs := Validate(cfg); len(errs) > 0 {
		return errs[0]
	}
	return nil
}
