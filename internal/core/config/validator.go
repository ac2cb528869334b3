package config

import (
	"dupguard/internal/core/errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateScan(cfg *Config) error {
	if cfg.Scan.RootModule == "" {
		return fmt.Errorf("scan.root_module must not be empty")
	}
	if cfg.Scan.Variant == "" {
		return fmt.Errorf("scan.variant must not be empty")
	}
	if len(cfg.Scan.Kinds) == 0 {
		return fmt.Errorf("scan.kinds must list at least one directory kind")
	}
	switch cfg.Scan.Order {
	case OrderName, OrderFirstSeen:
	default:
		return fmt.Errorf("scan.order must be one of: %s, %s", OrderName, OrderFirstSeen)
	}
	if cfg.Scan.Timeout < 0 {
		return fmt.Errorf("scan.timeout must not be negative")
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for _, p := range cfg.Exclude.Dirs {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("invalid exclude.dirs pattern %q: %w", p, err)
		}
	}
	for _, p := range cfg.Exclude.Files {
		if _, err := glob.Compile(p); err != nil {
			return fmt.Errorf("invalid exclude.files pattern %q: %w", p, err)
		}
	}
	return nil
}

func validatePerformance(cfg *Config) error {
	if cfg.Performance.Workers < 1 {
		return fmt.Errorf("performance.workers must be >= 1")
	}
	if cfg.Performance.WalkRate < 0 {
		return fmt.Errorf("performance.walk_rate must not be negative")
	}
	return nil
}

func validateOutput(cfg *Config) error {
	switch cfg.Output.Format {
	case FormatText, FormatMarkdown, FormatTSV, FormatJSON, FormatSARIF:
		return nil
	default:
		return fmt.Errorf("output.format must be one of: %s", strings.Join(SupportedFormats(), ", "))
	}
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}

// SupportedFormats lists the report formats accepted by output.format.
func SupportedFormats() []string {
	return []string{FormatText, FormatMarkdown, FormatTSV, FormatJSON, FormatSARIF}
}

// Validate runs every check and returns all failures as validation errors.
func Validate(cfg *Config) []error {
	checks := []func(*Config) error{
		validateVersion,
		validateScan,
		validateExclude,
		validatePerformance,
		validateOutput,
		validateWatch,
	}

	var errs []error
	for _, check := range checks {
		if err := check(cfg); err != nil {
			errs = append(errs, errors.Wrap(err, errors.CodeValidationError, "invalid config"))
		}
	}
	return errs
}
