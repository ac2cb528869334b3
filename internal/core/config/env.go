package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: DUPGUARD_[SECTION]_[KEY] (e.g., DUPGUARD_SCAN_VARIANT).
func ApplyEnvOverrides(cfg *Config) {
	// Project
	setEnvString(&cfg.Project.RootDir, "DUPGUARD_PROJECT_ROOT_DIR")
	setEnvString(&cfg.Project.Manifest, "DUPGUARD_PROJECT_MANIFEST")

	// Scan
	setEnvString(&cfg.Scan.RootModule, "DUPGUARD_SCAN_ROOT_MODULE")
	setEnvString(&cfg.Scan.Variant, "DUPGUARD_SCAN_VARIANT")
	setEnvBoolPtr(&cfg.Scan.IncludeRoot, "DUPGUARD_SCAN_INCLUDE_ROOT")
	setEnvList(&cfg.Scan.Kinds, "DUPGUARD_SCAN_KINDS")
	setEnvString(&cfg.Scan.Order, "DUPGUARD_SCAN_ORDER")
	setEnvBool(&cfg.Scan.FailOnDuplicates, "DUPGUARD_SCAN_FAIL_ON_DUPLICATES")
	setEnvDuration(&cfg.Scan.Timeout, "DUPGUARD_SCAN_TIMEOUT")

	// Performance
	setEnvInt(&cfg.Performance.Workers, "DUPGUARD_PERFORMANCE_WORKERS")
	setEnvFloat64(&cfg.Performance.WalkRate, "DUPGUARD_PERFORMANCE_WALK_RATE")

	// Output
	setEnvString(&cfg.Output.Format, "DUPGUARD_OUTPUT_FORMAT")
	setEnvString(&cfg.Output.Path, "DUPGUARD_OUTPUT_PATH")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "DUPGUARD_WATCH_DEBOUNCE")

	// Observability
	setEnvBool(&cfg.Observability.Enabled, "DUPGUARD_OBSERVABILITY_ENABLED")
	setEnvString(&cfg.Observability.Address, "DUPGUARD_OBSERVABILITY_ADDRESS")
	setEnvString(&cfg.Observability.OTLPEndpoint, "DUPGUARD_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvBool(&cfg.Observability.OTLPInsecure, "DUPGUARD_OBSERVABILITY_OTLP_INSECURE")

	normalize(cfg)
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvList(target *[]string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = strings.Split(val, ",")
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvBoolPtr(target **bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = &b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
