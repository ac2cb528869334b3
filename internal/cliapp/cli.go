package cliapp

import (
	"dupguard/internal/core/config"
	"flag"
	"io"
)

const defaultConfigPath = "./" + config.DefaultConfigFile

type cliOptions struct {
	configPath       string
	variant          string
	rootModule       string
	projectDir       string
	manifest         string
	format           string
	out              string
	order            string
	includeRoot      bool
	failOnDuplicates bool
	workers          int
	watch            bool
	listRoots        bool
	verbose          bool
	version          bool

	// set records the flags given on the command line, so only those
	// override config and environment values.
	set  map[string]bool
	args []string
}

func parseOptions(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("dupguard", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", defaultConfigPath, "Path to config file")
	fs.StringVar(&opts.variant, "variant", "", "Build variant to scan (e.g. debug, freeRelease)")
	fs.StringVar(&opts.rootModule, "root", "", "Root module ID whose dependency closure is scanned")
	fs.StringVar(&opts.projectDir, "project", "", "Project root directory holding settings.gradle(.kts)")
	fs.StringVar(&opts.manifest, "manifest", "", "TOML module manifest used instead of Gradle settings")
	fs.StringVar(&opts.format, "format", "", "Report format: text, markdown, tsv, json, sarif")
	fs.StringVar(&opts.out, "out", "", "Write the report to this file instead of stdout")
	fs.StringVar(&opts.order, "order", "", "Group ordering: name or first-seen")
	fs.BoolVar(&opts.includeRoot, "include-root", true, "Scan the root module's own sources")
	fs.BoolVar(&opts.failOnDuplicates, "fail-on-duplicates", false, "Exit with status 3 when duplicates are found")
	fs.IntVar(&opts.workers, "workers", 0, "Number of modules walked concurrently")
	fs.BoolVar(&opts.watch, "watch", false, "Keep running and rescan when source files are added, removed or renamed")
	fs.BoolVar(&opts.listRoots, "list-roots", false, "Print the source roots that would be scanned and exit")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	opts.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	opts.args = fs.Args()
	return opts, nil
}

// applyFlagOverrides copies explicitly set flags onto cfg. Path flags are
// handled by resolveFlagPaths since they are relative to the working
// directory rather than the config file.
func applyFlagOverrides(opts cliOptions, cfg *config.Config) {
	if opts.set["variant"] {
		cfg.Scan.Variant = opts.variant
	}
	if opts.set["root"] {
		cfg.Scan.RootModule = opts.rootModule
	}
	if opts.set["format"] {
		cfg.Output.Format = opts.format
	}
	if opts.set["order"] {
		cfg.Scan.Order = opts.order
	}
	if opts.set["include-root"] {
		include := opts.includeRoot
		cfg.Scan.IncludeRoot = &include
	}
	if opts.set["fail-on-duplicates"] {
		cfg.Scan.FailOnDuplicates = opts.failOnDuplicates
	}
	if opts.set["workers"] {
		cfg.Performance.Workers = opts.workers
	}
}
