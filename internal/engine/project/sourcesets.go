package project

import (
	"path/filepath"
	"strings"
	"unicode"
)

// kindDirs lists the directory names under src/<set>/ that hold a kind.
var kindDirs = map[string][]string{
	"java": {"java", "kotlin"},
}

// ConventionDirs returns src/<set>/<dir> under moduleDir for every source set
// active in variant and every directory name of kind.
func ConventionDirs(moduleDir, variant, kind string) []string {
	names, ok := kindDirs[kind]
	if !ok {
		names = []string{kind}
	}
	var out []string
	for _, set := range SourceSetNames(variant) {
		for _, name := range names {
			out = append(out, filepath.Join(moduleDir, "src", set, name))
		}
	}
	return out
}

// SourceSetNames returns the Android source sets active for a variant, from
// lowest to highest priority: main, each flavor and the build type, the
// combined flavor name when there are several flavors, and the variant itself.
//
//	SourceSetNames("freeStagingDebug") = [main free staging debug freeStaging freeStagingDebug]
func SourceSetNames(variant string) []string {
	out := []string{"main"}
	variant = strings.TrimSpace(variant)
	if variant == "" {
		return out
	}

	seen := map[string]bool{"main": true}
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}

	words := splitCamel(variant)
	for _, w := range words {
		add(lowerFirst(w))
	}
	if len(words) > 2 {
		add(lowerFirst(strings.Join(words[:len(words)-1], "")))
	}
	add(variant)
	return out
}

func splitCamel(s string) []string {
	var words []string
	start := 0
	runes := []rune(s)
	for i := 1; i < len(runes); i++ {
		if unicode.IsUpper(runes[i]) && !unicode.IsUpper(runes[i-1]) {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	return append(words, string(runes[start:]))
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
