package project

import (
	"dupguard/internal/core/errors"
	"dupguard/internal/engine/modules"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// RootID is the Gradle path of the root project.
const RootID = ":"

var (
	settingsFiles = []string{"settings.gradle.kts", "settings.gradle"}
	buildFiles    = []string{"build.gradle.kts", "build.gradle"}

	includeRe     = regexp.MustCompile(`(?m)^\s*include\b`)
	quotedRe      = regexp.MustCompile(`["']([^"'\n]+)["']`)
	projectDirRe  = regexp.MustCompile(`project\(\s*["']([^"']+)["']\s*\)\.projectDir\s*=\s*(?:new\s+)?(?:File|file)\(\s*(?:(?:rootDir|settingsDir|rootProject\.projectDir)\s*,\s*)?["']([^"']+)["']\s*\)`)
	projectDepRe  = regexp.MustCompile(`project\(\s*(?:path\s*[:=]\s*)?["'](:[^"']*)["']`)
	typesafeDepRe = regexp.MustCompile(`\bprojects\.([A-Za-z0-9_]+(?:\.[A-Za-z0-9_]+)*)`)
)

// LoadGradle reads settings.gradle(.kts) under rootDir for included projects
// and each project's build file for project(...) dependencies.
func LoadGradle(rootDir string) (*Project, error) {
	root, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, errors.WrapFS(err, "resolve project root", rootDir)
	}

	settingsPath, content, err := readFirst(root, settingsFiles)
	if err != nil {
		return nil, err
	}
	if settingsPath == "" {
		return nil, errors.AddContext(
			errors.New(errors.CodeNotFound, "no settings.gradle or settings.gradle.kts found"),
			errors.CtxPath, root,
		)
	}

	settings := stripComments(content)
	p := newProject(root)
	p.AddModule(modules.Module{ID: RootID, Dir: root})

	overrides := make(map[string]string)
	for _, m := range projectDirRe.FindAllStringSubmatch(settings, -1) {
		overrides[normalizeID(m[1])] = filepath.Join(root, filepath.FromSlash(m[2]))
	}

	for _, id := range parseIncludes(settings) {
		dir, ok := overrides[id]
		if !ok {
			dir = filepath.Join(root, filepath.FromSlash(strings.ReplaceAll(strings.TrimPrefix(id, ":"), ":", "/")))
		}
		p.AddModule(modules.Module{ID: id, Dir: dir})
	}
	slog.Debug("loaded gradle settings", "path", settingsPath, "modules", p.ModuleCount())

	accessors := make(map[string]string)
	for _, m := range p.Modules() {
		if m.ID != RootID {
			accessors[TypesafeAccessor(m.ID)] = m.ID
		}
	}

	for _, m := range p.Modules() {
		buildPath, content, err := readFirst(m.Dir, buildFiles)
		if err != nil {
			return nil, errors.AddContext(err, errors.CtxModule, m.ID)
		}
		if buildPath == "" {
			continue
		}
		for _, dep := range parseBuildDependencies(stripComments(content), accessors) {
			if dep == m.ID {
				continue
			}
			if _, ok := p.Module(dep); !ok {
				slog.Debug("ignoring dependency on unknown project", "module", m.ID, "dependency", dep)
				continue
			}
			p.AddDependency(m.ID, dep)
		}
	}

	return p, nil
}

// readFirst returns the path and content of the first existing candidate in
// dir. A missing file is not an error; the returned path is then empty.
func readFirst(dir string, candidates []string) (string, string, error) {
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err == nil {
			return path, string(data), nil
		}
		if stderrors.Is(err, fs.ErrNotExist) {
			continue
		}
		return "", "", errors.WrapFS(err, "read gradle file", path)
	}
	return "", "", nil
}

// stripComments removes // and /* */ comments from a build script. String
// literals ('...', "..." and """...""") are copied through untouched, so a
// glob like '**/gen/**' never opens a comment.
func stripComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], `"""`):
			end := strings.Index(s[i+3:], `"""`)
			if end < 0 {
				b.WriteString(s[i:])
				return b.String()
			}
			n := i + 3 + end + 3
			b.WriteString(s[i:n])
			i = n
		case s[i] == '"' || s[i] == '\'':
			n := quotedEnd(s, i)
			b.WriteString(s[i:n])
			i = n
		case strings.HasPrefix(s[i:], "//"):
			end := strings.IndexByte(s[i:], '\n')
			if end < 0 {
				return b.String()
			}
			i += end
		case strings.HasPrefix(s[i:], "/*"):
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			b.WriteByte(' ')
			i += 2 + end + 2
		default:
			b.WriteByte(s[i])
			i++
		}
	}
	return b.String()
}

// quotedEnd returns the index just past the single-line literal opened at
// s[start]. An unterminated literal ends at the newline.
func quotedEnd(s string, start int) int {
	quote := s[start]
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			return i + 1
		case '\n':
			return i
		}
	}
	return len(s)
}

// parseIncludes extracts project paths from include statements in both the
// Groovy (include ':a', ':b') and Kotlin (include(":a", ":b")) forms,
// including calls that span several lines.
func parseIncludes(settings string) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, loc := range includeRe.FindAllStringIndex(settings, -1) {
		for _, arg := range quotedRe.FindAllStringSubmatch(includeArgs(settings[loc[1]:]), -1) {
			id := normalizeID(arg[1])
			if id == RootID || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

func includeArgs(rest string) string {
	trimmed := strings.TrimLeft(rest, " \t")
	if strings.HasPrefix(trimmed, "(") {
		depth := 0
		for i, r := range trimmed {
			switch r {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					return trimmed[:i+1]
				}
			}
		}
		return trimmed
	}

	var b strings.Builder
	for _, line := range strings.SplitAfter(trimmed, "\n") {
		b.WriteString(line)
		if !strings.HasSuffix(strings.TrimSpace(line), ",") {
			break
		}
	}
	return b.String()
}

func parseBuildDependencies(build string, accessors map[string]string) []string {
	var deps []string
	seen := make(map[string]bool)
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			deps = append(deps, id)
		}
	}

	for _, m := range projectDepRe.FindAllStringSubmatch(build, -1) {
		add(normalizeID(m[1]))
	}
	for _, m := range typesafeDepRe.FindAllStringSubmatch(build, -1) {
		parts := strings.Split(m[1], ".")
		for n := len(parts); n > 0; n-- {
			if id, ok := accessors[strings.Join(parts[:n], ".")]; ok {
				add(id)
				break
			}
		}
	}
	return deps
}

func normalizeID(raw string) string {
	id := strings.TrimSpace(raw)
	if !strings.HasPrefix(id, ":") {
		id = ":" + id
	}
	return id
}

// TypesafeAccessor returns the Gradle type-safe project accessor for a project
// path, without the leading "projects." (":core-data:api" -> "coreData.api").
func TypesafeAccessor(id string) string {
	segments := strings.Split(strings.TrimPrefix(id, ":"), ":")
	for i, seg := range segments {
		segments[i] = camelCase(seg)
	}
	return strings.Join(segments, ".")
}

func camelCase(s string) string {
	var b strings.Builder
	upper := false
	for _, r := range s {
		if r == '-' || r == '_' {
			upper = true
			continue
		}
		if upper && b.Len() > 0 {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
