package project

import (
	"dupguard/internal/core/errors"
	"dupguard/internal/engine/modules"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func depIDs(t *testing.T, p *Project, id string) []string {
	t.Helper()
	m, err := p.Lookup(id)
	if err != nil {
		t.Fatalf("Lookup(%s): %v", id, err)
	}
	deps, err := p.Dependencies(m)
	if err != nil {
		t.Fatalf("Dependencies(%s): %v", id, err)
	}
	ids := modules.IDs(deps)
	sort.Strings(ids)
	return ids
}

func TestLoadGradle_Groovy(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "settings.gradle"), `
rootProject.name = "shop"
include ':app', ':core:data',
        ':feature'
// include ':disabled'
/* include ':also-disabled' */
include 'legacy'
project(':legacy').projectDir = new File(rootDir, 'libs/legacy')
`)
	write(t, filepath.Join(root, "app", "build.gradle"), `
dependencies {
    implementation project(':core:data')
    implementation project(path: ':feature')
    implementation project(':app') // self
    implementation project(':unknown')
}
`)
	write(t, filepath.Join(root, "feature", "build.gradle"), `
dependencies { api project(":legacy") }
`)

	p, err := LoadGradle(root)
	if err != nil {
		t.Fatalf("LoadGradle: %v", err)
	}

	ids := modules.IDs(p.Modules())
	want := []string{":", ":app", ":core:data", ":feature", ":legacy"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("expected modules %v, got %v", want, ids)
	}

	data, _ := p.Module(":core:data")
	if data.Dir != filepath.Join(root, "core", "data") {
		t.Errorf("unexpected :core:data dir %s", data.Dir)
	}
	legacy, _ := p.Module(":legacy")
	if legacy.Dir != filepath.Join(root, "libs", "legacy") {
		t.Errorf("expected projectDir override, got %s", legacy.Dir)
	}

	if got := depIDs(t, p, ":app"); !reflect.DeepEqual(got, []string{":core:data", ":feature"}) {
		t.Errorf("unexpected :app deps %v", got)
	}
	if got := depIDs(t, p, ":feature"); !reflect.DeepEqual(got, []string{":legacy"}) {
		t.Errorf("unexpected :feature deps %v", got)
	}
}

func TestLoadGradle_KotlinDSL(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "settings.gradle.kts"), `
include(
    ":app",
    ":core-data",
)
include(":shared:ui")
project(":shared:ui").projectDir = file("modules/ui")
`)
	write(t, filepath.Join(root, "app", "build.gradle.kts"), `
dependencies {
    implementation(projects.coreData)
    implementation(projects.shared.ui.dependencyProject)
}
`)

	p, err := LoadGradle(root)
	if err != nil {
		t.Fatalf("LoadGradle: %v", err)
	}
	if got := depIDs(t, p, ":app"); !reflect.DeepEqual(got, []string{":core-data", ":shared:ui"}) {
		t.Errorf("unexpected :app deps %v", got)
	}
	ui, _ := p.Module(":shared:ui")
	if ui.Dir != filepath.Join(root, "modules", "ui") {
		t.Errorf("expected override dir, got %s", ui.Dir)
	}
}

func TestLoadGradle_GlobPatternsAreNotComments(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "settings.gradle"), `
include ':app', ':data', ':net'
`)
	write(t, filepath.Join(root, "app", "build.gradle"), `
android {
    sourceSets { main { java { exclude '**/gen/**' } } }
}
dependencies {
    implementation project(':data')
    compileOnly files("https://example.com/lib.jar") // project(':skipped')
}
android {
    sourceSets { main { java { exclude '**/slow/**' } } }
}
`)
	write(t, filepath.Join(root, "net", "build.gradle.kts"), `
val banner = """
    /* not a comment
"""
dependencies {
    implementation(project(":data"))
}
val tail = """*/"""
`)

	p, err := LoadGradle(root)
	if err != nil {
		t.Fatalf("LoadGradle: %v", err)
	}
	if got := depIDs(t, p, ":app"); !reflect.DeepEqual(got, []string{":data"}) {
		t.Errorf("unexpected :app deps %v", got)
	}
	if got := depIDs(t, p, ":net"); !reflect.DeepEqual(got, []string{":data"}) {
		t.Errorf("unexpected :net deps %v", got)
	}
}

func TestStripComments(t *testing.T) {
	cases := map[string]string{
		"a // b\nc":             "a \nc",
		"a /* b */ c":           "a   c",
		"x '/*' y":              "x '/*' y",
		`x "a\"//" y`:           `x "a\"//" y`,
		"x /* open":             "x ",
		`s = """//"""`:          `s = """//"""`,
		"url = 'http://h' // c": "url = 'http://h' ",
	}
	for in, want := range cases {
		if got := stripComments(in); got != want {
			t.Errorf("stripComments(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadGradle_MissingSettings(t *testing.T) {
	_, err := LoadGradle(t.TempDir())
	if !errors.IsCode(err, errors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLoadGradle_CycleIsLoaded(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "settings.gradle"), "include ':m1', ':m2'\n")
	write(t, filepath.Join(root, "m1", "build.gradle"), "dependencies { implementation project(':m2') }\n")
	write(t, filepath.Join(root, "m2", "build.gradle"), "dependencies { implementation project(':m1') }\n")

	p, err := LoadGradle(root)
	if err != nil {
		t.Fatalf("LoadGradle: %v", err)
	}
	if got := depIDs(t, p, ":m1"); !reflect.DeepEqual(got, []string{":m2"}) {
		t.Errorf("unexpected :m1 deps %v", got)
	}
	if got := depIDs(t, p, ":m2"); !reflect.DeepEqual(got, []string{":m1"}) {
		t.Errorf("unexpected :m2 deps %v", got)
	}
}

func TestTypesafeAccessor(t *testing.T) {
	cases := map[string]string{
		":app":           "app",
		":core-data":     "coreData",
		":core:data_api": "core.dataApi",
		":a-b-c:d":       "aBC.d",
		":_foo":          "foo",
		":-foo-bar":      "fooBar",
	}
	for in, want := range cases {
		if got := TypesafeAccessor(in); got != want {
			t.Errorf("TypesafeAccessor(%q) = %q, want %q", in, got, want)
		}
	}
}
