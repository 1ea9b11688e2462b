// Package arch_test checks structural rules across the internal packages:
// import layering, documentation, package-level state and file size.
package arch_test

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"
)

const modulePath = "github.com/papapumpkin/when"

// repoRoot walks up from the working directory to the directory holding go.mod.
func repoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("go.mod not found above working directory")
		}
		dir = parent
	}
}

func internalDir(t *testing.T) string {
	t.Helper()
	return filepath.Join(repoRoot(t), "internal")
}

// packages lists the internal packages that contain non-test Go files.
func packages(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(internalDir(t))
	if err != nil {
		t.Fatalf("reading internal/: %v", err)
	}
	var pkgs []string
	for _, e := range entries {
		if !e.IsDir() || e.Name() == "arch_test" {
			continue
		}
		if len(sourceFiles(t, e.Name(), false)) > 0 {
			pkgs = append(pkgs, e.Name())
		}
	}
	sort.Strings(pkgs)
	return pkgs
}

// sourceFiles returns the .go files of pkg, optionally including tests.
func sourceFiles(t *testing.T, pkg string, withTests bool) []string {
	t.Helper()
	dir := filepath.Join(internalDir(t), pkg)
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading %s: %v", dir, err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") {
			continue
		}
		if !withTests && strings.HasSuffix(name, "_test.go") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	return files
}

type parsedFile struct {
	path string
	file *ast.File
}

// parse parses the non-test files of pkg with comments.
func parse(t *testing.T, pkg string) []parsedFile {
	t.Helper()
	fset := token.NewFileSet()
	var out []parsedFile
	for _, path := range sourceFiles(t, pkg, false) {
		f, err := parser.ParseFile(fset, path, nil, parser.ParseComments|parser.SkipObjectResolution)
		if err != nil {
			t.Fatalf("parsing %s: %v", path, err)
		}
		out = append(out, parsedFile{path: path, file: f})
	}
	return out
}

// internalImports returns the internal packages pkg imports, by short name.
func internalImports(t *testing.T, pkg string) []string {
	t.Helper()
	prefix := modulePath + "/internal/"
	seen := make(map[string]bool)
	for _, pf := range parse(t, pkg) {
		for _, imp := range pf.file.Imports {
			path, err := strconv.Unquote(imp.Path.Value)
			if err != nil || !strings.HasPrefix(path, prefix) {
				continue
			}
			seen[strings.SplitN(strings.TrimPrefix(path, prefix), "/", 2)[0]] = true
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func rel(t *testing.T, path string) string {
	t.Helper()
	r, err := filepath.Rel(repoRoot(t), path)
	if err != nil {
		return path
	}
	return r
}

func TestHelpers(t *testing.T) {
	t.Parallel()

	pkgs := packages(t)
	for _, want := range []string{"convert", "expr", "resolve", "tzdb"} {
		if !contains(pkgs, want) {
			t.Errorf("packages() = %v, missing %q", pkgs, want)
		}
	}
	if contains(pkgs, "arch_test") {
		t.Error("packages() should skip arch_test")
	}

	imports := internalImports(t, "convert")
	for _, want := range []string{"evaluate", "expr", "resolve"} {
		if !contains(imports, want) {
			t.Errorf("internalImports(convert) = %v, missing %q", imports, want)
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
