package core_test

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// modulePath is the import path prefix of this module.
const modulePath = "github.com/structview/structview"

// sourceImports returns the imports of every non-test Go file in dir, keyed by file name.
func sourceImports(t *testing.T, dir string) map[string][]string {
	t.Helper()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", dir, err)
	}

	fset := token.NewFileSet()
	out := make(map[string][]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") {
			continue
		}
		// Skip test files
		if strings.HasSuffix(entry.Name(), "_test.go") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		f, err := parser.ParseFile(fset, path, nil, parser.ImportsOnly)
		if err != nil {
			t.Errorf("Failed to parse %s: %v", path, err)
			continue
		}
		for _, imp := range f.Imports {
			out[entry.Name()] = append(out[entry.Name()], strings.Trim(imp.Path.Value, `"`))
		}
	}
	return out
}

// TestCoreImportsOnlyStdlib verifies pkg/core has no dependencies outside the standard library.
func TestCoreImportsOnlyStdlib(t *testing.T) {
	for file, imports := range sourceImports(t, ".") {
		for _, importPath := range imports {
			// Stdlib paths have no dot in the first element
			if strings.Contains(importPath, ".") {
				t.Errorf("%s imports non-stdlib package: %s", file, importPath)
			}
		}
	}
}

// TestCheckersImportOnlyCore verifies the validator and field checker depend only on
// pkg/core and the standard library, so they stay usable without the CLI or server.
func TestCheckersImportOnlyCore(t *testing.T) {
	for _, dir := range []string{"../validate", "../schema"} {
		for file, imports := range sourceImports(t, dir) {
			for _, importPath := range imports {
				if !strings.Contains(importPath, ".") || importPath == modulePath+"/pkg/core" {
					continue
				}
				t.Errorf("%s/%s imports forbidden package: %s", filepath.Base(dir), file, importPath)
			}
		}
	}
}

// TestPkgDoesNotImportInternal verifies no public package imports internal packages.
func TestPkgDoesNotImportInternal(t *testing.T) {
	for _, dir := range []string{".", "../validate", "../schema"} {
		for file, imports := range sourceImports(t, dir) {
			for _, importPath := range imports {
				if strings.Contains(importPath, "/internal/") {
					t.Errorf("%s/%s imports internal package: %s", filepath.Base(dir), file, importPath)
				}
			}
		}
	}
}
