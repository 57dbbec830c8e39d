package domain_test

import (
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modulePath = "github.com/reglet-dev/vertical"

// TestDomainHasNoOuterDependencies verifies that the domain layer imports
// neither the adapter, the infrastructure nor cgo.
func TestDomainHasNoOuterDependencies(t *testing.T) {
	fset := token.NewFileSet()

	for _, pkg := range []string{"entities", "errors", "ports"} {
		files, err := filepath.Glob(filepath.Join(pkg, "*.go"))
		require.NoError(t, err, "failed to glob %s files", pkg)
		require.NotEmpty(t, files, "no files in %s", pkg)

		for _, file := range files {
			if strings.HasSuffix(file, "_test.go") {
				continue
			}
			checkFileImports(t, fset, file, pkg)
		}
	}
}

func checkFileImports(t *testing.T, fset *token.FileSet, filename, pkg string) {
	t.Helper()

	f, err := parser.ParseFile(fset, filename, nil, parser.ImportsOnly)
	require.NoError(t, err, "failed to parse %s", filename)

	forbidden := []string{
		modulePath + "/bridge",
		modulePath + "/cmd",
		modulePath + "/config",
		modulePath + "/infrastructure",
		modulePath + "/internal",
		modulePath + "/log",
	}

	for _, imp := range f.Imports {
		importPath := strings.Trim(imp.Path.Value, `"`)

		assert.NotEqual(t, "C", importPath,
			"domain/%s (%s) must not use cgo", pkg, filepath.Base(filename))
		for _, prefix := range forbidden {
			assert.False(t, strings.HasPrefix(importPath, prefix),
				"domain/%s (%s) must not import %s", pkg, filepath.Base(filename), importPath)
		}
	}
}
