package parser

import (
	"go/ast"
	"go/token"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"
)

func loadFixture(t *testing.T, name string) *packages.Package {
	t.Helper()
	dir, err := filepath.Abs(filepath.Join("testdata", "fixtures", name))
	require.NoError(t, err)
	pkgs, err := packages.Load(&packages.Config{Mode: loadMode, Dir: dir, Fset: token.NewFileSet()}, ".")
	require.NoError(t, err)
	require.Len(t, pkgs, 1)
	require.Empty(t, pkgs[0].Errors)
	return pkgs[0]
}

// typeSpec finds a top-level type declaration by name.
func typeSpec(t *testing.T, pkg *packages.Package, name string) (*ast.File, *ast.GenDecl, *ast.TypeSpec) {
	t.Helper()
	for _, f := range pkg.Syntax {
		for _, d := range f.Decls {
			gen, ok := d.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, s := range gen.Specs {
				if ts := s.(*ast.TypeSpec); ts.Name.Name == name {
					return f, gen, ts
				}
			}
		}
	}
	t.Fatalf("type %s not found in %s", name, pkg.PkgPath)
	return nil, nil, nil
}
