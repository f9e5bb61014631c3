package parser

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/mod/modfile"
)

// Module is the go.mod enclosing the loaded packages.
type Module struct {
	Root string
	Path string
	File *modfile.File
}

// FindGoModDir walks up from dir until it finds go.mod.
func FindGoModDir(dir string) (string, error) {
	from, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, "resolve %s", dir)
	}
	for {
		if _, err = os.Stat(filepath.Join(from, "go.mod")); err == nil {
			return from, nil
		}
		parent := filepath.Dir(from)
		if parent == from {
			return "", errors.WithHint(errors.Newf("no go.mod found above %s", dir), "run inside a Go module")
		}
		from = parent
	}
}

// LoadModule parses the go.mod enclosing dir.
func LoadModule(dir string) (*Module, error) {
	root, err := FindGoModDir(dir)
	if err != nil {
		return nil, err
	}
	name := filepath.Join(root, "go.mod")
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read go.mod")
	}
	mf, err := modfile.Parse(name, data, nil)
	if err != nil {
		return nil, errors.Wrap(err, "parse go.mod")
	}
	m := &Module{Root: root, File: mf}
	if mf.Module != nil {
		m.Path = mf.Module.Mod.Path
	}
	return m, nil
}

// Provides reports whether importPath is inside this module or one of its
// requirements.
func (m *Module) Provides(importPath string) bool {
	if within(importPath, m.Path) {
		return true
	}
	for _, r := range m.File.Require {
		if within(importPath, r.Mod.Path) {
			return true
		}
	}
	return false
}

func within(importPath, modPath string) bool {
	return modPath != "" && (importPath == modPath || strings.HasPrefix(importPath, modPath+"/"))
}
