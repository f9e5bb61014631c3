package parser

import (
	"context"
	"go/ast"
	"go/token"
	"path/filepath"
	"sort"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"github.com/numeron/brick/pkg/options"
)

const loadMode = packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
	packages.NeedTypes | packages.NeedTypesInfo | packages.NeedModule

// File is one parsed source file with the package it was checked in.
type File struct {
	Path   string
	Syntax *ast.File
	Pkg    *packages.Package
}

// Parser loads packages for a generation pass.
type Parser struct {
	Opts options.Options
	log  *zap.Logger
}

// New builds a parser from functional options.
func New(log *zap.Logger, opts ...options.Option) (*Parser, error) {
	return NewWithOpts(log, options.New(opts...))
}

func NewWithOpts(log *zap.Logger, opts *options.Options) (*Parser, error) {
	opts.Normalize()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{Opts: *opts, log: log}, nil
}

// Load type-checks the configured patterns. Packages with errors are kept
// and logged; whatever type information they have is still usable.
func (p *Parser) Load(ctx context.Context) (*Session, error) {
	mod, err := LoadModule(p.Opts.InDir)
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	pkgs, err := packages.Load(&packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     p.Opts.InDir,
		Fset:    fset,
	}, p.Opts.Patterns...)
	if err != nil {
		return nil, errors.Wrapf(err, "load %v", p.Opts.Patterns)
	}

	s := &Session{Packages: pkgs, Module: mod, Fset: fset}
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			p.log.Warn("package error", zap.String("package", pkg.PkgPath), zap.String("error", e.Error()))
		}
		if pkg.Types == nil || pkg.TypesInfo == nil {
			continue
		}
		for _, f := range pkg.Syntax {
			s.files = append(s.files, &File{
				Path:   filepath.Clean(fset.Position(f.Package).Filename),
				Syntax: f,
				Pkg:    pkg,
			})
		}
	}
	sort.Slice(s.files, func(i, j int) bool { return s.files[i].Path < s.files[j].Path })
	p.log.Debug("loaded packages", zap.Int("packages", len(pkgs)), zap.Int("files", len(s.files)))
	return s, nil
}

// Session is the result of one load: every file plus the subset that
// changed since the previous pass.
type Session struct {
	Packages []*packages.Package
	Module   *Module
	Fset     *token.FileSet

	files   []*File
	changed map[string]bool
}

// AllFiles returns every loaded file, sorted by path.
func (s *Session) AllFiles() []*File { return s.files }

// NewFiles returns the files marked as changed, sorted by path.
func (s *Session) NewFiles() []*File {
	out := make([]*File, 0, len(s.changed))
	for _, f := range s.files {
		if s.changed[f.Path] {
			out = append(out, f)
		}
	}
	return out
}

// WithChanges returns a session sharing s's packages whose NewFiles are
// paths. Relative paths are taken from the module root.
func (s *Session) WithChanges(paths []string) *Session {
	c := *s
	c.changed = make(map[string]bool, len(paths))
	for _, p := range paths {
		if !filepath.IsAbs(p) && s.Module != nil {
			p = filepath.Join(s.Module.Root, p)
		}
		c.changed[filepath.Clean(p)] = true
	}
	return &c
}

func dirOf(filename string) string {
	return filepath.Dir(filename)
}
