package options

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/mod/module"
)

const (
	// DefaultRuntime is the import path of the runtime generated code uses.
	DefaultRuntime = "github.com/numeron/brick"
	// DefaultBaseType is the type a struct must embed to get accessors.
	DefaultBaseType = DefaultRuntime + ".ViewModel"

	NamingSuffix = "suffix"
	NamingPlural = "plural"

	ChangesManifest = "manifest"
	ChangesGit      = "git"
	ChangesExplicit = "explicit"
)

// Collection rebinds a bare, unresolvable type name to a package.
type Collection struct {
	Name    string `json:"name" yaml:"name" toml:"name" mapstructure:"name"`
	Package string `json:"package" yaml:"package" toml:"package" mapstructure:"package"`
}

// Options control discovery and generation.
//
// InDir             – directory packages are loaded from
// Patterns          – go/packages patterns, "./..." by default
// BaseType          – fully qualified type ("import/path.Name") to look for
// Runtime           – import path of the brick runtime referenced by output
// ConstructorPrefix – prefix of the primary constructor, "New" by default
// FileSuffix        – appended to the unit name to form the file name
// Naming            – "suffix" (Name+"s") or "plural" (English plural)
// Collections       – bare names rebound to a package when unresolved
// CorePackage       – package given to other unresolved bare names
// Incremental       – visit only changed files
// Changes           – where changed files come from: manifest, git, explicit
// Changed           – explicit list of changed files
// ManifestFile      – incremental state, relative to the module root
type Options struct {
	InDir             string       `json:"in_dir,omitempty" yaml:"in_dir,omitempty" toml:"in_dir,omitempty" mapstructure:"in_dir,omitempty"`
	Patterns          []string     `json:"patterns,omitempty" yaml:"patterns,omitempty" toml:"patterns,omitempty" mapstructure:"patterns,omitempty"`
	BaseType          string       `json:"base_type,omitempty" yaml:"base_type,omitempty" toml:"base_type,omitempty" mapstructure:"base_type,omitempty"`
	Runtime           string       `json:"runtime,omitempty" yaml:"runtime,omitempty" toml:"runtime,omitempty" mapstructure:"runtime,omitempty"`
	ConstructorPrefix string       `json:"constructor_prefix,omitempty" yaml:"constructor_prefix,omitempty" toml:"constructor_prefix,omitempty" mapstructure:"constructor_prefix,omitempty"`
	FileSuffix        string       `json:"file_suffix,omitempty" yaml:"file_suffix,omitempty" toml:"file_suffix,omitempty" mapstructure:"file_suffix,omitempty"`
	Naming            string       `json:"naming,omitempty" yaml:"naming,omitempty" toml:"naming,omitempty" mapstructure:"naming,omitempty"`
	Collections       []Collection `json:"collections,omitempty" yaml:"collections,omitempty" toml:"collections,omitempty" mapstructure:"collections,omitempty"`
	CorePackage       string       `json:"core_package,omitempty" yaml:"core_package,omitempty" toml:"core_package,omitempty" mapstructure:"core_package,omitempty"`
	Incremental       bool         `json:"incremental,omitempty" yaml:"incremental,omitempty" toml:"incremental,omitempty" mapstructure:"incremental,omitempty"`
	Changes           string       `json:"changes,omitempty" yaml:"changes,omitempty" toml:"changes,omitempty" mapstructure:"changes,omitempty"`
	Changed           []string     `json:"changed,omitempty" yaml:"changed,omitempty" toml:"changed,omitempty" mapstructure:"changed,omitempty"`
	ManifestFile      string       `json:"manifest_file,omitempty" yaml:"manifest_file,omitempty" toml:"manifest_file,omitempty" mapstructure:"manifest_file,omitempty"`
}

// DefaultCollections is the allow-list used when none is configured.
func DefaultCollections() []Collection {
	return []Collection{
		{Name: "List", Package: "container/list"},
		{Name: "Element", Package: "container/list"},
		{Name: "Ring", Package: "container/ring"},
	}
}

func NewOptions() *Options {
	return &Options{
		InDir:             ".",
		Patterns:          []string{"./..."},
		BaseType:          DefaultBaseType,
		Runtime:           DefaultRuntime,
		ConstructorPrefix: "New",
		FileSuffix:        "_brick.go",
		Naming:            NamingSuffix,
		Collections:       DefaultCollections(),
		Changes:           ChangesManifest,
		ManifestFile:      ".brick/manifest.yaml",
	}
}

// Normalize fills unset fields with defaults. collectionStrings are
// "Name=import/path" pairs appended to Collections.
func (o *Options) Normalize(collectionStrings ...string) {
	for _, s := range collectionStrings {
		name, pkg, ok := strings.Cut(s, "=")
		if !ok {
			continue
		}
		o.Collections = append(o.Collections, Collection{Name: strings.TrimSpace(name), Package: strings.TrimSpace(pkg)})
	}
	if len(o.InDir) == 0 {
		o.InDir = "."
	}
	if abs, err := filepath.Abs(o.InDir); err == nil {
		o.InDir = abs
	}
	if len(o.Patterns) == 0 {
		o.Patterns = []string{"./..."}
	}
	if len(o.BaseType) == 0 {
		o.BaseType = DefaultBaseType
	}
	if len(o.Runtime) == 0 {
		o.Runtime = DefaultRuntime
	}
	if len(o.ConstructorPrefix) == 0 {
		o.ConstructorPrefix = "New"
	}
	if len(o.FileSuffix) == 0 {
		o.FileSuffix = "_brick.go"
	}
	if len(o.Naming) == 0 {
		o.Naming = NamingSuffix
	}
	if o.Collections == nil {
		o.Collections = DefaultCollections()
	}
	if len(o.Changes) == 0 {
		o.Changes = ChangesManifest
		if len(o.Changed) > 0 {
			o.Changes = ChangesExplicit
		}
	}
	if len(o.ManifestFile) == 0 {
		o.ManifestFile = ".brick/manifest.yaml"
	}
}

// Validate reports options that cannot drive a pass.
func (o *Options) Validate() error {
	pkg, name := SplitQualified(o.BaseType)
	if pkg == "" || name == "" {
		return errors.WithHint(
			errors.Newf("base type %q is not qualified", o.BaseType),
			"use the form import/path.TypeName",
		)
	}
	if err := module.CheckImportPath(pkg); err != nil {
		return errors.Wrapf(err, "base type %q", o.BaseType)
	}
	if err := module.CheckImportPath(o.Runtime); err != nil {
		return errors.Wrapf(err, "runtime %q", o.Runtime)
	}
	for _, c := range o.Collections {
		if c.Name == "" {
			return errors.Newf("collection entry for package %q has no name", c.Package)
		}
		if err := module.CheckImportPath(c.Package); err != nil {
			return errors.Wrapf(err, "collection %q", c.Name)
		}
	}
	switch o.Naming {
	case NamingSuffix, NamingPlural:
	default:
		return errors.Newf("unknown naming %q", o.Naming)
	}
	switch o.Changes {
	case ChangesManifest, ChangesGit, ChangesExplicit:
	default:
		return errors.Newf("unknown change source %q", o.Changes)
	}
	if !strings.HasSuffix(o.FileSuffix, ".go") || strings.HasSuffix(o.FileSuffix, "_test.go") {
		return errors.Newf("file suffix %q must end in .go and not in _test.go", o.FileSuffix)
	}
	return nil
}

// CollectionPackages returns the allow-list as a lookup table.
func (o *Options) CollectionPackages() map[string]string {
	m := make(map[string]string, len(o.Collections))
	for _, c := range o.Collections {
		m[c.Name] = c.Package
	}
	return m
}

// SplitQualified splits "import/path.Name" at the last dot after the last
// slash.
func SplitQualified(qualified string) (pkgPath, name string) {
	slash := strings.LastIndex(qualified, "/")
	dot := strings.LastIndex(qualified, ".")
	if dot <= slash {
		return "", qualified
	}
	return qualified[:dot], qualified[dot+1:]
}

// functional option pattern ---------------------------------------------------

type Option func(*Options)

func WithInDir(d string) Option             { return func(o *Options) { o.InDir = d } }
func WithPatterns(p ...string) Option       { return func(o *Options) { o.Patterns = p } }
func WithBaseType(t string) Option          { return func(o *Options) { o.BaseType = t } }
func WithRuntime(p string) Option           { return func(o *Options) { o.Runtime = p } }
func WithConstructorPrefix(p string) Option { return func(o *Options) { o.ConstructorPrefix = p } }
func WithFileSuffix(s string) Option        { return func(o *Options) { o.FileSuffix = s } }
func WithNaming(n string) Option            { return func(o *Options) { o.Naming = n } }
func WithCorePackage(p string) Option       { return func(o *Options) { o.CorePackage = p } }
func WithManifestFile(f string) Option      { return func(o *Options) { o.ManifestFile = f } }
func WithCollection(name, pkg string) Option {
	return func(o *Options) { o.Collections = append(o.Collections, Collection{Name: name, Package: pkg}) }
}
func WithIncremental(changes string) Option {
	return func(o *Options) { o.Incremental, o.Changes = true, changes }
}
func WithChanged(files ...string) Option {
	return func(o *Options) {
		o.Incremental, o.Changes = true, ChangesExplicit
		o.Changed = append(o.Changed, files...)
	}
}

// New builds Options from defaults and opts, then normalizes them.
func New(opts ...Option) *Options {
	o := NewOptions()
	for _, fn := range opts {
		fn(o)
	}
	o.Normalize()
	return o
}
