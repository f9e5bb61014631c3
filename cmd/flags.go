package cmd

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/numeron/brick/pkg/options"
)

// generatorFlags holds the flags shared by generate, verify and watch. Values
// come from the "generator" config key first; flags set on the command line
// override them.
type generatorFlags struct {
	opts        options.Options
	collections []string
}

func (g *generatorFlags) register(c *cobra.Command, incremental bool) {
	d := options.NewOptions()
	f := c.Flags()
	f.StringVarP(&g.opts.InDir, "dir", "i", d.InDir, "directory packages are loaded from")
	f.StringSliceVarP(&g.opts.Patterns, "pattern", "p", d.Patterns, "package patterns to load")
	f.StringVarP(&g.opts.BaseType, "base-type", "b", d.BaseType, "fully qualified type a struct must embed")
	f.StringVar(&g.opts.Runtime, "runtime", d.Runtime, "import path of the runtime referenced by generated code")
	f.StringVar(&g.opts.ConstructorPrefix, "constructor-prefix", d.ConstructorPrefix, "prefix of the primary constructor")
	f.StringVarP(&g.opts.FileSuffix, "suffix", "s", d.FileSuffix, "suffix of generated file names")
	f.StringVar(&g.opts.Naming, "naming", d.Naming, "unit naming (suffix, plural)")
	f.StringSliceVarP(&g.collections, "collection", "c", []string{}, "bind a bare type name to a package, ex: Deque=example.com/deque")
	f.StringVar(&g.opts.CorePackage, "core-package", "", "package given to other unresolved bare type names")
	f.StringVarP(&g.opts.ManifestFile, "manifest", "m", d.ManifestFile, "incremental state file, relative to the module root")
	if incremental {
		f.BoolVar(&g.opts.Incremental, "incremental", false, "only visit changed files")
		f.StringVar(&g.opts.Changes, "changes", d.Changes, "where changed files come from (manifest, git, explicit)")
		f.StringSliceVar(&g.opts.Changed, "changed", []string{}, "changed files, implies --incremental --changes=explicit")
	}
}

// options merges config and flags into normalized, validated options.
func (g *generatorFlags) options(c *cobra.Command) (*options.Options, error) {
	o := options.NewOptions()
	if viper.IsSet("generator") {
		if err := viper.UnmarshalKey("generator", o); err != nil {
			return nil, errors.Wrap(err, "read generator config")
		}
	}

	f := c.Flags()
	set := func(name string, apply func()) {
		if f.Changed(name) {
			apply()
		}
	}
	set("dir", func() { o.InDir = g.opts.InDir })
	set("pattern", func() { o.Patterns = g.opts.Patterns })
	set("base-type", func() { o.BaseType = g.opts.BaseType })
	set("runtime", func() { o.Runtime = g.opts.Runtime })
	set("constructor-prefix", func() { o.ConstructorPrefix = g.opts.ConstructorPrefix })
	set("suffix", func() { o.FileSuffix = g.opts.FileSuffix })
	set("naming", func() { o.Naming = g.opts.Naming })
	set("core-package", func() { o.CorePackage = g.opts.CorePackage })
	set("manifest", func() { o.ManifestFile = g.opts.ManifestFile })
	set("incremental", func() { o.Incremental = g.opts.Incremental })
	set("changes", func() { o.Changes = g.opts.Changes })
	set("changed", func() {
		o.Incremental = true
		o.Changes = options.ChangesExplicit
		o.Changed = g.opts.Changed
	})

	o.Normalize(g.collections...)
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}
