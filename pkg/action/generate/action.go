package generate

import (
	"context"
	"go/ast"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"

	"github.com/numeron/brick/internal/generator"
	"github.com/numeron/brick/internal/model"
	"github.com/numeron/brick/internal/parser"
	"github.com/numeron/brick/internal/processor"
	"github.com/numeron/brick/pkg/manifest"
	"github.com/numeron/brick/pkg/options"
)

// Result summarizes one generation pass. Paths are absolute.
type Result struct {
	Units   []*model.GeneratedUnit
	Written []string
	Removed []string
	// Changed is the incremental change set, relative to the module root.
	Changed []string
	// Dirs are the directories of the loaded packages.
	Dirs []string
}

// Run loads the configured packages, generates units and updates the
// manifest.
func Run(ctx context.Context, log *zap.Logger, opts *options.Options) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	p, err := parser.NewWithOpts(log, opts)
	if err != nil {
		return nil, err
	}
	sess, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !sess.Module.Provides(p.Opts.Runtime) {
		log.Warn("module does not require the runtime, generated code will not build",
			zap.String("module", sess.Module.Path),
			zap.String("runtime", p.Opts.Runtime))
	}

	root := sess.Module.Root
	manifestPath := p.Opts.ManifestFile
	if !filepath.IsAbs(manifestPath) {
		manifestPath = filepath.Join(root, manifestPath)
	}
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}
	hashes, err := hashSources(root, sess.AllFiles())
	if err != nil {
		return nil, err
	}

	res := &Result{Dirs: packageDirs(sess.AllFiles())}
	var (
		resolver processor.Resolver = sess
		scope    []string
	)
	if p.Opts.Incremental {
		res.Changed, err = changedFiles(log, &p.Opts, root, m, hashes)
		if err != nil {
			return nil, err
		}
		resolver = sess.WithChanges(res.Changed)
		scope = res.Changed
		log.Info("incremental pass", zap.String("changes", p.Opts.Changes), zap.Strings("changed", res.Changed))
	} else {
		for _, src := range m.Sources {
			scope = append(scope, src.File)
		}
		for file := range hashes {
			scope = append(scope, file)
		}
	}

	out := generator.NewFileSystem(p.Opts.FileSuffix)
	proc := processor.Provider{}.Create(processor.Environment{CodeGenerator: out, Logger: log, Options: p.Opts})
	if _, err := proc.Process(resolver); err != nil {
		return nil, err
	}
	res.Units = proc.Units()

	produced := map[string][]string{}
	for _, o := range out.Outputs() {
		res.Written = append(res.Written, o.Path)
		for _, src := range o.Sources {
			rel := relPath(root, src)
			produced[rel] = append(produced[rel], relPath(root, o.Path))
		}
	}

	for _, file := range dedupe(scope) {
		var previous []string
		if s, ok := m.Source(file); ok {
			previous = s.Outputs
		}
		current := produced[file]
		for _, stale := range previous {
			if slices.Contains(current, stale) {
				continue
			}
			path := filepath.Join(root, filepath.FromSlash(stale))
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				return nil, errors.Wrapf(err, "remove stale unit %s", stale)
			}
			log.Info("removed stale unit", zap.String("file", stale))
			res.Removed = append(res.Removed, path)
		}
		hash, ok := hashes[file]
		if !ok {
			m.Forget(file)
			continue
		}
		m.Record(file, hash, current)
	}

	if err := m.Save(manifestPath); err != nil {
		return nil, err
	}
	log.Info("generation done",
		zap.Int("units", len(res.Units)),
		zap.Int("removed", len(res.Removed)))
	return res, nil
}

// hashSources hashes every hand-written file, keyed by module-relative path.
func hashSources(root string, files []*parser.File) (map[string]string, error) {
	hashes := make(map[string]string, len(files))
	for _, f := range files {
		if ast.IsGenerated(f.Syntax) {
			continue
		}
		h, err := manifest.HashFile(f.Path)
		if err != nil {
			return nil, err
		}
		hashes[relPath(root, f.Path)] = h
	}
	return hashes, nil
}

func changedFiles(log *zap.Logger, opts *options.Options, root string, m *manifest.Manifest, hashes map[string]string) ([]string, error) {
	switch opts.Changes {
	case options.ChangesGit:
		return gitChanges(log, root)
	case options.ChangesExplicit:
		out := make([]string, 0, len(opts.Changed))
		for _, c := range opts.Changed {
			if !filepath.IsAbs(c) {
				c = filepath.Join(opts.InDir, c)
			}
			out = append(out, relPath(root, c))
		}
		return dedupe(out), nil
	default:
		return m.Changed(hashes), nil
	}
}

// gitChanges lists modified, added and untracked Go files of the work tree
// containing root.
func gitChanges(log *zap.Logger, root string) ([]string, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.WithHint(errors.Wrap(err, "open git repository"), "use --changes manifest outside a git work tree")
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, errors.Wrap(err, "open work tree")
	}
	status, err := wt.Status()
	if err != nil {
		return nil, errors.Wrap(err, "git status")
	}
	top := wt.Filesystem.Root()
	var out []string
	for file, st := range status {
		if !strings.HasSuffix(file, ".go") || strings.HasSuffix(file, "_test.go") {
			continue
		}
		if st.Worktree == git.Unmodified && st.Staging == git.Unmodified {
			continue
		}
		abs := filepath.Join(top, filepath.FromSlash(file))
		rel := relPath(root, abs)
		if strings.HasPrefix(rel, "../") {
			continue
		}
		out = append(out, rel)
	}
	sort.Strings(out)
	log.Debug("git changes", zap.Strings("files", out))
	return out, nil
}

func packageDirs(files []*parser.File) []string {
	var dirs []string
	for _, f := range files {
		dirs = append(dirs, filepath.Dir(f.Path))
	}
	return dedupe(dirs)
}

// relPath is path relative to root with forward slashes, or path itself
// when no relative form exists.
func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func dedupe(in []string) []string {
	out := slices.Clone(in)
	sort.Strings(out)
	return slices.Compact(out)
}
