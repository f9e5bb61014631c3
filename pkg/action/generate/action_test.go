package generate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/numeron/brick/internal/parser"
	"github.com/numeron/brick/pkg/manifest"
	"github.com/numeron/brick/pkg/options"
)

const source = `package pass

import "github.com/numeron/brick"

type FooViewModel struct {
	brick.ViewModel
	id *string
}

func NewFooViewModel(id *string) *FooViewModel {
	return &FooViewModel{id: id}
}

type BarViewModel struct {
	brick.ViewModel
}
`

const edited = `package pass

import "github.com/numeron/brick"

type FooViewModel struct {
	brick.ViewModel
	id *string
}

func NewFooViewModel(id *string) *FooViewModel {
	return &FooViewModel{id: id}
}
`

// workspace creates a package inside the module so it can import the
// runtime, with its manifest kept next to it.
func workspace(t *testing.T) (dir string, opts func(...options.Option) *options.Options) {
	t.Helper()
	dir, err := os.MkdirTemp("testdata", "pass")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	dir, err = filepath.Abs(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vm.go"), []byte(source), 0o644))

	root, err := parser.FindGoModDir(dir)
	require.NoError(t, err)
	manifestFile, err := filepath.Rel(root, filepath.Join(dir, "manifest.yaml"))
	require.NoError(t, err)

	return dir, func(extra ...options.Option) *options.Options {
		return options.New(append([]options.Option{
			options.WithInDir(dir),
			options.WithPatterns("."),
			options.WithManifestFile(manifestFile),
		}, extra...)...)
	}
}

func TestRunFullThenIncremental(t *testing.T) {
	dir, opts := workspace(t)
	ctx := context.Background()
	foo := filepath.Join(dir, "FooViewModels_brick.go")
	bar := filepath.Join(dir, "BarViewModels_brick.go")

	res, err := Run(ctx, zap.NewNop(), opts())
	require.NoError(t, err)
	require.Len(t, res.Units, 2)
	assert.ElementsMatch(t, []string{foo, bar}, res.Written)
	assert.Equal(t, []string{dir}, res.Dirs)
	assert.FileExists(t, foo)
	assert.FileExists(t, bar)

	m, err := manifest.Load(filepath.Join(dir, "manifest.yaml"))
	require.NoError(t, err)
	require.Len(t, m.Sources, 1)
	assert.Len(t, m.Sources[0].Outputs, 2)

	// nothing changed
	res, err = Run(ctx, zap.NewNop(), opts(options.WithIncremental(options.ChangesManifest)))
	require.NoError(t, err)
	assert.Empty(t, res.Changed)
	assert.Empty(t, res.Units)
	assert.Empty(t, res.Removed)
	assert.FileExists(t, bar)

	// BarViewModel removed: its unit is stale
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vm.go"), []byte(edited), 0o644))
	res, err = Run(ctx, zap.NewNop(), opts(options.WithIncremental(options.ChangesManifest)))
	require.NoError(t, err)
	require.Len(t, res.Changed, 1)
	assert.Equal(t, "vm.go", filepath.Base(res.Changed[0]))
	require.Len(t, res.Units, 1)
	assert.Equal(t, "FooViewModel", res.Units[0].Class)
	assert.Equal(t, []string{bar}, res.Removed)
	assert.NoFileExists(t, bar)
	assert.FileExists(t, foo)
}

func TestRunExplicitChanges(t *testing.T) {
	_, opts := workspace(t)
	ctx := context.Background()

	res, err := Run(ctx, zap.NewNop(), opts(options.WithChanged("vm.go")))
	require.NoError(t, err)
	require.Len(t, res.Changed, 1)
	assert.Len(t, res.Units, 2)

	res, err = Run(ctx, zap.NewNop(), opts(options.WithChanged("other.go")))
	require.NoError(t, err)
	assert.Empty(t, res.Units)
}

func TestRelPath(t *testing.T) {
	assert.Equal(t, "a/b.go", relPath("/root", "/root/a/b.go"))
	assert.Equal(t, "../x.go", relPath("/root/a", "/root/x.go"))
	assert.Equal(t, []string{"a", "b"}, dedupe([]string{"b", "a", "b"}))
}
