package parser

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/numeron/brick/pkg/options"
)

func TestLoad(t *testing.T) {
	p, err := New(zap.NewNop(),
		options.WithInDir(filepath.Join("testdata", "fixtures", "basic")),
		options.WithPatterns("."),
	)
	require.NoError(t, err)

	s, err := p.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, s.Packages, 1)
	assert.Equal(t, "github.com/numeron/brick", s.Module.Path)
	assert.True(t, s.Module.Provides(options.DefaultRuntime))
	assert.True(t, s.Module.Provides("github.com/spf13/cobra"))
	assert.False(t, s.Module.Provides("example.com/elsewhere"))

	var names []string
	for _, f := range s.AllFiles() {
		assert.True(t, filepath.IsAbs(f.Path))
		names = append(names, filepath.Base(f.Path))
	}
	assert.Equal(t, []string{"generated_brick.go", "shapes.go", "viewmodels.go"}, names)
	assert.Empty(t, s.NewFiles())

	dir := filepath.Dir(s.AllFiles()[0].Path)
	changed := s.WithChanges([]string{filepath.Join(dir, "viewmodels.go"), filepath.Join(dir, "missing.go")})
	require.Len(t, changed.NewFiles(), 1)
	assert.Equal(t, "viewmodels.go", filepath.Base(changed.NewFiles()[0].Path))
	assert.Len(t, changed.AllFiles(), 3)
	assert.Empty(t, s.NewFiles())

	rel, err := filepath.Rel(s.Module.Root, filepath.Join(dir, "shapes.go"))
	require.NoError(t, err)
	assert.Len(t, s.WithChanges([]string{rel}).NewFiles(), 1)
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	_, err := New(zap.NewNop(), options.WithBaseType("ViewModel"))
	require.Error(t, err)
}

func TestFindGoModDir(t *testing.T) {
	root, err := FindGoModDir(filepath.Join("testdata", "fixtures"))
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "go.mod"))

	_, err = FindGoModDir(t.TempDir())
	require.Error(t, err)
}
