package processor

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/numeron/brick/internal/generator"
	"github.com/numeron/brick/internal/parser"
	"github.com/numeron/brick/pkg/options"
)

var fixtureDir = filepath.Join("..", "parser", "testdata", "fixtures", "basic")

func load(t *testing.T, opts ...options.Option) (*parser.Session, *options.Options) {
	t.Helper()
	o := options.New(append([]options.Option{options.WithInDir(fixtureDir), options.WithPatterns(".")}, opts...)...)
	p, err := parser.NewWithOpts(zap.NewNop(), o)
	require.NoError(t, err)
	s, err := p.Load(context.Background())
	require.NoError(t, err)
	return s, o
}

var wantClasses = []string{
	"StringViewModel",
	"LambdaViewModel",
	"PairViewModel",
	"QueueViewModel",
	"ClashViewModel",
	"unexportedViewModel",
	"Base",
	"DeepViewModel",
	"PointerViewModel",
}

func classes(p *Processor) []string {
	var out []string
	for _, u := range p.Units() {
		out = append(out, u.Class)
	}
	return out
}

func TestProcessAllFiles(t *testing.T) {
	s, o := load(t)
	out := generator.NewMemory(o.FileSuffix)
	p := Provider{}.Create(Environment{CodeGenerator: out, Logger: zap.NewNop(), Options: *o})

	deferred, err := p.Process(s)
	require.NoError(t, err)
	assert.NotNil(t, deferred)
	assert.Empty(t, deferred)
	assert.Equal(t, wantClasses, classes(p))

	paths := out.Paths()
	require.Len(t, paths, len(wantClasses))
	for _, path := range paths {
		assert.True(t, strings.HasSuffix(path, "s_brick.go"), path)
		content, ok := out.Content(path)
		require.True(t, ok)
		assert.True(t, strings.HasPrefix(string(content), "// "+generator.Header))
	}
}

func TestProcessIncrementalWithoutChanges(t *testing.T) {
	s, o := load(t, options.WithIncremental(options.ChangesExplicit))
	out := generator.NewMemory(o.FileSuffix)
	p := Provider{}.Create(Environment{CodeGenerator: out, Options: *o})

	deferred, err := p.Process(s.WithChanges(nil))
	require.NoError(t, err)
	assert.Empty(t, deferred)
	assert.Empty(t, p.Units())
	assert.Empty(t, out.Paths())
}

func TestProcessIncrementalChangedFile(t *testing.T) {
	s, o := load(t, options.WithIncremental(options.ChangesExplicit))
	dir := filepath.Dir(s.AllFiles()[0].Path)
	out := generator.NewMemory(o.FileSuffix)
	p := Provider{}.Create(Environment{CodeGenerator: out, Options: *o})

	_, err := p.Process(s.WithChanges([]string{filepath.Join(dir, "viewmodels.go")}))
	require.NoError(t, err)
	assert.Equal(t, wantClasses, classes(p))

	_, err = p.Process(s.WithChanges([]string{filepath.Join(dir, "shapes.go")}))
	require.NoError(t, err)
	assert.Empty(t, p.Units())
}

func TestProcessIsIdempotent(t *testing.T) {
	s, o := load(t)
	first := generator.NewMemory(o.FileSuffix)
	second := generator.NewMemory(o.FileSuffix)
	_, err := Provider{}.Create(Environment{CodeGenerator: first, Options: *o}).Process(s)
	require.NoError(t, err)
	_, err = Provider{}.Create(Environment{CodeGenerator: second, Options: *o}).Process(s)
	require.NoError(t, err)

	require.Equal(t, first.Paths(), second.Paths())
	for _, path := range first.Paths() {
		a, _ := first.Content(path)
		b, _ := second.Content(path)
		assert.Equal(t, string(a), string(b), path)
	}
}

func TestVisitorSkipsUnitCollisions(t *testing.T) {
	s, o := load(t)
	out := generator.NewMemory(o.FileSuffix)
	v := NewVisitor(zap.NewNop(), generator.New(zap.NewNop(), *o), out, parser.NewSupertypeMatcher(o.BaseType), o.ConstructorPrefix)

	files := s.AllFiles()
	require.NoError(t, Walk(files, v))
	require.NoError(t, Walk(files, v))
	assert.Len(t, v.Units(), len(wantClasses))
}

func TestFileSetProviders(t *testing.T) {
	s, _ := load(t)
	changed := s.WithChanges([]string{s.AllFiles()[1].Path})
	assert.Len(t, AllFiles(changed), 3)
	assert.Len(t, NewFiles(changed), 1)
}

func TestProcessCustomBaseType(t *testing.T) {
	s, o := load(t, options.WithBaseType("io.Reader"))
	out := generator.NewMemory(o.FileSuffix)
	p := Provider{}.Create(Environment{CodeGenerator: out, Options: *o})

	_, err := p.Process(s)
	require.NoError(t, err)
	// ReaderHolder embeds io.Reader, an interface, which still counts as a
	// direct match
	assert.Equal(t, []string{"ReaderHolder"}, classes(p))

	// CloserHolder only reaches io.Reader through io.ReadCloser
	for _, path := range out.Paths() {
		assert.NotContains(t, path, "CloserHolder")
	}
}
