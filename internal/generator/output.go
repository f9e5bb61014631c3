package generator

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/numeron/brick/internal/model"
)

// Dependencies are the source files a unit was generated from. A unit is
// regenerated when any of them changes.
type Dependencies struct {
	Aggregating bool
	Sources     []string
}

// Output is one file written by a CodeGenerator.
type Output struct {
	Path    string
	Sources []string
}

// CodeGenerator opens the destination of a generated unit.
type CodeGenerator interface {
	CreateNewFile(deps Dependencies, loc model.Location, unitName string) (io.WriteCloser, error)
}

// FileSystem writes units next to the package they belong to.
type FileSystem struct {
	Suffix string

	mu      sync.Mutex
	outputs []Output
}

func NewFileSystem(suffix string) *FileSystem {
	return &FileSystem{Suffix: suffix}
}

func (fs *FileSystem) CreateNewFile(deps Dependencies, loc model.Location, unitName string) (io.WriteCloser, error) {
	path := filepath.Join(loc.Dir, FileName(unitName, fs.Suffix))
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "create %s", path)
	}
	fs.mu.Lock()
	fs.outputs = append(fs.outputs, Output{Path: path, Sources: append([]string(nil), deps.Sources...)})
	fs.mu.Unlock()
	return &bufferedFile{Writer: bufio.NewWriter(f), file: f}, nil
}

// Outputs lists the files created so far, in creation order.
func (fs *FileSystem) Outputs() []Output {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]Output(nil), fs.outputs...)
}

type bufferedFile struct {
	*bufio.Writer
	file *os.File
}

func (b *bufferedFile) Close() error {
	flushErr := b.Flush()
	closeErr := b.file.Close()
	if flushErr != nil {
		return errors.Wrapf(flushErr, "flush %s", b.file.Name())
	}
	return errors.Wrapf(closeErr, "close %s", b.file.Name())
}

// Memory keeps units in memory, keyed by the path FileSystem would use.
type Memory struct {
	Suffix string

	mu    sync.Mutex
	files map[string]*memoryFile
}

func NewMemory(suffix string) *Memory {
	return &Memory{Suffix: suffix, files: make(map[string]*memoryFile)}
}

func (m *Memory) CreateNewFile(deps Dependencies, loc model.Location, unitName string) (io.WriteCloser, error) {
	path := filepath.Join(loc.Dir, FileName(unitName, m.Suffix))
	f := &memoryFile{sources: append([]string(nil), deps.Sources...)}
	m.mu.Lock()
	m.files[path] = f
	m.mu.Unlock()
	return f, nil
}

// Paths lists the files held, sorted.
func (m *Memory) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.files))
	for p := range m.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Content returns the bytes written to path once it was closed.
func (m *Memory) Content(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[path]
	if !ok || !f.closed {
		return nil, false
	}
	return f.buf.Bytes(), true
}

// Outputs lists the files held, sorted by path.
func (m *Memory) Outputs() []Output {
	paths := m.Paths()
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Output, len(paths))
	for i, p := range paths {
		out[i] = Output{Path: p, Sources: m.files[p].sources}
	}
	return out
}

type memoryFile struct {
	buf     bytes.Buffer
	sources []string
	closed  bool
}

func (f *memoryFile) Write(p []byte) (int, error) {
	if f.closed {
		return 0, os.ErrClosed
	}
	return f.buf.Write(p)
}

func (f *memoryFile) Close() error {
	if f.closed {
		return os.ErrClosed
	}
	f.closed = true
	return nil
}
