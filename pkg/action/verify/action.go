package verify

import (
	"bytes"
	"context"
	"go/ast"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/numeron/brick/internal/generator"
	"github.com/numeron/brick/internal/parser"
	"github.com/numeron/brick/internal/processor"
	"github.com/numeron/brick/pkg/options"
)

// ErrDrift is returned by Check when generated files are out of date.
var ErrDrift = errors.New("generated files are out of date")

// Drift is a generated file whose content on disk differs from a fresh
// rendering.
type Drift struct {
	Path string
	Diff string
}

// Report lists every difference between the disk and a fresh pass.
type Report struct {
	Checked int
	Missing []string
	Stale   []string
	Drift   []Drift
}

func (r *Report) Clean() bool {
	return len(r.Missing) == 0 && len(r.Stale) == 0 && len(r.Drift) == 0
}

// Run regenerates every unit in memory and compares it with the disk.
func Run(ctx context.Context, log *zap.Logger, opts *options.Options) (*Report, error) {
	if log == nil {
		log = zap.NewNop()
	}
	o := *opts
	o.Incremental = false
	p, err := parser.NewWithOpts(log, &o)
	if err != nil {
		return nil, err
	}
	sess, err := p.Load(ctx)
	if err != nil {
		return nil, err
	}

	mem := generator.NewMemory(p.Opts.FileSuffix)
	proc := processor.Provider{}.Create(processor.Environment{CodeGenerator: mem, Logger: log, Options: p.Opts})
	if _, err := proc.Process(sess); err != nil {
		return nil, err
	}

	report := &Report{}
	expected := map[string]bool{}
	for _, path := range mem.Paths() {
		expected[path] = true
		report.Checked++
		want, _ := mem.Content(path)
		got, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			report.Missing = append(report.Missing, path)
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", path)
		}
		if bytes.Equal(want, got) {
			continue
		}
		report.Drift = append(report.Drift, Drift{Path: path, Diff: cmp.Diff(string(got), string(want))})
	}

	for _, f := range sess.AllFiles() {
		if expected[f.Path] || !ownedBy(f.Syntax) || !strings.HasSuffix(f.Path, p.Opts.FileSuffix) {
			continue
		}
		report.Stale = append(report.Stale, f.Path)
	}

	log.Debug("verified units",
		zap.Int("checked", report.Checked),
		zap.Int("missing", len(report.Missing)),
		zap.Int("stale", len(report.Stale)),
		zap.Int("drift", len(report.Drift)))
	return report, nil
}

// Check runs Run and turns an unclean report into ErrDrift.
func Check(ctx context.Context, log *zap.Logger, opts *options.Options) (*Report, error) {
	report, err := Run(ctx, log, opts)
	if err != nil {
		return nil, err
	}
	if !report.Clean() {
		return report, errors.Mark(
			errors.Newf("%d missing, %d stale, %d drifted", len(report.Missing), len(report.Stale), len(report.Drift)),
			ErrDrift,
		)
	}
	return report, nil
}

// ownedBy reports whether f carries the brick generated-code header.
func ownedBy(f *ast.File) bool {
	if !ast.IsGenerated(f) {
		return false
	}
	for _, cg := range f.Comments {
		if cg.Pos() > f.Package {
			break
		}
		for _, c := range cg.List {
			if strings.TrimSpace(strings.TrimPrefix(c.Text, "//")) == generator.Header {
				return true
			}
		}
	}
	return false
}
