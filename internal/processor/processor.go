package processor

import (
	"go/types"

	"go.uber.org/zap"

	"github.com/numeron/brick/internal/generator"
	"github.com/numeron/brick/internal/model"
	"github.com/numeron/brick/internal/parser"
	"github.com/numeron/brick/pkg/options"
)

// Resolver supplies the files of a pass. parser.Session implements it.
type Resolver interface {
	AllFiles() []*parser.File
	NewFiles() []*parser.File
}

// FileSetProvider picks the files a pass walks.
type FileSetProvider func(Resolver) []*parser.File

var (
	AllFiles FileSetProvider = func(r Resolver) []*parser.File { return r.AllFiles() }
	NewFiles FileSetProvider = func(r Resolver) []*parser.File { return r.NewFiles() }
)

// Environment is what a Processor is created with.
type Environment struct {
	CodeGenerator generator.CodeGenerator
	Logger        *zap.Logger
	Options       options.Options
}

// Provider creates processors.
type Provider struct{}

func (Provider) Create(env Environment) *Processor {
	if env.Logger == nil {
		env.Logger = zap.NewNop()
	}
	files := AllFiles
	if env.Options.Incremental {
		files = NewFiles
	}
	return &Processor{env: env, files: files}
}

// Processor runs one generation pass per Process call.
type Processor struct {
	env   Environment
	files FileSetProvider
	units []*model.GeneratedUnit
}

// Process generates units for the files picked from r. Nothing is ever
// deferred to a later round, so the returned slice is always empty.
func (p *Processor) Process(r Resolver) ([]types.Object, error) {
	gen := generator.New(p.env.Logger, p.env.Options)
	v := NewVisitor(
		p.env.Logger,
		gen,
		p.env.CodeGenerator,
		parser.NewSupertypeMatcher(p.env.Options.BaseType),
		p.env.Options.ConstructorPrefix,
	)
	files := p.files(r)
	p.env.Logger.Debug("processing", zap.Int("files", len(files)), zap.Bool("incremental", p.env.Options.Incremental))
	if err := Walk(files, v); err != nil {
		return nil, err
	}
	p.units = v.Units()
	p.env.Logger.Info("generated units", zap.Int("units", len(p.units)))
	return []types.Object{}, nil
}

// Units returns the units of the last pass.
func (p *Processor) Units() []*model.GeneratedUnit {
	return p.units
}
