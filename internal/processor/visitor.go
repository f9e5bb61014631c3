package processor

import (
	"go/ast"
	"go/token"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/numeron/brick/internal/generator"
	"github.com/numeron/brick/internal/model"
	"github.com/numeron/brick/internal/parser"
)

// Visitor selects eligible class declarations and generates their units.
type Visitor struct {
	log     *zap.Logger
	gen     *generator.Generator
	out     generator.CodeGenerator
	matcher parser.SupertypeMatcher
	prefix  string

	seen  map[string]string // unit path -> class
	units []*model.GeneratedUnit
}

func NewVisitor(log *zap.Logger, gen *generator.Generator, out generator.CodeGenerator, matcher parser.SupertypeMatcher, prefix string) *Visitor {
	return &Visitor{
		log:     log,
		gen:     gen,
		out:     out,
		matcher: matcher,
		prefix:  prefix,
		seen:    make(map[string]string),
	}
}

// Walk visits files in order, stopping at the first generation failure.
func Walk(files []*parser.File, v *Visitor) error {
	for _, f := range files {
		if err := v.VisitFile(f); err != nil {
			return err
		}
	}
	return nil
}

// VisitFile visits every top-level type spec of f. Generated files are
// skipped.
func (v *Visitor) VisitFile(f *parser.File) error {
	if ast.IsGenerated(f.Syntax) {
		v.log.Debug("skipping generated file", zap.String("file", f.Path))
		return nil
	}
	for _, d := range f.Syntax.Decls {
		gen, ok := d.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, s := range gen.Specs {
			if err := v.VisitTypeSpec(f, gen, s.(*ast.TypeSpec)); err != nil {
				return err
			}
		}
	}
	return nil
}

// VisitTypeSpec generates the unit for spec when it is eligible.
func (v *Visitor) VisitTypeSpec(f *parser.File, gen *ast.GenDecl, spec *ast.TypeSpec) error {
	decl, err := parser.NewClassDeclaration(f.Pkg, f.Syntax, gen, spec, v.prefix)
	if err != nil {
		v.log.Debug("skipping type", zap.String("type", spec.Name.Name), zap.Error(err))
		return nil
	}
	if !v.Eligible(decl) {
		return nil
	}

	key := filepath.Join(decl.Location.Dir, v.gen.UnitName(decl.Name))
	if prev, ok := v.seen[key]; ok {
		v.log.Warn("unit name already taken, skipping",
			zap.String("unit", v.gen.UnitName(decl.Name)),
			zap.String("class", decl.Name),
			zap.String("taken_by", prev),
			zap.String("package", decl.Location.PkgPath))
		return nil
	}
	v.seen[key] = decl.Name

	unit, err := v.gen.Generate(v.out, decl)
	if err != nil {
		return errors.Wrapf(err, "generate %s.%s", decl.Location.PkgPath, decl.Name)
	}
	v.units = append(v.units, unit)
	return nil
}

// Eligible reports whether decl is a concrete struct embedding the base
// type with a usable primary constructor.
func (v *Visitor) Eligible(decl *model.ClassDeclaration) bool {
	if decl.Kind != model.ClassStruct || decl.Abstract {
		return false
	}
	if !v.matcher.HasSuperType(decl.Obj.Type()) {
		return false
	}
	if decl.Constructor == nil {
		if decl.ConstructorErr != nil {
			v.log.Debug("no primary constructor", zap.String("class", decl.Name), zap.Error(decl.ConstructorErr))
		}
		return false
	}
	return true
}

// Units returns the units generated so far, in visit order.
func (v *Visitor) Units() []*model.GeneratedUnit {
	return v.units
}
