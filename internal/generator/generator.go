package generator

import (
	"go/types"
	"path"

	"github.com/cockroachdb/errors"
	"github.com/dave/jennifer/jen"
	"go.uber.org/zap"

	"github.com/numeron/brick/internal/model"
	"github.com/numeron/brick/internal/parser"
	"github.com/numeron/brick/pkg/options"
)

// Header is the first line of every generated file.
const Header = "Code generated by brick. DO NOT EDIT."

// Generator renders accessor units for class declarations.
type Generator struct {
	opts        options.Options
	log         *zap.Logger
	runtimeName string
	resolver    *parser.Resolver
}

func New(log *zap.Logger, opts options.Options) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{
		opts:        opts,
		log:         log,
		runtimeName: path.Base(opts.Runtime),
		resolver: parser.NewResolver(
			parser.WithCollections(opts.CollectionPackages()),
			parser.WithCorePackage(opts.CorePackage),
		),
	}
}

// UnitName names the unit generated for class under the configured naming.
func (g *Generator) UnitName(class string) string {
	return UnitName(class, g.opts.Naming)
}

// Parameters describes the primary constructor parameters of decl, named
// as they appear in the generated code.
func (g *Generator) Parameters(decl *model.ClassDeclaration) ([]*model.ParameterDescriptor, error) {
	ctor := decl.Constructor
	if ctor == nil {
		return nil, errors.Newf("%s has no constructor", decl.Name)
	}
	if ctor.Implicit {
		return nil, nil
	}
	sig, ok := ctor.Func.Type().(*types.Signature)
	if !ok {
		return nil, errors.AssertionFailedf("%s has no signature", ctor.Name)
	}

	n := namesFor(decl.Name)
	pool := newNamePool(
		"owner", "factory", "value", "reflect", g.runtimeName, ctor.Name,
		decl.Name, n.lazyFunc, n.getFunc, n.factoryType, n.lazyType,
	)
	params := make([]*model.ParameterDescriptor, 0, sig.Params().Len())
	for i := range sig.Params().Len() {
		v := sig.Params().At(i)
		d, err := g.resolver.Resolve(v)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %d of %s", i, ctor.Name)
		}
		params = append(params, &model.ParameterDescriptor{
			Name:     pool.take(paramName(v.Name(), i)),
			Type:     d,
			Variadic: sig.Variadic() && i == sig.Params().Len()-1,
		})
	}
	return params, nil
}

// Build renders the unit for decl.
func (g *Generator) Build(decl *model.ClassDeclaration) (*model.GeneratedUnit, error) {
	params, err := g.Parameters(decl)
	if err != nil {
		return nil, err
	}
	n := namesFor(decl.Name)
	rt := g.opts.Runtime

	f := jen.NewFilePathName(decl.Location.PkgPath, decl.Location.PkgName)
	f.HeaderComment(Header)
	f.ImportName(rt, g.runtimeName)
	f.ImportName("reflect", "reflect")
	imports := map[string]string{}
	for _, p := range params {
		importNames(p.Type, imports)
	}
	for p, name := range imports {
		f.ImportName(p, name)
	}

	class := func() *jen.Statement { return jen.Op("*").Id(decl.Name) }
	owner := jen.Id("owner").Qual(rt, "Owner")

	var (
		signature = []jen.Code{owner}
		fields    []jen.Code
		inits     []jen.Code
	)
	for _, p := range params {
		signature = append(signature, paramCode(p))
		fields = append(fields, fieldCode(p))
		inits = append(inits, jen.Id(p.Name).Op(":").Id(p.Name))
	}
	forward := func(recv string) []jen.Code {
		out := make([]jen.Code, len(params))
		for i, p := range params {
			arg := jen.Id(recv).Dot(p.Name)
			if p.Variadic {
				arg = arg.Op("...")
			}
			out[i] = arg
		}
		return out
	}

	f.Commentf("%s returns a %s that is created in owner's store on first use.", n.lazyFunc, decl.Name)
	f.Func().Id(n.lazyFunc).Params(signature...).Qual(rt, "Lazy").Types(class()).Block(
		jen.Return(jen.Op("&").Id(n.lazyType).Values(
			append([]jen.Code{jen.Id("owner").Op(":").Id("owner")}, inits...)...,
		)),
	)

	f.Line()
	f.Commentf("%s returns the %s held by owner's store, creating it if needed.", n.getFunc, decl.Name)
	f.Func().Id(n.getFunc).Params(signature...).Add(class()).Block(
		jen.Id("factory").Op(":=").Op("&").Id(n.factoryType).Values(inits...),
		jen.Return(jen.Qual(rt, "Get").Types(class()).Call(
			jen.Qual(rt, "NewProvider").Call(jen.Id("owner"), jen.Id("factory")),
		)),
	)

	var create jen.Code
	if decl.Constructor.Implicit {
		create = jen.Return(jen.Op("&").Id(decl.Name).Values())
	} else {
		create = jen.Return(jen.Id(decl.Constructor.Name).Call(forward("f")...))
	}
	f.Line()
	f.Type().Id(n.factoryType).Struct(fields...)
	f.Func().Params(jen.Id("f").Op("*").Id(n.factoryType)).Id("Create").
		Params(jen.Qual("reflect", "Type")).Id("any").
		Block(create)

	lazyFields := append([]jen.Code{jen.Id("owner").Qual(rt, "Owner")}, fields...)
	lazyFields = append(lazyFields, jen.Id("value").Add(class()))
	f.Line()
	f.Type().Id(n.lazyType).Struct(lazyFields...)
	f.Func().Params(jen.Id("l").Op("*").Id(n.lazyType)).Id("Value").Params().Add(class()).Block(
		jen.If(jen.Id("l").Dot("value").Op("==").Nil()).Block(
			jen.Id("l").Dot("value").Op("=").Id(n.getFunc).Call(
				append([]jen.Code{jen.Id("l").Dot("owner")}, forward("l")...)...,
			),
		),
		jen.Return(jen.Id("l").Dot("value")),
	)
	f.Func().Params(jen.Id("l").Op("*").Id(n.lazyType)).Id("IsInitialized").Params().Bool().Block(
		jen.Return(jen.Id("l").Dot("value").Op("!=").Nil()),
	)

	return &model.GeneratedUnit{
		Location:   decl.Location,
		Name:       g.UnitName(decl.Name),
		Class:      decl.Name,
		Sources:    []string{decl.File},
		Parameters: params,
		Declarations: []model.Declaration{
			{Kind: model.DeclFunc, Name: n.lazyFunc},
			{Kind: model.DeclFunc, Name: n.getFunc},
			{Kind: model.DeclType, Name: n.factoryType},
			{Kind: model.DeclType, Name: n.lazyType},
		},
		Code: f,
	}, nil
}

// Generate builds the unit for decl and writes it through out. Failing to
// close the destination is logged, not returned.
func (g *Generator) Generate(out CodeGenerator, decl *model.ClassDeclaration) (*model.GeneratedUnit, error) {
	unit, err := g.Build(decl)
	if err != nil {
		return nil, err
	}
	w, err := out.CreateNewFile(Dependencies{Sources: unit.Sources}, unit.Location, unit.Name)
	if err != nil {
		return nil, errors.Wrapf(err, "open unit %s", unit.Name)
	}
	if err := unit.Code.Render(w); err != nil {
		_ = w.Close()
		return nil, errors.Wrapf(err, "render unit %s", unit.Name)
	}
	if err := w.Close(); err != nil {
		g.log.Warn("closing generated unit", zap.String("unit", unit.Name), zap.Error(err))
	}
	g.log.Debug("generated unit", zap.String("unit", unit.Name), zap.String("package", unit.Location.PkgPath))
	return unit, nil
}

func paramCode(p *model.ParameterDescriptor) jen.Code {
	if p.Variadic && p.Type.Kind == model.KindSlice && !p.Type.Nullable {
		return jen.Id(p.Name).Op("...").Add(typeCode(p.Type.Elem()))
	}
	return jen.Id(p.Name).Add(typeCode(p.Type))
}

func fieldCode(p *model.ParameterDescriptor) jen.Code {
	return jen.Id(p.Name).Add(typeCode(p.Type))
}
