package parser

import (
	"go/ast"
	"go/constant"
	"go/token"
	"go/types"
	"path"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/numeron/brick/internal/model"
)

// ErrUnsupportedReference marks references the resolver has no descriptor
// for: tuples, unions, invalid types and malformed syntax.
var ErrUnsupportedReference = errors.New("unsupported type reference")

// TypeArg is a type argument at a use site. Type wins over Expr when both
// are set.
type TypeArg struct {
	Expr ast.Expr
	Type types.Type
}

// Resolver turns type references into model.TypeDescriptor values. With
// type information it resolves semantically; otherwise it falls back to
// the syntax, resolving bare names against the universe, the collections
// allow-list and finally the core package.
type Resolver struct {
	info        *types.Info
	pkgPath     string
	pkgName     string
	imports     map[string]string
	collections map[string]string
	corePackage string
}

type ResolverOption func(*Resolver)

func WithInfo(info *types.Info) ResolverOption {
	return func(r *Resolver) { r.info = info }
}

// WithPackage sets the package bare names belong to when no core package
// is configured.
func WithPackage(pkgPath, pkgName string) ResolverOption {
	return func(r *Resolver) { r.pkgPath, r.pkgName = pkgPath, pkgName }
}

// WithImports records the import names of file for selector expressions.
func WithImports(file *ast.File) ResolverOption {
	return func(r *Resolver) {
		for _, spec := range file.Imports {
			p, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			name := path.Base(p)
			if spec.Name != nil {
				name = spec.Name.Name
			}
			r.imports[name] = p
		}
	}
}

func WithCollections(m map[string]string) ResolverOption {
	return func(r *Resolver) {
		for k, v := range m {
			r.collections[k] = v
		}
	}
}

func WithCorePackage(pkgPath string) ResolverOption {
	return func(r *Resolver) { r.corePackage = pkgPath }
}

func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		imports:     make(map[string]string),
		collections: make(map[string]string),
	}
	for _, fn := range opts {
		fn(r)
	}
	return r
}

// Resolve accepts a types.Type, an ast.Expr, a TypeArg, a *types.TypeName
// declaration, a *types.Var or a *types.Func.
func (r *Resolver) Resolve(ref any) (*model.TypeDescriptor, error) {
	switch ref := ref.(type) {
	case nil:
		return nil, unsupported("nil reference")
	case TypeArg:
		if ref.Type != nil {
			return r.resolveType(ref.Type)
		}
		if ref.Expr != nil {
			return r.resolveExpr(ref.Expr)
		}
		return nil, unsupported("empty type argument")
	case *types.TypeName:
		return r.resolveType(ref.Type())
	case *types.Var:
		return r.resolveType(ref.Type())
	case *types.Func:
		sig, ok := ref.Type().(*types.Signature)
		if !ok {
			return nil, unsupported("func %s without signature", ref.Name())
		}
		return r.resolveSignature(sig, true)
	case types.Type:
		return r.resolveType(ref)
	case ast.Expr:
		return r.resolveExpr(ref)
	default:
		return nil, unsupported("%T", ref)
	}
}

func unsupported(format string, args ...any) error {
	return errors.Mark(errors.AssertionFailedf("unsupported reference: "+format, args...), ErrUnsupportedReference)
}

func basic(name string) *model.TypeDescriptor {
	return &model.TypeDescriptor{Kind: model.KindBasic, Names: []string{name}}
}

func named(pkgPath, pkgName, name string) *model.TypeDescriptor {
	return &model.TypeDescriptor{
		Kind:        model.KindNamed,
		Package:     pkgPath,
		PackageName: pkgName,
		Names:       []string{name},
	}
}

// pointerTo applies the nullable rule: *T is T marked nullable, and a
// pointer to something already nullable stays an explicit pointer.
func pointerTo(elem *model.TypeDescriptor) *model.TypeDescriptor {
	if elem.Nullable {
		return &model.TypeDescriptor{Kind: model.KindPointer, Generics: []*model.TypeDescriptor{elem}}
	}
	return elem.WithNullable(true)
}

func (r *Resolver) resolveType(t types.Type) (*model.TypeDescriptor, error) {
	switch t := t.(type) {
	case *types.Basic:
		if t.Kind() == types.Invalid {
			return nil, unsupported("invalid type")
		}
		return basic(t.Name()), nil

	case *types.Alias:
		obj := t.Obj()
		if obj.Pkg() == nil {
			return r.resolveType(types.Unalias(t))
		}
		d := named(obj.Pkg().Path(), obj.Pkg().Name(), obj.Name())
		if err := r.appendTypeList(d, t.TypeArgs()); err != nil {
			return nil, err
		}
		return d, nil

	case *types.Named:
		obj := t.Obj()
		if obj.Pkg() == nil {
			return basic(obj.Name()), nil
		}
		d := named(obj.Pkg().Path(), obj.Pkg().Name(), obj.Name())
		if t.TypeArgs().Len() > 0 {
			if err := r.appendTypeList(d, t.TypeArgs()); err != nil {
				return nil, err
			}
			return d, nil
		}
		for i := range t.TypeParams().Len() {
			d.Generics = append(d.Generics, &model.TypeDescriptor{
				Kind:  model.KindTypeParam,
				Names: []string{t.TypeParams().At(i).Obj().Name()},
			})
		}
		return d, nil

	case *types.TypeParam:
		return &model.TypeDescriptor{Kind: model.KindTypeParam, Names: []string{t.Obj().Name()}}, nil

	case *types.Pointer:
		elem, err := r.resolveType(t.Elem())
		if err != nil {
			return nil, err
		}
		return pointerTo(elem), nil

	case *types.Slice:
		return r.container(model.KindSlice, t.Elem())

	case *types.Array:
		d, err := r.container(model.KindArray, t.Elem())
		if err != nil {
			return nil, err
		}
		d.Len = t.Len()
		return d, nil

	case *types.Map:
		key, err := r.resolveType(t.Key())
		if err != nil {
			return nil, err
		}
		val, err := r.resolveType(t.Elem())
		if err != nil {
			return nil, err
		}
		return &model.TypeDescriptor{Kind: model.KindMap, Generics: []*model.TypeDescriptor{key, val}}, nil

	case *types.Chan:
		d, err := r.container(model.KindChan, t.Elem())
		if err != nil {
			return nil, err
		}
		switch t.Dir() {
		case types.SendOnly:
			d.Dir = model.ChanSend
		case types.RecvOnly:
			d.Dir = model.ChanRecv
		}
		return d, nil

	case *types.Signature:
		return r.resolveSignature(t, false)

	case *types.Struct:
		d := &model.TypeDescriptor{Kind: model.KindStruct}
		for i := range t.NumFields() {
			f := t.Field(i)
			ft, err := r.resolveType(f.Type())
			if err != nil {
				return nil, errors.Wrapf(err, "field %s", f.Name())
			}
			d.Fields = append(d.Fields, model.Field{Name: f.Name(), Type: ft, Embedded: f.Embedded(), Tag: t.Tag(i)})
		}
		return d, nil

	case *types.Interface:
		if t.Empty() {
			return basic("any"), nil
		}
		d := &model.TypeDescriptor{Kind: model.KindInterface}
		for i := range t.NumEmbeddeds() {
			et, err := r.resolveType(t.EmbeddedType(i))
			if err != nil {
				return nil, err
			}
			d.Embeddeds = append(d.Embeddeds, et)
		}
		for i := range t.NumExplicitMethods() {
			m := t.ExplicitMethod(i)
			// the receiver is the interface itself
			mt, err := r.resolveSignature(m.Type().(*types.Signature), false)
			if err != nil {
				return nil, errors.Wrapf(err, "method %s", m.Name())
			}
			d.Methods = append(d.Methods, model.Method{Name: m.Name(), Type: mt})
		}
		return d, nil

	case *types.Tuple:
		return nil, unsupported("tuple %s", t)
	case *types.Union:
		return nil, unsupported("union %s", t)
	default:
		return nil, unsupported("%T", t)
	}
}

func (r *Resolver) container(kind model.Kind, elem types.Type) (*model.TypeDescriptor, error) {
	e, err := r.resolveType(elem)
	if err != nil {
		return nil, err
	}
	return &model.TypeDescriptor{Kind: kind, Generics: []*model.TypeDescriptor{e}}, nil
}

func (r *Resolver) appendTypeList(d *model.TypeDescriptor, list *types.TypeList) error {
	for i := range list.Len() {
		a, err := r.resolveType(list.At(i))
		if err != nil {
			return errors.Wrapf(err, "type argument %d of %s", i, d.QualifiedName())
		}
		d.Generics = append(d.Generics, a)
	}
	return nil
}

func (r *Resolver) resolveSignature(sig *types.Signature, withRecv bool) (*model.TypeDescriptor, error) {
	d := &model.TypeDescriptor{Kind: model.KindFunc, Variadic: sig.Variadic()}
	if withRecv && sig.Recv() != nil {
		recv, err := r.resolveType(sig.Recv().Type())
		if err != nil {
			return nil, errors.Wrap(err, "receiver")
		}
		d.Receiver = recv
	}
	for i := range sig.Params().Len() {
		p, err := r.resolveType(sig.Params().At(i).Type())
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %d", i)
		}
		d.Params = append(d.Params, p)
	}
	for i := range sig.Results().Len() {
		p, err := r.resolveType(sig.Results().At(i).Type())
		if err != nil {
			return nil, errors.Wrapf(err, "result %d", i)
		}
		d.Results = append(d.Results, p)
	}
	return d, nil
}

// resolveExpr prefers the checker's view of e and walks the syntax when
// there is none.
func (r *Resolver) resolveExpr(e ast.Expr) (*model.TypeDescriptor, error) {
	if r.info != nil {
		if tv, ok := r.info.Types[e]; ok && tv.IsType() && tv.Type != nil {
			return r.resolveType(tv.Type)
		}
		if id, ok := e.(*ast.Ident); ok {
			if tn, ok := r.info.ObjectOf(id).(*types.TypeName); ok {
				return r.resolveType(tn.Type())
			}
		}
	}

	switch e := e.(type) {
	case *ast.Ident:
		return r.resolveIdent(e)

	case *ast.ParenExpr:
		return r.resolveExpr(e.X)

	case *ast.StarExpr:
		elem, err := r.resolveExpr(e.X)
		if err != nil {
			return nil, err
		}
		return pointerTo(elem), nil

	case *ast.SelectorExpr:
		pkg, ok := e.X.(*ast.Ident)
		if !ok {
			return nil, unsupported("selector on %T", e.X)
		}
		pkgPath, known := r.imports[pkg.Name]
		if !known {
			pkgPath = pkg.Name
		}
		return named(pkgPath, path.Base(pkgPath), e.Sel.Name), nil

	case *ast.ArrayType:
		if e.Len == nil {
			return r.exprContainer(model.KindSlice, e.Elt)
		}
		n, err := r.arrayLen(e.Len)
		if err != nil {
			return nil, err
		}
		d, err := r.exprContainer(model.KindArray, e.Elt)
		if err != nil {
			return nil, err
		}
		d.Len = n
		return d, nil

	case *ast.Ellipsis:
		d, err := r.exprContainer(model.KindSlice, e.Elt)
		if err != nil {
			return nil, err
		}
		d.Variadic = true
		return d, nil

	case *ast.MapType:
		key, err := r.resolveExpr(e.Key)
		if err != nil {
			return nil, err
		}
		val, err := r.resolveExpr(e.Value)
		if err != nil {
			return nil, err
		}
		return &model.TypeDescriptor{Kind: model.KindMap, Generics: []*model.TypeDescriptor{key, val}}, nil

	case *ast.ChanType:
		d, err := r.exprContainer(model.KindChan, e.Value)
		if err != nil {
			return nil, err
		}
		switch e.Dir {
		case ast.SEND:
			d.Dir = model.ChanSend
		case ast.RECV:
			d.Dir = model.ChanRecv
		}
		return d, nil

	case *ast.FuncType:
		return r.resolveFuncType(e)

	case *ast.StructType:
		d := &model.TypeDescriptor{Kind: model.KindStruct}
		for _, f := range e.Fields.List {
			ft, err := r.resolveExpr(f.Type)
			if err != nil {
				return nil, err
			}
			tag := ""
			if f.Tag != nil {
				tag, _ = strconv.Unquote(f.Tag.Value)
			}
			if len(f.Names) == 0 {
				name := ft.SimpleName()
				if ft.Kind == model.KindPointer {
					name = ft.Elem().SimpleName()
				}
				d.Fields = append(d.Fields, model.Field{Name: name, Type: ft, Embedded: true, Tag: tag})
				continue
			}
			for _, n := range f.Names {
				d.Fields = append(d.Fields, model.Field{Name: n.Name, Type: ft, Tag: tag})
			}
		}
		return d, nil

	case *ast.InterfaceType:
		if e.Methods == nil || len(e.Methods.List) == 0 {
			return basic("any"), nil
		}
		d := &model.TypeDescriptor{Kind: model.KindInterface}
		for _, m := range e.Methods.List {
			if len(m.Names) == 0 {
				et, err := r.resolveExpr(m.Type)
				if err != nil {
					return nil, err
				}
				d.Embeddeds = append(d.Embeddeds, et)
				continue
			}
			ft, ok := m.Type.(*ast.FuncType)
			if !ok {
				return nil, unsupported("method %s of type %T", m.Names[0].Name, m.Type)
			}
			mt, err := r.resolveFuncType(ft)
			if err != nil {
				return nil, err
			}
			d.Methods = append(d.Methods, model.Method{Name: m.Names[0].Name, Type: mt})
		}
		return d, nil

	case *ast.IndexExpr:
		return r.instantiate(e.X, []ast.Expr{e.Index})

	case *ast.IndexListExpr:
		return r.instantiate(e.X, e.Indices)

	case *ast.BinaryExpr:
		if e.Op == token.OR {
			return nil, unsupported("union")
		}
		return nil, unsupported("binary expression")

	case *ast.BadExpr:
		return nil, unsupported("malformed expression")

	default:
		return nil, unsupported("%T", e)
	}
}

func (r *Resolver) resolveIdent(id *ast.Ident) (*model.TypeDescriptor, error) {
	if tn, ok := types.Universe.Lookup(id.Name).(*types.TypeName); ok {
		return r.resolveType(tn.Type())
	}
	if p, ok := r.collections[id.Name]; ok {
		return named(p, path.Base(p), id.Name), nil
	}
	switch {
	case r.corePackage != "":
		return named(r.corePackage, path.Base(r.corePackage), id.Name), nil
	case r.pkgPath != "":
		return named(r.pkgPath, r.pkgName, id.Name), nil
	}
	return &model.TypeDescriptor{Kind: model.KindNamed, Names: []string{id.Name}}, nil
}

func (r *Resolver) exprContainer(kind model.Kind, elem ast.Expr) (*model.TypeDescriptor, error) {
	e, err := r.resolveExpr(elem)
	if err != nil {
		return nil, err
	}
	return &model.TypeDescriptor{Kind: kind, Generics: []*model.TypeDescriptor{e}}, nil
}

func (r *Resolver) arrayLen(e ast.Expr) (int64, error) {
	if r.info != nil {
		if tv, ok := r.info.Types[e]; ok && tv.Value != nil {
			if n, exact := constant.Int64Val(tv.Value); exact {
				return n, nil
			}
		}
	}
	if lit, ok := e.(*ast.BasicLit); ok && lit.Kind == token.INT {
		n, err := strconv.ParseInt(strings.ReplaceAll(lit.Value, "_", ""), 0, 64)
		if err == nil {
			return n, nil
		}
	}
	return 0, unsupported("array length %T", e)
}

func (r *Resolver) resolveFuncType(ft *ast.FuncType) (*model.TypeDescriptor, error) {
	d := &model.TypeDescriptor{Kind: model.KindFunc}
	if ft.Params != nil {
		for _, f := range ft.Params.List {
			typ := f.Type
			if el, ok := typ.(*ast.Ellipsis); ok {
				d.Variadic = true
				typ = &ast.ArrayType{Elt: el.Elt}
			}
			p, err := r.resolveExpr(typ)
			if err != nil {
				return nil, err
			}
			for range max(1, len(f.Names)) {
				d.Params = append(d.Params, p)
			}
		}
	}
	if ft.Results != nil {
		for _, f := range ft.Results.List {
			p, err := r.resolveExpr(f.Type)
			if err != nil {
				return nil, err
			}
			for range max(1, len(f.Names)) {
				d.Results = append(d.Results, p)
			}
		}
	}
	return d, nil
}

func (r *Resolver) instantiate(base ast.Expr, args []ast.Expr) (*model.TypeDescriptor, error) {
	d, err := r.resolveExpr(base)
	if err != nil {
		return nil, err
	}
	if d.Kind != model.KindNamed {
		return nil, unsupported("type arguments on %s", d.Kind)
	}
	d = d.WithNullable(d.Nullable)
	d.Generics = nil
	for i, a := range args {
		ad, err := r.resolveExpr(a)
		if err != nil {
			return nil, errors.Wrapf(err, "type argument %d of %s", i, d.QualifiedName())
		}
		d.Generics = append(d.Generics, ad)
	}
	return d, nil
}
