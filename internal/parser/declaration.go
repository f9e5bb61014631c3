package parser

import (
	"go/ast"
	"go/types"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"golang.org/x/tools/go/packages"

	"github.com/numeron/brick/internal/model"
)

// AbstractDirective marks a non-generic struct as abstract.
const AbstractDirective = "brick:abstract"

// NewClassDeclaration describes spec, a type declared at the top level of
// file in pkg. prefix names the primary constructor ("New" + Name).
func NewClassDeclaration(pkg *packages.Package, file *ast.File, gen *ast.GenDecl, spec *ast.TypeSpec, prefix string) (*model.ClassDeclaration, error) {
	obj, ok := pkg.TypesInfo.Defs[spec.Name].(*types.TypeName)
	if !ok {
		return nil, errors.Newf("no type information for %s.%s", pkg.PkgPath, spec.Name.Name)
	}
	pos := pkg.Fset.Position(spec.Pos())
	decl := &model.ClassDeclaration{
		Name:     obj.Name(),
		Names:    []string{obj.Name()},
		Kind:     classKind(obj),
		Exported: obj.Exported(),
		Location: model.Location{PkgPath: pkg.PkgPath, PkgName: pkg.Name, Dir: dirOf(pos.Filename)},
		File:     pos.Filename,
		Pos:      pos,
		Obj:      obj,
		Spec:     spec,
	}
	if n, ok := obj.Type().(*types.Named); ok && n.TypeParams().Len() > 0 {
		decl.Abstract = true
	}
	if hasDirective(spec.Doc, AbstractDirective) || (len(gen.Specs) == 1 && hasDirective(gen.Doc, AbstractDirective)) {
		decl.Abstract = true
	}
	if decl.Kind == model.ClassStruct {
		decl.Constructor, decl.ConstructorErr = findConstructor(pkg, obj, prefix)
	}
	return decl, nil
}

func classKind(obj *types.TypeName) model.ClassKind {
	if obj.IsAlias() {
		return model.ClassAlias
	}
	switch u := obj.Type().Underlying().(type) {
	case *types.Struct:
		return model.ClassStruct
	case *types.Interface:
		return model.ClassInterface
	case *types.Signature:
		return model.ClassFunc
	case *types.Basic:
		if hasTypedConstants(obj) && u.Info()&types.IsConstType != 0 {
			return model.ClassEnum
		}
	}
	return model.ClassOther
}

// hasTypedConstants reports whether the package declares a constant of
// obj's type, which makes a named basic type an enumeration.
func hasTypedConstants(obj *types.TypeName) bool {
	scope := obj.Pkg().Scope()
	for _, name := range scope.Names() {
		if c, ok := scope.Lookup(name).(*types.Const); ok && types.Identical(c.Type(), obj.Type()) {
			return true
		}
	}
	return false
}

// ConstructorName is the primary constructor name for a type: prefix+Name
// for exported types, lowerPrefix+UpperName otherwise.
func ConstructorName(prefix, name string) string {
	if ast.IsExported(name) {
		return prefix + name
	}
	return lowerFirst(prefix) + upperFirst(name)
}

// findConstructor looks for a package-level func returning exactly *obj.
// No func means an implicit zero-argument constructor.
func findConstructor(pkg *packages.Package, obj *types.TypeName, prefix string) (*model.Constructor, error) {
	name := ConstructorName(prefix, obj.Name())
	fn, ok := pkg.Types.Scope().Lookup(name).(*types.Func)
	if !ok {
		return &model.Constructor{Implicit: true}, nil
	}
	sig := fn.Type().(*types.Signature)
	if sig.TypeParams().Len() > 0 {
		return nil, errors.Newf("%s is generic", name)
	}
	if sig.Results().Len() != 1 {
		return nil, errors.Newf("%s must return only *%s", name, obj.Name())
	}
	ptr, ok := sig.Results().At(0).Type().(*types.Pointer)
	if !ok {
		return nil, errors.Newf("%s must return *%s", name, obj.Name())
	}
	if n, ok := types.Unalias(ptr.Elem()).(*types.Named); !ok || n.Obj() != obj {
		return nil, errors.Newf("%s returns %s, not *%s", name, ptr, obj.Name())
	}
	return &model.Constructor{Name: name, Func: fn, Decl: funcDecl(pkg, name)}, nil
}

func funcDecl(pkg *packages.Package, name string) *ast.FuncDecl {
	for _, f := range pkg.Syntax {
		for _, d := range f.Decls {
			if fd, ok := d.(*ast.FuncDecl); ok && fd.Recv == nil && fd.Name.Name == name {
				return fd
			}
		}
	}
	return nil
}

// hasDirective scans raw comments, CommentGroup.Text drops directives.
func hasDirective(cg *ast.CommentGroup, directive string) bool {
	if cg == nil {
		return false
	}
	for _, c := range cg.List {
		text := strings.TrimPrefix(c.Text, "//")
		if text == c.Text {
			continue
		}
		if text == directive || strings.HasPrefix(text, directive+" ") {
			return true
		}
	}
	return false
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[n:]
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}
