package parser

import (
	"go/types"

	"github.com/numeron/brick/pkg/options"
)

// SupertypeMatcher finds types that embed a base type, directly or through
// embedded structs. Embedding by pointer counts and aliases are followed.
// Embedded interfaces never contribute a match.
type SupertypeMatcher struct {
	PkgPath string
	Name    string
}

// NewSupertypeMatcher takes the base type as "import/path.Name".
func NewSupertypeMatcher(qualified string) SupertypeMatcher {
	pkg, name := options.SplitQualified(qualified)
	return SupertypeMatcher{PkgPath: pkg, Name: name}
}

// Is reports whether obj is the base type itself. Objects are compared by
// package path and name so type-checker runs need not be shared.
func (m SupertypeMatcher) Is(obj *types.TypeName) bool {
	return obj != nil && obj.Pkg() != nil && obj.Pkg().Path() == m.PkgPath && obj.Name() == m.Name
}

// HasSuperType reports whether t embeds the base type anywhere in its
// struct embedding tree.
func (m SupertypeMatcher) HasSuperType(t types.Type) bool {
	return m.embeds(t, make(map[*types.TypeName]bool))
}

func (m SupertypeMatcher) embeds(t types.Type, seen map[*types.TypeName]bool) bool {
	t = deref(t)
	if n, ok := t.(*types.Named); ok {
		obj := n.Origin().Obj()
		if seen[obj] {
			return false
		}
		seen[obj] = true
	}
	st, ok := t.Underlying().(*types.Struct)
	if !ok {
		return false
	}
	for i := range st.NumFields() {
		f := st.Field(i)
		if !f.Embedded() {
			continue
		}
		ft := deref(f.Type())
		if n, ok := ft.(*types.Named); ok && m.Is(n.Origin().Obj()) {
			return true
		}
		if m.embeds(ft, seen) {
			return true
		}
	}
	return false
}

func deref(t types.Type) types.Type {
	t = types.Unalias(t)
	if p, ok := t.(*types.Pointer); ok {
		return types.Unalias(p.Elem())
	}
	return t
}
