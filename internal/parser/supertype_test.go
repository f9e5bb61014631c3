package parser

import (
	"go/types"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/numeron/brick/pkg/options"
)

func TestHasSuperType(t *testing.T) {
	pkg := loadFixture(t, "basic")
	m := NewSupertypeMatcher(options.DefaultBaseType)

	tests := []struct {
		name string
		want bool
	}{
		{name: "StringViewModel", want: true},
		{name: "PairViewModel", want: true},
		{name: "Base", want: true},
		{name: "DeepViewModel", want: true},
		{name: "PointerViewModel", want: true},
		{name: "GenericViewModel", want: true},
		{name: "Alias", want: true},
		{name: "Owner"},
		{name: "Mode"},
		{name: "ReaderHolder"},
		{name: "CloserHolder"},
		{name: "Left"},
		{name: "Right"},
		{name: "Plain"},
		{name: "Pair"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := pkg.Types.Scope().Lookup(tt.name)
			assert.Equal(t, tt.want, m.HasSuperType(obj.Type()))
		})
	}
}

func TestHasSuperTypeStopsAtInterfaces(t *testing.T) {
	pkg := loadFixture(t, "basic")
	m := NewSupertypeMatcher("io.Reader")

	lookup := func(name string) types.Type { return pkg.Types.Scope().Lookup(name).Type() }
	assert.True(t, m.HasSuperType(lookup("ReaderHolder")))
	// io.ReadCloser embeds io.Reader, but interface embeddings are not followed
	assert.False(t, m.HasSuperType(lookup("CloserHolder")))
}

func TestSupertypeMatcherIs(t *testing.T) {
	m := NewSupertypeMatcher("example.com/base.Model")
	assert.Equal(t, "example.com/base", m.PkgPath)
	assert.Equal(t, "Model", m.Name)

	pkg := types.NewPackage("example.com/base", "base")
	obj := types.NewTypeName(0, pkg, "Model", nil)
	assert.True(t, m.Is(obj))
	assert.False(t, m.Is(types.NewTypeName(0, pkg, "Other", nil)))
	assert.False(t, m.Is(types.Universe.Lookup("error").(*types.TypeName)))
	assert.False(t, m.Is(nil))

	// base type embedded in itself is not a subtype
	base := types.NewNamed(obj, types.NewStruct(nil, nil), nil)
	assert.False(t, m.HasSuperType(base))
	child := types.NewNamed(types.NewTypeName(0, pkg, "Child", nil), types.NewStruct(
		[]*types.Var{types.NewField(0, pkg, "Model", types.NewPointer(base), true)}, nil), nil)
	assert.True(t, m.HasSuperType(child))
}
