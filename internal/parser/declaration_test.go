package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/numeron/brick/internal/model"
)

func TestNewClassDeclaration(t *testing.T) {
	pkg := loadFixture(t, "basic")

	tests := []struct {
		name        string
		kind        model.ClassKind
		abstract    bool
		ctor        string
		implicit    bool
		ctorErr     bool
		noCtorCheck bool
	}{
		{name: "StringViewModel", kind: model.ClassStruct, ctor: "NewStringViewModel"},
		{name: "QueueViewModel", kind: model.ClassStruct, ctor: "NewQueueViewModel"},
		{name: "Base", kind: model.ClassStruct, implicit: true},
		{name: "GenericViewModel", kind: model.ClassStruct, abstract: true, implicit: true},
		{name: "AbstractViewModel", kind: model.ClassStruct, abstract: true, implicit: true},
		{name: "BadViewModel", kind: model.ClassStruct, ctorErr: true},
		{name: "Owner", kind: model.ClassInterface, noCtorCheck: true},
		{name: "Mode", kind: model.ClassEnum, noCtorCheck: true},
		{name: "Alias", kind: model.ClassAlias, noCtorCheck: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, gen, spec := typeSpec(t, pkg, tt.name)
			decl, err := NewClassDeclaration(pkg, file, gen, spec, "New")
			require.NoError(t, err)

			assert.Equal(t, tt.name, decl.Name)
			assert.Equal(t, []string{tt.name}, decl.Names)
			assert.Equal(t, tt.kind, decl.Kind, decl.Kind.String())
			assert.Equal(t, tt.abstract, decl.Abstract)
			assert.Equal(t, pkg.PkgPath, decl.Location.PkgPath)
			assert.Equal(t, "basic", decl.Location.PkgName)
			assert.True(t, decl.Exported)

			if tt.noCtorCheck {
				assert.Nil(t, decl.Constructor)
				return
			}
			if tt.ctorErr {
				require.Error(t, decl.ConstructorErr)
				assert.Nil(t, decl.Constructor)
				return
			}
			require.NoError(t, decl.ConstructorErr)
			require.NotNil(t, decl.Constructor)
			assert.Equal(t, tt.implicit, decl.Constructor.Implicit)
			assert.Equal(t, tt.ctor, decl.Constructor.Name)
			if !tt.implicit {
				require.NotNil(t, decl.Constructor.Decl)
				require.NotNil(t, decl.Constructor.Func)
			}
		})
	}
}

func TestConstructorName(t *testing.T) {
	assert.Equal(t, "NewFoo", ConstructorName("New", "Foo"))
	assert.Equal(t, "newFoo", ConstructorName("New", "foo"))
	assert.Equal(t, "makeBar", ConstructorName("Make", "bar"))
}

func TestHasDirective(t *testing.T) {
	pkg := loadFixture(t, "basic")
	_, gen, spec := typeSpec(t, pkg, "AbstractViewModel")
	assert.True(t, hasDirective(gen.Doc, AbstractDirective))
	assert.False(t, hasDirective(spec.Doc, AbstractDirective))

	_, gen, _ = typeSpec(t, pkg, "Base")
	assert.False(t, hasDirective(gen.Doc, AbstractDirective))
}
