package model

import (
	"go/ast"
	"go/token"
	"go/types"
)

type ClassKind int

const (
	ClassStruct ClassKind = iota
	ClassInterface
	ClassEnum
	ClassAlias
	ClassFunc
	ClassOther
)

var classKindNames = [...]string{"struct", "interface", "enum", "alias", "func", "other"}

func (k ClassKind) String() string {
	if int(k) < len(classKindNames) {
		return classKindNames[k]
	}
	return "other"
}

// Constructor is the primary constructor of a class. An implicit
// constructor has no declaration and takes no parameters.
type Constructor struct {
	Name     string
	Func     *types.Func
	Decl     *ast.FuncDecl
	Implicit bool
}

// ClassDeclaration is one top-level named type seen by the visitor.
type ClassDeclaration struct {
	Name        string
	Names       []string // nested path, always [Name] for Go
	Kind        ClassKind
	Abstract    bool
	Exported    bool
	Location    Location
	File        string
	Pos         token.Position
	Obj         *types.TypeName
	Spec        *ast.TypeSpec
	Constructor *Constructor

	// ConstructorErr is set when a New func exists but has the wrong shape.
	ConstructorErr error
}
