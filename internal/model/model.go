package model

import (
	"slices"
	"strconv"
	"strings"

	"github.com/dave/jennifer/jen"
)

type Kind int

const (
	KindInvalid   Kind = iota
	KindBasic          // string, int, error, any
	KindNamed          // declared type, possibly instantiated
	KindTypeParam      // T in a generic declaration
	KindPointer        // pointer to an already nullable type
	KindSlice          // []T
	KindArray          // [N]T
	KindMap            // map[K]V
	KindChan           // chan T
	KindFunc           // func(...) ...
	KindStruct         // struct{...}
	KindInterface      // interface{...} with methods
)

var kindNames = [...]string{"invalid", "basic", "named", "type-param", "pointer", "slice", "array", "map", "chan", "func", "struct", "interface"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

type ChanDir int

const (
	ChanBoth ChanDir = iota
	ChanSend
	ChanRecv
)

// TypeDescriptor is the canonical description of a type reference.
// Generics carries type arguments for named types, the element for
// slice/array/chan/pointer and key, value for maps.
type TypeDescriptor struct {
	Kind        Kind
	Package     string   // import path, "" for predeclared
	PackageName string   // package name as declared
	Names       []string // nested path ending in the simple name
	Nullable    bool
	Generics    []*TypeDescriptor
	Len         int64
	Dir         ChanDir

	// function shape
	Receiver *TypeDescriptor
	Params   []*TypeDescriptor
	Results  []*TypeDescriptor
	Variadic bool

	Fields    []Field           // struct
	Methods   []Method          // interface
	Embeddeds []*TypeDescriptor // interface
}

type Field struct {
	Name     string
	Type     *TypeDescriptor
	Embedded bool
	Tag      string
}

type Method struct {
	Name string
	Type *TypeDescriptor
}

// SimpleName is the last element of Names.
func (t *TypeDescriptor) SimpleName() string {
	if t == nil || len(t.Names) == 0 {
		return ""
	}
	return t.Names[len(t.Names)-1]
}

// QualifiedName is Package + "." + the dotted Names path, or the bare path
// for predeclared types.
func (t *TypeDescriptor) QualifiedName() string {
	if t == nil {
		return ""
	}
	name := strings.Join(t.Names, ".")
	if t.Package == "" {
		return name
	}
	return t.Package + "." + name
}

// IsFunc reports whether t has a function shape.
func (t *TypeDescriptor) IsFunc() bool { return t != nil && t.Kind == KindFunc }

// WithNullable returns a copy of t with Nullable set to nullable.
func (t *TypeDescriptor) WithNullable(nullable bool) *TypeDescriptor {
	c := *t
	c.Nullable = nullable
	return &c
}

// Elem returns the element descriptor of pointer, slice, array and chan
// descriptors.
func (t *TypeDescriptor) Elem() *TypeDescriptor {
	switch t.Kind {
	case KindPointer, KindSlice, KindArray, KindChan:
		if len(t.Generics) > 0 {
			return t.Generics[0]
		}
	case KindMap:
		if len(t.Generics) > 1 {
			return t.Generics[1]
		}
	}
	return nil
}

// Equal reports whether t and o describe the same type.
func (t *TypeDescriptor) Equal(o *TypeDescriptor) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind || t.Package != o.Package || t.PackageName != o.PackageName ||
		t.Nullable != o.Nullable || t.Len != o.Len || t.Dir != o.Dir || t.Variadic != o.Variadic ||
		!slices.Equal(t.Names, o.Names) || !t.Receiver.Equal(o.Receiver) {
		return false
	}
	if !equalList(t.Generics, o.Generics) || !equalList(t.Params, o.Params) ||
		!equalList(t.Results, o.Results) || !equalList(t.Embeddeds, o.Embeddeds) {
		return false
	}
	if !slices.EqualFunc(t.Fields, o.Fields, func(a, b Field) bool {
		return a.Name == b.Name && a.Embedded == b.Embedded && a.Tag == b.Tag && a.Type.Equal(b.Type)
	}) {
		return false
	}
	return slices.EqualFunc(t.Methods, o.Methods, func(a, b Method) bool {
		return a.Name == b.Name && a.Type.Equal(b.Type)
	})
}

func equalList(a, b []*TypeDescriptor) bool {
	return slices.EqualFunc(a, b, (*TypeDescriptor).Equal)
}

// String renders t in Go syntax with package-qualified names.
func (t *TypeDescriptor) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *TypeDescriptor) write(b *strings.Builder) {
	if t == nil {
		b.WriteString("<nil>")
		return
	}
	if t.Nullable {
		b.WriteByte('*')
	}
	switch t.Kind {
	case KindBasic, KindTypeParam:
		b.WriteString(t.SimpleName())
	case KindNamed:
		b.WriteString(t.QualifiedName())
		writeList(b, "[", "]", t.Generics)
	case KindPointer:
		b.WriteByte('*')
		t.Elem().write(b)
	case KindSlice:
		b.WriteString("[]")
		t.Elem().write(b)
	case KindArray:
		b.WriteString("[" + strconv.FormatInt(t.Len, 10) + "]")
		t.Elem().write(b)
	case KindMap:
		b.WriteString("map[")
		t.Generics[0].write(b)
		b.WriteByte(']')
		t.Generics[1].write(b)
	case KindChan:
		switch t.Dir {
		case ChanSend:
			b.WriteString("chan<- ")
		case ChanRecv:
			b.WriteString("<-chan ")
		default:
			b.WriteString("chan ")
		}
		t.Elem().write(b)
	case KindFunc:
		if t.Receiver != nil {
			b.WriteByte('(')
			t.Receiver.write(b)
			b.WriteString(") ")
		}
		b.WriteString("func")
		t.writeSignature(b)
	case KindStruct:
		b.WriteString("struct{")
		for i, f := range t.Fields {
			if i > 0 {
				b.WriteString("; ")
			}
			if !f.Embedded {
				b.WriteString(f.Name + " ")
			}
			f.Type.write(b)
		}
		b.WriteByte('}')
	case KindInterface:
		b.WriteString("interface{")
		n := 0
		for _, e := range t.Embeddeds {
			if n > 0 {
				b.WriteString("; ")
			}
			e.write(b)
			n++
		}
		for _, m := range t.Methods {
			if n > 0 {
				b.WriteString("; ")
			}
			b.WriteString(m.Name)
			m.Type.writeSignature(b)
			n++
		}
		b.WriteByte('}')
	default:
		b.WriteString("invalid")
	}
}

func (t *TypeDescriptor) writeSignature(b *strings.Builder) {
	b.WriteByte('(')
	for i, p := range t.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		if t.Variadic && i == len(t.Params)-1 && p.Kind == KindSlice {
			b.WriteString("...")
			p.Elem().write(b)
			continue
		}
		p.write(b)
	}
	b.WriteByte(')')
	switch len(t.Results) {
	case 0:
	case 1:
		b.WriteByte(' ')
		t.Results[0].write(b)
	default:
		writeList(b, " (", ")", t.Results)
	}
}

func writeList(b *strings.Builder, open, close string, list []*TypeDescriptor) {
	if len(list) == 0 {
		return
	}
	b.WriteString(open)
	for i, d := range list {
		if i > 0 {
			b.WriteString(", ")
		}
		d.write(b)
	}
	b.WriteString(close)
}

// ParameterDescriptor is one primary-constructor parameter.
type ParameterDescriptor struct {
	Name     string
	Type     *TypeDescriptor
	Variadic bool // Type is a slice; the parameter is declared ...Elem
}

// Location is where a declaration lives and where its unit is written.
type Location struct {
	PkgPath string
	PkgName string
	Dir     string
}

type DeclKind int

const (
	DeclFunc DeclKind = iota
	DeclType
)

func (k DeclKind) String() string {
	if k == DeclType {
		return "type"
	}
	return "func"
}

// Declaration names one top-level declaration of a GeneratedUnit.
type Declaration struct {
	Kind DeclKind
	Name string
}

// GeneratedUnit is the file emitted for one class declaration.
type GeneratedUnit struct {
	Location     Location
	Name         string // <Class>s
	Class        string
	Sources      []string
	Parameters   []*ParameterDescriptor
	Declarations []Declaration
	Code         *jen.File
}
