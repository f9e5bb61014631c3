package generator

import (
	"reflect"

	"github.com/dave/jennifer/jen"

	"github.com/numeron/brick/internal/model"
)

// typeCode renders a descriptor as a jennifer type expression.
func typeCode(d *model.TypeDescriptor) *jen.Statement {
	s := &jen.Statement{}
	if d.Nullable {
		s = s.Op("*")
	}
	switch d.Kind {
	case model.KindBasic, model.KindTypeParam:
		return s.Id(d.SimpleName())
	case model.KindNamed:
		if d.Package == "" {
			s = s.Id(d.SimpleName())
		} else {
			s = s.Qual(d.Package, d.SimpleName())
		}
		if len(d.Generics) > 0 {
			s = s.Types(typeCodes(d.Generics)...)
		}
		return s
	case model.KindPointer:
		return s.Op("*").Add(typeCode(d.Elem()))
	case model.KindSlice:
		return s.Index().Add(typeCode(d.Elem()))
	case model.KindArray:
		return s.Index(jen.Lit(int(d.Len))).Add(typeCode(d.Elem()))
	case model.KindMap:
		return s.Map(typeCode(d.Generics[0])).Add(typeCode(d.Generics[1]))
	case model.KindChan:
		switch d.Dir {
		case model.ChanSend:
			return s.Chan().Op("<-").Add(typeCode(d.Elem()))
		case model.ChanRecv:
			return s.Op("<-").Chan().Add(typeCode(d.Elem()))
		}
		return s.Chan().Add(typeCode(d.Elem()))
	case model.KindFunc:
		return signatureCode(s.Func(), d)
	case model.KindStruct:
		fields := make([]jen.Code, 0, len(d.Fields))
		for _, f := range d.Fields {
			var field *jen.Statement
			if f.Embedded {
				field = typeCode(f.Type)
			} else {
				field = jen.Id(f.Name).Add(typeCode(f.Type))
			}
			if tags := structTagToMap(reflect.StructTag(f.Tag)); len(tags) > 0 {
				field = field.Tag(tags)
			}
			fields = append(fields, field)
		}
		return s.Struct(fields...)
	case model.KindInterface:
		members := make([]jen.Code, 0, len(d.Embeddeds)+len(d.Methods))
		for _, e := range d.Embeddeds {
			members = append(members, typeCode(e))
		}
		for _, m := range d.Methods {
			members = append(members, signatureCode(jen.Id(m.Name), m.Type))
		}
		return s.Interface(members...)
	}
	return s.Id("any")
}

func typeCodes(list []*model.TypeDescriptor) []jen.Code {
	out := make([]jen.Code, len(list))
	for i, d := range list {
		out[i] = typeCode(d)
	}
	return out
}

// signatureCode appends the parameter and result lists of fn to s.
func signatureCode(s *jen.Statement, fn *model.TypeDescriptor) *jen.Statement {
	params := make([]jen.Code, len(fn.Params))
	for i, p := range fn.Params {
		if fn.Variadic && i == len(fn.Params)-1 && p.Kind == model.KindSlice {
			params[i] = jen.Op("...").Add(typeCode(p.Elem()))
			continue
		}
		params[i] = typeCode(p)
	}
	s = s.Params(params...)
	switch len(fn.Results) {
	case 0:
		return s
	case 1:
		return s.Add(typeCode(fn.Results[0]))
	}
	return s.Parens(jen.List(typeCodes(fn.Results)...))
}

// importNames collects package names referenced by d so jennifer can use
// declared names instead of guessing from the path.
func importNames(d *model.TypeDescriptor, into map[string]string) {
	if d == nil {
		return
	}
	if d.Kind == model.KindNamed && d.Package != "" && d.PackageName != "" {
		into[d.Package] = d.PackageName
	}
	for _, list := range [][]*model.TypeDescriptor{d.Generics, d.Params, d.Results, d.Embeddeds} {
		for _, g := range list {
			importNames(g, into)
		}
	}
	for _, f := range d.Fields {
		importNames(f.Type, into)
	}
	for _, m := range d.Methods {
		importNames(m.Type, into)
	}
}
