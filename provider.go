package brick

import (
	"fmt"
	"reflect"
)

// DefaultKey prefixes the Store keys used by Provider.
const DefaultKey = "github.com/numeron/brick.DefaultKey"

// Factory creates the value a Provider was asked for. Generated factories
// know a single concrete type and ignore the requested one; Get asserts the
// result back to the caller's type.
type Factory interface {
	Create(t reflect.Type) any
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(t reflect.Type) any

// Create calls f(t).
func (f FactoryFunc) Create(t reflect.Type) any { return f(t) }

// Provider hands out values kept in an Owner's Store, using its Factory for
// missing ones.
type Provider struct {
	store   *Store
	factory Factory
}

// NewProvider returns a Provider bound to owner's Store.
func NewProvider(owner Owner, factory Factory) *Provider {
	return &Provider{store: owner.Store(), factory: factory}
}

// Get returns the value of exactly type t, creating and storing it when the
// store holds none.
func (p *Provider) Get(t reflect.Type) any {
	key := DefaultKey + ":" + typeKey(t)
	if v, ok := p.store.Get(key); ok && reflect.TypeOf(v) == t {
		return v
	}
	v := p.factory.Create(t)
	p.store.Put(key, v)
	return v
}

// Get returns the T held by p. It panics when the factory produced a value
// of another type.
func Get[T any](p *Provider) T {
	t := reflect.TypeFor[T]()
	v := p.Get(t)
	out, ok := v.(T)
	if !ok {
		panic(fmt.Sprintf("brick: factory returned %T, want %s", v, t))
	}
	return out
}

func typeKey(t reflect.Type) string {
	switch {
	case t.Kind() == reflect.Pointer:
		return "*" + typeKey(t.Elem())
	case t.Name() != "" && t.PkgPath() != "":
		return t.PkgPath() + "." + t.Name()
	default:
		return t.String()
	}
}
