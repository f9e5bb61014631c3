package generator

import (
	"go/ast"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/jinzhu/inflection"

	"github.com/numeron/brick/pkg/options"
)

// UnitName names the unit generated for class.
func UnitName(class, naming string) string {
	if naming == options.NamingPlural {
		return inflection.Plural(class)
	}
	return class + "s"
}

// FileName is the unit's file name.
func FileName(unit, suffix string) string {
	return unit + suffix
}

type names struct {
	lazyFunc    string
	getFunc     string
	factoryType string
	lazyType    string
}

func namesFor(class string) names {
	n := names{
		lazyFunc:    "Lazy" + class,
		getFunc:     "Get" + class,
		factoryType: lowerInitial(class) + "Factory",
		lazyType:    lowerInitial(class) + "Lazy",
	}
	if !ast.IsExported(class) {
		n.lazyFunc = "lazy" + upperFirst(class)
		n.getFunc = "get" + upperFirst(class)
	}
	return n
}

// namePool hands out identifiers, suffixing ones already taken.
type namePool struct {
	used map[string]int
}

func newNamePool(reserved ...string) *namePool {
	p := &namePool{used: make(map[string]int)}
	for _, r := range reserved {
		p.used[r] = 1
	}
	return p
}

func (p *namePool) take(name string) string {
	count := p.used[name]
	p.used[name] = count + 1
	if count == 0 {
		return name
	}
	candidate := name + strconv.Itoa(count)
	for p.used[candidate] > 0 {
		count++
		candidate = name + strconv.Itoa(count)
	}
	p.used[name] = count + 1
	p.used[candidate] = 1
	return candidate
}

// paramName names the i-th constructor parameter.
func paramName(name string, i int) string {
	if name == "" || name == "_" {
		return "p" + strconv.Itoa(i)
	}
	return name
}

// lowerInitial lowers the leading run of upper case letters, keeping the
// last one when it starts the next word: HTTPServer becomes httpServer.
func lowerInitial(s string) string {
	rs := []rune(s)
	i := 0
	for i < len(rs) && unicode.IsUpper(rs[i]) {
		i++
	}
	if i > 1 && i < len(rs) && unicode.IsLower(rs[i]) {
		i--
	}
	for j := range i {
		rs[j] = unicode.ToLower(rs[j])
	}
	return string(rs)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}
