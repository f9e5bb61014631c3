package generator

import (
	"reflect"
	"strings"
)

// structTagToMap converts a reflect.StructTag into a key/value map.
func structTagToMap(tag reflect.StructTag) map[string]string {
	m := map[string]string{}
	raw := strings.TrimSpace(string(tag))
	for raw != "" {
		key, rest, ok := strings.Cut(raw, ":\"")
		if !ok {
			break
		}
		end := closingQuote(rest)
		if end < 0 {
			break
		}
		if val, ok := tag.Lookup(key); ok {
			m[key] = val
		}
		raw = strings.TrimSpace(rest[end+1:])
	}
	return m
}

// closingQuote finds the first unescaped quote in s.
func closingQuote(s string) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}
