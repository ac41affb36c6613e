// Package signature derives the textual signature that identifies one method
// declaration on the wire, e.g. add(int), add(int,int) and add(int,int[]).
package signature

import (
	"context"
	"reflect"
	"strings"
)

var contextType = reflect.TypeOf((*context.Context)(nil)).Elem()

// Encode joins a method name with its ordered parameter type names.
func Encode(name string, paramTypes []string) string {
	var sb strings.Builder
	sb.Grow(len(name) + 2 + 8*len(paramTypes))
	sb.WriteString(name)
	sb.WriteByte('(')
	sb.WriteString(strings.Join(paramTypes, ","))
	sb.WriteByte(')')
	return sb.String()
}

// Of computes the signature of a function type. A leading context.Context
// parameter is not part of the signature, and a variadic tail is encoded as
// its array type, so f(int, ...int) and f(int, []int) collide.
func Of(name string, fn reflect.Type) string {
	return Encode(name, ParamNames(fn))
}

// ParamNames returns the type names of the declared parameters of fn.
func ParamNames(fn reflect.Type) []string {
	params := Params(fn)
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = TypeName(p)
	}
	return names
}

// Params returns the declared parameter types of fn, context excluded.
func Params(fn reflect.Type) []reflect.Type {
	start := 0
	if fn.NumIn() > 0 && fn.In(0) == contextType {
		start = 1
	}
	res := make([]reflect.Type, 0, fn.NumIn()-start)
	for i := start; i < fn.NumIn(); i++ {
		res = append(res, fn.In(i))
	}
	return res
}

// TypeName names a declared type for signature purposes.
func TypeName(typ reflect.Type) string {
	switch typ.Kind() {
	case reflect.Slice, reflect.Array:
		return TypeName(typ.Elem()) + "[]"
	case reflect.Pointer:
		return TypeName(typ.Elem())
	case reflect.Map:
		if typ.Name() == "" {
			return "map[" + TypeName(typ.Key()) + "]" + TypeName(typ.Elem())
		}
	case reflect.Interface:
		if typ.Name() == "" && typ.NumMethod() == 0 {
			return "any"
		}
	}
	return typ.String()
}
