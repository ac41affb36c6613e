package rpc

import (
	"context"
	"reflect"

	"restrpc/internal/errs"
	"restrpc/rpc/signature"
)

const tagName = "rpc"

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// methodDesc is one declaration of an interface contract.
type methodDesc struct {
	name      string
	signature string
	typ       reflect.Type
	params    []reflect.Type
	// nil for void
	result  reflect.Type
	withCtx bool
	withErr bool
}

// newMethodDesc accepts func(ctx?, params...) followed by one of
// (), (T), (error) or (T, error).
func newMethodDesc(name string, fn reflect.Type) (*methodDesc, error) {
	if fn.Kind() != reflect.Func {
		return nil, errs.InvalidMethodShape(name, "not a function")
	}
	d := &methodDesc{
		name:    name,
		typ:     fn,
		params:  signature.Params(fn),
		withCtx: fn.NumIn() > 0 && fn.In(0) == contextType,
	}
	switch fn.NumOut() {
	case 0:
	case 1:
		if fn.Out(0) == errorType {
			d.withErr = true
		} else {
			d.result = fn.Out(0)
		}
	case 2:
		if fn.Out(1) != errorType {
			return nil, errs.InvalidMethodShape(name, "second result must be error")
		}
		d.result = fn.Out(0)
		d.withErr = true
	default:
		return nil, errs.InvalidMethodShape(name, "too many results")
	}
	for _, p := range d.params {
		if p == contextType {
			return nil, errs.InvalidMethodShape(name, "context.Context must be the first parameter")
		}
	}
	d.signature = signature.Of(name, fn)
	return d, nil
}

// results builds the return values of a stub call.
func (d *methodDesc) results(val reflect.Value, err error) []reflect.Value {
	out := make([]reflect.Value, 0, 2)
	if d.result != nil {
		if !val.IsValid() || err != nil {
			val = reflect.Zero(d.result)
		}
		out = append(out, val)
	}
	if d.withErr {
		if err != nil {
			out = append(out, reflect.ValueOf(&err).Elem())
		} else {
			out = append(out, reflect.Zero(errorType))
		}
	}
	return out
}

// methodName reads the wire name of a contract field.
func methodName(sf reflect.StructField) (string, bool) {
	tag, ok := sf.Tag.Lookup(tagName)
	if tag == "-" {
		return "", false
	}
	if ok && tag != "" {
		return tag, true
	}
	return sf.Name, true
}

// contractFields returns the settable func fields of a pointer to struct.
func contractFields(contract any) (reflect.Value, []reflect.StructField, error) {
	val := reflect.ValueOf(contract)
	if val.Kind() != reflect.Pointer || val.IsNil() || val.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, nil, errs.ContractTypError
	}
	elem := val.Elem()
	typ := elem.Type()
	fields := make([]reflect.StructField, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if !elem.Field(i).CanSet() || sf.Type.Kind() != reflect.Func {
			continue
		}
		fields = append(fields, sf)
	}
	return elem, fields, nil
}
