package rpc

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime/debug"

	"github.com/zeromicro/go-zero/core/logx"

	"restrpc/internal/errs"
	"restrpc/rpc/message"
	"restrpc/rpc/serialize"
)

// reflectionStub -> one registered method bound to its target
type reflectionStub struct {
	desc *methodDesc
	fn   reflect.Value
	// set when two registrations produced the same signature
	ambiguous bool
}

// methodTable maps a signature to its stub. It is filled before serving
// and only read afterwards.
type methodTable map[string]*reflectionStub

func (t methodTable) add(desc *methodDesc, fn reflect.Value) error {
	if prev, ok := t[desc.signature]; ok {
		prev.ambiguous = true
		return errs.DuplicateSignature(desc.signature)
	}
	t[desc.signature] = &reflectionStub{desc: desc, fn: fn}
	return nil
}

// registerContract adds the non-nil func fields of a contract struct.
func (t methodTable) registerContract(target any) error {
	elem, fields, err := contractFields(target)
	if err != nil {
		return err
	}
	var res []error
	for _, sf := range fields {
		fn := elem.FieldByIndex(sf.Index)
		name, ok := methodName(sf)
		if !ok || fn.IsNil() {
			continue
		}
		desc, err := newMethodDesc(name, sf.Type)
		if err != nil {
			res = append(res, err)
			continue
		}
		if err = t.add(desc, fn); err != nil {
			res = append(res, err)
		}
	}
	return errors.Join(res...)
}

// registerMethods adds the exported methods taking a leading context.
func (t methodTable) registerMethods(target any) (int, error) {
	val := reflect.ValueOf(target)
	typ := val.Type()
	var res []error
	cnt := 0
	for i := 0; i < val.NumMethod(); i++ {
		method := typ.Method(i)
		desc, err := newMethodDesc(method.Name, val.Method(i).Type())
		if err != nil || !desc.withCtx {
			continue
		}
		cnt++
		if err = t.add(desc, val.Method(i)); err != nil {
			res = append(res, err)
		}
	}
	return cnt, errors.Join(res...)
}

// Invoke -> stub execute method by reflect.
// Arguments are all decoded before the call, so a bad argument never
// reaches the target.
func (s *reflectionStub) Invoke(ctx context.Context, ser serialize.Serializer, req *message.Request) (*message.Response, error) {
	d := s.desc
	if len(req.Arguments) != len(d.params) {
		return nil, NewError(KindMalformedPayload, "%s expects %d arguments, got %d",
			d.signature, len(d.params), len(req.Arguments))
	}
	in := make([]reflect.Value, 0, len(d.params)+1)
	if d.withCtx {
		in = append(in, reflect.ValueOf(&ctx).Elem())
	}
	for i, p := range d.params {
		arg, err := ser.Decode(req.Arguments[i], p)
		if err != nil {
			return nil, NewError(KindMalformedPayload, "argument %d of %s: %v", i, d.signature, err)
		}
		in = append(in, arg)
	}
	out, err := s.call(ctx, in)
	if err != nil {
		return nil, err
	}
	resp := &message.Response{}
	if d.result == nil {
		return resp, nil
	}
	resp.Data, err = ser.Encode(out[0], d.result)
	if err != nil {
		return nil, NewError(KindInvocationFailed, "encode result of %s: %v", d.signature, err)
	}
	return resp, nil
}

func (s *reflectionStub) call(ctx context.Context, in []reflect.Value) (out []reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			logx.WithContext(ctx).Errorf("%s panicked: %v\n%s", s.desc.signature, r, debug.Stack())
			err = NewError(KindInvocationFailed, "%s panicked: %v", s.desc.signature, r)
		}
	}()
	if s.desc.typ.IsVariadic() {
		out = s.fn.CallSlice(in)
	} else {
		out = s.fn.Call(in)
	}
	if s.desc.withErr {
		if e := out[len(out)-1]; !e.IsNil() {
			return nil, targetError(e.Interface().(error))
		}
	}
	return out, nil
}

// targetError classifies an error returned by the invoked method. The method
// was found and ran, so only a timeout or a rate limit hit downstream keeps
// its kind; everything else is InvocationFailed.
func targetError(err error) *Error {
	var e *Error
	if errors.As(err, &e) && (e.Kind == KindTimeout || e.Kind == KindRateLimited) {
		return e
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return wrapError(KindTimeout, err)
	}
	return wrapError(KindInvocationFailed, err)
}

func (s *reflectionStub) String() string {
	return fmt.Sprintf("stub %s", s.desc.signature)
}
