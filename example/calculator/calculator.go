// Package calculator is the reference contract served by example/calculator/server.
package calculator

import (
	"context"
	"errors"
	"sync/atomic"

	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Calculator -> the contract shared by the client and the server.
// The three add fields are overloads of one remote name.
type Calculator struct {
	Add     func(ctx context.Context, a int) (int, error)                       `rpc:"add"`
	AddPair func(ctx context.Context, a, b int) (int, error)                    `rpc:"add"`
	AddAll  func(ctx context.Context, a int, rest ...int) (int, error)          `rpc:"add"`
	Test    func(ctx context.Context, m map[string]any) (map[string]any, error) `rpc:"test"`
	Divide  func(ctx context.Context, a, b int) (int, error)                    `rpc:"divide"`
	Reset   func(ctx context.Context) error                                     `rpc:"reset"`

	// protobuf messages use the protobuf JSON mapping
	Greet func(ctx context.Context, name *wrapperspb.StringValue) (*wrapperspb.StringValue, error) `rpc:"greet"`
}

var ErrDivideByZero = errors.New("calculator: divide by zero")

// Service implements Calculator.
type Service struct {
	calls atomic.Int64
}

// Calls counts the invocations since the last reset.
func (s *Service) Calls() int64 {
	return s.calls.Load()
}

// Contract returns a Calculator bound to s, ready for RegisterService.
func (s *Service) Contract() *Calculator {
	return &Calculator{
		Add:     s.add,
		AddPair: s.addPair,
		AddAll:  s.addAll,
		Test:    s.test,
		Divide:  s.divide,
		Reset:   s.reset,
		Greet:   s.greet,
	}
}

// add(a) doubles a, it is add(a, a)
func (s *Service) add(ctx context.Context, a int) (int, error) {
	return s.addPair(ctx, a, a)
}

func (s *Service) addPair(ctx context.Context, a, b int) (int, error) {
	s.calls.Add(1)
	return a + b, nil
}

func (s *Service) addAll(ctx context.Context, a int, rest ...int) (int, error) {
	s.calls.Add(1)
	for _, r := range rest {
		a += r
	}
	return a, nil
}

// test echoes m
func (s *Service) test(ctx context.Context, m map[string]any) (map[string]any, error) {
	s.calls.Add(1)
	return m, nil
}

func (s *Service) divide(ctx context.Context, a, b int) (int, error) {
	s.calls.Add(1)
	if b == 0 {
		return 0, ErrDivideByZero
	}
	return a / b, nil
}

func (s *Service) reset(ctx context.Context) error {
	s.calls.Store(0)
	return nil
}

func (s *Service) greet(ctx context.Context, name *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	s.calls.Add(1)
	return wrapperspb.String("hello " + name.GetValue()), nil
}
