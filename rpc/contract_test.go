package rpc

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// Calculator is shared by the client and the server tests.
type Calculator struct {
	Add     func(ctx context.Context, a int) (int, error)                     `rpc:"add"`
	AddPair func(ctx context.Context, a, b int) (int, error)                  `rpc:"add"`
	AddRest func(ctx context.Context, a int, rest ...int) (int, error)        `rpc:"add"`
	Test    func(ctx context.Context, m map[string]any) (map[string]any, error) `rpc:"test"`
	Divide  func(ctx context.Context, a, b int) (int, error)                  `rpc:"divide"`
	Reset   func(ctx context.Context) error                                   `rpc:"reset"`
	Slow    func(ctx context.Context, d time.Duration) (string, error)        `rpc:"slow"`
	Echo    func(ctx context.Context, u *User) (*User, error)                 `rpc:"echo"`

	// not part of the contract
	version string
}

type User struct {
	Name  string   `json:"name"`
	Tags  []string `json:"tags"`
	Admin *bool    `json:"admin"`
}

// calculatorImpl counts invocations so tests can assert that a method
// was or was not reached.
type calculatorImpl struct {
	calls  atomic.Int64
	resets atomic.Int64
}

func (c *calculatorImpl) contract() *Calculator {
	return &Calculator{
		Add: func(ctx context.Context, a int) (int, error) {
			c.calls.Add(1)
			return a + a, nil
		},
		AddPair: func(ctx context.Context, a, b int) (int, error) {
			c.calls.Add(1)
			return a + b, nil
		},
		AddRest: func(ctx context.Context, a int, rest ...int) (int, error) {
			c.calls.Add(1)
			for _, r := range rest {
				a += r
			}
			return a, nil
		},
		Test: func(ctx context.Context, m map[string]any) (map[string]any, error) {
			c.calls.Add(1)
			return m, nil
		},
		Divide: func(ctx context.Context, a, b int) (int, error) {
			c.calls.Add(1)
			if b == 0 {
				return 0, errors.New("divide by zero")
			}
			return a / b, nil
		},
		Reset: func(ctx context.Context) error {
			c.resets.Add(1)
			return nil
		},
		Slow: func(ctx context.Context, d time.Duration) (string, error) {
			c.calls.Add(1)
			select {
			case <-time.After(d):
				return "done", nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		},
		Echo: func(ctx context.Context, u *User) (*User, error) {
			c.calls.Add(1)
			return u, nil
		},
	}
}
