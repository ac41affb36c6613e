package rpc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_Status(t *testing.T) {
	testCases := []struct {
		kind Kind
		want int
	}{
		{kind: KindTransportFailure, want: http.StatusBadGateway},
		{kind: KindMalformedPayload, want: http.StatusBadRequest},
		{kind: KindMethodNotFound, want: http.StatusNotFound},
		{kind: KindInvocationFailed, want: http.StatusInternalServerError},
		{kind: KindTimeout, want: http.StatusGatewayTimeout},
		{kind: KindRateLimited, want: http.StatusTooManyRequests},
		{kind: Kind("Unknown"), want: http.StatusInternalServerError},
	}
	for _, tc := range testCases {
		t.Run(string(tc.kind), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.kind.Status())
		})
	}
}

func TestAsError(t *testing.T) {
	cause := errors.New("boom")
	testCases := []struct {
		name     string
		err      error
		wantKind Kind
		wantMsg  string
	}{
		{name: "plain", err: cause, wantKind: KindInvocationFailed, wantMsg: "boom"},
		{name: "deadline", err: fmt.Errorf("slow: %w", context.DeadlineExceeded), wantKind: KindTimeout},
		{name: "kept", err: NewError(KindRateLimited, "too many"), wantKind: KindRateLimited, wantMsg: "too many"},
		{name: "wrapped", err: fmt.Errorf("x: %w", NewError(KindMethodNotFound, "f()")), wantKind: KindMethodNotFound, wantMsg: "f()"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := AsError(tc.err)
			assert.Equal(t, tc.wantKind, e.Kind)
			if tc.wantMsg != "" {
				assert.Equal(t, tc.wantMsg, e.Message)
			}
		})
	}
	assert.ErrorIs(t, AsError(cause), cause)
}

func TestError_Is(t *testing.T) {
	err := NewError(KindTimeout, "add(int)")
	assert.ErrorIs(t, err, ErrTimeout)
	assert.ErrorIs(t, fmt.Errorf("call: %w", err), ErrTimeout)
	assert.NotErrorIs(t, err, ErrTransportFailure)
	assert.NotErrorIs(t, err, NewError(KindTimeout, "other"))
	assert.Equal(t, "restrpc: Timeout: add(int)", err.Error())
	assert.Equal(t, "restrpc: Timeout", ErrTimeout.Error())
}
