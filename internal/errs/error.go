package errs

import (
	"errors"
	"fmt"
)

var (
	ServiceTypError      = errors.New("restrpc: service must be a pointer to a struct or a value with exported methods")
	ContractTypError     = errors.New("restrpc: contract must be a first level pointer to a struct")
	EmptyResultError     = errors.New("restrpc: empty response body for a method with a return value")
	ServerClosedError    = errors.New("restrpc: server closed")
	InvalidEndpointError = errors.New("restrpc: endpoint must be an absolute http(s) URL")
	LimiterClosedError   = errors.New("restrpc: limiter closed")
)

var (
	NullValueError = errors.New("serialize: null is not a valid value for a non-nillable type")
)

func InvalidMethodShape(name string, reason string) error {
	return fmt.Errorf("restrpc: method %s has an unsupported shape: %s", name, reason)
}

func DuplicateSignature(signature string) error {
	return fmt.Errorf("restrpc: signature %s is declared more than once", signature)
}

func UnknownEncoding(encoding string) error {
	return fmt.Errorf("restrpc: unsupported content encoding %q", encoding)
}
