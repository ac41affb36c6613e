// Package message defines the two wire shapes of a call: the invocation
// request posted by the client and the response produced by the server.
package message

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// Request -> one method invocation
type Request struct {
	// Signature selects the method, e.g. add(int,int[])
	Signature string `json:"signature"`
	// Arguments are positional; JSON null stays an explicit element
	Arguments []json.RawMessage `json:"arguments"`

	// Meta travels as transport headers, not in the body.
	// Keys are lower case.
	Meta map[string]string `json:"-"`
}

var errEmptySignature = errors.New("message: request has no signature")

// EncodeReq -> request body
func EncodeReq(req *Request) ([]byte, error) {
	args := req.Arguments
	if args == nil {
		args = []json.RawMessage{}
	}
	return json.Marshal(struct {
		Signature string            `json:"signature"`
		Arguments []json.RawMessage `json:"arguments"`
	}{Signature: req.Signature, Arguments: args})
}

// DecodeReq -> parse request body
func DecodeReq(bs []byte) (*Request, error) {
	req := &Request{}
	dec := json.NewDecoder(bytes.NewReader(bs))
	if err := dec.Decode(req); err != nil {
		return nil, err
	}
	// trailing garbage after the object is a malformed body
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("message: unexpected data after request object")
	}
	if req.Signature == "" {
		return nil, errEmptySignature
	}
	return req, nil
}

var errMissingKind = errors.New("message: error envelope has no kind")
