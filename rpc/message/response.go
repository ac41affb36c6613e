package message

import (
	"encoding/json"
)

// Response -> result of one invocation.
// Exactly one of Data and Error is meaningful; an empty Data with a nil
// Error is the "no value" result of a void method.
type Response struct {
	// bare JSON value of the declared return type
	Data  []byte
	Error *Error
}

// Error is the JSON error envelope.
type Error struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Kind + ": " + e.Message
}

// EncodeResp -> response body
func EncodeResp(resp *Response) ([]byte, error) {
	if resp.Error != nil {
		return json.Marshal(resp.Error)
	}
	return resp.Data, nil
}

// DecodeError -> parse an error envelope
func DecodeError(bs []byte) (*Error, error) {
	e := &Error{}
	if err := json.Unmarshal(bs, e); err != nil {
		return nil, err
	}
	if e.Kind == "" {
		return nil, errMissingKind
	}
	return e, nil
}
