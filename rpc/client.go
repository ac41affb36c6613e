package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"time"

	"github.com/gotomicro/ekit/bean/option"

	"restrpc/internal/errs"
	"restrpc/rpc/compress"
	"restrpc/rpc/message"
	"restrpc/rpc/serialize"
	jsonserialize "restrpc/rpc/serialize/json"
)

// header carrying the caller's deadline in unix milliseconds
const headerDeadline = "x-rpc-deadline"

var _ Proxy = (*Client)(nil)

// Client -> http client of one endpoint
type Client struct {
	endpoint   string
	httpClient *http.Client
	serializer serialize.Serializer
	compressor compress.Compressor
	timeout    time.Duration
	mdls       []Middleware
	handler    HandleFunc
}

// NewClient -> create Client
func NewClient(endpoint string, opts ...option.Option[Client]) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errs.InvalidEndpointError
	}
	client := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{},
		serializer: jsonserialize.Serializer{},
		// avoid nil checks
		compressor: compress.DoNothingCompressor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	client.handler = Chain(client.mdls...)(client.do)
	return client, nil
}

// InitClientProxy -> init client proxy
func InitClientProxy(endpoint string, contract any, opts ...option.Option[Client]) error {
	client, err := NewClient(endpoint, opts...)
	if err != nil {
		return err
	}
	return client.InitService(contract)
}

// InitService fills every func field of contract with a remote stub.
func (c *Client) InitService(contract any) error {
	return setFuncField(c.serializer, contract, c)
}

// Invoke runs the client middlewares and the HTTP exchange.
func (c *Client) Invoke(ctx context.Context, req *message.Request) (*message.Response, error) {
	return c.handler(ctx, req)
}

func (c *Client) do(ctx context.Context, req *message.Request) (*message.Response, error) {
	if c.timeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
	}
	body, err := message.EncodeReq(req)
	if err != nil {
		return nil, wrapError(KindMalformedPayload, err)
	}
	body, err = c.compressor.Compress(body)
	if err != nil {
		return nil, wrapError(KindMalformedPayload, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, wrapError(KindTransportFailure, err)
	}
	for key, value := range req.Meta {
		httpReq.Header.Set(key, value)
	}
	if deadline, ok := ctx.Deadline(); ok {
		httpReq.Header.Set(headerDeadline, strconv.FormatInt(deadline.UnixMilli(), 10))
	}
	httpReq.Header.Set("Content-Type", c.serializer.ContentType())
	if name := c.compressor.Name(); name != "" {
		httpReq.Header.Set("Content-Encoding", name)
		httpReq.Header.Set("Accept-Encoding", name)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, exchangeError(ctx, err)
	}
	defer func() {
		_ = httpResp.Body.Close()
	}()
	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, exchangeError(ctx, err)
	}
	if enc := httpResp.Header.Get("Content-Encoding"); enc != "" {
		if enc != c.compressor.Name() {
			return nil, wrapError(KindMalformedPayload, errs.UnknownEncoding(enc))
		}
		if data, err = c.compressor.Uncompress(data); err != nil {
			return nil, wrapError(KindMalformedPayload, err)
		}
	}
	if httpResp.StatusCode >= 200 && httpResp.StatusCode < 300 {
		return &message.Response{Data: data}, nil
	}
	e, err := message.DecodeError(data)
	if err != nil {
		return nil, NewError(KindMalformedPayload, "unexpected status %d: %s", httpResp.StatusCode, abbreviate(data))
	}
	return &message.Response{Error: e}, nil
}

func exchangeError(ctx context.Context, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return wrapError(KindTimeout, err)
	}
	return wrapError(KindTransportFailure, err)
}

func abbreviate(data []byte) string {
	const limit = 128
	if len(data) > limit {
		return string(data[:limit]) + "..."
	}
	return string(data)
}

// setFuncField is split out so that tests can pass a mock proxy
func setFuncField(s serialize.Serializer, contract any, p Proxy) error {
	elem, fields, err := contractFields(contract)
	if err != nil {
		return err
	}
	descs := make([]*methodDesc, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for i, sf := range fields {
		name, ok := methodName(sf)
		if !ok {
			continue
		}
		desc, err := newMethodDesc(name, sf.Type)
		if err != nil {
			return err
		}
		if !desc.withCtx || !desc.withErr {
			return errs.InvalidMethodShape(sf.Name, "a stub needs a leading context.Context and a trailing error")
		}
		if _, dup := seen[desc.signature]; dup {
			return errs.DuplicateSignature(desc.signature)
		}
		seen[desc.signature] = struct{}{}
		descs[i] = desc
	}
	for i, sf := range fields {
		if descs[i] == nil {
			continue
		}
		elem.FieldByIndex(sf.Index).Set(reflect.MakeFunc(sf.Type, stubFunc(s, p, descs[i])))
	}
	return nil
}

func stubFunc(s serialize.Serializer, p Proxy, desc *methodDesc) func(args []reflect.Value) []reflect.Value {
	return func(args []reflect.Value) []reflect.Value {
		ctx, _ := args[0].Interface().(context.Context)
		if ctx == nil {
			ctx = context.Background()
		}
		val, err := call(ctx, s, p, desc, args[1:])
		return desc.results(val, err)
	}
}

// call performs encode, exchange and decode for one stub invocation.
func call(ctx context.Context, s serialize.Serializer, p Proxy,
	desc *methodDesc, args []reflect.Value) (reflect.Value, error) {
	req := &message.Request{
		Signature: desc.signature,
		Arguments: make([]json.RawMessage, len(args)),
	}
	for i, arg := range args {
		data, err := s.Encode(arg, desc.params[i])
		if err != nil {
			return reflect.Value{}, NewError(KindMalformedPayload, "argument %d: %v", i, err)
		}
		req.Arguments[i] = data
	}
	resp, err := p.Invoke(ctx, req)
	if err != nil {
		return reflect.Value{}, exchangeError(ctx, err)
	}
	if resp.Error != nil {
		return reflect.Value{}, fromEnvelope(resp.Error)
	}
	if desc.result == nil {
		return reflect.Value{}, nil
	}
	if len(bytes.TrimSpace(resp.Data)) == 0 {
		return reflect.Value{}, wrapError(KindMalformedPayload, errs.EmptyResultError)
	}
	val, err := s.Decode(resp.Data, desc.result)
	if err != nil {
		return reflect.Value{}, NewError(KindMalformedPayload, "result of %s: %v", desc.signature, err)
	}
	return val, nil
}

// ClientWithSerializer -> option
func ClientWithSerializer(s serialize.Serializer) option.Option[Client] {
	return func(client *Client) {
		client.serializer = s
	}
}

// ClientWithCompressor -> option
func ClientWithCompressor(c compress.Compressor) option.Option[Client] {
	return func(client *Client) {
		client.compressor = c
	}
}

// ClientWithTimeout sets the deadline of calls whose context has none.
func ClientWithTimeout(timeout time.Duration) option.Option[Client] {
	return func(client *Client) {
		client.timeout = timeout
	}
}

// ClientWithHTTPClient replaces the default http.Client.
func ClientWithHTTPClient(hc *http.Client) option.Option[Client] {
	return func(client *Client) {
		client.httpClient = hc
	}
}

func ClientWithMiddlewares(mdls ...Middleware) option.Option[Client] {
	return func(client *Client) {
		client.mdls = append(client.mdls, mdls...)
	}
}

func (c *Client) String() string {
	return fmt.Sprintf("restrpc client of %s", c.endpoint)
}
