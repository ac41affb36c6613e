package rpc

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gotomicro/ekit/bean/option"
	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"restrpc/internal/errs"
	"restrpc/rpc/compress"
	"restrpc/rpc/message"
	"restrpc/rpc/serialize"
	jsonserialize "restrpc/rpc/serialize/json"
)

const defaultGracePeriod = 5 * time.Second

// Server -> http dispatcher of one bound target
type Server struct {
	path        string
	methods     methodTable
	serializer  serialize.Serializer
	compressors map[string]compress.Compressor
	pool        *workerPool
	grace       time.Duration
	h2c         bool
	mdls        []Middleware
	handler     HandleFunc

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	closed     bool
}

// NewServer instance
func NewServer(opts ...option.Option[Server]) *Server {
	res := &Server{
		path:        "/",
		methods:     make(methodTable, 8),
		serializer:  jsonserialize.Serializer{},
		compressors: make(map[string]compress.Compressor, 4),
		pool:        newWorkerPool(defaultMaxWorkers),
		grace:       defaultGracePeriod,
	}
	// identity encoding is always accepted
	res.RegisterCompressor(compress.DoNothingCompressor{})
	for _, opt := range opts {
		opt(res)
	}
	res.handler = Chain(res.mdls...)(res.dispatch)
	return res
}

// RegisterService binds target. A pointer to a contract struct contributes its
// non-nil func fields; any value contributes its exported methods whose first
// parameter is a context.Context. Duplicate signatures are reported and
// left unresolvable.
func (s *Server) RegisterService(target any) error {
	if target == nil {
		return errs.ServiceTypError
	}
	var res []error
	if val := reflect.ValueOf(target); val.Kind() == reflect.Pointer && !val.IsNil() &&
		val.Elem().Kind() == reflect.Struct {
		res = append(res, s.methods.registerContract(target))
	}
	cnt, err := s.methods.registerMethods(target)
	res = append(res, err)
	if cnt == 0 && len(s.methods) == 0 {
		res = append(res, errs.ServiceTypError)
	}
	return errors.Join(res...)
}

// RegisterFunc binds one function under name.
func (s *Server) RegisterFunc(name string, fn any) error {
	val := reflect.ValueOf(fn)
	if val.Kind() != reflect.Func || val.IsNil() {
		return errs.InvalidMethodShape(name, "not a function")
	}
	desc, err := newMethodDesc(name, val.Type())
	if err != nil {
		return err
	}
	return s.methods.add(desc, val)
}

// RegisterCompressor -> register compressor
func (s *Server) RegisterCompressor(c compress.Compressor) {
	s.compressors[c.Name()] = c
}

// Signatures lists the resolvable signatures.
func (s *Server) Signatures() []string {
	res := make([]string, 0, len(s.methods))
	for sig, stub := range s.methods {
		if !stub.ambiguous {
			res = append(res, sig)
		}
	}
	return res
}

// Handle decodes a raw request body, dispatches it and returns the response.
func (s *Server) Handle(ctx context.Context, body []byte) *message.Response {
	return s.handle(ctx, body, nil)
}

func (s *Server) handle(ctx context.Context, body []byte, meta map[string]string) *message.Response {
	req, err := message.DecodeReq(body)
	if err != nil {
		return errorResponse(wrapError(KindMalformedPayload, err))
	}
	req.Meta = meta
	resp, err := s.handler(ctx, req)
	if err != nil {
		return errorResponse(err)
	}
	if resp == nil {
		return &message.Response{}
	}
	return resp
}

// dispatch resolves the signature and invokes the bound method
func (s *Server) dispatch(ctx context.Context, req *message.Request) (*message.Response, error) {
	stub, ok := s.methods[req.Signature]
	if !ok {
		return nil, NewError(KindMethodNotFound, "no method matches %s", req.Signature)
	}
	if stub.ambiguous {
		return nil, NewError(KindMethodNotFound, "%s is ambiguous", req.Signature)
	}
	// never start a call the caller no longer waits for
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, wrapError(KindTimeout, err)
		}
		return nil, wrapError(KindTransportFailure, err)
	}
	return stub.Invoke(ctx, s.serializer, req)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.write(w, compress.DoNothingCompressor{},
			errorResponse(NewError(KindMalformedPayload, "method %s is not allowed", r.Method)),
			http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path != s.path {
		s.write(w, compress.DoNothingCompressor{},
			errorResponse(NewError(KindMethodNotFound, "no endpoint at %s", r.URL.Path)), 0)
		return
	}
	// the caller's deadline also bounds the wait for a worker
	ctx, cancel := withDeadline(r.Context(), r.Header.Get(headerDeadline))
	defer cancel()
	if err := s.pool.acquire(ctx); err != nil {
		if r.Context().Err() != nil {
			// the caller is gone
			logx.WithContext(ctx).Infof("restrpc: request dropped while waiting for a worker: %v", err)
			return
		}
		s.write(w, compress.DoNothingCompressor{}, errorResponse(wrapError(KindTimeout, err)), 0)
		return
	}
	defer s.pool.release()

	enc := r.Header.Get("Content-Encoding")
	c, ok := s.compressors[enc]
	if !ok {
		s.write(w, compress.DoNothingCompressor{},
			errorResponse(wrapError(KindMalformedPayload, errs.UnknownEncoding(enc))), 0)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.write(w, c, errorResponse(wrapError(KindTransportFailure, err)), 0)
		return
	}
	if body, err = c.Uncompress(body); err != nil {
		s.write(w, c, errorResponse(wrapError(KindMalformedPayload, err)), 0)
		return
	}
	meta := make(map[string]string, len(r.Header))
	for key, values := range r.Header {
		if len(values) > 0 {
			meta[strings.ToLower(key)] = values[0]
		}
	}
	s.write(w, c, s.handle(ctx, body, meta), 0)
}

func withDeadline(ctx context.Context, millis string) (context.Context, context.CancelFunc) {
	deadline, err := strconv.ParseInt(millis, 10, 64)
	if err != nil {
		return ctx, func() {}
	}
	return context.WithDeadline(ctx, time.UnixMilli(deadline))
}

func (s *Server) write(w http.ResponseWriter, c compress.Compressor, resp *message.Response, status int) {
	if status == 0 {
		status = http.StatusOK
		if resp.Error != nil {
			status = Kind(resp.Error.Kind).Status()
		}
	}
	data, err := message.EncodeResp(resp)
	if err != nil {
		logx.Errorf("restrpc: encode response failed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.serializer.ContentType())
	if len(data) > 0 && c.Name() != "" {
		zipped, er := c.Compress(data)
		if er == nil {
			data = zipped
			w.Header().Set("Content-Encoding", c.Name())
		} else {
			logx.Errorf("restrpc: compress response failed: %v", er)
		}
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(status)
	if _, err = w.Write(data); err != nil {
		logx.Errorf("restrpc: sending response failed: %v", err)
	}
}

// Start -> run server
func (s *Server) Start(address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

// Serve accepts connections on listener until Shutdown.
func (s *Server) Serve(listener net.Listener) error {
	var handler http.Handler = s
	if s.h2c {
		handler = h2c.NewHandler(s, &http2.Server{})
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = listener.Close()
		return errs.ServerClosedError
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = srv
	s.listener = listener
	s.mu.Unlock()

	logx.Infof("restrpc: serving %d methods on %s%s", len(s.Signatures()), listener.Addr(), s.path)
	err := srv.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Addr is nil until Serve runs.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops accepting, waits for in-flight requests until ctx ends and
// then force closes the remaining connections.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	srv := s.httpServer
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	err := srv.Shutdown(ctx)
	if err != nil {
		logx.Errorf("restrpc: graceful shutdown interrupted, closing connections: %v", err)
		_ = srv.Close()
		return err
	}
	logx.Info("restrpc: server stopped")
	return nil
}

// Close -> Shutdown with the configured grace period
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.grace)
	defer cancel()
	return s.Shutdown(ctx)
}

// ServerWithPath sets the endpoint path, "/" by default.
func ServerWithPath(path string) option.Option[Server] {
	return func(server *Server) {
		if path != "" {
			server.path = path
		}
	}
}

// ServerWithMaxWorkers caps concurrent invocations, 10 by default.
func ServerWithMaxWorkers(n int) option.Option[Server] {
	return func(server *Server) {
		server.pool = newWorkerPool(n)
	}
}

// ServerWithGracePeriod is the drain time used by Close.
func ServerWithGracePeriod(d time.Duration) option.Option[Server] {
	return func(server *Server) {
		if d > 0 {
			server.grace = d
		}
	}
}

// ServerWithH2C serves HTTP/2 without TLS next to HTTP/1.1.
func ServerWithH2C() option.Option[Server] {
	return func(server *Server) {
		server.h2c = true
	}
}

func ServerWithSerializer(sl serialize.Serializer) option.Option[Server] {
	return func(server *Server) {
		server.serializer = sl
	}
}

func ServerWithCompressors(cs ...compress.Compressor) option.Option[Server] {
	return func(server *Server) {
		for _, c := range cs {
			server.RegisterCompressor(c)
		}
	}
}

func ServerWithMiddlewares(mdls ...Middleware) option.Option[Server] {
	return func(server *Server) {
		server.mdls = append(server.mdls, mdls...)
	}
}
