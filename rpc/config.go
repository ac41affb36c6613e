package rpc

import (
	"time"

	"github.com/gotomicro/ekit/bean/option"
	"github.com/zeromicro/go-zero/core/logx"

	"restrpc/rpc/compress"
	"restrpc/rpc/compress/gzip"
	"restrpc/rpc/compress/lz4"
	"restrpc/rpc/compress/snappy"
	"restrpc/rpc/compress/zlib"
)

// ServerConf is the file configuration of a server, loaded with go-zero conf.
type ServerConf struct {
	Log             logx.LogConf  `json:",optional"`
	Addr            string        `json:",default=:8080"`
	Path            string        `json:",default=/"`
	MaxWorkers      int           `json:",default=10"`
	ShutdownTimeout time.Duration `json:",default=5s"`
	H2C             bool          `json:",optional"`
	// any of gzip, deflate, snappy, lz4
	Compressors []string `json:",optional"`
}

var compressors = map[string]compress.Compressor{
	gzip.Compressor{}.Name():   gzip.Compressor{},
	zlib.Compressor{}.Name():   zlib.Compressor{},
	snappy.Compressor{}.Name(): snappy.Compressor{},
	lz4.Compressor{}.Name():    lz4.Compressor{},
}

// CompressorByName returns a built-in compressor.
func CompressorByName(name string) (compress.Compressor, bool) {
	c, ok := compressors[name]
	return c, ok
}

// Options converts the configuration into server options.
func (c ServerConf) Options() []option.Option[Server] {
	opts := []option.Option[Server]{
		ServerWithPath(c.Path),
		ServerWithMaxWorkers(c.MaxWorkers),
		ServerWithGracePeriod(c.ShutdownTimeout),
	}
	if c.H2C {
		opts = append(opts, ServerWithH2C())
	}
	for _, name := range c.Compressors {
		cp, ok := CompressorByName(name)
		if !ok {
			logx.Errorf("restrpc: unknown compressor %q ignored", name)
			continue
		}
		opts = append(opts, ServerWithCompressors(cp))
	}
	return opts
}

// MustNewServer sets up logging from c and creates the server.
func MustNewServer(c ServerConf, opts ...option.Option[Server]) *Server {
	logx.MustSetup(c.Log)
	return NewServer(append(c.Options(), opts...)...)
}
