package rpc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/core/conf"
)

func TestServerConf(t *testing.T) {
	var c ServerConf
	require.NoError(t, conf.LoadFromYamlBytes([]byte(`
Addr: 127.0.0.1:9000
MaxWorkers: 3
ShutdownTimeout: 2s
Compressors: [gzip, snappy, brotli]
Log:
  Mode: console
`), &c))
	assert.Equal(t, "127.0.0.1:9000", c.Addr)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, 3, c.MaxWorkers)
	assert.Equal(t, 2*time.Second, c.ShutdownTimeout)
	assert.False(t, c.H2C)

	srv := NewServer(c.Options()...)
	assert.Equal(t, "/", srv.path)
	for i := 0; i < 3; i++ {
		require.True(t, srv.pool.sem.TryAcquire(1))
	}
	assert.False(t, srv.pool.sem.TryAcquire(1))
	assert.Equal(t, 2*time.Second, srv.grace)
	assert.Contains(t, srv.compressors, "gzip")
	assert.Contains(t, srv.compressors, "snappy")
	assert.NotContains(t, srv.compressors, "brotli")
	assert.Contains(t, srv.compressors, "")
}

func TestCompressorByName(t *testing.T) {
	for _, name := range []string{"gzip", "deflate", "snappy", "lz4"} {
		c, ok := CompressorByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}
	_, ok := CompressorByName("br")
	assert.False(t, ok)
}
