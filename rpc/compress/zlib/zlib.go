package zlib

import (
	"bytes"
	"compress/zlib"
	"io"

	"restrpc/rpc/compress"
)

var _ compress.Compressor = Compressor{}

// Compressor produces the zlib format, which HTTP calls "deflate"
type Compressor struct{}

func (Compressor) Name() string {
	return "deflate"
}

func (Compressor) Compress(data []byte) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	w := zlib.NewWriter(buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (Compressor) Uncompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = r.Close()
	}()
	return io.ReadAll(r)
}
