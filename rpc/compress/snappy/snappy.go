package snappy

import (
	"bytes"
	"io"

	"github.com/golang/snappy"

	"restrpc/rpc/compress"
)

var _ compress.Compressor = Compressor{}

// Compressor uses the snappy framing format
type Compressor struct{}

func (Compressor) Name() string {
	return "snappy"
}

func (Compressor) Compress(data []byte) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	w := snappy.NewBufferedWriter(buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	// buffered data only reaches buf on Close
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (Compressor) Uncompress(data []byte) ([]byte, error) {
	return io.ReadAll(snappy.NewReader(bytes.NewReader(data)))
}
