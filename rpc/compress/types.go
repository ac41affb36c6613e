// Package compress holds the body compressors negotiated through the HTTP
// Content-Encoding header.
package compress

// Compressor -> compression algorithm abstract
type Compressor interface {
	// Name is the Content-Encoding token; empty means identity
	Name() string
	Compress(data []byte) ([]byte, error)
	Uncompress(data []byte) ([]byte, error)
}

// DoNothingCompressor leaves the body as is.
type DoNothingCompressor struct{}

func (DoNothingCompressor) Name() string {
	return ""
}

func (DoNothingCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (DoNothingCompressor) Uncompress(data []byte) ([]byte, error) {
	return data, nil
}
