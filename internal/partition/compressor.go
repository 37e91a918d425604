package partition

import (
	"fmt"
	"io"
	"io/ioutil"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
)

// A Compressor wraps the streams used to store Records on disk
type Compressor interface {
	Name() string                                  // Name returns the configuration name of this Compressor
	NewWriter(w io.Writer) (io.WriteCloser, error) // NewWriter wraps w in a compressing writer. Closing it does not close w.
	NewReader(r io.Reader) (io.ReadCloser, error)  // NewReader wraps r in a decompressing reader. Closing it does not close r.
}

// CreateCompressor returns the Compressor with the given name: "lz4", "zstd" or "none"
func CreateCompressor(name string) (Compressor, error) {
	switch name {
	case "", "lz4":
		return &lz4Compressor{}, nil
	case "zstd":
		return &zstdCompressor{}, nil
	case "none":
		return &nopCompressor{}, nil
	default:
		return nil, fmt.Errorf("Unknown compression %s", name)
	}
}

// lz4Compressor is a Compressor which uses the lz4 compression algorithm
type lz4Compressor struct{}

func (c *lz4Compressor) Name() string {
	return "lz4"
}

func (c *lz4Compressor) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return lz4.NewWriter(w), nil
}

func (c *lz4Compressor) NewReader(r io.Reader) (io.ReadCloser, error) {
	return ioutil.NopCloser(lz4.NewReader(r)), nil
}

// zstdCompressor is a Compressor which uses the zstd compression algorithm
type zstdCompressor struct{}

func (c *zstdCompressor) Name() string {
	return "zstd"
}

func (c *zstdCompressor) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
}

func (c *zstdCompressor) NewReader(r io.Reader) (io.ReadCloser, error) {
	decompressor, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &zstdReadCloser{decompressor}, nil
}

type zstdReadCloser struct {
	*zstd.Decoder
}

func (z *zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

// nopCompressor stores Records uncompressed
type nopCompressor struct{}

func (c *nopCompressor) Name() string {
	return "none"
}

func (c *nopCompressor) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

func (c *nopCompressor) NewReader(r io.Reader) (io.ReadCloser, error) {
	return ioutil.NopCloser(r), nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}
