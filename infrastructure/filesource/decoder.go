package filesource

import (
	"compress/gzip"
	"fmt"
	"io"

	"github.com/DataDog/zstd"

	"github.com/reglet-dev/vertical/domain/entities"
)

// newDecoder wraps r in the decompressor for c. The returned closer, when non-nil,
// must be closed before r.
func newDecoder(r io.Reader, c entities.Compression) (io.Reader, io.Closer, error) {
	switch c {
	case entities.CompressionNone:
		return r, nil, nil
	case entities.CompressionGzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip: %w", err)
		}
		return gz, gz, nil
	case entities.CompressionZstd:
		zr := zstd.NewReader(r)
		return zr, zr, nil
	default:
		return nil, nil, fmt.Errorf("unsupported compression %s", c)
	}
}
