package codec

import (
	"io"

	"github.com/klauspost/compress/zlib"
)

// NewDeflate returns the codec of the "deflate" coding, which is the zlib format
// (RFC 1950), not a raw deflate stream.
func NewDeflate() Codec {
	return baseCodec{
		token: "deflate",
		newReader: func(src io.Reader) (io.ReadCloser, error) {
			r, err := zlib.NewReader(src)
			if err != nil {
				return nil, err
			}

			return r, nil
		},
	}
}
