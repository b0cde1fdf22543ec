package codec

import (
	"io"

	"github.com/klauspost/compress/zstd"
)

func NewZSTD() Codec {
	return baseCodec{
		token: "zstd",
		newReader: func(src io.Reader) (io.ReadCloser, error) {
			// a single response is decoded at a time
			d, err := zstd.NewReader(src, zstd.WithDecoderConcurrency(1))
			if err != nil {
				return nil, err
			}

			return d.IOReadCloser(), nil
		},
	}
}
