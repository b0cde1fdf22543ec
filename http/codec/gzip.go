package codec

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

func NewGZIP() Codec {
	return baseCodec{
		token: "gzip",
		newReader: func(src io.Reader) (io.ReadCloser, error) {
			r, err := gzip.NewReader(src)
			if err != nil {
				return nil, err
			}

			return r, nil
		},
	}
}
