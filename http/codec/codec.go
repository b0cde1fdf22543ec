package codec

import (
	"io"
	"strings"

	"github.com/indigo-web/utils/strcomp"
)

// Codec decodes a single content coding.
type Codec interface {
	// Token returns a coding token associated with the codec itself.
	Token() string
	// NewReader returns a reader producing the decoded stream.
	NewReader(src io.Reader) (io.ReadCloser, error)
}

// Default returns the codecs responses are decoded with out of the box.
func Default() []Codec {
	return []Codec{NewGZIP(), NewDeflate(), NewZSTD()}
}

// Find returns the codec with the token, or nil if there is none.
func Find(codecs []Codec, token string) Codec {
	for _, c := range codecs {
		if strcomp.EqualFold(c.Token(), token) {
			return c
		}
	}

	return nil
}

// AcceptEncoding renders tokens of the codecs into the Accept-Encoding header value.
func AcceptEncoding(codecs []Codec) string {
	tokens := make([]string, len(codecs))
	for i, c := range codecs {
		tokens[i] = c.Token()
	}

	return strings.Join(tokens, ", ")
}

type baseCodec struct {
	token     string
	newReader func(io.Reader) (io.ReadCloser, error)
}

func (b baseCodec) Token() string {
	return b.token
}

func (b baseCodec) NewReader(src io.Reader) (io.ReadCloser, error) {
	return b.newReader(src)
}
