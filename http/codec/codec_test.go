package codec

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

func gzipped(text string) []byte {
	buff := bytes.NewBuffer(nil)
	c := gzip.NewWriter(buff)
	if _, err := c.Write([]byte(text)); err != nil {
		panic("unexpected error during gzipping")
	}
	if c.Close() != nil {
		panic("unexpected error during closing gzip writer")
	}

	return buff.Bytes()
}

func deflated(text string) []byte {
	buff := bytes.NewBuffer(nil)
	c := zlib.NewWriter(buff)
	if _, err := c.Write([]byte(text)); err != nil {
		panic("unexpected error during deflating")
	}
	if c.Close() != nil {
		panic("unexpected error during closing zlib writer")
	}

	return buff.Bytes()
}

func zstded(text string) []byte {
	w, err := zstd.NewWriter(nil)
	if err != nil {
		panic(err)
	}

	return w.EncodeAll([]byte(text), nil)
}

func decode(t *testing.T, c Codec, data []byte) string {
	r, err := c.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer r.Close()

	decoded, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(decoded)
}

func TestCodecs(t *testing.T) {
	text := strings.Repeat("Hello, world! Lorem ipsum! ", 100)

	tcs := []struct {
		Codec  Codec
		Encode func(string) []byte
	}{
		{NewGZIP(), gzipped},
		{NewDeflate(), deflated},
		{NewZSTD(), zstded},
	}

	for _, tc := range tcs {
		t.Run(tc.Codec.Token(), func(t *testing.T) {
			require.Equal(t, text, decode(t, tc.Codec, tc.Encode(text)))
		})
	}

	t.Run("corrupted gzip", func(t *testing.T) {
		_, err := NewGZIP().NewReader(bytes.NewReader([]byte("definitely not gzip")))
		require.Error(t, err)
	})
}

func TestFind(t *testing.T) {
	codecs := Default()
	require.Equal(t, "gzip", Find(codecs, "GZIP").Token())
	require.Equal(t, "zstd", Find(codecs, "zstd").Token())
	require.Nil(t, Find(codecs, "br"))
	require.Equal(t, "gzip, deflate, zstd", AcceptEncoding(codecs))
}
