package client

import (
	"bytes"
	"strconv"
	"strings"
	"testing"

	"github.com/indigo-web/nbclient/config"
	"github.com/indigo-web/nbclient/http/method"
	"github.com/indigo-web/nbclient/http/proto"
	"github.com/indigo-web/nbclient/http/status"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

func feed(t *testing.T, resp *Response, pieces ...string) {
	for _, piece := range pieces {
		require.NoError(t, resp.Write([]byte(piece)))
	}
}

func TestResponseFraming(t *testing.T) {
	t.Run("content length", func(t *testing.T) {
		resp := NewResponse(config.Default())
		feed(t, resp, "HTTP/1.1 200 OK\r\nContent-Length: 13\r\n\r\nHello, ", "world!")
		require.True(t, resp.Complete())
		require.NoError(t, resp.Finalize())
		require.Equal(t, proto.HTTP11, resp.Protocol)
		require.Equal(t, status.OK, resp.Code)
		require.Equal(t, status.Status("OK"), resp.Status)
		require.Equal(t, "Hello, world!", resp.String())
	})

	t.Run("chunked", func(t *testing.T) {
		resp := NewResponse(config.Default())
		feed(t, resp,
			"HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n",
			"7\r\nMozilla\r\n",
			"9\r\nDeveloper\r\n",
			"0\r\n\r\n",
		)
		require.True(t, resp.Complete())
		require.NoError(t, resp.Finalize())
		require.Equal(t, "MozillaDeveloper", string(resp.Body()))
	})

	t.Run("until close", func(t *testing.T) {
		resp := NewResponse(config.Default())
		feed(t, resp, "HTTP/1.0 200 OK\r\n\r\n", "everything ", "until close")
		require.False(t, resp.Complete())
		require.NoError(t, resp.Finalize())
		require.Equal(t, "everything until close", resp.String())
	})

	t.Run("transfer coding other than chunked", func(t *testing.T) {
		resp := NewResponse(config.Default())
		feed(t, resp, "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked, identity\r\n\r\nraw")
		require.False(t, resp.Complete())
		require.NoError(t, resp.Finalize())
		require.Equal(t, "raw", resp.String())
	})

	for _, code := range []string{"204 No Content", "304 Not Modified"} {
		t.Run(code, func(t *testing.T) {
			resp := NewResponse(config.Default())
			feed(t, resp, "HTTP/1.1 "+code+"\r\nContent-Length: 10\r\n\r\n")
			require.True(t, resp.Complete())
			require.NoError(t, resp.Finalize())
			require.Empty(t, resp.Body())
		})
	}

	t.Run("response to HEAD", func(t *testing.T) {
		newResponse := NewResponseFactory(config.Default())
		resp := newResponse(NewRequest(method.HEAD, "/").Host("x")).(*Response)
		feed(t, resp, "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\n")
		require.True(t, resp.Complete())
		require.NoError(t, resp.Finalize())
		require.Empty(t, resp.Body())
		value, _ := resp.Field("Content-Length")
		require.Equal(t, "5", value)

		// the same head answering GET promises a body
		resp = newResponse(NewRequest(method.GET, "/").Host("x")).(*Response)
		feed(t, resp, "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\n")
		require.False(t, resp.Complete())
	})

	t.Run("interim responses are skipped", func(t *testing.T) {
		resp := NewResponse(config.Default())
		feed(t, resp,
			"HTTP/1.1 100 Continue\r\nX-Interim: 1\r\n\r\nHTTP/1.1 103 Early Hints\r\n",
			"Link: </style.css>\r\n\r\n",
			"HTTP/1.1 201 Created\r\nContent-Length: 2\r\n\r\nok",
		)
		require.True(t, resp.Complete())
		require.NoError(t, resp.Finalize())
		require.Equal(t, status.Code(201), resp.Code)
		require.False(t, resp.Headers.Has("X-Interim"))
		require.False(t, resp.Headers.Has("Link"))
		require.Equal(t, "ok", resp.String())
	})

	t.Run("byte by byte", func(t *testing.T) {
		resp := NewResponse(config.Default())
		data := "HTTP/1.1 200 OK\r\nContent-Length: 5\r\nConnection: close\r\n\r\nHello"
		for i := range len(data) {
			require.False(t, resp.Complete())
			require.NoError(t, resp.Write([]byte{data[i]}))
		}

		require.True(t, resp.Complete())
		value, found := resp.Field("connection")
		require.True(t, found)
		require.Equal(t, "close", value)
	})
}

func TestResponseErrors(t *testing.T) {
	tcs := []struct {
		Name string
		Data string
		Want error
	}{
		{"bad content length", "HTTP/1.1 200 OK\r\nContent-Length: ten\r\n\r\n", ErrBadContentLength},
		{"negative content length", "HTTP/1.1 200 OK\r\nContent-Length: -1\r\n\r\n", ErrBadContentLength},
		{"excess data", "HTTP/1.1 200 OK\r\nContent-Length: 1\r\n\r\nab", ErrExcessData},
		{"bad chunk", "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\nxyz\r\n", ErrBadChunk},
		{"garbage", "SSH-2.0 OpenSSH_9.6\r\n", ErrUnsupportedProtocol},
	}

	for _, tc := range tcs {
		t.Run(tc.Name, func(t *testing.T) {
			err := NewResponse(config.Default()).Write([]byte(tc.Data))
			require.ErrorIs(t, err, tc.Want)
		})
	}

	t.Run("too large body", func(t *testing.T) {
		cfg := config.Default()
		cfg.Body.MaxSize = 4
		err := NewResponse(cfg).Write([]byte("HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\n"))
		require.ErrorIs(t, err, ErrBodyTooLarge)
	})

	t.Run("incomplete", func(t *testing.T) {
		resp := NewResponse(config.Default())
		require.ErrorIs(t, resp.Finalize(), ErrIncompleteResponse)

		feed(t, resp, "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nHel")
		require.ErrorIs(t, resp.Finalize(), ErrIncompleteResponse)
	})
}

func gzipped(text string) []byte {
	buff := bytes.NewBuffer(nil)
	w := gzip.NewWriter(buff)
	_, _ = w.Write([]byte(text))
	_ = w.Close()

	return buff.Bytes()
}

func TestResponseDecoding(t *testing.T) {
	text := strings.Repeat("compressible ", 32)
	encoded := string(gzipped(text))
	head := "HTTP/1.1 200 OK\r\nContent-Encoding: gzip\r\nContent-Length: " +
		strconv.Itoa(len(encoded)) + "\r\n\r\n"

	t.Run("decoded", func(t *testing.T) {
		resp := NewResponse(config.Default())
		feed(t, resp, head, encoded)
		require.NoError(t, resp.Finalize())
		require.Equal(t, text, resp.String())
	})

	t.Run("decoding disabled", func(t *testing.T) {
		cfg := config.Default()
		cfg.Body.Decode = false
		resp := NewResponse(cfg)
		feed(t, resp, head, encoded)
		require.NoError(t, resp.Finalize())
		require.Equal(t, encoded, resp.String())
	})

	t.Run("unsupported", func(t *testing.T) {
		resp := NewResponse(config.Default())
		feed(t, resp, "HTTP/1.1 200 OK\r\nContent-Encoding: br\r\nContent-Length: 1\r\n\r\nx")
		require.ErrorIs(t, resp.Finalize(), ErrUnsupportedEncoding)
	})

	t.Run("json", func(t *testing.T) {
		resp := NewResponse(config.Default())
		feed(t, resp, "HTTP/1.1 200 OK\r\nContent-Length: 15\r\n\r\n{\"hello\":\"you\"}")
		require.NoError(t, resp.Finalize())

		var v struct {
			Hello string `json:"hello"`
		}
		require.NoError(t, resp.JSON(&v))
		require.Equal(t, "you", v.Hello)
	})
}
