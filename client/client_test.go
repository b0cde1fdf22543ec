package client

import (
	"testing"

	"github.com/indigo-web/nbclient/http/method"
	"github.com/stretchr/testify/require"
)

func TestFromURL(t *testing.T) {
	t.Run("full", func(t *testing.T) {
		req, target, err := FromURL(method.GET, "http://example.com:8080/a%20b?z=1&a=2&a=3")
		require.NoError(t, err)
		require.Equal(t, Target{Host: "example.com", Port: 8080}, target)
		require.Equal(t, "example.com:8080", target.String())
		require.Equal(t, "/a%20b", req.Path())
		require.Equal(t, "example.com:8080", req.Headers().Value("Host"))

		require.NoError(t, req.WithConfig(bareConfig()).Finalize())
		require.Equal(t,
			"GET /a%20b?a=2&a=3&z=1 HTTP/1.1\r\nHost: example.com:8080\r\n\r\n",
			drain(t, req, 1024),
		)
	})

	t.Run("defaults", func(t *testing.T) {
		req, target, err := FromURL(method.HEAD, "http://[::1]")
		require.NoError(t, err)
		require.Equal(t, Target{Host: "::1", Port: 80}, target)
		require.Equal(t, "[::1]:80", target.String())
		require.Equal(t, "/", req.Path())
		require.Equal(t, method.HEAD, req.Method())
	})

	tcs := []struct {
		Name string
		URL  string
	}{
		{"https", "https://example.com/"},
		{"relative", "/index.html"},
		{"no host", "http:///index.html"},
		{"bad port", "http://example.com:99999/"},
		{"unparsable", "http://exa mple.com/"},
	}

	for _, tc := range tcs {
		t.Run(tc.Name, func(t *testing.T) {
			_, _, err := FromURL(method.GET, tc.URL)
			require.Error(t, err)
		})
	}
}
