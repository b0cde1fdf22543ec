package proto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromBytes(t *testing.T) {
	tcs := []struct {
		raw  string
		want Proto
	}{
		{"HTTP/1.0", HTTP10},
		{"HTTP/1.1", HTTP11},
		{"HTTP/2.0", HTTP2},
		{"HTTP/2", HTTP2},
		{"HTTP/1.2", Unknown},
		{"HTTPS/1.1", Unknown},
		{"HTTP/x.1", Unknown},
		{"HTTP/1.1 ", Unknown},
		{"", Unknown},
	}

	for _, tc := range tcs {
		t.Run(tc.raw, func(t *testing.T) {
			require.Equal(t, tc.want, FromBytes([]byte(tc.raw)))
		})
	}
}

func TestString(t *testing.T) {
	require.Equal(t, "HTTP/1.1", HTTP11.String())
	require.Equal(t, "HTTP/1.0", HTTP10.String())
	require.Equal(t, "HTTP/2", HTTP2.String())
	require.Empty(t, Unknown.String())
	require.Empty(t, HTTP1.String())
}

func TestIsHTTP1(t *testing.T) {
	require.True(t, HTTP10.IsHTTP1())
	require.True(t, HTTP11.IsHTTP1())
	require.False(t, HTTP2.IsHTTP1())
	require.False(t, Unknown.IsHTTP1())
	require.False(t, HTTP1.IsHTTP1())
}
