package proto

import (
	"bytes"

	"github.com/indigo-web/utils/uf"
)

// Proto is a protocol version. Every known version is a single bit, so sets of them
// (like HTTP1) can be matched against with a bitwise and.
type Proto uint8

const (
	HTTP10 Proto = 1 << iota
	HTTP11
	HTTP2

	Unknown Proto = 0
	HTTP1         = HTTP10 | HTTP11
)

// String returns the version token as it appears on the wire, or an empty string for
// unknown versions.
func (p Proto) String() string {
	switch p {
	case HTTP10:
		return "HTTP/1.0"
	case HTTP11:
		return "HTTP/1.1"
	case HTTP2:
		return "HTTP/2"
	default:
		return ""
	}
}

// IsHTTP1 reports whether p is exactly one of the HTTP/1.x versions.
func (p Proto) IsHTTP1() bool {
	return p == HTTP10 || p == HTTP11
}

var scheme = []byte("HTTP/")

// FromBytes recognizes a version token. HTTP/2 is recognized too, though only to tell
// it apart from garbage.
func FromBytes(token []byte) Proto {
	version, found := bytes.CutPrefix(token, scheme)
	if !found {
		return Unknown
	}

	switch uf.B2S(version) {
	case "1.1":
		return HTTP11
	case "1.0":
		return HTTP10
	case "2", "2.0":
		return HTTP2
	default:
		return Unknown
	}
}
