package client

import (
	"fmt"
	"maps"
	"net"
	"net/url"
	"slices"
	"strconv"

	"github.com/indigo-web/nbclient/http/method"
)

// Target is the peer a request built from a URL must be sent to. The host is not
// resolved yet.
type Target struct {
	Host string
	Port uint16
}

// FromURL builds a request from an absolute http URL. The Host header, the path and
// the query are taken from the URL.
func FromURL(m method.Method, rawURL string) (*Request, Target, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, Target{}, fmt.Errorf("parse url: %w", err)
	}

	if u.Scheme != "http" {
		return nil, Target{}, ErrUnsupportedScheme
	}

	if u.Hostname() == "" {
		return nil, Target{}, fmt.Errorf("parse url: no host in %q", rawURL)
	}

	target := Target{Host: u.Hostname(), Port: 80}
	if port := u.Port(); port != "" {
		p, err := strconv.ParseUint(port, 10, 16)
		if err != nil {
			return nil, Target{}, fmt.Errorf("parse url: bad port %q", port)
		}

		target.Port = uint16(p)
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}

	req := NewRequest(m, path).Host(u.Host)
	query := u.Query()
	for _, key := range slices.Sorted(maps.Keys(query)) {
		req.Query(key, query[key]...)
	}

	return req, target, nil
}

func (t Target) String() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(int(t.Port)))
}
