//go:build linux || freebsd || netbsd || openbsd

package transport

import "golang.org/x/sys/unix"

// newFD creates a TCP socket that is non-blocking and closed on exec from the start.
func newFD(domain int) (int, error) {
	return unix.Socket(domain, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
}
