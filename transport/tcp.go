//go:build linux || darwin || freebsd || netbsd || openbsd

package transport

import (
	"errors"
	"net/netip"
	"syscall"

	"golang.org/x/sys/unix"
)

var _ Factory = TCP{}

// TCP creates non-blocking TCP sockets operated by raw syscalls. The runtime network
// poller is not involved, so no goroutine is ever parked on them.
type TCP struct{}

func (TCP) NewSocket(addr netip.AddrPort) (Socket, error) {
	domain, wildcard := unix.AF_INET, unix.Sockaddr(&unix.SockaddrInet4{})
	if is6(addr) {
		domain, wildcard = unix.AF_INET6, &unix.SockaddrInet6{}
	}

	fd, err := newFD(domain)
	if err != nil {
		return nil, err
	}

	if err = unix.Bind(fd, wildcard); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	return &socket{fd: fd}, nil
}

type socket struct {
	fd int
}

func (s *socket) Connect(addr netip.AddrPort) error {
	switch err := unix.Connect(s.fd, sockaddr(addr)); err {
	case nil, unix.EINPROGRESS, unix.EINTR:
		// an interrupted connect keeps going asynchronously
		return nil
	default:
		return err
	}
}

func (s *socket) PollWritable() (Poll, error) {
	fds := []unix.PollFd{{Fd: int32(s.fd), Events: unix.POLLOUT}}
	n, err := unix.Poll(fds, 0)
	switch {
	case err == unix.EINTR || (err == nil && n == 0):
		return Pending, nil
	case err != nil:
		return Failed, err
	}

	soerr, err := unix.GetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return Failed, err
	}

	if soerr != 0 {
		return Failed, syscall.Errno(soerr)
	}

	if fds[0].Revents&(unix.POLLERR|unix.POLLHUP|unix.POLLNVAL) != 0 {
		return Failed, unix.ECONNREFUSED
	}

	return Ready, nil
}

func (s *socket) Send(b []byte) (int, error) {
	n, err := unix.Write(s.fd, b)
	if err != nil {
		if temporary(err) {
			return 0, ErrWouldBlock
		}

		return 0, err
	}

	if n == 0 && len(b) > 0 {
		return 0, ErrWouldBlock
	}

	return n, nil
}

func (s *socket) Recv(b []byte) (int, error) {
	n, err := unix.Read(s.fd, b)
	if err != nil {
		if temporary(err) {
			return 0, ErrWouldBlock
		}

		return 0, err
	}

	return n, nil
}

func (s *socket) Close() error {
	if s.fd < 0 {
		return nil
	}

	err := unix.Close(s.fd)
	s.fd = -1
	return err
}

func temporary(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR)
}

func is6(addr netip.AddrPort) bool {
	return addr.Addr().Is6() && !addr.Addr().Is4In6()
}

func sockaddr(addr netip.AddrPort) unix.Sockaddr {
	if is6(addr) {
		return &unix.SockaddrInet6{
			Port:   int(addr.Port()),
			Addr:   addr.Addr().As16(),
			ZoneId: zoneID(addr.Addr().Zone()),
		}
	}

	return &unix.SockaddrInet4{
		Port: int(addr.Port()),
		Addr: addr.Addr().Unmap().As4(),
	}
}
