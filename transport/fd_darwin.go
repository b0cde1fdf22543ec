//go:build darwin

package transport

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// newFD creates a non-blocking TCP socket closed on exec. Darwin has no socket type
// flags, so the fork lock keeps children from inheriting the descriptor in between,
// the same way the net package does.
func newFD(domain int) (int, error) {
	syscall.ForkLock.RLock()
	fd, err := unix.Socket(domain, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err == nil {
		unix.CloseOnExec(fd)
	}
	syscall.ForkLock.RUnlock()

	if err != nil {
		return -1, err
	}

	if err = unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return -1, err
	}

	return fd, nil
}
