//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package http

import (
	"syscall"

	"golang.org/x/sys/unix"
)

const reusePortSupported = true

func setReusePort(network, address string, rawConn syscall.RawConn) error {
	var sockErr error
	err := rawConn.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}
