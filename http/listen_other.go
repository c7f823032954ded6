//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package http

import "syscall"

const reusePortSupported = false

func setReusePort(network, address string, rawConn syscall.RawConn) error {
	return ErrReusePortUnsupported
}
