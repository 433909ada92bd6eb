//go:build windows

package ipc

import (
	"net"

	winio "github.com/Microsoft/go-winio"
)

const pipeName = `\\.\pipe\selward`

func socketPath() string { return pipeName }

func listenIPC(path string) (net.Listener, error) {
	return winio.ListenPipe(path, nil)
}

func dialIPC(path string) (net.Conn, error) {
	return winio.DialPipe(path, nil)
}
