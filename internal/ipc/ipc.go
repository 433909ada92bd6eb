// Package ipc provides the local channel used by CLI tools (get/status) to
// talk to a running selward daemon: a Unix domain socket on Linux and macOS,
// a named pipe on Windows. The protocol over it is the same newline-JSON
// wire format the TCP surface speaks, always unencrypted — the channel never
// leaves the machine.
package ipc

import (
	"net"
	"os"
)

// SocketPath returns the platform-appropriate path for the IPC endpoint.
// Override with $SELWARD_SOCKET.
func SocketPath() string {
	if s := os.Getenv("SELWARD_SOCKET"); s != "" {
		return s
	}
	return socketPath()
}

// IsRunning reports whether a selward daemon appears to be listening on the
// IPC endpoint. It does a cheap dial-and-close; no data is exchanged.
func IsRunning() bool {
	c, err := dialIPC(SocketPath())
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

// Listen creates a net.Listener on the IPC endpoint.
func Listen() (net.Listener, error) {
	return listenIPC(SocketPath())
}

// Dial connects to the IPC endpoint.
func Dial() (net.Conn, error) {
	return dialIPC(SocketPath())
}
