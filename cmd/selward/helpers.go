package main

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/viper"

	"github.com/selward/selward/internal/crypto"
	"github.com/selward/selward/internal/ipc"
	"github.com/selward/selward/internal/wire"
)

// dialDaemon connects to a running selward daemon. The local IPC endpoint is
// tried first unless --server was given explicitly; the IPC channel is always
// unencrypted because it never leaves the machine. TCP uses the shared token
// when one is configured.
func dialDaemon(v *viper.Viper, serverChanged bool) (*wire.Conn, string, error) {
	if !serverChanged && ipc.IsRunning() {
		conn, err := ipc.Dial()
		if err == nil {
			return wire.New(conn, nil), fmt.Sprintf("ipc (%s)", ipc.SocketPath()), nil
		}
	}

	addr := v.GetString("server")
	if addr == "" {
		return nil, "", fmt.Errorf("no daemon on %s and no --server given", ipc.SocketPath())
	}

	var key *[32]byte
	if token := v.GetString("token"); token != "" {
		var err error
		key, err = crypto.DeriveKey(token)
		if err != nil {
			return nil, "", fmt.Errorf("key derivation: %w", err)
		}
	}

	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, "", fmt.Errorf("dial %s: %w", addr, err)
	}
	return wire.New(conn, key), fmt.Sprintf("tcp (%s)", addr), nil
}

func fmtAge(t time.Time) string {
	age := time.Since(t).Round(time.Second)
	if age < time.Minute {
		return fmt.Sprintf("%ds ago", int(age.Seconds()))
	}
	if age < time.Hour {
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	}
	return t.Format("15:04:05")
}
