package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/selward/selward/internal/message"
	"github.com/selward/selward/internal/wire"
)

func newGetCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print the current selection",
		Long: `Prints the most recent text selection captured by a running daemon.

If a local daemon is running, the request is sent via the IPC socket. Pass
--server to target a daemon directly over TCP.

With --follow the command subscribes instead and prints every new selection
as it is captured, separated by the --separator string.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runGet(cmd, v) },
	}

	f := cmd.Flags()
	f.String("server", "", "daemon TCP address (used when no local daemon is running)")
	f.String("token", "", "shared secret for the TCP protocol")
	f.BoolP("follow", "f", false, "stream selections as they are captured")
	f.String("separator", "\n", "separator printed between selections in follow mode")
	addConfigFlag(cmd)

	return cmd
}

func runGet(cmd *cobra.Command, v *viper.Viper) error {
	wc, _, err := dialDaemon(v, cmd.Flags().Changed("server"))
	if err != nil {
		return err
	}
	defer wc.Close()

	if v.GetBool("follow") {
		return followSelections(wc, v.GetString("separator"))
	}

	if err := wc.WriteMsg(&message.Message{Type: message.TypeGet}); err != nil {
		return fmt.Errorf("request: %w", err)
	}
	wc.SetReadDeadline(10 * time.Second)
	msg, err := wc.ReadMsg()
	if err != nil {
		return fmt.Errorf("response: %w", err)
	}
	switch msg.Type {
	case message.TypeSelection:
		if !msg.Present {
			fmt.Fprintln(os.Stderr, "no selection captured yet")
			os.Exit(1)
		}
		fmt.Println(msg.Text)
		return nil
	case message.TypeError:
		return fmt.Errorf("daemon: %s", msg.Error)
	default:
		return fmt.Errorf("unexpected response type %q", msg.Type)
	}
}

func followSelections(wc *wire.Conn, sep string) error {
	if err := wc.WriteMsg(&message.Message{Type: message.TypeWatch}); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	first := true
	for {
		msg, err := wc.ReadMsg()
		if err != nil {
			return fmt.Errorf("stream: %w", err)
		}
		if msg.Type != message.TypeSelection {
			continue
		}
		if !first {
			fmt.Print(sep)
		}
		first = false
		fmt.Print(msg.Text)
		if msg.Text == "" || msg.Text[len(msg.Text)-1] != '\n' {
			fmt.Println()
		}
	}
}
