package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/selward/selward/internal/message"
)

func newStatusCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		Long: `Displays the state of a running selward daemon: the platform backend in
use, uptime, capture count, and connected subscribers.

If a local daemon is running, the request is sent via the IPC socket. Pass
--server to target a daemon directly over TCP.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(cmd *cobra.Command, _ []string) error { return runStatus(cmd, v) },
	}

	f := cmd.Flags()
	f.String("server", "", "daemon TCP address (used when no local daemon is running)")
	f.String("token", "", "shared secret for the TCP protocol")
	f.Bool("json", false, "output raw JSON")
	addConfigFlag(cmd)

	return cmd
}

func runStatus(cmd *cobra.Command, v *viper.Viper) error {
	wc, transport, err := dialDaemon(v, cmd.Flags().Changed("server"))
	if err != nil {
		return err
	}
	defer wc.Close()

	if err := wc.WriteMsg(&message.Message{Type: message.TypeStatus}); err != nil {
		return fmt.Errorf("request: %w", err)
	}
	wc.SetReadDeadline(10 * time.Second)
	msg, err := wc.ReadMsg()
	if err != nil {
		return fmt.Errorf("response: %w", err)
	}
	if msg.Type == message.TypeError {
		return fmt.Errorf("daemon: %s", msg.Error)
	}
	if msg.Type != message.TypeStatusResponse || msg.Status == nil {
		return fmt.Errorf("unexpected response type %q", msg.Type)
	}

	if v.GetBool("json") {
		enc, _ := json.MarshalIndent(msg.Status, "", "  ")
		fmt.Println(string(enc))
		return nil
	}

	printStatus(msg.Status, transport)
	return nil
}

func printStatus(st *message.Status, transport string) {
	w := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Version:\t%s\n", st.Version)
	fmt.Fprintf(w, "Backend:\t%s\n", st.Backend)
	fmt.Fprintf(w, "Transport:\t%s\n", transport)
	if !st.StartedAt.IsZero() {
		fmt.Fprintf(w, "Started:\t%s (%s)\n", st.StartedAt.UTC().Format(time.RFC3339), fmtAge(st.StartedAt))
	}
	fmt.Fprintf(w, "Captures:\t%d\n", st.Captures)
	fmt.Fprintf(w, "Subscribers:\t%d\n", st.Subscribers)
	if st.LastCapture.IsZero() {
		fmt.Fprintf(w, "Last capture:\t-\n")
	} else {
		fmt.Fprintf(w, "Last capture:\t%s\n", fmtAge(st.LastCapture))
	}
	_ = w.Flush()
}
