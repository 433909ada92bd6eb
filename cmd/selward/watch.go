package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/soheilhy/cmux"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/selward/selward"
	"github.com/selward/selward/internal/crypto"
	"github.com/selward/selward/internal/hub"
	"github.com/selward/selward/internal/ipc"
	"github.com/selward/selward/internal/message"
	"github.com/selward/selward/internal/wire"
)

func newWatchCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the selection-monitor daemon",
		Long: `Starts the platform selection observer and serves its captures:

  - over the local IPC socket for "selward get" and "selward status";
  - optionally over TCP (--addr): one port carries both plain HTTP
    (GET /v1/selection, /v1/status, /healthz) and the raw newline-JSON
    subscribe protocol, split by protocol sniffing.

On macOS the process needs accessibility trust; grant it in
System Settings → Privacy & Security → Accessibility, then start again.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runWatch(v) },
	}

	f := cmd.Flags()
	f.String("addr", "", "TCP listen address (empty = local IPC only)")
	f.String("token", "", "shared secret for the raw TCP protocol (empty = no encryption)")
	f.Bool("print", false, "echo each captured selection to stdout")
	addLoggingFlags(cmd)
	addConfigFlag(cmd)

	return cmd
}

// daemon bundles what the serving paths need from the running listener.
type daemon struct {
	listener selward.Listener
	hub      *hub.Hub
	started  time.Time
	relayed  atomic.Uint64
}

func (d *daemon) status() *message.Status {
	st := &message.Status{
		Version:     Version,
		Backend:     d.listener.Backend(),
		StartedAt:   d.started,
		Captures:    d.relayed.Load(),
		Subscribers: d.hub.Subscribers(),
	}
	if latest, ok := d.hub.Latest(); ok {
		st.LastCapture = latest.CapturedAt
	}
	return st
}

func (d *daemon) selectionMsg() *message.Message {
	if latest, ok := d.hub.Latest(); ok {
		return message.NewSelection(latest.Text, latest.Source, latest.Seq, latest.CapturedAt)
	}
	return message.NewEmptySelection(d.listener.Backend())
}

func runWatch(v *viper.Viper) error {
	setupLogging(v)

	addr := v.GetString("addr")
	token := v.GetString("token")
	echo := v.GetBool("print")

	var key *[32]byte
	if token != "" {
		var err error
		key, err = crypto.DeriveKey(token)
		if err != nil {
			return fmt.Errorf("key derivation: %w", err)
		}
	}

	listener := selward.NewListener()
	if err := listener.Start(); err != nil {
		if selward.IsInitialization(err) {
			slog.Error("selection observer refused to start — missing permission?", "err", err)
		}
		return fmt.Errorf("start listener: %w", err)
	}
	defer func() { _ = listener.Stop() }()

	d := &daemon{listener: listener, hub: hub.New(), started: time.Now()}

	slog.Info("selward daemon starting",
		"version", Version,
		"backend", listener.Backend(),
		"addr", addr,
		"encrypted", key != nil,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go d.pump(ctx, echo)

	// IPC socket for get/status CLI tools.
	ipcLn, err := ipc.Listen()
	if err != nil {
		slog.Warn("IPC socket unavailable", "err", err)
	} else {
		slog.Info("IPC socket listening", "path", ipc.SocketPath())
		defer ipcLn.Close()
		go d.serveConns(ipcLn, nil)
	}

	if addr != "" {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		defer ln.Close()
		slog.Info("listening", "addr", ln.Addr())

		// One port, two protocols: HTTP/1 requests go to the status
		// endpoints, everything else is the raw newline-JSON protocol.
		m := cmux.New(ln)
		httpLn := m.Match(cmux.HTTP1Fast())
		rawLn := m.Match(cmux.Any())
		go d.serveHTTP(httpLn)
		go d.serveConns(rawLn, key)
		go func() {
			if err := m.Serve(); err != nil {
				slog.Debug("cmux serve ended", "err", err)
			}
		}()
	}

	<-ctx.Done()
	slog.Info("shutting down")
	return nil
}

// pump forwards captures from the listener into the hub.
func (d *daemon) pump(ctx context.Context, echo bool) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-d.listener.Updates():
		}
		text, ok := d.listener.Selection()
		if !ok {
			continue
		}
		ev := hub.Event{
			Text:       text,
			Source:     d.listener.Backend(),
			Seq:        d.relayed.Add(1),
			CapturedAt: time.Now(),
		}
		d.hub.Publish(ev)
		if echo {
			fmt.Println(text)
		}
	}
}

// serveConns accepts raw-protocol connections (IPC or TCP) and handles each
// on its own goroutine.
func (d *daemon) serveConns(ln net.Listener, key *[32]byte) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		go d.handleConn(conn, key)
	}
}

func (d *daemon) handleConn(conn net.Conn, key *[32]byte) {
	defer conn.Close()
	wc := wire.New(conn, key)

	msg, err := wc.ReadMsg()
	if err != nil {
		return
	}

	switch msg.Type {
	case message.TypeGet:
		_ = wc.WriteMsg(d.selectionMsg())

	case message.TypeStatus:
		_ = wc.WriteMsg(&message.Message{
			Type:   message.TypeStatusResponse,
			Status: d.status(),
		})

	case message.TypePing:
		_ = wc.WriteMsg(&message.Message{Type: message.TypePong})

	case message.TypeWatch:
		d.streamTo(wc)

	default:
		_ = wc.WriteMsg(message.NewError(fmt.Errorf("unsupported message type %q", msg.Type)))
	}
}

// watchPeer adapts a wire connection into a hub subscriber. Send never
// blocks; a subscriber that cannot keep up loses intermediate updates and
// still sees the most recent one eventually.
type watchPeer struct {
	id string
	ch chan hub.Event
}

func (p *watchPeer) ID() string { return p.id }

func (p *watchPeer) Send(ev hub.Event) {
	select {
	case p.ch <- ev:
	default:
	}
}

func (d *daemon) streamTo(wc *wire.Conn) {
	p := &watchPeer{
		id: fmt.Sprintf("watch:%s", wc.RemoteAddr()),
		ch: make(chan hub.Event, 16),
	}
	d.hub.Register(p)
	defer d.hub.Unregister(p)

	// Surface client disconnects even while no events are flowing.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, err := wc.ReadMsg(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case ev := <-p.ch:
			msg := message.NewSelection(ev.Text, ev.Source, ev.Seq, ev.CapturedAt)
			if err := wc.WriteMsg(msg); err != nil {
				return
			}
		}
	}
}
