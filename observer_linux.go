//go:build linux

package selward

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xfixes"
	"github.com/jezek/xgb/xproto"
)

// linuxObserver captures selections through the X server. Highlighted text
// is the PRIMARY selection on X11, so observing selection changes means
// subscribing to XFIXES selection-owner notifications for PRIMARY. On each
// ownership change a dedicated dispatch goroutine asks the new owner to
// convert the selection into a property on our hidden window
// (ConvertSelection → SelectionNotify → GetProperty) and hands the text to
// the capture state.
//
// The X connection is owned by the dispatch goroutine after start returns;
// stop closes it, which unblocks WaitForEvent and ends the loop.
type linuxObserver struct {
	mu   sync.Mutex
	conn *xgb.Conn
	st   *captureState

	win        xproto.Window
	utf8, prop xproto.Atom
	incr       xproto.Atom
}

func newObserver() observer { return &linuxObserver{} }

func (o *linuxObserver) name() string { return "X11 (XFIXES selection events)" }

func (o *linuxObserver) start(st *captureState) error {
	conn, err := xgb.NewConn()
	if err != nil {
		return initErr("start", fmt.Errorf("x11 connect: %w", err))
	}
	if err := o.setup(conn, st); err != nil {
		conn.Close()
		return initErr("start", err)
	}

	o.mu.Lock()
	o.conn = conn
	o.mu.Unlock()
	go o.dispatch(conn)
	return nil
}

func (o *linuxObserver) setup(conn *xgb.Conn, st *captureState) error {
	if err := xfixes.Init(conn); err != nil {
		return fmt.Errorf("xfixes extension: %w", err)
	}
	// Version negotiation is mandatory before any other XFIXES request.
	if _, err := xfixes.QueryVersion(conn, 5, 0).Reply(); err != nil {
		return fmt.Errorf("xfixes version: %w", err)
	}

	screen := xproto.Setup(conn).DefaultScreen(conn)
	win, err := xproto.NewWindowId(conn)
	if err != nil {
		return fmt.Errorf("window id: %w", err)
	}
	err = xproto.CreateWindowChecked(conn, 0, win, screen.Root,
		0, 0, 1, 1, 0, xproto.WindowClassInputOnly, 0, 0, nil).Check()
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}

	utf8, err := internAtom(conn, "UTF8_STRING")
	if err != nil {
		return err
	}
	prop, err := internAtom(conn, "SELWARD_SELECTION")
	if err != nil {
		return err
	}
	incr, err := internAtom(conn, "INCR")
	if err != nil {
		return err
	}

	mask := uint32(xfixes.SelectionEventMaskSetSelectionOwner |
		xfixes.SelectionEventMaskSelectionWindowDestroy |
		xfixes.SelectionEventMaskSelectionClientClose)
	err = xfixes.SelectSelectionInputChecked(conn, win, xproto.AtomPrimary, mask).Check()
	if err != nil {
		return fmt.Errorf("selection input: %w", err)
	}

	o.st = st
	o.win = win
	o.utf8 = utf8
	o.prop = prop
	o.incr = incr
	return nil
}

func (o *linuxObserver) stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.conn != nil {
		o.conn.Close()
		o.conn = nil
	}
	return nil
}

// dispatch drains the connection's event stream. Registering interest alone
// does nothing; without this loop the server's notifications are never read.
func (o *linuxObserver) dispatch(conn *xgb.Conn) {
	for {
		ev, xerr := conn.WaitForEvent()
		if ev == nil && xerr == nil {
			slog.Debug("x11 dispatch loop exited")
			return
		}
		if xerr != nil {
			// Per-request errors (a vanished owner, a refused conversion)
			// are capture failures, not listener failures.
			slog.Debug("x11 error event", "err", xerr)
			continue
		}

		switch e := ev.(type) {
		case xfixes.SelectionNotifyEvent:
			if e.Subtype != xfixes.SelectionEventSetSelectionOwner {
				continue
			}
			// A new owner holds the selection; ask it to publish the text
			// onto our window.
			xproto.ConvertSelection(conn, o.win, xproto.AtomPrimary,
				o.utf8, o.prop, e.Timestamp)

		case xproto.SelectionNotifyEvent:
			if e.Property == xproto.AtomNone {
				continue // owner refused the conversion
			}
			reply, err := xproto.GetProperty(conn, true, o.win, o.prop,
				xproto.GetPropertyTypeAny, 0, 1<<20).Reply()
			if err != nil || reply == nil {
				continue
			}
			if reply.Type == o.incr {
				// Incremental transfer of an oversized selection; skipped.
				slog.Debug("skipping INCR selection transfer")
				continue
			}
			if len(reply.Value) > 0 {
				o.st.set(string(reply.Value))
			}
		}
	}
}

func internAtom(conn *xgb.Conn, name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("intern %s: %w", name, err)
	}
	return reply.Atom, nil
}
