package hub

import (
	"testing"
	"time"
)

type testPeer struct {
	id     string
	events []Event
}

func (p *testPeer) ID() string    { return p.id }
func (p *testPeer) Send(ev Event) { p.events = append(p.events, ev) }

func TestLatestEmpty(t *testing.T) {
	h := New()
	if _, ok := h.Latest(); ok {
		t.Fatal("empty hub must report no latest selection")
	}
	if h.Subscribers() != 0 {
		t.Fatal("empty hub has subscribers")
	}
}

func TestPublishFansOut(t *testing.T) {
	h := New()
	a := &testPeer{id: "a"}
	b := &testPeer{id: "b"}
	h.Register(a)
	h.Register(b)

	ev := Event{Text: "hello world", Source: "fake", Seq: 1, CapturedAt: time.Now()}
	h.Publish(ev)

	for _, p := range []*testPeer{a, b} {
		if len(p.events) != 1 || p.events[0].Text != "hello world" {
			t.Fatalf("peer %s events = %+v", p.id, p.events)
		}
	}

	got, ok := h.Latest()
	if !ok || got.Text != "hello world" {
		t.Fatalf("Latest() = %+v, %v", got, ok)
	}
}

func TestLateSubscriberGetsLatest(t *testing.T) {
	h := New()
	h.Publish(Event{Text: "earlier", Seq: 1})

	late := &testPeer{id: "late"}
	h.Register(late)
	if len(late.events) != 1 || late.events[0].Text != "earlier" {
		t.Fatalf("late subscriber events = %+v", late.events)
	}
}

func TestUnregisterStopsDelivery(t *testing.T) {
	h := New()
	p := &testPeer{id: "p"}
	h.Register(p)
	h.Unregister(p)

	h.Publish(Event{Text: "after", Seq: 1})
	if len(p.events) != 0 {
		t.Fatalf("unregistered peer received %+v", p.events)
	}
	if h.Subscribers() != 0 {
		t.Fatalf("Subscribers() = %d", h.Subscribers())
	}
}
