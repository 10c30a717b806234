package dispatch

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/go-worldsync/internal/session"
)

type sentPacket struct {
	data []byte
	addr *net.UDPAddr
}

type fakeWriter struct {
	sent []sentPacket
}

func (w *fakeWriter) WriteToUDP(b []byte, addr *net.UDPAddr) (int, error) {
	data := make([]byte, len(b))
	copy(data, b)
	w.sent = append(w.sent, sentPacket{data: data, addr: addr})
	return len(b), nil
}

type fakePublisher struct {
	subjects []string
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	p.subjects = append(p.subjects, subject)
	return nil
}

func testAddr(port int) *net.UDPAddr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port}
}

type testMsg struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func TestDispatcher_ToClient(t *testing.T) {
	reg := session.NewRegistry()
	reg.Touch("c1", testAddr(4000), time.Now())

	w := &fakeWriter{}
	d := NewDispatcher(reg)
	d.Bind(w)

	err := d.Dispatch(context.Background(), []Directive{
		ToClient("c1", "greeting", &testMsg{Type: "greeting", Text: "hi"}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "sent count", len(w.sent), 1)
	testutil.AssertEqual(t, "dest port", w.sent[0].addr.Port, 4000)

	var msg testMsg
	if err := json.Unmarshal(w.sent[0].data, &msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "text", msg.Text, "hi")
}

func TestDispatcher_UnknownSessionDropped(t *testing.T) {
	reg := session.NewRegistry()
	w := &fakeWriter{}
	d := NewDispatcher(reg)
	d.Bind(w)

	err := d.Dispatch(context.Background(), []Directive{
		ToClient("ghost", "greeting", &testMsg{Type: "greeting"}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "sent count", len(w.sent), 0)
}

func TestDispatcher_BroadcastExcludesSender(t *testing.T) {
	reg := session.NewRegistry()
	now := time.Now()
	for i, clientID := range []string{"c1", "c2", "c3"} {
		reg.Touch(clientID, testAddr(4000+i), now)
		err := reg.Activate(clientID, &session.ActiveCharacter{ID: "char-" + clientID})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	w := &fakeWriter{}
	d := NewDispatcher(reg)
	d.Bind(w)

	err := d.Dispatch(context.Background(), []Directive{
		Broadcast("shout", &testMsg{Type: "shout"}, "c2"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "sent count", len(w.sent), 2)
	for _, p := range w.sent {
		if p.addr.Port == 4001 {
			t.Error("excluded client received the broadcast")
		}
	}
}

func TestDispatcher_BroadcastSkipsInactiveSessions(t *testing.T) {
	reg := session.NewRegistry()
	now := time.Now()
	reg.Touch("lurker", testAddr(4000), now)
	reg.Touch("player", testAddr(4001), now)
	if err := reg.Activate("player", &session.ActiveCharacter{ID: "char-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	w := &fakeWriter{}
	d := NewDispatcher(reg)
	d.Bind(w)

	err := d.Dispatch(context.Background(), []Directive{
		Broadcast("shout", &testMsg{Type: "shout"}, ""),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "sent count", len(w.sent), 1)
	testutil.AssertEqual(t, "dest port", w.sent[0].addr.Port, 4001)
}

func TestDispatcher_UnboundNoOp(t *testing.T) {
	reg := session.NewRegistry()
	reg.Touch("c1", testAddr(4000), time.Now())

	d := NewDispatcher(reg)

	err := d.Dispatch(context.Background(), []Directive{
		ToClient("c1", "greeting", &testMsg{Type: "greeting"}),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDispatcher_MirrorsBroadcasts(t *testing.T) {
	reg := session.NewRegistry()
	reg.Touch("c1", testAddr(4000), time.Now())

	pub := &fakePublisher{}
	w := &fakeWriter{}
	d := NewDispatcher(reg, WithEvents(pub))
	d.Bind(w)

	err := d.Dispatch(context.Background(), []Directive{
		ToClient("c1", "greeting", &testMsg{Type: "greeting"}),
		Broadcast("chat_message", &testMsg{Type: "chat_message"}, ""),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Only broadcasts are mirrored, not targeted replies.
	testutil.AssertEqual(t, "published count", len(pub.subjects), 1)
	testutil.AssertEqual(t, "subject", pub.subjects[0], "world.events.chat_message")
}
