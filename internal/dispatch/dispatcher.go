package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/pixil98/go-worldsync/internal/protocol"
	"github.com/pixil98/go-worldsync/internal/session"
)

// PacketWriter is the slice of *net.UDPConn the dispatcher needs.
type PacketWriter interface {
	WriteToUDP(b []byte, addr *net.UDPAddr) (int, error)
}

// EventPublisher mirrors broadcast traffic onto messaging subjects so
// out-of-process observers can watch the world without joining it.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

// Dispatcher executes directives over a UDP socket. The socket is bound
// late, once the listener is up; directives dispatched before then are
// dropped, which is harmless since no session can exist yet either.
type Dispatcher struct {
	reg    *session.Registry
	events EventPublisher

	mu     sync.RWMutex
	writer PacketWriter
}

type DispatcherOpt func(*Dispatcher)

// WithEvents mirrors every broadcast payload to the publisher under
// world.events.<kind>.
func WithEvents(pub EventPublisher) DispatcherOpt {
	return func(d *Dispatcher) {
		d.events = pub
	}
}

func NewDispatcher(reg *session.Registry, opts ...DispatcherOpt) *Dispatcher {
	d := &Dispatcher{reg: reg}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Bind attaches the socket. Called by the listener once it is listening.
func (d *Dispatcher) Bind(w PacketWriter) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.writer = w
}

// Dispatch sends each directive. Send failures never fail the batch: a
// targeted send to an expired session is dropped silently, and socket
// errors are logged and skipped, so one bad peer can't wedge the world.
func (d *Dispatcher) Dispatch(ctx context.Context, dirs []Directive) error {
	if len(dirs) == 0 {
		return nil
	}

	d.mu.RLock()
	writer := d.writer
	d.mu.RUnlock()
	if writer == nil {
		return nil
	}

	for _, dir := range dirs {
		data, err := protocol.Encode(dir.Data)
		if err != nil {
			return fmt.Errorf("encoding %s directive: %w", dir.Kind, err)
		}
		if len(data) > protocol.MaxDatagramSize {
			slog.WarnContext(ctx, "oversized datagram", "kind", dir.Kind, "bytes", len(data))
		}

		switch dir.Target {
		case TargetClient:
			addr, ok := d.reg.Addr(dir.ClientID)
			if !ok {
				// Session expired between arrival and reply. Best effort.
				continue
			}
			if _, err := writer.WriteToUDP(data, addr); err != nil {
				slog.WarnContext(ctx, "udp send failed", "client", dir.ClientID, "error", err)
			}

		case TargetBroadcast:
			for _, t := range d.reg.BroadcastTargets(dir.Exclude) {
				if _, err := writer.WriteToUDP(data, t.Addr); err != nil {
					slog.WarnContext(ctx, "udp send failed", "client", t.ClientID, "error", err)
				}
			}
			d.mirror(ctx, dir.Kind, data)
		}
	}

	return nil
}

func (d *Dispatcher) mirror(ctx context.Context, kind string, data []byte) {
	if d.events == nil {
		return
	}
	if err := d.events.Publish("world.events."+kind, data); err != nil {
		slog.WarnContext(ctx, "event mirror publish failed", "kind", kind, "error", err)
	}
}
