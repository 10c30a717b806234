package game

import (
	"context"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/go-worldsync/internal/dispatch"
	"github.com/pixil98/go-worldsync/internal/protocol"
)

type fakeSink struct {
	batches [][]dispatch.Directive
}

func (s *fakeSink) Dispatch(_ context.Context, dirs []dispatch.Directive) error {
	s.batches = append(s.batches, dirs)
	return nil
}

func TestTicker_DeliversTickOutput(t *testing.T) {
	f := newFixture(t, WithSessionTimeout(time.Nanosecond))
	f.enterWorld(t, "c1", "hero", "char-1")

	sink := &fakeSink{}
	ticker := NewTicker(f.router, sink)

	// With a nanosecond timeout the session is already stale, so the tick
	// must produce a departure and hand it to the sink.
	err := ticker.Tick(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "batch count", len(sink.batches), 1)

	var sawLeft bool
	for _, d := range sink.batches[0] {
		if d.Kind == protocol.TypePlayerLeft {
			sawLeft = true
		}
	}
	if !sawLeft {
		t.Error("expected a player_left directive in the tick output")
	}
}
