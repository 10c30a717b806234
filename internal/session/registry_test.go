package session

import (
	"net"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func testAddr(port int) *net.UDPAddr {
	return &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: port}
}

func TestRegistry_Touch(t *testing.T) {
	r := NewRegistry()
	now := time.Now()

	s := r.Touch("c1", testAddr(4000), now)
	testutil.AssertEqual(t, "client id", s.ClientID, "c1")
	testutil.AssertEqual(t, "last seen", s.LastSeen, now)

	// A later datagram from a different address rebinds the session.
	later := now.Add(time.Second)
	s2 := r.Touch("c1", testAddr(4001), later)
	if s2 != s {
		t.Fatal("expected the same session row")
	}
	testutil.AssertEqual(t, "port", s.Addr.Port, 4001)
	testutil.AssertEqual(t, "last seen updated", s.LastSeen, later)

	addr, ok := r.Addr("c1")
	testutil.AssertEqual(t, "addr found", ok, true)
	testutil.AssertEqual(t, "addr port", addr.Port, 4001)
}

func TestRegistry_AuthenticateCounts(t *testing.T) {
	r := NewRegistry()
	now := time.Now()
	r.Touch("c1", testAddr(4000), now)

	r.Authenticate("c1", "p1", "hero")
	testutil.AssertEqual(t, "online", r.OnlineCount(), 1)

	// Re-auth on the same session must not double count.
	r.Authenticate("c1", "p1", "hero")
	testutil.AssertEqual(t, "online after re-auth", r.OnlineCount(), 1)

	r.ClearPlayer("c1")
	testutil.AssertEqual(t, "online after clear", r.OnlineCount(), 0)

	s, _ := r.Get("c1")
	testutil.AssertEqual(t, "player cleared", s.PlayerID, "")
}

func TestRegistry_ActivateBijection(t *testing.T) {
	r := NewRegistry()
	now := time.Now()
	r.Touch("c1", testAddr(4000), now)
	r.Touch("c2", testAddr(4001), now)

	err := r.Activate("c1", &ActiveCharacter{ID: "char-1", Name: "Hero"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Same character from a different client is refused.
	err = r.Activate("c2", &ActiveCharacter{ID: "char-1", Name: "Hero"})
	if err != ErrCharacterInUse {
		t.Fatalf("expected ErrCharacterInUse, got %v", err)
	}

	// Re-selecting the same character from the same client replaces in place.
	err = r.Activate("c1", &ActiveCharacter{ID: "char-1", Name: "Hero"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "active count", r.ActiveCount(), 1)

	// Swapping characters releases the old one for other clients.
	err = r.Activate("c1", &ActiveCharacter{ID: "char-2", Name: "Alt"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = r.Activate("c2", &ActiveCharacter{ID: "char-1", Name: "Hero"})
	if err != nil {
		t.Fatalf("expected char-1 released after swap, got %v", err)
	}

	clientID, ok := r.ClientFor("char-1")
	testutil.AssertEqual(t, "client found", ok, true)
	testutil.AssertEqual(t, "client for char-1", clientID, "c2")
}

func TestRegistry_ActivateUnknownSession(t *testing.T) {
	r := NewRegistry()
	err := r.Activate("ghost", &ActiveCharacter{ID: "char-1"})
	if err != ErrSessionNotFound {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRegistry_Deactivate(t *testing.T) {
	r := NewRegistry()
	now := time.Now()
	r.Touch("c1", testAddr(4000), now)

	if err := r.Activate("c1", &ActiveCharacter{ID: "char-1", Name: "Hero"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	char := r.Deactivate("c1")
	if char == nil {
		t.Fatal("expected the deactivated character")
	}
	testutil.AssertEqual(t, "character id", char.ID, "char-1")
	testutil.AssertEqual(t, "active count", r.ActiveCount(), 0)

	if _, ok := r.ClientFor("char-1"); ok {
		t.Error("expected bijection entry released")
	}
	s, _ := r.Get("c1")
	testutil.AssertEqual(t, "session character cleared", s.CharacterID, "")

	if got := r.Deactivate("c1"); got != nil {
		t.Errorf("expected nil on second deactivate, got %v", got)
	}
}

func TestRegistry_RosterAndTargets(t *testing.T) {
	r := NewRegistry()
	now := time.Now()
	r.Touch("c1", testAddr(4000), now)
	r.Touch("c2", testAddr(4001), now)
	r.Touch("c3", testAddr(4002), now)

	for i, clientID := range []string{"c1", "c2"} {
		err := r.Activate(clientID, &ActiveCharacter{ID: "char-" + clientID, Level: i + 1})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// c3 never selected a character: not in the roster, not a target.
	roster := r.Roster("c1")
	testutil.AssertEqual(t, "roster size", len(roster), 1)
	testutil.AssertEqual(t, "roster entry", roster[0].CharacterID, "char-c2")

	targets := r.BroadcastTargets("c1")
	testutil.AssertEqual(t, "target count", len(targets), 1)
	testutil.AssertEqual(t, "target client", targets[0].ClientID, "c2")

	all := r.BroadcastTargets("")
	testutil.AssertEqual(t, "unexcluded target count", len(all), 2)
}

func TestRegistry_AllowBroadcast(t *testing.T) {
	r := NewRegistry()
	now := time.Now()
	min := 50 * time.Millisecond

	testutil.AssertEqual(t, "first", r.AllowBroadcast("c1", now, min), true)
	testutil.AssertEqual(t, "inside window", r.AllowBroadcast("c1", now.Add(10*time.Millisecond), min), false)
	testutil.AssertEqual(t, "still inside", r.AllowBroadcast("c1", now.Add(49*time.Millisecond), min), false)
	testutil.AssertEqual(t, "window elapsed", r.AllowBroadcast("c1", now.Add(50*time.Millisecond), min), true)

	// The window restarts from the allowed broadcast, not the denied ones.
	testutil.AssertEqual(t, "new window", r.AllowBroadcast("c1", now.Add(60*time.Millisecond), min), false)

	// Senders are throttled independently.
	testutil.AssertEqual(t, "other sender", r.AllowBroadcast("c2", now.Add(10*time.Millisecond), min), true)
}

func TestRegistry_Expire(t *testing.T) {
	r := NewRegistry()
	base := time.Now()
	r.Touch("stale", testAddr(4000), base)
	r.Touch("fresh", testAddr(4001), base.Add(25*time.Second))

	expired := r.Expire(base.Add(31*time.Second), 30*time.Second)
	testutil.AssertEqual(t, "expired count", len(expired), 1)
	testutil.AssertEqual(t, "expired id", expired[0], "stale")
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry()
	now := time.Now()
	r.Touch("c1", testAddr(4000), now)
	r.Authenticate("c1", "p1", "hero")
	if err := r.Activate("c1", &ActiveCharacter{ID: "char-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Remove without a prior Deactivate still releases everything.
	r.Remove("c1")
	testutil.AssertEqual(t, "online", r.OnlineCount(), 0)
	testutil.AssertEqual(t, "active", r.ActiveCount(), 0)
	if _, ok := r.Get("c1"); ok {
		t.Error("expected session row gone")
	}
	if _, ok := r.ClientFor("char-1"); ok {
		t.Error("expected bijection entry gone")
	}

	// Removing an unknown id is a no-op.
	r.Remove("ghost")
	testutil.AssertEqual(t, "online after ghost remove", r.OnlineCount(), 0)
}
