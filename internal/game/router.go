// Package game decides what every inbound message means: which state to
// mutate and which outbound directives to produce. Handlers never fail the
// process; a bad message degrades to an error reply or a silent no-op.
package game

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/pixil98/go-worldsync/internal/dispatch"
	"github.com/pixil98/go-worldsync/internal/protocol"
	"github.com/pixil98/go-worldsync/internal/session"
	"github.com/pixil98/go-worldsync/internal/storage"
	"github.com/pixil98/go-worldsync/internal/world"
)

const (
	DefaultSessionTimeout = 30 * time.Second

	// DefaultBroadcastInterval spaces successive rebroadcasts of one
	// sender's position (~20 Hz), independent of how fast it transmits.
	DefaultBroadcastInterval = 50 * time.Millisecond

	// worldSnapshotKey is the fixed id of the persisted world record.
	worldSnapshotKey = "world"
)

// Router is the message router and state machine. One mutex serializes
// every state transition, message handling and the periodic tick alike, so
// multi-step handlers (join reads the roster, then broadcasts) never
// interleave.
type Router struct {
	mu sync.Mutex

	reg        *session.Registry
	world      *world.State
	players    storage.Storer[*Player]
	chars      storage.Storer[*Character]
	worldStore storage.Storer[*world.Snapshot]

	sessionTimeout time.Duration
	broadcastEvery time.Duration
	clock          func() time.Time
}

type RouterOpt func(*Router)

func WithSessionTimeout(d time.Duration) RouterOpt {
	return func(r *Router) {
		r.sessionTimeout = d
	}
}

func WithBroadcastInterval(d time.Duration) RouterOpt {
	return func(r *Router) {
		r.broadcastEvery = d
	}
}

// WithClock overrides the time source. Tests use this to step through
// throttle windows and expiry deterministically.
func WithClock(clock func() time.Time) RouterOpt {
	return func(r *Router) {
		r.clock = clock
	}
}

func NewRouter(
	reg *session.Registry,
	w *world.State,
	players storage.Storer[*Player],
	chars storage.Storer[*Character],
	worldStore storage.Storer[*world.Snapshot],
	opts ...RouterOpt,
) *Router {
	r := &Router{
		reg:            reg,
		world:          w,
		players:        players,
		chars:          chars,
		worldStore:     worldStore,
		sessionTimeout: DefaultSessionTimeout,
		broadcastEvery: DefaultBroadcastInterval,
		clock:          time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// HandleMessage routes one decoded datagram. Touch runs before anything
// else: every datagram refreshes the sender's address and last-seen time,
// creating the session row on first contact.
func (r *Router) HandleMessage(env *protocol.Envelope, addr *net.UDPAddr) []dispatch.Directive {
	now := r.clock()

	r.mu.Lock()
	defer r.mu.Unlock()

	sess := r.reg.Touch(env.ClientID, addr, now)

	switch p := env.Payload.(type) {
	case protocol.ClientInit:
		return r.handleClientInit(sess, now)
	case protocol.ClientDisconnect:
		return r.handleDisconnect(sess, now)
	case protocol.Heartbeat:
		return r.handleHeartbeat(sess, now)
	case *protocol.Auth:
		return r.handleAuth(sess, p, now)
	case *protocol.CharacterSelect:
		return r.handleCharacterSelect(sess, p, now)
	case *protocol.JoinWorld:
		return r.handleJoinWorld(sess, p)
	case *protocol.PositionUpdate:
		return r.handlePositionUpdate(sess, p, now)
	case *protocol.ChatMessage:
		return r.handleChatMessage(sess, p, now)
	case protocol.LeaveWorld:
		return r.handleLeaveWorld(sess, now)
	case *protocol.Register:
		return r.handleRegister(sess, p, now)
	case *protocol.Login:
		return r.handleLogin(sess, p, now)
	case protocol.Logout:
		return r.handleLogout(sess, now)
	case *protocol.CreateCharacter:
		return r.handleCreateCharacter(sess, p, now)
	case *protocol.DeleteCharacter:
		return r.handleDeleteCharacter(sess, p)
	case protocol.GetCharacters:
		return r.handleGetCharacters(sess)
	case *protocol.SaveCharacter:
		return r.handleSaveCharacter(sess, p, now)
	case protocol.GetWorldInfo:
		return r.handleGetWorldInfo(sess)
	case protocol.Ping:
		return r.reply(sess, protocol.TypePong, protocol.NewPong(protocol.At(now)))
	case protocol.Unknown:
		return r.fail(sess, "unknown message type: "+p.Type)
	default:
		return r.fail(sess, "unknown message type: "+env.Type)
	}
}

// Tick runs one scheduler pass: expire silent sessions through the same
// departure path as an explicit disconnect, then advance the world. Each
// completed world update also flushes every active character and the world
// snapshot to storage.
func (r *Router) Tick(now time.Time) []dispatch.Directive {
	r.mu.Lock()
	defer r.mu.Unlock()

	var dirs []dispatch.Directive

	for _, clientID := range r.reg.Expire(now, r.sessionTimeout) {
		dirs = append(dirs, r.leaveLocked(clientID, now)...)
		r.reg.Remove(clientID)
	}

	updates, completed := r.world.Advance(now)
	for _, u := range updates {
		dirs = append(dirs, dispatch.Broadcast(protocol.TypeWorldUpdate, u, ""))
	}

	if completed {
		r.reg.ForEachActive(func(_ string, ac *session.ActiveCharacter) {
			r.flushActive(ac, now)
		})
		if err := r.worldStore.Save(worldSnapshotKey, r.world.Snapshot()); err != nil {
			slog.Warn("saving world snapshot", "error", err)
		}
	}

	return dirs
}

// Shutdown flushes every active character and announces their departure.
// Session rows aren't torn down individually; the process is exiting.
func (r *Router) Shutdown() []dispatch.Directive {
	now := r.clock()

	r.mu.Lock()
	defer r.mu.Unlock()

	var dirs []dispatch.Directive
	r.reg.ForEachActive(func(_ string, ac *session.ActiveCharacter) {
		r.flushActive(ac, now)
		dirs = append(dirs, dispatch.Broadcast(protocol.TypePlayerLeft, protocol.NewPlayerLeft(ac.ID, ac.Name), ""))
	})

	if err := r.worldStore.Save(worldSnapshotKey, r.world.Snapshot()); err != nil {
		slog.Warn("saving world snapshot", "error", err)
	}

	return dirs
}

// leaveLocked removes the client's character from the world: flush to
// storage, drop it from the active set and bijection, and announce the
// departure with no exclusion. Authentication and the online count are
// untouched; the session may re-select and rejoin.
func (r *Router) leaveLocked(clientID string, now time.Time) []dispatch.Directive {
	char := r.reg.Deactivate(clientID)
	if char == nil {
		return nil
	}
	r.flushActive(char, now)
	return []dispatch.Directive{
		dispatch.Broadcast(protocol.TypePlayerLeft, protocol.NewPlayerLeft(char.ID, char.Name), ""),
	}
}

// flushActive writes a live character copy through to storage. Persistence
// failures are logged and swallowed: losing one save must not take the
// world down.
func (r *Router) flushActive(ac *session.ActiveCharacter, now time.Time) {
	char := r.chars.Get(ac.ID)
	if char == nil {
		char = &Character{Name: ac.Name}
	}
	char.ApplyActive(ac, now)
	if err := r.chars.Save(ac.ID, char); err != nil {
		slog.Warn("saving character", "character", ac.ID, "error", err)
	}
}

func (r *Router) reply(sess *session.Session, kind string, data any) []dispatch.Directive {
	return []dispatch.Directive{dispatch.ToClient(sess.ClientID, kind, data)}
}

// fail reports a protocol or authorization error back to the sender.
// Failures are reported, never fatal.
func (r *Router) fail(sess *session.Session, msg string) []dispatch.Directive {
	return r.reply(sess, protocol.TypeError, protocol.NewErrorResponse(msg))
}
