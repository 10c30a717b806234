package game

import (
	"time"

	"github.com/pixil98/go-worldsync/internal/dispatch"
	"github.com/pixil98/go-worldsync/internal/protocol"
	"github.com/pixil98/go-worldsync/internal/session"
)

// handleClientInit is idempotent: the session row already exists from the
// Touch, so this only acknowledges it.
func (r *Router) handleClientInit(sess *session.Session, now time.Time) []dispatch.Directive {
	return r.reply(sess, protocol.TypeClientInitResponse,
		protocol.NewClientInitResponse(sess.ClientID, protocol.At(now)))
}

// handleDisconnect runs the full departure path: character leave semantics
// plus tearing down the session row and its online slot.
func (r *Router) handleDisconnect(sess *session.Session, now time.Time) []dispatch.Directive {
	dirs := r.leaveLocked(sess.ClientID, now)
	r.reg.Remove(sess.ClientID)
	return dirs
}

// handleHeartbeat is a liveness probe. It refreshes the character's
// last-activity stamp when one is active but never mutates game state.
func (r *Router) handleHeartbeat(sess *session.Session, now time.Time) []dispatch.Directive {
	if ac, ok := r.reg.ActiveFor(sess.ClientID); ok {
		ac.LastActive = now
	}
	return r.reply(sess, protocol.TypeHeartbeatResponse,
		protocol.NewHeartbeatResponse(r.world.Tick(), protocol.At(now)))
}
