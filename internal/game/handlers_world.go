package game

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/pixil98/go-worldsync/internal/dispatch"
	"github.com/pixil98/go-worldsync/internal/protocol"
	"github.com/pixil98/go-worldsync/internal/session"
)

// handleJoinWorld produces the standard dual output: a player_joined
// broadcast to everyone else, and a world_joined reply giving the joiner
// the full world snapshot plus the complete roster of its peers. New
// joiners get the peer list once, whole; there is no incremental replay.
func (r *Router) handleJoinWorld(sess *session.Session, _ *protocol.JoinWorld) []dispatch.Directive {
	if !sess.Authenticated() {
		return r.fail(sess, "not authenticated")
	}
	ac, ok := r.reg.ActiveFor(sess.ClientID)
	if !ok {
		return r.fail(sess, "no character selected")
	}

	return []dispatch.Directive{
		dispatch.Broadcast(protocol.TypePlayerJoined,
			protocol.NewPlayerJoined(ac.ID, ac.Name, ac.Position), sess.ClientID),
		dispatch.ToClient(sess.ClientID, protocol.TypeWorldJoined,
			protocol.NewWorldJoined(r.world.Info(r.reg.ActiveCount()), r.reg.Roster(sess.ClientID))),
	}
}

// handlePositionUpdate ingests a movement sample. The in-memory and stored
// position always take the update; only the rebroadcast is throttled. A
// sender with no active character is a silent no-op: stray position packets
// after deselection are expected traffic, not faults.
func (r *Router) handlePositionUpdate(sess *session.Session, p *protocol.PositionUpdate, now time.Time) []dispatch.Directive {
	ac, ok := r.reg.ActiveFor(sess.ClientID)
	if !ok {
		return nil
	}
	pos, ok := p.Pos()
	if !ok {
		return nil
	}

	ac.Position = pos
	r.flushActive(ac, now)

	if !r.reg.AllowBroadcast(sess.ClientID, now, r.broadcastEvery) {
		return nil
	}
	return []dispatch.Directive{
		dispatch.Broadcast(protocol.TypePositionUpdate,
			protocol.NewPositionBroadcast(ac.ID, ac.Name, pos, protocol.At(now)), sess.ClientID),
	}
}

// handleChatMessage relays chat to everyone in the world, sender included.
// Empty or whitespace-only text is dropped without a reply.
func (r *Router) handleChatMessage(sess *session.Session, p *protocol.ChatMessage, now time.Time) []dispatch.Directive {
	ac, ok := r.reg.ActiveFor(sess.ClientID)
	if !ok {
		return nil
	}

	text := strings.TrimSpace(p.Text)
	if text == "" {
		return nil
	}
	text = norm.NFC.String(text)

	return []dispatch.Directive{
		dispatch.Broadcast(protocol.TypeChatMessage,
			protocol.NewChatBroadcast(ac.ID, ac.Name, text, protocol.At(now)), ""),
	}
}

// handleLeaveWorld is the partial departure: the character leaves the world
// but the session stays authenticated and counted online.
func (r *Router) handleLeaveWorld(sess *session.Session, now time.Time) []dispatch.Directive {
	return r.leaveLocked(sess.ClientID, now)
}

func (r *Router) handleGetWorldInfo(sess *session.Session) []dispatch.Directive {
	return r.reply(sess, protocol.TypeWorldInfo,
		protocol.NewWorldInfoResponse(r.world.Info(r.reg.ActiveCount())))
}
