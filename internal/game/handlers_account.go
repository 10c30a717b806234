package game

import (
	"log/slog"
	"strings"
	"time"

	"github.com/pixil98/go-worldsync/internal/dispatch"
	"github.com/pixil98/go-worldsync/internal/protocol"
	"github.com/pixil98/go-worldsync/internal/session"
	"github.com/pixil98/go-worldsync/internal/storage"
)

// handleAuth binds a player to the session. Unknown usernames are lazily
// created with a placeholder credential; there is no password check on this
// path. That is the protocol's trust model, not an oversight.
func (r *Router) handleAuth(sess *session.Session, p *protocol.Auth, now time.Time) []dispatch.Directive {
	username := strings.TrimSpace(p.Username)
	if username == "" {
		return r.fail(sess, "missing username")
	}

	key := strings.ToLower(username)
	if !storage.Identifier(key).Valid() {
		return r.fail(sess, "invalid username")
	}

	player := r.players.Get(key)
	if player == nil {
		created, err := NewPlayer(username, p.Password, "", now)
		if err != nil {
			return r.fail(sess, "could not create player")
		}
		player = created
	}

	player.LastLogin = now
	if err := r.players.Save(key, player); err != nil {
		slog.Warn("saving player", "player", key, "error", err)
	}

	r.reg.Authenticate(sess.ClientID, player.ID, player.Username)
	return r.reply(sess, protocol.TypeAuthResponse, protocol.NewAuthResponse(player.ID, player.Username))
}

// handleRegister is the legacy account-creation path. Unlike auth it
// refuses existing usernames and does not bind the session.
func (r *Router) handleRegister(sess *session.Session, p *protocol.Register, now time.Time) []dispatch.Directive {
	username := strings.TrimSpace(p.Username)
	if username == "" {
		return r.fail(sess, "missing username")
	}

	key := strings.ToLower(username)
	if !storage.Identifier(key).Valid() {
		return r.fail(sess, "invalid username")
	}

	if r.players.Get(key) != nil {
		return r.reply(sess, protocol.TypeRegisterResponse, &protocol.RegisterResponse{
			Type:    protocol.TypeRegisterResponse,
			Message: "username taken",
		})
	}

	player, err := NewPlayer(username, p.Password, p.Email, now)
	if err != nil {
		return r.fail(sess, "could not create player")
	}
	if err := r.players.Save(key, player); err != nil {
		return r.fail(sess, "could not save player")
	}

	return r.reply(sess, protocol.TypeRegisterResponse, &protocol.RegisterResponse{
		Type:     protocol.TypeRegisterResponse,
		Success:  true,
		PlayerID: player.ID,
	})
}

// handleLogin is the legacy credentialed variant of auth. It is the only
// handler that actually checks the stored credential.
func (r *Router) handleLogin(sess *session.Session, p *protocol.Login, now time.Time) []dispatch.Directive {
	key := strings.ToLower(strings.TrimSpace(p.Username))
	if key == "" {
		return r.fail(sess, "missing username")
	}

	player := r.players.Get(key)
	if player == nil {
		return r.reply(sess, protocol.TypeLoginResponse, &protocol.LoginResponse{
			Type:    protocol.TypeLoginResponse,
			Message: "unknown player",
		})
	}
	if !player.CheckPassword(p.Password) {
		return r.reply(sess, protocol.TypeLoginResponse, &protocol.LoginResponse{
			Type:    protocol.TypeLoginResponse,
			Message: "invalid credentials",
		})
	}

	player.LastLogin = now
	if err := r.players.Save(key, player); err != nil {
		slog.Warn("saving player", "player", key, "error", err)
	}

	r.reg.Authenticate(sess.ClientID, player.ID, player.Username)
	return r.reply(sess, protocol.TypeLoginResponse, &protocol.LoginResponse{
		Type:     protocol.TypeLoginResponse,
		Success:  true,
		PlayerID: player.ID,
		Username: player.Username,
	})
}

// handleLogout releases the character (if any) and the online slot but
// keeps the session row; the client may auth again on the same client_id.
func (r *Router) handleLogout(sess *session.Session, now time.Time) []dispatch.Directive {
	dirs := r.leaveLocked(sess.ClientID, now)
	r.reg.ClearPlayer(sess.ClientID)
	return append(dirs, dispatch.ToClient(sess.ClientID, protocol.TypeLogoutResponse, &protocol.LogoutResponse{
		Type:    protocol.TypeLogoutResponse,
		Success: true,
	}))
}
