// Package session tracks logical clients over UDP. The transport has no
// connection object, so a session is whatever the server remembers about a
// client_id: the address it last sent from, when it was last heard, and the
// player/character bound to it.
package session

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/pixil98/go-worldsync/internal/protocol"
)

var (
	ErrCharacterInUse  = errors.New("character already in use")
	ErrSessionNotFound = errors.New("session not found")
)

// Session is the server's bookkeeping for one client_id. Addr is wherever
// the client most recently sent from; UDP senders roam across NAT rebinds,
// so replies always go to the last-seen address.
type Session struct {
	ClientID    string
	Addr        *net.UDPAddr
	LastSeen    time.Time
	PlayerID    string
	Username    string
	CharacterID string
}

// Authenticated reports whether an auth has bound a player to this session.
func (s *Session) Authenticated() bool {
	return s.PlayerID != ""
}

// ActiveCharacter is the live in-memory copy of a character some session is
// controlling. It is the authoritative position between storage flushes.
type ActiveCharacter struct {
	ID            string
	Name          string
	CharacterType string
	Level         int
	Health        int
	Position      protocol.Position
	LastActive    time.Time
}

// Info converts the live copy to its wire roster form.
func (c *ActiveCharacter) Info() protocol.CharacterInfo {
	return protocol.CharacterInfo{
		CharacterID:   c.ID,
		Name:          c.Name,
		CharacterType: c.CharacterType,
		Level:         c.Level,
		Health:        c.Health,
		Position:      c.Position,
	}
}

// Target is one broadcast destination.
type Target struct {
	ClientID string
	Addr     *net.UDPAddr
}

// Registry owns all session state as one consistent aggregate: the session
// table, the set of active characters, the character/client bijection, the
// per-sender broadcast throttle stamps, and the online-player count. Keeping
// these behind one type means a partial update can't leave them out of step.
//
// The router serializes every state transition behind its own lock; the
// registry's lock additionally makes point reads (addresses, counts) safe
// from the dispatcher without holding up message handling.
type Registry struct {
	mu sync.RWMutex

	sessions      map[string]*Session
	active        map[string]*ActiveCharacter // client_id -> live character
	charClients   map[string]string           // character_id -> client_id
	lastBroadcast map[string]time.Time        // client_id -> last position rebroadcast
	online        int
}

func NewRegistry() *Registry {
	return &Registry{
		sessions:      map[string]*Session{},
		active:        map[string]*ActiveCharacter{},
		charClients:   map[string]string{},
		lastBroadcast: map[string]time.Time{},
	}
}

// Touch upserts the session row for clientID, recording the source address
// and receipt time. It runs first for every inbound datagram and cannot
// fail; an unseen client_id creates the row.
func (r *Registry) Touch(clientID string, addr *net.UDPAddr, now time.Time) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[clientID]
	if !ok {
		s = &Session{ClientID: clientID}
		r.sessions[clientID] = s
	}
	s.Addr = addr
	s.LastSeen = now
	return s
}

func (r *Registry) Get(clientID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[clientID]
	return s, ok
}

// Addr returns the last-seen address for clientID. The dispatcher uses this
// at send time; a missing session means the send is silently dropped.
func (r *Registry) Addr(clientID string) (*net.UDPAddr, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[clientID]
	if !ok || s.Addr == nil {
		return nil, false
	}
	return s.Addr, true
}

// Authenticate binds a player to the session and counts it online. Re-auth
// on an already-bound session rebinds without double counting.
func (r *Registry) Authenticate(clientID, playerID, username string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[clientID]
	if !ok {
		return
	}
	if s.PlayerID == "" {
		r.online++
	}
	s.PlayerID = playerID
	s.Username = username
}

// ClearPlayer unbinds the player from the session (logout). The session row
// itself survives; the client may auth again.
func (r *Registry) ClearPlayer(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[clientID]
	if !ok {
		return
	}
	if s.PlayerID != "" {
		r.online--
	}
	s.PlayerID = ""
	s.Username = ""
}

// Activate makes char the active character for clientID, maintaining the
// character/client bijection atomically. Re-activating the same character
// for the same client replaces the entry in place (no duplicate roster
// rows). A character already driven by a different client is refused.
func (r *Registry) Activate(clientID string, char *ActiveCharacter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[clientID]
	if !ok {
		return ErrSessionNotFound
	}

	if owner, ok := r.charClients[char.ID]; ok && owner != clientID {
		return ErrCharacterInUse
	}

	// Swapping characters releases the old half of the bijection first.
	if prev, ok := r.active[clientID]; ok && prev.ID != char.ID {
		delete(r.charClients, prev.ID)
	}

	r.active[clientID] = char
	r.charClients[char.ID] = clientID
	s.CharacterID = char.ID
	return nil
}

// Deactivate removes clientID's active character and returns it, or nil if
// there was none. Throttle state for the sender is dropped with it.
func (r *Registry) Deactivate(clientID string) *ActiveCharacter {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.deactivateLocked(clientID)
}

func (r *Registry) deactivateLocked(clientID string) *ActiveCharacter {
	char, ok := r.active[clientID]
	if !ok {
		return nil
	}
	delete(r.active, clientID)
	delete(r.charClients, char.ID)
	delete(r.lastBroadcast, clientID)
	if s, ok := r.sessions[clientID]; ok {
		s.CharacterID = ""
	}
	return char
}

// ActiveFor returns the live character controlled by clientID.
func (r *Registry) ActiveFor(clientID string) (*ActiveCharacter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.active[clientID]
	return c, ok
}

// ClientFor returns the client currently driving characterID.
func (r *Registry) ClientFor(characterID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.charClients[characterID]
	return c, ok
}

// Roster returns every active character except the excluded client's own.
func (r *Registry) Roster(excludeClientID string) []protocol.CharacterInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roster := make([]protocol.CharacterInfo, 0, len(r.active))
	for clientID, char := range r.active {
		if clientID == excludeClientID {
			continue
		}
		roster = append(roster, char.Info())
	}
	return roster
}

// ForEachActive calls fn for every active character while holding the lock.
func (r *Registry) ForEachActive(fn func(clientID string, char *ActiveCharacter)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for clientID, char := range r.active {
		fn(clientID, char)
	}
}

// BroadcastTargets returns the sessions currently in the world, minus the
// excluded client, resolved to their last-seen addresses.
func (r *Registry) BroadcastTargets(excludeClientID string) []Target {
	r.mu.RLock()
	defer r.mu.RUnlock()

	targets := make([]Target, 0, len(r.active))
	for clientID := range r.active {
		if clientID == excludeClientID {
			continue
		}
		s, ok := r.sessions[clientID]
		if !ok || s.Addr == nil {
			continue
		}
		targets = append(targets, Target{ClientID: clientID, Addr: s.Addr})
	}
	return targets
}

// AllowBroadcast applies the per-sender position throttle: it returns true
// and stamps the window when at least min has passed since the last stamped
// broadcast for clientID. Ingestion is never throttled, only rebroadcast.
func (r *Registry) AllowBroadcast(clientID string, now time.Time, min time.Duration) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	last, ok := r.lastBroadcast[clientID]
	if ok && now.Sub(last) < min {
		return false
	}
	r.lastBroadcast[clientID] = now
	return true
}

// Expire returns the client ids whose last datagram is older than timeout.
// Silence is UDP's only FIN: the caller must run the same departure path as
// an explicit disconnect for each id, then Remove it.
func (r *Registry) Expire(now time.Time, timeout time.Duration) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var expired []string
	for clientID, s := range r.sessions {
		if now.Sub(s.LastSeen) > timeout {
			expired = append(expired, clientID)
		}
	}
	return expired
}

// Remove deletes the session row, releasing its online slot and, should the
// caller have skipped Deactivate, its half of the bijection.
func (r *Registry) Remove(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[clientID]
	if !ok {
		return
	}
	r.deactivateLocked(clientID)
	if s.PlayerID != "" {
		r.online--
	}
	delete(r.sessions, clientID)
}

// ClientIDs returns every known session id. Used for shutdown cleanup.
func (r *Registry) ClientIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	return ids
}

// OnlineCount is the number of authenticated sessions.
func (r *Registry) OnlineCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.online
}

// ActiveCount is the number of characters in the world.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.active)
}
