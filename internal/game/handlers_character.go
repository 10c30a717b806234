package game

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-worldsync/internal/dispatch"
	"github.com/pixil98/go-worldsync/internal/protocol"
	"github.com/pixil98/go-worldsync/internal/session"
	"github.com/pixil98/go-worldsync/internal/storage"
)

// handleCharacterSelect activates a character for the session. A character
// the store has never seen is created on the fly from the client-supplied
// character_data; clients send their full record cooperatively and nothing
// validates its self-consistency.
func (r *Router) handleCharacterSelect(sess *session.Session, p *protocol.CharacterSelect, now time.Time) []dispatch.Directive {
	if !sess.Authenticated() {
		return r.fail(sess, "not authenticated")
	}
	if p.CharacterID == "" {
		return r.fail(sess, "missing character_id")
	}
	if !storage.Identifier(p.CharacterID).Valid() {
		return r.fail(sess, "invalid character_id")
	}

	char := r.chars.Get(p.CharacterID)
	if char == nil {
		if p.CharacterData == nil || p.CharacterData.Name == "" {
			return r.fail(sess, "unknown character and no character_data")
		}
		char = NewCharacterFromData(p.CharacterData, sess.PlayerID, now)
		if err := r.chars.Save(p.CharacterID, char); err != nil {
			return r.fail(sess, "could not save character")
		}
	}

	if char.Owner != "" && char.Owner != sess.PlayerID {
		return r.fail(sess, "not your character")
	}

	if err := r.reg.Activate(sess.ClientID, char.Activate(p.CharacterID, now)); err != nil {
		if err == session.ErrCharacterInUse {
			return r.fail(sess, "character already in use")
		}
		return r.fail(sess, "could not select character")
	}

	return r.reply(sess, protocol.TypeCharacterSelectResponse,
		protocol.NewCharacterSelectResponse(p.CharacterID, char.Name))
}

func (r *Router) handleCreateCharacter(sess *session.Session, p *protocol.CreateCharacter, now time.Time) []dispatch.Directive {
	if !sess.Authenticated() {
		return r.fail(sess, "not authenticated")
	}
	if strings.TrimSpace(p.Name) == "" {
		return r.fail(sess, "missing name")
	}

	char := &Character{
		Name:          strings.TrimSpace(p.Name),
		Owner:         sess.PlayerID,
		CharacterType: p.CharacterType,
		Level:         1,
		Health:        100,
		LastPlayed:    now,
	}
	if p.Position != nil {
		char.Position = *p.Position
	}

	id := uuid.New().String()
	if err := r.chars.Save(id, char); err != nil {
		return r.fail(sess, "could not save character")
	}

	return r.reply(sess, protocol.TypeCreateCharacterResponse, &protocol.CreateCharacterResponse{
		Type:        protocol.TypeCreateCharacterResponse,
		Success:     true,
		CharacterID: id,
	})
}

func (r *Router) handleDeleteCharacter(sess *session.Session, p *protocol.DeleteCharacter) []dispatch.Directive {
	if !sess.Authenticated() {
		return r.fail(sess, "not authenticated")
	}
	if p.CharacterID == "" {
		return r.fail(sess, "missing character_id")
	}

	char := r.chars.Get(p.CharacterID)
	if char == nil {
		return r.fail(sess, "unknown character")
	}
	if char.Owner != "" && char.Owner != sess.PlayerID {
		return r.fail(sess, "not your character")
	}
	if _, active := r.reg.ClientFor(p.CharacterID); active {
		return r.fail(sess, "character in use")
	}

	if err := r.chars.Delete(p.CharacterID); err != nil {
		return r.fail(sess, "could not delete character")
	}

	return r.reply(sess, protocol.TypeDeleteCharacterResponse, &protocol.DeleteCharacterResponse{
		Type:        protocol.TypeDeleteCharacterResponse,
		Success:     true,
		CharacterID: p.CharacterID,
	})
}

func (r *Router) handleGetCharacters(sess *session.Session) []dispatch.Directive {
	if !sess.Authenticated() {
		return r.fail(sess, "not authenticated")
	}

	var chars []protocol.CharacterInfo
	for id, char := range r.chars.GetAll() {
		if char.Owner == sess.PlayerID {
			chars = append(chars, char.Info(id))
		}
	}
	slices.SortFunc(chars, func(a, b protocol.CharacterInfo) int {
		return strings.Compare(a.CharacterID, b.CharacterID)
	})

	return r.reply(sess, protocol.TypeCharacterList, protocol.NewCharacterList(chars))
}

// handleSaveCharacter overwrites stored fields from a client-supplied
// payload. When the character is live, the active copy is updated too so a
// later autosave doesn't roll the change back.
func (r *Router) handleSaveCharacter(sess *session.Session, p *protocol.SaveCharacter, now time.Time) []dispatch.Directive {
	if !sess.Authenticated() {
		return r.fail(sess, "not authenticated")
	}
	if p.CharacterID == "" {
		return r.fail(sess, "missing character_id")
	}

	char := r.chars.Get(p.CharacterID)
	if char == nil {
		return r.fail(sess, "unknown character")
	}
	if char.Owner != "" && char.Owner != sess.PlayerID {
		return r.fail(sess, "not your character")
	}

	if p.CharacterData != nil {
		applyData(char, p.CharacterData)
	}
	char.LastPlayed = now
	if err := r.chars.Save(p.CharacterID, char); err != nil {
		return r.fail(sess, "could not save character")
	}

	if clientID, ok := r.reg.ClientFor(p.CharacterID); ok {
		if ac, ok := r.reg.ActiveFor(clientID); ok {
			ac.Name = char.Name
			ac.CharacterType = char.CharacterType
			ac.Level = char.Level
			ac.Health = char.Health
			ac.Position = char.Position
		}
	}

	return r.reply(sess, protocol.TypeSaveCharacterResponse, &protocol.SaveCharacterResponse{
		Type:        protocol.TypeSaveCharacterResponse,
		Success:     true,
		CharacterID: p.CharacterID,
	})
}

func applyData(char *Character, data *protocol.CharacterData) {
	if data.Name != "" {
		char.Name = data.Name
	}
	if data.CharacterType != "" {
		char.CharacterType = data.CharacterType
	}
	if data.Level != 0 {
		char.Level = data.Level
	}
	if data.Health != 0 {
		char.Health = data.Health
	}
	if data.Position != nil {
		char.Position = *data.Position
	}
	for k, v := range data.Extra {
		if char.Extra == nil {
			char.Extra = storage.ExtensionState{}
		}
		char.Extra[k] = v
	}
}
