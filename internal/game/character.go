package game

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-worldsync/internal/protocol"
	"github.com/pixil98/go-worldsync/internal/session"
	"github.com/pixil98/go-worldsync/internal/storage"
)

// Character is the authoritative stored record for a character, keyed by
// character id. While a session controls it, the live copy in the session
// registry leads and is flushed back here on saves, leaves, and expiry.
type Character struct {
	Name string `json:"name"`

	// Owner is the player id the character belongs to. Operations from any
	// other player fail the ownership check.
	Owner string `json:"owner"`

	CharacterType string            `json:"character_type,omitempty"`
	Level         int               `json:"level"`
	Health        int               `json:"health"`
	Position      protocol.Position `json:"position"`

	LastPlayed time.Time `json:"last_played,omitempty"`

	// Extra keeps client-supplied attributes the server doesn't model.
	Extra storage.ExtensionState `json:"extra,omitempty"`
}

// NewCharacterFromData builds a stored character from a client-supplied
// payload. The data is taken at face value; this is a trust-the-client
// protocol and nothing here validates self-consistency.
func NewCharacterFromData(data *protocol.CharacterData, owner string, now time.Time) *Character {
	c := &Character{
		Name:          data.Name,
		Owner:         owner,
		CharacterType: data.CharacterType,
		Level:         data.Level,
		Health:        data.Health,
		LastPlayed:    now,
	}
	if data.Position != nil {
		c.Position = *data.Position
	}
	if c.Level == 0 {
		c.Level = 1
	}
	if c.Health == 0 {
		c.Health = 100
	}
	if len(data.Extra) > 0 {
		c.Extra = storage.ExtensionState(data.Extra)
	}
	return c
}

// Activate builds the live registry copy for this character.
func (c *Character) Activate(id string, now time.Time) *session.ActiveCharacter {
	return &session.ActiveCharacter{
		ID:            id,
		Name:          c.Name,
		CharacterType: c.CharacterType,
		Level:         c.Level,
		Health:        c.Health,
		Position:      c.Position,
		LastActive:    now,
	}
}

// ApplyActive copies live state back onto the stored record ahead of a
// flush.
func (c *Character) ApplyActive(ac *session.ActiveCharacter, now time.Time) {
	c.Position = ac.Position
	c.Level = ac.Level
	c.Health = ac.Health
	c.LastPlayed = now
}

// Info returns the roster entry for this character.
func (c *Character) Info(id string) protocol.CharacterInfo {
	return protocol.CharacterInfo{
		CharacterID:   id,
		Name:          c.Name,
		CharacterType: c.CharacterType,
		Level:         c.Level,
		Health:        c.Health,
		Position:      c.Position,
	}
}

func (c *Character) Validate() error {
	el := errors.NewErrorList()

	if c.Name == "" {
		el.Add(fmt.Errorf("name must be set"))
	}
	if c.Level < 0 {
		el.Add(fmt.Errorf("level cannot be negative"))
	}
	if c.Health < 0 {
		el.Add(fmt.Errorf("health cannot be negative"))
	}

	return el.Err()
}
