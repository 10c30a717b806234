package protocol

import (
	"encoding/json"
)

// Position is the single internal shape for a point in the world. The wire
// accepts it nested or flattened; only this form survives past decode.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Payload is the closed set of inbound message bodies. Each variant maps to
// exactly one wire type; the router switches over these instead of probing a
// loose map field by field.
type Payload interface {
	isPayload()
}

type ClientInit struct{}

type ClientDisconnect struct{}

type Heartbeat struct{}

type Auth struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CharacterSelect struct {
	CharacterID   string         `json:"character_id"`
	CharacterData *CharacterData `json:"character_data"`
}

type JoinWorld struct {
	CharacterID   string `json:"character_id"`
	CharacterName string `json:"character_name"`
}

// PositionUpdate accepts the nested position object or legacy flattened
// top-level x/y/z fields. Pos() resolves whichever form was sent.
type PositionUpdate struct {
	Position *Position `json:"position"`
	X        *float64  `json:"x"`
	Y        *float64  `json:"y"`
	Z        *float64  `json:"z"`
}

// Pos returns the normalized position and whether one was present at all.
// The nested form wins when both appear.
func (p *PositionUpdate) Pos() (Position, bool) {
	if p.Position != nil {
		return *p.Position, true
	}
	if p.X != nil || p.Y != nil || p.Z != nil {
		var pos Position
		if p.X != nil {
			pos.X = *p.X
		}
		if p.Y != nil {
			pos.Y = *p.Y
		}
		if p.Z != nil {
			pos.Z = *p.Z
		}
		return pos, true
	}
	return Position{}, false
}

type ChatMessage struct {
	Text string `json:"text"`
}

type LeaveWorld struct{}

type Register struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

type Login struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Logout struct{}

type CreateCharacter struct {
	Name          string    `json:"name"`
	CharacterType string    `json:"character_type"`
	Position      *Position `json:"position"`
}

type DeleteCharacter struct {
	CharacterID string `json:"character_id"`
}

type GetCharacters struct{}

type SaveCharacter struct {
	CharacterID   string         `json:"character_id"`
	CharacterData *CharacterData `json:"character_data"`
}

type GetWorldInfo struct{}

type Ping struct{}

// Unknown stands in for any type the catalogue doesn't list. It routes to
// an error reply rather than failing the decode.
type Unknown struct {
	Type string
}

func (ClientInit) isPayload()       {}
func (ClientDisconnect) isPayload() {}
func (Heartbeat) isPayload()        {}
func (Auth) isPayload()             {}
func (CharacterSelect) isPayload()  {}
func (JoinWorld) isPayload()        {}
func (PositionUpdate) isPayload()   {}
func (ChatMessage) isPayload()      {}
func (LeaveWorld) isPayload()       {}
func (Register) isPayload()         {}
func (Login) isPayload()            {}
func (Logout) isPayload()           {}
func (CreateCharacter) isPayload()  {}
func (DeleteCharacter) isPayload()  {}
func (GetCharacters) isPayload()    {}
func (SaveCharacter) isPayload()    {}
func (GetWorldInfo) isPayload()     {}
func (Ping) isPayload()             {}
func (Unknown) isPayload()          {}

// CharacterData is the client-supplied full character record used when a
// selected character doesn't exist yet. Fields the server doesn't model are
// kept in Extra and written through to storage untouched.
type CharacterData struct {
	Name          string    `json:"name"`
	CharacterType string    `json:"character_type"`
	Level         int       `json:"level"`
	Health        int       `json:"health"`
	Position      *Position `json:"position"`

	Extra map[string]json.RawMessage `json:"-"`
}

var characterDataKnownKeys = map[string]bool{
	"name":           true,
	"character_type": true,
	"level":          true,
	"health":         true,
	"position":       true,
}

func (c *CharacterData) UnmarshalJSON(b []byte) error {
	type alias CharacterData
	if err := json.Unmarshal(b, (*alias)(c)); err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	for k, v := range fields {
		if characterDataKnownKeys[k] {
			continue
		}
		if c.Extra == nil {
			c.Extra = map[string]json.RawMessage{}
		}
		c.Extra[k] = v
	}
	return nil
}

func decodePayload(msgType string, data []byte) (Payload, error) {
	unmarshal := func(v Payload) (Payload, error) {
		if err := json.Unmarshal(data, v); err != nil {
			return nil, err
		}
		return v, nil
	}

	switch msgType {
	case TypeClientInit:
		return ClientInit{}, nil
	case TypeClientDisconnect:
		return ClientDisconnect{}, nil
	case TypeHeartbeat:
		return Heartbeat{}, nil
	case TypeAuth:
		return unmarshal(&Auth{})
	case TypeLogin:
		return unmarshal(&Login{})
	case TypeCharacterSelect, TypeSelectCharacter:
		return unmarshal(&CharacterSelect{})
	case TypeJoinWorld:
		return unmarshal(&JoinWorld{})
	case TypePositionUpdate, TypeCharacterMove:
		return unmarshal(&PositionUpdate{})
	case TypeChatMessage:
		return unmarshal(&ChatMessage{})
	case TypeLeaveWorld:
		return LeaveWorld{}, nil
	case TypeRegister:
		return unmarshal(&Register{})
	case TypeLogout:
		return Logout{}, nil
	case TypeCreateCharacter:
		return unmarshal(&CreateCharacter{})
	case TypeDeleteCharacter:
		return unmarshal(&DeleteCharacter{})
	case TypeGetCharacters:
		return GetCharacters{}, nil
	case TypeSaveCharacter:
		return unmarshal(&SaveCharacter{})
	case TypeGetWorldInfo:
		return GetWorldInfo{}, nil
	case TypePing:
		return Ping{}, nil
	default:
		return Unknown{Type: msgType}, nil
	}
}
