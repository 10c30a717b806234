// Package protocol defines the UDP wire format: one UTF-8 JSON object per
// datagram, no framing beyond the datagram boundary itself. Every message
// carries a type for routing and the sender's self-assigned client id.
package protocol

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// MaxDatagramSize is the largest payload this layer will produce or accept.
// It stays under a typical MTU; nothing here fragments or reassembles.
const MaxDatagramSize = 1400

// Message type identifiers. The character_move and select_character forms
// are aliases kept for clients speaking the older protocol dialect.
const (
	TypeClientInit       = "client_init"
	TypeClientDisconnect = "client_disconnect"
	TypeHeartbeat        = "heartbeat"
	TypeAuth             = "auth"
	TypeCharacterSelect  = "character_select"
	TypeJoinWorld        = "join_world"
	TypePositionUpdate   = "position_update"
	TypeChatMessage      = "chat_message"
	TypeLeaveWorld       = "leave_world"

	TypeCharacterMove   = "character_move"
	TypeSelectCharacter = "select_character"
	TypeRegister        = "register"
	TypeLogin           = "login"
	TypeLogout          = "logout"
	TypeCreateCharacter = "create_character"
	TypeDeleteCharacter = "delete_character"
	TypeGetCharacters   = "get_characters"
	TypeSaveCharacter   = "save_character"
	TypeGetWorldInfo    = "get_world_info"
	TypePing            = "ping"
)

// Timestamp is a wire timestamp. Clients send either a float epoch or an
// RFC3339 string; both decode. Everything we emit is a float epoch.
type Timestamp float64

func Now() Timestamp {
	return Timestamp(float64(time.Now().UnixNano()) / float64(time.Second))
}

func At(t time.Time) Timestamp {
	return Timestamp(float64(t.UnixNano()) / float64(time.Second))
}

func (t Timestamp) Time() time.Time {
	sec, frac := int64(t), float64(t)-float64(int64(t))
	return time.Unix(sec, int64(frac*float64(time.Second)))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		parsed, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return fmt.Errorf("parsing timestamp %q: %w", s, err)
		}
		*t = At(parsed)
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("parsing timestamp: %w", err)
	}
	*t = Timestamp(f)
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(t))
}

// Envelope is a decoded inbound datagram: routing fields plus exactly one
// typed payload variant. Payload is never nil after a successful Decode;
// unrecognized types decode to Unknown so the router can report them.
type Envelope struct {
	Type      string
	ClientID  string
	Timestamp Timestamp
	Payload   Payload
}

type rawEnvelope struct {
	Type      string    `json:"type"`
	ClientID  string    `json:"client_id"`
	Timestamp Timestamp `json:"timestamp"`
}

// Decode parses one datagram into an Envelope. A missing type or client_id
// is a protocol error: the reference clients always generate their own id
// up front, so the server never assigns one.
func Decode(data []byte) (*Envelope, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshalling envelope: %w", err)
	}

	if raw.Type == "" {
		return nil, fmt.Errorf("message has no type")
	}
	if raw.ClientID == "" {
		return nil, fmt.Errorf("message has no client_id")
	}

	payload, err := decodePayload(raw.Type, data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s payload: %w", raw.Type, err)
	}

	return &Envelope{
		Type:      raw.Type,
		ClientID:  raw.ClientID,
		Timestamp: raw.Timestamp,
		Payload:   payload,
	}, nil
}

// Encode marshals an outbound message. Directives carry typed response
// structs; this is the single place they become bytes.
func Encode(msg any) ([]byte, error) {
	b, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshalling message: %w", err)
	}
	return b, nil
}
