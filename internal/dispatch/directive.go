// Package dispatch turns the router's declarative output into datagram
// sends. Everything here is fire and forget: no acknowledgement, no retry,
// packet loss is a property of the transport.
package dispatch

// Target selects who a directive is for.
type Target int

const (
	// TargetClient sends to one session's last-seen address.
	TargetClient Target = iota
	// TargetBroadcast sends to every session with an active character,
	// minus the exclusion.
	TargetBroadcast
)

// Directive is one instruction from the game logic: send Data (a typed
// response struct) to a target. Kind is the wire message type, used as the
// event-mirror subject suffix.
type Directive struct {
	Target   Target
	ClientID string
	Exclude  string
	Kind     string
	Data     any
}

// ToClient builds a directive targeting a single session.
func ToClient(clientID, kind string, data any) Directive {
	return Directive{Target: TargetClient, ClientID: clientID, Kind: kind, Data: data}
}

// Broadcast builds a directive for everyone in the world. exclude may be
// empty when the sender should hear it too.
func Broadcast(kind string, data any, exclude string) Directive {
	return Directive{Target: TargetBroadcast, Kind: kind, Data: data, Exclude: exclude}
}
