package protocol

import (
	"math"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func TestDecode(t *testing.T) {
	env, err := Decode([]byte(`{"type":"auth","client_id":"c1","timestamp":1700000000.5,"username":"hero","password":"pw"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "type", env.Type, TypeAuth)
	testutil.AssertEqual(t, "client id", env.ClientID, "c1")

	auth, ok := env.Payload.(*Auth)
	if !ok {
		t.Fatalf("expected *Auth payload, got %T", env.Payload)
	}
	testutil.AssertEqual(t, "username", auth.Username, "hero")
	testutil.AssertEqual(t, "password", auth.Password, "pw")
}

func TestDecode_Errors(t *testing.T) {
	tests := map[string]string{
		"not json":          `not json at all`,
		"missing type":      `{"client_id":"c1"}`,
		"missing client_id": `{"type":"heartbeat"}`,
		"empty object":      `{}`,
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(data))
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestDecode_UnknownType(t *testing.T) {
	env, err := Decode([]byte(`{"type":"teleport","client_id":"c1"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	unknown, ok := env.Payload.(Unknown)
	if !ok {
		t.Fatalf("expected Unknown payload, got %T", env.Payload)
	}
	testutil.AssertEqual(t, "unknown type", unknown.Type, "teleport")
}

func TestDecode_TypeAliases(t *testing.T) {
	env, err := Decode([]byte(`{"type":"select_character","client_id":"c1","character_id":"char-1"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := env.Payload.(*CharacterSelect); !ok {
		t.Fatalf("expected *CharacterSelect payload, got %T", env.Payload)
	}

	env, err = Decode([]byte(`{"type":"character_move","client_id":"c1","x":1,"y":2,"z":3}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := env.Payload.(*PositionUpdate); !ok {
		t.Fatalf("expected *PositionUpdate payload, got %T", env.Payload)
	}
}

func TestTimestamp_UnmarshalFloat(t *testing.T) {
	env, err := Decode([]byte(`{"type":"ping","client_id":"c1","timestamp":1700000000.25}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "timestamp", float64(env.Timestamp), 1700000000.25)
}

func TestTimestamp_UnmarshalRFC3339(t *testing.T) {
	env, err := Decode([]byte(`{"type":"ping","client_id":"c1","timestamp":"2023-11-14T22:13:20Z"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "timestamp", float64(env.Timestamp), 1700000000.0)
}

func TestTimestamp_UnmarshalBadString(t *testing.T) {
	_, err := Decode([]byte(`{"type":"ping","client_id":"c1","timestamp":"yesterday"}`))
	if err == nil {
		t.Error("expected error for unparseable timestamp")
	}
}

func TestTimestamp_RoundTrip(t *testing.T) {
	orig := time.Date(2023, 11, 14, 22, 13, 20, 500_000_000, time.UTC)
	ts := At(orig)

	got := ts.Time()
	if math.Abs(float64(got.Sub(orig))) > float64(time.Millisecond) {
		t.Errorf("round trip drifted: %v vs %v", got, orig)
	}
}
