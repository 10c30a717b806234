package game

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/go-worldsync/internal/protocol"
)

func TestNewCharacterFromData(t *testing.T) {
	now := time.Now()

	char := NewCharacterFromData(&protocol.CharacterData{
		Name:          "Hero",
		CharacterType: "warrior",
		Level:         4,
		Health:        60,
		Position:      &protocol.Position{X: 1, Y: 2, Z: 3},
		Extra:         map[string]json.RawMessage{"guild": json.RawMessage(`"iron-pact"`)},
	}, "p1", now)

	testutil.AssertEqual(t, "name", char.Name, "Hero")
	testutil.AssertEqual(t, "owner", char.Owner, "p1")
	testutil.AssertEqual(t, "level", char.Level, 4)
	testutil.AssertEqual(t, "health", char.Health, 60)
	testutil.AssertEqual(t, "position", char.Position, protocol.Position{X: 1, Y: 2, Z: 3})
	testutil.AssertEqual(t, "extra count", len(char.Extra), 1)
}

func TestNewCharacterFromData_Defaults(t *testing.T) {
	char := NewCharacterFromData(&protocol.CharacterData{Name: "Fresh"}, "p1", time.Now())

	testutil.AssertEqual(t, "default level", char.Level, 1)
	testutil.AssertEqual(t, "default health", char.Health, 100)
	testutil.AssertEqual(t, "origin position", char.Position, protocol.Position{})
	testutil.AssertEqual(t, "no extra", len(char.Extra), 0)
}

func TestCharacter_ActivateApplyRoundTrip(t *testing.T) {
	now := time.Now()
	char := &Character{Name: "Hero", Level: 2, Health: 50, Position: protocol.Position{X: 7}}

	ac := char.Activate("char-1", now)
	testutil.AssertEqual(t, "live id", ac.ID, "char-1")
	testutil.AssertEqual(t, "live position", ac.Position.X, 7.0)

	ac.Position = protocol.Position{X: 8}
	ac.Health = 45

	later := now.Add(time.Minute)
	char.ApplyActive(ac, later)
	testutil.AssertEqual(t, "stored position", char.Position.X, 8.0)
	testutil.AssertEqual(t, "stored health", char.Health, 45)
	testutil.AssertEqual(t, "last played", char.LastPlayed, later)
}

func TestCharacter_Info(t *testing.T) {
	char := &Character{Name: "Hero", CharacterType: "mage", Level: 3, Health: 90}

	info := char.Info("char-1")
	testutil.AssertEqual(t, "id", info.CharacterID, "char-1")
	testutil.AssertEqual(t, "name", info.Name, "Hero")
	testutil.AssertEqual(t, "type", info.CharacterType, "mage")
}

func TestCharacter_Validate(t *testing.T) {
	tests := map[string]struct {
		char   Character
		expErr bool
	}{
		"valid":           {Character{Name: "Hero"}, false},
		"missing name":    {Character{}, true},
		"negative level":  {Character{Name: "Hero", Level: -1}, true},
		"negative health": {Character{Name: "Hero", Health: -5}, true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.char.Validate()
			if tt.expErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
