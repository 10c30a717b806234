package game

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pixil98/go-errors"
	"golang.org/x/crypto/bcrypt"
)

// defaultCredential seeds auto-created player records. The protocol performs
// no credential check; hashing just keeps a literal placeholder out of the
// store.
const defaultCredential = "changeme"

// Player is a stored player account, keyed by lowercase username.
type Player struct {
	// ID is the opaque player id echoed in auth responses.
	ID string `json:"id"`

	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Email        string `json:"email,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	LastLogin time.Time `json:"last_login,omitempty"`
}

// NewPlayer creates a player record. An empty password falls back to the
// placeholder credential; this path exists because auth auto-creates
// unknown players in a cooperative-client world.
func NewPlayer(username, password, email string, now time.Time) (*Player, error) {
	if password == "" {
		password = defaultCredential
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	return &Player{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		Email:        email,
		CreatedAt:    now,
	}, nil
}

// CheckPassword verifies a credential against the stored hash. Only the
// legacy login handler calls this; auth trusts the username outright.
func (p *Player) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) == nil
}

func (p *Player) Validate() error {
	el := errors.NewErrorList()

	if p.ID == "" {
		el.Add(fmt.Errorf("id must be set"))
	}
	if p.Username == "" {
		el.Add(fmt.Errorf("username must be set"))
	}

	return el.Err()
}
