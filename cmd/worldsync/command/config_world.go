package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-worldsync/internal/world"
)

type WorldConfig struct {
	Name string `json:"name"`

	// UpdateInterval is how much wall-clock time passes between world
	// updates (one world minute each). Defaults to 1m.
	UpdateInterval string `json:"update_interval,omitempty"`

	// SessionTimeout is how long a client may stay silent before it is
	// treated as disconnected. Defaults to 30s.
	SessionTimeout string `json:"session_timeout,omitempty"`

	// PositionBroadcastInterval is the minimum spacing between rebroadcasts
	// of one sender's position. Defaults to 50ms.
	PositionBroadcastInterval string `json:"position_broadcast_interval,omitempty"`
}

func (c *WorldConfig) Validate() error {
	el := errors.NewErrorList()

	if c.Name == "" {
		el.Add(fmt.Errorf("name is required"))
	}

	for field, val := range map[string]string{
		"update_interval":             c.UpdateInterval,
		"session_timeout":             c.SessionTimeout,
		"position_broadcast_interval": c.PositionBroadcastInterval,
	} {
		if val == "" {
			continue
		}
		d, err := time.ParseDuration(val)
		if err != nil {
			el.Add(fmt.Errorf("parsing %s: %w", field, err))
		} else if d <= 0 {
			el.Add(fmt.Errorf("%s must be positive", field))
		}
	}

	return el.Err()
}

func (c *WorldConfig) updateInterval() time.Duration {
	return c.duration(c.UpdateInterval, time.Minute)
}

func (c *WorldConfig) sessionTimeout() time.Duration {
	return c.duration(c.SessionTimeout, 30*time.Second)
}

func (c *WorldConfig) broadcastInterval() time.Duration {
	return c.duration(c.PositionBroadcastInterval, 50*time.Millisecond)
}

func (c *WorldConfig) duration(val string, fallback time.Duration) time.Duration {
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return d
}

func (c *WorldConfig) BuildState() *world.State {
	return world.NewState(c.Name, c.updateInterval())
}
