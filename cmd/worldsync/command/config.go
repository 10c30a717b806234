package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

type Config struct {
	TickInterval string         `json:"tick_interval"`
	Listener     ListenerConfig `json:"listener"`
	Storage      StorageConfig  `json:"storage"`
	Nats         NatsConfig     `json:"nats"`
	World        WorldConfig    `json:"world"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.TickInterval != "" {
		d, err := time.ParseDuration(c.TickInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing tick_interval: %w", err))
		} else if d < 100*time.Millisecond {
			el.Add(fmt.Errorf("tick_interval must be at least 100ms"))
		}
	}

	el.Add(c.Listener.Validate())
	el.Add(c.Storage.Validate())
	el.Add(c.Nats.Validate())
	el.Add(c.World.Validate())

	return el.Err()
}
