package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-worldsync/internal/dispatch"
	"github.com/pixil98/go-worldsync/internal/game"
	"github.com/pixil98/go-worldsync/internal/listener"
)

type ListenerConfig struct {
	Host       string `json:"host,omitempty"`
	Port       uint16 `json:"port"`
	BufferSize int    `json:"buffer_size,omitempty"`
}

func (cl *ListenerConfig) Validate() error {
	el := errors.NewErrorList()

	if cl.Port == 0 {
		el.Add(fmt.Errorf("port must be set to a positive integer"))
	}
	if cl.BufferSize < 0 {
		el.Add(fmt.Errorf("buffer_size cannot be negative"))
	}

	return el.Err()
}

func (cl *ListenerConfig) BuildListener(router *game.Router, dispatcher *dispatch.Dispatcher) *listener.UDPListener {
	host := cl.Host
	if host == "" {
		host = "0.0.0.0"
	}
	return listener.NewUDPListener(host, cl.Port, cl.BufferSize, router, dispatcher)
}
