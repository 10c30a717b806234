package game

import (
	"context"
	"time"

	"github.com/pixil98/go-worldsync/internal/dispatch"
)

// Sink consumes the directives a tick produces.
type Sink interface {
	Dispatch(ctx context.Context, dirs []dispatch.Directive) error
}

// Ticker adapts the router's periodic pass to the driver's Manager
// interface.
type Ticker struct {
	router *Router
	sink   Sink
}

func NewTicker(router *Router, sink Sink) *Ticker {
	return &Ticker{router: router, sink: sink}
}

func (t *Ticker) Tick(ctx context.Context) error {
	return t.sink.Dispatch(ctx, t.router.Tick(time.Now()))
}
