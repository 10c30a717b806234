package driver

import (
	"context"
	"time"
)

const (
	DefaultTickLength = time.Second
)

type Manager interface {
	Tick(context.Context) error
}

// WorldDriver runs every manager's periodic pass on a fixed cadence. The
// world tick is wall-clock driven, not per-datagram, so it runs as its own
// worker beside the listener.
type WorldDriver struct {
	tickLength time.Duration
	managers   []Manager
}

func NewWorldDriver(managers []Manager, opts ...WorldDriverOpt) *WorldDriver {
	d := &WorldDriver{
		tickLength: DefaultTickLength,
		managers:   managers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *WorldDriver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := d.Tick(ctx)
			if err != nil {
				return err
			}
		}
	}
}

func (d *WorldDriver) Tick(ctx context.Context) error {
	for _, m := range d.managers {
		if err := m.Tick(ctx); err != nil {
			return err
		}
	}
	return nil
}
