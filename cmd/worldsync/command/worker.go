package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-service"
	"github.com/pixil98/go-worldsync/internal/dispatch"
	"github.com/pixil98/go-worldsync/internal/driver"
	"github.com/pixil98/go-worldsync/internal/game"
	"github.com/pixil98/go-worldsync/internal/session"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Create the asset stores
	stores, err := cfg.Storage.BuildStores()
	if err != nil {
		return nil, err
	}

	// Build the world, resuming from the last snapshot if one exists
	worldState := cfg.World.BuildState()
	if snap := stores.World.Get("world"); snap != nil {
		worldState.Restore(snap)
	}

	registry := session.NewRegistry()

	workers := service.WorkerList{}

	// The NATS server is optional; when enabled, broadcasts are mirrored
	// onto its subjects.
	var dispatchOpts []dispatch.DispatcherOpt
	if cfg.Nats.Enabled {
		natsServer, err := cfg.Nats.buildNatsServer()
		if err != nil {
			return nil, fmt.Errorf("creating nats server: %w", err)
		}
		workers["nats"] = natsServer
		dispatchOpts = append(dispatchOpts, dispatch.WithEvents(natsServer))
	}

	dispatcher := dispatch.NewDispatcher(registry, dispatchOpts...)

	router := game.NewRouter(registry, worldState, stores.Players, stores.Characters, stores.World,
		game.WithSessionTimeout(cfg.World.sessionTimeout()),
		game.WithBroadcastInterval(cfg.World.broadcastInterval()),
	)

	// Setup the world driver
	var driverOpts []driver.WorldDriverOpt
	if cfg.TickInterval != "" {
		d, err := time.ParseDuration(cfg.TickInterval)
		if err != nil {
			return nil, fmt.Errorf("parsing tick_interval: %w", err)
		}
		driverOpts = append(driverOpts, driver.WithTickLength(d))
	}
	workers["driver"] = driver.NewWorldDriver([]driver.Manager{
		game.NewTicker(router, dispatcher),
	}, driverOpts...)

	workers["listener"] = cfg.Listener.BuildListener(router, dispatcher)

	return workers, nil
}
