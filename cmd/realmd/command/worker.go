package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-realm/internal/driver"
	"github.com/pixil98/go-realm/internal/game"
	"github.com/pixil98/go-realm/internal/listener"
	"github.com/pixil98/go-realm/internal/messaging"
	"github.com/pixil98/go-realm/internal/player"
	"github.com/pixil98/go-realm/internal/session"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Packet bus
	natsServer, err := cfg.Nats.BuildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	// Durable stores
	chars, err := cfg.Storage.BuildCharacterStore()
	if err != nil {
		return nil, err
	}
	reg, err := cfg.Registry.BuildRegistry()
	if err != nil {
		return nil, fmt.Errorf("creating group registry: %w", err)
	}

	// Session registry and coordinator
	pm := player.NewManager(chars)
	coord, err := game.NewCoordinator(pm, messaging.NewPacketPublisher(natsServer),
		game.WithCharacterLookup(pm),
		game.WithGroupRegistry(reg),
		game.WithMixedFactions(cfg.Coordinator.AllowMixedFactions),
		game.WithGMGroups(cfg.Coordinator.AllowGMGroups),
	)
	if err != nil {
		return nil, fmt.Errorf("creating coordinator: %w", err)
	}
	pm.SetCoordinator(coord)

	// Create Listeners
	cm := listener.NewConnectionManager(pm, session.NewGateway(coord), natsServer)
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		listeners[fmt.Sprintf("listener-%d", i)] = l.BuildListener(cm)
	}

	// Setup the tick driver
	tickLength := driver.DefaultTickLength
	if cfg.TickInterval != "" {
		d, err := time.ParseDuration(cfg.TickInterval)
		if err != nil {
			return nil, fmt.Errorf("parsing tick_interval: %w", err)
		}
		tickLength = d
	}
	tickDriver := driver.NewTickDriver([]driver.Manager{
		pm,
		driver.NewSessionJanitor(coord, cfg.Coordinator.rollTimeout(), cfg.Coordinator.readyCheckTimeout()),
	}, driver.WithTickLength(tickLength))

	// Create a worker list
	return service.WorkerList{
		"nats":      natsServer,
		"players":   pm,
		"driver":    tickDriver,
		"listeners": &listeners,
	}, nil
}
