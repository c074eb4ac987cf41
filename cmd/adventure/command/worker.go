package command

import (
	"context"
	"fmt"
	"time"

	"github.com/pixil98/go-adventure/internal/driver"
	"github.com/pixil98/go-adventure/internal/engine"
	"github.com/pixil98/go-adventure/internal/listener"
	"github.com/pixil98/go-adventure/internal/messaging"
	"github.com/pixil98/go-adventure/internal/session"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Load the world definitions
	worlds, err := cfg.Storage.BuildWorldStore()
	if err != nil {
		return nil, fmt.Errorf("loading worlds: %w", err)
	}
	if worlds.Get(cfg.Game.DefaultWorld) == nil {
		return nil, fmt.Errorf("default world %q not found", cfg.Game.DefaultWorld)
	}

	// Set up session persistence
	sessionStore, err := cfg.Storage.BuildSessionStore()
	if err != nil {
		return nil, fmt.Errorf("loading sessions: %w", err)
	}
	var mgrOpts []session.ManagerOpt
	if cfg.Game.IdleTimeout != "" {
		d, err := time.ParseDuration(cfg.Game.IdleTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing session_idle_timeout: %w", err)
		}
		mgrOpts = append(mgrOpts, session.WithIdleTimeout(d))
	}
	sessions := session.NewManager(sessionStore, mgrOpts...)

	// Create the embedded message broker
	nats, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	// Set up the generative backend, if configured
	backend, err := cfg.Model.buildBackend(context.Background())
	if err != nil {
		return nil, fmt.Errorf("creating model backend: %w", err)
	}

	eng := engine.New(
		worlds,
		sessions,
		cfg.Model.buildParser(backend),
		cfg.Model.buildNarrator(backend),
		engine.WithPublisher(messaging.NewTurnPublisher(nats)),
	)

	// Create Listeners
	cm := listener.NewConnectionManager(eng, cfg.Game.DefaultWorld)
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		lst, err := l.BuildListener(cm)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = lst
	}

	// Session upkeep runs on the tick loop
	tick, err := time.ParseDuration(cfg.TickInterval)
	if err != nil {
		return nil, fmt.Errorf("parsing tick_interval: %w", err)
	}
	drv := driver.NewDriver([]driver.Manager{sessions}, driver.WithTickLength(tick))

	return service.WorkerList{
		"nats":      nats,
		"driver":    drv,
		"listeners": &listeners,
	}, nil
}
