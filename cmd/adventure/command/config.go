package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

type Config struct {
	TickInterval string           `json:"tick_interval"`
	Listeners    []ListenerConfig `json:"listeners"`
	Storage      StorageConfig    `json:"storage"`
	Nats         NatsConfig       `json:"nats"`
	Model        ModelConfig      `json:"model"`
	Game         GameConfig       `json:"game"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	d, err := time.ParseDuration(c.TickInterval)
	if err != nil {
		el.Add(fmt.Errorf("parsing tick_interval: %w", err))
	} else if d < time.Second {
		el.Add(fmt.Errorf("tick_interval must be at least 1 second"))
	}

	for i, l := range c.Listeners {
		err := l.validate()
		if err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
		}
	}

	el.Add(c.Storage.validate())
	el.Add(c.Nats.validate())
	el.Add(c.Model.validate())
	el.Add(c.Game.validate())

	return el.Err()
}

type GameConfig struct {
	DefaultWorld string `json:"default_world"`
	IdleTimeout  string `json:"session_idle_timeout"`
}

func (c *GameConfig) validate() error {
	el := errors.NewErrorList()

	if c.DefaultWorld == "" {
		el.Add(fmt.Errorf("default_world is required"))
	}
	if c.IdleTimeout != "" {
		_, err := time.ParseDuration(c.IdleTimeout)
		if err != nil {
			el.Add(fmt.Errorf("parsing session_idle_timeout: %w", err))
		}
	}

	return el.Err()
}
