package world

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// NPC is a character with a base placement. Its effective location may be
// overridden per-session by move_npc events; the base here never mutates.
type NPC struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	Conditions  []Condition `json:"conditions,omitempty"`
}

func (n *NPC) validate(id string) error {
	el := errors.NewErrorList()

	if n.Name == "" {
		el.Add(fmt.Errorf("npc %s: name is required", id))
	}
	if n.Location == "" {
		el.Add(fmt.Errorf("npc %s: location is required", id))
	}
	for _, c := range n.Conditions {
		if err := c.Validate(); err != nil {
			el.Add(fmt.Errorf("npc %s: %w", id, err))
		}
	}

	return el.Err()
}
