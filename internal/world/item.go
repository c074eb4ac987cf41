package world

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// Item is something a session can see, examine, and (when portable) carry.
// Placement is owned by the location; the definition here is global to the
// world so the same item can be granted by an interaction instead of being
// picked up.
type Item struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Portable    bool        `json:"portable,omitempty"`
	Container   bool        `json:"container,omitempty"`
	StartsOpen  bool        `json:"starts_open,omitempty"`
	Conditions  []Condition `json:"conditions,omitempty"`   // gate: unmet -> condition_not_met
	HiddenUntil *Condition  `json:"hidden_until,omitempty"` // placement: unmet -> hidden
}

func (i *Item) validate(id string) error {
	el := errors.NewErrorList()

	if i.Name == "" {
		el.Add(fmt.Errorf("item %s: name is required", id))
	}
	for _, c := range i.Conditions {
		if err := c.Validate(); err != nil {
			el.Add(fmt.Errorf("item %s: %w", id, err))
		}
	}
	if i.HiddenUntil != nil {
		if err := i.HiddenUntil.Validate(); err != nil {
			el.Add(fmt.Errorf("item %s: hidden_until: %w", id, err))
		}
	}
	if i.StartsOpen && !i.Container {
		el.Add(fmt.Errorf("item %s: starts_open requires container", id))
	}

	return el.Err()
}
