package world

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// World is the immutable definition of one playable world. It is loaded
// once from content storage and shared read-only across every session.
type World struct {
	Name         string                  `json:"name"`
	Opening      string                  `json:"opening"`
	Start        string                  `json:"start_location"`
	Locations    map[string]*Location    `json:"locations"`
	Items        map[string]*Item        `json:"items"`
	NPCs         map[string]*NPC         `json:"npcs,omitempty"`
	Interactions map[string]*Interaction `json:"interactions,omitempty"`
	Victory      *Goal                   `json:"victory,omitempty"`
	Defeat       *Goal                   `json:"defeat,omitempty"`
}

// Location is a single place a session can occupy.
type Location struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Exits        map[string]*Exit  `json:"exits,omitempty"`        // direction -> exit
	Items        []string          `json:"items,omitempty"`        // item ids placed here
	NPCs         []string          `json:"npcs,omitempty"`         // npc ids based here
	Details      map[string]string `json:"details,omitempty"`      // scenery key -> text
	Interactions []string          `json:"interactions,omitempty"` // interaction ids usable here
}

// Exit leads from one location to another. A hidden exit is absent from
// perception entirely until a reveal_exit event has fired for it.
type Exit struct {
	Destination string      `json:"destination"`
	Conditions  []Condition `json:"conditions,omitempty"`
	Hidden      bool        `json:"hidden,omitempty"`
}

// Goal designates a terminal condition: the session must be at Location
// while holding every listed item and having every listed flag set.
type Goal struct {
	Location  string   `json:"location"`
	Items     []string `json:"items,omitempty"`
	Flags     []string `json:"flags,omitempty"`
	Narrative string   `json:"narrative,omitempty"` // authored ending text
}

// Met reports whether the goal holds for the given state.
func (g *Goal) Met(s StateView) bool {
	if g == nil {
		return false
	}
	if s.CurrentLocation() != g.Location {
		return false
	}
	for _, it := range g.Items {
		if !s.HasItem(it) {
			return false
		}
	}
	for _, f := range g.Flags {
		if !s.HasFlag(f) {
			return false
		}
	}
	return true
}

// Validate satisfies storage.ValidatingSpec. It checks the world in
// isolation; cross-reference checks live in CheckReferences so both run at
// load time and malformed content never reaches a turn.
func (w *World) Validate() error {
	el := errors.NewErrorList()

	if w.Name == "" {
		el.Add(fmt.Errorf("world name is required"))
	}
	if w.Start == "" {
		el.Add(fmt.Errorf("start_location is required"))
	}
	if len(w.Locations) == 0 {
		el.Add(fmt.Errorf("at least one location is required"))
	}

	for id, loc := range w.Locations {
		if loc == nil {
			el.Add(fmt.Errorf("location %s: empty definition", id))
			continue
		}
		if loc.Name == "" {
			el.Add(fmt.Errorf("location %s: name is required", id))
		}
		for dir, exit := range loc.Exits {
			if exit == nil || exit.Destination == "" {
				el.Add(fmt.Errorf("location %s: exit %s: destination is required", id, dir))
				continue
			}
			for _, c := range exit.Conditions {
				if err := c.Validate(); err != nil {
					el.Add(fmt.Errorf("location %s: exit %s: %w", id, dir, err))
				}
			}
		}
	}

	for id, item := range w.Items {
		if item == nil {
			el.Add(fmt.Errorf("item %s: empty definition", id))
			continue
		}
		el.Add(item.validate(id))
	}

	for id, npc := range w.NPCs {
		if npc == nil {
			el.Add(fmt.Errorf("npc %s: empty definition", id))
			continue
		}
		el.Add(npc.validate(id))
	}

	for id, ia := range w.Interactions {
		if ia == nil {
			el.Add(fmt.Errorf("interaction %s: empty definition", id))
			continue
		}
		el.Add(ia.validate(id))
	}

	el.Add(w.CheckReferences())

	return el.Err()
}

// CheckReferences verifies that every id mentioned anywhere in the world
// resolves to a defined entity.
func (w *World) CheckReferences() error {
	el := errors.NewErrorList()

	if w.Start != "" {
		if _, ok := w.Locations[w.Start]; !ok {
			el.Add(fmt.Errorf("start_location %q not defined", w.Start))
		}
	}

	for id, loc := range w.Locations {
		if loc == nil {
			continue
		}
		for dir, exit := range loc.Exits {
			if exit == nil {
				continue
			}
			if _, ok := w.Locations[exit.Destination]; !ok {
				el.Add(fmt.Errorf("location %s: exit %s: destination %q not defined", id, dir, exit.Destination))
			}
		}
		for _, it := range loc.Items {
			if _, ok := w.Items[it]; !ok {
				el.Add(fmt.Errorf("location %s: placed item %q not defined", id, it))
			}
		}
		for _, n := range loc.NPCs {
			if _, ok := w.NPCs[n]; !ok {
				el.Add(fmt.Errorf("location %s: placed npc %q not defined", id, n))
			}
		}
		for _, ia := range loc.Interactions {
			if _, ok := w.Interactions[ia]; !ok {
				el.Add(fmt.Errorf("location %s: interaction %q not defined", id, ia))
			}
		}
	}

	for id, ia := range w.Interactions {
		if ia == nil {
			continue
		}
		if ia.Item != "" {
			if _, ok := w.Items[ia.Item]; !ok {
				el.Add(fmt.Errorf("interaction %s: item %q not defined", id, ia.Item))
			}
		}
		for i, eff := range ia.Effects {
			el.Add(w.checkEffect(fmt.Sprintf("interaction %s: effect %d", id, i), eff))
		}
	}

	if w.Victory != nil {
		el.Add(w.checkGoal("victory", w.Victory))
	}
	if w.Defeat != nil {
		el.Add(w.checkGoal("defeat", w.Defeat))
	}

	return el.Err()
}

func (w *World) checkGoal(name string, g *Goal) error {
	el := errors.NewErrorList()
	if _, ok := w.Locations[g.Location]; !ok {
		el.Add(fmt.Errorf("%s: location %q not defined", name, g.Location))
	}
	for _, it := range g.Items {
		if _, ok := w.Items[it]; !ok {
			el.Add(fmt.Errorf("%s: item %q not defined", name, it))
		}
	}
	return el.Err()
}

func (w *World) checkEffect(ctx string, eff Effect) error {
	el := errors.NewErrorList()
	switch eff.Kind {
	case EffectGiveItem, EffectRemoveItem:
		if _, ok := w.Items[eff.Item]; !ok {
			el.Add(fmt.Errorf("%s: item %q not defined", ctx, eff.Item))
		}
	case EffectSetContainerState:
		if it, ok := w.Items[eff.Item]; !ok {
			el.Add(fmt.Errorf("%s: container %q not defined", ctx, eff.Item))
		} else if !it.Container {
			el.Add(fmt.Errorf("%s: item %q is not a container", ctx, eff.Item))
		}
	case EffectRevealExit:
		loc, ok := w.Locations[eff.Location]
		if !ok {
			el.Add(fmt.Errorf("%s: location %q not defined", ctx, eff.Location))
			break
		}
		exit, ok := loc.Exits[eff.Exit]
		if !ok {
			el.Add(fmt.Errorf("%s: exit %q not defined in location %q", ctx, eff.Exit, eff.Location))
		} else if !exit.Hidden {
			el.Add(fmt.Errorf("%s: exit %q is not hidden", ctx, eff.Exit))
		}
	case EffectMoveNPC:
		if _, ok := w.NPCs[eff.NPC]; !ok {
			el.Add(fmt.Errorf("%s: npc %q not defined", ctx, eff.NPC))
		}
		if _, ok := w.Locations[eff.Location]; !ok {
			el.Add(fmt.Errorf("%s: location %q not defined", ctx, eff.Location))
		}
	case EffectRemoveNPC:
		if _, ok := w.NPCs[eff.NPC]; !ok {
			el.Add(fmt.Errorf("%s: npc %q not defined", ctx, eff.NPC))
		}
	}
	return el.Err()
}

// Location returns the location definition for id, or nil.
func (w *World) Location(id string) *Location {
	return w.Locations[id]
}

// Item returns the item definition for id, or nil.
func (w *World) Item(id string) *Item {
	return w.Items[id]
}

// NPC returns the npc definition for id, or nil.
func (w *World) NPC(id string) *NPC {
	return w.NPCs[id]
}
