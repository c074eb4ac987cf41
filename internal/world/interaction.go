package world

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// EffectKind enumerates the state changes an interaction can declare.
// Effects lower one-to-one into applied events, in declaration order.
type EffectKind string

const (
	EffectSetFlag           EffectKind = "set_flag"
	EffectClearFlag         EffectKind = "clear_flag"
	EffectGiveItem          EffectKind = "give_item"
	EffectRemoveItem        EffectKind = "remove_item"
	EffectRevealExit        EffectKind = "reveal_exit"
	EffectSetContainerState EffectKind = "set_container_state"
	EffectMoveNPC           EffectKind = "move_npc"
	EffectRemoveNPC         EffectKind = "remove_npc"
)

// Effect is one declared state change.
type Effect struct {
	Kind     EffectKind `json:"kind"`
	Flag     string     `json:"flag,omitempty"`
	Item     string     `json:"item,omitempty"`
	Exit     string     `json:"exit,omitempty"` // direction, paired with Location
	Location string     `json:"location,omitempty"`
	NPC      string     `json:"npc,omitempty"`
	Open     bool       `json:"open,omitempty"`
}

func (e Effect) validate(ctx string) error {
	switch e.Kind {
	case EffectSetFlag, EffectClearFlag:
		if e.Flag == "" {
			return fmt.Errorf("%s: flag is required", ctx)
		}
	case EffectGiveItem, EffectRemoveItem, EffectSetContainerState:
		if e.Item == "" {
			return fmt.Errorf("%s: item is required", ctx)
		}
	case EffectRevealExit:
		if e.Location == "" || e.Exit == "" {
			return fmt.Errorf("%s: location and exit are required", ctx)
		}
	case EffectMoveNPC:
		if e.NPC == "" || e.Location == "" {
			return fmt.Errorf("%s: npc and location are required", ctx)
		}
	case EffectRemoveNPC:
		if e.NPC == "" {
			return fmt.Errorf("%s: npc is required", ctx)
		}
	default:
		return fmt.Errorf("%s: unknown effect kind %q", ctx, e.Kind)
	}
	return nil
}

// Interaction is an authored mechanism: a verb applied to a target, possibly
// using a held item, that fires an ordered effect list when its requirements
// hold. Perception lists interactions descriptively; the validator decides
// whether one may fire.
type Interaction struct {
	Verb     string      `json:"verb"`
	Target   string      `json:"target"`             // noun the verb applies to (item or npc id)
	Item     string      `json:"item,omitempty"`     // held item the interaction consumes the use of
	Triggers []string    `json:"triggers,omitempty"` // exact phrases that also fire it
	Requires []Condition `json:"requires,omitempty"`
	Effects  []Effect    `json:"effects"`
	Response string      `json:"response,omitempty"` // narration fragment on success
}

func (ia *Interaction) validate(id string) error {
	el := errors.NewErrorList()

	if ia.Verb == "" {
		el.Add(fmt.Errorf("interaction %s: verb is required", id))
	}
	if ia.Target == "" {
		el.Add(fmt.Errorf("interaction %s: target is required", id))
	}
	if len(ia.Effects) == 0 {
		el.Add(fmt.Errorf("interaction %s: at least one effect is required", id))
	}
	for _, c := range ia.Requires {
		if err := c.Validate(); err != nil {
			el.Add(fmt.Errorf("interaction %s: %w", id, err))
		}
	}
	for i, eff := range ia.Effects {
		el.Add(eff.validate(fmt.Sprintf("interaction %s: effect %d", id, i)))
	}

	return el.Err()
}
