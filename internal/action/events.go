// Package action validates intents against the current perception snapshot
// and lowers them into ordered, atomic state-mutating events.
package action

import (
	"github.com/pixil98/go-adventure/internal/session"
	"github.com/pixil98/go-adventure/internal/world"
)

// EventKind enumerates the atomic state mutations.
type EventKind string

const (
	EventSetFlag           EventKind = "set_flag"
	EventClearFlag         EventKind = "clear_flag"
	EventGiveItem          EventKind = "give_item"
	EventRemoveItem        EventKind = "remove_item"
	EventMoveToLocation    EventKind = "move_to_location"
	EventSetContainerState EventKind = "set_container_state"
	EventRevealExit        EventKind = "reveal_exit"
	EventMoveNPC           EventKind = "move_npc"
	EventRemoveNPC         EventKind = "remove_npc"
)

// Event is one atomic mutation. Events are produced as an ordered sequence
// and applied strictly in order; later events in a turn may depend on
// earlier ones.
type Event struct {
	Kind     EventKind `json:"kind"`
	Flag     string    `json:"flag,omitempty"`
	Item     string    `json:"item,omitempty"`
	Location string    `json:"location,omitempty"`
	Exit     string    `json:"exit,omitempty"` // direction, paired with Location
	NPC      string    `json:"npc,omitempty"`
	Open     bool      `json:"open,omitempty"`
}

// Apply mutates the session state with each event in order. Once the
// status is terminal every mutation is a no-op; the state mutators enforce
// that themselves.
func Apply(events []Event, st *session.State) {
	for _, e := range events {
		switch e.Kind {
		case EventSetFlag:
			st.SetFlag(e.Flag, true)
		case EventClearFlag:
			st.SetFlag(e.Flag, false)
		case EventGiveItem:
			st.AddItem(e.Item)
		case EventRemoveItem:
			st.RemoveItem(e.Item)
		case EventMoveToLocation:
			st.MoveTo(e.Location)
		case EventSetContainerState:
			st.SetContainer(e.Item, e.Open)
		case EventRevealExit:
			st.RevealExit(e.Location, e.Exit)
		case EventMoveNPC:
			st.MoveNPC(e.NPC, e.Location)
		case EventRemoveNPC:
			st.RemoveNPC(e.NPC)
		}
	}
}

// fromEffect lowers one declared interaction effect into an event.
func fromEffect(eff world.Effect) Event {
	switch eff.Kind {
	case world.EffectSetFlag:
		return Event{Kind: EventSetFlag, Flag: eff.Flag}
	case world.EffectClearFlag:
		return Event{Kind: EventClearFlag, Flag: eff.Flag}
	case world.EffectGiveItem:
		return Event{Kind: EventGiveItem, Item: eff.Item}
	case world.EffectRemoveItem:
		return Event{Kind: EventRemoveItem, Item: eff.Item}
	case world.EffectRevealExit:
		return Event{Kind: EventRevealExit, Location: eff.Location, Exit: eff.Exit}
	case world.EffectSetContainerState:
		return Event{Kind: EventSetContainerState, Item: eff.Item, Open: eff.Open}
	case world.EffectMoveNPC:
		return Event{Kind: EventMoveNPC, NPC: eff.NPC, Location: eff.Location}
	case world.EffectRemoveNPC:
		return Event{Kind: EventRemoveNPC, NPC: eff.NPC}
	default:
		return Event{}
	}
}

// EvaluateGoals checks the world's terminal conditions against the state
// and moves the status when one holds. Victory is checked before defeat.
// It returns true when the session ended this call.
func EvaluateGoals(w *world.World, st *session.State) bool {
	if st.Terminal() {
		return false
	}
	if w.Victory.Met(st) {
		st.Finish(session.StatusWon)
		return true
	}
	if w.Defeat.Met(st) {
		st.Finish(session.StatusLost)
		return true
	}
	return false
}
