// Package perception computes what a session can currently see and reach.
// A snapshot is a pure function of the world definition and session state:
// it is recomputed every turn, owns nothing, and is discarded afterwards.
package perception

import (
	"sort"
	"strings"

	"github.com/pixil98/go-adventure/internal/session"
	"github.com/pixil98/go-adventure/internal/world"
)

// Reason codes. Exactly one is attached to every entity in the snapshot.
const (
	ReasonVisible    = "visible"
	ReasonAccessible = "accessible"
	ReasonTaken      = "taken"
	ReasonHidden     = "hidden"
	ReasonRemoved    = "removed"

	reasonConditionPrefix = "condition_not_met:"
	reasonLocationPrefix  = "wrong_location:"
)

// ConditionNotMet renders the item/npc gate failure reason.
func ConditionNotMet(name string) string {
	return reasonConditionPrefix + name
}

// WrongLocation renders the npc placement mismatch reason.
func WrongLocation(loc string) string {
	return reasonLocationPrefix + loc
}

// ItemView is one placed item annotated with visibility.
type ItemView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
	Reason  string `json:"reason"`
}

// NPCView is one placed npc annotated with visibility.
type NPCView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
	Reason  string `json:"reason"`
}

// ExitView is one exit annotated with accessibility. Hidden exits that have
// not been revealed are absent from the snapshot entirely; absence is the
// hidden state.
type ExitView struct {
	Direction   string `json:"direction"`
	Destination string `json:"destination"`
	Accessible  bool   `json:"accessible"`
	Reason      string `json:"reason"`
}

// InteractionView describes a mechanism available at the location. It is
// listed regardless of whether it can currently fire; the validator, not
// perception, decides that.
type InteractionView struct {
	ID       string         `json:"id"`
	Verb     string         `json:"verb"`
	Target   string         `json:"target"`
	Item     string         `json:"item,omitempty"`
	Triggers []string       `json:"triggers,omitempty"`
	Effects  []world.Effect `json:"effects"`
}

// Snapshot is the per-turn view of the current location.
type Snapshot struct {
	Location     string            `json:"location"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Exits        []ExitView        `json:"exits"`
	Items        []ItemView        `json:"items"`
	NPCs         []NPCView         `json:"npcs"`
	Interactions []InteractionView `json:"interactions"`
	Details      map[string]string `json:"details,omitempty"`
}

// Compute derives the snapshot for the session's current location.
// Deterministic: entities are ordered by direction or placement order.
func Compute(w *world.World, st *session.State) *Snapshot {
	loc := w.Location(st.Location)
	if loc == nil {
		// Load-time validation makes this unreachable; return an empty
		// snapshot rather than panicking on corrupt state.
		return &Snapshot{Location: st.Location}
	}

	snap := &Snapshot{
		Location:    st.Location,
		Name:        loc.Name,
		Description: loc.Description,
		Details:     loc.Details,
	}

	dirs := make([]string, 0, len(loc.Exits))
	for dir := range loc.Exits {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	for _, dir := range dirs {
		exit := loc.Exits[dir]
		if exit.Hidden && !st.ExitRevealed(st.Location, dir) {
			continue
		}
		snap.Exits = append(snap.Exits, exitView(dir, exit, st))
	}

	for _, id := range loc.Items {
		item := w.Item(id)
		if item == nil {
			continue
		}
		snap.Items = append(snap.Items, itemView(id, item, st))
	}

	for _, id := range loc.NPCs {
		npc := w.NPC(id)
		if npc == nil {
			continue
		}
		snap.NPCs = append(snap.NPCs, npcView(id, npc, st))
	}

	for _, id := range loc.Interactions {
		ia := w.Interactions[id]
		if ia == nil {
			continue
		}
		snap.Interactions = append(snap.Interactions, InteractionView{
			ID:       id,
			Verb:     ia.Verb,
			Target:   ia.Target,
			Item:     ia.Item,
			Triggers: ia.Triggers,
			Effects:  ia.Effects,
		})
	}

	return snap
}

// exitView checks requirements in declaration order and reports the first
// unmet one.
func exitView(dir string, exit *world.Exit, st *session.State) ExitView {
	v := ExitView{
		Direction:   dir,
		Destination: exit.Destination,
	}
	if unmet := world.FirstUnmet(exit.Conditions, st); unmet != nil {
		v.Reason = unmet.String()
		return v
	}
	v.Accessible = true
	v.Reason = ReasonAccessible
	return v
}

// itemView applies the reason priority order: taken, hidden,
// condition_not_met, visible.
func itemView(id string, item *world.Item, st *session.State) ItemView {
	v := ItemView{ID: id, Name: item.Name}
	switch {
	case st.WasTaken(id):
		v.Reason = ReasonTaken
	case item.HiddenUntil != nil && !item.HiddenUntil.Met(st):
		v.Reason = ReasonHidden
	default:
		if unmet := world.FirstUnmet(item.Conditions, st); unmet != nil {
			v.Reason = ConditionNotMet(unmet.Name)
			return v
		}
		v.Visible = true
		v.Reason = ReasonVisible
	}
	return v
}

// npcView applies the reason priority order: removed, wrong_location,
// condition_not_met, visible.
func npcView(id string, npc *world.NPC, st *session.State) NPCView {
	v := NPCView{ID: id, Name: npc.Name}
	switch {
	case st.NPCRemoved(id):
		v.Reason = ReasonRemoved
	case st.NPCLocation(id, npc.Location) != st.Location:
		v.Reason = WrongLocation(st.NPCLocation(id, npc.Location))
	default:
		if unmet := world.FirstUnmet(npc.Conditions, st); unmet != nil {
			v.Reason = ConditionNotMet(unmet.Name)
			return v
		}
		v.Visible = true
		v.Reason = ReasonVisible
	}
	return v
}

// --- lookups used by the parser and validator ---

// Noun is a visible entity the parser may resolve a target against.
type Noun struct {
	ID   string
	Name string
	Kind string // "item", "npc", "exit", "detail"
}

// VisibleNouns lists everything currently referencable, for parsing and for
// AI prompt context. Entities that are present but not visible are excluded.
func (s *Snapshot) VisibleNouns() []Noun {
	var nouns []Noun
	for _, it := range s.Items {
		if it.Visible {
			nouns = append(nouns, Noun{ID: it.ID, Name: it.Name, Kind: "item"})
		}
	}
	for _, n := range s.NPCs {
		if n.Visible {
			nouns = append(nouns, Noun{ID: n.ID, Name: n.Name, Kind: "npc"})
		}
	}
	for _, e := range s.Exits {
		nouns = append(nouns, Noun{ID: e.Direction, Name: e.Direction, Kind: "exit"})
	}
	for key := range s.Details {
		nouns = append(nouns, Noun{ID: key, Name: key, Kind: "detail"})
	}
	return nouns
}

// Exit returns the view for a direction, or nil. A hidden, unrevealed exit
// is not found here by construction.
func (s *Snapshot) Exit(direction string) *ExitView {
	for i := range s.Exits {
		if s.Exits[i].Direction == direction {
			return &s.Exits[i]
		}
	}
	return nil
}

// Item resolves an id or display name to its view, or nil.
func (s *Snapshot) Item(ref string) *ItemView {
	ref = strings.ToLower(ref)
	for i := range s.Items {
		if s.Items[i].ID == ref || strings.ToLower(s.Items[i].Name) == ref {
			return &s.Items[i]
		}
	}
	return nil
}

// NPC resolves an id or display name to its view, or nil.
func (s *Snapshot) NPC(ref string) *NPCView {
	ref = strings.ToLower(ref)
	for i := range s.NPCs {
		if s.NPCs[i].ID == ref || strings.ToLower(s.NPCs[i].Name) == ref {
			return &s.NPCs[i]
		}
	}
	return nil
}

// Detail resolves a scenery key, or returns "".
func (s *Snapshot) Detail(ref string) string {
	return s.Details[strings.ToLower(ref)]
}
