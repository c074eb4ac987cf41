package session

import (
	"fmt"
	"slices"
	"time"

	"github.com/pixil98/go-errors"
)

// Status is the lifecycle of a session. Terminal statuses never revert.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
)

// State is the full mutable state of one session. It is owned exclusively
// by that session: the Manager guarantees at most one in-flight turn.
//
// Mutation goes through the methods below so the invariants hold: the
// visited set is append-only, the inventory is a set, and nothing changes
// once the status is terminal.
type State struct {
	ID              string            `json:"session_id"`
	WorldID         string            `json:"world_id"`
	Location        string            `json:"current_location"`
	Inventory       []string          `json:"inventory"`
	Flags           map[string]bool   `json:"flags"`
	Visited         []string          `json:"visited_locations"`
	ContainerStates map[string]bool   `json:"container_states"`
	Taken           []string          `json:"taken_items"`
	NPCLocations    map[string]string `json:"npc_locations,omitempty"` // override of base placement
	RemovedNPCs     []string          `json:"removed_npcs,omitempty"`
	RevealedExits   []string          `json:"revealed_exits,omitempty"` // "<location>/<direction>"
	TurnCount       int               `json:"turn_count"`
	Status          Status            `json:"status"`
	LastActive      time.Time         `json:"last_active"`
}

// New creates a fresh in-progress state at the given start location, with
// the start already recorded as visited.
func New(id, worldID, start string) *State {
	return &State{
		ID:              id,
		WorldID:         worldID,
		Location:        start,
		Inventory:       []string{},
		Flags:           map[string]bool{},
		Visited:         []string{start},
		ContainerStates: map[string]bool{},
		Taken:           []string{},
		Status:          StatusInProgress,
		LastActive:      time.Now(),
	}
}

// Validate satisfies storage.ValidatingSpec so states can be persisted
// through the same asset store as world content.
func (s *State) Validate() error {
	el := errors.NewErrorList()

	if s.ID == "" {
		el.Add(fmt.Errorf("session_id is required"))
	}
	if s.WorldID == "" {
		el.Add(fmt.Errorf("world_id is required"))
	}
	if s.Location == "" {
		el.Add(fmt.Errorf("current_location is required"))
	}
	switch s.Status {
	case StatusInProgress, StatusWon, StatusLost:
	default:
		el.Add(fmt.Errorf("unknown status %q", s.Status))
	}
	if s.TurnCount < 0 {
		el.Add(fmt.Errorf("turn_count must not be negative"))
	}

	return el.Err()
}

// Terminal reports whether the session has ended.
func (s *State) Terminal() bool {
	return s.Status != StatusInProgress
}

// --- world.StateView ---

func (s *State) HasFlag(name string) bool {
	return s.Flags[name]
}

func (s *State) HasItem(id string) bool {
	return slices.Contains(s.Inventory, id)
}

func (s *State) CurrentLocation() string {
	return s.Location
}

func (s *State) ContainerOpen(id string) bool {
	return s.ContainerStates[id]
}

// --- derived lookups ---

// WasTaken reports whether the item has ever entered the inventory.
// A placed item stays invisible after it was taken, even if a later trade
// removed it from the inventory again.
func (s *State) WasTaken(id string) bool {
	return slices.Contains(s.Taken, id)
}

// NPCRemoved reports whether the npc has been flagged removed.
func (s *State) NPCRemoved(id string) bool {
	return slices.Contains(s.RemovedNPCs, id)
}

// NPCLocation returns the npc's effective location: the per-session
// override when one exists, otherwise the base placement.
func (s *State) NPCLocation(id, base string) string {
	if loc, ok := s.NPCLocations[id]; ok {
		return loc
	}
	return base
}

// ExitRevealed reports whether a hidden exit has been revealed.
func (s *State) ExitRevealed(location, direction string) bool {
	return slices.Contains(s.RevealedExits, exitKey(location, direction))
}

func exitKey(location, direction string) string {
	return location + "/" + direction
}

// --- mutators ---

// SetFlag sets or clears a flag.
func (s *State) SetFlag(name string, value bool) {
	if s.Terminal() {
		return
	}
	if s.Flags == nil {
		s.Flags = map[string]bool{}
	}
	if value {
		s.Flags[name] = true
	} else {
		delete(s.Flags, name)
	}
}

// AddItem puts an item in the inventory and records it as taken.
// Duplicates are ignored; the inventory is a set.
func (s *State) AddItem(id string) {
	if s.Terminal() {
		return
	}
	if !slices.Contains(s.Inventory, id) {
		s.Inventory = append(s.Inventory, id)
	}
	if !slices.Contains(s.Taken, id) {
		s.Taken = append(s.Taken, id)
	}
}

// RemoveItem removes an item from the inventory. The taken record stays.
func (s *State) RemoveItem(id string) {
	if s.Terminal() {
		return
	}
	s.Inventory = slices.DeleteFunc(s.Inventory, func(v string) bool { return v == id })
}

// MoveTo changes the current location and appends to the visited set.
// Visited entries are never removed.
func (s *State) MoveTo(location string) {
	if s.Terminal() {
		return
	}
	s.Location = location
	if !slices.Contains(s.Visited, location) {
		s.Visited = append(s.Visited, location)
	}
}

// SetContainer records a container as open or closed.
func (s *State) SetContainer(id string, open bool) {
	if s.Terminal() {
		return
	}
	if s.ContainerStates == nil {
		s.ContainerStates = map[string]bool{}
	}
	s.ContainerStates[id] = open
}

// RevealExit marks a hidden exit as revealed.
func (s *State) RevealExit(location, direction string) {
	if s.Terminal() {
		return
	}
	key := exitKey(location, direction)
	if !slices.Contains(s.RevealedExits, key) {
		s.RevealedExits = append(s.RevealedExits, key)
	}
}

// MoveNPC overrides an npc's location for this session.
func (s *State) MoveNPC(id, location string) {
	if s.Terminal() {
		return
	}
	if s.NPCLocations == nil {
		s.NPCLocations = map[string]string{}
	}
	s.NPCLocations[id] = location
}

// RemoveNPC flags an npc as removed for this session.
func (s *State) RemoveNPC(id string) {
	if s.Terminal() {
		return
	}
	if !slices.Contains(s.RemovedNPCs, id) {
		s.RemovedNPCs = append(s.RemovedNPCs, id)
	}
}

// BeginTurn increments the turn counter. It is called exactly once per
// submitted action, on entry, before any failure branch.
func (s *State) BeginTurn() {
	if s.Terminal() {
		return
	}
	s.TurnCount++
	s.LastActive = time.Now()
}

// Finish moves the session to a terminal status. Once terminal it stays.
func (s *State) Finish(st Status) {
	if s.Terminal() {
		return
	}
	s.Status = st
}

// Clone returns a deep copy, used for reads that must not observe a turn
// in progress.
func (s *State) Clone() *State {
	c := *s
	c.Inventory = slices.Clone(s.Inventory)
	c.Visited = slices.Clone(s.Visited)
	c.Taken = slices.Clone(s.Taken)
	c.RemovedNPCs = slices.Clone(s.RemovedNPCs)
	c.RevealedExits = slices.Clone(s.RevealedExits)
	c.Flags = make(map[string]bool, len(s.Flags))
	for k, v := range s.Flags {
		c.Flags[k] = v
	}
	c.ContainerStates = make(map[string]bool, len(s.ContainerStates))
	for k, v := range s.ContainerStates {
		c.ContainerStates[k] = v
	}
	if s.NPCLocations != nil {
		c.NPCLocations = make(map[string]string, len(s.NPCLocations))
		for k, v := range s.NPCLocations {
			c.NPCLocations[k] = v
		}
	}
	return &c
}
