package world

import (
	"fmt"
	"strings"
)

// ConditionKind enumerates the requirement types a gate can express.
type ConditionKind string

const (
	ConditionFlag      ConditionKind = "flag"
	ConditionItem      ConditionKind = "item"
	ConditionLocation  ConditionKind = "location"
	ConditionContainer ConditionKind = "container"
)

// Authored prefixes for gate strings in world content.
const (
	prefixFlag      = "requires_flag:"
	prefixItem      = "requires_item:"
	prefixLocation  = "requires_location:"
	prefixContainer = "requires_open:"
)

// StateView is the read-only slice of session state that gates are
// evaluated against. session.State satisfies it.
type StateView interface {
	HasFlag(name string) bool
	HasItem(id string) bool
	CurrentLocation() string
	ContainerOpen(id string) bool
}

// Condition is a single gating requirement. World content authors it as a
// string pattern ("requires_flag:statue_unlocked"); it unmarshals into a
// tagged value so evaluation is exhaustive over kinds instead of
// re-matching strings at turn time.
type Condition struct {
	Kind ConditionKind
	Name string
}

// ParseCondition parses an authored gate string.
func ParseCondition(s string) (Condition, error) {
	switch {
	case strings.HasPrefix(s, prefixFlag):
		return Condition{Kind: ConditionFlag, Name: s[len(prefixFlag):]}, nil
	case strings.HasPrefix(s, prefixItem):
		return Condition{Kind: ConditionItem, Name: s[len(prefixItem):]}, nil
	case strings.HasPrefix(s, prefixLocation):
		return Condition{Kind: ConditionLocation, Name: s[len(prefixLocation):]}, nil
	case strings.HasPrefix(s, prefixContainer):
		return Condition{Kind: ConditionContainer, Name: s[len(prefixContainer):]}, nil
	default:
		return Condition{}, fmt.Errorf("unknown gate pattern %q", s)
	}
}

func (c *Condition) UnmarshalText(text []byte) error {
	parsed, err := ParseCondition(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Condition) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// String renders the condition back in its authored form.
func (c Condition) String() string {
	switch c.Kind {
	case ConditionFlag:
		return prefixFlag + c.Name
	case ConditionItem:
		return prefixItem + c.Name
	case ConditionLocation:
		return prefixLocation + c.Name
	case ConditionContainer:
		return prefixContainer + c.Name
	default:
		return fmt.Sprintf("unknown:%s", c.Name)
	}
}

// Met reports whether the requirement holds for the given state.
func (c Condition) Met(s StateView) bool {
	switch c.Kind {
	case ConditionFlag:
		return s.HasFlag(c.Name)
	case ConditionItem:
		return s.HasItem(c.Name)
	case ConditionLocation:
		return s.CurrentLocation() == c.Name
	case ConditionContainer:
		return s.ContainerOpen(c.Name)
	default:
		return false
	}
}

func (c Condition) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("gate name is required")
	}
	switch c.Kind {
	case ConditionFlag, ConditionItem, ConditionLocation, ConditionContainer:
		return nil
	default:
		return fmt.Errorf("unknown gate kind %q", c.Kind)
	}
}

// AllMet reports whether every condition holds. An empty list is always met.
func AllMet(conds []Condition, s StateView) bool {
	for _, c := range conds {
		if !c.Met(s) {
			return false
		}
	}
	return true
}

// FirstUnmet returns the first condition in declaration order that does not
// hold, or nil when all are satisfied.
func FirstUnmet(conds []Condition, s StateView) *Condition {
	for i := range conds {
		if !conds[i].Met(s) {
			return &conds[i]
		}
	}
	return nil
}
