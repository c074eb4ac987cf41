package world

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

// fakeState is a minimal StateView for gate evaluation tests
type fakeState struct {
	flags      map[string]bool
	items      map[string]bool
	location   string
	containers map[string]bool
}

func (f *fakeState) HasFlag(name string) bool     { return f.flags[name] }
func (f *fakeState) HasItem(id string) bool       { return f.items[id] }
func (f *fakeState) CurrentLocation() string      { return f.location }
func (f *fakeState) ContainerOpen(id string) bool { return f.containers[id] }

func TestParseCondition(t *testing.T) {
	tests := map[string]struct {
		input  string
		exp    Condition
		expErr bool
	}{
		"flag gate": {
			input: "requires_flag:statue_unlocked",
			exp:   Condition{Kind: ConditionFlag, Name: "statue_unlocked"},
		},
		"item gate": {
			input: "requires_item:brass_key",
			exp:   Condition{Kind: ConditionItem, Name: "brass_key"},
		},
		"location gate": {
			input: "requires_location:library",
			exp:   Condition{Kind: ConditionLocation, Name: "library"},
		},
		"container gate": {
			input: "requires_open:oak_chest",
			exp:   Condition{Kind: ConditionContainer, Name: "oak_chest"},
		},
		"unknown pattern": {
			input:  "needs_flag:whatever",
			expErr: true,
		},
		"bare word": {
			input:  "statue_unlocked",
			expErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseCondition(tt.input)
			if tt.expErr {
				if err == nil {
					t.Errorf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "condition", got, tt.exp)
		})
	}
}

func TestCondition_String_RoundTrip(t *testing.T) {
	inputs := []string{
		"requires_flag:door_open",
		"requires_item:lantern",
		"requires_location:attic",
		"requires_open:crate",
	}

	for _, in := range inputs {
		c, err := ParseCondition(in)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testutil.AssertEqual(t, in, c.String(), in)
	}
}

func TestCondition_Met(t *testing.T) {
	st := &fakeState{
		flags:      map[string]bool{"lever_pulled": true},
		items:      map[string]bool{"rope": true},
		location:   "cellar",
		containers: map[string]bool{"cabinet": true},
	}

	tests := map[string]struct {
		cond Condition
		exp  bool
	}{
		"flag set":         {Condition{Kind: ConditionFlag, Name: "lever_pulled"}, true},
		"flag unset":       {Condition{Kind: ConditionFlag, Name: "other"}, false},
		"item held":        {Condition{Kind: ConditionItem, Name: "rope"}, true},
		"item missing":     {Condition{Kind: ConditionItem, Name: "key"}, false},
		"right location":   {Condition{Kind: ConditionLocation, Name: "cellar"}, true},
		"wrong location":   {Condition{Kind: ConditionLocation, Name: "attic"}, false},
		"container open":   {Condition{Kind: ConditionContainer, Name: "cabinet"}, true},
		"container closed": {Condition{Kind: ConditionContainer, Name: "chest"}, false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "met", tt.cond.Met(st), tt.exp)
		})
	}
}

func TestFirstUnmet_DeclarationOrder(t *testing.T) {
	st := &fakeState{}

	conds := []Condition{
		{Kind: ConditionFlag, Name: "first"},
		{Kind: ConditionItem, Name: "second"},
	}

	unmet := FirstUnmet(conds, st)
	if unmet == nil {
		t.Fatal("expected an unmet condition")
	}
	testutil.AssertEqual(t, "first unmet", unmet.Name, "first")

	// Satisfy the first; the second is now reported
	st.flags = map[string]bool{"first": true}
	unmet = FirstUnmet(conds, st)
	if unmet == nil {
		t.Fatal("expected an unmet condition")
	}
	testutil.AssertEqual(t, "second unmet", unmet.Name, "second")
}

func TestAllMet_EmptyList(t *testing.T) {
	testutil.AssertEqual(t, "empty gates", AllMet(nil, &fakeState{}), true)
}
