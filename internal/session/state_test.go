package session

import (
	"testing"

	"github.com/pixil98/go-testutil"
)

func TestNew(t *testing.T) {
	st := New("abc", "manor", "foyer")

	testutil.AssertEqual(t, "id", st.ID, "abc")
	testutil.AssertEqual(t, "world", st.WorldID, "manor")
	testutil.AssertEqual(t, "location", st.Location, "foyer")
	testutil.AssertEqual(t, "status", st.Status, StatusInProgress)
	testutil.AssertEqual(t, "turn count", st.TurnCount, 0)
	testutil.AssertEqual(t, "visited", len(st.Visited), 1)
	testutil.AssertEqual(t, "start visited", st.Visited[0], "foyer")
}

func TestState_AddItem(t *testing.T) {
	st := New("abc", "manor", "foyer")

	st.AddItem("key")
	st.AddItem("key")

	testutil.AssertEqual(t, "inventory size", len(st.Inventory), 1)
	testutil.AssertEqual(t, "has item", st.HasItem("key"), true)
	testutil.AssertEqual(t, "was taken", st.WasTaken("key"), true)
}

func TestState_RemoveItem_KeepsTakenRecord(t *testing.T) {
	st := New("abc", "manor", "foyer")

	st.AddItem("coin")
	st.RemoveItem("coin")

	testutil.AssertEqual(t, "has item", st.HasItem("coin"), false)
	testutil.AssertEqual(t, "was taken", st.WasTaken("coin"), true)
}

func TestState_MoveTo_VisitedAppendOnly(t *testing.T) {
	st := New("abc", "manor", "foyer")

	st.MoveTo("library")
	st.MoveTo("foyer")
	st.MoveTo("library")

	testutil.AssertEqual(t, "location", st.Location, "library")
	testutil.AssertEqual(t, "visited size", len(st.Visited), 2)
}

func TestState_RevealExit(t *testing.T) {
	st := New("abc", "manor", "foyer")

	testutil.AssertEqual(t, "before", st.ExitRevealed("foyer", "up"), false)
	st.RevealExit("foyer", "up")
	st.RevealExit("foyer", "up")
	testutil.AssertEqual(t, "after", st.ExitRevealed("foyer", "up"), true)
	testutil.AssertEqual(t, "recorded once", len(st.RevealedExits), 1)

	// The same direction in another location stays hidden
	testutil.AssertEqual(t, "other location", st.ExitRevealed("library", "up"), false)
}

func TestState_NPCLocation(t *testing.T) {
	st := New("abc", "manor", "foyer")

	testutil.AssertEqual(t, "base placement", st.NPCLocation("butler", "foyer"), "foyer")
	st.MoveNPC("butler", "library")
	testutil.AssertEqual(t, "override", st.NPCLocation("butler", "foyer"), "library")
}

func TestState_TerminalFreezesEverything(t *testing.T) {
	st := New("abc", "manor", "foyer")
	st.Finish(StatusWon)

	st.BeginTurn()
	st.AddItem("key")
	st.SetFlag("flag", true)
	st.MoveTo("library")
	st.SetContainer("chest", true)
	st.RevealExit("foyer", "up")
	st.MoveNPC("butler", "library")
	st.RemoveNPC("butler")
	st.Finish(StatusLost)

	testutil.AssertEqual(t, "turn count", st.TurnCount, 0)
	testutil.AssertEqual(t, "inventory", len(st.Inventory), 0)
	testutil.AssertEqual(t, "flags", len(st.Flags), 0)
	testutil.AssertEqual(t, "location", st.Location, "foyer")
	testutil.AssertEqual(t, "containers", len(st.ContainerStates), 0)
	testutil.AssertEqual(t, "revealed exits", len(st.RevealedExits), 0)
	testutil.AssertEqual(t, "removed npcs", len(st.RemovedNPCs), 0)
	testutil.AssertEqual(t, "status stays won", st.Status, StatusWon)
}

func TestState_Clone_Independent(t *testing.T) {
	st := New("abc", "manor", "foyer")
	st.AddItem("key")
	st.SetFlag("lit", true)

	c := st.Clone()
	c.AddItem("coin")
	c.SetFlag("lit", false)
	c.MoveTo("library")

	testutil.AssertEqual(t, "original inventory", len(st.Inventory), 1)
	testutil.AssertEqual(t, "original flag", st.HasFlag("lit"), true)
	testutil.AssertEqual(t, "original location", st.Location, "foyer")
}

func TestState_Validate(t *testing.T) {
	tests := map[string]struct {
		mutate func(st *State)
		expErr bool
	}{
		"valid":            {mutate: func(st *State) {}},
		"missing id":       {mutate: func(st *State) { st.ID = "" }, expErr: true},
		"missing world":    {mutate: func(st *State) { st.WorldID = "" }, expErr: true},
		"missing location": {mutate: func(st *State) { st.Location = "" }, expErr: true},
		"bad status":       {mutate: func(st *State) { st.Status = "paused" }, expErr: true},
		"negative turns":   {mutate: func(st *State) { st.TurnCount = -1 }, expErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			st := New("abc", "manor", "foyer")
			tt.mutate(st)
			err := st.Validate()
			if tt.expErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
