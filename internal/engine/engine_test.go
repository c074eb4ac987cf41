package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pixil98/go-adventure/internal/action"
	"github.com/pixil98/go-adventure/internal/ai"
	"github.com/pixil98/go-adventure/internal/intent"
	"github.com/pixil98/go-adventure/internal/narrate"
	"github.com/pixil98/go-adventure/internal/perception"
	"github.com/pixil98/go-adventure/internal/session"
	"github.com/pixil98/go-adventure/internal/world"
	"github.com/pixil98/go-testutil"
)

// worldStore is a fixed in-memory Storer for the engine's world side
type worldStore map[string]*world.World

func (s worldStore) Save(id string, w *world.World) error { s[id] = w; return nil }
func (s worldStore) Get(id string) *world.World           { return s[id] }
func (s worldStore) GetAll() map[string]*world.World      { return s }

// stateStore is an in-memory Storer backing the session manager
type stateStore map[string]*session.State

func (s stateStore) Save(id string, st *session.State) error { s[id] = st.Clone(); return nil }
func (s stateStore) Get(id string) *session.State {
	st, ok := s[id]
	if !ok {
		return nil
	}
	return st.Clone()
}
func (s stateStore) GetAll() map[string]*session.State { return s }

// recordingPublisher captures published turn events
type recordingPublisher struct {
	sessions []string
	events   [][]action.Event
}

func (p *recordingPublisher) PublishTurn(sessionID string, events []action.Event) error {
	p.sessions = append(p.sessions, sessionID)
	p.events = append(p.events, events)
	return nil
}

func manorWorld() *world.World {
	return &world.World{
		Name:    "Test Manor",
		Opening: "You wake in the foyer.",
		Start:   "foyer",
		Locations: map[string]*world.Location{
			"foyer": {
				Name:        "Foyer",
				Description: "A dusty entrance hall.",
				Exits: map[string]*world.Exit{
					"north": {
						Destination: "library",
						Conditions: []world.Condition{
							{Kind: world.ConditionFlag, Name: "statue_unlocked"},
						},
					},
					"up": {Destination: "hidden_stairs", Hidden: true},
				},
				Items: []string{"brass_key", "ceramic_parrot"},
				Details: map[string]string{
					"statue": "A marble figure with an outstretched hand.",
				},
				Interactions: []string{"parrot_on_statue"},
			},
			"library":       {Name: "Library", Description: "Shelves."},
			"hidden_stairs": {Name: "Hidden Stairs", Description: "Narrow steps into dark."},
		},
		Items: map[string]*world.Item{
			"brass_key":      {Name: "Brass Key", Description: "Tarnished.", Portable: true},
			"ceramic_parrot": {Name: "Ceramic Parrot", Description: "Gaudy.", Portable: true},
		},
		Interactions: map[string]*world.Interaction{
			"parrot_on_statue": {
				Verb:   "use",
				Target: "statue",
				Item:   "ceramic_parrot",
				Effects: []world.Effect{
					{Kind: world.EffectSetFlag, Flag: "statue_unlocked"},
					{Kind: world.EffectRevealExit, Location: "foyer", Exit: "up"},
				},
				Response: "The statue's hand closes around the parrot.",
			},
		},
		Victory: &world.Goal{
			Location:  "hidden_stairs",
			Items:     []string{"brass_key"},
			Flags:     []string{"statue_unlocked"},
			Narrative: "The manor releases its hold on you.",
		},
	}
}

func newTestEngine(t *testing.T, opts ...Opt) *Engine {
	t.Helper()
	worlds := worldStore{"manor": manorWorld()}
	sessions := session.NewManager(stateStore{})
	return New(worlds, sessions, intent.NewParser(), narrate.NewTemplateNarrator(), opts...)
}

func startSession(t *testing.T, e *Engine) *Turn {
	t.Helper()
	turn, err := e.StartSession(context.Background(), "manor", false)
	if err != nil {
		t.Fatalf("starting session: %v", err)
	}
	return turn
}

func submit(t *testing.T, e *Engine, id, raw string) *Turn {
	t.Helper()
	turn, err := e.SubmitAction(context.Background(), id, raw, false)
	if err != nil {
		t.Fatalf("submitting %q: %v", raw, err)
	}
	return turn
}

func TestEngine_StartSession(t *testing.T) {
	e := newTestEngine(t)

	turn := startSession(t, e)

	if turn.SessionID == "" {
		t.Error("expected a session id")
	}
	testutil.AssertEqual(t, "turn count", turn.State.TurnCount, 0)
	testutil.AssertEqual(t, "location", turn.State.Location, "foyer")
	if !strings.Contains(turn.Narrative, "You wake in the foyer.") {
		t.Errorf("opening missing authored text: %q", turn.Narrative)
	}
}

func TestEngine_StartSession_UnknownWorld(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.StartSession(context.Background(), "atlantis", false)
	if !errors.Is(err, ErrWorldNotFound) {
		t.Errorf("expected ErrWorldNotFound, got %v", err)
	}
}

func TestEngine_TurnCountsEveryAction(t *testing.T) {
	e := newTestEngine(t)
	id := startSession(t, e).SessionID

	// Accepted, rejected, and unparseable actions all consume a turn
	submit(t, e, id, "take brass key")
	submit(t, e, id, "go west")
	turn := submit(t, e, id, "transmogrify the teapot")

	testutil.AssertEqual(t, "turn count", turn.State.TurnCount, 3)
	if !strings.Contains(turn.Narrative, "I don't understand that.") {
		t.Errorf("unparseable action should be narrated as such: %q", turn.Narrative)
	}
}

func TestEngine_RejectedTurnChangesNothingElse(t *testing.T) {
	e := newTestEngine(t)
	id := startSession(t, e).SessionID

	turn := submit(t, e, id, "go north")

	testutil.AssertEqual(t, "still in foyer", turn.State.Location, "foyer")
	testutil.AssertEqual(t, "no events", len(turn.Events), 0)
	testutil.AssertEqual(t, "turn counted", turn.State.TurnCount, 1)
	if !strings.Contains(turn.Narrative, "Something bars the way.") {
		t.Errorf("expected blocked-exit narration, got %q", turn.Narrative)
	}
}

func TestEngine_Playthrough(t *testing.T) {
	pub := &recordingPublisher{}
	e := newTestEngine(t, WithPublisher(pub))
	id := startSession(t, e).SessionID

	submit(t, e, id, "take brass key")
	submit(t, e, id, "take ceramic parrot")

	turn := submit(t, e, id, "use ceramic parrot on statue")
	testutil.AssertEqual(t, "interaction events", len(turn.Events), 2)
	testutil.AssertEqual(t, "flag set", turn.State.HasFlag("statue_unlocked"), true)
	testutil.AssertEqual(t, "not ended yet", turn.GameComplete, false)
	if !strings.Contains(turn.Narrative, "The statue's hand closes around the parrot.") {
		t.Errorf("authored response missing: %q", turn.Narrative)
	}

	// The revealed exit is now walkable, and the goal holds on arrival
	turn = submit(t, e, id, "go up")
	testutil.AssertEqual(t, "location", turn.State.Location, "hidden_stairs")
	testutil.AssertEqual(t, "game complete", turn.GameComplete, true)
	testutil.AssertEqual(t, "status", turn.State.Status, session.StatusWon)
	testutil.AssertEqual(t, "ending", turn.EndingNarrative, "The manor releases its hold on you.")

	// Every event-producing turn was published
	testutil.AssertEqual(t, "published turns", len(pub.events), 4)
	for _, sid := range pub.sessions {
		testutil.AssertEqual(t, "published session", sid, id)
	}
}

func TestEngine_VictoryNeedsEveryCondition(t *testing.T) {
	e := newTestEngine(t)
	id := startSession(t, e).SessionID

	// Reach the goal location without the key: flag and location hold,
	// the item does not
	submit(t, e, id, "take ceramic parrot")
	submit(t, e, id, "use ceramic parrot on statue")
	turn := submit(t, e, id, "go up")

	testutil.AssertEqual(t, "location", turn.State.Location, "hidden_stairs")
	testutil.AssertEqual(t, "not complete", turn.GameComplete, false)
	testutil.AssertEqual(t, "status", turn.State.Status, session.StatusInProgress)
}

func TestEngine_TerminalSessionFrozen(t *testing.T) {
	e := newTestEngine(t)
	id := startSession(t, e).SessionID

	submit(t, e, id, "take brass key")
	submit(t, e, id, "take ceramic parrot")
	submit(t, e, id, "use ceramic parrot on statue")
	won := submit(t, e, id, "go up")
	testutil.AssertEqual(t, "won", won.State.Status, session.StatusWon)
	turns := won.State.TurnCount

	// Anything submitted afterwards narrates the epilogue and mutates nothing
	after := submit(t, e, id, "take brass key")
	testutil.AssertEqual(t, "complete", after.GameComplete, true)
	testutil.AssertEqual(t, "turn count frozen", after.State.TurnCount, turns)
	testutil.AssertEqual(t, "location frozen", after.State.Location, "hidden_stairs")
	if !strings.Contains(after.Narrative, "The story has ended.") {
		t.Errorf("expected epilogue narration, got %q", after.Narrative)
	}
}

func TestEngine_UnknownSession(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.SubmitAction(context.Background(), "ghost", "look", false)
	if !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEngine_DebugTrace(t *testing.T) {
	e := newTestEngine(t)
	id := startSession(t, e).SessionID

	turn, err := e.SubmitAction(context.Background(), id, "take brass key", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if turn.Debug == nil {
		t.Fatal("expected a debug trace")
	}
	testutil.AssertEqual(t, "input", turn.Debug.Input, "take brass key")
	testutil.AssertEqual(t, "parser path", turn.Debug.Parser.Path, "rules")
	testutil.AssertEqual(t, "intent verb", turn.Debug.Intent.Verb, "take")
	testutil.AssertEqual(t, "validation ok", turn.Debug.Validation.OK, true)
	testutil.AssertEqual(t, "events", len(turn.Debug.Events), 1)

	// Without the flag no trace is assembled
	turn = submit(t, e, id, "look")
	if turn.Debug != nil {
		t.Error("expected no trace without the debug flag")
	}
}

// erroringBackend always fails, standing in for an unreachable model service
type erroringBackend struct{}

func (erroringBackend) Generate(ctx context.Context, req *ai.Request) (*ai.Result, error) {
	return nil, errors.New("model unreachable")
}

func TestEngine_BackendFailureStillNarrates(t *testing.T) {
	worlds := worldStore{"manor": manorWorld()}
	sessions := session.NewManager(stateStore{})
	parser := intent.NewParser(intent.WithInterpreter(intent.NewModelInterpreter(erroringBackend{})))
	narrator := narrate.NewModelNarrator(erroringBackend{})
	e := New(worlds, sessions, parser, narrator)

	id := startSession(t, e).SessionID

	// Unparseable input routes to the model, which fails; the turn still
	// completes with deterministic narration
	turn, err := e.SubmitAction(context.Background(), id, "transmogrify the teapot", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "turn counted", turn.State.TurnCount, 1)
	if turn.Narrative == "" {
		t.Error("expected narration despite backend failure")
	}
	testutil.AssertEqual(t, "parser path", turn.Debug.Parser.Path, "fallback")
	if turn.Debug.Parser.Call == nil {
		t.Error("failed parser call must be recorded")
	}
	testutil.AssertEqual(t, "call error", turn.Debug.Parser.Call.Error, "model unreachable")
}

func TestEngine_State(t *testing.T) {
	e := newTestEngine(t)
	id := startSession(t, e).SessionID
	submit(t, e, id, "take brass key")

	st, snap, err := e.State(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "turn count", st.TurnCount, 1)
	testutil.AssertEqual(t, "snapshot location", snap.Location, "foyer")

	// Reading state does not consume a turn
	st2, _, err := e.State(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "unchanged", st2.TurnCount, 1)

	key := snap.Item("brass_key")
	testutil.AssertEqual(t, "taken reason", key.Reason, perception.ReasonTaken)
}
