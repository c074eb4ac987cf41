// Package engine sequences the turn pipeline: parse, validate, apply,
// re-perceive, narrate. Every submitted action terminates in a narrative
// and a state, even when that state is unchanged.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-adventure/internal/action"
	"github.com/pixil98/go-adventure/internal/intent"
	"github.com/pixil98/go-adventure/internal/narrate"
	"github.com/pixil98/go-adventure/internal/perception"
	"github.com/pixil98/go-adventure/internal/session"
	"github.com/pixil98/go-adventure/internal/storage"
	"github.com/pixil98/go-adventure/internal/world"
)

// ErrWorldNotFound is returned when a world id resolves to nothing.
var ErrWorldNotFound = errors.New("world not found")

// Publisher receives the applied events of each turn, for observers
// outside the pipeline. A nil publisher is valid.
type Publisher interface {
	PublishTurn(sessionID string, events []action.Event) error
}

// Engine hosts every session of every loaded world. The world store is
// read-only and shared without locking; per-session serialization is the
// session manager's job.
type Engine struct {
	worlds   storage.Storer[*world.World]
	sessions *session.Manager
	parser   *intent.Parser
	narrator narrate.Narrator
	pub      Publisher
}

type Opt func(*Engine)

// WithPublisher attaches a turn-event publisher.
func WithPublisher(p Publisher) Opt {
	return func(e *Engine) {
		e.pub = p
	}
}

func New(worlds storage.Storer[*world.World], sessions *session.Manager, parser *intent.Parser, narrator narrate.Narrator, opts ...Opt) *Engine {
	e := &Engine{
		worlds:   worlds,
		sessions: sessions,
		parser:   parser,
		narrator: narrator,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartSession creates a session in the named world and renders its
// opening narrative.
func (e *Engine) StartSession(ctx context.Context, worldID string, debug bool) (*Turn, error) {
	w := e.worlds.Get(worldID)
	if w == nil {
		return nil, fmt.Errorf("%w: %s", ErrWorldNotFound, worldID)
	}

	st, err := e.sessions.Create(worldID, w.Start)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	snap := perception.Compute(w, st)
	nc := &narrate.Context{
		World:    w,
		State:    st,
		Snapshot: snap,
		Result:   &action.Result{OK: true, Verb: "look"},
	}
	narrative, call := e.narrator.Opening(ctx, nc)

	turn := &Turn{
		SessionID: st.ID,
		Narrative: narrative,
		State:     st.Clone(),
	}
	if debug {
		turn.Debug = &Trace{Narrator: call}
	}
	return turn, nil
}

// SubmitAction runs one turn. Parse failures, validation failures, and
// backend failures all come back as narrated turns, never as errors; the
// only errors are unknown sessions and turn conflicts.
func (e *Engine) SubmitAction(ctx context.Context, sessionID, raw string, debug bool) (*Turn, error) {
	st, release, err := e.sessions.Acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	w := e.worlds.Get(st.WorldID)
	if w == nil {
		return nil, fmt.Errorf("%w: %s", ErrWorldNotFound, st.WorldID)
	}

	// A finished story is still narrated, but nothing mutates anymore.
	if st.Terminal() {
		return e.epilogueTurn(ctx, w, st, raw, debug), nil
	}

	// The turn counts no matter what happens below.
	st.BeginTurn()

	snap := perception.Compute(w, st)
	in, ptrace := e.parser.Parse(ctx, raw, snap)

	res, events := action.Validate(in, snap, w, st)
	action.Apply(events, st)

	ended := false
	if res.OK {
		ended = action.EvaluateGoals(w, st)
	}

	post := perception.Compute(w, st)
	nc := &narrate.Context{
		World:    w,
		State:    st,
		Snapshot: post,
		Intent:   in,
		Result:   res,
		Events:   events,
		Ended:    ended,
	}

	narrative, ncall := e.narrator.Narrate(ctx, nc)

	turn := &Turn{
		SessionID:    st.ID,
		Narrative:    narrative,
		State:        st.Clone(),
		Events:       events,
		GameComplete: st.Terminal(),
	}
	if ended {
		ending, ecall := e.narrator.Ending(ctx, nc)
		turn.EndingNarrative = ending
		if debug {
			turn.Debug = e.buildTrace(raw, ptrace, in, res, events, ncall, ecall)
		}
	} else if debug {
		turn.Debug = e.buildTrace(raw, ptrace, in, res, events, ncall, nil)
	}

	if e.pub != nil && len(events) > 0 {
		// Observers are best-effort; the turn already happened.
		if err := e.pub.PublishTurn(st.ID, events); err != nil {
			slog.WarnContext(ctx, "publishing turn events", "session", st.ID, "error", err)
		}
	}

	return turn, nil
}

// epilogueTurn narrates an action submitted after the story ended.
func (e *Engine) epilogueTurn(ctx context.Context, w *world.World, st *session.State, raw string, debug bool) *Turn {
	res := &action.Result{Reason: action.ReasonStoryOver}
	nc := &narrate.Context{
		World:    w,
		State:    st,
		Snapshot: perception.Compute(w, st),
		Result:   res,
	}
	narrative, call := e.narrator.Narrate(ctx, nc)

	turn := &Turn{
		SessionID:    st.ID,
		Narrative:    narrative,
		State:        st.Clone(),
		GameComplete: true,
	}
	if debug {
		turn.Debug = &Trace{Input: raw, Validation: res, Narrator: call}
	}
	return turn
}

// State returns the session state plus the current perception snapshot,
// without consuming a turn.
func (e *Engine) State(sessionID string) (*session.State, *perception.Snapshot, error) {
	st, err := e.sessions.Peek(sessionID)
	if err != nil {
		return nil, nil, err
	}

	w := e.worlds.Get(st.WorldID)
	if w == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrWorldNotFound, st.WorldID)
	}

	return st, perception.Compute(w, st), nil
}
