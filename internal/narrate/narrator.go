// Package narrate renders turn outcomes into player-facing text, either
// from deterministic templates or through a model-backed enrichment path.
package narrate

import (
	"context"

	"github.com/pixil98/go-adventure/internal/action"
	"github.com/pixil98/go-adventure/internal/ai"
	"github.com/pixil98/go-adventure/internal/intent"
	"github.com/pixil98/go-adventure/internal/perception"
	"github.com/pixil98/go-adventure/internal/session"
	"github.com/pixil98/go-adventure/internal/world"
)

// Context is everything a narrator may draw on for one turn. Snapshot is
// the post-apply perception, so narration never contradicts state.
type Context struct {
	World    *world.World
	State    *session.State
	Snapshot *perception.Snapshot
	Intent   *intent.Intent
	Result   *action.Result
	Events   []action.Event
	Ended    bool // status became terminal this turn
}

// Narrator renders a turn. The returned call record is nil on the
// deterministic path. Implementations must always return usable text:
// rendering failures degrade, they never propagate.
type Narrator interface {
	Narrate(ctx context.Context, nc *Context) (string, *ai.Call)
	Ending(ctx context.Context, nc *Context) (string, *ai.Call)
	Opening(ctx context.Context, nc *Context) (string, *ai.Call)
}
