package engine

import (
	"github.com/pixil98/go-adventure/internal/action"
	"github.com/pixil98/go-adventure/internal/ai"
	"github.com/pixil98/go-adventure/internal/intent"
	"github.com/pixil98/go-adventure/internal/session"
)

// Turn is the result of one processed action (or of session start).
type Turn struct {
	SessionID       string         `json:"session_id"`
	Narrative       string         `json:"narrative"`
	State           *session.State `json:"state"`
	Events          []action.Event `json:"events,omitempty"`
	GameComplete    bool           `json:"game_complete"`
	EndingNarrative string         `json:"ending_narrative,omitempty"`
	Debug           *Trace         `json:"debug,omitempty"`
}

// Trace is the full per-turn debug record: every decision the pipeline
// made and every backend call it triggered. It is assembled only when the
// caller asks and is never persisted with session state.
type Trace struct {
	Input      string         `json:"input,omitempty"`
	Parser     *intent.Trace  `json:"parser,omitempty"`
	Intent     *intent.Intent `json:"intent,omitempty"`
	Validation *action.Result `json:"validation,omitempty"`
	Events     []action.Event `json:"events,omitempty"`
	Narrator   *ai.Call       `json:"narrator_call,omitempty"`
	Ending     *ai.Call       `json:"ending_call,omitempty"`
}

func (e *Engine) buildTrace(raw string, ptrace *intent.Trace, in *intent.Intent, res *action.Result, events []action.Event, ncall, ecall *ai.Call) *Trace {
	return &Trace{
		Input:      raw,
		Parser:     ptrace,
		Intent:     in,
		Validation: res,
		Events:     events,
		Narrator:   ncall,
		Ending:     ecall,
	}
}
