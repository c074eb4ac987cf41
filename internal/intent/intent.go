// Package intent turns raw player text into a structured intent, first
// through a deterministic rule matcher and, below a confidence threshold,
// through a model-backed interpreter.
package intent

import (
	"context"

	"github.com/pixil98/go-adventure/internal/ai"
	"github.com/pixil98/go-adventure/internal/perception"
)

// Intent is the structured form of one player command.
type Intent struct {
	Verb      string   `json:"verb"`
	Target    string   `json:"target,omitempty"`
	Modifiers []string `json:"modifiers,omitempty"`
}

// Trace records which parse path ran and what it produced. One is emitted
// for every submitted action.
type Trace struct {
	Path       string   `json:"path"` // "rules", "model", or "fallback"
	Confidence float64  `json:"confidence"`
	Intent     *Intent  `json:"intent,omitempty"`
	Call       *ai.Call `json:"model_call,omitempty"`
}

// Interpreter is the model-assisted parse capability. Implementations
// return the same intent shape as the rule path, plus the call record.
type Interpreter interface {
	Interpret(ctx context.Context, raw string, snap *perception.Snapshot) (*Intent, *ai.Call, error)
}

// DefaultConfidenceThreshold is the rule-path confidence below which the
// interpreter is consulted.
const DefaultConfidenceThreshold = 0.6

// Parser sequences the two paths. interp may be nil, in which case low
// confidence parses stand as-is.
type Parser struct {
	interp    Interpreter
	threshold float64
}

type ParserOpt func(*Parser)

// WithInterpreter attaches a model-assisted fallback.
func WithInterpreter(i Interpreter) ParserOpt {
	return func(p *Parser) {
		p.interp = i
	}
}

// WithThreshold overrides the confidence threshold.
func WithThreshold(t float64) ParserOpt {
	return func(p *Parser) {
		p.threshold = t
	}
}

func NewParser(opts ...ParserOpt) *Parser {
	p := &Parser{threshold: DefaultConfidenceThreshold}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse converts raw text into an intent. A nil intent means the command
// was not understood; the turn still counts and is narrated as such.
// Backend errors and timeouts never escape: the deterministic result (or
// the fallback trace) stands instead.
func (p *Parser) Parse(ctx context.Context, raw string, snap *perception.Snapshot) (*Intent, *Trace) {
	in, conf := ParseRules(raw, snap)

	if conf >= p.threshold || p.interp == nil {
		path := "rules"
		if in == nil {
			path = "fallback"
		}
		return in, &Trace{Path: path, Confidence: conf, Intent: in}
	}

	mi, call, err := p.interp.Interpret(ctx, raw, snap)
	if err != nil || mi == nil {
		// Deterministic fallback: keep whatever the rule path produced.
		path := "fallback"
		if in != nil {
			path = "rules"
		}
		return in, &Trace{Path: path, Confidence: conf, Intent: in, Call: call}
	}

	return mi, &Trace{Path: "model", Confidence: conf, Intent: mi, Call: call}
}
