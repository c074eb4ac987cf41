package narrate

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"

	"github.com/pixil98/go-adventure/internal/ai"
	"github.com/pixil98/go-adventure/internal/display"
)

const narrateSystem = `You are the narrator of a text adventure. Render the turn outcome below
into second-person present-tense prose, two to four sentences.

Rules:
- Describe only what the outcome data says happened. Never invent items,
  exits, characters, or state changes.
- If the action was rejected, describe the refusal in-world without
  breaking character or mentioning rules.
- No markdown, no lists, no headings. Prose only.`

const narratePromptTmpl = `Location: {{ .Location }}
{{ .Description }}

Action verb: {{ .Verb }}{{ if .Target }} / target: {{ .Target }}{{ end }}
Outcome: {{ if .OK }}succeeded{{ else }}rejected ({{ .Reason }}){{ end }}
{{- if .Response }}
Authored response: {{ .Response }}
{{- end }}
{{- if .Events }}
Applied changes:
{{ .Events }}
{{- end }}
{{- if .Ended }}
The story has just reached its ending.
{{- end }}`

var narratePrompt = template.Must(
	template.New("narrate").Funcs(sprig.TxtFuncMap()).Parse(narratePromptTmpl))

const defaultNarrateTimeout = 15 * time.Second

// ModelNarrator enriches the template narration through the language-model
// backend. Any backend failure falls back to the deterministic text, so a
// player never sees an error.
type ModelNarrator struct {
	backend  ai.Backend
	fallback *TemplateNarrator
	model    string
	timeout  time.Duration
}

type ModelNarratorOpt func(*ModelNarrator)

// WithNarrateTimeout bounds each backend call.
func WithNarrateTimeout(d time.Duration) ModelNarratorOpt {
	return func(m *ModelNarrator) {
		m.timeout = d
	}
}

// WithNarrateModel overrides the backend's default model.
func WithNarrateModel(model string) ModelNarratorOpt {
	return func(m *ModelNarrator) {
		m.model = model
	}
}

func NewModelNarrator(backend ai.Backend, opts ...ModelNarratorOpt) *ModelNarrator {
	m := &ModelNarrator{
		backend:  backend,
		fallback: NewTemplateNarrator(),
		timeout:  defaultNarrateTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *ModelNarrator) Opening(ctx context.Context, nc *Context) (string, *ai.Call) {
	// Openings are authored; render them deterministically.
	return m.fallback.Opening(ctx, nc)
}

func (m *ModelNarrator) Narrate(ctx context.Context, nc *Context) (string, *ai.Call) {
	// Location description turns stay deterministic: the template already
	// renders exactly what perception says, and prose drift there risks
	// contradicting it.
	if nc.Result.OK && (nc.Result.Verb == "go" || nc.Result.Verb == "look" || nc.Result.Verb == "inventory") {
		return m.fallback.Narrate(ctx, nc)
	}

	text, call := m.generate(ctx, nc)
	if text == "" {
		fb, _ := m.fallback.Narrate(ctx, nc)
		return fb, call
	}
	return text, call
}

func (m *ModelNarrator) Ending(ctx context.Context, nc *Context) (string, *ai.Call) {
	fb, _ := m.fallback.Ending(ctx, nc)
	if fb == "" {
		return "", nil
	}

	text, call := m.generate(ctx, nc)
	if text == "" {
		return fb, call
	}
	return text, call
}

func (m *ModelNarrator) generate(ctx context.Context, nc *Context) (string, *ai.Call) {
	events, err := json.Marshal(nc.Events)
	if err != nil {
		return "", nil
	}

	var buf bytes.Buffer
	err = narratePrompt.Execute(&buf, struct {
		Location, Description, Verb, Target, Reason, Response, Events string
		OK, Ended                                                     bool
	}{
		Location:    nc.Snapshot.Name,
		Description: nc.Snapshot.Description,
		Verb:        nc.Result.Verb,
		Target:      nc.Result.Target,
		Reason:      nc.Result.Reason,
		Response:    nc.Result.Response,
		Events:      string(events),
		OK:          nc.Result.OK,
		Ended:       nc.Ended,
	})
	if err != nil {
		return "", nil
	}

	req := &ai.Request{
		System: narrateSystem,
		Prompt: buf.String(),
		Model:  m.model,
	}

	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	res, err := m.backend.Generate(cctx, req)
	call := ai.Record("narrator", req, res, start, err)
	if err != nil {
		return "", call
	}

	return display.Wrap(strings.TrimSpace(res.Text)), call
}
