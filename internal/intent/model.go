package intent

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"gopkg.in/yaml.v3"

	"github.com/pixil98/go-adventure/internal/ai"
	"github.com/pixil98/go-adventure/internal/perception"
)

const interpretSystem = `You convert a text-adventure player command into a structured intent.
Respond with YAML only, no prose and no code fences:

verb: <one of: go, look, examine, take, use, give, talk, open, close, inventory, wait>
target: <the primary noun, by id, or empty>
modifiers: [<secondary nouns, by id>]

Only use nouns from the provided visible entities. If the command cannot be
expressed, respond with "verb: unknown".`

const interpretPromptTmpl = `Current location: {{ .Location }}

Visible entities:
{{- range .Nouns }}
- {{ .ID }} ({{ .Kind }}): {{ .Name }}
{{- end }}

Player command: {{ .Raw | squote }}`

var interpretPrompt = template.Must(
	template.New("interpret").Funcs(sprig.TxtFuncMap()).Parse(interpretPromptTmpl))

const defaultInterpretTimeout = 10 * time.Second

// ModelInterpreter is the AI-assisted parse path. Every call is recorded,
// including failures; errors are returned for the Parser to fall back on.
type ModelInterpreter struct {
	backend ai.Backend
	model   string
	timeout time.Duration
}

type ModelInterpreterOpt func(*ModelInterpreter)

// WithInterpretTimeout bounds each backend call.
func WithInterpretTimeout(d time.Duration) ModelInterpreterOpt {
	return func(m *ModelInterpreter) {
		m.timeout = d
	}
}

// WithInterpretModel overrides the backend's default model.
func WithInterpretModel(model string) ModelInterpreterOpt {
	return func(m *ModelInterpreter) {
		m.model = model
	}
}

func NewModelInterpreter(backend ai.Backend, opts ...ModelInterpreterOpt) *ModelInterpreter {
	m := &ModelInterpreter{
		backend: backend,
		timeout: defaultInterpretTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *ModelInterpreter) Interpret(ctx context.Context, raw string, snap *perception.Snapshot) (*Intent, *ai.Call, error) {
	var buf bytes.Buffer
	err := interpretPrompt.Execute(&buf, struct {
		Location string
		Nouns    []perception.Noun
		Raw      string
	}{
		Location: snap.Name,
		Nouns:    snap.VisibleNouns(),
		Raw:      raw,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("building interpret prompt: %w", err)
	}

	req := &ai.Request{
		System: interpretSystem,
		Prompt: buf.String(),
		Model:  m.model,
	}

	cctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()
	res, err := m.backend.Generate(cctx, req)
	call := ai.Record("parser", req, res, start, err)
	if err != nil {
		return nil, call, err
	}

	in, err := parseModelResponse(res.Text)
	if err != nil {
		call.Error = err.Error()
		return nil, call, err
	}

	return in, call, nil
}

// parseModelResponse decodes the YAML the model was instructed to return.
func parseModelResponse(text string) (*Intent, error) {
	clean := strings.TrimSpace(text)
	clean = strings.TrimPrefix(clean, "```yaml")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	var in Intent
	if err := yaml.Unmarshal([]byte(clean), &in); err != nil {
		return nil, fmt.Errorf("parsing model response: %w", err)
	}

	if in.Verb == "" || in.Verb == "unknown" {
		return nil, fmt.Errorf("model returned no usable verb")
	}
	if !knownVerbs[in.Verb] {
		return nil, fmt.Errorf("model returned unknown verb %q", in.Verb)
	}

	return &in, nil
}
