package intent

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-adventure/internal/ai"
	"github.com/pixil98/go-testutil"
)

// fakeBackend returns a canned response or error
type fakeBackend struct {
	text string
	err  error
}

func (f *fakeBackend) Generate(ctx context.Context, req *ai.Request) (*ai.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ai.Result{Text: f.text, Model: "fake"}, nil
}

func TestParseModelResponse(t *testing.T) {
	tests := map[string]struct {
		text   string
		exp    *Intent
		expErr string
	}{
		"plain yaml": {
			text: "verb: take\ntarget: brass_key\n",
			exp:  &Intent{Verb: "take", Target: "brass_key"},
		},
		"fenced yaml": {
			text: "```yaml\nverb: use\ntarget: ceramic_parrot\nmodifiers: [statue]\n```",
			exp:  &Intent{Verb: "use", Target: "ceramic_parrot", Modifiers: []string{"statue"}},
		},
		"unknown sentinel": {
			text:   "verb: unknown",
			expErr: "no usable verb",
		},
		"verb outside vocabulary": {
			text:   "verb: teleport\ntarget: library",
			expErr: `unknown verb "teleport"`,
		},
		"not yaml": {
			text:   "I think the player wants to go north!",
			expErr: "parsing model response",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := parseModelResponse(tt.text)
			if tt.expErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.expErr) {
					t.Fatalf("expected error containing %q, got %v", tt.expErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "verb", got.Verb, tt.exp.Verb)
			testutil.AssertEqual(t, "target", got.Target, tt.exp.Target)
			testutil.AssertEqual(t, "modifier count", len(got.Modifiers), len(tt.exp.Modifiers))
		})
	}
}

func TestModelInterpreter_RecordsCall(t *testing.T) {
	m := NewModelInterpreter(&fakeBackend{text: "verb: take\ntarget: brass_key"})

	in, call, err := m.Interpret(context.Background(), "grab that key thing", testSnapshot())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "verb", in.Verb, "take")

	if call == nil {
		t.Fatal("expected a call record")
	}
	testutil.AssertEqual(t, "call kind", call.Kind, "parser")
	if !strings.Contains(call.Prompt, "brass_key") {
		t.Error("prompt should list visible entities")
	}
	if !strings.Contains(call.Prompt, "grab that key thing") {
		t.Error("prompt should carry the raw command")
	}
}

func TestModelInterpreter_RecordsFailedCall(t *testing.T) {
	m := NewModelInterpreter(&fakeBackend{err: errors.New("backend down")})

	in, call, err := m.Interpret(context.Background(), "grab key", testSnapshot())
	if err == nil {
		t.Fatal("expected error")
	}
	if in != nil {
		t.Errorf("expected nil intent, got %+v", in)
	}
	if call == nil {
		t.Fatal("failed calls must still be recorded")
	}
	testutil.AssertEqual(t, "recorded error", call.Error, "backend down")
}

// slowBackend blocks until its context is canceled
type slowBackend struct{}

func (s *slowBackend) Generate(ctx context.Context, req *ai.Request) (*ai.Result, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestParser_ModelPath(t *testing.T) {
	p := NewParser(WithInterpreter(NewModelInterpreter(
		&fakeBackend{text: "verb: take\ntarget: brass_key"})))

	// Unknown verb scores 0.0, so the interpreter runs
	in, trace := p.Parse(context.Background(), "acquire the shiny thing", testSnapshot())
	if in == nil {
		t.Fatal("expected model intent")
	}
	testutil.AssertEqual(t, "verb", in.Verb, "take")
	testutil.AssertEqual(t, "path", trace.Path, "model")
	if trace.Call == nil {
		t.Error("model path must carry the call record")
	}
}

func TestParser_HighConfidenceSkipsModel(t *testing.T) {
	p := NewParser(WithInterpreter(NewModelInterpreter(
		&fakeBackend{err: errors.New("must not be called")})))

	in, trace := p.Parse(context.Background(), "take brass key", testSnapshot())
	if in == nil {
		t.Fatal("expected rule intent")
	}
	testutil.AssertEqual(t, "path", trace.Path, "rules")
	testutil.AssertEqual(t, "confidence", trace.Confidence, 1.0)
	if trace.Call != nil {
		t.Error("interpreter must not run above the threshold")
	}
}

func TestParser_BackendErrorFallsBack(t *testing.T) {
	p := NewParser(WithInterpreter(NewModelInterpreter(&fakeBackend{err: errors.New("boom")})))

	// Rule path got something usable at low confidence; it stands
	in, trace := p.Parse(context.Background(), "take glowing orb", testSnapshot())
	if in == nil {
		t.Fatal("expected the rule intent to stand")
	}
	testutil.AssertEqual(t, "verb", in.Verb, "take")
	testutil.AssertEqual(t, "path", trace.Path, "rules")

	// Rule path got nothing; the turn surfaces a nil intent
	in, trace = p.Parse(context.Background(), "transmogrify orb", testSnapshot())
	if in != nil {
		t.Fatalf("expected nil intent, got %+v", in)
	}
	testutil.AssertEqual(t, "path", trace.Path, "fallback")
}

func TestParser_TimeoutFallsBack(t *testing.T) {
	p := NewParser(WithInterpreter(NewModelInterpreter(
		&slowBackend{}, WithInterpretTimeout(10*time.Millisecond))))

	start := time.Now()
	in, trace := p.Parse(context.Background(), "transmogrify orb", testSnapshot())
	if time.Since(start) > time.Second {
		t.Error("timeout did not bound the call")
	}
	if in != nil {
		t.Fatalf("expected nil intent, got %+v", in)
	}
	testutil.AssertEqual(t, "path", trace.Path, "fallback")
	if trace.Call == nil {
		t.Error("timed out calls must still be recorded")
	}
}

func TestParser_NoInterpreter(t *testing.T) {
	p := NewParser()

	in, trace := p.Parse(context.Background(), "transmogrify orb", testSnapshot())
	if in != nil {
		t.Fatalf("expected nil intent, got %+v", in)
	}
	testutil.AssertEqual(t, "path", trace.Path, "fallback")
	testutil.AssertEqual(t, "confidence", trace.Confidence, 0.0)
}
