package command

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pixil98/go-adventure/internal/ai"
	"github.com/pixil98/go-adventure/internal/intent"
	"github.com/pixil98/go-adventure/internal/narrate"
	"github.com/pixil98/go-errors"
)

// ModelConfig wires the generative backend. When no API key is available
// the service still runs: parsing falls back to the rule grammar and
// narration to templates.
type ModelConfig struct {
	APIKeyEnv           string  `json:"api_key_env"`
	Model               string  `json:"model"`
	ParserTimeout       string  `json:"parser_timeout"`
	NarratorTimeout     string  `json:"narrator_timeout"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
}

const defaultAPIKeyEnv = "GEMINI_API_KEY"

func (c *ModelConfig) validate() error {
	el := errors.NewErrorList()

	if c.ParserTimeout != "" {
		_, err := time.ParseDuration(c.ParserTimeout)
		if err != nil {
			el.Add(fmt.Errorf("parsing parser_timeout: %w", err))
		}
	}
	if c.NarratorTimeout != "" {
		_, err := time.ParseDuration(c.NarratorTimeout)
		if err != nil {
			el.Add(fmt.Errorf("parsing narrator_timeout: %w", err))
		}
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		el.Add(fmt.Errorf("confidence_threshold must be between 0 and 1"))
	}

	return el.Err()
}

// buildBackend returns nil when no key is configured.
func (c *ModelConfig) buildBackend(ctx context.Context) (ai.Backend, error) {
	env := c.APIKeyEnv
	if env == "" {
		env = defaultAPIKeyEnv
	}
	apiKey := os.Getenv(env)
	if apiKey == "" {
		return nil, nil
	}

	gemini, err := ai.NewGemini(ctx, apiKey, c.Model)
	if err != nil {
		return nil, fmt.Errorf("creating gemini backend: %w", err)
	}
	return gemini, nil
}

func (c *ModelConfig) buildParser(backend ai.Backend) *intent.Parser {
	var opts []intent.ParserOpt
	if backend != nil {
		var iopts []intent.ModelInterpreterOpt
		if c.ParserTimeout != "" {
			d, _ := time.ParseDuration(c.ParserTimeout)
			iopts = append(iopts, intent.WithInterpretTimeout(d))
		}
		opts = append(opts, intent.WithInterpreter(intent.NewModelInterpreter(backend, iopts...)))
	}
	if c.ConfidenceThreshold > 0 {
		opts = append(opts, intent.WithThreshold(c.ConfidenceThreshold))
	}
	return intent.NewParser(opts...)
}

func (c *ModelConfig) buildNarrator(backend ai.Backend) narrate.Narrator {
	if backend == nil {
		return narrate.NewTemplateNarrator()
	}

	var opts []narrate.ModelNarratorOpt
	if c.NarratorTimeout != "" {
		d, _ := time.ParseDuration(c.NarratorTimeout)
		opts = append(opts, narrate.WithNarrateTimeout(d))
	}
	return narrate.NewModelNarrator(backend, opts...)
}
