// Package ai wraps the language-model backend behind a small
// request/response interface so the parser and narrator stay polymorphic
// over deterministic and model-backed implementations.
package ai

import (
	"context"
	"time"
)

// Request is one prompt sent to the backend.
type Request struct {
	System string // system instructions
	Prompt string // user prompt
	Model  string // optional override of the backend default
}

// Usage is the token accounting reported by the backend.
type Usage struct {
	Input  int32 `json:"input"`
	Output int32 `json:"output"`
	Total  int32 `json:"total"`
}

// Result is the raw backend response plus its metadata.
type Result struct {
	Text    string
	Model   string
	Usage   Usage
	Latency time.Duration
}

// Backend is a single request/response call to a language model. It may
// fail or time out; callers fall back to their deterministic path.
type Backend interface {
	Generate(ctx context.Context, req *Request) (*Result, error)
}

// Call is the debug record of one backend call. It is captured for every
// call, including failures, so a trace always explains what happened.
type Call struct {
	Kind      string    `json:"kind"` // "parser" or "narrator"
	Model     string    `json:"model"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	LatencyMS int64     `json:"latency_ms"`
	Usage     Usage     `json:"usage"`
}

// Record builds the debug record for a finished call.
func Record(kind string, req *Request, res *Result, start time.Time, err error) *Call {
	c := &Call{
		Kind:      kind,
		Prompt:    req.Prompt,
		Model:     req.Model,
		Timestamp: start,
		LatencyMS: time.Since(start).Milliseconds(),
	}
	if res != nil {
		c.Response = res.Text
		c.Usage = res.Usage
		c.Model = res.Model
		c.LatencyMS = res.Latency.Milliseconds()
	}
	if err != nil {
		c.Error = err.Error()
	}
	return c
}
