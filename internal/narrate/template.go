package narrate

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// templateFuncs provides utility functions for narration templates.
var templateFuncs = sprig.TxtFuncMap()

// ExpandTemplate expands a template string using the provided data.
func ExpandTemplate(tmplStr string, data any) (string, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}

	return buf.String(), nil
}

// Default fragments, keyed by verb for successes and reason code for
// rejections. Worlds can get richer text through interaction responses;
// these keep every outcome narratable.
var successFragments = map[string]string{
	"take":  "You take the {{ .Target }}.",
	"open":  "You open the {{ .Target }}.",
	"close": "You close the {{ .Target }}.",
	"wait":  "Time passes.",
	"talk":  "{{ .Target | title }} has nothing to say right now.",
	"use":   "You use the {{ .Target }}.",
	"give":  "You hand over the {{ .Target }}.",
}

var failureFragments = map[string]string{
	"unknown_command":    "I don't understand that.",
	"target_not_visible": "You don't see that here.",
	"no_exit":            "You can't go that way.",
	"not_portable":       "You can't take that.",
	"already_held":       "You're already carrying that.",
	"not_container":      "That doesn't open.",
	"nothing_happens":    "Nothing happens.",
	"story_over":         "The story has ended. Nothing you do changes that now.",
}

// failureText renders a rejection reason. Gate failures carry their
// requirement, which gets a gentle hint rather than the raw code.
func failureText(reason, target string) string {
	if tmpl, ok := failureFragments[reason]; ok {
		out, err := ExpandTemplate(tmpl, struct{ Target string }{target})
		if err == nil {
			return out
		}
	}

	switch {
	case strings.HasPrefix(reason, "exit_blocked:"):
		return "Something bars the way. " + requirementHint(strings.TrimPrefix(reason, "exit_blocked:"))
	case strings.HasPrefix(reason, "requires_"):
		return requirementHint(reason)
	}

	return "Nothing happens."
}

func requirementHint(req string) string {
	switch {
	case strings.HasPrefix(req, "requires_item:"):
		name := strings.ReplaceAll(strings.TrimPrefix(req, "requires_item:"), "_", " ")
		return fmt.Sprintf("You seem to be missing something. Perhaps the %s.", name)
	case strings.HasPrefix(req, "requires_flag:"):
		return "Something must happen first before that will work."
	case strings.HasPrefix(req, "requires_open:"):
		return "It needs to be open first."
	case strings.HasPrefix(req, "requires_location:"):
		return "This isn't the right place for that."
	default:
		return "It won't budge."
	}
}
