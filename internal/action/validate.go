package action

import (
	"strings"

	"github.com/pixil98/go-adventure/internal/intent"
	"github.com/pixil98/go-adventure/internal/perception"
	"github.com/pixil98/go-adventure/internal/session"
	"github.com/pixil98/go-adventure/internal/world"
)

// Rejection reason codes. Gate failures reuse the authored condition form
// ("requires_flag:x"), prefixed for movement with "exit_blocked:".
const (
	ReasonUnknownCommand   = "unknown_command"
	ReasonTargetNotVisible = "target_not_visible"
	ReasonNoExit           = "no_exit"
	ReasonNotPortable      = "not_portable"
	ReasonAlreadyHeld      = "already_held"
	ReasonNotContainer     = "not_container"
	ReasonNothingHappens   = "nothing_happens"
	ReasonStoryOver        = "story_over"

	exitBlockedPrefix = "exit_blocked:"
)

// ExitBlocked renders the movement rejection for an inaccessible exit.
func ExitBlocked(reason string) string {
	return exitBlockedPrefix + reason
}

// Result is the outcome of validating one intent. A rejected intent
// carries the reason; an accepted one may carry narration fragments the
// narrator builds on.
type Result struct {
	OK       bool   `json:"ok"`
	Reason   string `json:"reason,omitempty"`
	Verb     string `json:"verb,omitempty"`
	Target   string `json:"target,omitempty"`   // resolved display name
	Response string `json:"response,omitempty"` // interaction success fragment
	Detail   string `json:"detail,omitempty"`   // examine text
}

func reject(verb, target, reason string) (*Result, []Event) {
	return &Result{Verb: verb, Target: target, Reason: reason}, nil
}

// Validate checks the intent against the snapshot and gating conditions and
// produces the ordered event sequence for it. It is pure: re-validating the
// same intent against the same snapshot yields the same result.
func Validate(in *intent.Intent, snap *perception.Snapshot, w *world.World, st *session.State) (*Result, []Event) {
	if st.Terminal() {
		return reject("", "", ReasonStoryOver)
	}
	if in == nil {
		return reject("", "", ReasonUnknownCommand)
	}

	switch in.Verb {
	case "go":
		return validateMove(in, snap)
	case "look", "inventory", "wait":
		return &Result{OK: true, Verb: in.Verb}, nil
	case "examine":
		return validateExamine(in, snap, w, st)
	case "take":
		return validateTake(in, snap, w, st)
	case "open":
		return validateContainer(in, snap, w, st, true)
	case "close":
		return validateContainer(in, snap, w, st, false)
	case "use", "give", "talk":
		return validateInteraction(in, snap, w, st)
	default:
		return reject(in.Verb, in.Target, ReasonUnknownCommand)
	}
}

func validateMove(in *intent.Intent, snap *perception.Snapshot) (*Result, []Event) {
	dir := normalize(in.Target)
	exit := snap.Exit(dir)
	if exit == nil {
		// Hidden exits are absent from the snapshot, so an unrevealed one
		// rejects the same way a nonexistent one does.
		return reject("go", dir, ReasonNoExit)
	}
	if !exit.Accessible {
		return reject("go", dir, ExitBlocked(exit.Reason))
	}
	return &Result{OK: true, Verb: "go", Target: dir},
		[]Event{{Kind: EventMoveToLocation, Location: exit.Destination}}
}

func validateExamine(in *intent.Intent, snap *perception.Snapshot, w *world.World, st *session.State) (*Result, []Event) {
	ref := normalize(in.Target)
	if ref == "" {
		// Bare "examine" reads as "look".
		return &Result{OK: true, Verb: "look"}, nil
	}

	// Held items win over their (taken) placement in the snapshot.
	if st.HasItem(ref) {
		if item := w.Item(ref); item != nil {
			return &Result{OK: true, Verb: "examine", Target: item.Name, Detail: item.Description}, nil
		}
	}
	if iv := snap.Item(ref); iv != nil {
		if !iv.Visible {
			return reject("examine", ref, ReasonTargetNotVisible)
		}
		return &Result{OK: true, Verb: "examine", Target: iv.Name, Detail: w.Item(iv.ID).Description}, nil
	}
	if nv := snap.NPC(ref); nv != nil {
		if !nv.Visible {
			return reject("examine", ref, ReasonTargetNotVisible)
		}
		return &Result{OK: true, Verb: "examine", Target: nv.Name, Detail: w.NPC(nv.ID).Description}, nil
	}
	if text := snap.Detail(ref); text != "" {
		return &Result{OK: true, Verb: "examine", Target: ref, Detail: text}, nil
	}

	return reject("examine", ref, ReasonTargetNotVisible)
}

func validateTake(in *intent.Intent, snap *perception.Snapshot, w *world.World, st *session.State) (*Result, []Event) {
	ref := normalize(in.Target)
	iv := snap.Item(ref)
	if iv == nil {
		return reject("take", ref, ReasonTargetNotVisible)
	}
	if st.HasItem(iv.ID) {
		return reject("take", iv.Name, ReasonAlreadyHeld)
	}
	if !iv.Visible {
		return reject("take", iv.Name, ReasonTargetNotVisible)
	}
	if !w.Item(iv.ID).Portable {
		return reject("take", iv.Name, ReasonNotPortable)
	}
	return &Result{OK: true, Verb: "take", Target: iv.Name},
		[]Event{{Kind: EventGiveItem, Item: iv.ID}}
}

func validateContainer(in *intent.Intent, snap *perception.Snapshot, w *world.World, st *session.State, open bool) (*Result, []Event) {
	verb := "close"
	if open {
		verb = "open"
	}

	ref := normalize(in.Target)
	iv := snap.Item(ref)
	if iv == nil || !iv.Visible {
		return reject(verb, ref, ReasonTargetNotVisible)
	}

	item := w.Item(iv.ID)
	if !item.Container {
		return reject(verb, iv.Name, ReasonNotContainer)
	}

	current := st.ContainerOpen(iv.ID) || (item.StartsOpen && !stateHasContainer(st, iv.ID))
	if current == open {
		return reject(verb, iv.Name, ReasonNothingHappens)
	}

	return &Result{OK: true, Verb: verb, Target: iv.Name},
		[]Event{{Kind: EventSetContainerState, Item: iv.ID, Open: open}}
}

func stateHasContainer(st *session.State, id string) bool {
	_, ok := st.ContainerStates[id]
	return ok
}

// validateInteraction matches the intent against the location's declared
// interactions and lowers the first match's effects into events, in the
// order the interaction declares them.
func validateInteraction(in *intent.Intent, snap *perception.Snapshot, w *world.World, st *session.State) (*Result, []Event) {
	nouns := intentNouns(in, snap)

	for i := range snap.Interactions {
		ia := &snap.Interactions[i]
		if !interactionMatches(ia, in, nouns) {
			continue
		}

		def := w.Interactions[ia.ID]

		// The subject must be something the player can currently see.
		if iv := snap.Item(ia.Target); iv != nil && !iv.Visible {
			return reject(in.Verb, iv.Name, ReasonTargetNotVisible)
		}
		if nv := snap.NPC(ia.Target); nv != nil && !nv.Visible {
			return reject(in.Verb, nv.Name, ReasonTargetNotVisible)
		}

		if ia.Item != "" && !st.HasItem(ia.Item) {
			return reject(in.Verb, ia.Target, world.Condition{Kind: world.ConditionItem, Name: ia.Item}.String())
		}
		if unmet := world.FirstUnmet(def.Requires, st); unmet != nil {
			return reject(in.Verb, ia.Target, unmet.String())
		}

		events := make([]Event, 0, len(ia.Effects))
		for _, eff := range ia.Effects {
			events = append(events, fromEffect(eff))
		}
		return &Result{OK: true, Verb: in.Verb, Target: ia.Target, Response: def.Response}, events
	}

	// Talking to someone visible with nothing authored still succeeds; it
	// just narrates an empty reaction.
	if in.Verb == "talk" {
		if nv := snap.NPC(normalize(in.Target)); nv != nil && nv.Visible {
			return &Result{OK: true, Verb: "talk", Target: nv.Name}, nil
		}
	}

	// Unresolvable target reads better as "don't see that" than "nothing
	// happens" when nothing at the location matches the noun at all.
	if in.Target != "" && !nounKnown(normalize(in.Target), snap, st) {
		return reject(in.Verb, in.Target, ReasonTargetNotVisible)
	}

	return reject(in.Verb, in.Target, ReasonNothingHappens)
}

// intentNouns collects the normalized nouns the intent references, resolved
// to ids where a visible entity matches a display name.
func intentNouns(in *intent.Intent, snap *perception.Snapshot) map[string]bool {
	nouns := map[string]bool{}
	add := func(ref string) {
		ref = normalize(ref)
		if ref == "" {
			return
		}
		nouns[ref] = true
		if iv := snap.Item(ref); iv != nil {
			nouns[iv.ID] = true
		}
		if nv := snap.NPC(ref); nv != nil {
			nouns[nv.ID] = true
		}
	}
	add(in.Target)
	for _, m := range in.Modifiers {
		add(m)
	}
	return nouns
}

func interactionMatches(ia *perception.InteractionView, in *intent.Intent, nouns map[string]bool) bool {
	// Trigger phrase match always fires. Phrases compare with filler words
	// (prepositions, articles) stripped, the same way the parser strips them.
	phrase := normalizePhrase(in)
	for _, t := range ia.Triggers {
		if normalizeTrigger(t) == phrase {
			return true
		}
	}

	if ia.Verb != in.Verb {
		return false
	}
	if !nouns[ia.Target] {
		return false
	}
	if ia.Item != "" && !nouns[ia.Item] {
		return false
	}
	return true
}

func nounKnown(ref string, snap *perception.Snapshot, st *session.State) bool {
	if snap.Item(ref) != nil || snap.NPC(ref) != nil || snap.Detail(ref) != "" {
		return true
	}
	return st.HasItem(ref)
}

func normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

func normalizePhrase(in *intent.Intent) string {
	parts := []string{in.Verb}
	if in.Target != "" {
		parts = append(parts, in.Target)
	}
	parts = append(parts, in.Modifiers...)
	return normalize(strings.Join(parts, " "))
}

var fillerWords = map[string]bool{
	"on": true, "at": true, "to": true, "with": true, "in": true,
	"from": true, "about": true, "the": true, "a": true, "an": true,
}

func normalizeTrigger(t string) string {
	var kept []string
	for _, w := range strings.Fields(strings.ToLower(t)) {
		if !fillerWords[w] {
			kept = append(kept, w)
		}
	}
	// Authored phrases may use alias verbs ("place ... on ..."); the parser
	// has already canonicalized the intent's verb, so do the same here.
	if len(kept) > 0 {
		kept[0] = intent.CanonicalVerb(kept[0])
	}
	return strings.Join(kept, "_")
}
