package narrate

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pixil98/go-adventure/internal/action"
	"github.com/pixil98/go-adventure/internal/ai"
	"github.com/pixil98/go-adventure/internal/display"
	"github.com/pixil98/go-adventure/internal/session"
)

var titleCaser = cases.Title(language.English)

// TemplateNarrator is the deterministic narration path: text assembled
// from per-event and per-location fragments. It never fails and never
// calls out.
type TemplateNarrator struct{}

func NewTemplateNarrator() *TemplateNarrator {
	return &TemplateNarrator{}
}

func (n *TemplateNarrator) Opening(_ context.Context, nc *Context) (string, *ai.Call) {
	return display.Paragraphs(nc.World.Opening, n.describeLocation(nc)), nil
}

func (n *TemplateNarrator) Narrate(_ context.Context, nc *Context) (string, *ai.Call) {
	res := nc.Result

	if !res.OK {
		return display.Wrap(failureText(res.Reason, res.Target)), nil
	}

	switch res.Verb {
	case "go", "look":
		return display.Wrap(n.describeLocation(nc)), nil
	case "examine":
		return display.Wrap(res.Detail), nil
	case "inventory":
		return display.Wrap(n.describeInventory(nc)), nil
	}

	var parts []string
	if res.Response != "" {
		parts = append(parts, res.Response)
	} else if tmpl, ok := successFragments[res.Verb]; ok {
		if out, err := ExpandTemplate(tmpl, res); err == nil {
			parts = append(parts, out)
		}
	}
	parts = append(parts, n.eventFragments(nc)...)

	if len(parts) == 0 {
		parts = append(parts, "Done.")
	}
	return display.Paragraphs(parts...), nil
}

func (n *TemplateNarrator) Ending(_ context.Context, nc *Context) (string, *ai.Call) {
	switch nc.State.Status {
	case session.StatusWon:
		if nc.World.Victory != nil && nc.World.Victory.Narrative != "" {
			return display.Wrap(nc.World.Victory.Narrative), nil
		}
		return display.Wrap("The story draws to its close. You have prevailed."), nil
	case session.StatusLost:
		if nc.World.Defeat != nil && nc.World.Defeat.Narrative != "" {
			return display.Wrap(nc.World.Defeat.Narrative), nil
		}
		return display.Wrap("The story draws to its close, and not in your favor."), nil
	default:
		return "", nil
	}
}

// describeLocation assembles the location block from the fresh snapshot,
// so narrated contents always match what perception says is visible.
func (n *TemplateNarrator) describeLocation(nc *Context) string {
	snap := nc.Snapshot

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n%s", titleCaser.String(snap.Name), snap.Description)

	var items []string
	for _, it := range snap.Items {
		if it.Visible {
			items = append(items, it.Name)
		}
	}
	if len(items) > 0 {
		fmt.Fprintf(&b, "\n\nYou see %s.", joinNames(items))
	}

	var npcs []string
	for _, npc := range snap.NPCs {
		if npc.Visible {
			npcs = append(npcs, npc.Name)
		}
	}
	if len(npcs) > 0 {
		fmt.Fprintf(&b, "\n\n%s is here.", titleCaser.String(joinNames(npcs)))
	}

	var exits []string
	for _, e := range snap.Exits {
		exits = append(exits, e.Direction)
	}
	if len(exits) > 0 {
		fmt.Fprintf(&b, "\n\nExits: %s.", strings.Join(exits, ", "))
	}

	return b.String()
}

func (n *TemplateNarrator) describeInventory(nc *Context) string {
	if len(nc.State.Inventory) == 0 {
		return "You aren't carrying anything."
	}
	var names []string
	for _, id := range nc.State.Inventory {
		if item := nc.World.Item(id); item != nil {
			names = append(names, item.Name)
		}
	}
	return fmt.Sprintf("You are carrying %s.", joinNames(names))
}

// eventFragments narrates the side effects worth pointing out.
func (n *TemplateNarrator) eventFragments(nc *Context) []string {
	var parts []string
	for _, e := range nc.Events {
		switch e.Kind {
		case action.EventRevealExit:
			if e.Location == nc.State.Location {
				parts = append(parts, fmt.Sprintf("A way %s is revealed.", e.Exit))
			}
		case action.EventGiveItem:
			if nc.Result.Verb != "take" {
				if item := nc.World.Item(e.Item); item != nil {
					parts = append(parts, fmt.Sprintf("You now have the %s.", item.Name))
				}
			}
		case action.EventRemoveItem:
			if item := nc.World.Item(e.Item); item != nil {
				parts = append(parts, fmt.Sprintf("The %s is no longer in your possession.", item.Name))
			}
		}
	}
	return parts
}

func joinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}
