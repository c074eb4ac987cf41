package intent

import (
	"strings"

	"github.com/pixil98/go-adventure/internal/perception"
)

var directionExpansions = map[string]string{
	"n": "north",
	"s": "south",
	"e": "east",
	"w": "west",
	"u": "up",
	"d": "down",
}

var directionNames = map[string]bool{
	"north": true, "south": true, "east": true, "west": true,
	"northeast": true, "northwest": true, "southeast": true, "southwest": true,
	"up": true, "down": true,
}

var verbAliases = map[string]string{
	// Look / Examine
	"l":       "look",
	"x":       "examine",
	"inspect": "examine",
	"check":   "examine",
	"study":   "examine",
	"observe": "examine",
	"read":    "examine",
	"search":  "examine",

	// Movement
	"walk":   "go",
	"run":    "go",
	"move":   "go",
	"head":   "go",
	"enter":  "go",
	"travel": "go",

	// Take
	"get":   "take",
	"grab":  "take",
	"hold":  "take",
	"carry": "take",

	// Open / Close
	"shut": "close",

	// Give
	"offer": "give",
	"hand":  "give",

	// Talk
	"ask":      "talk",
	"speak":    "talk",
	"chat":     "talk",
	"converse": "talk",
	"greet":    "talk",

	// Use
	"apply":   "use",
	"place":   "use",
	"insert":  "use",
	"combine": "use",

	// Misc
	"inv": "inventory",
	"i":   "inventory",
	"z":   "wait",
}

// CanonicalVerb maps an alias to its canonical verb. Unknown words pass
// through unchanged.
func CanonicalVerb(v string) string {
	if alias, ok := verbAliases[v]; ok {
		return alias
	}
	return v
}

// knownVerbs are the verbs the validator can act on.
var knownVerbs = map[string]bool{
	"go": true, "look": true, "examine": true, "take": true,
	"use": true, "give": true, "talk": true, "open": true,
	"close": true, "inventory": true, "wait": true,
}

// verbsWithoutTarget parse confidently with no noun at all.
var verbsWithoutTarget = map[string]bool{
	"look": true, "inventory": true, "wait": true,
}

var prepositions = map[string]bool{
	"on": true, "at": true, "to": true,
	"with": true, "in": true, "from": true,
	"about": true,
}

var articles = map[string]bool{
	"the": true, "a": true, "an": true, "my": true,
}

// ParseRules is the deterministic parse path: tokenize, expand aliases,
// strip articles, split object from modifier on the first preposition, and
// score the result against the currently visible nouns.
//
// Confidence: 1.0 when the verb is known and every noun resolves against
// the snapshot; 0.5 when the verb is known but a noun does not resolve
// (the validator can still narrate a "don't see that" rejection); 0.0 when
// the verb itself is unknown (nil intent).
func ParseRules(raw string, snap *perception.Snapshot) (*Intent, float64) {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
	if len(words) == 0 {
		return nil, 0
	}

	// Bare direction is a movement shortcut.
	if len(words) == 1 {
		if dir, ok := directionExpansions[words[0]]; ok {
			return scoreMove(dir, snap)
		}
		if directionNames[words[0]] {
			return scoreMove(words[0], snap)
		}
	}

	words = expandMultiWordVerbs(words)

	if alias, ok := verbAliases[words[0]]; ok {
		words[0] = alias
	}

	verb := words[0]
	if !knownVerbs[verb] {
		return nil, 0
	}

	rest := stripArticles(words[1:])

	// "go north"
	if verb == "go" {
		if len(rest) == 0 {
			return &Intent{Verb: "go"}, 0.5
		}
		dir := rest[0]
		if full, ok := directionExpansions[dir]; ok {
			dir = full
		}
		return scoreMove(dir, snap)
	}

	target, modifiers := splitOnPreposition(rest)

	in := &Intent{Verb: verb, Target: target, Modifiers: modifiers}

	if target == "" {
		if verbsWithoutTarget[verb] {
			return in, 1.0
		}
		return in, 0.5
	}

	conf := 1.0
	if !resolves(target, snap) {
		conf = 0.5
	}
	for _, m := range modifiers {
		if !resolves(m, snap) {
			conf = 0.5
		}
	}
	return in, conf
}

func scoreMove(dir string, snap *perception.Snapshot) (*Intent, float64) {
	in := &Intent{Verb: "go", Target: dir}
	if snap != nil && snap.Exit(dir) != nil {
		return in, 1.0
	}
	return in, 0.5
}

// resolves reports whether a noun phrase matches any visible entity, a
// held-item reference, or a scenery detail.
func resolves(noun string, snap *perception.Snapshot) bool {
	if snap == nil {
		return false
	}
	for _, n := range snap.VisibleNouns() {
		if strings.EqualFold(n.ID, noun) || strings.EqualFold(n.Name, noun) {
			return true
		}
	}
	// Items referenced by id with spaces as underscores ("ceramic parrot").
	underscored := strings.ReplaceAll(noun, " ", "_")
	for _, n := range snap.VisibleNouns() {
		if strings.EqualFold(n.ID, underscored) {
			return true
		}
	}
	return false
}

// expandMultiWordVerbs handles "look at", "pick up", "talk to" and similar.
func expandMultiWordVerbs(words []string) []string {
	if len(words) < 2 {
		return words
	}

	switch words[0] {
	case "look":
		if words[1] == "at" || words[1] == "in" || words[1] == "under" {
			return append([]string{"examine"}, words[2:]...)
		}
	case "pick":
		if words[1] == "up" {
			return append([]string{"take"}, words[2:]...)
		}
	case "talk", "speak", "chat":
		if words[1] == "to" || words[1] == "with" {
			return append([]string{"talk"}, words[2:]...)
		}
	case "put":
		if words[1] == "in" || words[1] == "on" {
			return append([]string{"use"}, words[2:]...)
		}
	}

	return words
}

func stripArticles(words []string) []string {
	result := make([]string, 0, len(words))
	for _, w := range words {
		if !articles[w] {
			result = append(result, w)
		}
	}
	return result
}

// splitOnPreposition splits the noun words on the first preposition: the
// words before it form the target, the words after it the modifier.
func splitOnPreposition(words []string) (string, []string) {
	for i, w := range words {
		if prepositions[w] {
			target := strings.Join(words[:i], " ")
			mod := strings.Join(words[i+1:], " ")
			var mods []string
			if mod != "" {
				mods = []string{mod}
			}
			return target, mods
		}
	}
	return strings.Join(words, " "), nil
}
