// Package option turns a classified intent into a set of plausible
// resolution paths. The generator never ranks, filters, or scores: every
// option in a set is a co-equal possibility, and selection authority belongs
// entirely to the arbiter.
package option

import (
	"fmt"

	"github.com/emberhall/steward/internal/steward/intent"
)

// Category buckets the flavor of a resolution path.
type Category string

const (
	CategoryMechanical    Category = "mechanical"
	CategoryNarrative     Category = "narrative"
	CategoryEnvironmental Category = "environmental"
	CategorySocial        Category = "social"
	CategoryOther         Category = "other"
)

// Option is one plausible resolution path. Options are transient: produced
// fresh on every classification cycle, never stored, never ranked.
type Option struct {
	ID          string
	Category    Category
	Description string
}

// Set is the unordered, unranked output of one generation cycle.
type Set struct {
	// Context is a deterministic, human-readable restatement of the intent's
	// fields, kept for audit and debugging. It carries no decision logic.
	Context string
	Options []Option
}

// template pairs an option category with its fixed description.
type template struct {
	category    Category
	description string
}

// templates maps each intent category to its fixed resolution paths. The
// lists are deliberately hard-coded; swapping in scripted or learned
// templates would move selection authority into this package.
var templates = map[intent.Category][]template{
	intent.CategoryCombat: {
		{CategoryMechanical, "Resolve as a direct attack against the target"},
		{CategoryEnvironmental, "Account for terrain and positioning before resolving"},
		{CategoryNarrative, "Interrupt or escalate the fight narratively"},
	},
	intent.CategoryMagic: {
		{CategoryMechanical, "Resolve the casting against its difficulty"},
		{CategoryNarrative, "Let the magic succeed with an unexpected side effect"},
		{CategoryEnvironmental, "Have the surroundings react to the casting"},
	},
	intent.CategoryInvestigation: {
		{CategoryMechanical, "Resolve as a perception or knowledge check"},
		{CategoryNarrative, "Reveal a partial clue that raises a new question"},
	},
	intent.CategoryInfluence: {
		{CategorySocial, "Resolve as a contest of wills against the target"},
		{CategoryNarrative, "Let the target counter-offer or bargain"},
		{CategorySocial, "Have an onlooker take an interest in the exchange"},
	},
	intent.CategoryInteraction: {
		{CategoryMechanical, "Resolve the manipulation directly"},
		{CategoryEnvironmental, "Complicate the object's state or surroundings"},
	},
	intent.CategoryMovement: {
		{CategoryMechanical, "Resolve the traversal against its hazards"},
		{CategoryEnvironmental, "Change what the route reveals along the way"},
		{CategoryNarrative, "Let the movement draw attention"},
	},
	intent.CategoryEnvironment: {
		{CategoryEnvironmental, "Resolve the alteration and its immediate fallout"},
		{CategoryNarrative, "Let the change ripple into neighboring areas"},
	},
	intent.CategoryOther: {
		{CategoryOther, "Ask the player to restate the intent"},
		{CategoryNarrative, "Improvise a scene beat from the stated intent"},
	},
}

// Generate produces the fixed option set for a classified intent. Output is
// deterministic: identical intents yield identical sets.
func Generate(parsed intent.ParsedIntent) Set {
	entries, ok := templates[parsed.Category]
	if !ok {
		entries = templates[intent.CategoryOther]
	}

	options := make([]Option, 0, len(entries))
	for i, entry := range entries {
		options = append(options, Option{
			ID:          fmt.Sprintf("%s-%d", parsed.Category, i+1),
			Category:    entry.category,
			Description: entry.description,
		})
	}

	return Set{
		Context: contextLine(parsed),
		Options: options,
	}
}

// contextLine restates the intent's fields for audit output.
func contextLine(parsed intent.ParsedIntent) string {
	target := parsed.Target
	if target == "" {
		target = "-"
	}
	method := parsed.Method
	if method == "" {
		method = "-"
	}
	return fmt.Sprintf("actor=%s category=%s target=%s method=%s ambiguity=%s",
		parsed.Actor, parsed.Category, target, method, parsed.Ambiguity)
}
