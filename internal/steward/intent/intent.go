// Package intent classifies raw player text into a category, target, and
// method. Classification only labels; it never decides, never consults
// session state, and never uses randomness.
package intent

import "strings"

// Category buckets a player's stated intent.
type Category string

const (
	CategoryCombat        Category = "combat"
	CategoryMagic         Category = "magic"
	CategoryInvestigation Category = "investigation"
	CategoryInfluence     Category = "influence"
	CategoryInteraction   Category = "interaction"
	CategoryMovement      Category = "movement"
	CategoryEnvironment   Category = "environment"
	CategoryOther         Category = "other"
)

// Ambiguity grades how clearly the intent reads.
type Ambiguity string

const (
	AmbiguityLow    Ambiguity = "low"
	AmbiguityMedium Ambiguity = "medium"
	AmbiguityHigh   Ambiguity = "high"
)

// ParsedIntent is the classifier's label for one raw input.
type ParsedIntent struct {
	// Actor is the id of the player who wrote the input.
	Actor string
	// RawInput is the input exactly as received.
	RawInput string
	// Category is the first matching category in priority order.
	Category Category
	// Target is the thing the intent acts on, when one could be sliced out.
	// Empty when no match was found; callers must tolerate that.
	Target string
	// Method is how the actor means to do it, when one could be sliced out.
	Method string
	// Ambiguity grades the input's clarity.
	Ambiguity Ambiguity
}

// categoryKeywords pairs each category with its membership keywords. Order is
// load-bearing: the first category whose keyword appears wins, so "attack
// with the torch" classifies as combat even though "with" reads as
// interaction phrasing. Changing the order changes classification.
var categoryKeywords = []struct {
	category Category
	keywords []string
}{
	{CategoryCombat, []string{"attack", "strike", "fight", "shoot", "stab", "punch", "swing", "slash", "charge", "ambush"}},
	{CategoryMagic, []string{"cast", "spell", "ritual", "enchant", "summon", "invoke", "hex", "ward"}},
	{CategoryInvestigation, []string{"search", "look", "examine", "inspect", "investigate", "study", "listen", "read", "check"}},
	{CategoryInfluence, []string{"persuade", "convince", "intimidate", "threaten", "bribe", "charm", "deceive", "lie", "negotiate"}},
	{CategoryInteraction, []string{"use", "open", "close", "pick", "grab", "take", "pull", "push", "unlock", "lock", "give", "throw"}},
	{CategoryMovement, []string{"go", "walk", "run", "climb", "sneak", "cross", "jump", "swim", "crawl", "enter", "leave", "follow", "hide"}},
	{CategoryEnvironment, []string{"burn", "break", "douse", "barricade", "flood", "collapse", "light", "extinguish"}},
}

// hedgingWords mark uncertain phrasing and push ambiguity up.
var hedgingWords = []string{"maybe", "perhaps", "try", "somehow", "might", "possibly", "attempt", "kind of", "sort of"}

// methodPrepositions introduce the means of an action.
var methodPrepositions = []string{"with", "using", "by"}

// targetPrepositions introduce the object of an action.
var targetPrepositions = []string{"at", "on", "toward", "towards", "into", "to", "the"}

// Classify labels one raw input. It is deterministic and side-effect free:
// the same arguments always produce the same ParsedIntent.
func Classify(actorID, rawText string) ParsedIntent {
	parsed := ParsedIntent{
		Actor:     actorID,
		RawInput:  rawText,
		Category:  CategoryOther,
		Ambiguity: AmbiguityLow,
	}

	normalized := strings.ToLower(strings.TrimSpace(rawText))
	if normalized == "" {
		parsed.Ambiguity = AmbiguityHigh
		return parsed
	}

	words := strings.Fields(normalized)

	for _, entry := range categoryKeywords {
		if containsAny(words, entry.keywords) {
			parsed.Category = entry.category
			break
		}
	}

	parsed.Method = afterPreposition(words, methodPrepositions)
	parsed.Target = afterPreposition(wordsBeforeAny(words, methodPrepositions), targetPrepositions)
	parsed.Ambiguity = gradeAmbiguity(normalized, words, parsed.Category)
	return parsed
}

// containsAny reports whether any keyword appears as a whole word.
func containsAny(words []string, keywords []string) bool {
	for _, word := range words {
		trimmed := strings.Trim(word, ".,!?;:'\"")
		for _, keyword := range keywords {
			if trimmed == keyword {
				return true
			}
		}
	}
	return false
}

// afterPreposition returns the text following the first matching preposition,
// or empty when none is found.
func afterPreposition(words []string, prepositions []string) string {
	for i, word := range words {
		for _, preposition := range prepositions {
			if word == preposition && i+1 < len(words) {
				rest := strings.Join(words[i+1:], " ")
				return strings.Trim(rest, ".,!?;:'\"")
			}
		}
	}
	return ""
}

// wordsBeforeAny truncates words at the first matching preposition so target
// slicing does not swallow the method clause.
func wordsBeforeAny(words []string, prepositions []string) []string {
	for i, word := range words {
		for _, preposition := range prepositions {
			if word == preposition {
				return words[:i]
			}
		}
	}
	return words
}

// gradeAmbiguity derives the three-level grade from hedging and length.
func gradeAmbiguity(normalized string, words []string, category Category) Ambiguity {
	for _, hedge := range hedgingWords {
		if strings.Contains(normalized, hedge) {
			return AmbiguityHigh
		}
	}
	if len(words) < 3 {
		return AmbiguityHigh
	}
	if category == CategoryOther || len(words) < 5 {
		return AmbiguityMedium
	}
	return AmbiguityLow
}
