// Package pacing advises the downstream text layer on tone and tempo. It has
// no authority over the ledger or narration; its output is suggestion text
// only.
//
// State is an explicit value the caller threads through successive calls
// rather than a process-wide variable, so the smoothing rule is testable per
// call.
package pacing

import "strings"

const (
	// MinLevel is the calmest pacing level.
	MinLevel = 1
	// MaxLevel is the firmest, most structured pacing level.
	MaxLevel = 5
	// DefaultLevel is the mid-range starting level.
	DefaultLevel = 3
)

// State is the advisor's only carried state: the current pacing level.
type State struct {
	Level int
}

// DefaultState returns the mid-range starting state.
func DefaultState() State {
	return State{Level: DefaultLevel}
}

// Signals are the coarse reads derived from one message.
type Signals struct {
	// LowValence reports flat or weary emotional tone.
	LowValence bool
	// HighValence reports excited or charged emotional tone.
	HighValence bool
	// DecisionPoint reports that the message asks for or sets up a choice.
	DecisionPoint bool
	// Fatigue reports signs the player is flagging.
	Fatigue bool
}

// Advice is the advisor's output for one message.
type Advice struct {
	// Level is the pacing level after this update.
	Level int
	// Instructions is plain advisory text for the text-generation layer.
	Instructions string
	// Signals echoes the reads the level change was based on.
	Signals Signals
}

var lowValenceWords = []string{"tired", "bored", "whatever", "fine", "okay", "meh", "slow", "rest", "wait"}

var highValenceWords = []string{"!", "awesome", "amazing", "yes", "finally", "now", "attack", "charge", "run"}

var decisionWords = []string{"should i", "should we", "which", "choose", "decide", "option", "do we", "or "}

var fatigueWords = []string{"tired", "late", "long day", "wrap up", "call it", "stopping"}

// Update derives signals from one message and moves the level at most one
// step, regardless of how many signals fire. The new state and the advice
// share the same level.
func Update(state State, rawMessage string) (State, Advice) {
	level := clamp(state.Level)
	normalized := strings.ToLower(strings.TrimSpace(rawMessage))

	signals := Signals{
		LowValence:    containsAny(normalized, lowValenceWords),
		HighValence:   containsAny(normalized, highValenceWords),
		DecisionPoint: containsAny(normalized, decisionWords),
		Fatigue:       containsAny(normalized, fatigueWords),
	}

	// One step per call, firmest signal first. A decision point needs
	// structure even when the table sounds tired.
	switch {
	case signals.DecisionPoint:
		level = clamp(level + 1)
	case signals.Fatigue || signals.LowValence:
		level = clamp(level - 1)
	case signals.HighValence:
		level = clamp(level + 1)
	}

	next := State{Level: level}
	return next, Advice{
		Level:        level,
		Instructions: instructions(level, signals),
		Signals:      signals,
	}
}

// instructions maps a level and its signals to advisory text.
func instructions(level int, signals Signals) string {
	var sb strings.Builder
	switch {
	case level <= 2:
		sb.WriteString("Keep the pace gentle: shorter beats, softer stakes, room to breathe.")
	case level == 3:
		sb.WriteString("Hold a steady pace: alternate tension and relief, follow the table's lead.")
	default:
		sb.WriteString("Tighten the pace: concrete choices, clear stakes, shorter descriptions.")
	}
	if signals.DecisionPoint {
		sb.WriteString(" A decision is on the table; frame the options crisply.")
	}
	if signals.Fatigue {
		sb.WriteString(" Energy is flagging; steer toward a resting point.")
	}
	return sb.String()
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}

func clamp(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}
