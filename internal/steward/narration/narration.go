// Package narration renders one recorded event into descriptive text.
//
// The renderer is a pure mapping over a single event's type and payload. It
// accepts only events, never proposals, and never reads ahead: the text it
// produces reveals nothing that is not present in the event itself. Tone
// changes phrasing, never content.
package narration

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/emberhall/steward/internal/steward/event"
)

// Tone selects a phrasing template.
type Tone string

const (
	ToneNeutral  Tone = "neutral"
	ToneTense    Tone = "tense"
	ToneQuiet    Tone = "quiet"
	ToneDramatic Tone = "dramatic"
)

// Options adjusts phrasing. Neither field can change what happened.
type Options struct {
	Tone Tone
	// SensoryLevel adds detail drawn from the event's own payload:
	// 0 is bare, 1 adds resolution mechanics, 2 adds location texture.
	SensoryLevel int
}

// Rendering is the renderer's output for one event.
type Rendering struct {
	EventID string
	Text    string
}

var titler = cases.Title(language.English)

// Render maps one recorded event to text. Unknown event types fall back to a
// generic, content-free line rather than guessing.
func Render(evt event.Event, opts Options) Rendering {
	tone := opts.Tone
	if tone == "" {
		tone = ToneNeutral
	}

	var text string
	switch payload := evt.Payload.(type) {
	case event.OutcomePayload:
		text = renderOutcome(payload, tone, opts.SensoryLevel)
	case event.NoteAddedPayload:
		text = fmt.Sprintf("Noted: %s", ensurePeriod(payload.Content))
	case event.SceneSetPayload:
		text = renderScene(payload, tone)
	case event.SessionStartedPayload:
		text = renderSessionStarted(payload, tone)
	case event.SessionEndedPayload:
		text = renderSessionEnded(payload, tone)
	default:
		text = "Something shifts in the record, though its shape is not described."
	}

	return Rendering{EventID: evt.ID, Text: text}
}

func renderOutcome(payload event.OutcomePayload, tone Tone, sensoryLevel int) string {
	var sb strings.Builder
	sb.WriteString("Confirmed: ")
	sb.WriteString(ensurePeriod(payload.Description))

	switch tone {
	case ToneTense:
		sb.WriteString(" The air stays taut.")
	case ToneQuiet:
		sb.WriteString(" The moment passes softly.")
	case ToneDramatic:
		sb.WriteString(" The weight of it lingers.")
	}

	if sensoryLevel >= 1 && payload.Dice != nil {
		sb.WriteString(" ")
		sb.WriteString(describeDice(payload.Dice))
	}
	if sensoryLevel >= 2 && payload.World != nil && payload.World.RoomID != "" {
		sb.WriteString(fmt.Sprintf(" The scene holds at %s.", payload.World.RoomID))
	}
	return sb.String()
}

func describeDice(record *event.DiceRecord) string {
	switch record.Mode {
	case event.ResolutionNarrative:
		return "No dice were asked for."
	case event.ResolutionAuto:
		if record.Total != nil && record.Difficulty != nil {
			return fmt.Sprintf("The steward's dice came up %d against difficulty %d.", *record.Total, *record.Difficulty)
		}
		return "The steward resolved it without a contest."
	default:
		if record.Total != nil && record.Difficulty != nil {
			return fmt.Sprintf("The dice came up %d against difficulty %d.", *record.Total, *record.Difficulty)
		}
		if record.Total != nil {
			return fmt.Sprintf("The dice came up %d.", *record.Total)
		}
		return "The dice had their say."
	}
}

func renderScene(payload event.SceneSetPayload, tone Tone) string {
	name := strings.TrimSpace(payload.Name)
	if name == "" {
		name = "an unnamed place"
	}
	if tone == ToneDramatic {
		name = titler.String(name)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("The scene is set: %s.", name))
	if description := strings.TrimSpace(payload.Description); description != "" {
		sb.WriteString(" ")
		sb.WriteString(ensurePeriod(description))
	}
	return sb.String()
}

func renderSessionStarted(payload event.SessionStartedPayload, tone Tone) string {
	name := strings.TrimSpace(payload.SessionName)
	switch {
	case name != "" && tone == ToneDramatic:
		return fmt.Sprintf("%s begins.", titler.String(name))
	case name != "":
		return fmt.Sprintf("The session %q begins.", name)
	default:
		return "The session begins."
	}
}

func renderSessionEnded(payload event.SessionEndedPayload, tone Tone) string {
	reason := strings.TrimSpace(payload.Reason)
	base := "The session comes to a close."
	if tone == ToneQuiet {
		base = "The session winds down."
	}
	if reason != "" {
		return fmt.Sprintf("%s %s", base, ensurePeriod(reason))
	}
	return base
}

// ensurePeriod terminates prose without doubling punctuation.
func ensurePeriod(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return text
	}
	switch text[len(text)-1] {
	case '.', '!', '?':
		return text
	}
	return text + "."
}
