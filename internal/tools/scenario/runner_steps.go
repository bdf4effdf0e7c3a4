package scenario

import (
	"context"
	"fmt"
	"strings"

	"github.com/emberhall/steward/internal/scene"
	"github.com/emberhall/steward/internal/steward/arbiter"
	"github.com/emberhall/steward/internal/steward/event"
	"github.com/emberhall/steward/internal/steward/narration"
)

func (r *Runner) runStep(ctx context.Context, state *scenarioState, index int, step Step) error {
	switch step.Kind {
	case "start_session":
		return r.runStartSessionStep(ctx, state, step)
	case "end_session":
		return r.runEndSessionStep(ctx, state, step)
	case "set_scene":
		return r.runSetSceneStep(ctx, state, step)
	case "propose":
		return r.runProposeStep(ctx, state, index, step)
	case "confirm":
		return r.runConfirmStep(ctx, state, step)
	case "discard":
		return r.runDiscardStep(ctx, state, step)
	case "auto_resolve":
		return r.runAutoResolveStep(ctx, state, step)
	case "note":
		return r.runNoteStep(ctx, state, step)
	case "narrate":
		return r.runNarrateStep(ctx, state, step)
	case "pacing":
		return r.runPacingStep(ctx, state, step)
	case "room_graph":
		return r.runRoomGraphStep(ctx, state, step)
	case "patrol_heat":
		return r.runPatrolHeatStep(ctx, state, step)
	case "keys_and_doors":
		return r.runKeysAndDoorsStep(ctx, state, step)
	default:
		return fmt.Errorf("unknown step kind %q", step.Kind)
	}
}

func (r *Runner) runStartSessionStep(ctx context.Context, state *scenarioState, step Step) error {
	sessionID := optionalString(step.Args, "id", "scenario")
	name := optionalString(step.Args, "name", "Scenario Session")
	if err := r.svc.StartSession(ctx, sessionID, name); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	state.sessionID = sessionID
	return nil
}

func (r *Runner) runEndSessionStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.requireSession(state); err != nil {
		return err
	}
	reason := optionalString(step.Args, "reason", "")
	if err := r.svc.EndSession(ctx, state.sessionID, reason); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	return nil
}

func (r *Runner) runSetSceneStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.requireSession(state); err != nil {
		return err
	}

	if file := optionalString(step.Args, "file", ""); file != "" {
		sc, err := scene.LoadFile(file)
		if err != nil {
			return fmt.Errorf("load scene: %w", err)
		}
		for _, payload := range sc.Payloads() {
			if err := r.svc.SetScene(ctx, state.sessionID, payload.Name, payload.Description, payload.World); err != nil {
				return fmt.Errorf("set scene: %w", err)
			}
		}
		return nil
	}

	name := requiredString(step.Args, "name")
	if name == "" {
		return fmt.Errorf("set_scene needs a file or a name")
	}
	description := optionalString(step.Args, "description", "")
	if err := r.svc.SetScene(ctx, state.sessionID, name, description, nil); err != nil {
		return fmt.Errorf("set scene: %w", err)
	}
	return nil
}

func (r *Runner) runProposeStep(ctx context.Context, state *scenarioState, index int, step Step) error {
	if err := r.requireSession(state); err != nil {
		return err
	}

	actor := optionalString(step.Args, "actor", "player")
	input := requiredString(step.Args, "input")
	draft, err := r.svc.ProposeAction(ctx, state.sessionID, actor, input)
	if err != nil {
		return fmt.Errorf("propose: %w", err)
	}
	state.changes[index] = draft.Change.ID

	if want := optionalString(step.Args, "expect_intent", ""); want != "" {
		if string(draft.Intent.Category) != want {
			return fmt.Errorf("intent category = %q, want %q", draft.Intent.Category, want)
		}
	}
	if want, ok := readInt(step.Args, "expect_options"); ok {
		if len(draft.Options.Options) != want {
			return fmt.Errorf("options = %d, want %d", len(draft.Options.Options), want)
		}
	}
	return nil
}

func (r *Runner) runConfirmStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.requireSession(state); err != nil {
		return err
	}

	changeID, err := resolveChangeID(state, step.Args)
	if err != nil {
		return err
	}
	confirmedBy := optionalString(step.Args, "by", "gm")
	res := buildResolution(step.Args)

	evt, ok, err := r.svc.ConfirmAction(ctx, state.sessionID, changeID, confirmedBy, res)
	if err != nil {
		return fmt.Errorf("confirm: %w", err)
	}
	if !ok {
		return fmt.Errorf("change %s is not pending", changeID)
	}

	if want, ok := readBool(step.Args, "expect_success"); ok {
		payload, isOutcome := evt.Payload.(event.OutcomePayload)
		if !isOutcome || payload.Dice == nil || payload.Dice.Success == nil {
			return fmt.Errorf("outcome carries no dice success to check")
		}
		if *payload.Dice.Success != want {
			return fmt.Errorf("dice success = %t, want %t", *payload.Dice.Success, want)
		}
	}
	return nil
}

func (r *Runner) runDiscardStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.requireSession(state); err != nil {
		return err
	}

	changeID, err := resolveChangeID(state, step.Args)
	if err != nil {
		return err
	}
	ok, err := r.svc.DiscardAction(ctx, state.sessionID, changeID)
	if err != nil {
		return fmt.Errorf("discard: %w", err)
	}
	if !ok {
		return fmt.Errorf("change %s is not pending", changeID)
	}
	return nil
}

func (r *Runner) runAutoResolveStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.requireSession(state); err != nil {
		return err
	}

	actor := optionalString(step.Args, "actor", "player")
	input := requiredString(step.Args, "input")
	res := buildResolution(step.Args)
	if _, err := r.svc.AutoResolveAction(ctx, state.sessionID, actor, input, res); err != nil {
		return fmt.Errorf("auto resolve: %w", err)
	}
	return nil
}

func (r *Runner) runNoteStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.requireSession(state); err != nil {
		return err
	}

	actor := optionalString(step.Args, "actor", "steward")
	content := requiredString(step.Args, "content")
	if err := r.svc.AddNote(ctx, state.sessionID, actor, content); err != nil {
		return fmt.Errorf("add note: %w", err)
	}
	return nil
}

func (r *Runner) runNarrateStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.requireSession(state); err != nil {
		return err
	}

	opts := narration.Options{
		Tone:         narration.Tone(optionalString(step.Args, "tone", "")),
		SensoryLevel: optionalInt(step.Args, "sensory", 0),
	}
	rendering, err := r.svc.Narrate(ctx, state.sessionID, optionalString(step.Args, "event", ""), opts)
	if err != nil {
		return fmt.Errorf("narrate: %w", err)
	}
	if want := optionalString(step.Args, "expect_contains", ""); want != "" {
		if !strings.Contains(rendering.Text, want) {
			return fmt.Errorf("narration %q does not contain %q", rendering.Text, want)
		}
	}
	return nil
}

func (r *Runner) runPacingStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.requireSession(state); err != nil {
		return err
	}

	message := requiredString(step.Args, "message")
	advice, err := r.svc.AdvisePacing(ctx, state.sessionID, message)
	if err != nil {
		return fmt.Errorf("pacing: %w", err)
	}
	if want, ok := readInt(step.Args, "expect_level"); ok {
		if advice.Level != want {
			return fmt.Errorf("pacing level = %d, want %d", advice.Level, want)
		}
	}
	return nil
}

func (r *Runner) runRoomGraphStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.requireSession(state); err != nil {
		return err
	}

	graph, err := r.svc.RoomGraph(ctx, state.sessionID)
	if err != nil {
		return fmt.Errorf("room graph: %w", err)
	}
	if want, ok := readInt(step.Args, "expect_rooms"); ok {
		if len(graph.Rooms) != want {
			return fmt.Errorf("rooms = %d, want %d", len(graph.Rooms), want)
		}
	}
	if want, ok := readInt(step.Args, "expect_edges"); ok {
		if len(graph.Edges) != want {
			return fmt.Errorf("edges = %d, want %d", len(graph.Edges), want)
		}
	}
	return nil
}

func (r *Runner) runPatrolHeatStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.requireSession(state); err != nil {
		return err
	}

	snapshot, err := r.svc.PatrolHeat(ctx, state.sessionID)
	if err != nil {
		return fmt.Errorf("patrol heat: %w", err)
	}
	if room := optionalString(step.Args, "room", ""); room != "" {
		if want, ok := readInt(step.Args, "expect_heat"); ok {
			if snapshot.Levels[room] != want {
				return fmt.Errorf("heat for %s = %d, want %d", room, snapshot.Levels[room], want)
			}
		}
	}
	return nil
}

func (r *Runner) runKeysAndDoorsStep(ctx context.Context, state *scenarioState, step Step) error {
	if err := r.requireSession(state); err != nil {
		return err
	}

	view, err := r.svc.KeysAndDoors(ctx, state.sessionID)
	if err != nil {
		return fmt.Errorf("keys and doors: %w", err)
	}
	if want, ok := readInt(step.Args, "expect_keys"); ok {
		if len(view.Keys) != want {
			return fmt.Errorf("keys = %d, want %d", len(view.Keys), want)
		}
	}
	if want, ok := readInt(step.Args, "expect_doors"); ok {
		if len(view.Doors) != want {
			return fmt.Errorf("doors = %d, want %d", len(view.Doors), want)
		}
	}
	return nil
}

func (r *Runner) requireSession(state *scenarioState) error {
	if state.sessionID == "" {
		return fmt.Errorf("no session started yet")
	}
	return nil
}

// resolveChangeID maps a confirm or discard step back to the change id its
// propose step drafted.
func resolveChangeID(state *scenarioState, args map[string]any) (string, error) {
	index, ok := readInt(args, "proposal")
	if !ok {
		return "", fmt.Errorf("step is not bound to a proposal")
	}
	changeID, ok := state.changes[index]
	if !ok {
		return "", fmt.Errorf("proposal step %d was not run", index+1)
	}
	return changeID, nil
}

// buildResolution maps step args onto a dice resolution. Absent args leave
// the zero narrative resolution.
func buildResolution(args map[string]any) arbiter.Resolution {
	res := arbiter.Resolution{
		Mode:          event.ResolutionMode(optionalString(args, "mode", "")),
		Modifier:      optionalInt(args, "modifier", 0),
		Seed:          int64(optionalInt(args, "seed", 0)),
		Justification: optionalString(args, "justification", ""),
	}
	if difficulty, ok := readInt(args, "difficulty"); ok {
		res.Difficulty = &difficulty
	}
	return res
}

func requiredString(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	value, ok := args[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

func optionalString(args map[string]any, key, fallback string) string {
	if args == nil {
		return fallback
	}
	value, ok := args[key].(string)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

func readInt(args map[string]any, key string) (int, bool) {
	if args == nil {
		return 0, false
	}
	switch value := args[key].(type) {
	case int:
		return value, true
	case float64:
		return int(value), true
	default:
		return 0, false
	}
}

func optionalInt(args map[string]any, key string, fallback int) int {
	if value, ok := readInt(args, key); ok {
		return value
	}
	return fallback
}

func readBool(args map[string]any, key string) (bool, bool) {
	if args == nil {
		return false, false
	}
	value, ok := args[key].(bool)
	return value, ok
}
