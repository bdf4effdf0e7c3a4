package mcp

import (
	"context"

	"github.com/emberhall/steward/internal/service"
	"github.com/emberhall/steward/internal/steward/arbiter"
	"github.com/emberhall/steward/internal/steward/event"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerActionTools(mcpServer *mcp.Server, svc *service.Service) {
	mcp.AddTool(mcpServer, actionProposeTool(), actionProposeHandler(svc))
	mcp.AddTool(mcpServer, actionConfirmTool(), actionConfirmHandler(svc))
	mcp.AddTool(mcpServer, actionDiscardTool(), actionDiscardHandler(svc))
	mcp.AddTool(mcpServer, actionAutoResolveTool(), actionAutoResolveHandler(svc))
	mcp.AddTool(mcpServer, pendingListTool(), pendingListHandler(svc))
	mcp.AddTool(mcpServer, noteAddTool(), noteAddHandler(svc))
	mcp.AddTool(mcpServer, sceneSetTool(), sceneSetHandler(svc))
}

// OptionEntry is one generated option in a proposal draft.
type OptionEntry struct {
	ID          string `json:"id" jsonschema:"option identifier"`
	Category    string `json:"category" jsonschema:"option category"`
	Description string `json:"description" jsonschema:"option description"`
}

// ActionProposeInput represents the MCP tool input for proposing an action.
type ActionProposeInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	ActorID   string `json:"actor_id" jsonschema:"player identifier"`
	Input     string `json:"input" jsonschema:"raw player input"`
}

// ActionProposeResult represents the MCP tool output for proposing an action.
type ActionProposeResult struct {
	ChangeID  string        `json:"change_id" jsonschema:"pending change identifier"`
	Category  string        `json:"category" jsonschema:"classified intent category"`
	Target    string        `json:"target,omitempty" jsonschema:"intent target, when one was found"`
	Method    string        `json:"method,omitempty" jsonschema:"intent method, when one was found"`
	Ambiguity string        `json:"ambiguity" jsonschema:"classification ambiguity grade"`
	Context   string        `json:"context" jsonschema:"restatement of the intent used for option generation"`
	Options   []OptionEntry `json:"options" jsonschema:"generated resolution options"`
}

func actionProposeTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "action_propose",
		Description: "Classifies raw player input and drafts a pending change with generated options. Nothing is recorded until the change is confirmed.",
	}
}

func actionProposeHandler(svc *service.Service) mcp.ToolHandlerFor[ActionProposeInput, ActionProposeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ActionProposeInput) (*mcp.CallToolResult, ActionProposeResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		draft, err := svc.ProposeAction(runCtx, input.SessionID, input.ActorID, input.Input)
		if err != nil {
			return nil, ActionProposeResult{}, err
		}

		options := make([]OptionEntry, 0, len(draft.Options.Options))
		for _, option := range draft.Options.Options {
			options = append(options, OptionEntry{
				ID:          option.ID,
				Category:    string(option.Category),
				Description: option.Description,
			})
		}

		return nil, ActionProposeResult{
			ChangeID:  draft.Change.ID,
			Category:  string(draft.Intent.Category),
			Target:    draft.Intent.Target,
			Method:    draft.Intent.Method,
			Ambiguity: string(draft.Intent.Ambiguity),
			Context:   draft.Options.Context,
			Options:   options,
		}, nil
	}
}

// DiceResult echoes the dice record of a recorded outcome.
type DiceResult struct {
	Mode          string `json:"mode" jsonschema:"resolution mode (narrative, auto, roll)"`
	Difficulty    *int   `json:"difficulty,omitempty" jsonschema:"declared difficulty target"`
	Total         *int   `json:"total,omitempty" jsonschema:"rolled total"`
	Results       []int  `json:"results,omitempty" jsonschema:"individual die faces"`
	Success       *bool  `json:"success,omitempty" jsonschema:"whether the difficulty was met"`
	Justification string `json:"justification,omitempty" jsonschema:"why this resolution was chosen"`
}

// OutcomeResult represents a recorded action.outcome event.
type OutcomeResult struct {
	EventID     string      `json:"event_id" jsonschema:"recorded event identifier"`
	Seq         uint64      `json:"seq" jsonschema:"per-session sequence number"`
	Description string      `json:"description" jsonschema:"resolved result text"`
	Dice        *DiceResult `json:"dice,omitempty" jsonschema:"resolution mechanics, when any were used"`
	Audit       []string    `json:"audit,omitempty" jsonschema:"audit trail notes"`
}

// ActionConfirmInput represents the MCP tool input for confirming a change.
type ActionConfirmInput struct {
	SessionID     string `json:"session_id" jsonschema:"session identifier"`
	ChangeID      string `json:"change_id" jsonschema:"pending change identifier"`
	ConfirmedBy   string `json:"confirmed_by" jsonschema:"steward identifier confirming the change"`
	Mode          string `json:"mode,omitempty" jsonschema:"resolution mode (narrative, auto, roll); empty means narrative"`
	Modifier      int    `json:"modifier,omitempty" jsonschema:"additive roll modifier"`
	Difficulty    *int   `json:"difficulty,omitempty" jsonschema:"optional difficulty target"`
	Seed          int64  `json:"seed,omitempty" jsonschema:"roll seed; identical seeds reproduce identical rolls"`
	Justification string `json:"justification,omitempty" jsonschema:"why this resolution was chosen"`
}

// ActionConfirmResult represents the MCP tool output for confirming a change.
type ActionConfirmResult struct {
	Confirmed bool           `json:"confirmed" jsonschema:"whether the change was pending and is now recorded"`
	Outcome   *OutcomeResult `json:"outcome,omitempty" jsonschema:"the recorded outcome, when confirmed"`
}

func actionConfirmTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "action_confirm",
		Description: "Confirms a pending change, resolves it, and records the outcome event. Confirming an id that is not pending is a no-op.",
	}
}

func actionConfirmHandler(svc *service.Service) mcp.ToolHandlerFor[ActionConfirmInput, ActionConfirmResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ActionConfirmInput) (*mcp.CallToolResult, ActionConfirmResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		res := arbiter.Resolution{
			Mode:          event.ResolutionMode(input.Mode),
			Modifier:      input.Modifier,
			Difficulty:    input.Difficulty,
			Seed:          input.Seed,
			Justification: input.Justification,
		}
		evt, ok, err := svc.ConfirmAction(runCtx, input.SessionID, input.ChangeID, input.ConfirmedBy, res)
		if err != nil {
			return nil, ActionConfirmResult{}, err
		}
		if !ok {
			return nil, ActionConfirmResult{Confirmed: false}, nil
		}
		return nil, ActionConfirmResult{Confirmed: true, Outcome: outcomeResult(evt)}, nil
	}
}

// ActionDiscardInput represents the MCP tool input for discarding a change.
type ActionDiscardInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	ChangeID  string `json:"change_id" jsonschema:"pending change identifier"`
}

// ActionDiscardResult represents the MCP tool output for discarding a change.
type ActionDiscardResult struct {
	Discarded bool `json:"discarded" jsonschema:"whether the change was pending and is now dropped"`
}

func actionDiscardTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "action_discard",
		Description: "Drops a pending change without recording anything.",
	}
}

func actionDiscardHandler(svc *service.Service) mcp.ToolHandlerFor[ActionDiscardInput, ActionDiscardResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ActionDiscardInput) (*mcp.CallToolResult, ActionDiscardResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		ok, err := svc.DiscardAction(runCtx, input.SessionID, input.ChangeID)
		if err != nil {
			return nil, ActionDiscardResult{}, err
		}
		return nil, ActionDiscardResult{Discarded: ok}, nil
	}
}

// ActionAutoResolveInput represents the MCP tool input for auto-resolving.
type ActionAutoResolveInput struct {
	SessionID     string `json:"session_id" jsonschema:"session identifier"`
	ActorID       string `json:"actor_id" jsonschema:"player identifier"`
	Input         string `json:"input" jsonschema:"raw player input"`
	Mode          string `json:"mode,omitempty" jsonschema:"resolution mode (auto, roll); empty means auto"`
	Modifier      int    `json:"modifier,omitempty" jsonschema:"additive roll modifier"`
	Difficulty    *int   `json:"difficulty,omitempty" jsonschema:"optional difficulty target"`
	Seed          int64  `json:"seed,omitempty" jsonschema:"roll seed; identical seeds reproduce identical rolls"`
	Justification string `json:"justification,omitempty" jsonschema:"why this resolution was chosen"`
}

func actionAutoResolveTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "action_auto_resolve",
		Description: "Runs the governed propose, confirm, record workflow in one call. The confirmation is attributed to the system actor and the outcome carries an audit trail.",
	}
}

func actionAutoResolveHandler(svc *service.Service) mcp.ToolHandlerFor[ActionAutoResolveInput, OutcomeResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ActionAutoResolveInput) (*mcp.CallToolResult, OutcomeResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		res := arbiter.Resolution{
			Mode:          event.ResolutionMode(input.Mode),
			Modifier:      input.Modifier,
			Difficulty:    input.Difficulty,
			Seed:          input.Seed,
			Justification: input.Justification,
		}
		evt, err := svc.AutoResolveAction(runCtx, input.SessionID, input.ActorID, input.Input, res)
		if err != nil {
			return nil, OutcomeResult{}, err
		}
		return nil, *outcomeResult(evt), nil
	}
}

// PendingEntry is one pending change in a listing.
type PendingEntry struct {
	ChangeID    string `json:"change_id" jsonschema:"pending change identifier"`
	ProposedBy  string `json:"proposed_by" jsonschema:"actor who proposed the change"`
	Description string `json:"description" jsonschema:"proposed change description"`
}

// PendingListInput represents the MCP tool input for listing pending changes.
type PendingListInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
}

// PendingListResult represents the MCP tool output for listing pending changes.
type PendingListResult struct {
	Pending []PendingEntry `json:"pending" jsonschema:"pending changes in proposal order"`
}

func pendingListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "pending_list",
		Description: "Lists the pending proposed changes of a session.",
	}
}

func pendingListHandler(svc *service.Service) mcp.ToolHandlerFor[PendingListInput, PendingListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PendingListInput) (*mcp.CallToolResult, PendingListResult, error) {
		pending, err := svc.PendingChanges(input.SessionID)
		if err != nil {
			return nil, PendingListResult{}, err
		}

		entries := make([]PendingEntry, 0, len(pending))
		for _, change := range pending {
			entries = append(entries, PendingEntry{
				ChangeID:    change.ID,
				ProposedBy:  change.ProposedBy,
				Description: change.Description,
			})
		}
		return nil, PendingListResult{Pending: entries}, nil
	}
}

// NoteAddInput represents the MCP tool input for adding a note.
type NoteAddInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	ActorID   string `json:"actor_id,omitempty" jsonschema:"steward identifier"`
	Content   string `json:"content" jsonschema:"note content"`
}

// NoteAddResult represents the MCP tool output for adding a note.
type NoteAddResult struct {
	Recorded bool `json:"recorded" jsonschema:"whether the note was recorded"`
}

func noteAddTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "note_add",
		Description: "Records a bookkeeping note from the steward.",
	}
}

func noteAddHandler(svc *service.Service) mcp.ToolHandlerFor[NoteAddInput, NoteAddResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input NoteAddInput) (*mcp.CallToolResult, NoteAddResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		if err := svc.AddNote(runCtx, input.SessionID, input.ActorID, input.Content); err != nil {
			return nil, NoteAddResult{}, err
		}
		return nil, NoteAddResult{Recorded: true}, nil
	}
}

// SceneSetInput represents the MCP tool input for setting a scene.
type SceneSetInput struct {
	SessionID   string `json:"session_id" jsonschema:"session identifier"`
	Name        string `json:"name" jsonschema:"scene name"`
	Description string `json:"description,omitempty" jsonschema:"scene description in prose"`
	RoomID      string `json:"room_id,omitempty" jsonschema:"room the scene establishes, when one applies"`
}

// SceneSetResult represents the MCP tool output for setting a scene.
type SceneSetResult struct {
	Recorded bool `json:"recorded" jsonschema:"whether the scene.set event was recorded"`
}

func sceneSetTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "scene_set",
		Description: "Records a scene.set event establishing a scene.",
	}
}

func sceneSetHandler(svc *service.Service) mcp.ToolHandlerFor[SceneSetInput, SceneSetResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SceneSetInput) (*mcp.CallToolResult, SceneSetResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		var world *event.WorldFragment
		if input.RoomID != "" {
			world = &event.WorldFragment{RoomID: input.RoomID}
		}
		if err := svc.SetScene(runCtx, input.SessionID, input.Name, input.Description, world); err != nil {
			return nil, SceneSetResult{}, err
		}
		return nil, SceneSetResult{Recorded: true}, nil
	}
}

// outcomeResult maps a recorded outcome event onto the tool output shape.
func outcomeResult(evt event.Event) *OutcomeResult {
	result := &OutcomeResult{EventID: evt.ID, Seq: evt.Seq}
	payload, ok := evt.Payload.(event.OutcomePayload)
	if !ok {
		return result
	}
	result.Description = payload.Description
	result.Audit = payload.Audit
	if payload.Dice != nil {
		result.Dice = &DiceResult{
			Mode:          string(payload.Dice.Mode),
			Difficulty:    payload.Dice.Difficulty,
			Total:         payload.Dice.Total,
			Results:       payload.Dice.Results,
			Success:       payload.Dice.Success,
			Justification: payload.Dice.Justification,
		}
	}
	return result
}
