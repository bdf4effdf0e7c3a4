package mcp

import (
	"context"

	"github.com/emberhall/steward/internal/service"
	"github.com/emberhall/steward/internal/steward/narration"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerViewTools(mcpServer *mcp.Server, svc *service.Service) {
	mcp.AddTool(mcpServer, narrateTool(), narrateHandler(svc))
	mcp.AddTool(mcpServer, roomGraphTool(), roomGraphHandler(svc))
	mcp.AddTool(mcpServer, patrolHeatTool(), patrolHeatHandler(svc))
	mcp.AddTool(mcpServer, keysDoorsTool(), keysDoorsHandler(svc))
	mcp.AddTool(mcpServer, pacingAdviseTool(), pacingAdviseHandler(svc))
}

// NarrateInput represents the MCP tool input for narrating an event.
type NarrateInput struct {
	SessionID    string `json:"session_id" jsonschema:"session identifier"`
	EventID      string `json:"event_id,omitempty" jsonschema:"event to narrate; empty narrates the most recent event"`
	Tone         string `json:"tone,omitempty" jsonschema:"narration tone (neutral, tense, quiet, dramatic)"`
	SensoryLevel int    `json:"sensory_level,omitempty" jsonschema:"detail level, 0 through 2"`
}

// NarrateResult represents the MCP tool output for narrating an event.
type NarrateResult struct {
	EventID string `json:"event_id" jsonschema:"narrated event identifier"`
	Text    string `json:"text" jsonschema:"narration text"`
}

func narrateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "narrate",
		Description: "Renders a recorded event as narration. Tone and sensory level adjust phrasing but never change what happened.",
	}
}

func narrateHandler(svc *service.Service) mcp.ToolHandlerFor[NarrateInput, NarrateResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input NarrateInput) (*mcp.CallToolResult, NarrateResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		rendering, err := svc.Narrate(runCtx, input.SessionID, input.EventID, narration.Options{
			Tone:         narration.Tone(input.Tone),
			SensoryLevel: input.SensoryLevel,
		})
		if err != nil {
			return nil, NarrateResult{}, err
		}
		return nil, NarrateResult{EventID: rendering.EventID, Text: rendering.Text}, nil
	}
}

// RoomEntry is one room node in the graph output.
type RoomEntry struct {
	ID    string  `json:"id" jsonschema:"room identifier"`
	Order int     `json:"order" jsonschema:"discovery index, starting at 0"`
	X     float64 `json:"x" jsonschema:"layout x coordinate"`
	Y     float64 `json:"y" jsonschema:"layout y coordinate"`
	Heat  int     `json:"heat" jsonschema:"cumulative noise score"`
}

// EdgeEntry is one undirected adjacency in the graph output.
type EdgeEntry struct {
	From string `json:"from" jsonschema:"one end of the adjacency"`
	To   string `json:"to" jsonschema:"the other end of the adjacency"`
}

// RoomGraphInput represents the MCP tool input for the room graph view.
type RoomGraphInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
}

// RoomGraphResult represents the MCP tool output for the room graph view.
type RoomGraphResult struct {
	Rooms []RoomEntry `json:"rooms" jsonschema:"rooms in discovery order"`
	Edges []EdgeEntry `json:"edges" jsonschema:"undirected adjacencies"`
}

func roomGraphTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "room_graph",
		Description: "Derives the room graph from the session's event log.",
	}
}

func roomGraphHandler(svc *service.Service) mcp.ToolHandlerFor[RoomGraphInput, RoomGraphResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input RoomGraphInput) (*mcp.CallToolResult, RoomGraphResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		graph, err := svc.RoomGraph(runCtx, input.SessionID)
		if err != nil {
			return nil, RoomGraphResult{}, err
		}

		rooms := make([]RoomEntry, 0, len(graph.Rooms))
		for _, room := range graph.Rooms {
			rooms = append(rooms, RoomEntry{ID: room.ID, Order: room.Order, X: room.X, Y: room.Y, Heat: room.Heat})
		}
		edges := make([]EdgeEntry, 0, len(graph.Edges))
		for _, edge := range graph.Edges {
			edges = append(edges, EdgeEntry{From: edge.From, To: edge.To})
		}
		return nil, RoomGraphResult{Rooms: rooms, Edges: edges}, nil
	}
}

// PatrolHeatInput represents the MCP tool input for the patrol heat view.
type PatrolHeatInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
}

// PatrolHeatResult represents the MCP tool output for the patrol heat view.
type PatrolHeatResult struct {
	Levels map[string]int `json:"levels" jsonschema:"room id to bounded heat score"`
	Visits map[string]int `json:"visits" jsonschema:"room id to event reference count"`
}

func patrolHeatTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "patrol_heat",
		Description: "Derives per-room patrol heat from the session's event log.",
	}
}

func patrolHeatHandler(svc *service.Service) mcp.ToolHandlerFor[PatrolHeatInput, PatrolHeatResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PatrolHeatInput) (*mcp.CallToolResult, PatrolHeatResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		snapshot, err := svc.PatrolHeat(runCtx, input.SessionID)
		if err != nil {
			return nil, PatrolHeatResult{}, err
		}
		return nil, PatrolHeatResult{Levels: snapshot.Levels, Visits: snapshot.Visits}, nil
	}
}

// DoorEntry is one known door in the keys and doors output.
type DoorEntry struct {
	RoomID         string `json:"room_id" jsonschema:"room the door belongs to"`
	LeadsTo        string `json:"leads_to,omitempty" jsonschema:"room behind the door, when known"`
	Locked         bool   `json:"locked" jsonschema:"whether the door is currently locked"`
	KeyID          string `json:"key_id,omitempty" jsonschema:"key that opens the door, when one exists"`
	HasMatchingKey bool   `json:"has_matching_key" jsonschema:"whether the required key appears in the inventory"`
}

// KeysDoorsInput represents the MCP tool input for the keys and doors view.
type KeysDoorsInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
}

// KeysDoorsResult represents the MCP tool output for the keys and doors view.
type KeysDoorsResult struct {
	Keys  []string    `json:"keys" jsonschema:"distinct key ids, sorted"`
	Doors []DoorEntry `json:"doors" jsonschema:"known doors in first-seen order"`
}

func keysDoorsTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "keys_doors",
		Description: "Derives the key inventory and door list from the session's event log.",
	}
}

func keysDoorsHandler(svc *service.Service) mcp.ToolHandlerFor[KeysDoorsInput, KeysDoorsResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input KeysDoorsInput) (*mcp.CallToolResult, KeysDoorsResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		view, err := svc.KeysAndDoors(runCtx, input.SessionID)
		if err != nil {
			return nil, KeysDoorsResult{}, err
		}

		doors := make([]DoorEntry, 0, len(view.Doors))
		for _, door := range view.Doors {
			doors = append(doors, DoorEntry{
				RoomID:         door.RoomID,
				LeadsTo:        door.LeadsTo,
				Locked:         door.Locked,
				KeyID:          door.KeyID,
				HasMatchingKey: door.HasMatchingKey,
			})
		}
		return nil, KeysDoorsResult{Keys: view.Keys, Doors: doors}, nil
	}
}

// PacingAdviseInput represents the MCP tool input for pacing advice.
type PacingAdviseInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	Message   string `json:"message" jsonschema:"one table message to read signals from"`
}

// PacingAdviseResult represents the MCP tool output for pacing advice.
type PacingAdviseResult struct {
	Level        int    `json:"level" jsonschema:"pacing level after this update, 1 through 5"`
	Instructions string `json:"instructions" jsonschema:"advisory text for the narration layer"`
	LowValence   bool   `json:"low_valence" jsonschema:"flat or weary emotional tone detected"`
	HighValence  bool   `json:"high_valence" jsonschema:"excited or charged emotional tone detected"`
	Decision     bool   `json:"decision" jsonschema:"decision point detected"`
	Fatigue      bool   `json:"fatigue" jsonschema:"fatigue detected"`
}

func pacingAdviseTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "pacing_advise",
		Description: "Feeds one table message to the pacing advisor and returns its advice. The advice is advisory only and never touches the event log.",
	}
}

func pacingAdviseHandler(svc *service.Service) mcp.ToolHandlerFor[PacingAdviseInput, PacingAdviseResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input PacingAdviseInput) (*mcp.CallToolResult, PacingAdviseResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		advice, err := svc.AdvisePacing(runCtx, input.SessionID, input.Message)
		if err != nil {
			return nil, PacingAdviseResult{}, err
		}
		return nil, PacingAdviseResult{
			Level:        advice.Level,
			Instructions: advice.Instructions,
			LowValence:   advice.Signals.LowValence,
			HighValence:  advice.Signals.HighValence,
			Decision:     advice.Signals.DecisionPoint,
			Fatigue:      advice.Signals.Fatigue,
		}, nil
	}
}
