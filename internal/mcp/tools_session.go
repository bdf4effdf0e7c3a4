package mcp

import (
	"context"
	"time"

	"github.com/emberhall/steward/internal/service"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerSessionTools(mcpServer *mcp.Server, svc *service.Service) {
	mcp.AddTool(mcpServer, sessionStartTool(), sessionStartHandler(svc))
	mcp.AddTool(mcpServer, sessionEndTool(), sessionEndHandler(svc))
	mcp.AddTool(mcpServer, sessionListTool(), sessionListHandler(svc))
	mcp.AddTool(mcpServer, eventListTool(), eventListHandler(svc))
}

// SessionStartInput represents the MCP tool input for starting a session.
type SessionStartInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	Name      string `json:"name,omitempty" jsonschema:"optional free-form name for the session"`
}

// SessionStartResult represents the MCP tool output for starting a session.
type SessionStartResult struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	Name      string `json:"name,omitempty" jsonschema:"session name"`
}

func sessionStartTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "session_start",
		Description: "Starts a session and records its session.started event.",
	}
}

func sessionStartHandler(svc *service.Service) mcp.ToolHandlerFor[SessionStartInput, SessionStartResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionStartInput) (*mcp.CallToolResult, SessionStartResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		if err := svc.StartSession(runCtx, input.SessionID, input.Name); err != nil {
			return nil, SessionStartResult{}, err
		}
		return nil, SessionStartResult{SessionID: input.SessionID, Name: input.Name}, nil
	}
}

// SessionEndInput represents the MCP tool input for ending a session.
type SessionEndInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	Reason    string `json:"reason,omitempty" jsonschema:"optional reason the session ended"`
}

// SessionEndResult represents the MCP tool output for ending a session.
type SessionEndResult struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
	Ended     bool   `json:"ended" jsonschema:"whether the session is now ended"`
}

func sessionEndTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "session_end",
		Description: "Ends a session. Further mutations are refused afterwards.",
	}
}

func sessionEndHandler(svc *service.Service) mcp.ToolHandlerFor[SessionEndInput, SessionEndResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input SessionEndInput) (*mcp.CallToolResult, SessionEndResult, error) {
		runCtx, cancel := context.WithTimeout(ctx, toolTimeout)
		defer cancel()

		if err := svc.EndSession(runCtx, input.SessionID, input.Reason); err != nil {
			return nil, SessionEndResult{}, err
		}
		return nil, SessionEndResult{SessionID: input.SessionID, Ended: true}, nil
	}
}

// SessionListInput represents the MCP tool input for listing sessions.
type SessionListInput struct{}

// SessionListResult represents the MCP tool output for listing sessions.
type SessionListResult struct {
	SessionIDs []string `json:"session_ids" jsonschema:"hosted session ids, sorted"`
}

func sessionListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "session_list",
		Description: "Lists hosted session ids.",
	}
}

func sessionListHandler(svc *service.Service) mcp.ToolHandlerFor[SessionListInput, SessionListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ SessionListInput) (*mcp.CallToolResult, SessionListResult, error) {
		return nil, SessionListResult{SessionIDs: svc.SessionIDs()}, nil
	}
}

// EventEntry is one recorded event in a listing.
type EventEntry struct {
	ID        string `json:"id" jsonschema:"event identifier"`
	Seq       uint64 `json:"seq" jsonschema:"per-session sequence number"`
	Type      string `json:"type" jsonschema:"event type"`
	ActorType string `json:"actor_type" jsonschema:"actor type (player, steward, system)"`
	ActorID   string `json:"actor_id,omitempty" jsonschema:"actor identifier"`
	Timestamp string `json:"timestamp" jsonschema:"RFC3339 timestamp"`
}

// EventListInput represents the MCP tool input for listing session events.
type EventListInput struct {
	SessionID string `json:"session_id" jsonschema:"session identifier"`
}

// EventListResult represents the MCP tool output for listing session events.
type EventListResult struct {
	Events []EventEntry `json:"events" jsonschema:"recorded events in log order"`
}

func eventListTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "event_list",
		Description: "Lists the recorded events of a session in log order.",
	}
}

func eventListHandler(svc *service.Service) mcp.ToolHandlerFor[EventListInput, EventListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input EventListInput) (*mcp.CallToolResult, EventListResult, error) {
		ledger, err := svc.Session(input.SessionID)
		if err != nil {
			return nil, EventListResult{}, err
		}

		entries := make([]EventEntry, 0, len(ledger.Log))
		for _, evt := range ledger.Log {
			entries = append(entries, EventEntry{
				ID:        evt.ID,
				Seq:       evt.Seq,
				Type:      string(evt.Type),
				ActorType: string(evt.Actor.Type),
				ActorID:   evt.Actor.ID,
				Timestamp: evt.Timestamp.Format(time.RFC3339),
			})
		}
		return nil, EventListResult{Events: entries}, nil
	}
}
