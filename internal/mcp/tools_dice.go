package mcp

import (
	"context"

	"github.com/emberhall/steward/internal/steward/dice"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerDiceTools(mcpServer *mcp.Server) {
	mcp.AddTool(mcpServer, diceRollTool(), diceRollHandler())
	mcp.AddTool(mcpServer, diceCheckTool(), diceCheckHandler())
}

// DieSpec is one die kind and count in a pool roll input.
type DieSpec struct {
	Sides int `json:"sides" jsonschema:"number of faces, at least 1"`
	Count int `json:"count" jsonschema:"how many of this die to roll, at least 1"`
}

// RollEntry is the results for one die spec in the pool output.
type RollEntry struct {
	Sides   int   `json:"sides" jsonschema:"number of faces"`
	Results []int `json:"results" jsonschema:"individual face values in roll order"`
	Total   int   `json:"total" jsonschema:"sum of this spec's results"`
}

// DiceRollInput represents the MCP tool input for rolling a dice pool.
type DiceRollInput struct {
	Dice []DieSpec `json:"dice" jsonschema:"dice to roll, processed in order"`
	Seed int64     `json:"seed,omitempty" jsonschema:"rng seed; the same seed and dice always reproduce the result"`
}

// DiceRollResult represents the MCP tool output for rolling a dice pool.
type DiceRollResult struct {
	Rolls []RollEntry `json:"rolls" jsonschema:"per-spec results in input order"`
	Total int         `json:"total" jsonschema:"sum across all rolls"`
}

func diceRollTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "dice_roll",
		Description: "Rolls a pool of dice. Deterministic for a given seed; never touches any session.",
	}
}

func diceRollHandler() mcp.ToolHandlerFor[DiceRollInput, DiceRollResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input DiceRollInput) (*mcp.CallToolResult, DiceRollResult, error) {
		specs := make([]dice.Spec, 0, len(input.Dice))
		for _, die := range input.Dice {
			specs = append(specs, dice.Spec{Sides: die.Sides, Count: die.Count})
		}

		pool, err := dice.RollPool(dice.PoolRequest{Dice: specs, Seed: input.Seed})
		if err != nil {
			return nil, DiceRollResult{}, err
		}

		rolls := make([]RollEntry, 0, len(pool.Rolls))
		for _, roll := range pool.Rolls {
			rolls = append(rolls, RollEntry{Sides: roll.Sides, Results: roll.Results, Total: roll.Total})
		}
		return nil, DiceRollResult{Rolls: rolls, Total: pool.Total}, nil
	}
}

// DiceCheckInput represents the MCP tool input for a d20 check.
type DiceCheckInput struct {
	Modifier   int    `json:"modifier,omitempty" jsonschema:"flat bonus or penalty added to the face"`
	Difficulty *int   `json:"difficulty,omitempty" jsonschema:"target the total must meet; omitted checks cannot fail"`
	Seed       *int64 `json:"seed,omitempty" jsonschema:"rng seed; the same seed always reproduces the result"`
}

// DiceCheckResult represents the MCP tool output for a d20 check.
type DiceCheckResult struct {
	Face     int  `json:"face" jsonschema:"raw d20 face value"`
	Modifier int  `json:"modifier" jsonschema:"modifier applied"`
	Total    int  `json:"total" jsonschema:"face plus modifier"`
	Success  bool `json:"success" jsonschema:"whether the total met the difficulty"`
}

func diceCheckTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "dice_check",
		Description: "Rolls a d20 check against an optional difficulty. Deterministic for a given seed; never touches any session.",
	}
}

func diceCheckHandler() mcp.ToolHandlerFor[DiceCheckInput, DiceCheckResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input DiceCheckInput) (*mcp.CallToolResult, DiceCheckResult, error) {
		var seed int64
		if input.Seed != nil {
			seed = *input.Seed
		}

		check, err := dice.RollCheck(dice.CheckRequest{
			Modifier:   input.Modifier,
			Difficulty: input.Difficulty,
			Seed:       seed,
		})
		if err != nil {
			return nil, DiceCheckResult{}, err
		}
		return nil, DiceCheckResult{
			Face:     check.Face,
			Modifier: check.Modifier,
			Total:    check.Total,
			Success:  check.Success,
		}, nil
	}
}
