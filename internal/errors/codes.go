// Package errors provides structured, machine-readable error codes for
// service-surface failures.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Session errors
	CodeSessionEmptyID  Code = "SESSION_EMPTY_ID"
	CodeSessionNotFound Code = "SESSION_NOT_FOUND"
	CodeSessionExists   Code = "SESSION_EXISTS"
	CodeSessionEnded    Code = "SESSION_ENDED"

	// Proposal errors
	CodeProposalEmptyDescription Code = "PROPOSAL_EMPTY_DESCRIPTION"
	CodeProposalEmptyInput       Code = "PROPOSAL_EMPTY_INPUT"
	CodeProposalNotPending       Code = "PROPOSAL_NOT_PENDING"

	// Event errors
	CodeEventInvalid     Code = "EVENT_INVALID"
	CodeEventUnknownType Code = "EVENT_UNKNOWN_TYPE"
	CodeEventNotFound    Code = "EVENT_NOT_FOUND"

	// Dice/mechanics errors
	CodeDiceMissing           Code = "DICE_MISSING"
	CodeDiceInvalidSpec       Code = "DICE_INVALID_SPEC"
	CodeDiceInvalidDifficulty Code = "DICE_INVALID_DIFFICULTY"
	CodeResolutionUnknownMode Code = "RESOLUTION_UNKNOWN_MODE"

	// Scene errors
	CodeSceneInvalid  Code = "SCENE_INVALID"
	CodeSceneNotFound Code = "SCENE_NOT_FOUND"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)
