// Package dice implements seeded, deterministic dice resolution for the
// governed auto-resolve path.
package dice

import (
	"errors"
	"math/rand"
)

// ErrMissingDice indicates a roll request had no dice specified.
var ErrMissingDice = errors.New("at least one die must be provided")

// ErrInvalidDiceSpec indicates a die specification has invalid fields.
var ErrInvalidDiceSpec = errors.New("dice must have positive sides and count")

// ErrInvalidDifficulty indicates the difficulty is invalid for a check.
var ErrInvalidDifficulty = errors.New("difficulty must be non-negative")

// Spec describes a die to roll and how many times to roll it.
type Spec struct {
	Sides int
	Count int
}

// Roll captures the results for a single dice spec.
type Roll struct {
	Sides   int
	Results []int
	Total   int
}

// PoolRequest describes a request to roll one or more dice.
type PoolRequest struct {
	Dice []Spec
	Seed int64
}

// PoolResult captures the results from rolling multiple dice.
type PoolResult struct {
	Rolls []Roll
	Total int
}

// RollPool rolls dice based on the provided request.
//
// RollPool is deterministic with respect to Seed: the same seed and the same
// Dice slice (order included) always produce the same result. Specs are
// processed in slice order and results appear in the same order.
func RollPool(request PoolRequest) (PoolResult, error) {
	if len(request.Dice) == 0 {
		return PoolResult{}, ErrMissingDice
	}

	rng := rand.New(rand.NewSource(request.Seed))
	rolls := make([]Roll, 0, len(request.Dice))
	total := 0

	for _, spec := range request.Dice {
		if spec.Sides <= 0 || spec.Count <= 0 {
			return PoolResult{}, ErrInvalidDiceSpec
		}

		results := make([]int, spec.Count)
		rollTotal := 0
		for i := 0; i < spec.Count; i++ {
			value := rng.Intn(spec.Sides) + 1
			results[i] = value
			rollTotal += value
		}

		rolls = append(rolls, Roll{
			Sides:   spec.Sides,
			Results: results,
			Total:   rollTotal,
		})
		total += rollTotal
	}

	return PoolResult{Rolls: rolls, Total: total}, nil
}

// CheckRequest describes a d20 check against an optional difficulty.
type CheckRequest struct {
	Modifier   int
	Difficulty *int
	Seed       int64
}

// CheckResult contains the outcome of a d20 check.
type CheckResult struct {
	Face       int
	Modifier   int
	Difficulty *int
	Total      int
	// Success reports whether the total met the difficulty. Always true when
	// no difficulty was declared: an uncontested check cannot fail.
	Success bool
}

// RollCheck performs a d20 check from the provided request. Deterministic
// with respect to Seed.
func RollCheck(request CheckRequest) (CheckResult, error) {
	if request.Difficulty != nil && *request.Difficulty < 0 {
		return CheckResult{}, ErrInvalidDifficulty
	}

	pool, err := RollPool(PoolRequest{
		Dice: []Spec{{Sides: 20, Count: 1}},
		Seed: request.Seed,
	})
	if err != nil {
		// Unreachable: a fixed 1d20 pool is always valid.
		panic(err)
	}

	face := pool.Rolls[0].Results[0]
	total := face + request.Modifier

	success := true
	if request.Difficulty != nil {
		success = total >= *request.Difficulty
	}

	return CheckResult{
		Face:       face,
		Modifier:   request.Modifier,
		Difficulty: request.Difficulty,
		Total:      total,
		Success:    success,
	}, nil
}
