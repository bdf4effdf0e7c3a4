// Package scenario loads Lua scenario scripts and executes them against an
// in-process session service. Scripts drive the full governed workflow, so a
// single file can seed a scene, propose and confirm actions, and assert on
// narration, projections, and pacing.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/emberhall/steward/internal/service"
)

// Config controls scenario execution.
type Config struct {
	Timeout time.Duration
	Verbose bool
	Logger  *log.Logger
}

// DefaultConfig returns default runner configuration.
func DefaultConfig() Config {
	return Config{
		Timeout: 10 * time.Second,
		Verbose: false,
	}
}

// Runner executes Lua scenarios against a session service.
type Runner struct {
	svc     *service.Service
	logger  *log.Logger
	verbose bool
	timeout time.Duration
}

// NewRunner prepares a scenario runner for the given service.
func NewRunner(svc *service.Service, cfg Config) (*Runner, error) {
	if svc == nil {
		return nil, errors.New("service is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(os.Stderr, "", 0)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Runner{
		svc:     svc,
		logger:  logger,
		verbose: cfg.Verbose,
		timeout: timeout,
	}, nil
}

// RunFile loads and executes a scenario file.
func RunFile(ctx context.Context, svc *service.Service, cfg Config, path string) error {
	runner, err := NewRunner(svc, cfg)
	if err != nil {
		return err
	}

	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		return err
	}
	return runner.RunScenario(ctx, scenario)
}

// RunScenario executes the scenario steps in order. The first failing step
// aborts the run.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) error {
	if scenario == nil {
		return errors.New("scenario is required")
	}
	r.logf("scenario start: %s (%d steps)", scenario.Name, len(scenario.Steps))
	state := &scenarioState{
		changes: map[int]string{},
	}

	for index, step := range scenario.Steps {
		step := step
		stepNumber := index + 1
		r.logf("step %d/%d start: %s", stepNumber, len(scenario.Steps), step.Kind)
		stepStart := time.Now()
		stepCtx, cancel := context.WithTimeout(ctx, r.timeout)
		err := r.runStep(stepCtx, state, index, step)
		cancel()
		if err != nil {
			return fmt.Errorf("step %d (%s): %w", stepNumber, step.Kind, err)
		}
		r.logf("step %d/%d done: %s (%s)", stepNumber, len(scenario.Steps), step.Kind, time.Since(stepStart))
	}
	r.logf("scenario done: %s", scenario.Name)
	return nil
}

func (r *Runner) logf(format string, args ...any) {
	if !r.verbose || r.logger == nil {
		return
	}
	r.logger.Printf(format, args...)
}

// scenarioState carries values produced by earlier steps: the hosted session
// id and the change id each propose step drafted.
type scenarioState struct {
	sessionID string
	changes   map[int]string
}
