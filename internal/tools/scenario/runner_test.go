package scenario

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emberhall/steward/internal/service"
)

const runnerSceneYAML = `
name: the drowned archive
description: Water laps at the shelves
rooms:
  - id: hall
    adjacent: [archive]
    doors:
      - leads_to: vault
        locked: true
        key: brass-key
  - id: archive
    keys: [brass-key]
`

func TestRunScenarioFullWorkflow(t *testing.T) {
	svc := service.New(nil)

	dir := t.TempDir()
	scenePath := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(scenePath, []byte(runnerSceneYAML), 0o600); err != nil {
		t.Fatalf("write scene: %v", err)
	}

	script := fmt.Sprintf(`local run = Scenario.new("full workflow")
run:start_session({id = "run-1", name = "First Watch"})
run:set_scene({file = %q})
run:propose({actor = "vex", input = "cross the ravine", expect_intent = "movement"}):confirm({by = "gm", mode = "auto", justification = "clear plan", expect_success = true})
run:narrate({expect_contains = "Confirmed"})
run:note("marked the map", {actor = "gm"})
run:keys_and_doors({expect_keys = 1, expect_doors = 1})
run:room_graph({expect_rooms = 2})
run:end_session("wrap")

return run
`, scenePath)

	path := writeScenarioFixture(t, script)
	if err := RunFile(context.Background(), svc, DefaultConfig(), path); err != nil {
		t.Fatalf("run scenario: %v", err)
	}

	ledger, err := svc.Session("run-1")
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	// started + 2 scene rooms + outcome + note + ended.
	if len(ledger.Log) != 6 {
		t.Fatalf("log length = %d, want 6", len(ledger.Log))
	}
	if !ledger.Ended() {
		t.Error("expected session to be ended")
	}
	if len(ledger.Pending) != 0 {
		t.Errorf("pending = %d, want 0", len(ledger.Pending))
	}
}

func TestRunScenarioDiscard(t *testing.T) {
	svc := service.New(nil)

	path := writeScenarioFixture(t, `local run = Scenario.new("discard run")
run:start_session({id = "run-2"})
run:propose({input = "sneak past the guard"}):discard()

return run
`)
	if err := RunFile(context.Background(), svc, DefaultConfig(), path); err != nil {
		t.Fatalf("run scenario: %v", err)
	}

	pending, err := svc.PendingChanges("run-2")
	if err != nil {
		t.Fatalf("pending changes: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %d, want 0", len(pending))
	}
}

func TestRunScenarioPacingAssertion(t *testing.T) {
	svc := service.New(nil)

	path := writeScenarioFixture(t, `local run = Scenario.new("pacing run")
run:start_session({id = "run-3"})
run:pacing({message = "we must choose which door to take", expect_level = 4})

return run
`)
	if err := RunFile(context.Background(), svc, DefaultConfig(), path); err != nil {
		t.Fatalf("run scenario: %v", err)
	}
}

func TestRunScenarioRequiresSessionFirst(t *testing.T) {
	svc := service.New(nil)

	path := writeScenarioFixture(t, `local run = Scenario.new("no session")
run:note("too early")

return run
`)
	err := RunFile(context.Background(), svc, DefaultConfig(), path)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "no session started") {
		t.Fatalf("error = %q, want no session started", err.Error())
	}
}

func TestRunScenarioUnknownStepKind(t *testing.T) {
	svc := service.New(nil)
	runner, err := NewRunner(svc, DefaultConfig())
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}

	scenario := &Scenario{
		Name:  "bogus",
		Steps: []Step{{Kind: "teleport", Args: map[string]any{}}},
	}
	err = runner.RunScenario(context.Background(), scenario)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), `unknown step kind "teleport"`) {
		t.Fatalf("error = %q, want unknown step kind", err.Error())
	}
}

func TestNewRunnerRequiresService(t *testing.T) {
	if _, err := NewRunner(nil, DefaultConfig()); err == nil {
		t.Fatal("expected error")
	}
}
