package scenario

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestProposalChainingCreatesSteps(t *testing.T) {
	path := writeScenarioFixture(t, `-- Setup
local run = Scenario.new("chain")
run:start_session({id = "s1"})

-- Propose + confirm
run:propose({actor = "vex", input = "cross the ravine"}):confirm({by = "gm", mode = "auto"})

return run
`)

	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if len(scenario.Steps) != 3 {
		t.Fatalf("steps = %d, want %d", len(scenario.Steps), 3)
	}

	propose := scenario.Steps[1]
	if propose.Kind != "propose" {
		t.Fatalf("step kind = %q, want %q", propose.Kind, "propose")
	}
	if propose.Args["input"] != "cross the ravine" {
		t.Fatalf("propose input = %v, want cross the ravine", propose.Args["input"])
	}

	confirm := scenario.Steps[2]
	if confirm.Kind != "confirm" {
		t.Fatalf("step kind = %q, want %q", confirm.Kind, "confirm")
	}
	if confirm.Args["proposal"] != 1 {
		t.Fatalf("confirm proposal = %v, want 1", confirm.Args["proposal"])
	}
	if confirm.Args["by"] != "gm" {
		t.Fatalf("confirm by = %v, want gm", confirm.Args["by"])
	}
	if confirm.Args["mode"] != "auto" {
		t.Fatalf("confirm mode = %v, want auto", confirm.Args["mode"])
	}
}

func TestProposalDiscardCreatesStep(t *testing.T) {
	path := writeScenarioFixture(t, `-- Setup
local run = Scenario.new("discard")
run:start_session({})

-- Propose + discard
run:propose({input = "sneak past the guard"}):discard()

return run
`)

	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if len(scenario.Steps) != 3 {
		t.Fatalf("steps = %d, want %d", len(scenario.Steps), 3)
	}

	discard := scenario.Steps[2]
	if discard.Kind != "discard" {
		t.Fatalf("step kind = %q, want %q", discard.Kind, "discard")
	}
	if discard.Args["proposal"] != 1 {
		t.Fatalf("discard proposal = %v, want 1", discard.Args["proposal"])
	}
}

func TestScenarioProposeRequiresInput(t *testing.T) {
	path := writeScenarioFixture(t, `-- Missing input
local run = Scenario.new("missing_input")
run:propose({actor = "vex"})

return run
`)

	_, err := LoadScenarioFromFile(path)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "propose input is required") {
		t.Fatalf("error = %q, want propose input is required", err.Error())
	}
}

func TestScenarioPacingRequiresMessage(t *testing.T) {
	path := writeScenarioFixture(t, `-- Missing message
local run = Scenario.new("missing_message")
run:pacing({})

return run
`)

	_, err := LoadScenarioFromFile(path)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "pacing message is required") {
		t.Fatalf("error = %q, want pacing message is required", err.Error())
	}
}

func TestScenarioNameDefaultsToFileName(t *testing.T) {
	path := writeScenarioFixture(t, `return Scenario.new()`)

	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if scenario.Name != "scenario" {
		t.Fatalf("name = %q, want scenario", scenario.Name)
	}
}

func TestScenarioMustReturnUserdata(t *testing.T) {
	path := writeScenarioFixture(t, `return 42`)

	_, err := LoadScenarioFromFile(path)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "must return Scenario") {
		t.Fatalf("error = %q, want must return Scenario", err.Error())
	}
}

func TestScenarioTableArgsConvert(t *testing.T) {
	path := writeScenarioFixture(t, `local run = Scenario.new("convert")
run:auto_resolve({input = "swing across", seed = 42, difficulty = 10, modifier = 2.5})

return run
`)

	scenario, err := LoadScenarioFromFile(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	step := scenario.Steps[0]
	if step.Args["seed"] != 42 {
		t.Fatalf("seed = %v (%T), want int 42", step.Args["seed"], step.Args["seed"])
	}
	if step.Args["modifier"] != 2.5 {
		t.Fatalf("modifier = %v, want 2.5", step.Args["modifier"])
	}
}

func writeScenarioFixture(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.lua")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return path
}
