package scenario

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const (
	scenarioTypeName = "scenario"
	proposalTypeName = "proposal"
)

// Scenario is a parsed scenario script: a named, ordered list of steps.
type Scenario struct {
	Name  string
	Steps []Step
}

// Step is one scripted action with its raw Lua arguments.
type Step struct {
	Kind string
	Args map[string]any
}

// proposalHandle lets a script chain confirm or discard onto the propose
// step that produced it.
type proposalHandle struct {
	scenario  *Scenario
	stepIndex int
}

// LoadScenarioFromFile runs a Lua script and returns the Scenario it built.
// The script must return the Scenario userdata; an unnamed scenario takes
// its file's base name.
func LoadScenarioFromFile(path string) (*Scenario, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	registerLuaTypes(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}

	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("scenario script must return Scenario")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	scenario, ok := ud.(*Scenario)
	if !ok || scenario == nil {
		return nil, fmt.Errorf("scenario script returned invalid Scenario")
	}
	if strings.TrimSpace(scenario.Name) == "" {
		scenario.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return scenario, nil
}

func registerLuaTypes(state *lua.State) {
	registerScenarioType(state)
	registerProposalType(state)
	registerScenarioConstructor(state)
}

func registerScenarioType(state *lua.State) {
	lua.NewMetaTable(state, scenarioTypeName)
	state.NewTable()
	lua.SetFunctions(state, scenarioMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerProposalType(state *lua.State) {
	lua.NewMetaTable(state, proposalTypeName)
	state.NewTable()
	lua.SetFunctions(state, proposalMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerScenarioConstructor(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, scenarioConstructor, 0)
	state.SetGlobal("Scenario")
}

var scenarioConstructor = []lua.RegistryFunction{
	{Name: "new", Function: scenarioNew},
}

func scenarioNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	scenario := &Scenario{Name: name}
	state.PushUserData(scenario)
	lua.SetMetaTableNamed(state, scenarioTypeName)
	return 1
}

var scenarioMethods = []lua.RegistryFunction{
	{Name: "start_session", Function: scenarioStartSession},
	{Name: "end_session", Function: scenarioEndSession},
	{Name: "set_scene", Function: scenarioSetScene},
	{Name: "propose", Function: scenarioPropose},
	{Name: "auto_resolve", Function: scenarioAutoResolve},
	{Name: "note", Function: scenarioNote},
	{Name: "narrate", Function: scenarioNarrate},
	{Name: "pacing", Function: scenarioPacing},
	{Name: "room_graph", Function: scenarioRoomGraph},
	{Name: "patrol_heat", Function: scenarioPatrolHeat},
	{Name: "keys_and_doors", Function: scenarioKeysAndDoors},
}

func scenarioStartSession(state *lua.State) int {
	scenario := checkScenario(state)
	opts := optionalTable(state, 2)
	appendStep(scenario, "start_session", opts)
	return 0
}

func scenarioEndSession(state *lua.State) int {
	scenario := checkScenario(state)
	reason := lua.OptString(state, 2, "")
	appendStep(scenario, "end_session", map[string]any{"reason": reason})
	return 0
}

func scenarioSetScene(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	appendStep(scenario, "set_scene", data)
	return 0
}

func scenarioPropose(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	if requiredString(data, "input") == "" {
		lua.Errorf(state, "propose input is required")
		return 0
	}
	stepIndex := appendStep(scenario, "propose", data)
	state.PushUserData(&proposalHandle{scenario: scenario, stepIndex: stepIndex})
	lua.SetMetaTableNamed(state, proposalTypeName)
	return 1
}

func scenarioAutoResolve(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	if requiredString(data, "input") == "" {
		lua.Errorf(state, "auto_resolve input is required")
		return 0
	}
	appendStep(scenario, "auto_resolve", data)
	return 0
}

func scenarioNote(state *lua.State) int {
	scenario := checkScenario(state)
	content := lua.CheckString(state, 2)
	opts := optionalTable(state, 3)
	data := map[string]any{"content": content}
	for key, value := range opts {
		data[key] = value
	}
	appendStep(scenario, "note", data)
	return 0
}

func scenarioNarrate(state *lua.State) int {
	scenario := checkScenario(state)
	opts := optionalTable(state, 2)
	appendStep(scenario, "narrate", opts)
	return 0
}

func scenarioPacing(state *lua.State) int {
	scenario := checkScenario(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	if requiredString(data, "message") == "" {
		lua.Errorf(state, "pacing message is required")
		return 0
	}
	appendStep(scenario, "pacing", data)
	return 0
}

func scenarioRoomGraph(state *lua.State) int {
	scenario := checkScenario(state)
	opts := optionalTable(state, 2)
	appendStep(scenario, "room_graph", opts)
	return 0
}

func scenarioPatrolHeat(state *lua.State) int {
	scenario := checkScenario(state)
	opts := optionalTable(state, 2)
	appendStep(scenario, "patrol_heat", opts)
	return 0
}

func scenarioKeysAndDoors(state *lua.State) int {
	scenario := checkScenario(state)
	opts := optionalTable(state, 2)
	appendStep(scenario, "keys_and_doors", opts)
	return 0
}

var proposalMethods = []lua.RegistryFunction{
	{Name: "confirm", Function: proposalConfirm},
	{Name: "discard", Function: proposalDiscard},
}

func proposalConfirm(state *lua.State) int {
	handle := checkProposal(state)
	data := optionalTable(state, 2)
	data["proposal"] = handle.stepIndex
	appendStep(handle.scenario, "confirm", data)
	return 0
}

func proposalDiscard(state *lua.State) int {
	handle := checkProposal(state)
	appendStep(handle.scenario, "discard", map[string]any{"proposal": handle.stepIndex})
	return 0
}

func checkScenario(state *lua.State) *Scenario {
	ud := lua.CheckUserData(state, 1, scenarioTypeName)
	if scenario, ok := ud.(*Scenario); ok && scenario != nil {
		return scenario
	}
	lua.ArgumentError(state, 1, "scenario expected")
	return nil
}

func checkProposal(state *lua.State) *proposalHandle {
	ud := lua.CheckUserData(state, 1, proposalTypeName)
	if handle, ok := ud.(*proposalHandle); ok && handle != nil {
		return handle
	}
	lua.ArgumentError(state, 1, "proposal expected")
	return nil
}

func appendStep(scenario *Scenario, kind string, data map[string]any) int {
	if scenario == nil {
		return -1
	}
	if data == nil {
		data = map[string]any{}
	}
	scenario.Steps = append(scenario.Steps, Step{Kind: kind, Args: data})
	return len(scenario.Steps) - 1
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	case lua.TypeUserData:
		return state.ToUserData(index)
	default:
		return nil
	}
}

func tableToGo(state *lua.State, index int) any {
	if state.TypeOf(index) != lua.TypeTable {
		return nil
	}

	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if state.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				if idx > maxIndex {
					maxIndex = idx
				}
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}

	return tableToMap(state, index)
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 {
		return int(value)
	}
	return value
}
