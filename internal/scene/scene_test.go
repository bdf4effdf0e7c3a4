package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	serrors "github.com/emberhall/steward/internal/errors"
)

const sampleScene = `
name: the drowned archive
description: Water laps at the shelves
rooms:
  - id: hall
    adjacent: [archive, stair]
    doors:
      - leads_to: vault
        locked: true
        key: brass-key
  - id: archive
    keys: [brass-key]
    alert: 1
`

func TestLoadScene(t *testing.T) {
	sc, err := Load(strings.NewReader(sampleScene))
	if err != nil {
		t.Fatalf("load scene: %v", err)
	}

	if sc.Name != "the drowned archive" {
		t.Errorf("unexpected name %q", sc.Name)
	}
	if len(sc.Rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(sc.Rooms))
	}
	hall := sc.Rooms[0]
	if len(hall.Adjacent) != 2 || hall.Adjacent[0] != "archive" {
		t.Errorf("unexpected adjacency %v", hall.Adjacent)
	}
	if len(hall.Doors) != 1 || hall.Doors[0].Key != "brass-key" || !hall.Doors[0].Locked {
		t.Errorf("unexpected doors %+v", hall.Doors)
	}
}

func TestLoadSceneRejectsUnknownFields(t *testing.T) {
	_, err := Load(strings.NewReader("name: x\nrooms: [{id: a}]\nbogus: true\n"))
	if !serrors.IsCode(err, serrors.CodeSceneInvalid) {
		t.Fatalf("expected CodeSceneInvalid, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		valid bool
	}{
		{"missing name", "rooms: [{id: a}]", false},
		{"no rooms", "name: x", false},
		{"empty room id", "name: x\nrooms: [{id: ''}]", false},
		{"duplicate room id", "name: x\nrooms: [{id: a}, {id: a}]", false},
		{"door without destination", "name: x\nrooms: [{id: a, doors: [{locked: true}]}]", false},
		{"minimal valid", "name: x\nrooms: [{id: a}]", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.yaml))
			if tc.valid && err != nil {
				t.Fatalf("expected valid scene, got %v", err)
			}
			if !tc.valid && !serrors.IsCode(err, serrors.CodeSceneInvalid) {
				t.Fatalf("expected CodeSceneInvalid, got %v", err)
			}
		})
	}
}

func TestPayloads(t *testing.T) {
	sc, err := Load(strings.NewReader(sampleScene))
	if err != nil {
		t.Fatalf("load scene: %v", err)
	}

	payloads := sc.Payloads()
	if len(payloads) != 2 {
		t.Fatalf("expected 2 payloads, got %d", len(payloads))
	}

	first := payloads[0]
	if first.Name != "the drowned archive" {
		t.Errorf("unexpected name %q", first.Name)
	}
	if first.Description == "" {
		t.Error("expected description on the first payload")
	}
	if first.World == nil || first.World.RoomID != "hall" {
		t.Fatalf("unexpected world fragment %+v", first.World)
	}
	if len(first.World.Doors) != 1 || first.World.Doors[0].KeyID != "brass-key" {
		t.Errorf("unexpected doors %+v", first.World.Doors)
	}
	if first.World.Doors[0].RoomID != "hall" {
		t.Errorf("door must carry its room id, got %q", first.World.Doors[0].RoomID)
	}

	second := payloads[1]
	if second.Description != "" {
		t.Error("expected description only on the first payload")
	}
	if second.World == nil || second.World.Alert == nil || second.World.Alert.Level != 1 {
		t.Errorf("unexpected alert %+v", second.World)
	}
	if len(second.World.Keys) != 1 || second.World.Keys[0] != "brass-key" {
		t.Errorf("unexpected keys %+v", second.World.Keys)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")
	if err := os.WriteFile(path, []byte(sampleScene), 0o600); err != nil {
		t.Fatalf("write scene file: %v", err)
	}

	sc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if sc.Name != "the drowned archive" {
		t.Errorf("unexpected name %q", sc.Name)
	}

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if !serrors.IsCode(err, serrors.CodeSceneNotFound) {
		t.Errorf("expected CodeSceneNotFound, got %v", err)
	}
}
