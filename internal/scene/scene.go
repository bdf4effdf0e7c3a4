// Package scene loads YAML scene definitions and turns them into scene.set
// payloads so a session can be seeded from a file.
package scene

import (
	"fmt"
	"io"
	"os"
	"strings"

	serrors "github.com/emberhall/steward/internal/errors"
	"github.com/emberhall/steward/internal/steward/event"
	"gopkg.in/yaml.v3"
)

// Door describes one lock-bearing passage out of a room.
type Door struct {
	LeadsTo string `yaml:"leads_to"`
	Locked  bool   `yaml:"locked"`
	Key     string `yaml:"key"`
}

// Room describes one room in a scene file.
type Room struct {
	ID       string   `yaml:"id"`
	Adjacent []string `yaml:"adjacent"`
	Doors    []Door   `yaml:"doors"`
	Keys     []string `yaml:"keys"`
	Alert    int      `yaml:"alert"`
}

// Scene is a parsed scene definition.
type Scene struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Rooms       []Room `yaml:"rooms"`
}

// Load parses a scene definition from a reader.
func Load(r io.Reader) (Scene, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var sc Scene
	if err := decoder.Decode(&sc); err != nil {
		return Scene{}, serrors.Wrap(serrors.CodeSceneInvalid, "decode scene", err)
	}
	if err := sc.Validate(); err != nil {
		return Scene{}, err
	}
	return sc, nil
}

// LoadFile parses a scene definition from a file path.
func LoadFile(path string) (Scene, error) {
	file, err := os.Open(path)
	if err != nil {
		return Scene{}, serrors.Wrap(serrors.CodeSceneNotFound, "open scene file", err)
	}
	defer file.Close()
	return Load(file)
}

// Validate checks the parsed scene for structural problems.
func (sc Scene) Validate() error {
	if strings.TrimSpace(sc.Name) == "" {
		return serrors.New(serrors.CodeSceneInvalid, "scene name is required")
	}
	if len(sc.Rooms) == 0 {
		return serrors.New(serrors.CodeSceneInvalid, "scene has no rooms")
	}

	seen := map[string]bool{}
	for i, room := range sc.Rooms {
		roomID := strings.TrimSpace(room.ID)
		if roomID == "" {
			return serrors.New(serrors.CodeSceneInvalid, fmt.Sprintf("room %d has no id", i))
		}
		if seen[roomID] {
			return serrors.New(serrors.CodeSceneInvalid, "duplicate room id "+roomID)
		}
		seen[roomID] = true

		for _, door := range room.Doors {
			if strings.TrimSpace(door.LeadsTo) == "" {
				return serrors.New(serrors.CodeSceneInvalid, "door in room "+roomID+" has no destination")
			}
		}
	}
	return nil
}

// Payloads converts the scene into one scene.set payload per room. The scene
// description rides on the first payload only; every payload carries the
// scene name and its room's world fragment.
func (sc Scene) Payloads() []event.SceneSetPayload {
	payloads := make([]event.SceneSetPayload, 0, len(sc.Rooms))
	for i, room := range sc.Rooms {
		description := ""
		if i == 0 {
			description = sc.Description
		}
		world := room.fragment()
		payloads = append(payloads, event.SceneSetPayload{
			Name:        sc.Name,
			Description: description,
			World:       &world,
		})
	}
	return payloads
}

func (r Room) fragment() event.WorldFragment {
	fragment := event.WorldFragment{
		RoomID:   r.ID,
		Adjacent: r.Adjacent,
		Keys:     r.Keys,
	}
	for _, door := range r.Doors {
		fragment.Doors = append(fragment.Doors, event.DoorState{
			RoomID:  r.ID,
			LeadsTo: door.LeadsTo,
			Locked:  door.Locked,
			KeyID:   door.Key,
		})
	}
	if r.Alert > 0 {
		fragment.Alert = &event.AlertState{Level: r.Alert}
	}
	return fragment
}
