package model

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedAreas returns the built-in area collection used on very first run,
// when both the remote store and the local cache are empty.
func SeedAreas() []Area {
	return []Area{
		{Name: "Lobby", Category: "Indoor"},
		{Name: "Restrooms", Category: "Indoor"},
		{Name: "Corridor", Category: "Indoor"},
		{Name: "Parking", Category: "Outdoor"},
		{Name: "Garden", Category: "Outdoor"},
	}
}

// SeedTasks returns the built-in task collection used on very first run.
// Empty: areas are seeded so the first form has something to reference,
// but no job records are invented.
func SeedTasks() []Task {
	return []Task{}
}

// seedFile is the on-disk shape of a seed override file.
type seedFile struct {
	Areas []Area `yaml:"areas"`
	Tasks []Task `yaml:"tasks"`
}

// LoadSeedFile reads a YAML seed override from path. Sites that want their
// own default areas (and optionally pre-filled tasks) point the
// seed_file config key at one of these.
func LoadSeedFile(path string) (tasks []Task, areas []Area, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
	}

	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	for i := range sf.Areas {
		if err := sf.Areas[i].Validate(); err != nil {
			return nil, nil, fmt.Errorf("invalid seed area %d: %w", i, err)
		}
	}
	for i := range sf.Tasks {
		sf.Tasks[i].SetDefaults()
		if err := sf.Tasks[i].Validate(); err != nil {
			return nil, nil, fmt.Errorf("invalid seed task %d: %w", i, err)
		}
	}

	return sf.Tasks, sf.Areas, nil
}
