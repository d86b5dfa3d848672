package folder

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"limeal.fr/mcengine/pkg/game/shared"
)

// Instance is the product of an install and the input of a launch.
type Instance struct {
	ID          string    `toml:"id"`
	Version     string    `toml:"version"`
	GameDir     string    `toml:"game-dir"`
	JavaPath    string    `toml:"java-path,omitempty"`
	JVMArgs     []string  `toml:"jvm-args,omitempty"`
	MemoryMB    int       `toml:"memory-mb,omitempty"`
	InstalledAt time.Time `toml:"installed-at"`
}

func (i *Instance) Folder() *GameFolder {
	return New(i.GameDir)
}

func InstancePath(gameDir string) string {
	return filepath.Join(gameDir, shared.INSTANCE_FILE)
}

func SaveInstance(inst *Instance) error {
	data, err := toml.Marshal(inst)
	if err != nil {
		return fmt.Errorf("failed to encode instance: %w", err)
	}
	if err := os.MkdirAll(inst.GameDir, 0755); err != nil {
		return err
	}
	return os.WriteFile(InstancePath(inst.GameDir), data, 0644)
}

// LoadInstance reads <gameDir>/instance.toml. GameDir always reflects where
// the file was found, so instances can be moved.
func LoadInstance(gameDir string) (*Instance, error) {
	data, err := os.ReadFile(InstancePath(gameDir))
	if err != nil {
		return nil, fmt.Errorf("failed to read instance: %w", err)
	}
	var inst Instance
	if err := toml.Unmarshal(data, &inst); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", InstancePath(gameDir), err)
	}
	abs, err := filepath.Abs(gameDir)
	if err != nil {
		return nil, err
	}
	inst.GameDir = abs
	if inst.ID == "" {
		inst.ID = inst.Version
	}
	return &inst, nil
}
