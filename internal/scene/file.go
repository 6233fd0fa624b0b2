package scene

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// File is the on-disk scene description.
type File struct {
	Objects   []Object   `yaml:"objects"`
	Materials []Material `yaml:"materials"`
}

// Parse decodes a YAML scene description.
func Parse(data []byte) (*Memory, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding scene: %w", err)
	}
	return NewMemory(f)
}

// Load reads a YAML scene description from path.
func Load(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading scene from %s: %w", path, err)
	}
	return m, nil
}

// SaveTo writes the current scene to path as YAML.
func (m *Memory) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(m.Snapshot())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
