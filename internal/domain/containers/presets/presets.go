// Package presets holds the container buttons offered by the panel.
package presets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/SystemManager/backend/internal/domain/containers"
)

// Preset is one container button
type Preset struct {
	Label string `json:"label" yaml:"label" toml:"label"`
	// Image defaults to the lowercased label
	Image string `json:"image" yaml:"image,omitempty" toml:"image,omitempty"`
}

type file struct {
	Presets []Preset `yaml:"presets" toml:"presets"`
}

// Defaults returns the stock Ubuntu, Fedora and Debian buttons
func Defaults() []Preset {
	return []Preset{
		{Label: "Ubuntu", Image: "ubuntu"},
		{Label: "Fedora", Image: "fedora"},
		{Label: "Debian", Image: "debian"},
	}
}

// Load reads presets from a .toml, .yaml or .yml file. An empty path
// returns the defaults.
func Load(path string) ([]Preset, error) {
	if path == "" {
		return Defaults(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets: %w", err)
	}

	var f file
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &f)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("unsupported presets format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse presets %s: %w", path, err)
	}

	return normalize(f.Presets)
}

func normalize(in []Preset) ([]Preset, error) {
	out := make([]Preset, 0, len(in))
	seen := make(map[string]bool, len(in))
	for i, p := range in {
		p.Label = strings.TrimSpace(p.Label)
		if p.Label == "" {
			return nil, fmt.Errorf("preset %d: label is required", i)
		}
		image := p.Image
		if image == "" {
			image = p.Label
		}
		normalized, err := containers.Normalize(image)
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Label, err)
		}
		if seen[normalized] {
			return nil, fmt.Errorf("preset %q: duplicate image %q", p.Label, normalized)
		}
		seen[normalized] = true
		p.Image = normalized
		out = append(out, p)
	}
	return out, nil
}
