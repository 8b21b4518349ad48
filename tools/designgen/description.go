package designgen

import (
	"encoding/json"
	"fmt"
	"os"
)

// Description is the JSON source of a generated design database: the
// component/pin/net snapshot plus the differential-pair registry.
type Description struct {
	Components []ComponentDesc `json:"components"`
	DiffPairs  []DiffPairDesc  `json:"diff_pairs"`
}

// ComponentDesc is one component and its pins.
type ComponentDesc struct {
	Name string    `json:"name"`
	Pins []PinDesc `json:"pins"`
}

// PinDesc is one pin. An empty net leaves the pin unconnected.
type PinDesc struct {
	Number string `json:"number"`
	Name   string `json:"name"`
	Net    string `json:"net"`
}

// DiffPairDesc is one differential-pair registry entry.
type DiffPairDesc struct {
	Label       string `json:"label"`
	PositiveNet string `json:"positive_net"`
	NegativeNet string `json:"negative_net"`
}

// LoadDescription reads and validates a design description file.
func LoadDescription(path string) (*Description, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read description file: %w", err)
	}

	var desc Description
	if err := json.Unmarshal(content, &desc); err != nil {
		return nil, fmt.Errorf("failed to parse description file %s: %w", path, err)
	}

	if err := desc.validate(); err != nil {
		return nil, err
	}

	return &desc, nil
}

// validate checks the description for internal consistency before any
// database is touched.
func (d *Description) validate() error {
	if len(d.Components) == 0 {
		return fmt.Errorf("description has no components")
	}

	nets := make(map[string]bool)
	componentNames := make(map[string]bool)
	for _, comp := range d.Components {
		if comp.Name == "" {
			return fmt.Errorf("component with empty name")
		}
		if componentNames[comp.Name] {
			return fmt.Errorf("duplicate component name: %s", comp.Name)
		}
		componentNames[comp.Name] = true

		pinNumbers := make(map[string]bool)
		for _, pin := range comp.Pins {
			if pin.Number == "" {
				return fmt.Errorf("component %s has a pin with no number", comp.Name)
			}
			if pinNumbers[pin.Number] {
				return fmt.Errorf("component %s has duplicate pin number: %s", comp.Name, pin.Number)
			}
			pinNumbers[pin.Number] = true

			if pin.Net != "" {
				nets[pin.Net] = true
			}
		}
	}

	pairLabels := make(map[string]bool)
	for _, pair := range d.DiffPairs {
		if pair.Label == "" {
			return fmt.Errorf("diff pair with empty label")
		}
		if pairLabels[pair.Label] {
			return fmt.Errorf("duplicate diff pair label: %s", pair.Label)
		}
		pairLabels[pair.Label] = true

		if pair.PositiveNet == pair.NegativeNet {
			return fmt.Errorf("diff pair %s has identical legs", pair.Label)
		}
		for _, net := range []string{pair.PositiveNet, pair.NegativeNet} {
			if !nets[net] {
				return fmt.Errorf("diff pair %s references unknown net: %s", pair.Label, net)
			}
		}
	}

	return nil
}
