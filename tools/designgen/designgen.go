// Package designgen builds design database files from a JSON
// description. It exists so tests and demos do not depend on board
// exports: describe the components, pins and pairs in a small file and
// generate a .netdb from it.
package designgen

import (
	"fmt"
	"os"

	"github.com/livinlefevreloca/netprep/internal/edb"
)

// Generate writes a new design database at outputPath from a validated
// description. The output must not already exist; a half-written file is
// removed on failure.
func Generate(desc *Description, outputPath string) error {
	if err := desc.validate(); err != nil {
		return err
	}
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("output %s already exists", outputPath)
	}

	design, err := edb.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create design database: %w", err)
	}

	if err := populate(design, desc); err != nil {
		design.Close()
		os.Remove(outputPath)
		return err
	}

	if err := design.Close(); err != nil {
		os.Remove(outputPath)
		return err
	}
	return nil
}

func populate(design *edb.Design, desc *Description) error {
	for _, comp := range desc.Components {
		if err := design.AddComponent(comp.Name); err != nil {
			return fmt.Errorf("failed to add component %s: %w", comp.Name, err)
		}
		for _, pin := range comp.Pins {
			if err := design.AddPin(comp.Name, pin.Number, pin.Name, pin.Net); err != nil {
				return fmt.Errorf("failed to add pin %s.%s: %w", comp.Name, pin.Number, err)
			}
		}
	}

	for _, pair := range desc.DiffPairs {
		if err := design.AddDiffPair(pair.Label, pair.PositiveNet, pair.NegativeNet); err != nil {
			return fmt.Errorf("failed to add diff pair %s: %w", pair.Label, err)
		}
	}

	return nil
}
