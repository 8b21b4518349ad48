package ports

import (
	"encoding/json"
	"fmt"
	"os"
)

// Document is the persisted port-metadata file: the hand-off artifact
// between port synthesis and the analysis backend. It round-trips through
// Load and Write without loss.
type Document struct {
	DesignPath         string   `json:"design_path"`
	ReferenceNet       string   `json:"reference_net"`
	DriverComponents   []string `json:"driver_components"`
	ReceiverComponents []string `json:"receiver_components"`
	Ports              []Record `json:"ports"`
}

// Write stores the document as indented JSON.
func (d *Document) Write(path string) error {
	if d.Ports == nil {
		d.Ports = []Record{}
	}
	if d.DriverComponents == nil {
		d.DriverComponents = []string{}
	}
	if d.ReceiverComponents == nil {
		d.ReceiverComponents = []string{}
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal port metadata: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write port metadata: %w", err)
	}
	return nil
}

// Load reads a document written by Write.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read port metadata: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse port metadata %s: %w", path, err)
	}

	return &doc, nil
}

// Drivers returns the records with the driver role, in sequence order.
func (d *Document) Drivers() []Record {
	return d.withRole("driver")
}

// Receivers returns the records with the receiver role, in sequence
// order.
func (d *Document) Receivers() []Record {
	return d.withRole("receiver")
}

func (d *Document) withRole(role string) []Record {
	var records []Record
	for _, r := range d.Ports {
		if r.Role.String() == role {
			records = append(records, r)
		}
	}
	return records
}
