package edb

import (
	"database/sql"
	"fmt"
	"strings"
)

const schemaVersion = "1"

// Pin is a single component pin and the net it lands on. Net is empty for
// unconnected pins.
type Pin struct {
	Number string
	Name   string
	Net    string
}

// DiffPair is one entry of the design's differential-pair registry.
type DiffPair struct {
	Label       string
	PositiveNet string
	NegativeNet string
}

// ddl is the full schema of a design database. The layout snapshot lives
// in components/pins/diff_pairs; everything below pin_groups is written
// by SaveAs.
var ddl = []string{
	`CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS components (
		name TEXT PRIMARY KEY,
		ordinal INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS pins (
		component TEXT NOT NULL REFERENCES components(name),
		number TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		net TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (component, number)
	)`,
	`CREATE TABLE IF NOT EXISTS diff_pairs (
		label TEXT PRIMARY KEY,
		positive_net TEXT NOT NULL,
		negative_net TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS pin_groups (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		component TEXT NOT NULL,
		net TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS port_terminals (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		group_id INTEGER NOT NULL REFERENCES pin_groups(id),
		impedance REAL NOT NULL,
		reference_id INTEGER REFERENCES port_terminals(id)
	)`,
	`CREATE TABLE IF NOT EXISTS cutouts (
		id INTEGER PRIMARY KEY,
		expansion REAL NOT NULL,
		extent TEXT NOT NULL,
		signal_nets TEXT NOT NULL,
		reference_nets TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS analysis_setups (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		kind TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS frequency_sweeps (
		id INTEGER PRIMARY KEY,
		setup_id INTEGER NOT NULL REFERENCES analysis_setups(id),
		sweep_type TEXT NOT NULL,
		start TEXT NOT NULL,
		stop TEXT NOT NULL,
		step TEXT NOT NULL,
		ordinal INTEGER NOT NULL
	)`,
}

func applySchema(db *sql.DB) error {
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	_, err := db.Exec(
		"INSERT INTO meta (key, value) VALUES ('schema_version', ?) ON CONFLICT(key) DO NOTHING",
		schemaVersion,
	)
	return err
}

// AddComponent adds a component to a writable design.
func (d *Design) AddComponent(name string) error {
	if d.closed {
		return ErrClosed
	}
	if !d.writable {
		return ErrReadOnly
	}
	if name == "" {
		return fmt.Errorf("edb: empty component name")
	}

	_, err := d.db.Exec(
		"INSERT INTO components (name, ordinal) VALUES (?, (SELECT COALESCE(MAX(ordinal), 0) + 1 FROM components))",
		name,
	)
	return err
}

// AddPin adds a pin to a component of a writable design. An empty net
// marks the pin unconnected.
func (d *Design) AddPin(component, number, name, net string) error {
	if d.closed {
		return ErrClosed
	}
	if !d.writable {
		return ErrReadOnly
	}
	if component == "" || number == "" {
		return fmt.Errorf("edb: pin needs a component and a number")
	}

	_, err := d.db.Exec(
		"INSERT INTO pins (component, number, name, net) VALUES (?, ?, ?, ?)",
		component, number, name, net,
	)
	return err
}

// AddDiffPair adds a differential-pair registry entry to a writable
// design.
func (d *Design) AddDiffPair(label, positiveNet, negativeNet string) error {
	if d.closed {
		return ErrClosed
	}
	if !d.writable {
		return ErrReadOnly
	}
	if label == "" || positiveNet == "" || negativeNet == "" {
		return fmt.Errorf("edb: diff pair needs a label and both nets")
	}
	if positiveNet == negativeNet {
		return fmt.Errorf("edb: diff pair %s has identical legs", label)
	}

	_, err := d.db.Exec(
		"INSERT INTO diff_pairs (label, positive_net, negative_net) VALUES (?, ?, ?)",
		label, positiveNet, negativeNet,
	)
	return err
}

// joinNets serializes a net list for the cutouts table.
func joinNets(nets []string) string {
	return strings.Join(nets, ",")
}
