package edb

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"
)

// SaveAs writes the design plus all pending mutations to newPath. The
// source file is copied byte for byte and the pending pin groups,
// terminals, cutouts and setups are inserted into the copy in a single
// transaction; the source file and the open handle are left untouched, so
// a later SaveAs writes the same pendings again to another target.
func (d *Design) SaveAs(newPath string) error {
	if d.closed {
		return ErrClosed
	}
	if newPath == "" {
		return fmt.Errorf("edb: empty save path")
	}
	if newPath == d.path {
		return fmt.Errorf("edb: save path %s is the open design itself", newPath)
	}

	if err := copyFile(d.path, newPath); err != nil {
		return fmt.Errorf("copy design to %s: %w", newPath, err)
	}

	out, err := sql.Open("sqlite3", "file:"+newPath+"?mode=rw")
	if err != nil {
		return err
	}
	defer out.Close()

	if err := out.Ping(); err != nil {
		return err
	}
	if _, err := out.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return err
	}

	err = withTransaction(out, func(tx *sql.Tx) error {
		return d.writePending(tx)
	})
	if err != nil {
		return fmt.Errorf("write pending mutations to %s: %w", newPath, err)
	}

	return nil
}

// writePending inserts the pending mutation set. Terminals are inserted
// reference-less first and patched afterwards so that a reference bound
// to a later-created terminal still satisfies the foreign key.
func (d *Design) writePending(tx *sql.Tx) error {
	p := d.pending

	for _, g := range p.groups {
		_, err := tx.Exec(
			"INSERT INTO pin_groups (id, name, component, net) VALUES (?, ?, ?, ?)",
			g.id, g.name, g.component, g.net,
		)
		if err != nil {
			return fmt.Errorf("pin group %s: %w", g.name, err)
		}
	}

	for _, t := range p.terminals {
		_, err := tx.Exec(
			"INSERT INTO port_terminals (id, name, group_id, impedance) VALUES (?, ?, ?, ?)",
			t.id, t.name, t.groupID, t.impedance,
		)
		if err != nil {
			return fmt.Errorf("terminal %s: %w", t.name, err)
		}
	}
	for _, t := range p.terminals {
		if t.reference == nil {
			continue
		}
		_, err := tx.Exec(
			"UPDATE port_terminals SET reference_id = ? WHERE id = ?",
			t.reference.id, t.id,
		)
		if err != nil {
			return fmt.Errorf("terminal %s reference: %w", t.name, err)
		}
	}

	for _, c := range p.cutouts {
		_, err := tx.Exec(
			"INSERT INTO cutouts (expansion, extent, signal_nets, reference_nets) VALUES (?, ?, ?, ?)",
			c.expansion, c.extent, joinNets(c.signalNets), joinNets(c.referenceNets),
		)
		if err != nil {
			return fmt.Errorf("cutout: %w", err)
		}
	}

	for _, s := range p.setups {
		_, err := tx.Exec(
			"INSERT INTO analysis_setups (id, name, kind) VALUES (?, ?, ?)",
			s.id, s.name, s.kind,
		)
		if err != nil {
			return fmt.Errorf("setup %s: %w", s.name, err)
		}
		for i, sw := range s.sweeps {
			_, err := tx.Exec(
				"INSERT INTO frequency_sweeps (setup_id, sweep_type, start, stop, step, ordinal) VALUES (?, ?, ?, ?, ?, ?)",
				s.id, sw.sweepType, sw.start, sw.stop, sw.step, i,
			)
			if err != nil {
				return fmt.Errorf("setup %s sweep %d: %w", s.name, i, err)
			}
		}
	}

	stamp := func(key, value string) error {
		_, err := tx.Exec(
			"INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
			key, value,
		)
		return err
	}
	if err := stamp("saved_from", d.path); err != nil {
		return err
	}
	if err := stamp("saved_at", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}
	if d.version != "" {
		if err := stamp("backend_version", d.version); err != nil {
			return err
		}
	}

	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
