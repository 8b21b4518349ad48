// Package edb implements the design database netprep works against: a
// single SQLite file holding a layout snapshot (components, pins, nets,
// differential pairs) plus the analysis artifacts netprep adds to it
// (pin groups, port terminals, cutouts, frequency sweeps).
//
// A handle opened with Open is read-only; everything created through it
// (CreatePinGroup, Cutout, CreateAnalysisSetup) accumulates as pending
// mutations in memory and is only written out by SaveAs, which targets a
// new file and never touches the source. Handles are not safe for
// concurrent use.
package edb

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Standard errors
var (
	ErrNotFound = errors.New("edb: not found")
	ErrClosed   = errors.New("edb: design closed")
	ErrReadOnly = errors.New("edb: design opened read-only")
)

// Design is an open handle on a design database file.
type Design struct {
	db       *sql.DB
	path     string
	version  string
	writable bool
	closed   bool
	pending  *pendingSet
}

// Open opens an existing design database read-only. The version argument
// is a backend-version hint recorded for diagnostics; a mismatch with the
// file's recorded version is not an error.
func Open(path, version string) (*Design, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, err
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	d := &Design{
		db:      db,
		path:    path,
		version: version,
		pending: newPendingSet(),
	}

	if err := d.checkSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return d, nil
}

// Create creates a new, empty design database. The returned handle is
// writable: AddComponent, AddPin and AddDiffPair write straight to the
// file. Used by designgen and by tests to build fixtures.
func Create(path string) (*Design, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=rwc")
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Design{
		db:       db,
		path:     path,
		writable: true,
		pending:  newPendingSet(),
	}, nil
}

// Path returns the file path this handle was opened on.
func (d *Design) Path() string {
	return d.path
}

// Version returns the backend-version hint supplied at open time.
func (d *Design) Version() string {
	return d.version
}

// Close releases the handle. Closing an already closed handle returns
// ErrClosed.
func (d *Design) Close() error {
	if d.closed {
		return ErrClosed
	}
	d.closed = true
	return d.db.Close()
}

// checkSchema verifies the file is a design database we understand.
func (d *Design) checkSchema() error {
	var version string
	err := d.db.QueryRow("SELECT value FROM meta WHERE key = 'schema_version'").Scan(&version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || strings.Contains(err.Error(), "no such table") {
			return fmt.Errorf("%s is not a design database", d.path)
		}
		return err
	}
	if version != schemaVersion {
		return fmt.Errorf("design database %s has schema version %s, want %s", d.path, version, schemaVersion)
	}
	return nil
}

// withTransaction executes fn within a transaction on the given
// connection, committing on success and rolling back on error.
func withTransaction(db *sql.DB, fn func(*sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}

	// Make sure we make a best effort to roll back on panic
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// Error classification functions

// IsNotFound checks if error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}

// IsDuplicate checks if error is a duplicate key error
func IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "duplicate key")
}

// IsLocked checks if error is a locked database error
func IsLocked(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "database is locked") ||
		strings.Contains(err.Error(), "database table is locked")
}
