// Package session ties the preparation pipeline together: one open
// design, its net catalog, the role assignment and reference net chosen
// for it, and the classify/synthesize/commit operations that consume
// them. A session is single-threaded; concurrency lives in the job
// orchestrator, which only ever reads the artifacts a session produced.
package session

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/livinlefevreloca/netprep/internal/classify"
	"github.com/livinlefevreloca/netprep/internal/design"
	"github.com/livinlefevreloca/netprep/internal/edb"
	"github.com/livinlefevreloca/netprep/internal/ports"
)

// Engine is the storage engine surface a session drives. *edb.Design
// satisfies it.
type Engine interface {
	Path() string
	Components() (map[string][]edb.Pin, error)
	Nets() (map[string][]string, error)
	DifferentialPairs() ([]edb.DiffPair, error)
	CreatePinGroup(component, net, name string) (edb.GroupRef, error)
	Cutout(signalNets, referenceNets []string, expansionMeters float64, extent string) error
	CreateAnalysisSetup(name string) (*edb.Setup, error)
	SaveAs(path string) error
	Close() error
}

// Opener opens a design handle for a session.
type Opener func(path, version string) (Engine, error)

// DefaultOpener opens designs through the sqlite storage engine.
func DefaultOpener(path, version string) (Engine, error) {
	return edb.Open(path, version)
}

// Session holds the state of one preparation run.
type Session struct {
	open    Opener
	version string
	logger  *slog.Logger

	eng          Engine
	catalog      *design.Catalog
	roles        design.RoleAssignment
	referenceNet string
	snapshot     int
}

// New creates a session. version is stamped into designs committed
// through it.
func New(open Opener, version string, logger *slog.Logger) *Session {
	return &Session{
		open:    open,
		version: version,
		logger:  logger,
	}
}

// Open opens the design at path, replacing any design already open.
// Roles and the reference net are discarded; they belong to the old
// design.
func (s *Session) Open(path string) error {
	if path == "" {
		return inputMissing("open design", errors.New("no design path"))
	}

	if s.eng != nil {
		if err := s.eng.Close(); err != nil {
			s.logger.Warn("closing previous design", "path", s.eng.Path(), "error", err)
		}
		s.reset()
	}

	eng, err := s.open(path, s.version)
	if err != nil {
		return storageFailure("open design", err)
	}

	s.eng = eng
	s.snapshot++
	s.catalog = design.NewCatalog(eng, s.snapshot)
	s.logger.Info("design opened", "path", path, "snapshot", s.snapshot)
	return nil
}

// Close closes the open design and clears all session state. Closing a
// session with no design open is a no-op.
func (s *Session) Close() error {
	if s.eng == nil {
		return nil
	}

	err := s.eng.Close()
	s.reset()
	if err != nil {
		return storageFailure("close design", err)
	}
	return nil
}

func (s *Session) reset() {
	s.eng = nil
	s.catalog = nil
	s.roles = nil
	s.referenceNet = ""
}

// IsOpen reports whether a design is open.
func (s *Session) IsOpen() bool {
	return s.eng != nil
}

// Path returns the open design's path, or "".
func (s *Session) Path() string {
	if s.eng == nil {
		return ""
	}
	return s.eng.Path()
}

// Catalog returns the net catalog of the open design.
func (s *Session) Catalog() (*design.Catalog, error) {
	if s.eng == nil {
		return nil, inputMissing("catalog", errors.New("no design open"))
	}
	return s.catalog, nil
}

// DifferentialPairs returns the open design's pair registry.
func (s *Session) DifferentialPairs() ([]edb.DiffPair, error) {
	if s.eng == nil {
		return nil, inputMissing("differential pairs", errors.New("no design open"))
	}
	pairs, err := s.eng.DifferentialPairs()
	if err != nil {
		return nil, storageFailure("differential pairs", err)
	}
	return pairs, nil
}

// AssignRoles records which components drive and which receive. Every
// named component must be a role candidate of the open design; a
// component cannot take both roles.
func (s *Session) AssignRoles(drivers, receivers []string) error {
	if s.eng == nil {
		return inputMissing("assign roles", errors.New("no design open"))
	}

	components, err := s.catalog.Components()
	if err != nil {
		return storageFailure("assign roles", err)
	}
	known := make(map[string]bool, len(components))
	for _, c := range components {
		known[c.Name] = true
	}
	for _, name := range append(append([]string{}, drivers...), receivers...) {
		if !known[name] {
			return inputMissing("assign roles", fmt.Errorf("component %s not in design", name))
		}
	}

	roles, err := design.NewRoleAssignment(drivers, receivers)
	if err != nil {
		return inputMissing("assign roles", err)
	}

	s.roles = roles
	s.logger.Info("roles assigned", "drivers", roles.Drivers(), "receivers", roles.Receivers())
	return nil
}

// Roles returns the current role assignment, or nil.
func (s *Session) Roles() design.RoleAssignment {
	return s.roles
}

// SetReference selects the reference net. The net must exist in the
// design; the common nets of the role-assigned components are the
// natural candidates.
func (s *Session) SetReference(net string) error {
	if s.eng == nil {
		return inputMissing("set reference", errors.New("no design open"))
	}
	if net == "" {
		return inputMissing("set reference", errors.New("no reference net named"))
	}

	on, err := s.catalog.ComponentsOn(net)
	if err != nil {
		return storageFailure("set reference", err)
	}
	if len(on) == 0 {
		return inputMissing("set reference", fmt.Errorf("net %s not in design", net))
	}

	s.referenceNet = net
	s.logger.Info("reference net selected", "net", net)
	return nil
}

// ReferenceNet returns the selected reference net, or "".
func (s *Session) ReferenceNet() string {
	return s.referenceNet
}

// ReferenceCandidates returns the nets common to every role-assigned
// component, sorted.
func (s *Session) ReferenceCandidates() ([]string, error) {
	if s.eng == nil {
		return nil, inputMissing("reference candidates", errors.New("no design open"))
	}
	if err := s.roles.Validate(); err != nil {
		return nil, inputMissing("reference candidates", err)
	}

	all := append(s.roles.Drivers(), s.roles.Receivers()...)
	common, err := s.catalog.CommonNets(all)
	if err != nil {
		return nil, storageFailure("reference candidates", err)
	}
	return design.SortedNames(common), nil
}

// Classify resolves the shared nets of the current role assignment into
// differential pairs and single-ended nets. The reference net, when one
// is selected, is excluded from the shared set: it carries return
// current, not signal.
func (s *Session) Classify() (*classify.Result, error) {
	if s.eng == nil {
		return nil, inputMissing("classify nets", errors.New("no design open"))
	}
	if err := s.roles.Validate(); err != nil {
		return nil, inputMissing("classify nets", err)
	}

	shared, err := s.catalog.SharedNets(s.roles.Drivers(), s.roles.Receivers())
	if err != nil {
		return nil, storageFailure("classify nets", err)
	}
	if s.referenceNet != "" {
		delete(shared, s.referenceNet)
	}

	registry, err := s.eng.DifferentialPairs()
	if err != nil {
		return nil, storageFailure("classify nets", err)
	}

	result, err := classify.Resolve(s.catalog, shared, registry, s.roles)
	if err != nil {
		return nil, storageFailure("classify nets", err)
	}

	s.logger.Info("nets classified",
		"shared", len(shared), "pairs", len(result.Pairs), "singles", len(result.Singles))
	return result, nil
}

// Synthesize creates port terminals for the selection. Records created
// before a storage failure are returned alongside the error.
func (s *Session) Synthesize(sel classify.Selection) ([]ports.Record, error) {
	if s.eng == nil {
		return nil, inputMissing("synthesize ports", errors.New("no design open"))
	}
	if sel.Empty() {
		return nil, inputMissing("synthesize ports", errors.New("no nets selected"))
	}
	if s.referenceNet == "" {
		return nil, inputMissing("synthesize ports", errors.New("no reference net selected"))
	}
	if err := s.roles.Validate(); err != nil {
		return nil, inputMissing("synthesize ports", err)
	}

	syn := ports.NewSynthesizer(s.eng, s.catalog, s.logger)
	records, err := syn.Synthesize(sel, s.referenceNet, s.roles)
	if err != nil {
		return records, storageFailure("synthesize ports", err)
	}
	return records, nil
}
