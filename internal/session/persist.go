package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/livinlefevreloca/netprep/internal/classify"
	"github.com/livinlefevreloca/netprep/internal/design"
	"github.com/livinlefevreloca/netprep/internal/ports"
	"github.com/livinlefevreloca/netprep/internal/simulation"
)

// appliedSuffix is the repeatable identity token commits append.
const appliedSuffix = "_applied"

// NextIdentity derives the identity a commit writes to: every trailing
// suffix token is stripped from the file stem and exactly one is
// re-appended, so repeated commits never stack suffixes. The extension
// and directory are preserved.
func NextIdentity(path string) string {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for strings.HasSuffix(stem, appliedSuffix) {
		stem = strings.TrimSuffix(stem, appliedSuffix)
	}

	return filepath.Join(dir, stem+appliedSuffix+ext)
}

// MetadataPath is where the port metadata document for a design lives:
// next to it, under the design's stem.
func MetadataPath(designPath string) string {
	ext := filepath.Ext(designPath)
	stem := strings.TrimSuffix(filepath.Base(designPath), ext)
	return filepath.Join(filepath.Dir(designPath), stem+"_ports.json")
}

// Commit persists pending mutations under the next design identity,
// closes the old handle and reopens the new one. On reopen failure the
// session is cleared: no later operation may address the half-closed
// handle. On success the catalog is rebuilt for the new handle before
// anything can query it; roles and the reference net carry over.
func (s *Session) Commit() (string, error) {
	if s.eng == nil {
		return "", inputMissing("commit design", errors.New("no design open"))
	}

	oldPath := s.eng.Path()
	newPath := NextIdentity(oldPath)

	target := newPath
	if target == oldPath {
		// Recommitting an already-suffixed design: stage next to it
		// and swap once the old handle is closed.
		target = newPath + ".staging"
	}

	if err := s.eng.SaveAs(target); err != nil {
		return "", storageFailure("commit design", err)
	}

	if err := s.eng.Close(); err != nil {
		s.logger.Warn("closing committed design", "path", oldPath, "error", err)
	}

	if target != newPath {
		if err := os.Rename(target, newPath); err != nil {
			s.reset()
			return "", persistFailure("commit design", err)
		}
	}

	eng, err := s.open(newPath, s.version)
	if err != nil {
		s.reset()
		return "", persistFailure("commit design", err)
	}

	s.eng = eng
	s.snapshot++
	s.catalog = design.NewCatalog(eng, s.snapshot)
	s.logger.Info("design committed", "from", oldPath, "to", newPath, "snapshot", s.snapshot)
	return newPath, nil
}

// ApplyResult is what Apply leaves behind: the synthesized records, the
// metadata document, and where both the new design and the document
// were written.
type ApplyResult struct {
	Records      []ports.Record
	Document     *ports.Document
	DesignPath   string
	MetadataPath string
}

// Apply runs the whole tail of the pipeline for a selection: synthesize
// ports, commit the design under its next identity, and write the port
// metadata document next to it. A metadata write failure after a
// successful commit returns the result alongside the error; the design
// on disk is already good.
func (s *Session) Apply(sel classify.Selection) (*ApplyResult, error) {
	records, err := s.Synthesize(sel)
	if err != nil {
		return nil, err
	}

	doc := &ports.Document{
		ReferenceNet:       s.referenceNet,
		DriverComponents:   s.roles.Drivers(),
		ReceiverComponents: s.roles.Receivers(),
		Ports:              records,
	}

	newPath, err := s.Commit()
	if err != nil {
		return nil, err
	}
	doc.DesignPath = newPath

	result := &ApplyResult{
		Records:      records,
		Document:     doc,
		DesignPath:   newPath,
		MetadataPath: MetadataPath(newPath),
	}

	if err := doc.Write(result.MetadataPath); err != nil {
		return result, storageFailure("apply", err)
	}

	s.logger.Info("ports applied",
		"ports", len(records), "design", result.DesignPath, "metadata", result.MetadataPath)
	return result, nil
}

// Setup installs the simulation plan for the given signal nets and
// commits the design under its next identity. Every named net must
// exist in the design.
func (s *Session) Setup(plan simulation.Plan, signalNets []string) (string, error) {
	if s.eng == nil {
		return "", inputMissing("setup simulation", errors.New("no design open"))
	}
	if len(signalNets) == 0 {
		return "", inputMissing("setup simulation", errors.New("no signal nets named"))
	}
	if err := plan.Validate(); err != nil {
		return "", inputMissing("setup simulation", err)
	}

	for _, net := range signalNets {
		on, err := s.catalog.ComponentsOn(net)
		if err != nil {
			return "", storageFailure("setup simulation", err)
		}
		if len(on) == 0 {
			return "", inputMissing("setup simulation", fmt.Errorf("net %s not in design", net))
		}
	}

	if err := plan.Apply(s.eng, signalNets, s.referenceNet); err != nil {
		return "", storageFailure("setup simulation", err)
	}

	s.logger.Info("simulation plan installed",
		"setup", plan.SetupName, "nets", len(signalNets), "cutout", plan.CutoutEnabled)
	return s.Commit()
}
