// Package ports synthesizes measurement ports: for every selected net
// and every role-assigned component touching it, a signal terminal bound
// to the component's reference terminal, plus the metadata document that
// hands the result to the analysis backend.
package ports

import (
	"fmt"
	"log/slog"

	"github.com/livinlefevreloca/netprep/internal/classify"
	"github.com/livinlefevreloca/netprep/internal/design"
	"github.com/livinlefevreloca/netprep/internal/edb"
)

// PortImpedanceOhms is the terminal impedance of every synthesized port.
const PortImpedanceOhms = 50.0

// Engine is the slice of the storage engine port synthesis drives.
type Engine interface {
	CreatePinGroup(component, net, name string) (edb.GroupRef, error)
}

// Record describes one synthesized port. Records are immutable once
// emitted; the ordered record list of one synthesis run is the unit that
// goes into the metadata document.
type Record struct {
	Sequence     int           `json:"sequence"`
	Name         string        `json:"name"`
	Component    string        `json:"component"`
	Role         design.Role   `json:"component_role"`
	Net          string        `json:"net"`
	NetKind      classify.Kind `json:"net_type"`
	Pair         *string       `json:"pair"`
	Polarity     *string       `json:"polarity"`
	ReferenceNet string        `json:"reference_net"`
}

// Synthesizer creates port terminals through the storage engine.
type Synthesizer struct {
	eng    Engine
	cat    *design.Catalog
	logger *slog.Logger
}

// NewSynthesizer creates a synthesizer over the given engine and catalog.
func NewSynthesizer(eng Engine, cat *design.Catalog, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{
		eng:    eng,
		cat:    cat,
		logger: logger,
	}
}

// Synthesize creates one signal terminal per (selected net, role-assigned
// component touching it), each bound to the component's reference
// terminal on referenceNet. Reference terminals are created lazily, once
// per component for the whole run. Components are visited drivers first,
// then receivers, in sorted order, for every net in selection order.
//
// A (net, component) combination the engine returns no terminal for is
// skipped without error. Engine failures abort the run; records emitted
// before the failure are returned alongside the error.
func (s *Synthesizer) Synthesize(sel classify.Selection, referenceNet string, roles design.RoleAssignment) ([]Record, error) {
	if sel.Empty() {
		return nil, fmt.Errorf("no nets selected")
	}
	if referenceNet == "" {
		return nil, fmt.Errorf("no reference net selected")
	}
	if err := roles.Validate(); err != nil {
		return nil, err
	}

	components := append(roles.Drivers(), roles.Receivers()...)
	refTerminals := make(map[string]edb.Terminal)

	var records []Record
	for _, net := range sel.Nets {
		for _, component := range components {
			nets, err := s.cat.NetsOf(component)
			if err != nil {
				return records, fmt.Errorf("nets of %s: %w", component, err)
			}
			if !nets[net] {
				continue
			}

			ref, ok := refTerminals[component]
			if !ok {
				ref, err = s.referenceTerminal(component, referenceNet)
				if err != nil {
					return records, fmt.Errorf("reference terminal for %s on %s: %w", component, referenceNet, err)
				}
				if ref == nil {
					s.logger.Debug("no reference terminal, skipping component for this net",
						"component", component, "net", net, "reference_net", referenceNet)
					continue
				}
				refTerminals[component] = ref
			}

			sequence := len(records) + 1
			name, err := s.signalTerminal(component, net, sequence, ref)
			if err != nil {
				return records, fmt.Errorf("port for %s on %s: %w", component, net, err)
			}
			if name == "" {
				s.logger.Debug("no signal terminal, skipping",
					"component", component, "net", net)
				continue
			}

			record := Record{
				Sequence:     sequence,
				Name:         name,
				Component:    component,
				Role:         roles[component],
				Net:          net,
				ReferenceNet: referenceNet,
			}
			kind, ok := sel.Kind[net]
			if !ok {
				kind = classify.KindSingle
			}
			record.NetKind = kind
			if kind == classify.KindDifferential {
				if pair, ok := sel.Pair[net]; ok {
					record.Pair = &pair
				}
				if polarity, ok := sel.Polarity[net]; ok {
					record.Polarity = &polarity
				}
			}

			records = append(records, record)
			s.logger.Debug("port created",
				"name", name, "component", component, "net", net, "sequence", sequence)
		}
	}

	return records, nil
}

// referenceTerminal groups the component's pins on the reference net and
// creates the 50 ohm terminal the component's signal ports bind to.
// Returns (nil, nil) when the engine produces no group or terminal.
func (s *Synthesizer) referenceTerminal(component, referenceNet string) (edb.Terminal, error) {
	group, err := s.eng.CreatePinGroup(component, referenceNet, referenceGroupName(component, referenceNet))
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, nil
	}

	term, err := group.CreatePortTerminal(PortImpedanceOhms)
	if err != nil {
		return nil, err
	}
	if term == nil {
		return nil, nil
	}

	if err := term.SetName(referenceTerminalName(component, referenceNet)); err != nil {
		return nil, err
	}

	return term, nil
}

// signalTerminal creates the named signal terminal for one (component,
// net) combination. Returns "" when the engine produces no group or
// terminal.
func (s *Synthesizer) signalTerminal(component, net string, sequence int, ref edb.Terminal) (string, error) {
	group, err := s.eng.CreatePinGroup(component, net, groupName(component, net))
	if err != nil {
		return "", err
	}
	if group == nil {
		return "", nil
	}

	term, err := group.CreatePortTerminal(PortImpedanceOhms)
	if err != nil {
		return "", err
	}
	if term == nil {
		return "", nil
	}

	name := portName(component, net, sequence)
	if err := term.SetName(name); err != nil {
		return "", err
	}
	if err := term.SetReference(ref); err != nil {
		return "", err
	}

	return name, nil
}
