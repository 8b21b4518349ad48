// Package classify splits a shared net set into single-ended nets and
// differential pairs using the design's differential-pair registry, and
// builds the deterministic driver/receiver row table the rest of the
// pipeline and the CLI consume.
package classify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/livinlefevreloca/netprep/internal/design"
	"github.com/livinlefevreloca/netprep/internal/edb"
)

// NoneLabel marks the missing side of a row when only one role has a
// usable entry.
const NoneLabel = "(none)"

// Kind says whether a net carries one leg of a differential pair or a
// single-ended signal.
type Kind int

const (
	KindDifferential Kind = iota
	KindSingle
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindDifferential:
		return "differential"
	case KindSingle:
		return "single"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses a kind name.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "differential":
		return KindDifferential, nil
	case "single":
		return KindSingle, nil
	default:
		return 0, fmt.Errorf("unknown net kind %q", s)
	}
}

// MarshalJSON encodes the kind as its name; port metadata carries net
// kinds as readable strings.
func (k Kind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// UnmarshalJSON decodes a kind name.
func (k *Kind) UnmarshalJSON(data []byte) error {
	parsed, err := ParseKind(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// SharedPair is a registry pair whose legs are both members of the shared
// net set.
type SharedPair struct {
	Label       string
	PositiveNet string
	NegativeNet string
}

// Row is one driver/receiver combination for a shared pair or net.
type Row struct {
	Kind     Kind
	Label    string // pair label or net name
	Driver   string // driver-side component, or NoneLabel
	Receiver string // receiver-side component, or NoneLabel
}

// Result is the classification of one shared net set.
type Result struct {
	Pairs   []SharedPair // both legs shared; ordered by label
	Singles []string     // shared nets not consumed by Pairs; sorted
	Rows    []Row        // ordered by (kind, label, driver, receiver)
}

// signature identifies a pair independent of leg orientation.
type signature [2]string

func signatureOf(p edb.DiffPair) signature {
	if p.PositiveNet < p.NegativeNet {
		return signature{p.PositiveNet, p.NegativeNet}
	}
	return signature{p.NegativeNet, p.PositiveNet}
}

// pairGroup is one role-assigned component carrying both legs of a pair.
type pairGroup struct {
	label     string
	component string
}

// Resolve classifies the shared net set against the differential-pair
// registry. Per role, a registry pair contributes a usable group for each
// role-assigned component touching both legs; a pair is emitted iff
// either role has a usable group and both legs are shared. Shared nets
// left over fall through as single-ended entries. A net touched by no
// role-assigned component is skipped without diagnostic.
func Resolve(cat *design.Catalog, shared map[string]bool, registry []edb.DiffPair, roles design.RoleAssignment) (*Result, error) {
	drivers := roles.Drivers()
	receivers := roles.Receivers()

	driverGroups, err := usableGroups(cat, registry, drivers)
	if err != nil {
		return nil, err
	}
	receiverGroups, err := usableGroups(cat, registry, receivers)
	if err != nil {
		return nil, err
	}

	// One registry entry per signature decides label and leg orientation;
	// registry order (by label) picks the winner when labels collide.
	ordered := append([]edb.DiffPair(nil), registry...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Label < ordered[j].Label })

	result := &Result{}
	consumed := make(map[string]bool)
	seenSig := make(map[signature]bool)

	for _, pair := range ordered {
		sig := signatureOf(pair)
		if seenSig[sig] {
			continue
		}
		seenSig[sig] = true

		if !shared[pair.PositiveNet] || !shared[pair.NegativeNet] {
			continue
		}
		dg := driverGroups[sig]
		rg := receiverGroups[sig]
		if len(dg) == 0 && len(rg) == 0 {
			continue
		}

		result.Pairs = append(result.Pairs, SharedPair{
			Label:       pair.Label,
			PositiveNet: pair.PositiveNet,
			NegativeNet: pair.NegativeNet,
		})
		consumed[pair.PositiveNet] = true
		consumed[pair.NegativeNet] = true
		result.Rows = append(result.Rows, crossRows(KindDifferential, pair.Label, dg, rg)...)
	}

	for net := range shared {
		if consumed[net] {
			continue
		}
		touching, err := cat.ComponentsOn(net)
		if err != nil {
			return nil, err
		}
		var dg, rg []pairGroup
		for _, comp := range touching {
			switch roles[comp] {
			case design.RoleDriver:
				dg = append(dg, pairGroup{label: net, component: comp})
			case design.RoleReceiver:
				rg = append(rg, pairGroup{label: net, component: comp})
			}
		}
		if len(dg) == 0 && len(rg) == 0 {
			// No role-assigned component touches this net; intentional
			// silent skip.
			continue
		}
		result.Singles = append(result.Singles, net)
		result.Rows = append(result.Rows, crossRows(KindSingle, net, dg, rg)...)
	}

	sort.Strings(result.Singles)
	sort.Slice(result.Rows, func(i, j int) bool {
		a, b := result.Rows[i], result.Rows[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		if a.Driver != b.Driver {
			return a.Driver < b.Driver
		}
		return a.Receiver < b.Receiver
	})

	return result, nil
}

// usableGroups maps each pair signature to the components among names
// that touch both of its legs.
func usableGroups(cat *design.Catalog, registry []edb.DiffPair, names []string) (map[signature][]pairGroup, error) {
	groups := make(map[signature][]pairGroup)

	for _, pair := range registry {
		sig := signatureOf(pair)
		for _, name := range names {
			nets, err := cat.NetsOf(name)
			if err != nil {
				return nil, err
			}
			if nets[pair.PositiveNet] && nets[pair.NegativeNet] {
				groups[sig] = append(groups[sig], pairGroup{label: pair.Label, component: name})
			}
		}
	}

	for sig := range groups {
		g := groups[sig]
		sort.Slice(g, func(i, j int) bool {
			if g[i].label != g[j].label {
				return g[i].label < g[j].label
			}
			return g[i].component < g[j].component
		})
	}

	return groups, nil
}

// crossRows expands driver and receiver groups into one row per
// combination, substituting NoneLabel for an absent side.
func crossRows(kind Kind, label string, dg, rg []pairGroup) []Row {
	var rows []Row

	switch {
	case len(dg) > 0 && len(rg) > 0:
		for _, d := range dg {
			for _, r := range rg {
				rows = append(rows, Row{Kind: kind, Label: label, Driver: d.component, Receiver: r.component})
			}
		}
	case len(dg) > 0:
		for _, d := range dg {
			rows = append(rows, Row{Kind: kind, Label: label, Driver: d.component, Receiver: NoneLabel})
		}
	case len(rg) > 0:
		for _, r := range rg {
			rows = append(rows, Row{Kind: kind, Label: label, Driver: NoneLabel, Receiver: r.component})
		}
	}

	return rows
}
