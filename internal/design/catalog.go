// Package design holds the in-memory model of a loaded design: the
// role-candidate components with their pins, the nets they touch, and the
// memoized net-set queries the classification and synthesis stages are
// built on.
package design

import (
	"regexp"
	"sort"

	"github.com/livinlefevreloca/netprep/internal/edb"
)

// candidatePattern matches components eligible for a driver or receiver
// role.
var candidatePattern = regexp.MustCompile(`(?i)^U\d+`)

// IsCandidate reports whether a component name is eligible for role
// assignment.
func IsCandidate(name string) bool {
	return candidatePattern.MatchString(name)
}

// Component is one role-candidate component of the loaded design.
type Component struct {
	Name string
	Pins []edb.Pin
}

// Nets returns the set of named nets the component touches.
func (c Component) Nets() map[string]bool {
	nets := make(map[string]bool)
	for _, pin := range c.Pins {
		if pin.Net != "" {
			nets[pin.Net] = true
		}
	}
	return nets
}

// Source is the slice of the storage engine the catalog reads from.
type Source interface {
	Components() (map[string][]edb.Pin, error)
	Nets() (map[string][]string, error)
}

// Catalog is a snapshot of the design's components and nets. Net-set
// queries are memoized per component; the memo lives and dies with the
// catalog, so a reload after persistence builds a fresh catalog with the
// next snapshot id rather than mutating this one. Not safe for concurrent
// use; the catalog belongs to the controlling context.
type Catalog struct {
	src      Source
	snapshot int

	components []Component
	netTable   map[string][]string
	netMemo    map[string]map[string]bool
}

// NewCatalog creates an empty catalog over src. Nothing is read until the
// first query.
func NewCatalog(src Source, snapshot int) *Catalog {
	return &Catalog{
		src:      src,
		snapshot: snapshot,
		netMemo:  make(map[string]map[string]bool),
	}
}

// Snapshot returns the snapshot id this catalog was built for.
func (c *Catalog) Snapshot() int {
	return c.snapshot
}

// Components returns the role-candidate components, ordered by descending
// pin count then name. Loaded once per catalog.
func (c *Catalog) Components() ([]Component, error) {
	if c.components != nil {
		return c.components, nil
	}

	raw, err := c.src.Components()
	if err != nil {
		return nil, err
	}

	components := make([]Component, 0, len(raw))
	for name, pins := range raw {
		if !IsCandidate(name) {
			continue
		}
		components = append(components, Component{Name: name, Pins: pins})
	}
	sort.Slice(components, func(i, j int) bool {
		if len(components[i].Pins) != len(components[j].Pins) {
			return len(components[i].Pins) > len(components[j].Pins)
		}
		return components[i].Name < components[j].Name
	})

	c.components = components
	return c.components, nil
}

// NetsOf returns the set of nets the named component touches, memoized
// per component. An unknown or non-candidate component yields an empty
// set, not an error.
func (c *Catalog) NetsOf(component string) (map[string]bool, error) {
	if nets, ok := c.netMemo[component]; ok {
		return nets, nil
	}

	components, err := c.Components()
	if err != nil {
		return nil, err
	}

	nets := map[string]bool{}
	for _, comp := range components {
		if comp.Name == component {
			nets = comp.Nets()
			break
		}
	}

	c.netMemo[component] = nets
	return nets, nil
}

// SharedNets returns the union, over all driver/receiver component pairs,
// of the intersections of their net sets. Empty if either role list is
// empty.
func (c *Catalog) SharedNets(drivers, receivers []string) (map[string]bool, error) {
	shared := make(map[string]bool)
	if len(drivers) == 0 || len(receivers) == 0 {
		return shared, nil
	}

	for _, d := range drivers {
		dNets, err := c.NetsOf(d)
		if err != nil {
			return nil, err
		}
		for _, r := range receivers {
			rNets, err := c.NetsOf(r)
			if err != nil {
				return nil, err
			}
			for net := range dNets {
				if rNets[net] {
					shared[net] = true
				}
			}
		}
	}

	return shared, nil
}

// CommonNets returns the nets touched by every one of the given
// components. Empty when the input is empty.
func (c *Catalog) CommonNets(components []string) (map[string]bool, error) {
	common := make(map[string]bool)
	if len(components) == 0 {
		return common, nil
	}

	first, err := c.NetsOf(components[0])
	if err != nil {
		return nil, err
	}
	for net := range first {
		common[net] = true
	}

	for _, name := range components[1:] {
		nets, err := c.NetsOf(name)
		if err != nil {
			return nil, err
		}
		for net := range common {
			if !nets[net] {
				delete(common, net)
			}
		}
	}

	return common, nil
}

// ComponentsOn returns the sorted component names touching the given net,
// candidates or not.
func (c *Catalog) ComponentsOn(net string) ([]string, error) {
	if c.netTable == nil {
		table, err := c.src.Nets()
		if err != nil {
			return nil, err
		}
		c.netTable = table
	}

	names := append([]string(nil), c.netTable[net]...)
	sort.Strings(names)
	return names, nil
}

// SortedNames flattens a net set into a sorted name list.
func SortedNames(set map[string]bool) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
