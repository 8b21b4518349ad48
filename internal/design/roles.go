package design

import (
	"fmt"
	"sort"
	"strings"
)

// Role places a component on one side of the analysis. The zero value is
// RoleUnassigned so that a missing map entry never reads as a role.
type Role int

const (
	RoleUnassigned Role = iota
	RoleDriver
	RoleReceiver
)

// String returns the role name
func (r Role) String() string {
	switch r {
	case RoleUnassigned:
		return "unassigned"
	case RoleDriver:
		return "driver"
	case RoleReceiver:
		return "receiver"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// MarshalJSON encodes the role as its name; port metadata carries roles
// as readable strings.
func (r Role) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// UnmarshalJSON decodes a role name.
func (r *Role) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRole parses a role name.
func ParseRole(s string) (Role, error) {
	switch s {
	case "driver":
		return RoleDriver, nil
	case "receiver":
		return RoleReceiver, nil
	default:
		return 0, fmt.Errorf("unknown role %q", s)
	}
}

// RoleAssignment maps component names to exactly one role. Components
// absent from the map take no part in net or pair computations.
type RoleAssignment map[string]Role

// NewRoleAssignment builds an assignment from driver and receiver name
// lists. A component may not appear on both sides.
func NewRoleAssignment(drivers, receivers []string) (RoleAssignment, error) {
	roles := make(RoleAssignment, len(drivers)+len(receivers))
	for _, name := range drivers {
		roles[name] = RoleDriver
	}
	for _, name := range receivers {
		if _, ok := roles[name]; ok {
			return nil, fmt.Errorf("component %s assigned both roles", name)
		}
		roles[name] = RoleReceiver
	}
	return roles, nil
}

// Drivers returns the driver-role component names, sorted.
func (ra RoleAssignment) Drivers() []string {
	return ra.withRole(RoleDriver)
}

// Receivers returns the receiver-role component names, sorted.
func (ra RoleAssignment) Receivers() []string {
	return ra.withRole(RoleReceiver)
}

func (ra RoleAssignment) withRole(role Role) []string {
	var names []string
	for name, r := range ra {
		if r == role {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Validate checks the assignment covers both sides of the analysis.
func (ra RoleAssignment) Validate() error {
	if len(ra.Drivers()) == 0 {
		return fmt.Errorf("no driver components assigned")
	}
	if len(ra.Receivers()) == 0 {
		return fmt.Errorf("no receiver components assigned")
	}
	return nil
}
