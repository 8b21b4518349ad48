package ports

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	nonWord       = regexp.MustCompile(`[^A-Za-z0-9_]+`)
	underscoreRun = regexp.MustCompile(`_+`)
	seqPrefix     = regexp.MustCompile(`^\d+_`)
)

// sanitize collapses every run of characters outside [A-Za-z0-9_] to a
// single underscore, squeezes underscore runs, and trims the edges.
// An empty result falls back to the given label.
func sanitize(s, fallback string) string {
	s = nonWord.ReplaceAllString(s, "_")
	s = underscoreRun.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return fallback
	}
	return s
}

// groupName builds a pin-group name for a component on a net.
func groupName(component, net string) string {
	return sanitize(component+"_"+net, "pg")
}

// referenceGroupName builds the pin-group name for a component's
// reference terminal.
func referenceGroupName(component, referenceNet string) string {
	return groupName(component, referenceNet) + "_ref"
}

// referenceTerminalName names a component's reference terminal. The name
// is stable per (component, reference net) so repeated lookups address
// the same terminal.
func referenceTerminalName(component, referenceNet string) string {
	return fmt.Sprintf("ref;%s;%s", component, referenceNet)
}

// portName builds the globally unique signal terminal name: the
// sanitized component_net base with any previous sequence prefix
// stripped, behind the fresh sequence number.
func portName(component, net string, sequence int) string {
	base := sanitize(component+"_"+net, "port")
	base = seqPrefix.ReplaceAllString(base, "")
	if base == "" {
		base = "port"
	}
	return fmt.Sprintf("%d_%s", sequence, base)
}
