package classify

import (
	"fmt"
	"slices"
)

// Polarity labels used in port metadata.
const (
	PolarityPositive = "positive"
	PolarityNegative = "negative"
)

// Selection is the ordered net list handed to port synthesis: single-
// ended nets first, then pair legs positive-before-negative, pairs in
// label order, duplicates dropped keeping the first occurrence.
type Selection struct {
	Nets     []string
	Kind     map[string]Kind
	Pair     map[string]string // net -> pair label, differential only
	Polarity map[string]string // net -> polarity, differential only
}

// Empty reports whether the selection holds no nets.
func (s Selection) Empty() bool {
	return len(s.Nets) == 0
}

func newSelection() Selection {
	return Selection{
		Kind:     make(map[string]Kind),
		Pair:     make(map[string]string),
		Polarity: make(map[string]string),
	}
}

func (s *Selection) addSingle(net string) {
	if slices.Contains(s.Nets, net) {
		return
	}
	s.Nets = append(s.Nets, net)
	s.Kind[net] = KindSingle
}

func (s *Selection) addPair(p SharedPair) {
	for _, leg := range []struct {
		net      string
		polarity string
	}{
		{p.PositiveNet, PolarityPositive},
		{p.NegativeNet, PolarityNegative},
	} {
		if slices.Contains(s.Nets, leg.net) {
			continue
		}
		s.Nets = append(s.Nets, leg.net)
		s.Kind[leg.net] = KindDifferential
		s.Pair[leg.net] = p.Label
		s.Polarity[leg.net] = leg.polarity
	}
}

// Selection returns the full selection: every single-ended net and every
// shared pair of the result.
func (r *Result) Selection() Selection {
	sel := newSelection()
	for _, net := range r.Singles {
		sel.addSingle(net)
	}
	for _, p := range r.Pairs {
		sel.addPair(p)
	}
	return sel
}

// Select returns a selection restricted to the named single-ended nets
// and pair labels. Names not present in the result are rejected.
func (r *Result) Select(nets []string, pairLabels []string) (Selection, error) {
	sel := newSelection()

	for _, net := range nets {
		if !slices.Contains(r.Singles, net) {
			return Selection{}, fmt.Errorf("net %s is not a shared single-ended net", net)
		}
		sel.addSingle(net)
	}

	for _, label := range pairLabels {
		idx := slices.IndexFunc(r.Pairs, func(p SharedPair) bool { return p.Label == label })
		if idx < 0 {
			return Selection{}, fmt.Errorf("pair %s is not a shared differential pair", label)
		}
		sel.addPair(r.Pairs[idx])
	}

	return sel, nil
}
