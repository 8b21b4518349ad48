package edb

import "sort"

// Components returns every component in the design with its pins in
// insertion order.
func (d *Design) Components() (map[string][]Pin, error) {
	if d.closed {
		return nil, ErrClosed
	}

	components := make(map[string][]Pin)

	rows, err := d.db.Query("SELECT name FROM components ORDER BY ordinal, name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		components[name] = []Pin{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pinRows, err := d.db.Query("SELECT component, number, name, net FROM pins ORDER BY component, rowid")
	if err != nil {
		return nil, err
	}
	defer pinRows.Close()

	for pinRows.Next() {
		var component string
		var pin Pin
		if err := pinRows.Scan(&component, &pin.Number, &pin.Name, &pin.Net); err != nil {
			return nil, err
		}
		components[component] = append(components[component], pin)
	}
	if err := pinRows.Err(); err != nil {
		return nil, err
	}

	return components, nil
}

// Nets returns every named net in the design mapped to the sorted list of
// components touching it. Unconnected pins (empty net) are excluded.
func (d *Design) Nets() (map[string][]string, error) {
	if d.closed {
		return nil, ErrClosed
	}

	query := `
		SELECT DISTINCT net, component
		FROM pins
		WHERE net <> ''
		ORDER BY net, component
	`

	rows, err := d.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	nets := make(map[string][]string)
	for rows.Next() {
		var net, component string
		if err := rows.Scan(&net, &component); err != nil {
			return nil, err
		}
		nets[net] = append(nets[net], component)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for net := range nets {
		sort.Strings(nets[net])
	}

	return nets, nil
}

// DifferentialPairs returns the design's differential-pair registry
// ordered by label.
func (d *Design) DifferentialPairs() ([]DiffPair, error) {
	if d.closed {
		return nil, ErrClosed
	}

	query := `
		SELECT label, positive_net, negative_net
		FROM diff_pairs
		ORDER BY label
	`

	rows, err := d.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []DiffPair
	for rows.Next() {
		var p DiffPair
		if err := rows.Scan(&p.Label, &p.PositiveNet, &p.NegativeNet); err != nil {
			return nil, err
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if pairs == nil {
		pairs = []DiffPair{}
	}

	return pairs, nil
}

// pinsOn returns the pin numbers component has on net, in insertion
// order. Empty result means the component does not touch the net.
func (d *Design) pinsOn(component, net string) ([]string, error) {
	query := `
		SELECT number
		FROM pins
		WHERE component = ? AND net = ?
		ORDER BY rowid
	`

	rows, err := d.db.Query(query, component, net)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return numbers, nil
}
