package touchstone

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Network is a parsed frequency-domain network: one complex S-matrix
// per frequency point, frequencies in Hz in file order.
type Network struct {
	NumPorts      int
	ReferenceOhms float64
	Frequencies   []float64
	Matrices      [][][]complex128
}

// Points returns the number of frequency points.
func (n *Network) Points() int {
	return len(n.Frequencies)
}

// S returns S[i][j] at the k-th frequency point. Ports are 1-based, as
// written on schematics.
func (n *Network) S(k, i, j int) (complex128, error) {
	if k < 0 || k >= len(n.Matrices) {
		return 0, fmt.Errorf("frequency point %d out of range [0, %d)", k, len(n.Matrices))
	}
	if i < 1 || i > n.NumPorts || j < 1 || j > n.NumPorts {
		return 0, fmt.Errorf("port (%d, %d) out of range for a %d-port network", i, j, n.NumPorts)
	}
	return n.Matrices[k][i-1][j-1], nil
}

// MaxCouplingDB returns the worst-case (largest) magnitude of S[i][j]
// across all frequency points, in dB. A coupling that is zero
// everywhere comes back as -Inf.
func (n *Network) MaxCouplingDB(i, j int) (float64, error) {
	if len(n.Matrices) == 0 {
		return 0, fmt.Errorf("network has no frequency points")
	}

	max := math.Inf(-1)
	for k := range n.Matrices {
		s, err := n.S(k, i, j)
		if err != nil {
			return 0, err
		}
		if db := magnitudeDB(s); db > max {
			max = db
		}
	}
	return max, nil
}

// CouplingAtDCDB returns the magnitude of S[i][j] at the first
// frequency point, in dB.
func (n *Network) CouplingAtDCDB(i, j int) (float64, error) {
	if len(n.Matrices) == 0 {
		return 0, fmt.Errorf("network has no frequency points")
	}
	s, err := n.S(0, i, j)
	if err != nil {
		return 0, err
	}
	return magnitudeDB(s), nil
}

func magnitudeDB(s complex128) float64 {
	mag := cmplx.Abs(s)
	if mag == 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(mag)
}
