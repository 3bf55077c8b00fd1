// Package estimator models SIS and Module-SIS instances and
// queries an external lattice estimator for their bit security.
package estimator

// Norm is the norm in which a short solution is measured.
type Norm int

const (
	// L2 is the Euclidean norm.
	L2 Norm = iota
	// Linf is the infinity norm.
	Linf
)

// String implements [fmt.Stringer].
func (n Norm) String() string {
	switch n {
	case L2:
		return "L2"
	case Linf:
		return "Linf"
	}
	return "unknown"
}
