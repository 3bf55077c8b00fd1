package polyring

// Poly is an element of Z_q[X]/(X^d+1) in coefficient form.
// Coefficients are canonical residues in [0, q).
type Poly struct {
	Coeffs []uint64
}

// NewPoly creates a new zero Poly of degree d.
func NewPoly(d int) Poly {
	return Poly{Coeffs: make([]uint64, d)}
}

// Degree returns the number of coefficients of p.
func (p Poly) Degree() int {
	return len(p.Coeffs)
}

// Copy returns a deep copy of p.
func (p Poly) Copy() Poly {
	coeffs := make([]uint64, len(p.Coeffs))
	copy(coeffs, p.Coeffs)
	return Poly{Coeffs: coeffs}
}

// CopyFrom copies other into p.
func (p Poly) CopyFrom(other Poly) {
	copy(p.Coeffs, other.Coeffs)
}

// Clear sets p to zero.
func (p Poly) Clear() {
	for i := range p.Coeffs {
		p.Coeffs[i] = 0
	}
}

// Equal checks if p and other are equal.
func (p Poly) Equal(other Poly) bool {
	if len(p.Coeffs) != len(other.Coeffs) {
		return false
	}
	for i := range p.Coeffs {
		if p.Coeffs[i] != other.Coeffs[i] {
			return false
		}
	}
	return true
}

// IsZero checks if p is zero.
func (p Poly) IsZero() bool {
	for _, c := range p.Coeffs {
		if c != 0 {
			return false
		}
	}
	return true
}

// IsConstant checks if every coefficient except the constant one is zero.
func (p Poly) IsConstant() bool {
	for _, c := range p.Coeffs[1:] {
		if c != 0 {
			return false
		}
	}
	return true
}

// ConstantCoeff returns the constant coefficient of p.
func (p Poly) ConstantCoeff() uint64 {
	return p.Coeffs[0]
}

// CopyVector returns a deep copy of v.
func CopyVector(v []Poly) []Poly {
	vOut := make([]Poly, len(v))
	for i := range v {
		vOut[i] = v[i].Copy()
	}
	return vOut
}

// EqualVector checks if two vectors are equal.
func EqualVector(v0, v1 []Poly) bool {
	if len(v0) != len(v1) {
		return false
	}
	for i := range v0 {
		if !v0[i].Equal(v1[i]) {
			return false
		}
	}
	return true
}
