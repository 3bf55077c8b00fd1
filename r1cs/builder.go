package r1cs

import (
	"fmt"

	"github.com/sp301415/ringo-labrador/polyring"
)

// Variable is a wire of a constraint system.
type Variable int

// One is the constant wire.
const One Variable = 0

// Term is a ring coefficient times a wire.
type Term struct {
	Coeff polyring.Poly
	Var   Variable
}

// LinearCombination is a sum of terms.
// A wire may appear more than once.
type LinearCombination []Term

// Builder builds an [Instance] constraint by constraint.
type Builder struct {
	ring     *polyring.Ring
	numWires int

	a, b, c []LinearCombination
}

// NewBuilder creates a new Builder with only the constant wire.
func NewBuilder(ring *polyring.Ring) *Builder {
	return &Builder{
		ring:     ring,
		numWires: 1,
	}
}

// NewVariable allocates a new wire.
func (bd *Builder) NewVariable() Variable {
	bd.numWires++
	return Variable(bd.numWires - 1)
}

// NumWires returns the number of allocated wires, including the constant wire.
func (bd *Builder) NumWires() int {
	return bd.numWires
}

// Term returns the term coeff * v with an integer coefficient.
func (bd *Builder) Term(coeff int64, v Variable) Term {
	return Term{Coeff: bd.ring.NewPolyFromInt64([]int64{coeff}), Var: v}
}

// Terms returns the linear combination v_0 + v_1 + ... with unit coefficients.
func (bd *Builder) Terms(vs ...Variable) LinearCombination {
	lc := make(LinearCombination, len(vs))
	for i, v := range vs {
		lc[i] = bd.Term(1, v)
	}
	return lc
}

// AddConstraint adds the constraint a * b = c.
func (bd *Builder) AddConstraint(a, b, c LinearCombination) {
	bd.a = append(bd.a, a)
	bd.b = append(bd.b, b)
	bd.c = append(bd.c, c)
}

// AddMul adds the constraint x * y = z.
func (bd *Builder) AddMul(x, y, z Variable) {
	bd.AddConstraint(bd.Terms(x), bd.Terms(y), bd.Terms(z))
}

// dense returns lc as a dense row.
// Wires outside the builder make it return false.
func (bd *Builder) dense(lc LinearCombination) ([]polyring.Poly, bool) {
	row := bd.ring.NewVector(bd.numWires)
	for _, t := range lc {
		if t.Var < 0 || int(t.Var) >= bd.numWires {
			return nil, false
		}
		bd.ring.AddAssign(row[t.Var], t.Coeff, row[t.Var])
	}
	return row, true
}

// Build returns the instance of the added constraints.
func (bd *Builder) Build() (*Instance, error) {
	k := len(bd.a)
	a, b, c := make([][]polyring.Poly, k), make([][]polyring.Poly, k), make([][]polyring.Poly, k)
	for i := 0; i < k; i++ {
		var okA, okB, okC bool
		a[i], okA = bd.dense(bd.a[i])
		b[i], okB = bd.dense(bd.b[i])
		c[i], okC = bd.dense(bd.c[i])
		if !(okA && okB && okC) {
			return nil, fmt.Errorf("%w: constraint %d uses an unknown wire", ErrMalformed, i)
		}
	}
	return NewInstance(bd.numWires, a, b, c)
}

// Circuit is a constraint system defined in code.
type Circuit interface {
	// Define adds the constraints of the circuit to bd.
	Define(bd *Builder)
}

// Compile builds the instance of c over ring.
func Compile(ring *polyring.Ring, c Circuit) (*Instance, error) {
	bd := NewBuilder(ring)
	c.Define(bd)
	return bd.Build()
}
