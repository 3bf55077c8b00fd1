package principal

import (
	"fmt"

	"github.com/sp301415/ringo-labrador/polyring"
	"github.com/tuneinsight/lattigo/v6/utils/buffer"
)

const headerSize = 5 * 8

func (f form) binarySize() int {
	size := 8 + f.r*f.n*f.degree*8
	if f.quadratic {
		size += polyring.PackedSize(f.r) * f.degree * 8
	}
	return size
}

// degree returns the ring degree of x, or 0 if x has no constraints.
func (x *Instance) degree() int {
	if len(x.constraints) > 0 {
		return x.constraints[0].degree
	}
	if len(x.constantConstraints) > 0 {
		return x.constantConstraints[0].degree
	}
	return 0
}

// BinarySize returns the size of the binary encoding of x in bytes.
func (x *Instance) BinarySize() int {
	size := headerSize
	for _, c := range x.constraints {
		size += c.binarySize() + c.degree*8
	}
	for _, c := range x.constantConstraints {
		size += c.binarySize() + 8
	}
	return size
}

// MarshalBinary encodes x. Every integer is written as a little endian uint64.
func (x *Instance) MarshalBinary() ([]byte, error) {
	buf := buffer.NewBufferSize(x.BinarySize())

	header := []uint64{
		uint64(x.r), uint64(x.n), uint64(x.degree()),
		uint64(len(x.constraints)), uint64(len(x.constantConstraints)),
	}
	if _, err := buffer.WriteUint64Slice(buf, header); err != nil {
		return nil, err
	}

	for _, c := range x.constraints {
		if err := c.form.writeTo(buf); err != nil {
			return nil, err
		}
		if _, err := buffer.WriteUint64Slice(buf, c.b.Coeffs); err != nil {
			return nil, err
		}
	}
	for _, c := range x.constantConstraints {
		if err := c.form.writeTo(buf); err != nil {
			return nil, err
		}
		if _, err := buffer.WriteUint64(buf, c.b); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func (f form) writeTo(w buffer.Writer) error {
	var flag uint64
	if f.quadratic {
		flag = 1
	}
	if _, err := buffer.WriteUint64(w, flag); err != nil {
		return err
	}

	if f.quadratic {
		for _, aij := range f.a.Packed() {
			if _, err := buffer.WriteUint64Slice(w, aij.Coeffs); err != nil {
				return err
			}
		}
	}

	for i := range f.phi {
		for k := range f.phi[i] {
			if _, err := buffer.WriteUint64Slice(w, f.phi[i][k].Coeffs); err != nil {
				return err
			}
		}
	}
	return nil
}

// decoder reads uint64 values, checking the remaining length first.
type decoder struct {
	r *buffer.Buffer
}

func (dec decoder) uint64s(c []uint64) error {
	if dec.r.Size() < 8*len(c) {
		return fmt.Errorf("%w: unexpected end of data", ErrMalformed)
	}
	_, err := buffer.ReadUint64Slice(dec.r, c)
	return err
}

// fits reports whether count * degree words remain, without overflowing.
func (dec decoder) fits(count, degree int) bool {
	if count < 0 || degree < 0 {
		return false
	}
	if count == 0 || degree == 0 {
		return true
	}
	words := dec.r.Size() / 8
	return count <= words && degree <= words/count
}

func (dec decoder) polys(count, degree int) ([]polyring.Poly, error) {
	if !dec.fits(count, degree) {
		return nil, fmt.Errorf("%w: unexpected end of data", ErrMalformed)
	}
	ps := make([]polyring.Poly, count)
	for i := range ps {
		ps[i] = polyring.NewPoly(degree)
		if err := dec.uint64s(ps[i].Coeffs); err != nil {
			return nil, err
		}
	}
	return ps, nil
}

func (dec decoder) form(r, n, degree int) (*polyring.SymmetricMatrix[polyring.Poly], [][]polyring.Poly, error) {
	var flag [1]uint64
	if err := dec.uint64s(flag[:]); err != nil {
		return nil, nil, err
	}

	var a *polyring.SymmetricMatrix[polyring.Poly]
	switch flag[0] {
	case 0:
	case 1:
		packed, err := dec.polys(polyring.PackedSize(r), degree)
		if err != nil {
			return nil, nil, err
		}
		m, err := polyring.NewSymmetricMatrixFromPacked(r, packed)
		if err != nil {
			return nil, nil, err
		}
		a = &m
	default:
		return nil, nil, fmt.Errorf("%w: invalid quadratic flag %d", ErrMalformed, flag[0])
	}

	phi := make([][]polyring.Poly, r)
	for i := range phi {
		var err error
		if phi[i], err = dec.polys(n, degree); err != nil {
			return nil, nil, err
		}
	}
	return a, phi, nil
}

// UnmarshalBinary decodes data into x, checking the shape of every constraint.
func (x *Instance) UnmarshalBinary(data []byte) error {
	dec := decoder{r: buffer.NewBuffer(data)}

	var header [5]uint64
	if err := dec.uint64s(header[:]); err != nil {
		return err
	}
	r, n, degree := int(header[0]), int(header[1]), int(header[2])
	numConstraints, numConstantConstraints := int(header[3]), int(header[4])

	if r < 1 || n < 1 || degree < 0 || numConstraints < 0 || numConstantConstraints < 0 {
		return fmt.Errorf("%w: invalid header", ErrMalformed)
	}
	if (numConstraints > 0 || numConstantConstraints > 0) && degree < 1 {
		return fmt.Errorf("%w: invalid degree %d", ErrMalformed, degree)
	}
	// Every constraint takes at least r*n*d coefficients.
	if numConstraints > 0 || numConstantConstraints > 0 {
		remaining := dec.r.Size() / 8
		if numConstraints > remaining || numConstantConstraints > remaining || !dec.fits(r, n) || !dec.fits(r*n, degree) {
			return fmt.Errorf("%w: unexpected end of data", ErrMalformed)
		}
	}

	constraints := make([]*QuadDotProdFunction, numConstraints)
	for i := range constraints {
		a, phi, err := dec.form(r, n, degree)
		if err != nil {
			return err
		}
		b, err := dec.polys(1, degree)
		if err != nil {
			return err
		}
		if constraints[i], err = newQuadDotProdFunction(a, phi, b[0]); err != nil {
			return err
		}
	}

	constantConstraints := make([]*ConstantQuadDotProdFunction, numConstantConstraints)
	for i := range constantConstraints {
		a, phi, err := dec.form(r, n, degree)
		if err != nil {
			return err
		}
		var b [1]uint64
		if err := dec.uint64s(b[:]); err != nil {
			return err
		}
		f, err := newForm(a, phi)
		if err != nil {
			return err
		}
		constantConstraints[i] = &ConstantQuadDotProdFunction{form: f, b: b[0]}
	}

	if dec.r.Size() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrMalformed, dec.r.Size())
	}

	decoded, err := NewInstance(r, n, constraints, constantConstraints)
	if err != nil {
		return err
	}
	*x = *decoded
	return nil
}
