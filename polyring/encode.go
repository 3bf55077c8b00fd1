package polyring

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrNonCanonical is returned when decoding bytes that do not encode canonical residues.
var ErrNonCanonical = errors.New("non-canonical ring element encoding")

// EncodedSize returns the size in bytes of an encoded polynomial.
func (r *Ring) EncodedSize() int {
	return 8 * r.degree
}

// AppendPoly appends the encoding of p to buf.
// Each coefficient is written as 8 little-endian bytes.
func (r *Ring) AppendPoly(buf []byte, p Poly) []byte {
	for i := 0; i < r.degree; i++ {
		buf = binary.LittleEndian.AppendUint64(buf, p.Coeffs[i])
	}
	return buf
}

// AppendVector appends the encoding of every entry of v to buf.
func (r *Ring) AppendVector(buf []byte, v []Poly) []byte {
	for i := range v {
		buf = r.AppendPoly(buf, v[i])
	}
	return buf
}

// DecodePolyAssign decodes buf into pOut.
func (r *Ring) DecodePolyAssign(buf []byte, pOut Poly) error {
	if len(buf) != r.EncodedSize() {
		return fmt.Errorf("%w: got %d bytes, expected %d", ErrNonCanonical, len(buf), r.EncodedSize())
	}

	for i := 0; i < r.degree; i++ {
		c := binary.LittleEndian.Uint64(buf[8*i:])
		if c >= r.modulus {
			return ErrNonCanonical
		}
		pOut.Coeffs[i] = c
	}
	return nil
}

// DecodeVector decodes n polynomials from buf.
func (r *Ring) DecodeVector(buf []byte, n int) ([]Poly, error) {
	if len(buf) != n*r.EncodedSize() {
		return nil, fmt.Errorf("%w: got %d bytes, expected %d", ErrNonCanonical, len(buf), n*r.EncodedSize())
	}

	v := r.NewVector(n)
	size := r.EncodedSize()
	for i := range v {
		if err := r.DecodePolyAssign(buf[i*size:(i+1)*size], v[i]); err != nil {
			return nil, err
		}
	}
	return v, nil
}
