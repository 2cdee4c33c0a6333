// Package field implements arithmetic over GF(2^448 - 2^224 - 1), the prime
// field underlying the Ed448-Goldilocks curve used by RFC 8032's Ed448
// signature scheme.
package field

import (
	"crypto/subtle"
	"math/big"
)

// Element is a field element, always held in its canonical, reduced
// little-endian byte encoding. Unlike a limb-based field type, Element
// does all arithmetic through math/big.Int internally and only keeps the
// reduced byte encoding between calls, so the zero value is a valid zero
// element and Element is safe to copy with plain assignment: Point, which
// embeds three Elements and copies itself with `*v = *u`, depends on that.
//
// TODO: this is not a constant-time implementation; every operation goes
// through math/big, whose running time depends on operand size.
type Element struct {
	v [56]byte
}

var fieldOrder *big.Int

func init() {
	// p = 2^448 - 2^224 - 1
	p := new(big.Int).Lsh(big.NewInt(1), 448)
	t := new(big.Int).Lsh(big.NewInt(1), 224)
	p.Sub(p, t)
	p.Sub(p, big.NewInt(1))
	fieldOrder = p
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// toInt returns the value of e as a non-negative math/big integer.
func (e *Element) toInt() *big.Int {
	var buf [56]byte
	copy(buf[:], e.v[:])
	reverse(buf[:])
	return new(big.Int).SetBytes(buf[:])
}

// setInt reduces x modulo the field order and stores the result in e.
func (e *Element) setInt(x *big.Int) *Element {
	r := new(big.Int).Mod(x, fieldOrder)
	var buf [56]byte
	r.FillBytes(buf[:])
	reverse(buf[:])
	e.v = buf
	return e
}

// Zero sets e = 0 and returns e.
func (e *Element) Zero() *Element {
	e.v = [56]byte{}
	return e
}

// One sets e = 1 and returns e.
func (e *Element) One() *Element {
	e.v = [56]byte{}
	e.v[0] = 1
	return e
}

// Set sets e = x and returns e.
func (e *Element) Set(x *Element) *Element {
	e.v = x.v
	return e
}

// SetString sets e to the value of s, a base-10 integer literal, reduced
// modulo the field order, and returns e. It panics if s is not a valid
// base-10 integer, mirroring the teacher package's use of big.Int.SetString
// for the analogous Scalar group order constant.
func (e *Element) SetString(s string) *Element {
	x, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("field: invalid decimal integer: " + s)
	}
	return e.setInt(x)
}

// SetBytes sets e to the value of data interpreted as a little-endian
// integer, reduced modulo the field order, and returns e.
func (e *Element) SetBytes(data []byte) *Element {
	buf := make([]byte, len(data))
	copy(buf, data)
	reverse(buf)
	return e.setInt(new(big.Int).SetBytes(buf))
}

// Bytes returns the canonical 56-byte little-endian encoding of e.
func (e *Element) Bytes() []byte {
	out := make([]byte, 56)
	copy(out, e.v[:])
	return out
}

// Add sets e = x + y and returns e.
func (e *Element) Add(x, y *Element) *Element {
	return e.setInt(new(big.Int).Add(x.toInt(), y.toInt()))
}

// Sub sets e = x - y and returns e.
func (e *Element) Sub(x, y *Element) *Element {
	return e.setInt(new(big.Int).Sub(x.toInt(), y.toInt()))
}

// Mul sets e = x * y and returns e.
func (e *Element) Mul(x, y *Element) *Element {
	return e.setInt(new(big.Int).Mul(x.toInt(), y.toInt()))
}

// Square sets e = x * x and returns e.
func (e *Element) Square(x *Element) *Element {
	xi := x.toInt()
	return e.setInt(new(big.Int).Mul(xi, xi))
}

// Negate sets e = -x and returns e.
func (e *Element) Negate(x *Element) *Element {
	return e.setInt(new(big.Int).Neg(x.toInt()))
}

// Inv sets e = 1/x and returns e. The behavior is undefined if x = 0.
func (e *Element) Inv(x *Element) *Element {
	exp := new(big.Int).Sub(fieldOrder, big.NewInt(2))
	return e.setInt(new(big.Int).Exp(x.toInt(), exp, fieldOrder))
}

// Select sets e = x if cond == 1, or e = y if cond == 0.
func (e *Element) Select(x, y *Element, cond int) *Element {
	// TODO: branches on cond instead of running in constant time.
	if cond != 0 {
		e.v = x.v
	} else {
		e.v = y.v
	}
	return e
}

// Equal returns 1 if e == x, and 0 otherwise.
func (e *Element) Equal(x *Element) int {
	return subtle.ConstantTimeCompare(e.v[:], x.v[:])
}

// IsNegative returns 1 if the least-significant bit of the canonical
// encoding of e is set, and 0 otherwise. This is the sign convention RFC
// 8032, Section 5.2.3 uses for the x-coordinate of a curve point.
func (e *Element) IsNegative() int {
	return int(e.v[0] & 1)
}

// SqrtRatio sets e to a square root of u/v and returns (e, 1) if u/v is a
// square in the field. Otherwise it sets e to an unspecified value and
// returns (e, 0).
//
// The field order for Ed448 is 3 mod 4, so unlike edwards25519's field
// (which is 5 mod 8 and needs a correction step involving sqrt(-1)),
// a single exponentiation by (p+1)/4 already yields the square root when
// one exists: RFC 8032, Section 5.2.3, describes exactly this candidate
// root for decoding an Ed448 point.
func (e *Element) SqrtRatio(u, v *Element) (*Element, int) {
	var vInv, t Element
	vInv.Inv(v)
	t.Mul(u, &vInv)

	exp := new(big.Int).Add(fieldOrder, big.NewInt(1))
	exp.Rsh(exp, 2)
	e.setInt(new(big.Int).Exp(t.toInt(), exp, fieldOrder))

	var check Element
	check.Square(e)
	return e, check.Equal(&t)
}
