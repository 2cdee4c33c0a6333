package edwards448

import (
	"errors"

	"github.com/jwengine/jwengine/internal/edwards448/field"
)

var feOne, feD field.Element

// generatorX and generatorY are the coordinates of the Ed448 base point B,
// as given in RFC 8032, Section 5.2.1. NewGeneratorPoint verifies them
// against the curve equation before use and panics if they don't hold.
var generatorX, generatorY field.Element

func init() {
	feOne.One()

	// D
	d := [56]byte{
		0x56, 0x67, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xfe, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	}
	feD.SetBytes(d[:])

	generatorX.SetString("224580040295924300187604334099896036246789641632564134246125461686950415467406032909029192869357953282578032075146446173674602635247710")
	generatorY.SetString("298819210078481492676017930443930673437544040154080242095928241372331506189835876003536878655418784733982303233503462500531545062832660")
}

// isOnCurve reports whether (x, y) satisfies the Ed448 curve equation
// x^2 + y^2 = 1 + d*x^2*y^2.
func isOnCurve(x, y *field.Element) bool {
	var x2, y2, lhs, rhs, dx2y2 field.Element
	x2.Square(x)
	y2.Square(y)
	lhs.Add(&y2, &x2)
	dx2y2.Mul(&x2, &y2)
	dx2y2.Mul(&dx2y2, &feD)
	rhs.Add(&feOne, &dx2y2)
	return lhs.Equal(&rhs) == 1
}

// Point represents a point on the Ed448-Goldilocks curve.
//
// This type works similarly to math/big.Int, and all arguments and receivers
// are allowed to alias.
//
// The zero value is NOT valid, and it may be used only as a receiver.
type Point struct {
	// The point is internally represented in projective coordinates (X, Y, Z)
	// where x = X/Z, y = Y/Z.
	x, y, z field.Element

	// Make the type not comparable (i.e. used with == or as a map key), as
	// equivalent points can be represented by different Go values.
	_ incomparable
}

type incomparable [0]func()

func checkInitialized(points ...*Point) {
	for _, p := range points {
		if p.x == (field.Element{}) && p.y == (field.Element{}) {
			panic("edwards448: use of uninitialized Point")
		}
	}
}

// Set sets v = u, and returns v.
func (v *Point) Set(u *Point) *Point {
	*v = *u
	return v
}

func (v *Point) Zero() *Point {
	v.x.Zero()
	v.y.One()
	v.z.One()
	return v
}

// NewIdentityPoint returns a new Point set to the identity element.
func NewIdentityPoint() *Point {
	return new(Point).Zero()
}

// NewGeneratorPoint returns a new Point set to the canonical generator B.
//
// It panics if the hardcoded generator coordinates do not satisfy the curve
// equation, the same invariant-violation-is-a-bug posture checkInitialized
// takes for a zero Point. This check cannot run at package init time: doing
// so would make an invalid constant crash every program that imports this
// package, not just the ones that use Ed448.
func NewGeneratorPoint() *Point {
	if !isOnCurve(&generatorX, &generatorY) {
		panic("edwards448: generator point does not satisfy the curve equation")
	}
	var p Point
	p.x.Set(&generatorX)
	p.y.Set(&generatorY)
	p.z.One()
	return &p
}

// Encoding.

// Bytes returns the canonical 57-byte encoding of v, according to RFC 8032,
// Section 5.2.2.
func (v *Point) Bytes() []byte {
	// This function is outlined to make the allocations inline in the caller
	// rather than happen on the heap.
	var buf [57]byte
	return v.bytes(&buf)
}

func (v *Point) bytes(buf *[57]byte) []byte {
	checkInitialized(v)

	var zInv, x, y field.Element
	zInv.Inv(&v.z)     // zInv = 1 / Z
	x.Mul(&v.x, &zInv) // x = X / Z
	y.Mul(&v.y, &zInv) // y = Y / Z

	out := copyFieldElement(buf, &y)
	out[56] |= byte(x.IsNegative() << 7)
	return out
}

func (v *Point) SetBytes(data []byte) (*Point, error) {
	if len(data) != 57 {
		return nil, errors.New("edwards448: invalid point encoding length")
	}

	var y field.Element
	y.SetBytes(data[:56])

	// x² + y² = 1 + dx²y²
	// dx²y² - x² = x²(dy² - 1) = y² - 1
	// x² = (y² - 1) / (dy² - 1)

	// u = y² - 1
	var u, y2 field.Element
	y2.Square(&y)
	u.Sub(&y2, &feOne)

	// v = dy² - 1
	var vv field.Element
	vv.Mul(&y2, &feD)
	vv.Sub(&vv, &feOne)

	// x = +√(u/v)
	var x field.Element
	_, wasSquare := x.SqrtRatio(&u, &vv)

	// Select the negative square root if the sign bit is set.
	var xNeg field.Element
	xNeg.Negate(&x)
	x.Select(&xNeg, &x, x.IsNegative()^int(data[56]>>7))

	if wasSquare == 0 {
		return nil, errors.New("edwards448: invalid point encoding")
	}

	v.x.Set(&x)
	v.y.Set(&y)
	v.z.One()
	return v, nil
}

// Conversions.

func copyFieldElement(buf *[57]byte, v *field.Element) []byte {
	copy(buf[:56], v.Bytes())
	return buf[:]
}

// Equal returns 1 if v is equivalent to u, and 0 otherwise.
func (v *Point) Equal(u *Point) int {
	checkInitialized(v, u)

	var x1, y1, x2, y2 field.Element
	x1.Mul(&v.x, &u.z)
	y1.Mul(&v.y, &u.z)
	x2.Mul(&u.x, &v.z)
	y2.Mul(&u.y, &v.z)
	return x1.Equal(&x2) & y1.Equal(&y2)
}

// Add sets v = p + q, and returns v. The addition law used is complete, so
// it is also correct (and used by Double) when p and q are the same point.
func (v *Point) Add(p, q *Point) *Point {
	checkInitialized(p, q)

	var a, b, c, d, e, f, g, h, x, y, z field.Element
	var tmp1, tmp2 field.Element

	// A = Z1*Z2
	a.Mul(&p.z, &q.z)

	// B = A^2
	b.Square(&a)

	// C = X1*X2
	c.Mul(&p.x, &q.x)

	// D = Y1*Y2
	d.Mul(&p.y, &q.y)

	// E = d*C*D
	tmp1.Mul(&feD, &c)
	e.Mul(&tmp1, &d)

	// F = B-E
	f.Sub(&b, &e)

	// G = B+E
	g.Add(&b, &e)

	// H = (X1+Y1)*(X2+Y2)
	tmp1.Add(&p.x, &p.y)
	tmp2.Add(&q.x, &q.y)
	h.Mul(&tmp1, &tmp2)

	// X3 = A*F*(H-C-D)
	x.Sub(&h, &c)
	x.Sub(&x, &d)
	x.Mul(&x, &a)
	x.Mul(&x, &f)

	// Y3 = A*G*(D-C)
	y.Sub(&d, &c)
	y.Mul(&y, &g)
	y.Mul(&y, &a)

	// Z3 = F*G
	z.Mul(&f, &g)

	v.x.Set(&x)
	v.y.Set(&y)
	v.z.Set(&z)
	return v
}

// Double sets v = p + p, and returns v.
func (v *Point) Double(p *Point) *Point {
	return v.Add(p, p)
}

// Negate sets v = -p, and returns v. Negating an Edwards point flips the
// sign of its x-coordinate.
func (v *Point) Negate(p *Point) *Point {
	checkInitialized(p)
	v.x.Negate(&p.x)
	v.y.Set(&p.y)
	v.z.Set(&p.z)
	return v
}

// Select sets v to a if cond == 1, and to b if cond == 0, and returns v.
func (v *Point) Select(a, b *Point, cond int) *Point {
	v.x.Select(&a.x, &b.x, cond)
	v.y.Select(&a.y, &b.y, cond)
	v.z.Select(&a.z, &b.z, cond)
	return v
}

// CondNeg sets v = -v if cond == 1, and leaves v unchanged if cond == 0.
func (v *Point) CondNeg(cond int) *Point {
	var negX field.Element
	negX.Negate(&v.x)
	v.x.Select(&negX, &v.x, cond)
	return v
}
