// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package curve

import (
	"fmt"
	"math/big"
)

// Point is a point on the secp256k1 curve in affine coordinates.  The point
// at infinity, the additive identity of the group, is represented with
// Infinity set; X and Y are only meaningful when Infinity is false.
//
// Points returned by this package never alias their inputs, so callers are
// free to mutate coordinates they own.
type Point struct {
	X, Y     *big.Int
	Infinity bool
}

// PointAtInfinity returns a new point at infinity.
func PointAtInfinity() *Point {
	return &Point{Infinity: true}
}

// NewPoint returns a validated finite point with the given coordinates.
// The coordinates must be in the field range [0, P) and satisfy the curve
// equation, otherwise ErrInvalidPoint is returned.
func (c *Params) NewPoint(x, y *big.Int) (*Point, error) {
	if x == nil || y == nil {
		return nil, makeError(ErrInvalidPoint, "point coordinates must "+
			"not be nil")
	}
	p := &Point{X: new(big.Int).Set(x), Y: new(big.Int).Set(y)}
	if err := c.validatePoint(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Copy returns a deep copy of the point.
func (p *Point) Copy() *Point {
	if p.Infinity {
		return PointAtInfinity()
	}
	return &Point{X: new(big.Int).Set(p.X), Y: new(big.Int).Set(p.Y)}
}

// Equal reports whether p and q represent the same group element.  Two
// points are equal when both are the point at infinity, or both are finite
// with matching coordinates.
func (p *Point) Equal(q *Point) bool {
	if p == nil || q == nil {
		return p == q
	}
	if p.Infinity || q.Infinity {
		return p.Infinity == q.Infinity
	}
	return p.X.Cmp(q.X) == 0 && p.Y.Cmp(q.Y) == 0
}

// String returns the point as a human-readable string.
func (p *Point) String() string {
	if p == nil {
		return "<nil>"
	}
	if p.Infinity {
		return "infinity"
	}
	return fmt.Sprintf("(%064x, %064x)", p.X, p.Y)
}

// IsOnCurve reports whether the affine coordinates (x, y) satisfy the
// curve equation.
func (c *Params) IsOnCurve(x, y *big.Int) bool {
	// y^2 = x^3 + B (mod P)
	y2 := new(big.Int).Mul(y, y)
	y2.Mod(y2, c.P)

	x3 := new(big.Int).Mul(x, x)
	x3.Mul(x3, x)
	x3.Add(x3, c.B)
	x3.Mod(x3, c.P)

	return y2.Cmp(x3) == 0
}

// validatePoint returns ErrInvalidPoint unless p is the point at infinity
// or a finite point with in-range coordinates on the curve.
func (c *Params) validatePoint(p *Point) error {
	if p == nil {
		return makeError(ErrInvalidPoint, "point must not be nil")
	}
	if p.Infinity {
		return nil
	}
	if p.X == nil || p.Y == nil {
		return makeError(ErrInvalidPoint, "point coordinates must not "+
			"be nil")
	}
	if p.X.Sign() < 0 || p.X.Cmp(c.P) >= 0 {
		return makeError(ErrInvalidPoint, "point x coordinate is "+
			"outside the field range")
	}
	if p.Y.Sign() < 0 || p.Y.Cmp(c.P) >= 0 {
		return makeError(ErrInvalidPoint, "point y coordinate is "+
			"outside the field range")
	}
	if !c.IsOnCurve(p.X, p.Y) {
		return makeError(ErrInvalidPoint, "point is not on the curve")
	}
	return nil
}

// isOdd returns whether the passed big integer is odd.
func isOdd(a *big.Int) bool {
	return a.Bit(0) == 1
}
