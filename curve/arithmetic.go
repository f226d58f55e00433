// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package curve

import (
	"math/big"
)

var (
	one   = new(big.Int).SetInt64(1)
	three = new(big.Int).SetInt64(3)
)

// Add returns the sum p + q under the affine group law.  Adding the point
// at infinity returns the other operand, and adding a point to its own
// negation returns the point at infinity.  Either operand failing
// validation returns ErrInvalidPoint.
func (c *Params) Add(p, q *Point) (*Point, error) {
	if err := c.validatePoint(p); err != nil {
		return nil, err
	}
	if err := c.validatePoint(q); err != nil {
		return nil, err
	}
	return c.add(p, q), nil
}

// Double returns 2*p.  It is shorthand for Add(p, p).
func (c *Params) Double(p *Point) (*Point, error) {
	return c.Add(p, p)
}

// Negate returns -p, the reflection of p across the x axis.  Negating the
// point at infinity returns the point at infinity.
func (c *Params) Negate(p *Point) (*Point, error) {
	if err := c.validatePoint(p); err != nil {
		return nil, err
	}
	return c.negate(p), nil
}

// Subtract returns p - q, which is p + (-q).
func (c *Params) Subtract(p, q *Point) (*Point, error) {
	if err := c.validatePoint(p); err != nil {
		return nil, err
	}
	if err := c.validatePoint(q); err != nil {
		return nil, err
	}
	return c.add(p, c.negate(q)), nil
}

// Multiply returns k*p computed by double-and-add over k reduced modulo the
// group order.  Multiplying by zero yields the point at infinity, which is
// a well-defined result rather than an error.  The loop always scans the
// full scalar width so the running time depends on the curve size, not on
// the operand's bit pattern.
func (c *Params) Multiply(k *big.Int, p *Point) (*Point, error) {
	if k == nil {
		return nil, makeError(ErrInvalidOperand, "scalar must not be nil")
	}
	if err := c.validatePoint(p); err != nil {
		return nil, err
	}

	kRed := new(big.Int).Mod(k, c.N)
	result := PointAtInfinity()
	for i := c.BitSize - 1; i >= 0; i-- {
		result = c.double(result)
		if kRed.Bit(i) == 1 {
			result = c.add(result, p)
		}
	}
	return result, nil
}

// Divide returns (1/k)*p where the inverse of k is taken modulo the group
// order.  A k that is a multiple of the group order has no inverse and
// fails with ErrInvalidOperand rather than silently producing a wrong
// point.
func (c *Params) Divide(k *big.Int, p *Point) (*Point, error) {
	if k == nil {
		return nil, makeError(ErrInvalidOperand, "scalar must not be nil")
	}
	if err := c.validatePoint(p); err != nil {
		return nil, err
	}

	kRed := new(big.Int).Mod(k, c.N)
	if kRed.Sign() == 0 {
		return nil, makeError(ErrInvalidOperand, "scalar is a multiple "+
			"of the group order and has no inverse")
	}
	kInv, err := ModInverse(kRed, c.N)
	if err != nil {
		return nil, err
	}
	return c.Multiply(kInv, p)
}

// ModInverse returns the multiplicative inverse of a modulo m, computed
// with the extended Euclidean algorithm.  An inverse exists exactly when
// gcd(a, m) == 1; otherwise ErrInvalidOperand is returned.  The result is
// normalized into [0, m).
func ModInverse(a, m *big.Int) (*big.Int, error) {
	if a == nil || m == nil || m.Sign() <= 0 {
		return nil, makeError(ErrInvalidOperand, "modular inverse "+
			"requires a value and a positive modulus")
	}

	r := new(big.Int).Set(m)
	newR := new(big.Int).Mod(a, m)
	t := new(big.Int)
	newT := new(big.Int).SetInt64(1)
	for newR.Sign() != 0 {
		q := new(big.Int).Div(r, newR)

		nextT := new(big.Int).Sub(t, new(big.Int).Mul(q, newT))
		t, newT = newT, nextT

		nextR := new(big.Int).Sub(r, new(big.Int).Mul(q, newR))
		r, newR = newR, nextR
	}
	if r.Cmp(one) > 0 {
		return nil, makeError(ErrInvalidOperand, "value has no inverse "+
			"for the given modulus")
	}
	return t.Mod(t, m), nil
}

// add computes p + q without validating the operands.  Callers must have
// validated both points already.
func (c *Params) add(p, q *Point) *Point {
	if p.Infinity {
		return q.Copy()
	}
	if q.Infinity {
		return p.Copy()
	}

	if p.X.Cmp(q.X) == 0 {
		// Same x means the points are either negations of one
		// another, which sum to infinity, or the same point, which
		// doubles.
		ySum := new(big.Int).Add(p.Y, q.Y)
		ySum.Mod(ySum, c.P)
		if ySum.Sign() == 0 {
			return PointAtInfinity()
		}
		return c.double(p)
	}

	// Chord slope between two distinct points: (y2-y1)/(x2-x1).
	num := new(big.Int).Sub(q.Y, p.Y)
	den := new(big.Int).Sub(q.X, p.X)
	den.Mod(den, c.P)
	lambda := num.Mul(num, c.fieldInverse(den))
	lambda.Mod(lambda, c.P)

	return c.completePoint(p, q, lambda)
}

// double computes 2*p without validating the operand.
func (c *Params) double(p *Point) *Point {
	if p.Infinity {
		return PointAtInfinity()
	}
	if p.Y.Sign() == 0 {
		// A zero y coordinate makes the tangent vertical.  No such
		// point exists on this curve, but the rule is the group law's.
		return PointAtInfinity()
	}

	// Tangent slope: 3x^2 / 2y.
	num := new(big.Int).Mul(p.X, p.X)
	num.Mul(num, three)
	den := new(big.Int).Lsh(p.Y, 1)
	den.Mod(den, c.P)
	lambda := num.Mul(num, c.fieldInverse(den))
	lambda.Mod(lambda, c.P)

	return c.completePoint(p, p, lambda)
}

// completePoint derives the third intersection point from two points and
// the slope of the line through them: x3 = lambda^2 - x1 - x2 and
// y3 = lambda*(x1 - x3) - y1, everything modulo the field prime.
func (c *Params) completePoint(p, q *Point, lambda *big.Int) *Point {
	x3 := new(big.Int).Mul(lambda, lambda)
	x3.Sub(x3, p.X)
	x3.Sub(x3, q.X)
	x3.Mod(x3, c.P)

	y3 := new(big.Int).Sub(p.X, x3)
	y3.Mul(y3, lambda)
	y3.Sub(y3, p.Y)
	y3.Mod(y3, c.P)

	return &Point{X: x3, Y: y3}
}

// negate computes -p without validating the operand.
func (c *Params) negate(p *Point) *Point {
	if p.Infinity {
		return PointAtInfinity()
	}
	negY := new(big.Int).Sub(c.P, p.Y)
	negY.Mod(negY, c.P)
	return &Point{X: new(big.Int).Set(p.X), Y: negY}
}

// fieldInverse returns the inverse of a modulo the field prime.  The value
// is always nonzero at the call sites, so the inverse exists.
func (c *Params) fieldInverse(a *big.Int) *big.Int {
	inv, _ := ModInverse(a, c.P)
	return inv
}
