// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package curve implements the secp256k1 group law in affine coordinates
// over math/big integers.  It exists so the rest of the game can apply
// point operations one algebraic step at a time; it is not a drop-in
// replacement for an optimized signing library and deliberately trades
// speed for directness.
//
// # Operations
//
//   - Add, Double, Negate, Subtract: the affine chord-and-tangent rules
//     with the point at infinity handled as the identity
//   - Multiply: fixed-width double-and-add over the scalar reduced modulo
//     the group order; multiplying by zero yields infinity
//   - Divide: multiplication by the scalar's inverse modulo the group
//     order, failing when no inverse exists
//   - ModInverse: the extended Euclidean algorithm, shared by Divide and
//     by callers that invert operation effects on scalars
//
// # Encoding
//
// ParsePoint accepts the 33-byte compressed and 65-byte uncompressed
// public key forms and always validates the result against the curve
// equation.  SerializeCompressed produces the canonical 33-byte form used
// for point identity throughout the game.  Scalars have fixed-width 32-byte
// and 64-hex-digit forms.
//
// # Errors
//
// Failures carry an ErrorCode of either ErrInvalidPoint or
// ErrInvalidOperand which callers can branch on via IsErrorCode.  A zero
// scalar multiplied into a point is not an error; dividing by one is.
//
// # Example Usage
//
//	c := curve.S256()
//	g := c.Generator()
//	twoG, err := c.Double(g)
//	if err != nil {
//		// Handle error
//	}
//	pub, err := c.SerializeCompressed(twoG)
package curve
