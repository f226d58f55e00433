// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package curve

import (
	"math/big"
	"sync"
)

// Params houses the secp256k1 domain parameters.  The zero value is not
// usable; obtain the canonical instance via S256.  All fields are treated
// as immutable once initialized, so the single instance is shared by
// reference everywhere a curve is needed and the arithmetic layer carries
// no other state.
type Params struct {
	// P is the prime of the underlying field.
	P *big.Int

	// N is the order of the generator point and therefore the size of
	// the scalar group.  Private keys are integers in [1, N-1].
	N *big.Int

	// B is the constant term of the curve equation y^2 = x^3 + B.
	B *big.Int

	// Gx, Gy are the affine coordinates of the generator point.
	Gx, Gy *big.Int

	// BitSize is the size of the field in bits.
	BitSize int

	// q is the value (P+1)/4 used to compute the square root of field
	// elements when decompressing points.
	q *big.Int
}

var initonce sync.Once
var secp256k1 Params

// initS256 initializes the secp256k1 parameter instance.
func initS256() {
	// Curve parameters taken from [SECG] section 2.4.1.
	secp256k1.P, _ = new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEFFFFFC2F", 16)
	secp256k1.N, _ = new(big.Int).SetString("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141", 16)
	secp256k1.B, _ = new(big.Int).SetString("0000000000000000000000000000000000000000000000000000000000000007", 16)
	secp256k1.Gx, _ = new(big.Int).SetString("79BE667EF9DCBBAC55A06295CE870B07029BFCDB2DCE28D959F2815B16F81798", 16)
	secp256k1.Gy, _ = new(big.Int).SetString("483ADA7726A3C4655DA4FBFC0E1108A8FD17B448A68554199C47D08FFB10D4B8", 16)
	secp256k1.BitSize = 256

	// The field prime is congruent to 3 mod 4, so square roots are a
	// single exponentiation by (P+1)/4.
	secp256k1.q = new(big.Int).Div(new(big.Int).Add(secp256k1.P, one),
		big.NewInt(4))
}

// S256 returns the secp256k1 curve parameters.
func S256() *Params {
	initonce.Do(initS256)
	return &secp256k1
}

// Generator returns the generator point G with freshly allocated
// coordinates, safe for the caller to hold and compare against.
func (c *Params) Generator() *Point {
	return &Point{X: new(big.Int).Set(c.Gx), Y: new(big.Int).Set(c.Gy)}
}
