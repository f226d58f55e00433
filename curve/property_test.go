// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package curve

import (
	"math/big"
	"testing"

	secp "github.com/decred/dcrd/dcrec/secp256k1/v4"
	"pgregory.net/rapid"
)

// genScalar draws a random scalar in [1, n-1].
func genScalar(t *rapid.T, label string) *big.Int {
	buf := rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, label)
	k := new(big.Int).SetBytes(buf)
	k.Mod(k, new(big.Int).Sub(S256().N, big.NewInt(1)))
	return k.Add(k, big.NewInt(1))
}

// genPoint draws a random on-curve point by asking the reference
// implementation for a generator multiple, returning the scalar alongside.
// Using the reference here keeps the generators independent of the
// arithmetic under test.
func genPoint(t *rapid.T, label string) (*big.Int, *Point) {
	k := genScalar(t, label)
	x, y := secp.S256().ScalarBaseMult(k.Bytes())
	p, err := S256().NewPoint(x, y)
	if err != nil {
		t.Fatalf("reference produced a point that fails validation: %v",
			err)
	}
	return k, p
}

// TestPropertyMultiplyMatchesReference verifies scalar multiplication
// against the reference implementation, both from the generator and from
// arbitrary base points.
func TestPropertyMultiplyMatchesReference(t *testing.T) {
	c := S256()
	rapid.Check(t, func(t *rapid.T) {
		k := genScalar(t, "k")
		wantX, wantY := secp.S256().ScalarBaseMult(k.Bytes())
		got, err := c.Multiply(k, c.Generator())
		if err != nil {
			t.Fatalf("Multiply(k, G): %v", err)
		}
		if got.Infinity || got.X.Cmp(wantX) != 0 || got.Y.Cmp(wantY) != 0 {
			t.Fatalf("Multiply(k, G) mismatch: got %v, want (%x, %x)",
				got, wantX, wantY)
		}

		_, base := genPoint(t, "base")
		m := genScalar(t, "m")
		wantX, wantY = secp.S256().ScalarMult(base.X, base.Y, m.Bytes())
		got, err = c.Multiply(m, base)
		if err != nil {
			t.Fatalf("Multiply(m, P): %v", err)
		}
		if got.Infinity || got.X.Cmp(wantX) != 0 || got.Y.Cmp(wantY) != 0 {
			t.Fatalf("Multiply(m, P) mismatch: got %v, want (%x, %x)",
				got, wantX, wantY)
		}
	})
}

// TestPropertyAddMatchesReference verifies point addition against the
// reference implementation for random operand pairs.
func TestPropertyAddMatchesReference(t *testing.T) {
	c := S256()
	rapid.Check(t, func(t *rapid.T) {
		k1, p := genPoint(t, "p")
		k2, q := genPoint(t, "q")

		// The reference represents infinity as (0, 0); skip the one
		// scalar pairing that sums there.
		sum := new(big.Int).Add(k1, k2)
		if sum.Mod(sum, c.N).Sign() == 0 {
			t.Skip("operands sum to infinity")
		}

		wantX, wantY := secp.S256().Add(p.X, p.Y, q.X, q.Y)
		got, err := c.Add(p, q)
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		if got.Infinity || got.X.Cmp(wantX) != 0 || got.Y.Cmp(wantY) != 0 {
			t.Fatalf("Add mismatch: got %v, want (%x, %x)", got,
				wantX, wantY)
		}
	})
}

// TestPropertyDoubleEqualsAdd verifies that multiplying by two, doubling,
// and self-addition all land on the same point.
func TestPropertyDoubleEqualsAdd(t *testing.T) {
	c := S256()
	rapid.Check(t, func(t *rapid.T) {
		_, p := genPoint(t, "p")

		viaAdd, err := c.Add(p, p)
		if err != nil {
			t.Fatalf("Add(P, P): %v", err)
		}
		viaDouble, err := c.Double(p)
		if err != nil {
			t.Fatalf("Double(P): %v", err)
		}
		viaMultiply, err := c.Multiply(big.NewInt(2), p)
		if err != nil {
			t.Fatalf("Multiply(2, P): %v", err)
		}
		if !viaAdd.Equal(viaDouble) || !viaAdd.Equal(viaMultiply) {
			t.Fatalf("2P disagreement: add %v, double %v, multiply %v",
				viaAdd, viaDouble, viaMultiply)
		}
	})
}

// TestPropertyAddNegate verifies P + (-P) lands on the point at infinity
// and that negation is self-inverse.
func TestPropertyAddNegate(t *testing.T) {
	c := S256()
	rapid.Check(t, func(t *rapid.T) {
		_, p := genPoint(t, "p")

		neg, err := c.Negate(p)
		if err != nil {
			t.Fatalf("Negate: %v", err)
		}
		sum, err := c.Add(p, neg)
		if err != nil {
			t.Fatalf("Add(P, -P): %v", err)
		}
		if !sum.Infinity {
			t.Fatalf("P + (-P) = %v, want infinity", sum)
		}

		back, err := c.Negate(neg)
		if err != nil {
			t.Fatalf("Negate(-P): %v", err)
		}
		if !back.Equal(p) {
			t.Fatalf("Negate(Negate(P)) = %v, want %v", back, p)
		}
	})
}

// TestPropertyDivideInvertsMultiply verifies that dividing by k undoes
// multiplying by k for any nonzero scalar.
func TestPropertyDivideInvertsMultiply(t *testing.T) {
	c := S256()
	rapid.Check(t, func(t *rapid.T) {
		_, p := genPoint(t, "p")
		k := genScalar(t, "k")

		kp, err := c.Multiply(k, p)
		if err != nil {
			t.Fatalf("Multiply: %v", err)
		}
		back, err := c.Divide(k, kp)
		if err != nil {
			t.Fatalf("Divide: %v", err)
		}
		if !back.Equal(p) {
			t.Fatalf("Divide(k, k*P) = %v, want %v", back, p)
		}
	})
}

// TestPropertyScalarHomomorphism verifies that adding points mirrors adding
// their scalars, the identity the derivation engine depends on.
func TestPropertyScalarHomomorphism(t *testing.T) {
	c := S256()
	rapid.Check(t, func(t *rapid.T) {
		k1, p := genPoint(t, "p")
		k2, q := genPoint(t, "q")

		sumScalar := new(big.Int).Add(k1, k2)
		sumScalar.Mod(sumScalar, c.N)

		viaPoints, err := c.Add(p, q)
		if err != nil {
			t.Fatalf("Add: %v", err)
		}
		viaScalars, err := c.Multiply(sumScalar, c.Generator())
		if err != nil {
			t.Fatalf("Multiply: %v", err)
		}
		if !viaPoints.Equal(viaScalars) {
			t.Fatalf("(k1+k2)*G = %v but k1*G + k2*G = %v",
				viaScalars, viaPoints)
		}
	})
}

// TestPropertySerializeRoundTrip verifies both serialized forms round-trip
// through ParsePoint for random points.
func TestPropertySerializeRoundTrip(t *testing.T) {
	c := S256()
	rapid.Check(t, func(t *rapid.T) {
		_, p := genPoint(t, "p")

		compressed, err := c.SerializeCompressed(p)
		if err != nil {
			t.Fatalf("SerializeCompressed: %v", err)
		}
		if compressed[0] != 0x02 && compressed[0] != 0x03 {
			t.Fatalf("compressed prefix 0x%02x", compressed[0])
		}
		back, err := c.ParsePoint(compressed)
		if err != nil {
			t.Fatalf("ParsePoint(compressed): %v", err)
		}
		if !back.Equal(p) {
			t.Fatalf("compressed round trip: got %v, want %v", back, p)
		}

		uncompressed, err := c.SerializeUncompressed(p)
		if err != nil {
			t.Fatalf("SerializeUncompressed: %v", err)
		}
		back, err = c.ParsePoint(uncompressed)
		if err != nil {
			t.Fatalf("ParsePoint(uncompressed): %v", err)
		}
		if !back.Equal(p) {
			t.Fatalf("uncompressed round trip: got %v, want %v", back, p)
		}
	})
}

// TestPropertyModInverseMatchesReference verifies the extended Euclidean
// inverse against the standard library for scalars modulo the group order.
func TestPropertyModInverseMatchesReference(t *testing.T) {
	c := S256()
	rapid.Check(t, func(t *rapid.T) {
		a := genScalar(t, "a")

		got, err := ModInverse(a, c.N)
		if err != nil {
			t.Fatalf("ModInverse: %v", err)
		}
		want := new(big.Int).ModInverse(a, c.N)
		if want == nil || got.Cmp(want) != 0 {
			t.Fatalf("ModInverse(a, n) = %v, want %v", got, want)
		}

		product := new(big.Int).Mul(a, got)
		product.Mod(product, c.N)
		if product.Cmp(big.NewInt(1)) != 0 {
			t.Fatalf("a * ModInverse(a, n) = %v, want 1", product)
		}
	})
}
