// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package curve

import (
	"math/big"
	"testing"
)

// fromHex converts the passed hex string into a big integer and will panic
// if there is an error.  This is only provided for the hard-coded constants
// so errors in the source code can be detected.  It will only (and must
// only) be called with hard-coded values.
func fromHex(s string) *big.Int {
	r, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("invalid hex in source file: " + s)
	}
	return r
}

// Affine coordinates of the first few multiples of the generator, used as
// fixed vectors throughout the tests.
var (
	g2x = fromHex("C6047F9441ED7D6D3045406E95C07CD85C778E4B8CEF3CA7ABAC09B95C709EE5")
	g2y = fromHex("1AE168FEA63DC339A3C58419466CEAEEF7F632653266D0E1236431A950CFE52A")
	g3x = fromHex("F9308A019258C31049344F85F89D5229B531C845836F99B08601F113BCE036F9")
	g3y = fromHex("388F7B0F632DE8140FE337E62A37F3566500A99934C2231B6CB9FD7584B8E672")
)

// mustPoint builds a validated point from coordinates and fails the test on
// error.
func mustPoint(t *testing.T, x, y *big.Int) *Point {
	t.Helper()
	p, err := S256().NewPoint(x, y)
	if err != nil {
		t.Fatalf("NewPoint(%x, %x): %v", x, y, err)
	}
	return p
}

func TestGeneratorOnCurve(t *testing.T) {
	c := S256()
	if !c.IsOnCurve(c.Gx, c.Gy) {
		t.Fatal("generator point is not on the curve")
	}
	if c.Generator().X == c.Gx {
		t.Fatal("Generator must not alias the params coordinates")
	}
}

func TestAdd(t *testing.T) {
	c := S256()
	g := c.Generator()
	negG, err := c.Negate(g)
	if err != nil {
		t.Fatalf("Negate: %v", err)
	}

	tests := []struct {
		name string
		p, q *Point
		want *Point
	}{
		{
			name: "G + G doubles to 2G",
			p:    g,
			q:    c.Generator(),
			want: mustPoint(t, g2x, g2y),
		},
		{
			name: "G + 2G = 3G",
			p:    g,
			q:    mustPoint(t, g2x, g2y),
			want: mustPoint(t, g3x, g3y),
		},
		{
			name: "2G + G = 3G",
			p:    mustPoint(t, g2x, g2y),
			q:    g,
			want: mustPoint(t, g3x, g3y),
		},
		{
			name: "G + infinity = G",
			p:    g,
			q:    PointAtInfinity(),
			want: g,
		},
		{
			name: "infinity + G = G",
			p:    PointAtInfinity(),
			q:    g,
			want: g,
		},
		{
			name: "infinity + infinity = infinity",
			p:    PointAtInfinity(),
			q:    PointAtInfinity(),
			want: PointAtInfinity(),
		},
		{
			name: "G + (-G) = infinity",
			p:    g,
			q:    negG,
			want: PointAtInfinity(),
		},
	}
	for _, test := range tests {
		got, err := c.Add(test.p, test.q)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}
		if !got.Equal(test.want) {
			t.Errorf("%s: got %v, want %v", test.name, got,
				test.want)
		}
	}
}

func TestAddInvalidPoint(t *testing.T) {
	c := S256()

	// A finite point with coordinates off the curve.
	bad := &Point{X: big.NewInt(1), Y: big.NewInt(1)}
	if _, err := c.Add(bad, c.Generator()); !IsErrorCode(err, ErrInvalidPoint) {
		t.Errorf("off-curve first operand: got %v, want ErrInvalidPoint", err)
	}
	if _, err := c.Add(c.Generator(), bad); !IsErrorCode(err, ErrInvalidPoint) {
		t.Errorf("off-curve second operand: got %v, want ErrInvalidPoint", err)
	}

	// Coordinates past the field prime.
	past := &Point{X: new(big.Int).Set(c.P), Y: big.NewInt(0)}
	if _, err := c.Add(past, c.Generator()); !IsErrorCode(err, ErrInvalidPoint) {
		t.Errorf("x past prime: got %v, want ErrInvalidPoint", err)
	}

	// Negative coordinates.
	neg := &Point{X: big.NewInt(-1), Y: big.NewInt(1)}
	if _, err := c.Negate(neg); !IsErrorCode(err, ErrInvalidPoint) {
		t.Errorf("negative x: got %v, want ErrInvalidPoint", err)
	}

	if _, err := c.Add(nil, c.Generator()); !IsErrorCode(err, ErrInvalidPoint) {
		t.Errorf("nil point: got %v, want ErrInvalidPoint", err)
	}
}

func TestDouble(t *testing.T) {
	c := S256()

	got, err := c.Double(c.Generator())
	if err != nil {
		t.Fatalf("Double(G): %v", err)
	}
	if want := mustPoint(t, g2x, g2y); !got.Equal(want) {
		t.Fatalf("Double(G): got %v, want %v", got, want)
	}

	inf, err := c.Double(PointAtInfinity())
	if err != nil {
		t.Fatalf("Double(infinity): %v", err)
	}
	if !inf.Infinity {
		t.Fatal("Double(infinity) must be infinity")
	}
}

func TestNegate(t *testing.T) {
	c := S256()
	g := c.Generator()

	negG, err := c.Negate(g)
	if err != nil {
		t.Fatalf("Negate(G): %v", err)
	}
	if negG.X.Cmp(g.X) != 0 {
		t.Error("negation must preserve the x coordinate")
	}
	wantY := new(big.Int).Sub(c.P, g.Y)
	if negG.Y.Cmp(wantY) != 0 {
		t.Errorf("Negate(G) y: got %x, want %x", negG.Y, wantY)
	}

	// Negation is self-inverse, including for infinity.
	back, err := c.Negate(negG)
	if err != nil {
		t.Fatalf("Negate(-G): %v", err)
	}
	if !back.Equal(g) {
		t.Errorf("Negate(Negate(G)): got %v, want %v", back, g)
	}
	negInf, err := c.Negate(PointAtInfinity())
	if err != nil {
		t.Fatalf("Negate(infinity): %v", err)
	}
	if !negInf.Infinity {
		t.Error("Negate(infinity) must be infinity")
	}
}

func TestSubtract(t *testing.T) {
	c := S256()
	g := c.Generator()
	g3 := mustPoint(t, g3x, g3y)

	got, err := c.Subtract(g3, g)
	if err != nil {
		t.Fatalf("Subtract(3G, G): %v", err)
	}
	if want := mustPoint(t, g2x, g2y); !got.Equal(want) {
		t.Errorf("Subtract(3G, G): got %v, want %v", got, want)
	}

	self, err := c.Subtract(g, c.Generator())
	if err != nil {
		t.Fatalf("Subtract(G, G): %v", err)
	}
	if !self.Infinity {
		t.Error("Subtract(G, G) must be infinity")
	}
}

func TestMultiply(t *testing.T) {
	c := S256()
	g := c.Generator()

	tests := []struct {
		name string
		k    *big.Int
		p    *Point
		want *Point
	}{
		{"0*G is infinity", big.NewInt(0), g, PointAtInfinity()},
		{"1*G is G", big.NewInt(1), g, c.Generator()},
		{"2*G", big.NewInt(2), g, mustPoint(t, g2x, g2y)},
		{"3*G", big.NewInt(3), g, mustPoint(t, g3x, g3y)},
		{"n*G is infinity", new(big.Int).Set(c.N), g, PointAtInfinity()},
		{"(n+1)*G is G", new(big.Int).Add(c.N, big.NewInt(1)), g, c.Generator()},
		{"(n-1)*G is -G", new(big.Int).Sub(c.N, big.NewInt(1)), g,
			&Point{X: new(big.Int).Set(c.Gx), Y: new(big.Int).Sub(c.P, c.Gy)}},
		{"k*infinity is infinity", big.NewInt(12345), PointAtInfinity(),
			PointAtInfinity()},
	}
	for _, test := range tests {
		got, err := c.Multiply(test.k, test.p)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}
		if !got.Equal(test.want) {
			t.Errorf("%s: got %v, want %v", test.name, got, test.want)
		}
	}

	if _, err := c.Multiply(nil, g); !IsErrorCode(err, ErrInvalidOperand) {
		t.Errorf("nil scalar: got %v, want ErrInvalidOperand", err)
	}
}

// TestMultiplyMatchesRepeatedAddition walks the first several multiples of
// the generator two ways and requires them to agree.
func TestMultiplyMatchesRepeatedAddition(t *testing.T) {
	c := S256()
	g := c.Generator()

	sum := PointAtInfinity()
	for k := int64(1); k <= 20; k++ {
		var err error
		sum, err = c.Add(sum, g)
		if err != nil {
			t.Fatalf("Add at k=%d: %v", k, err)
		}
		mul, err := c.Multiply(big.NewInt(k), g)
		if err != nil {
			t.Fatalf("Multiply(%d, G): %v", k, err)
		}
		if !mul.Equal(sum) {
			t.Fatalf("k=%d: Multiply %v != repeated addition %v",
				k, mul, sum)
		}
	}
}

// TestMultiplyComposition exercises the scenario where 6*G must equal
// tripling a doubled generator regardless of the route taken.
func TestMultiplyComposition(t *testing.T) {
	c := S256()
	g := c.Generator()

	sixG, err := c.Multiply(big.NewInt(6), g)
	if err != nil {
		t.Fatalf("Multiply(6, G): %v", err)
	}
	twoG, err := c.Multiply(big.NewInt(2), g)
	if err != nil {
		t.Fatalf("Multiply(2, G): %v", err)
	}
	threeTwoG, err := c.Multiply(big.NewInt(3), twoG)
	if err != nil {
		t.Fatalf("Multiply(3, 2G): %v", err)
	}
	if !sixG.Equal(threeTwoG) {
		t.Fatalf("6G != 3*(2G): %v vs %v", sixG, threeTwoG)
	}
}

func TestDivide(t *testing.T) {
	c := S256()
	g := c.Generator()
	g2 := mustPoint(t, g2x, g2y)

	half, err := c.Divide(big.NewInt(2), g2)
	if err != nil {
		t.Fatalf("Divide(2, 2G): %v", err)
	}
	if !half.Equal(g) {
		t.Errorf("Divide(2, 2G): got %v, want G", half)
	}

	// Dividing by a multiple of the group order must fail, never return
	// a silently wrong point.
	if _, err := c.Divide(new(big.Int).Set(c.N), g); !IsErrorCode(err, ErrInvalidOperand) {
		t.Errorf("Divide(n, G): got %v, want ErrInvalidOperand", err)
	}
	if _, err := c.Divide(big.NewInt(0), g); !IsErrorCode(err, ErrInvalidOperand) {
		t.Errorf("Divide(0, G): got %v, want ErrInvalidOperand", err)
	}
	doubleN := new(big.Int).Lsh(c.N, 1)
	if _, err := c.Divide(doubleN, g); !IsErrorCode(err, ErrInvalidOperand) {
		t.Errorf("Divide(2n, G): got %v, want ErrInvalidOperand", err)
	}
}

func TestModInverse(t *testing.T) {
	tests := []struct {
		name    string
		a, m    int64
		want    int64
		wantErr bool
	}{
		{name: "3 mod 7", a: 3, m: 7, want: 5},
		{name: "2 mod 7", a: 2, m: 7, want: 4},
		{name: "1 mod 7", a: 1, m: 7, want: 1},
		{name: "negative value normalizes", a: -3, m: 7, want: 2},
		{name: "no inverse when gcd > 1", a: 4, m: 8, wantErr: true},
		{name: "zero has no inverse", a: 0, m: 7, wantErr: true},
		{name: "zero modulus", a: 3, m: 0, wantErr: true},
	}
	for _, test := range tests {
		got, err := ModInverse(big.NewInt(test.a), big.NewInt(test.m))
		if test.wantErr {
			if !IsErrorCode(err, ErrInvalidOperand) {
				t.Errorf("%s: got err %v, want ErrInvalidOperand",
					test.name, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
			continue
		}
		if got.Int64() != test.want {
			t.Errorf("%s: got %d, want %d", test.name, got.Int64(),
				test.want)
		}
	}

	// Against the group order: the inverse must multiply back to one.
	c := S256()
	for _, a := range []int64{2, 3, 97, 65537} {
		inv, err := ModInverse(big.NewInt(a), c.N)
		if err != nil {
			t.Fatalf("ModInverse(%d, n): %v", a, err)
		}
		product := new(big.Int).Mul(inv, big.NewInt(a))
		product.Mod(product, c.N)
		if product.Cmp(big.NewInt(1)) != 0 {
			t.Errorf("ModInverse(%d, n): product %v, want 1", a, product)
		}
	}
}

func TestErrorCodeString(t *testing.T) {
	tests := []struct {
		in   ErrorCode
		want string
	}{
		{ErrInvalidPoint, "ErrInvalidPoint"},
		{ErrInvalidOperand, "ErrInvalidOperand"},
		{0xffff, "Unknown ErrorCode (65535)"},
	}

	// Detect additional error codes that don't have the stringer updated.
	if len(errorCodeStrings) != int(numErrorCodes) {
		t.Errorf("it appears an error code was added without adding an " +
			"associated stringer value")
	}

	for i, test := range tests {
		result := test.in.String()
		if result != test.want {
			t.Errorf("String #%d got: %s want: %s", i, result,
				test.want)
		}
	}
}
