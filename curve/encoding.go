// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package curve

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

const (
	// PubKeyBytesLenCompressed is the length of a serialized compressed
	// public key.
	PubKeyBytesLenCompressed = 33

	// PubKeyBytesLenUncompressed is the length of a serialized
	// uncompressed public key.
	PubKeyBytesLenUncompressed = 65

	// ScalarBytesLen is the length of a serialized scalar.
	ScalarBytesLen = 32
)

const (
	pubkeyCompressed   byte = 0x2 // y_bit + x coord
	pubkeyUncompressed byte = 0x4 // x coord + y coord
)

// ParsePoint parses a serialized public key into a validated curve point.
// Both the 33-byte compressed form with a 0x02/0x03 prefix selecting the
// parity of y and the 65-byte uncompressed 0x04 form are accepted.
// Anything else fails with ErrInvalidPoint.
func (c *Params) ParsePoint(serialized []byte) (*Point, error) {
	switch len(serialized) {
	case PubKeyBytesLenCompressed:
		format := serialized[0]
		ybit := (format & 0x1) == 0x1
		format &= ^byte(0x1)
		if format != pubkeyCompressed {
			return nil, makeError(ErrInvalidPoint, fmt.Sprintf(
				"malformed compressed public key: invalid "+
					"prefix 0x%02x", serialized[0]))
		}

		x := new(big.Int).SetBytes(serialized[1:33])
		y, err := c.decompressY(x, ybit)
		if err != nil {
			return nil, err
		}
		return &Point{X: x, Y: y}, nil

	case PubKeyBytesLenUncompressed:
		if serialized[0] != pubkeyUncompressed {
			return nil, makeError(ErrInvalidPoint, fmt.Sprintf(
				"malformed uncompressed public key: invalid "+
					"prefix 0x%02x", serialized[0]))
		}

		x := new(big.Int).SetBytes(serialized[1:33])
		y := new(big.Int).SetBytes(serialized[33:65])
		return c.NewPoint(x, y)

	default:
		return nil, makeError(ErrInvalidPoint, fmt.Sprintf("malformed "+
			"public key: invalid length %d", len(serialized)))
	}
}

// ParsePointHex parses a hex-encoded serialized public key.  See ParsePoint
// for the accepted forms.
func (c *Params) ParsePointHex(pubKeyHex string) (*Point, error) {
	serialized, err := hex.DecodeString(pubKeyHex)
	if err != nil {
		return nil, makeError(ErrInvalidPoint, "malformed public key: "+
			"invalid hex")
	}
	return c.ParsePoint(serialized)
}

// SerializeCompressed serializes a finite point in the 33-byte compressed
// format.  The point at infinity has no public key form and fails with
// ErrInvalidPoint.
func (c *Params) SerializeCompressed(p *Point) ([]byte, error) {
	if err := c.validatePoint(p); err != nil {
		return nil, err
	}
	if p.Infinity {
		return nil, makeError(ErrInvalidPoint, "the point at infinity "+
			"has no serialized form")
	}

	b := make([]byte, 0, PubKeyBytesLenCompressed)
	format := pubkeyCompressed
	if isOdd(p.Y) {
		format |= 0x1
	}
	b = append(b, format)
	b = paddedAppend(32, b, p.X.Bytes())
	return b, nil
}

// SerializeUncompressed serializes a finite point in the 65-byte
// uncompressed format.  The point at infinity has no public key form and
// fails with ErrInvalidPoint.
func (c *Params) SerializeUncompressed(p *Point) ([]byte, error) {
	if err := c.validatePoint(p); err != nil {
		return nil, err
	}
	if p.Infinity {
		return nil, makeError(ErrInvalidPoint, "the point at infinity "+
			"has no serialized form")
	}

	b := make([]byte, 0, PubKeyBytesLenUncompressed)
	b = append(b, pubkeyUncompressed)
	b = paddedAppend(32, b, p.X.Bytes())
	b = paddedAppend(32, b, p.Y.Bytes())
	return b, nil
}

// ParseScalar parses a scalar from its string form.  A "0x" or "0X" prefix
// selects hexadecimal, otherwise the value is read as decimal.  Scalars
// are non-negative; the value is not reduced modulo the group order here
// since callers differ on which modulus applies.
func ParseScalar(s string) (*big.Int, error) {
	var k *big.Int
	var ok bool
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		k, ok = new(big.Int).SetString(s[2:], 16)
	} else {
		k, ok = new(big.Int).SetString(s, 10)
	}
	if !ok || k.Sign() < 0 {
		return nil, makeError(ErrInvalidOperand, fmt.Sprintf("malformed "+
			"scalar %q", s))
	}
	return k, nil
}

// ScalarBytes returns the fixed-width 32-byte big-endian form of k reduced
// modulo the group order.
func (c *Params) ScalarBytes(k *big.Int) []byte {
	kRed := new(big.Int).Mod(k, c.N)
	return paddedAppend(ScalarBytesLen, make([]byte, 0, ScalarBytesLen),
		kRed.Bytes())
}

// ScalarHex returns the fixed-width 64-digit hex form of k reduced modulo
// the group order.
func (c *Params) ScalarHex(k *big.Int) string {
	return hex.EncodeToString(c.ScalarBytes(k))
}

// paddedAppend appends the src byte slice to dst, returning the new slice.
// If the length of the source is smaller than the passed size, leading zero
// bytes are appended to dst before appending src.
func paddedAppend(size uint, dst, src []byte) []byte {
	for i := 0; i < int(size)-len(src); i++ {
		dst = append(dst, 0)
	}
	return append(dst, src...)
}

// decompressY recovers the y coordinate with the requested parity for the
// given x coordinate, failing with ErrInvalidPoint when no point with that
// x exists on the curve.
func (c *Params) decompressY(x *big.Int, odd bool) (*big.Int, error) {
	if x.Cmp(c.P) >= 0 {
		return nil, makeError(ErrInvalidPoint, "point x coordinate is "+
			"outside the field range")
	}

	// y^2 = x^3 + B, then a candidate root by exponentiation with q.
	ySq := new(big.Int).Mul(x, x)
	ySq.Mul(ySq, x)
	ySq.Add(ySq, c.B)
	ySq.Mod(ySq, c.P)
	y := new(big.Int).Exp(ySq, c.q, c.P)

	// The exponentiation only yields a square root when one exists.
	check := new(big.Int).Mul(y, y)
	check.Mod(check, c.P)
	if check.Cmp(ySq) != 0 {
		return nil, makeError(ErrInvalidPoint, "invalid square root")
	}

	if isOdd(y) != odd {
		y.Sub(c.P, y)
	}
	return y, nil
}
