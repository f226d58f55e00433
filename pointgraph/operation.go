// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package pointgraph

import (
	"fmt"
	"math/big"

	"github.com/Rizato/eccgame-sub003/curve"
)

// OpKind identifies one of the closed set of group operations an edge can
// record.  The set is fixed and every switch over it handles all members, so
// adding a kind without teaching the evaluator and the scalar composer about
// it fails loudly instead of being silently skipped.
type OpKind int

const (
	// OpMultiply multiplies the point by the operand scalar.
	OpMultiply OpKind = iota

	// OpDivide multiplies the point by the modular inverse of the operand
	// scalar.
	OpDivide

	// OpAdd adds the operand point, which is given either directly or as
	// a scalar naming a multiple of the generator.
	OpAdd

	// OpSubtract subtracts the operand point, with operands expressed the
	// same way as OpAdd.
	OpSubtract

	// OpNegate reflects the point over the x axis and takes no operand.
	OpNegate

	// numOpKinds is the maximum kind value plus one and is used by tests
	// to ensure all kinds have a string.
	numOpKinds
)

// Map of OpKind values back to their constant names for pretty printing.
var opKindStrings = map[OpKind]string{
	OpMultiply: "multiply",
	OpDivide:   "divide",
	OpAdd:      "add",
	OpSubtract: "subtract",
	OpNegate:   "negate",
}

// String returns the OpKind as a human-readable name.
func (k OpKind) String() string {
	if s, ok := opKindStrings[k]; ok {
		return s
	}
	return fmt.Sprintf("Unknown OpKind (%d)", int(k))
}

// Operation describes a single group operation together with its operand.
// Multiply and divide carry a scalar operand.  Add and subtract carry exactly
// one of a scalar, naming the point Scalar*G, or an explicit operand point.
// Negate carries no operand at all.
type Operation struct {
	// Kind selects which group operation the edge records.
	Kind OpKind

	// Scalar is the operand value for OpMultiply and OpDivide, or the
	// generator multiple for the scalar forms of OpAdd and OpSubtract.
	Scalar *big.Int

	// Point is the explicit operand for the point forms of OpAdd and
	// OpSubtract.
	Point *curve.Point
}

// MultiplyOp returns an operation that multiplies by the given scalar.
func MultiplyOp(k *big.Int) Operation {
	return Operation{Kind: OpMultiply, Scalar: k}
}

// DivideOp returns an operation that divides by the given scalar.
func DivideOp(k *big.Int) Operation {
	return Operation{Kind: OpDivide, Scalar: k}
}

// AddScalarOp returns an operation that adds the point k*G.
func AddScalarOp(k *big.Int) Operation {
	return Operation{Kind: OpAdd, Scalar: k}
}

// AddPointOp returns an operation that adds the given point.
func AddPointOp(p *curve.Point) Operation {
	return Operation{Kind: OpAdd, Point: p}
}

// SubtractScalarOp returns an operation that subtracts the point k*G.
func SubtractScalarOp(k *big.Int) Operation {
	return Operation{Kind: OpSubtract, Scalar: k}
}

// SubtractPointOp returns an operation that subtracts the given point.
func SubtractPointOp(p *curve.Point) Operation {
	return Operation{Kind: OpSubtract, Point: p}
}

// NegateOp returns an operation that negates the point.
func NegateOp() Operation {
	return Operation{Kind: OpNegate}
}

// validate checks that the operation carries the operand shape its kind
// requires.
func (op *Operation) validate() error {
	switch op.Kind {
	case OpMultiply, OpDivide:
		if op.Scalar == nil || op.Point != nil {
			return curve.Error{
				ErrorCode: curve.ErrInvalidOperand,
				Description: fmt.Sprintf("%v requires a scalar "+
					"operand and no point operand", op.Kind),
			}
		}
		return nil

	case OpAdd, OpSubtract:
		if (op.Scalar == nil) == (op.Point == nil) {
			return curve.Error{
				ErrorCode: curve.ErrInvalidOperand,
				Description: fmt.Sprintf("%v requires exactly "+
					"one of a scalar or point operand",
					op.Kind),
			}
		}
		return nil

	case OpNegate:
		if op.Scalar != nil || op.Point != nil {
			return curve.Error{
				ErrorCode:   curve.ErrInvalidOperand,
				Description: "negate takes no operand",
			}
		}
		return nil

	default:
		return ErrUnknownOperation
	}
}

// Apply evaluates the operation against the given point on the given curve
// and returns the resulting point.  The scalar forms of add and subtract
// resolve their operand to Scalar*G before combining.
func (op *Operation) Apply(c *curve.Params, p *curve.Point) (*curve.Point, error) {
	if err := op.validate(); err != nil {
		return nil, err
	}

	switch op.Kind {
	case OpMultiply:
		return c.Multiply(op.Scalar, p)

	case OpDivide:
		return c.Divide(op.Scalar, p)

	case OpAdd:
		operand, err := op.operandPoint(c)
		if err != nil {
			return nil, err
		}
		return c.Add(p, operand)

	case OpSubtract:
		operand, err := op.operandPoint(c)
		if err != nil {
			return nil, err
		}
		return c.Subtract(p, operand)

	case OpNegate:
		return c.Negate(p)

	default:
		return nil, ErrUnknownOperation
	}
}

// operandPoint resolves the second point for add and subtract, multiplying
// the generator when the operand was given in scalar form.
func (op *Operation) operandPoint(c *curve.Params) (*curve.Point, error) {
	if op.Point != nil {
		return op.Point, nil
	}
	return c.Multiply(op.Scalar, c.Generator())
}

// normalize returns a deep copy of the operation with its scalar operand
// reduced into the scalar group.  Stored edges hold normalized operations so
// that operand equality and inverse checks are well defined.
func (op *Operation) normalize(c *curve.Params) Operation {
	norm := Operation{Kind: op.Kind}
	if op.Scalar != nil {
		norm.Scalar = new(big.Int).Mod(op.Scalar, c.N)
	}
	if op.Point != nil {
		norm.Point = op.Point.Copy()
	}
	return norm
}

// copy returns a deep copy of the operation.
func (op *Operation) copy() Operation {
	cp := Operation{Kind: op.Kind}
	if op.Scalar != nil {
		cp.Scalar = new(big.Int).Set(op.Scalar)
	}
	if op.Point != nil {
		cp.Point = op.Point.Copy()
	}
	return cp
}

// equal reports whether two normalized operations describe the same kind and
// operand.
func (op *Operation) equal(other *Operation) bool {
	if op.Kind != other.Kind {
		return false
	}
	if (op.Scalar == nil) != (other.Scalar == nil) {
		return false
	}
	if op.Scalar != nil && op.Scalar.Cmp(other.Scalar) != 0 {
		return false
	}
	if (op.Point == nil) != (other.Point == nil) {
		return false
	}
	if op.Point != nil && !op.Point.Equal(other.Point) {
		return false
	}
	return true
}

// String returns a short description of the operation for logging.
func (op Operation) String() string {
	switch {
	case op.Scalar != nil:
		return fmt.Sprintf("%v(%v)", op.Kind, op.Scalar)
	case op.Point != nil:
		return fmt.Sprintf("%v(point)", op.Kind)
	default:
		return op.Kind.String()
	}
}
