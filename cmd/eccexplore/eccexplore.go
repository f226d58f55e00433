// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// eccexplore walks elliptic curve operations from a starting public key the
// same way the game applies them, printing each intermediate point.  It works
// entirely offline, which makes it handy for testing operation sequences
// against practice challenges before submitting anything to a server.
package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/Rizato/eccgame-sub003/challenge"
	"github.com/Rizato/eccgame-sub003/curve"
	"github.com/Rizato/eccgame-sub003/pointgraph"
)

var cfg *config

// parseOp converts one textual operation into a graph operation.  mul and
// div take a scalar, add and sub take a scalar, the generator shorthand G,
// or a point in hex, and neg takes nothing.
func parseOp(c *curve.Params, line string) (pointgraph.Operation, error) {
	var op pointgraph.Operation
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return op, errors.New("empty operation")
	}

	verb := strings.ToLower(fields[0])
	switch verb {
	case "neg", "negate":
		if len(fields) != 1 {
			return op, fmt.Errorf("%s takes no operand", verb)
		}
		return pointgraph.NegateOp(), nil

	case "mul", "multiply", "div", "divide":
		if len(fields) != 2 {
			return op, fmt.Errorf("%s requires a scalar operand",
				verb)
		}
		k, ok := new(big.Int).SetString(fields[1], 0)
		if !ok {
			return op, fmt.Errorf("invalid scalar %q", fields[1])
		}
		if verb == "div" || verb == "divide" {
			return pointgraph.DivideOp(k), nil
		}
		return pointgraph.MultiplyOp(k), nil

	case "add", "sub", "subtract":
		if len(fields) != 2 {
			return op, fmt.Errorf("%s requires an operand", verb)
		}
		operand := fields[1]
		subtract := verb != "add"

		// The generator shorthand names the point 1*G.
		if operand == "G" {
			one := big.NewInt(1)
			if subtract {
				return pointgraph.SubtractScalarOp(one), nil
			}
			return pointgraph.AddScalarOp(one), nil
		}

		// A compressed or uncompressed point in hex.
		if len(operand) == 66 || len(operand) == 130 {
			point, err := c.ParsePointHex(operand)
			if err != nil {
				return op, err
			}
			if subtract {
				return pointgraph.SubtractPointOp(point), nil
			}
			return pointgraph.AddPointOp(point), nil
		}

		k, ok := new(big.Int).SetString(operand, 0)
		if !ok {
			return op, fmt.Errorf("invalid operand %q", operand)
		}
		if subtract {
			return pointgraph.SubtractScalarOp(k), nil
		}
		return pointgraph.AddScalarOp(k), nil

	default:
		return op, fmt.Errorf("unknown operation %q", verb)
	}
}

// loadScript gathers the operations to apply, reading the operation file
// first and the command line script after it.  Blank lines and lines starting
// with # are skipped.
func loadScript(c *curve.Params) ([]pointgraph.Operation, error) {
	var lines []string
	if cfg.InFile != "" {
		content, err := os.ReadFile(cfg.InFile)
		if err != nil {
			return nil, err
		}
		lines = strings.Split(string(content), "\n")
	}
	lines = append(lines, strings.Split(cfg.Script, ";")...)

	var ops []pointgraph.Operation
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		op, err := parseOp(c, line)
		if err != nil {
			return nil, fmt.Errorf("%q: %v", line, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// startingKey resolves the hex public key the walk begins from.  When the
// scalar option was used the key is computed from it, so the exploration can
// be checked against a known solution.
func startingKey(c *curve.Params) (string, error) {
	if cfg.Scalar == "" {
		return cfg.PubKey, nil
	}

	k, ok := new(big.Int).SetString(cfg.Scalar, 16)
	if !ok {
		return "", errors.New("the scalar must be a hex integer")
	}
	point, err := c.Multiply(k, c.Generator())
	if err != nil {
		return "", err
	}
	serialized, err := c.SerializeCompressed(point)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(serialized), nil
}

// printNodes lists every point the exploration discovered.
func printNodes(g *pointgraph.Graph) {
	fmt.Println("Points:")
	for _, node := range g.Nodes() {
		marker := " "
		switch {
		case node.IsChallenge:
			marker = "C"
		case node.IsGenerator:
			marker = "G"
		}
		line := fmt.Sprintf("  %s %4d %s", marker, node.ID, node.Key)
		if node.Label != "" {
			line += " (" + node.Label + ")"
		}
		if node.PrivateKey != nil {
			line += " [scalar known]"
		}
		fmt.Println(line)
	}
}

// realMain is the real main function for the utility.  It is necessary to work
// around the fact that deferred functions do not run when os.Exit() is called.
func realMain() error {
	// Load configuration and parse command line.
	tcfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	cfg = tcfg

	g := pointgraph.New(nil)
	c := g.Curve()

	pubKeyHex, err := startingKey(c)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	chNode, err := g.SetChallenge(pubKeyHex)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid starting key: %v\n", err)
		return err
	}
	fmt.Printf("Challenge %s\n", chNode.Key)

	ops, err := loadScript(c)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}

	// Apply the operations in order, each one to the previous result.
	current := chNode.ID
	for i, op := range ops {
		node, _, err := g.ApplyOperation(current, op)
		if err != nil {
			err = fmt.Errorf("operation %d (%s): %v", i+1, op, err)
			fmt.Fprintln(os.Stderr, err)
			return err
		}
		fmt.Printf("%4d: %-24s -> %s\n", i+1, op, node.Key)
		current = node.ID
	}

	metrics := g.GetMetrics()
	fmt.Printf("Explored %d points across %d operations\n",
		metrics.NodeCount, metrics.EdgeCount)
	if cfg.Nodes {
		printNodes(g)
	}

	// Run the full win check when a target address was given.  Both the
	// address comparison and the derivation must pass, the same two
	// conditions the game scores a solve on.
	if cfg.Target != "" {
		res, err := challenge.CheckWin(g, chNode.ID, cfg.Target,
			activeNetParams)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return err
		}
		fmt.Printf("Address match: %v\n", res.AddressMatch)
		fmt.Printf("Private key derived: %v\n", res.Derived)
		fmt.Printf("Win: %v\n", res.Win)
		if res.Derived && cfg.Derive {
			fmt.Printf("Private key: %064x\n", res.PrivateKey)
		}
		return nil
	}

	// Report whether the recorded operations connect the challenge to a
	// point with a known scalar.  A nil private key means they do not,
	// which is the normal outcome until a walk reaches the generator or
	// one of its known multiples.
	priv, err := g.DerivePrivateKey(chNode.ID)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if priv == nil {
		fmt.Println("The applied operations do not determine the " +
			"challenge private key")
		return nil
	}
	fmt.Println("The applied operations determine the challenge private " +
		"key")
	if cfg.Derive {
		fmt.Printf("Private key: %064x\n", priv)
	}
	return nil
}

func main() {
	// Work around defer not working after os.Exit()
	if err := realMain(); err != nil {
		os.Exit(1)
	}
}
