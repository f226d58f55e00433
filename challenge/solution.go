// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package challenge

import (
	"encoding/hex"
	"errors"
	"time"

	"github.com/Rizato/eccgame-sub003/curve"
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/satori/go.uuid"
)

const (
	// compactSigLen is the length of a serialized compact recoverable
	// signature: one recovery code byte followed by R and S.
	compactSigLen = 65

	// ResultCorrect and ResultIncorrect are the two verdicts a submission
	// can receive.
	ResultCorrect   = "correct"
	ResultIncorrect = "incorrect"
)

var (
	// ErrInvalidSignature is returned for a submission whose signature is
	// not the hex form of a compact recoverable signature.
	ErrInvalidSignature = errors.New("signature must be 65 compact signature bytes in hex")

	// ErrMalformedUUID is returned when a challenge uuid does not parse.
	ErrMalformedUUID = errors.New("malformed challenge uuid")
)

// Solution is a player's signed claim to a challenge.  The signature proves
// possession of the private key behind PublicKey bound to this challenge;
// the validation fields are stamped by Evaluate.
type Solution struct {
	UUID             string    `json:"uuid"`
	ChallengeUUID    string    `json:"challenge"`
	PublicKey        string    `json:"public_key"`
	Signature        string    `json:"signature"`
	Result           string    `json:"result,omitempty"`
	IsSignatureValid bool      `json:"is_signature_valid"`
	IsKeyValid       bool      `json:"is_key_valid"`
	ValidatedAt      time.Time `json:"validated_at,omitempty"`
}

// solutionDigest is the message a submission signs: the submitted public
// key bytes followed by the raw challenge uuid bytes, double hashed.
func solutionDigest(pubKey []byte, challengeUUID string) ([]byte, error) {
	u, err := uuid.FromString(challengeUUID)
	if err != nil {
		return nil, ErrMalformedUUID
	}
	msg := make([]byte, 0, len(pubKey)+len(u.Bytes()))
	msg = append(msg, pubKey...)
	msg = append(msg, u.Bytes()...)
	return chainhash.DoubleHashB(msg), nil
}

// SignSolution signs a claim to challengeUUID with the private key a player
// derived, producing the submission fields for the solution endpoint.
func SignSolution(priv *btcec.PrivateKey, challengeUUID string) (pubKeyHex, signatureHex string, err error) {
	pubKey := priv.PubKey().SerializeCompressed()
	digest, err := solutionDigest(pubKey, challengeUUID)
	if err != nil {
		return "", "", err
	}
	sig, err := ecdsa.SignCompact(priv, digest, true)
	if err != nil {
		return "", "", err
	}
	return hex.EncodeToString(pubKey), hex.EncodeToString(sig), nil
}

// VerifySolution checks a submitted signature.  The compact signature must
// recover exactly the submitted public key for the digest bound to
// challengeUUID, which proves the submitter holds its private key.
func VerifySolution(pubKeyHex, signatureHex, challengeUUID string) bool {
	pubKeyBytes, err := hex.DecodeString(pubKeyHex)
	if err != nil {
		return false
	}
	pubKey, err := btcec.ParsePubKey(pubKeyBytes)
	if err != nil {
		return false
	}
	sig, err := hex.DecodeString(signatureHex)
	if err != nil || len(sig) != compactSigLen {
		return false
	}
	digest, err := solutionDigest(pubKeyBytes, challengeUUID)
	if err != nil {
		return false
	}
	recovered, _, err := ecdsa.RecoverCompact(sig, digest)
	if err != nil {
		return false
	}
	return recovered.IsEqual(pubKey)
}

// ValidateSubmission checks the wire shape of a submission before it is
// evaluated: the key must parse as a curve point and the signature must be
// hex of compact signature length.  Evaluation decides correctness; this
// only rejects input that could never be a well formed claim.
func ValidateSubmission(pubKeyHex, signatureHex string) error {
	if _, err := curve.S256().ParsePointHex(pubKeyHex); err != nil {
		return err
	}
	sig, err := hex.DecodeString(signatureHex)
	if err != nil || len(sig) != compactSigLen {
		return ErrInvalidSignature
	}
	return nil
}

// Evaluate validates a submission against the challenge and stamps the
// validation fields.  The signature check binds the submitted key to this
// challenge; the key check compares both keys as curve points so encoding
// differences cannot mask a match.  Result is correct only when both hold.
func (c *Challenge) Evaluate(pubKeyHex, signatureHex string) *Solution {
	sol := &Solution{
		UUID:          uuid.NewV4().String(),
		ChallengeUUID: c.UUID,
		PublicKey:     pubKeyHex,
		Signature:     signatureHex,
		ValidatedAt:   time.Now().UTC(),
	}
	sol.IsSignatureValid = VerifySolution(pubKeyHex, signatureHex, c.UUID)
	sol.IsKeyValid = keysEqual(pubKeyHex, c.PublicKey)
	if sol.IsSignatureValid && sol.IsKeyValid {
		sol.Result = ResultCorrect
	} else {
		sol.Result = ResultIncorrect
	}
	return sol
}

// keysEqual compares two serialized public keys as curve points.
func keysEqual(aHex, bHex string) bool {
	c := curve.S256()
	a, err := c.ParsePointHex(aHex)
	if err != nil {
		return false
	}
	b, err := c.ParsePointHex(bHex)
	if err != nil {
		return false
	}
	return a.Equal(b)
}
