// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package challenge

import (
	"encoding/hex"
	"time"

	"github.com/Rizato/eccgame-sub003/curve"
	"github.com/satori/go.uuid"
)

// Save is a server-side bookmark of a point a player reached while
// exploring a challenge.  Saves are accepted for inactive challenges and
// duplicates are allowed; each save gets its own uuid.
type Save struct {
	UUID          string    `json:"uuid"`
	ChallengeUUID string    `json:"challenge"`
	PublicKey     string    `json:"public_key"`
	Label         string    `json:"label,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewSave validates the saved key and builds the record.  The key must
// parse as a curve point and is stored in its canonical compressed form.
func NewSave(challengeUUID, pubKeyHex, label string) (*Save, error) {
	c := curve.S256()
	point, err := c.ParsePointHex(pubKeyHex)
	if err != nil {
		return nil, err
	}
	compressed, err := c.SerializeCompressed(point)
	if err != nil {
		return nil, err
	}
	return &Save{
		UUID:          uuid.NewV4().String(),
		ChallengeUUID: challengeUUID,
		PublicKey:     hex.EncodeToString(compressed),
		Label:         label,
		CreatedAt:     time.Now().UTC(),
	}, nil
}
