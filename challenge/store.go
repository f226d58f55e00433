// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package challenge

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/Rizato/eccgame-sub003/database/engine"
)

var (
	// ErrChallengeNotFound is returned when the referenced challenge does
	// not exist in the store.
	ErrChallengeNotFound = errors.New("challenge not found")

	// ErrChallengeExists is returned when adding a challenge whose uuid
	// is already present.
	ErrChallengeExists = errors.New("challenge already exists")

	// ErrChallengeInactive is returned when submitting a solution to a
	// challenge that is not currently active.
	ErrChallengeInactive = errors.New("challenge is not active")

	// ErrNoUnusedChallenges is returned by rotation when every stored
	// challenge has already had its day.
	ErrNoUnusedChallenges = errors.New("no unused challenges remain")
)

// Key layout.  Challenge records live under c:<uuid>, solutions under
// s:<challengeUUID>:<uuid>, saves under v:<challengeUUID>:<uuid>, and the
// uuid of the active challenge under the bare active key.
const (
	challengeKeyPrefix = "c:"
	solutionKeyPrefix  = "s:"
	saveKeyPrefix      = "v:"
	activeKey          = "active"
)

func challengeKey(uuid string) []byte {
	return []byte(challengeKeyPrefix + uuid)
}

func solutionKey(challengeUUID, uuid string) []byte {
	return []byte(solutionKeyPrefix + challengeUUID + ":" + uuid)
}

func saveKey(challengeUUID, uuid string) []byte {
	return []byte(saveKeyPrefix + challengeUUID + ":" + uuid)
}

// Store persists challenges, solutions and saves as JSON records in a
// key/value engine.  Reads go through engine snapshots; every mutation is
// batched through a single engine transaction and serialized by the store
// mutex, so rotation never races a submission.
type Store struct {
	db engine.Engine
	mu sync.Mutex
}

// NewStore wraps an open engine.
func NewStore(db engine.Engine) *Store {
	return &Store{db: db}
}

// Close releases the underlying engine.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddChallenge stores a new challenge record.
func (s *Store) AddChallenge(ch *Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.db.Snapshot()
	if err != nil {
		return err
	}
	has, err := snap.Has(challengeKey(ch.UUID))
	snap.Release()
	if err != nil {
		return err
	}
	if has {
		return ErrChallengeExists
	}

	tx, err := s.db.Transaction()
	if err != nil {
		return err
	}
	if err := putJSON(tx, challengeKey(ch.UUID), ch); err != nil {
		tx.Discard()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	log.Debugf("Stored challenge %s (%s)", ch.UUID, ch.P2PKHAddress)
	return nil
}

// Challenge returns the challenge with the given uuid.
func (s *Store) Challenge(uuid string) (*Challenge, error) {
	snap, err := s.db.Snapshot()
	if err != nil {
		return nil, err
	}
	defer snap.Release()

	return getChallenge(snap, uuid)
}

// Challenges returns all stored challenges in uuid order.
func (s *Store) Challenges() ([]*Challenge, error) {
	snap, err := s.db.Snapshot()
	if err != nil {
		return nil, err
	}
	defer snap.Release()

	iter := snap.NewIterator(engine.BytesPrefix([]byte(challengeKeyPrefix)))
	defer iter.Release()

	var challenges []*Challenge
	for iter.Next() {
		var ch Challenge
		if err := json.Unmarshal(iter.Value(), &ch); err != nil {
			return nil, err
		}
		challenges = append(challenges, &ch)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return challenges, nil
}

// ActiveChallenge returns the challenge the active pointer references, or
// nil when no challenge has been activated yet.
func (s *Store) ActiveChallenge() (*Challenge, error) {
	snap, err := s.db.Snapshot()
	if err != nil {
		return nil, err
	}
	defer snap.Release()

	return getActive(snap)
}

// DailyChallenge returns the challenge for the day containing now,
// rotating if the date has rolled over: the stale challenge is
// deactivated and the first never-used challenge is activated, all in one
// transaction.  The returned flag reports whether a rotation happened.
// When the date rolls over and no unused challenge remains, nothing is
// changed and ErrNoUnusedChallenges is returned.
func (s *Store) DailyChallenge(now time.Time) (*Challenge, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := now.UTC().Format(dateLayout)

	snap, err := s.db.Snapshot()
	if err != nil {
		return nil, false, err
	}
	active, err := getActive(snap)
	if err != nil {
		snap.Release()
		return nil, false, err
	}
	if active != nil && active.Active && active.ActiveDate == today {
		snap.Release()
		return active, false, nil
	}

	next, err := firstUnused(snap)
	snap.Release()
	if err != nil {
		return nil, false, err
	}
	if next == nil {
		return nil, false, ErrNoUnusedChallenges
	}

	tx, err := s.db.Transaction()
	if err != nil {
		return nil, false, err
	}
	if active != nil && active.Active {
		active.Active = false
		if err := putJSON(tx, challengeKey(active.UUID), active); err != nil {
			tx.Discard()
			return nil, false, err
		}
	}
	next.Active = true
	next.ActiveDate = today
	if err := putJSON(tx, challengeKey(next.UUID), next); err != nil {
		tx.Discard()
		return nil, false, err
	}
	if err := tx.Put([]byte(activeKey), []byte(next.UUID)); err != nil {
		tx.Discard()
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, err
	}

	log.Infof("Rotated daily challenge to %s (%s) for %s", next.UUID,
		next.P2PKHAddress, today)
	return next, true, nil
}

// AddSolution validates and evaluates a submission for the given challenge
// and persists the resulting solution.  Submissions are only accepted for
// the active challenge.
func (s *Store) AddSolution(challengeUUID, pubKeyHex, signatureHex string) (*Solution, error) {
	if err := ValidateSubmission(pubKeyHex, signatureHex); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ch, err := s.challengeLocked(challengeUUID)
	if err != nil {
		return nil, err
	}
	if !ch.Active {
		return nil, ErrChallengeInactive
	}

	sol := ch.Evaluate(pubKeyHex, signatureHex)

	tx, err := s.db.Transaction()
	if err != nil {
		return nil, err
	}
	if err := putJSON(tx, solutionKey(ch.UUID, sol.UUID), sol); err != nil {
		tx.Discard()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Debugf("Stored %s solution %s for challenge %s", sol.Result,
		sol.UUID, ch.UUID)
	return sol, nil
}

// Solutions returns all solutions submitted for the given challenge.
func (s *Store) Solutions(challengeUUID string) ([]*Solution, error) {
	snap, err := s.db.Snapshot()
	if err != nil {
		return nil, err
	}
	defer snap.Release()

	if _, err := getChallenge(snap, challengeUUID); err != nil {
		return nil, err
	}

	iter := snap.NewIterator(engine.BytesPrefix(
		[]byte(solutionKeyPrefix + challengeUUID + ":")))
	defer iter.Release()

	var solutions []*Solution
	for iter.Next() {
		var sol Solution
		if err := json.Unmarshal(iter.Value(), &sol); err != nil {
			return nil, err
		}
		solutions = append(solutions, &sol)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return solutions, nil
}

// AddSave validates and persists a saved point for the given challenge.
// Unlike solutions, saves are accepted for inactive challenges.
func (s *Store) AddSave(challengeUUID, pubKeyHex, label string) (*Save, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.challengeLocked(challengeUUID); err != nil {
		return nil, err
	}

	save, err := NewSave(challengeUUID, pubKeyHex, label)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Transaction()
	if err != nil {
		return nil, err
	}
	if err := putJSON(tx, saveKey(challengeUUID, save.UUID), save); err != nil {
		tx.Discard()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Debugf("Stored save %s for challenge %s", save.UUID, challengeUUID)
	return save, nil
}

// Saves returns all saved points recorded for the given challenge.
func (s *Store) Saves(challengeUUID string) ([]*Save, error) {
	snap, err := s.db.Snapshot()
	if err != nil {
		return nil, err
	}
	defer snap.Release()

	if _, err := getChallenge(snap, challengeUUID); err != nil {
		return nil, err
	}

	iter := snap.NewIterator(engine.BytesPrefix(
		[]byte(saveKeyPrefix + challengeUUID + ":")))
	defer iter.Release()

	var saves []*Save
	for iter.Next() {
		var save Save
		if err := json.Unmarshal(iter.Value(), &save); err != nil {
			return nil, err
		}
		saves = append(saves, &save)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return saves, nil
}

// challengeLocked reads one challenge while the store mutex is held.
func (s *Store) challengeLocked(uuid string) (*Challenge, error) {
	snap, err := s.db.Snapshot()
	if err != nil {
		return nil, err
	}
	defer snap.Release()

	return getChallenge(snap, uuid)
}

func getChallenge(snap engine.Snapshot, uuid string) (*Challenge, error) {
	key := challengeKey(uuid)
	has, err := snap.Has(key)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, ErrChallengeNotFound
	}
	buf, err := snap.Get(key)
	if err != nil {
		return nil, err
	}
	var ch Challenge
	if err := json.Unmarshal(buf, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// getActive resolves the active pointer to its challenge record.  A missing
// pointer means no challenge has been activated yet and is not an error.
func getActive(snap engine.Snapshot) (*Challenge, error) {
	has, err := snap.Has([]byte(activeKey))
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, nil
	}
	uuid, err := snap.Get([]byte(activeKey))
	if err != nil {
		return nil, err
	}
	return getChallenge(snap, string(uuid))
}

// firstUnused returns the first challenge in uuid order that has never been
// activated, or nil when no such challenge remains.
func firstUnused(snap engine.Snapshot) (*Challenge, error) {
	iter := snap.NewIterator(engine.BytesPrefix([]byte(challengeKeyPrefix)))
	defer iter.Release()

	for iter.Next() {
		var ch Challenge
		if err := json.Unmarshal(iter.Value(), &ch); err != nil {
			return nil, err
		}
		if ch.ActiveDate == "" {
			return &ch, nil
		}
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return nil, nil
}

func putJSON(tx engine.Transaction, key []byte, v interface{}) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return tx.Put(key, buf)
}
