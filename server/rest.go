// Copyright (c) 2024-2026 The eccgame developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Rizato/eccgame-sub003/challenge"
	"github.com/Rizato/eccgame-sub003/curve"
)

// challengesPath is the route prefix for per-challenge endpoints.
const challengesPath = "/api/v1/challenges/"

// solutionRequest is the body of a solution submission.
type solutionRequest struct {
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
}

// saveRequest is the body of a saved point submission.
type saveRequest struct {
	PublicKey string `json:"public_key"`
	Label     string `json:"label,omitempty"`
}

// apiError is the body of every non-2xx response.
type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiError{Error: msg})
}

// decodeRequest unmarshals a JSON request body, bounded by the configured
// maximum body size.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, v interface{}) error {
	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxBodySize)
	defer body.Close()
	return json.NewDecoder(body).Decode(v)
}

// isSubmissionError reports whether the error describes a problem with the
// submitted payload rather than with server state.
func isSubmissionError(err error) bool {
	return errors.Is(err, challenge.ErrInvalidSignature) ||
		errors.Is(err, challenge.ErrMalformedUUID) ||
		curve.IsErrorCode(err, curve.ErrInvalidPoint) ||
		curve.IsErrorCode(err, curve.ErrInvalidOperand)
}

// handleDaily serves today's challenge.  Requesting it is what rotates a new
// challenge in on a fresh day, same as the rotation handler.
func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ch, err := s.dailyChallenge()
	switch {
	case errors.Is(err, challenge.ErrNoUnusedChallenges):
		writeError(w, http.StatusServiceUnavailable, "no unused challenges remain")
	case err != nil:
		log.Errorf("Failed to evaluate daily challenge: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	default:
		writeJSON(w, http.StatusOK, ch)
	}
}

// handleChallenges routes the per-challenge endpoints by path shape:
// {uuid}, {uuid}/solution, {uuid}/solutions, and {uuid}/save.
func (s *Server) handleChallenges(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.TrimPrefix(r.URL.Path, challengesPath), "/")
	switch {
	case len(parts) == 1:
		s.handleChallengeDetail(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "solution":
		s.handleSolution(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "solutions":
		s.handleSolutions(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "save":
		s.handleSave(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleChallengeDetail(w http.ResponseWriter, r *http.Request, uuid string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	ch, err := s.cfg.Store.Challenge(uuid)
	switch {
	case errors.Is(err, challenge.ErrChallengeNotFound):
		writeError(w, http.StatusNotFound, "challenge not found")
	case err != nil:
		log.Errorf("Failed to load challenge %s: %v", uuid, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	default:
		writeJSON(w, http.StatusOK, ch)
	}
}

func (s *Server) handleSolution(w http.ResponseWriter, r *http.Request, uuid string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req solutionRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	// Resubmitting the exact same key for the same challenge within the
	// cache window is rejected without touching the store.
	replayKey := uuid + "|" + strings.ToLower(req.PublicKey)
	if s.replayCache.Contains(replayKey) {
		writeError(w, http.StatusConflict,
			"a solution for this key was already submitted")
		return
	}

	sol, err := s.cfg.Store.AddSolution(uuid, req.PublicKey, req.Signature)
	switch {
	case errors.Is(err, challenge.ErrChallengeNotFound):
		writeError(w, http.StatusNotFound, "challenge not found")
	case errors.Is(err, challenge.ErrChallengeInactive):
		writeError(w, http.StatusForbidden, "challenge is not active")
	case err != nil && isSubmissionError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		log.Errorf("Failed to store solution for %s: %v", uuid, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	default:
		s.replayCache.Add(replayKey)
		writeJSON(w, http.StatusCreated, sol)
	}
}

func (s *Server) handleSolutions(w http.ResponseWriter, r *http.Request, uuid string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	solutions, err := s.cfg.Store.Solutions(uuid)
	switch {
	case errors.Is(err, challenge.ErrChallengeNotFound):
		writeError(w, http.StatusNotFound, "challenge not found")
	case err != nil:
		log.Errorf("Failed to list solutions for %s: %v", uuid, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	default:
		if solutions == nil {
			solutions = []*challenge.Solution{}
		}
		writeJSON(w, http.StatusOK, solutions)
	}
}

// handleSave stores an exploration waypoint.  Unlike solutions, saves are
// accepted for inactive challenges.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request, uuid string) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req saveRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	save, err := s.cfg.Store.AddSave(uuid, req.PublicKey, req.Label)
	switch {
	case errors.Is(err, challenge.ErrChallengeNotFound):
		writeError(w, http.StatusNotFound, "challenge not found")
	case err != nil && isSubmissionError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		log.Errorf("Failed to store save for %s: %v", uuid, err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	default:
		writeJSON(w, http.StatusCreated, save)
	}
}
