// Copyright 2025, the aCisDsec contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Dhousefe/aCisDsec/server/request_context"
)

// maxBodyBytes bounds request bodies; markup itself is capped far lower.
const maxBodyBytes = 1 << 20

var (
	errBadJSON    = errors.New("request body is not valid JSON")
	errBadActorID = errors.New("actor id must be an integer")
)

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	return nil
}

// readJSON decodes the request body into v, rejecting unknown fields.
func readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return NewStatusError(http.StatusBadRequest, fmt.Errorf("%w: %w", errBadJSON, err))
	}

	return nil
}

// actorID parses the {id} path value and records it for the request log.
func actorID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return 0, NewStatusError(http.StatusBadRequest, errBadActorID)
	}

	request_context.FromRequest(r).Actor = &id

	return id, nil
}
