package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"celebration/internal/celebration"
	"celebration/internal/store"
)

type DataHandler struct {
	store store.ProfileStore
}

func NewDataHandler(profileStore store.ProfileStore) *DataHandler {
	return &DataHandler{store: profileStore}
}

type DataResponse struct {
	Data celebration.Data `json:"data"`
}

// GET /api/profile/data
func (h *DataHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := SessionClaims(r)
	if claims == nil {
		unauthorized(w)
		return
	}

	profile, err := h.store.GetProfile(r.Context(), claims.ProfileID)
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusOK, DataResponse{Data: celebration.Seed()})
		return
	}
	if err != nil {
		slog.Error("loading profile data", "error", err, "profile_id", claims.ProfileID)
		internalError(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, DataResponse{Data: celebration.Normalize(profile.Data)})
}

type writeDataRequest struct {
	Data json.RawMessage `json:"data"`
}

// PUT /api/profile/data
//
// The document is replaced wholesale: last write wins, nothing merges.
func (h *DataHandler) Put(w http.ResponseWriter, r *http.Request) {
	claims := SessionClaims(r)
	if claims == nil {
		unauthorized(w)
		return
	}

	var req writeDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "Invalid data payload.")
		return
	}

	raw := bytes.TrimSpace(req.Data)
	if len(raw) == 0 || raw[0] != '{' {
		badRequest(w, "Invalid data payload.")
		return
	}

	var doc celebration.Data
	if err := json.Unmarshal(raw, &doc); err != nil {
		badRequest(w, "Invalid data payload.")
		return
	}
	doc = celebration.Normalize(doc)

	updated, err := h.store.UpdateProfileData(r.Context(), claims.ProfileID, doc)
	if errors.Is(err, store.ErrNotFound) {
		// No row came back; echo the accepted document as best-effort
		// confirmation.
		writeJSON(w, http.StatusOK, DataResponse{Data: doc})
		return
	}
	if err != nil {
		slog.Error("saving profile data", "error", err, "profile_id", claims.ProfileID)
		internalError(w, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, DataResponse{Data: updated.Data})
}
