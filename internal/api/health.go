package api

import (
	"context"
	"net/http"

	"celebration/internal/store"
)

type HealthHandler struct {
	store store.ProfileStore
}

func NewHealthHandler(profileStore store.ProfileStore) *HealthHandler {
	return &HealthHandler{store: profileStore}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	storeStatus := "ok"
	status := http.StatusOK

	// Only backends with a cheap liveness probe are checked; the remote
	// REST backend is considered reachable until a request says otherwise.
	if pinger, ok := h.store.(interface{ Ping(context.Context) error }); ok {
		if err := pinger.Ping(r.Context()); err != nil {
			storeStatus = "error"
			status = http.StatusServiceUnavailable
		}
	}

	result := "ok"
	if status != http.StatusOK {
		result = "degraded"
	}

	writeJSON(w, status, map[string]any{
		"status": result,
		"checks": map[string]string{
			"store": storeStatus,
		},
	})
}
