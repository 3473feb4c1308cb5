// Package store provides the profile store gateway: CRUD access to the
// row store holding one profile per derived identifier, behind a single
// interface with a remote (Supabase REST) and a local (sqlite) backend.
package store

import (
	"context"
	"errors"
	"fmt"

	"celebration/internal/celebration"
	"celebration/internal/models"
)

var (
	// ErrNotFound is returned when no row exists for the given profile id.
	ErrNotFound = errors.New("profile not found")

	// ErrNotConfigured is returned by the remote backend when its
	// credentials are missing. It surfaces as a configuration error (500)
	// at the API boundary, not as a startup failure.
	ErrNotConfigured = errors.New("missing store credentials: set SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY")
)

// UpsertParams carries the full row written by UpsertProfile. A nil Data
// seeds the profile with the default document.
type UpsertParams struct {
	ProfileID string
	Name      string
	Birthday  string
	Data      *celebration.Data
}

// ProfileStore is the gateway the API layer talks to. A single failed call
// is a single failed operation: no backend retries.
type ProfileStore interface {
	// GetProfile returns the row for id, or ErrNotFound.
	GetProfile(ctx context.Context, id string) (*models.Profile, error)

	// UpsertProfile creates or replaces the row keyed by ProfileID. Calling
	// it twice with the same id never creates a duplicate row.
	UpsertProfile(ctx context.Context, params UpsertParams) (*models.Profile, error)

	// UpdateProfileData replaces the data document of an existing row, or
	// returns ErrNotFound when no row exists.
	UpdateProfileData(ctx context.Context, id string, data celebration.Data) (*models.Profile, error)
}

// RequestError carries a non-success response from the remote row store,
// preserved for diagnostics.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("store error (%d): %s", e.Status, e.Body)
}
