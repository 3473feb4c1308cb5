package models

import "celebration/internal/celebration"

// Profile is the durable per-person record, keyed by the identifier derived
// from (name, birthday). The id is immutable once created; the data
// document is overwritten wholesale on each save.
type Profile struct {
	ProfileID string           `json:"profileId"`
	Name      string           `json:"name"`
	Birthday  string           `json:"birthday"`
	Data      celebration.Data `json:"data"`
}

// PublicProfile is the subset of Profile returned by the login and session
// endpoints. The raw token never appears in a response body, only in the
// cookie.
type PublicProfile struct {
	Name      string `json:"name"`
	Birthday  string `json:"birthday"`
	ProfileID string `json:"profileId"`
}
