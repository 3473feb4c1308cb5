// Package session derives profile identities and signs the stateless
// session token carried in the birthday_session cookie.
package session

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// profileIDLength is the number of hex characters kept from the digest.
const profileIDLength = 32

// DeriveProfileID maps (name, birthday) onto a stable opaque identifier.
// The name is trimmed and lower-cased so capitalisation does not split a
// person across profiles; the birthday is used as the validated YYYY-MM-DD
// string. The pair is the de facto credential here: anyone who knows both
// resolves to the same profile. That is an accepted property of this page,
// not something to harden.
func DeriveProfileID(name, birthday string) string {
	normalized := strings.ToLower(strings.TrimSpace(name)) + "|" + birthday
	digest := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(digest[:])[:profileIDLength]
}
