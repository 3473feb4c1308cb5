package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

// CookieName is the fixed name of the session cookie.
const CookieName = "birthday_session"

// ErrNoSecret is returned by Issue when no signing secret is configured.
var ErrNoSecret = errors.New("session secret is not configured")

// Claims is the plaintext payload embedded in the session token. The token
// is the session: there is no server-side session table, and no expiry
// claim lives inside the token; the cookie's max-age is the only lifetime
// control.
type Claims struct {
	ProfileID string `json:"profileId"`
	Name      string `json:"name"`
	Birthday  string `json:"birthday"`
}

// Codec issues and verifies tokens of the form
// base64url(JSON(claims)) + "." + base64url(HMAC-SHA256(secret, body)).
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Ready reports whether a signing secret is configured. Callers must not
// issue tokens when it returns false.
func (c *Codec) Ready() bool {
	return len(c.secret) > 0
}

// Issue signs claims into a compact bearer token.
func (c *Codec) Issue(claims Claims) (string, error) {
	if !c.Ready() {
		return "", ErrNoSecret
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	body := base64.RawURLEncoding.EncodeToString(payload)
	return body + "." + c.sign(body), nil
}

// Verify checks the token's signature and decodes its claims. Any missing
// segment, malformed base64 or JSON, or signature mismatch yields
// (nil, false); with no secret configured every token is invalid.
func (c *Codec) Verify(token string) (*Claims, bool) {
	if token == "" || !c.Ready() {
		return nil, false
	}

	body, signature, found := strings.Cut(token, ".")
	if !found || body == "" || signature == "" {
		return nil, false
	}

	expected := c.sign(body)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return nil, false
	}

	payload, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return nil, false
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, false
	}

	return &claims, true
}

func (c *Codec) sign(body string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(body))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
