package api

import (
	"context"
	"net/http"

	"celebration/internal/session"
)

type contextKey string

const claimsKey contextKey = "sessionClaims"

type SessionMiddleware struct {
	codec *session.Codec
}

func NewSessionMiddleware(codec *session.Codec) *SessionMiddleware {
	return &SessionMiddleware{codec: codec}
}

// RequireSession rejects requests without a valid birthday_session cookie.
// A missing cookie, a tampered token and a token signed under another
// secret all look the same from here: 401.
func (m *SessionMiddleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := readSession(r, m.codec)
		if !ok {
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// readSession extracts and verifies the session cookie. "Not logged in" is
// a normal state for the endpoints that call this directly.
func readSession(r *http.Request, codec *session.Codec) (*session.Claims, bool) {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil {
		return nil, false
	}
	return codec.Verify(cookie.Value)
}

// SessionClaims returns the claims attached by RequireSession.
func SessionClaims(r *http.Request) *session.Claims {
	if claims, ok := r.Context().Value(claimsKey).(*session.Claims); ok {
		return claims
	}
	return nil
}
