package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"celebration/internal/models"
	"celebration/internal/session"
	"celebration/internal/store"
)

type AuthHandler struct {
	store         store.ProfileStore
	codec         *session.Codec
	cookieMaxAge  time.Duration
	secureCookies bool
}

func NewAuthHandler(profileStore store.ProfileStore, codec *session.Codec, cookieMaxAge time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		store:         profileStore,
		codec:         codec,
		cookieMaxAge:  cookieMaxAge,
		secureCookies: secureCookies,
	}
}

type LoginRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Birthday string `json:"birthday" validate:"required"`
}

type ProfileResponse struct {
	Profile *models.PublicProfile `json:"profile"`
}

type SessionResponse struct {
	Profile *session.Claims `json:"profile"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.codec.Ready() {
		internalError(w, "Missing server config. Set APP_SESSION_SECRET.")
		return
	}

	var req LoginRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	name := strings.TrimSpace(req.Name)
	birthday := strings.TrimSpace(req.Birthday)
	if name == "" || birthday == "" {
		badRequest(w, "Name and birthday are required.")
		return
	}
	if !birthdayPattern.MatchString(birthday) {
		badRequest(w, "Birthday must be in YYYY-MM-DD format.")
		return
	}

	profileID := session.DeriveProfileID(name, birthday)

	profile, err := h.store.GetProfile(r.Context(), profileID)
	if errors.Is(err, store.ErrNotFound) {
		profile, err = h.store.UpsertProfile(r.Context(), store.UpsertParams{
			ProfileID: profileID,
			Name:      name,
			Birthday:  birthday,
		})
	}
	if err != nil {
		slog.Error("login store error", "error", err, "profile_id", profileID)
		internalError(w, err.Error())
		return
	}

	token, err := h.codec.Issue(session.Claims{
		ProfileID: profile.ProfileID,
		Name:      profile.Name,
		Birthday:  profile.Birthday,
	})
	if err != nil {
		slog.Error("issuing session token", "error", err)
		internalError(w, "Failed to create session.")
		return
	}

	h.setSessionCookie(w, token, int(h.cookieMaxAge.Seconds()))

	writeJSON(w, http.StatusOK, ProfileResponse{
		Profile: &models.PublicProfile{
			Name:      profile.Name,
			Birthday:  profile.Birthday,
			ProfileID: profile.ProfileID,
		},
	})
}

// GET /api/auth/me
//
// "Not logged in" is a normal state, so this never errors: a missing or
// invalid cookie yields {"profile": null}.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, _ := readSession(r, h.codec)
	writeJSON(w, http.StatusOK, SessionResponse{Profile: claims})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.setSessionCookie(w, "", -1)
	writeJSON(w, http.StatusOK, SessionResponse{Profile: nil})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
