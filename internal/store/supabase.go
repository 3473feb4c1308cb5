package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"celebration/internal/celebration"
	"celebration/internal/models"
)

const profilesTable = "birthday_profiles"

// profileRow mirrors the row store's column names.
type profileRow struct {
	ProfileID string           `json:"profile_id"`
	Name      string           `json:"name"`
	Birthday  string           `json:"birthday"`
	Data      celebration.Data `json:"data"`
}

// SupabaseStore talks to a Supabase project's PostgREST endpoint with the
// service-role key. Rows live in the birthday_profiles table.
type SupabaseStore struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

func NewSupabaseStore(baseURL, serviceKey string) *SupabaseStore {
	return &SupabaseStore{
		baseURL:    baseURL,
		serviceKey: serviceKey,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *SupabaseStore) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	query := url.Values{
		"profile_id": {"eq." + id},
		"select":     {"profile_id,name,birthday,data"},
		"limit":      {"1"},
	}

	rows, err := s.request(ctx, http.MethodGet, query, "", nil)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	return rows[0].toProfile(), nil
}

func (s *SupabaseStore) UpsertProfile(ctx context.Context, params UpsertParams) (*models.Profile, error) {
	data := celebration.Seed()
	if params.Data != nil {
		data = *params.Data
	}

	body := []profileRow{{
		ProfileID: params.ProfileID,
		Name:      params.Name,
		Birthday:  params.Birthday,
		Data:      data,
	}}

	query := url.Values{"on_conflict": {"profile_id"}}
	rows, err := s.request(ctx, http.MethodPost, query, "resolution=merge-duplicates,return=representation", body)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &RequestError{Status: http.StatusOK, Body: "upsert returned no representation"}
	}

	return rows[0].toProfile(), nil
}

func (s *SupabaseStore) UpdateProfileData(ctx context.Context, id string, data celebration.Data) (*models.Profile, error) {
	query := url.Values{"profile_id": {"eq." + id}}
	body := map[string]celebration.Data{"data": data}

	rows, err := s.request(ctx, http.MethodPatch, query, "return=representation", body)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	return rows[0].toProfile(), nil
}

// request performs one call against the profiles table. Non-2xx responses
// come back as a RequestError carrying the upstream status and body; there
// are no retries.
func (s *SupabaseStore) request(ctx context.Context, method string, query url.Values, prefer string, body any) ([]profileRow, error) {
	if s.baseURL == "" || s.serviceKey == "" {
		return nil, ErrNotConfigured
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", s.baseURL, profilesTable, query.Encode())
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("building store request: %w", err)
	}

	req.Header.Set("apikey", s.serviceKey)
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)
	req.Header.Set("Content-Type", "application/json")
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling store: %w", err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading store response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &RequestError{Status: res.StatusCode, Body: string(resBody)}
	}

	if res.StatusCode == http.StatusNoContent || len(resBody) == 0 {
		return nil, nil
	}

	var rows []profileRow
	if err := json.Unmarshal(resBody, &rows); err != nil {
		return nil, fmt.Errorf("decoding store response: %w", err)
	}

	return rows, nil
}

func (r *profileRow) toProfile() *models.Profile {
	return &models.Profile{
		ProfileID: r.ProfileID,
		Name:      r.Name,
		Birthday:  r.Birthday,
		Data:      r.Data,
	}
}
