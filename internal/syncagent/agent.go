// Package syncagent is the client-side peer of the data API: it holds the
// celebration document in memory, mirrors every mutation to a local cache
// file immediately, and pushes the settled state to the server after a
// short quiet window. The server copy wins on login; after that the last
// write to land wins outright.
package syncagent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"path/filepath"
	"sync"
	"time"

	"celebration/internal/celebration"
	"celebration/internal/models"
)

// Status is the sync indicator surfaced to the user. It never blocks local
// edits.
type Status string

const (
	StatusIdle   Status = "idle"
	StatusSaving Status = "saving"
	StatusSaved  Status = "saved"
	StatusError  Status = "error"
)

// DefaultDebounce is the quiet window collapsing a burst of edits into one
// write.
const DefaultDebounce = 500 * time.Millisecond

type Agent struct {
	baseURL   string
	cachePath string
	client    *http.Client
	debounce  time.Duration
	onStatus  func(Status)

	mu     sync.Mutex
	doc    celebration.Data
	timer  *time.Timer
	status Status
}

type Option func(*Agent)

// WithDebounce overrides the quiet window (tests use a short one).
func WithDebounce(d time.Duration) Option {
	return func(a *Agent) { a.debounce = d }
}

// WithStatusFunc registers a status observer. Calls arrive from the timer
// goroutine as well as from Update.
func WithStatusFunc(fn func(Status)) Option {
	return func(a *Agent) { a.onStatus = fn }
}

func New(baseURL, cachePath string, opts ...Option) (*Agent, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	a := &Agent{
		baseURL:   baseURL,
		cachePath: cachePath,
		client:    &http.Client{Jar: jar, Timeout: 15 * time.Second},
		debounce:  DefaultDebounce,
		doc:       celebration.Seed(),
		status:    StatusIdle,
	}
	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Load restores the document from the local cache, without waiting on the
// network. A missing cache file leaves the seed document in place.
func (a *Agent) Load() error {
	raw, err := os.ReadFile(a.cachePath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading cache: %w", err)
	}

	var doc celebration.Data
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("decoding cache: %w", err)
	}

	a.mu.Lock()
	a.doc = celebration.Normalize(doc)
	a.mu.Unlock()

	return nil
}

// Login authenticates against the server and then pulls the authoritative
// copy, overwriting memory and cache wholesale.
func (a *Agent) Login(ctx context.Context, name, birthday string) (*models.PublicProfile, error) {
	payload, err := json.Marshal(map[string]string{"name": name, "birthday": birthday})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/auth/login", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling login: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("login failed (%d): %s", res.StatusCode, body)
	}

	var loginRes struct {
		Profile *models.PublicProfile `json:"profile"`
	}
	if err := json.NewDecoder(res.Body).Decode(&loginRes); err != nil {
		return nil, fmt.Errorf("decoding login response: %w", err)
	}

	if err := a.Refresh(ctx); err != nil {
		return nil, err
	}

	return loginRes.Profile, nil
}

// Refresh fetches the server document and overwrites the local state with
// it. Server wins: no merge.
func (a *Agent) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/api/profile/data", nil)
	if err != nil {
		return err
	}

	res, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching data: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("fetching data failed (%d): %s", res.StatusCode, body)
	}

	var dataRes struct {
		Data celebration.Data `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&dataRes); err != nil {
		return fmt.Errorf("decoding data response: %w", err)
	}

	a.mu.Lock()
	a.doc = celebration.Normalize(dataRes.Data)
	err = a.writeCacheLocked()
	a.mu.Unlock()

	return err
}

// Data returns a snapshot of the current document.
func (a *Agent) Data() celebration.Data {
	a.mu.Lock()
	defer a.mu.Unlock()
	return cloneData(a.doc)
}

// Update applies a mutation, persists it to the cache synchronously, and
// restarts the debounce timer. Only the final state of a burst is ever
// transmitted: each new mutation cancels the pending push.
func (a *Agent) Update(mutate func(*celebration.Data)) error {
	a.mu.Lock()
	mutate(&a.doc)
	a.doc = celebration.Normalize(a.doc)
	err := a.writeCacheLocked()

	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.debounce, a.push)
	a.mu.Unlock()

	return err
}

// Flush pushes the pending state now instead of waiting out the debounce.
// If the timer already fired the push is on its way; flushing again would
// transmit the same document twice, so it only acts when Stop wins the
// race against the timer.
func (a *Agent) Flush() {
	a.mu.Lock()
	pending := false
	if a.timer != nil {
		pending = a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()

	if pending {
		a.push()
	}
}

// Close stops the pending push, if any. Local state stays in the cache.
func (a *Agent) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// Status returns the current sync indicator state.
func (a *Agent) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

// push snapshots the document and transmits it. A failed write flips the
// indicator to error and leaves the local copy as source of truth until
// the next successful push.
func (a *Agent) push() {
	a.mu.Lock()
	snapshot := cloneData(a.doc)
	a.mu.Unlock()

	a.setStatus(StatusSaving)

	if err := a.putData(snapshot); err != nil {
		a.setStatus(StatusError)
		return
	}

	a.setStatus(StatusSaved)
}

func (a *Agent) putData(doc celebration.Data) error {
	payload, err := json.Marshal(map[string]celebration.Data{"data": doc})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPut, a.baseURL+"/api/profile/data", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("pushing data: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("pushing data failed (%d): %s", res.StatusCode, body)
	}

	return nil
}

func (a *Agent) setStatus(s Status) {
	a.mu.Lock()
	a.status = s
	fn := a.onStatus
	a.mu.Unlock()

	if fn != nil {
		fn(s)
	}
}

// writeCacheLocked persists the document atomically: temp file, then
// rename. Caller holds the mutex.
func (a *Agent) writeCacheLocked() error {
	if err := os.MkdirAll(filepath.Dir(a.cachePath), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	payload, err := json.Marshal(a.doc)
	if err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}

	tmp := a.cachePath + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := os.Rename(tmp, a.cachePath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing cache: %w", err)
	}

	return nil
}

func cloneData(d celebration.Data) celebration.Data {
	raw, err := json.Marshal(d)
	if err != nil {
		return d
	}
	var out celebration.Data
	if err := json.Unmarshal(raw, &out); err != nil {
		return d
	}
	return out
}
