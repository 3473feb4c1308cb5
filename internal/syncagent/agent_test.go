package syncagent

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"celebration/internal/celebration"
)

// recordingServer captures data writes so tests can count pushes.
type recordingServer struct {
	mu   sync.Mutex
	puts []celebration.Data
	fail bool
}

func (s *recordingServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/profile/data", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.fail {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":"store failure"}`))
			return
		}

		var req struct {
			Data celebration.Data `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.puts = append(s.puts, req.Data)
		json.NewEncoder(w).Encode(req)
	})
	mux.HandleFunc("GET /api/profile/data", func(w http.ResponseWriter, r *http.Request) {
		doc := celebration.Seed()
		doc.Affirmations = []string{"from the server"}
		json.NewEncoder(w).Encode(map[string]celebration.Data{"data": doc})
	})
	return mux
}

func (s *recordingServer) putCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.puts)
}

func newTestAgent(t *testing.T, baseURL string, opts ...Option) *Agent {
	t.Helper()

	cachePath := filepath.Join(t.TempDir(), "celebration.json")
	agent, err := New(baseURL, cachePath, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(agent.Close)

	return agent
}

func TestLoadWithoutCacheKeepsSeed(t *testing.T) {
	agent := newTestAgent(t, "http://unused.invalid")

	if err := agent.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	doc := agent.Data()
	if len(doc.Affirmations) != len(celebration.Seed().Affirmations) {
		t.Fatalf("affirmations = %+v, want seed", doc.Affirmations)
	}
}

func TestUpdateWritesCacheSynchronously(t *testing.T) {
	agent := newTestAgent(t, "http://unused.invalid", WithDebounce(time.Hour))

	err := agent.Update(func(d *celebration.Data) {
		d.Wishes = append(d.Wishes, celebration.Wish{ID: "w1", Message: "hi", Sender: "sam"})
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	raw, err := os.ReadFile(agent.cachePath)
	if err != nil {
		t.Fatalf("reading cache: %v", err)
	}

	var cached celebration.Data
	if err := json.Unmarshal(raw, &cached); err != nil {
		t.Fatalf("decoding cache: %v", err)
	}
	if len(cached.Wishes) != 1 || cached.Wishes[0].Message != "hi" {
		t.Fatalf("cached wishes = %+v, want the new wish", cached.Wishes)
	}
}

func TestLoadRestoresAndNormalizesCache(t *testing.T) {
	agent := newTestAgent(t, "http://unused.invalid")

	// A legacy partial cache: only wishes present.
	if err := os.WriteFile(agent.cachePath, []byte(`{"wishes":[{"id":"w1","message":"old"}]}`), 0o644); err != nil {
		t.Fatalf("seeding cache: %v", err)
	}

	if err := agent.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	doc := agent.Data()
	if len(doc.Wishes) != 1 || doc.Wishes[0].Message != "old" {
		t.Fatalf("wishes = %+v, want the cached wish", doc.Wishes)
	}
	if doc.Memories == nil || doc.FunMoments == nil {
		t.Fatal("partial cache not normalized to the full shape")
	}
}

func TestDebounceCoalescesBurstsIntoOnePush(t *testing.T) {
	srv := &recordingServer{}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	agent := newTestAgent(t, ts.URL, WithDebounce(80*time.Millisecond))

	for _, message := range []string{"first", "second", "third"} {
		err := agent.Update(func(d *celebration.Data) {
			d.Affirmations = []string{message}
		})
		if err != nil {
			t.Fatalf("Update(%q) error = %v", message, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	deadline := time.After(2 * time.Second)
	for srv.putCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("no push arrived before the deadline")
		case <-time.After(10 * time.Millisecond):
		}
	}

	// Allow a stray second push to surface before asserting.
	time.Sleep(200 * time.Millisecond)

	srv.mu.Lock()
	defer srv.mu.Unlock()
	if len(srv.puts) != 1 {
		t.Fatalf("pushes = %d, want exactly 1", len(srv.puts))
	}
	if got := srv.puts[0].Affirmations; len(got) != 1 || got[0] != "third" {
		t.Fatalf("pushed affirmations = %+v, want the final state only", got)
	}
}

func TestStatusTransitionsOnSuccessfulPush(t *testing.T) {
	srv := &recordingServer{}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	var (
		mu       sync.Mutex
		statuses []Status
	)
	agent := newTestAgent(t, ts.URL,
		WithDebounce(20*time.Millisecond),
		WithStatusFunc(func(s Status) {
			mu.Lock()
			statuses = append(statuses, s)
			mu.Unlock()
		}),
	)

	if err := agent.Update(func(d *celebration.Data) {
		d.FunMoments = []string{"confetti"}
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	deadline := time.After(2 * time.Second)
	for agent.Status() != StatusSaved {
		select {
		case <-deadline:
			t.Fatalf("status = %q, want %q", agent.Status(), StatusSaved)
		case <-time.After(10 * time.Millisecond):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(statuses) < 2 || statuses[0] != StatusSaving || statuses[len(statuses)-1] != StatusSaved {
		t.Fatalf("statuses = %v, want saving then saved", statuses)
	}
}

func TestFailedPushSetsErrorAndKeepsLocalState(t *testing.T) {
	srv := &recordingServer{fail: true}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	agent := newTestAgent(t, ts.URL, WithDebounce(20*time.Millisecond))

	if err := agent.Update(func(d *celebration.Data) {
		d.Affirmations = []string{"still here"}
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	deadline := time.After(2 * time.Second)
	for agent.Status() != StatusError {
		select {
		case <-deadline:
			t.Fatalf("status = %q, want %q", agent.Status(), StatusError)
		case <-time.After(10 * time.Millisecond):
		}
	}

	doc := agent.Data()
	if len(doc.Affirmations) != 1 || doc.Affirmations[0] != "still here" {
		t.Fatalf("local affirmations = %+v, want unchanged after failed push", doc.Affirmations)
	}
}

func TestFlushPushesImmediately(t *testing.T) {
	srv := &recordingServer{}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	agent := newTestAgent(t, ts.URL, WithDebounce(time.Hour))

	if err := agent.Update(func(d *celebration.Data) {
		d.Affirmations = []string{"right now"}
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	agent.Flush()

	if got := srv.putCount(); got != 1 {
		t.Fatalf("pushes after Flush() = %d, want 1", got)
	}
}

func TestFlushAfterTimerFiredDoesNotPushAgain(t *testing.T) {
	srv := &recordingServer{}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	agent := newTestAgent(t, ts.URL, WithDebounce(10*time.Millisecond))

	if err := agent.Update(func(d *celebration.Data) {
		d.Affirmations = []string{"once only"}
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	deadline := time.After(2 * time.Second)
	for srv.putCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("no push arrived before the deadline")
		case <-time.After(10 * time.Millisecond):
		}
	}

	agent.Flush()
	time.Sleep(100 * time.Millisecond)

	if got := srv.putCount(); got != 1 {
		t.Fatalf("pushes after late Flush() = %d, want 1", got)
	}
}
