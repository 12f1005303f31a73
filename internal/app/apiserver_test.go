package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/samvad-hq/jsonfetch/internal/config"
	"github.com/samvad-hq/jsonfetch/pkg/publishers"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestAPIServerSeedsAndPublishes(t *testing.T) {
	var (
		mu     sync.Mutex
		events []publishers.Event
	)
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var evt publishers.Event
		if err := json.NewDecoder(r.Body).Decode(&evt); err != nil {
			t.Errorf("decode event: %v", err)
		}
		mu.Lock()
		events = append(events, evt)
		mu.Unlock()
	}))
	defer sink.Close()

	dir := t.TempDir()
	cfg := &config.Config{
		AppName:      "jsonfetch",
		Env:          config.EnvTesting,
		HTTPAddr:     "127.0.0.1:0",
		MaxBodyBytes: 1 << 20,
		StorageType:  "bbolt",
		StoragePath:  filepath.Join(dir, "examples.db"),
		SeedFile: writeFile(t, dir, "examples.yaml", `
examples:
  - name: Example 1
    description: This is example 1
`),
		PublishersFile: writeFile(t, dir, "publishers.yaml", `
publishers:
  - id: sink
    type: http
    http:
      url: `+sink.URL+`
`),
	}

	a, err := NewAPIServer(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewAPIServer: %v", err)
	}
	defer a.close()

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/examples/1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("seeded example missing: %d %s", rec.Code, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/api/examples", strings.NewReader(`{"name":"n","description":"d"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 || events[0].Action != publishers.ActionCreated || events[0].Example.ID != 2 {
		t.Fatalf("sink events = %#v", events)
	}
}

func TestAPIServerRejectsBadPublishersFile(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Env:            config.EnvTesting,
		HTTPAddr:       "127.0.0.1:0",
		MaxBodyBytes:   1 << 20,
		StorageType:    "memory",
		PublishersFile: writeFile(t, dir, "publishers.yaml", "publishers:\n  - id: x\n    type: http\n"),
	}
	if _, err := NewAPIServer(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for http publisher without url")
	}
}

func TestAPIServerRunStopsOnCancel(t *testing.T) {
	cfg := &config.Config{
		Env:          config.EnvTesting,
		HTTPAddr:     "127.0.0.1:0",
		MaxBodyBytes: 1 << 20,
		StorageType:  "memory",
	}
	a, err := NewAPIServer(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewAPIServer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
