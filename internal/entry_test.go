package internal

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testConfig(t *testing.T, withIndex bool) *Config {
	t.Helper()
	cfg := NewDefaultConfig()
	cfg.Notes.Dir = filepath.Join(t.TempDir(), "notes")
	cfg.SQLite.Path = ""
	if withIndex {
		cfg.SQLite.Path = filepath.Join(t.TempDir(), "data", "index.db")
	}
	return cfg
}

func TestOpenRequiresConfig(t *testing.T) {
	if _, err := Open(); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestOpenCreatesDirectories(t *testing.T) {
	cfg := testConfig(t, true)
	app, err := Open(WithConfig(cfg), WithLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer app.Close()

	if _, err := os.Stat(cfg.Notes.Dir); err != nil {
		t.Errorf("notes dir not created: %v", err)
	}
	if _, err := os.Stat(cfg.SQLite.Path); err != nil {
		t.Errorf("index not created: %v", err)
	}
	if app.DB == nil || !app.Service.IndexEnabled() {
		t.Error("index should be enabled")
	}
}

func TestOpenWithoutIndex(t *testing.T) {
	app, err := Open(WithConfig(testConfig(t, false)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer app.Close()
	if app.DB != nil || app.Service.IndexEnabled() {
		t.Error("index should be disabled for an empty sqlite path")
	}
}

func TestInitialSync(t *testing.T) {
	cfg := testConfig(t, true)
	if err := os.MkdirAll(cfg.Notes.Dir, 0o755); err != nil {
		t.Fatal(err)
	}
	note := "* Top\n[[https://go.dev][Go]] -- after 1\n"
	if err := os.WriteFile(filepath.Join(cfg.Notes.Dir, "a.org"), []byte(note), 0o644); err != nil {
		t.Fatal(err)
	}

	var logs bytes.Buffer
	app, err := Open(WithConfig(cfg), WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer app.Close()

	app.initialSync(context.Background())
	run, err := app.DB.LastRun()
	if err != nil || run == nil || run.Indexed != 1 {
		t.Fatalf("LastRun = %+v, %v", run, err)
	}
	if !strings.Contains(logs.String(), "sync: done") {
		t.Errorf("logs = %s", logs.String())
	}
}

func TestHandlerHealthAndAPI(t *testing.T) {
	cfg := testConfig(t, true)
	cfg.Auth = AuthConfig{Mode: AuthModeToken, Token: "tok"}
	app, err := Open(WithConfig(cfg), WithLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer app.Close()
	h := app.Handler()

	for _, p := range []string{"/health/live", "/health/ready"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		if w.Code != http.StatusOK {
			t.Errorf("%s = %d", p, w.Code)
		}
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated /api/config = %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/config", nil)
	req.Header.Set("Authorization", "Bearer tok")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "notes_dir") {
		t.Errorf("/api/config = %d %s", w.Code, w.Body.String())
	}
}

func TestReindexPublishesEvents(t *testing.T) {
	cfg := testConfig(t, true)
	if err := os.MkdirAll(cfg.Notes.Dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Notes.Dir, "a.md"), []byte("# A\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	app, err := Open(WithConfig(cfg), WithLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer app.Close()

	ch := app.Events.Subscribe()
	defer app.Events.Unsubscribe(ch)

	if _, err := app.Service.Reindex(context.Background()); err != nil {
		t.Fatalf("Reindex: %v", err)
	}

	var got []string
	timeout := time.After(time.Second)
	for len(got) < 2 {
		select {
		case msg := <-ch:
			got = append(got, string(msg))
		case <-timeout:
			t.Fatalf("timed out, got %q", got)
		}
	}
	if !strings.HasPrefix(got[0], "event: index.synced\n") || !strings.Contains(got[0], `"indexed":["a.md"]`) {
		t.Errorf("first event = %q", got[0])
	}
	if !strings.HasPrefix(got[1], "event: documents.changed\n") {
		t.Errorf("second event = %q", got[1])
	}
}
