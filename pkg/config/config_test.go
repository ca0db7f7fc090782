package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Dir   string `yaml:"dir"`
	Level int    `yaml:"level"`
}

func (s *sample) Validate() error {
	if s.Level < 0 {
		return errors.New("level must not be negative")
	}
	return nil
}

func TestLoadOrCreate_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := &sample{Dir: "~/notes", Level: 2}

	res, err := LoadOrCreate(path, cfg)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if res.Status != Created {
		t.Errorf("status = %v, want created", res.Status)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	var back sample
	if err := Load(path, &back); err != nil {
		t.Fatalf("Load written file: %v (%s)", err, data)
	}
	if back != *cfg {
		t.Errorf("written config = %+v, want %+v", back, *cfg)
	}
}

func TestLoadOrCreate_LoadsOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("dir: /srv/notes\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := &sample{Dir: "default", Level: 3}
	res, err := LoadOrCreate(path, cfg)
	if err != nil {
		t.Fatalf("LoadOrCreate: %v", err)
	}
	if res.Status != Loaded || res.ParseErr != nil {
		t.Errorf("result = %+v, want loaded", res)
	}
	if cfg.Dir != "/srv/notes" || cfg.Level != 3 {
		t.Errorf("cfg = %+v, want dir from file and level from defaults", *cfg)
	}
}

func TestLoadOrCreate_MalformedFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("dir: [unterminated\n  : {{{"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := &sample{Dir: "default", Level: 1}
	res, err := LoadOrCreate(path, cfg)
	if err != nil {
		t.Fatalf("malformed config should not fail: %v", err)
	}
	if res.Status != Defaulted || res.ParseErr == nil {
		t.Errorf("result = %+v, want defaulted with a parse error", res)
	}
	if cfg.Dir != "default" || cfg.Level != 1 {
		t.Errorf("defaults should be kept, got %+v", *cfg)
	}
}

func TestLoadOrCreate_ValidationFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("level: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadOrCreate(path, &sample{})
	if err == nil {
		t.Error("expected validation error")
	}
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("LINKORG_TEST_DIR", "/from/env")
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("dir: ${LINKORG_TEST_DIR}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	var cfg sample
	if err := Load(path, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dir != "/from/env" {
		t.Errorf("dir = %q, want /from/env", cfg.Dir)
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cases := map[string]string{
		"~":            home,
		"~/notes":      filepath.Join(home, "notes"),
		"~/a/b":        filepath.Join(home, "a", "b"),
		"/abs/path":    "/abs/path",
		"relative/dir": "relative/dir",
		"~user/notes":  "~user/notes",
		"":             "",
	}
	for in, want := range cases {
		got, err := ExpandHome(in)
		if err != nil {
			t.Errorf("ExpandHome(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ExpandHome(%q) = %q, want %q", in, got, want)
		}
	}
}
