package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	settings, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom on a missing file: %v", err)
	}
	if settings != Defaults() {
		t.Errorf("settings = %+v, want defaults", settings)
	}
}

func TestLoadFrom_OverridesAndBackfills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `api_base_url: https://api.example.test
page_size: 10
min_rows: 20
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	settings, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if settings.APIBaseURL != "https://api.example.test" {
		t.Errorf("APIBaseURL = %q, want override", settings.APIBaseURL)
	}
	if settings.PageSize != 10 {
		t.Errorf("PageSize = %d, want 10", settings.PageSize)
	}
	if settings.MinRows != 20 {
		t.Errorf("MinRows = %d, want 20", settings.MinRows)
	}

	// Fields the file does not mention keep their defaults.
	defaults := Defaults()
	if settings.MaxRetries != defaults.MaxRetries {
		t.Errorf("MaxRetries = %d, want default %d", settings.MaxRetries, defaults.MaxRetries)
	}
	if settings.MinCols != defaults.MinCols {
		t.Errorf("MinCols = %d, want default %d", settings.MinCols, defaults.MinCols)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("page_size: [not a number"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadFrom(path); err == nil {
		t.Error("invalid YAML should return an error")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	original := SessionFile
	SessionFile = filepath.Join(t.TempDir(), "session.json")
	t.Cleanup(func() { SessionFile = original })

	if got := LoadSession(); got.LastUsername != "" {
		t.Errorf("missing session file should load empty, got %+v", got)
	}

	if err := SaveSession(SessionState{LastUsername: "edamame"}); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if got := LoadSession(); got.LastUsername != "edamame" {
		t.Errorf("LastUsername = %q, want edamame", got.LastUsername)
	}
}
