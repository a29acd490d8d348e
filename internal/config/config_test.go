// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/gptchat-tui/internal/model"
	"github.com/jeranaias/gptchat-tui/internal/openai"
	"github.com/jeranaias/gptchat-tui/internal/prefs"
)

// =============================================================================
// APP CONFIG TESTS
// =============================================================================

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Request.TimeoutSecs != 60 {
		t.Errorf("TimeoutSecs = %d, want 60", cfg.Request.TimeoutSecs)
	}
	if cfg.Timeout() != 60*time.Second {
		t.Errorf("Timeout() = %v", cfg.Timeout())
	}
	if !cfg.Notifications.Enabled {
		t.Error("notifications should be enabled by default")
	}
}

func TestSaveAndLoadTOML(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()
	cfg.Request.TimeoutSecs = 15
	cfg.UI.Theme = "light"
	cfg.Notifications.Enabled = false

	if err := SaveTOML(cfg, PathIn(dir)); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	info, err := os.Stat(PathIn(dir))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 && os.PathSeparator == '/' {
		t.Errorf("config mode = %o, want 600", info.Mode().Perm())
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Request.TimeoutSecs != 15 || loaded.UI.Theme != "light" || loaded.Notifications.Enabled {
		t.Errorf("loaded config mismatch: %+v", loaded)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(PathIn(dir), []byte("[ui]\ntheme = \"dark\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("Theme = %q", cfg.UI.Theme)
	}
	if cfg.Request.TimeoutSecs != 60 || !cfg.UI.ShowTimestamps {
		t.Error("keys absent from the file should keep their defaults")
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(PathIn(dir), []byte("[request]\ntimeout_secs = -5\n"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(dir)
	if err == nil {
		t.Fatal("expected validation error")
	}
	var verrs ValidateErrors
	if !errors.As(err, &verrs) || verrs[0].Field != "request.timeout_secs" {
		t.Errorf("error = %v, want ValidateErrors for request.timeout_secs", err)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("GPTCHAT_TIMEOUT", "30")
	t.Setenv("GPTCHAT_THEME", "light")
	t.Setenv("GPTCHAT_NOTIFY", "false")
	t.Setenv("GPTCHAT_LOG_LEVEL", "debug")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Request.TimeoutSecs != 30 || cfg.UI.Theme != "light" || cfg.Notifications.Enabled || cfg.Log.Level != "debug" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadEnvFiles_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	env := "GPTCHAT_TEST_FROM_FILE=file\nGPTCHAT_TEST_PRESET=file\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GPTCHAT_TEST_PRESET", "shell")
	t.Setenv("GPTCHAT_TEST_FROM_FILE", "")
	os.Unsetenv("GPTCHAT_TEST_FROM_FILE")

	LoadEnvFiles(dir)

	if got := os.Getenv("GPTCHAT_TEST_FROM_FILE"); got != "file" {
		t.Errorf("GPTCHAT_TEST_FROM_FILE = %q, want file", got)
	}
	if got := os.Getenv("GPTCHAT_TEST_PRESET"); got != "shell" {
		t.Errorf("GPTCHAT_TEST_PRESET = %q, want shell", got)
	}
}

func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	if err := cfg.Set("request.timeout_secs", "42"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := cfg.Set("notifications.enabled", "no"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	v, err := cfg.Get("request.timeout_secs")
	if err != nil || v.(int) != 42 {
		t.Errorf("Get() = %v, %v", v, err)
	}
	if cfg.Notifications.Enabled {
		t.Error("notifications.enabled should be false")
	}

	for _, bad := range []string{"", "nope", "ui", "ui.theme.x"} {
		if _, err := cfg.Get(bad); err == nil {
			t.Errorf("Get(%q) expected error", bad)
		}
	}
	if err := cfg.Set("notifications.enabled", "maybe"); err == nil {
		t.Error("Set() with invalid bool should fail")
	}
}

func TestGetAllKeys(t *testing.T) {
	keys := GetAllKeys()
	joined := strings.Join(keys, ",")
	for _, want := range []string{"request.timeout_secs", "ui.theme", "log.level", "data.dir"} {
		if !strings.Contains(joined, want) {
			t.Errorf("GetAllKeys() missing %s", want)
		}
	}
	cfg := Default()
	for _, k := range keys {
		if _, err := cfg.Get(k); err != nil {
			t.Errorf("Get(%q) error = %v", k, err)
		}
	}
}

func TestConfig_DataDirAndLogPath(t *testing.T) {
	cfg := Default()
	if cfg.DataDir("/cfg") != "/cfg" {
		t.Errorf("DataDir() = %q", cfg.DataDir("/cfg"))
	}
	cfg.Data.Dir = "/data"
	if cfg.LogPath("/cfg") != filepath.Join("/data", "gptchat.log") {
		t.Errorf("LogPath() = %q", cfg.LogPath("/cfg"))
	}
}

// =============================================================================
// CLIENT SETTINGS TESTS
// =============================================================================

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings(prefs.NewMemoryStore())
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if s.HasAPIKey() {
		t.Error("no API key expected")
	}
	if s.Model != model.GPT35Turbo || s.MaxTokens != DefaultMaxTokens || s.APIURL != openai.DefaultBaseURL {
		t.Errorf("unexpected defaults: %+v", s)
	}
}

func TestSettings_RoundTripAsStrings(t *testing.T) {
	store := prefs.NewMemoryStore()
	want := ClientSettings{
		APIKey:      "sk-test",
		APIURL:      "https://example.test/v1",
		Model:       model.TextDavinci003,
		MaxTokens:   100,
		Temperature: 0.25,
		Echo:        true,
	}
	if err := SaveSettings(store, want); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}

	raw := map[string]string{
		prefs.KeyModel:       "text-davinci-003",
		prefs.KeyMaxTokens:   "100",
		prefs.KeyTemperature: "0.25",
		prefs.KeyEcho:        "true",
	}
	for key, value := range raw {
		if got := prefs.GetString(store, key, ""); got != value {
			t.Errorf("stored %s = %q, want %q", key, got, value)
		}
	}

	got, err := LoadSettings(store)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if got != want {
		t.Errorf("LoadSettings() = %+v, want %+v", got, want)
	}
}

func TestLoadSettings_InvalidValuesFallBack(t *testing.T) {
	store := prefs.NewMemoryStore()
	store.Put(prefs.KeyModel, "gpt-9")
	store.Put(prefs.KeyMaxTokens, "lots")
	store.Put(prefs.KeyTemperature, "7")

	s, err := LoadSettings(store)
	var verrs ValidateErrors
	if !errors.As(err, &verrs) || len(verrs) != 3 {
		t.Fatalf("error = %v, want 3 validation errors", err)
	}
	if s.Model != model.DefaultModel || s.MaxTokens != DefaultMaxTokens || s.Temperature != DefaultTemperature {
		t.Errorf("invalid values should fall back to defaults: %+v", s)
	}
}

func TestLoadSettings_NonFiniteTemperature(t *testing.T) {
	store := prefs.NewMemoryStore()
	store.Put(prefs.KeyTemperature, "NaN")

	s, err := LoadSettings(store)
	if err == nil {
		t.Fatal("LoadSettings() accepted NaN temperature")
	}
	if s.Temperature != DefaultTemperature {
		t.Errorf("Temperature = %v, want default %v", s.Temperature, DefaultTemperature)
	}
}

func TestLoadSettings_FloatMaxTokens(t *testing.T) {
	store := prefs.NewMemoryStore()
	store.Put(prefs.KeyMaxTokens, "256.0")
	s, err := LoadSettings(store)
	if err != nil || s.MaxTokens != 256 {
		t.Errorf("LoadSettings() = %d, %v", s.MaxTokens, err)
	}
}

func TestSetSetting(t *testing.T) {
	store := prefs.NewMemoryStore()

	tests := []struct {
		name, value string
		key, stored string
		wantErr     bool
	}{
		{"model", "GPT_3_5_TURBO", prefs.KeyModel, "gpt-3.5-turbo", false},
		{"max_tokens", " 300 ", prefs.KeyMaxTokens, "300", false},
		{"temperature", "1.50", prefs.KeyTemperature, "1.5", false},
		{"echo", "yes", prefs.KeyEcho, "true", false},
		{"api-url", "https://proxy.test/v1", prefs.KeyAPIURL, "https://proxy.test/v1", false},
		{"api-url", "ftp://nope", "", "", true},
		{"max-tokens", "0", "", "", true},
		{"temperature", "-1", "", "", true},
		{"temperature", "NaN", "", "", true},
		{"temperature", "+Inf", "", "", true},
		{"max-tokens", "NaN", "", "", true},
		{"colour", "red", "", "", true},
	}

	for _, tc := range tests {
		err := SetSetting(store, tc.name, tc.value)
		if (err != nil) != tc.wantErr {
			t.Errorf("SetSetting(%q, %q) error = %v, wantErr %v", tc.name, tc.value, err, tc.wantErr)
			continue
		}
		if tc.wantErr {
			continue
		}
		if got := prefs.GetString(store, tc.key, ""); got != tc.stored {
			t.Errorf("SetSetting(%q) stored %q, want %q", tc.name, got, tc.stored)
		}
	}
}

func TestClientSettings_EnvOverrides(t *testing.T) {
	t.Setenv("GPTCHAT_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("GPTCHAT_MODEL", "text-davinci-003")

	s := DefaultSettings()
	s.ApplyEnvOverrides()
	if s.APIKey != "sk-env" || s.Model != model.TextDavinci003 {
		t.Errorf("env overrides not applied: %+v", s)
	}

	stored := DefaultSettings()
	stored.APIKey = "sk-stored"
	stored.ApplyEnvOverrides()
	if stored.APIKey != "sk-stored" {
		t.Error("a stored key must win over the environment")
	}
}

func TestClientSettings_DisplayMasksKey(t *testing.T) {
	s := DefaultSettings()
	s.APIKey = "sk-very-secret-key"
	for _, kv := range s.Display() {
		if strings.Contains(kv[1], "very-secret") {
			t.Errorf("Display() leaked the key: %v", kv)
		}
	}
	cfg := s.ToClientConfig()
	if cfg.APIKey != s.APIKey || cfg.Model != s.Model {
		t.Errorf("ToClientConfig() = %+v", cfg)
	}
}

// =============================================================================
// WATCHER TESTS
// =============================================================================

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	if err := SaveTOML(Default(), PathIn(dir)); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(dir, 20*time.Millisecond, nil, func(cfg *Config, err error) {
		if err == nil {
			reloaded <- cfg
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	if err := w.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	defer w.Close()

	cfg := Default()
	cfg.UI.Theme = "light"
	if err := SaveTOML(cfg, PathIn(dir)); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-reloaded:
		if got.UI.Theme != "light" {
			t.Errorf("reloaded theme = %q, want light", got.UI.Theme)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
}
