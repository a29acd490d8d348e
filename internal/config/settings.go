// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"math"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/jeranaias/gptchat-tui/internal/model"
	"github.com/jeranaias/gptchat-tui/internal/openai"
	"github.com/jeranaias/gptchat-tui/internal/prefs"
	"github.com/jeranaias/gptchat-tui/internal/util"
)

// =============================================================================
// CLIENT SETTINGS
// =============================================================================

// Client setting defaults, applied when a key is absent or unparseable.
const (
	DefaultMaxTokens   = 512
	DefaultTemperature = 0.7
	DefaultEcho        = false

	MaxMaxTokens   = 4096
	MaxTemperature = 2.0
)

// ClientSettings are the OpenAI client settings kept in the preference
// store. Numbers are persisted as decimal strings.
type ClientSettings struct {
	APIKey      string
	APIURL      string
	Model       model.ModelID
	MaxTokens   int
	Temperature float64
	Echo        bool
}

// DefaultSettings returns settings with no API key and default values.
func DefaultSettings() ClientSettings {
	return ClientSettings{
		APIURL:      openai.DefaultBaseURL,
		Model:       model.DefaultModel,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		Echo:        DefaultEcho,
	}
}

// LoadSettings reads client settings from the store.
//
// Invalid stored values fall back to their defaults; the returned error is
// then a non-nil ValidateErrors describing what was replaced, and the
// returned settings are still usable.
func LoadSettings(store prefs.Store) (ClientSettings, error) {
	s := DefaultSettings()
	var errs ValidateErrors

	apiKey, _, err := store.Get(prefs.KeyAPIKey)
	if err != nil {
		errs = append(errs, ValidationError{Field: "api-key", Message: err.Error()})
	}
	s.APIKey = strings.TrimSpace(apiKey)

	if v := prefs.GetString(store, prefs.KeyAPIURL, ""); v != "" {
		s.APIURL = v
	}

	if v, ok, _ := store.Get(prefs.KeyModel); ok {
		id, err := model.ParseModelID(v)
		if err != nil {
			errs = append(errs, ValidationError{Field: "model", Message: err.Error()})
		} else {
			s.Model = id
		}
	}

	if v, ok, _ := store.Get(prefs.KeyMaxTokens); ok {
		n, err := parseMaxTokens(v)
		if err != nil {
			errs = append(errs, ValidationError{Field: "max-tokens", Message: err.Error()})
		} else {
			s.MaxTokens = n
		}
	}

	if v, ok, _ := store.Get(prefs.KeyTemperature); ok {
		f, err := parseTemperature(v)
		if err != nil {
			errs = append(errs, ValidationError{Field: "temperature", Message: err.Error()})
		} else {
			s.Temperature = f
		}
	}

	s.Echo = prefs.GetBool(store, prefs.KeyEcho, DefaultEcho)

	if len(errs) > 0 {
		return s, errs
	}
	return s, nil
}

// SaveSettings writes every client setting to the store.
func SaveSettings(store prefs.Store, s ClientSettings) error {
	writes := []struct{ key, value string }{
		{prefs.KeyAPIKey, s.APIKey},
		{prefs.KeyAPIURL, s.APIURL},
		{prefs.KeyModel, s.Model.String()},
		{prefs.KeyMaxTokens, strconv.Itoa(s.MaxTokens)},
		{prefs.KeyTemperature, strconv.FormatFloat(s.Temperature, 'f', -1, 64)},
	}
	for _, w := range writes {
		if err := store.Put(w.key, w.value); err != nil {
			return fmt.Errorf("failed to save %s: %w", w.key, err)
		}
	}
	return prefs.PutBool(store, prefs.KeyEcho, s.Echo)
}

// ApplyEnvOverrides applies environment variable overrides:
//   - GPTCHAT_API_KEY or OPENAI_API_KEY: used when no key is stored
//   - GPTCHAT_API_URL: overrides the base URL
//   - GPTCHAT_MODEL: overrides the model
func (s *ClientSettings) ApplyEnvOverrides() {
	if s.APIKey == "" {
		for _, name := range []string{"GPTCHAT_API_KEY", "OPENAI_API_KEY"} {
			if key := strings.TrimSpace(os.Getenv(name)); key != "" {
				s.APIKey = key
				break
			}
		}
	}
	if v := os.Getenv("GPTCHAT_API_URL"); v != "" {
		s.APIURL = v
	}
	if v := os.Getenv("GPTCHAT_MODEL"); v != "" {
		if id, err := model.ParseModelID(v); err == nil {
			s.Model = id
		}
	}
}

// HasAPIKey reports whether an API key is configured.
func (s ClientSettings) HasAPIKey() bool {
	return s.APIKey != ""
}

// ToClientConfig returns the immutable client configuration.
func (s ClientSettings) ToClientConfig() openai.Config {
	return openai.Config{
		APIKey:      s.APIKey,
		BaseURL:     s.APIURL,
		Model:       s.Model,
		MaxTokens:   s.MaxTokens,
		Temperature: s.Temperature,
		Echo:        s.Echo,
	}
}

// Display returns the settings as name/value pairs with the key masked.
func (s ClientSettings) Display() [][2]string {
	return [][2]string{
		{"api-key", util.MaskSecret(s.APIKey)},
		{"api-url", s.APIURL},
		{"model", s.Model.String()},
		{"max-tokens", strconv.Itoa(s.MaxTokens)},
		{"temperature", strconv.FormatFloat(s.Temperature, 'f', -1, 64)},
		{"echo", strconv.FormatBool(s.Echo)},
	}
}

// =============================================================================
// SETTING NAMES
// =============================================================================

// settingKeys maps user-facing setting names to preference keys.
var settingKeys = map[string]string{
	"api-key":     prefs.KeyAPIKey,
	"api-url":     prefs.KeyAPIURL,
	"model":       prefs.KeyModel,
	"max-tokens":  prefs.KeyMaxTokens,
	"temperature": prefs.KeyTemperature,
	"echo":        prefs.KeyEcho,
}

// SettingNames returns the user-facing setting names.
func SettingNames() []string {
	names := make([]string, 0, len(settingKeys))
	for name := range settingKeys {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetSetting validates value and writes it under the named setting.
// Values are stored in their canonical string form.
func SetSetting(store prefs.Store, name, value string) error {
	name = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", "-"))
	key, ok := settingKeys[name]
	if !ok {
		return fmt.Errorf("unknown setting %q (valid: %s)", name, strings.Join(SettingNames(), ", "))
	}

	value = strings.TrimSpace(value)
	switch name {
	case "model":
		id, err := model.ParseModelID(value)
		if err != nil {
			return ValidationError{Field: name, Message: err.Error()}
		}
		value = id.String()
	case "max-tokens":
		n, err := parseMaxTokens(value)
		if err != nil {
			return ValidationError{Field: name, Message: err.Error()}
		}
		value = strconv.Itoa(n)
	case "temperature":
		f, err := parseTemperature(value)
		if err != nil {
			return ValidationError{Field: name, Message: err.Error()}
		}
		value = strconv.FormatFloat(f, 'f', -1, 64)
	case "echo":
		b, err := parseBool(value)
		if err != nil {
			return ValidationError{Field: name, Message: err.Error()}
		}
		value = strconv.FormatBool(b)
	case "api-url":
		if value == "" {
			return store.Remove(key)
		}
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ValidationError{Field: name, Message: fmt.Sprintf("invalid URL %q", value)}
		}
	}
	return store.Put(key, value)
}

func parseMaxTokens(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		// Older stores kept the value as a float string ("256.0").
		f, ferr := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if ferr != nil || !isFinite(f) || f != math.Trunc(f) {
			return 0, fmt.Errorf("invalid integer %q", s)
		}
		n = int(f)
	}
	if n < 1 || n > MaxMaxTokens {
		return 0, fmt.Errorf("must be between 1 and %d, got %d", MaxMaxTokens, n)
	}
	return n, nil
}

func parseTemperature(s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if !isFinite(f) {
		return 0, fmt.Errorf("must be a finite number, got %q", s)
	}
	if f < 0 || f > MaxTemperature {
		return 0, fmt.Errorf("must be between 0 and %g, got %g", MaxTemperature, f)
	}
	return f, nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
