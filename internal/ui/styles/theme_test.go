// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"dark":  ModeDark,
		"LIGHT": ModeLight,
		" auto": ModeAuto,
		"":      ModeAuto,
		"neon":  ModeAuto,
	}
	for in, want := range tests {
		if got := ParseMode(in); got != want {
			t.Errorf("ParseMode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewThemeForcedModes(t *testing.T) {
	if theme := NewTheme(ModeDark); !theme.IsDark || theme.Mode != ModeDark {
		t.Errorf("NewTheme(dark) = IsDark %v, Mode %q", theme.IsDark, theme.Mode)
	}
	if theme := NewTheme(ModeLight); theme.IsDark || theme.Mode != ModeLight {
		t.Errorf("NewTheme(light) = IsDark %v, Mode %q", theme.IsDark, theme.Mode)
	}
}

func TestRenderHelpersIncludeIndicators(t *testing.T) {
	cases := map[string]string{
		RenderSuccess("saved"): StatusIndicators.Success,
		RenderError("failed"):  StatusIndicators.Error,
		RenderWarning("hmm"):   StatusIndicators.Warning,
		RenderInfo("note"):     StatusIndicators.Info,
	}
	for out, indicator := range cases {
		if !strings.Contains(out, indicator) {
			t.Errorf("%q should contain %q", out, indicator)
		}
	}
}
