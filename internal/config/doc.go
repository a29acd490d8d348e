// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for gptchat.
//
// There are two layers:
//
//   - Config: application settings in ~/.gptchat/config.toml (data dir,
//     request timeout, notifications, UI, logging)
//   - ClientSettings: OpenAI settings (API key, model, max tokens,
//     temperature, echo) kept as strings in the preference store
//
// # Environment Variables
//
// .env files in the config directory and the working directory are loaded
// first; they never override variables already set.
//
//   - GPTCHAT_HOME: configuration directory
//   - GPTCHAT_DATA_DIR, GPTCHAT_TIMEOUT, GPTCHAT_RATE_PER_MINUTE,
//     GPTCHAT_NOTIFY, GPTCHAT_THEME, GPTCHAT_LOG_LEVEL: config overrides
//   - GPTCHAT_API_KEY / OPENAI_API_KEY: API key when none is stored
//   - GPTCHAT_API_URL, GPTCHAT_MODEL: client overrides
//
// # Usage
//
//	cfg, err := config.Load(dir)
//	settings, err := config.LoadSettings(prefsStore)
//	client := openai.New(settings.ToClientConfig()).WithTimeout(cfg.Timeout())
package config
