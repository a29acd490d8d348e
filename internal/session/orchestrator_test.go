// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/gptchat-tui/internal/model"
	"github.com/jeranaias/gptchat-tui/internal/notify"
	"github.com/jeranaias/gptchat-tui/internal/openai"
	"github.com/jeranaias/gptchat-tui/internal/prefs"
	"github.com/jeranaias/gptchat-tui/internal/storage"
)

// fixture wires an orchestrator to an in-memory store and a test server.
type fixture struct {
	store    *storage.MessageStore
	orch     *Orchestrator
	recorder *notify.Recorder
	hits     *atomic.Int32
}

func newFixture(t *testing.T, handler http.HandlerFunc, key string) *fixture {
	t.Helper()
	hits := &atomic.Int32{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	store := storage.NewMessageStore(prefs.NewMemoryStore())
	recorder := &notify.Recorder{}
	store.Subscribe(notify.NewEmitter(recorder, nil))

	client := openai.New(openai.Config{
		APIKey:  key,
		BaseURL: server.URL,
		Model:   model.GPT35Turbo,
	})
	return &fixture{
		store:    store,
		orch:     New(store, client),
		recorder: recorder,
		hits:     hits,
	}
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func texts(conv *model.Conversation) []string {
	var out []string
	for _, m := range conv.Messages() {
		out = append(out, m.Text)
	}
	return out
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestRun_Reply(t *testing.T) {
	f := newFixture(t, respond(http.StatusOK, `{"choices":[{"message":{"content":"hi there"}}]}`), "sk-test")

	outcome, err := f.orch.Run(context.Background(), "hello")
	require.NoError(t, err)
	require.True(t, outcome.OK())
	assert.Equal(t, "hi there", outcome.Reply.Text)

	conv := f.store.Conversation()
	require.Equal(t, []string{"hello", "hi there"}, texts(conv))
	first, _ := conv.At(0)
	second, _ := conv.At(1)
	assert.True(t, first.IsSentByUser)
	assert.False(t, second.IsSentByUser)
	assert.Equal(t, Idle, f.orch.State())

	sent := f.recorder.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "hi there", sent[0].Body)
}

func TestRun_APIErrorRollsBack(t *testing.T) {
	f := newFixture(t, respond(http.StatusTooManyRequests, `{"error":{"message":"rate limited"}}`), "sk-test")
	require.NoError(t, f.store.Append(model.NewUserMessage("earlier")))
	before := f.store.Len()

	outcome, err := f.orch.Run(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, APIFailed, outcome.Kind)
	assert.Equal(t, "rate limited", outcome.Notice)
	assert.True(t, outcome.RolledBack)
	assert.Equal(t, 1, outcome.RemovedIndex)
	assert.Equal(t, before, f.store.Len())
	assert.Equal(t, []string{"earlier"}, texts(f.store.Conversation()))
	assert.Empty(t, f.recorder.Sent())
	assert.Equal(t, Idle, f.orch.State())
}

func TestRun_TransportErrorKeepsUserMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	store := storage.NewMessageStore(prefs.NewMemoryStore())
	orch := New(store, openai.New(openai.Config{APIKey: "k", BaseURL: url}))

	outcome, err := orch.Run(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, TransportFailed, outcome.Kind)
	assert.Equal(t, outcome.Err.Error(), outcome.Notice)
	assert.Equal(t, []string{"hello"}, texts(store.Conversation()))
	assert.Equal(t, Idle, orch.State())
}

func TestRun_ParseErrorKeepsUserMessage(t *testing.T) {
	f := newFixture(t, respond(http.StatusBadGateway, "bad gateway"), "sk-test")

	outcome, err := f.orch.Run(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, ParseFailed, outcome.Kind)
	assert.Equal(t, "bad gateway", outcome.Notice)
	assert.Equal(t, []string{"hello"}, texts(f.store.Conversation()))
}

// =============================================================================
// STATE MACHINE
// =============================================================================

func TestSubmit_EmptyInputIsNoop(t *testing.T) {
	f := newFixture(t, respond(http.StatusOK, `{}`), "sk-test")

	for _, input := range []string{"", "   ", "\n\t"} {
		ex, err := f.orch.Submit(context.Background(), input)
		assert.ErrorIs(t, err, ErrEmptyInput)
		assert.Nil(t, ex)
	}
	assert.Equal(t, Idle, f.orch.State())
	assert.Zero(t, f.store.Len())
	assert.Zero(t, f.hits.Load())
}

func TestSubmit_MissingKey(t *testing.T) {
	f := newFixture(t, respond(http.StatusOK, `{}`), "")
	assert.Equal(t, MissingKey, f.orch.State())

	_, err := f.orch.Submit(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrMissingKey)
	assert.Zero(t, f.store.Len())
	assert.Zero(t, f.hits.Load())
}

func TestSubmit_BusyWhileSending(t *testing.T) {
	release := make(chan struct{})
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		respond(http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`)(w, r)
	}, "sk-test")

	ex, err := f.orch.Submit(context.Background(), "first")
	require.NoError(t, err)
	assert.Equal(t, Sending, f.orch.State())
	assert.Same(t, ex, f.orch.InFlight())

	_, err = f.orch.Submit(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 1, f.store.Len())

	close(release)
	text, callErr := ex.Result()
	outcome := f.orch.Complete(ex, text, callErr)
	assert.True(t, outcome.OK())
	assert.Nil(t, f.orch.InFlight())
	assert.Equal(t, []string{"first", "ok"}, texts(f.store.Conversation()))
}

func TestCancel_KeepsUserMessage(t *testing.T) {
	f := newFixture(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, "sk-test")

	assert.False(t, f.orch.Cancel())

	ex, err := f.orch.Submit(context.Background(), "hello")
	require.NoError(t, err)
	require.True(t, f.orch.Cancel())

	select {
	case <-ex.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("canceled call did not finish")
	}
	text, callErr := ex.Result()
	outcome := f.orch.Complete(ex, text, callErr)

	assert.Equal(t, Canceled, outcome.Kind)
	assert.Equal(t, []string{"hello"}, texts(f.store.Conversation()))
	assert.Equal(t, Idle, f.orch.State())
}

func TestComplete_StaleExchangeIgnored(t *testing.T) {
	f := newFixture(t, respond(http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`), "sk-test")

	ex, err := f.orch.Submit(context.Background(), "hello")
	require.NoError(t, err)
	text, callErr := ex.Result()
	require.True(t, f.orch.Complete(ex, text, callErr).OK())

	again := f.orch.Complete(ex, text, callErr)
	assert.Equal(t, Stale, again.Kind)
	assert.Equal(t, 2, f.store.Len())
}

func TestReconfigure(t *testing.T) {
	f := newFixture(t, respond(http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`), "")
	require.Equal(t, MissingKey, f.orch.State())

	f.orch.Reconfigure(openai.New(openai.Config{APIKey: "sk-new"}))
	assert.Equal(t, Idle, f.orch.State())

	f.orch.Reconfigure(openai.New(openai.Config{}))
	assert.Equal(t, MissingKey, f.orch.State())
}

func TestSubmit_NormalizesInput(t *testing.T) {
	f := newFixture(t, respond(http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`), "sk-test")

	// "e" followed by a combining acute accent composes to U+00E9.
	ex, err := f.orch.Submit(context.Background(), "cafe\u0301")
	require.NoError(t, err)
	assert.Equal(t, "caf\u00e9", ex.Prompt)
	assert.Equal(t, ex.ID, ex.User.ID)

	text, callErr := ex.Result()
	f.orch.Complete(ex, text, callErr)
}

func TestAwait(t *testing.T) {
	f := newFixture(t, respond(http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`), "sk-test")

	assert.Nil(t, Await(nil))

	ex, err := f.orch.Submit(context.Background(), "hello")
	require.NoError(t, err)
	msg, ok := Await(ex)().(ReplyMsg)
	require.True(t, ok)
	assert.Same(t, ex, msg.Exchange)
	assert.Equal(t, "ok", msg.Text)
	assert.NoError(t, msg.Err)
}
