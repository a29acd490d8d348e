// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/gptchat-tui/internal/model"
	"github.com/jeranaias/gptchat-tui/internal/prefs"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type recordingObserver struct {
	events   []string
	reloaded int
}

func (r *recordingObserver) OnMessageAppended(msg model.Message) {
	r.events = append(r.events, "append:"+msg.Text)
}

func (r *recordingObserver) OnMessageRemoved(index int) {
	r.events = append(r.events, "remove:"+strconv.Itoa(index))
}

func (r *recordingObserver) OnConversationCleared() {
	r.events = append(r.events, "clear")
}

func (r *recordingObserver) OnConversationReloaded(*model.Conversation) {
	r.reloaded++
}

func msgAt(text string, user bool, ms int64) model.Message {
	return model.NewMessage(text, user, time.UnixMilli(ms))
}

func texts(conv *model.Conversation) []string {
	var out []string
	for _, m := range conv.Messages() {
		out = append(out, m.Text)
	}
	return out
}

type failingStore struct {
	*prefs.MemoryStore
}

func (f failingStore) Put(string, string) error { return errors.New("disk full") }

// =============================================================================
// LOAD TESTS
// =============================================================================

func TestMessageStore_LoadAbsent(t *testing.T) {
	store := NewMessageStore(prefs.NewMemoryStore())
	require.Equal(t, 0, store.Load().Len())
}

func TestMessageStore_LoadCorruptIsEmpty(t *testing.T) {
	for _, blob := range []string{"{not json", `{"text":"x"}`, "[1,2,3]", "null", ""} {
		p := prefs.NewMemoryStore()
		require.NoError(t, p.Put(prefs.KeyMessageList, blob))

		store := NewMessageStore(p)
		require.Equal(t, 0, store.Load().Len(), "blob %q", blob)
	}
}

func TestMessageStore_LoadPersisted(t *testing.T) {
	p := prefs.NewMemoryStore()
	blob := `[{"text":"hello","isSentByUser":true,"sentAtEpochMillis":1000},` +
		`{"text":"hi there","isSentByUser":false,"sentAtEpochMillis":2000}]`
	require.NoError(t, p.Put(prefs.KeyMessageList, blob))

	conv := NewMessageStore(p).Load()
	require.Equal(t, []string{"hello", "hi there"}, texts(conv))

	first, _ := conv.At(0)
	require.True(t, first.IsSentByUser)
	require.Equal(t, int64(1000), first.SentAtEpochMillis)
	require.NotEmpty(t, first.ID)
}

func TestMessageStore_SaveLoadIdempotent(t *testing.T) {
	p := prefs.NewMemoryStore()
	blob := `[{"text":"a \"quoted\" word","isSentByUser":true,"sentAtEpochMillis":1},` +
		`{"text":"line1\nline2","isSentByUser":false,"sentAtEpochMillis":2}]`
	require.NoError(t, p.Put(prefs.KeyMessageList, blob))

	store := NewMessageStore(p)
	require.NoError(t, store.Save(store.Load()))

	got, err := store.Blob()
	require.NoError(t, err)
	require.Equal(t, blob, got)
}

// =============================================================================
// MUTATION TESTS
// =============================================================================

func TestMessageStore_AppendPersistsAndNotifies(t *testing.T) {
	p := prefs.NewMemoryStore()
	store := NewMessageStore(p)
	obs := &recordingObserver{}
	store.Subscribe(obs)

	require.NoError(t, store.Append(msgAt("hello", true, 1)))
	require.NoError(t, store.Append(msgAt("hi", false, 2)))

	require.Equal(t, []string{"append:hello", "append:hi"}, obs.events)

	reloaded := NewMessageStore(p).Load()
	require.Equal(t, []string{"hello", "hi"}, texts(reloaded))
}

func TestMessageStore_RemoveAt(t *testing.T) {
	store := NewMessageStore(prefs.NewMemoryStore())
	for i, text := range []string{"a", "b", "c"} {
		require.NoError(t, store.Append(msgAt(text, i%2 == 0, int64(i))))
	}
	obs := &recordingObserver{}
	store.Subscribe(obs)

	require.NoError(t, store.RemoveAt(1))
	require.Equal(t, []string{"a", "c"}, texts(store.Conversation()))
	require.Equal(t, []string{"remove:1"}, obs.events)
}

func TestMessageStore_RemoveAtInvalidClears(t *testing.T) {
	store := NewMessageStore(prefs.NewMemoryStore())
	require.NoError(t, store.Append(msgAt("a", true, 1)))
	obs := &recordingObserver{}
	store.Subscribe(obs)

	require.NoError(t, store.RemoveAt(7))
	require.Equal(t, 0, store.Len())
	require.Equal(t, []string{"clear"}, obs.events)
}

func TestMessageStore_RemoveByID(t *testing.T) {
	store := NewMessageStore(prefs.NewMemoryStore())
	user := msgAt("hello", true, 1)
	require.NoError(t, store.Append(msgAt("earlier", false, 0)))
	require.NoError(t, store.Append(user))
	require.NoError(t, store.Append(msgAt("later", true, 2)))

	index, ok, err := store.RemoveByID(user.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, index)
	require.Equal(t, []string{"earlier", "later"}, texts(store.Conversation()))

	_, ok, err = store.RemoveByID(user.ID)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 2, store.Len())
}

func TestMessageStore_ClearEmptiesBlob(t *testing.T) {
	p := prefs.NewMemoryStore()
	store := NewMessageStore(p)
	require.NoError(t, store.Append(msgAt("a", true, 1)))

	require.NoError(t, store.Clear())
	require.Equal(t, 0, store.Len())

	blob, err := store.Blob()
	require.NoError(t, err)
	require.Empty(t, blob)
	require.Equal(t, 0, NewMessageStore(p).Load().Len())
}

func TestMessageStore_Unsubscribe(t *testing.T) {
	store := NewMessageStore(prefs.NewMemoryStore())
	obs := &recordingObserver{}
	unsubscribe := store.Subscribe(obs)
	unsubscribe()

	require.NoError(t, store.Append(msgAt("a", true, 1)))
	require.Empty(t, obs.events)
}

func TestMessageStore_ReloadNotifiesReloaders(t *testing.T) {
	store := NewMessageStore(prefs.NewMemoryStore())
	obs := &recordingObserver{}
	store.Subscribe(obs)

	store.Load()
	require.NoError(t, store.Save(model.NewConversation(msgAt("x", true, 1))))
	require.Equal(t, 2, obs.reloaded)
	require.Equal(t, 1, store.Len())
}

func TestMessageStore_PersistFailureKeepsMemoryState(t *testing.T) {
	store := NewMessageStore(failingStore{prefs.NewMemoryStore()})
	obs := &recordingObserver{}
	store.Subscribe(obs)

	err := store.Append(msgAt("a", true, 1))
	require.Error(t, err)
	require.Contains(t, err.Error(), "disk full")
	require.Equal(t, 1, store.Len())
	require.Equal(t, []string{"append:a"}, obs.events)

	require.Error(t, store.Save(model.NewConversation(msgAt("b", true, 2))))
	require.Equal(t, []string{"a"}, texts(store.Conversation()))
}

func TestMessageStore_ObserverFuncs(t *testing.T) {
	store := NewMessageStore(prefs.NewMemoryStore())
	var appended, cleared int
	store.Subscribe(ObserverFuncs{
		Appended: func(model.Message) { appended++ },
		Cleared:  func() { cleared++ },
	})

	require.NoError(t, store.Append(msgAt("a", true, 1)))
	require.NoError(t, store.RemoveAt(0))
	require.NoError(t, store.Clear())
	require.Equal(t, 1, appended)
	require.Equal(t, 1, cleared)
}

// =============================================================================
// EXPORT TESTS
// =============================================================================

func TestExport_Formats(t *testing.T) {
	conv := model.NewConversation(
		msgAt("hello", true, 1000),
		msgAt("**hi** there", false, 2000),
	)

	md, err := Export(conv, FormatMarkdown)
	require.NoError(t, err)
	require.Contains(t, string(md), "**You**")
	require.Contains(t, string(md), "**Assistant**")
	require.Contains(t, string(md), "**hi** there")

	js, err := Export(conv, FormatJSON)
	require.NoError(t, err)
	require.Contains(t, string(js), `"role": "user"`)

	ym, err := Export(conv, FormatYAML)
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, yaml.Unmarshal(ym, &records))
	require.Len(t, records, 2)
	require.Equal(t, "assistant", records[1]["role"])

	_, err = Export(conv, Format("pdf"))
	require.ErrorIs(t, err, ErrUnknownFormat)
}

func TestExportToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "chat.yaml")
	conv := model.NewConversation(msgAt("hello", true, 1))

	require.NoError(t, ExportToFile(conv, path, FormatFromPath(path)))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), "text: hello"))
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"markdown": FormatMarkdown, "JSON": FormatJSON, "yml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseFormat("docx")
	require.ErrorIs(t, err, ErrUnknownFormat)
	require.Equal(t, FormatMarkdown, FormatFromPath("notes.txt"))
}
