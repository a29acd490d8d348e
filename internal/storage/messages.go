// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/jeranaias/gptchat-tui/internal/model"
	"github.com/jeranaias/gptchat-tui/internal/prefs"
)

// =============================================================================
// OBSERVER
// =============================================================================

// Observer receives conversation change notifications.
// Callbacks run synchronously on the goroutine that mutated the store,
// after the mutation has been persisted, and must not call back into the
// store.
type Observer interface {
	OnMessageAppended(msg model.Message)
	OnMessageRemoved(index int)
	OnConversationCleared()
}

// Reloader is implemented by observers that want to know when the whole
// conversation was replaced by Load or Save.
type Reloader interface {
	OnConversationReloaded(snapshot *model.Conversation)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Appended func(msg model.Message)
	Removed  func(index int)
	Cleared  func()
}

// OnMessageAppended implements Observer.
func (f ObserverFuncs) OnMessageAppended(msg model.Message) {
	if f.Appended != nil {
		f.Appended(msg)
	}
}

// OnMessageRemoved implements Observer.
func (f ObserverFuncs) OnMessageRemoved(index int) {
	if f.Removed != nil {
		f.Removed(index)
	}
}

// OnConversationCleared implements Observer.
func (f ObserverFuncs) OnConversationCleared() {
	if f.Cleared != nil {
		f.Cleared()
	}
}

// =============================================================================
// MESSAGE STORE
// =============================================================================

// MessageStore owns the conversation and keeps it persisted in a
// preference store.
type MessageStore struct {
	mu        sync.Mutex
	prefs     prefs.Store
	conv      *model.Conversation
	observers map[int]Observer
	nextObs   int
	logger    *slog.Logger
}

// Option configures a MessageStore.
type Option func(*MessageStore)

// WithLogger sets the logger used for corruption and persistence warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *MessageStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewMessageStore creates a store over p and loads the persisted conversation.
func NewMessageStore(p prefs.Store, opts ...Option) *MessageStore {
	s := &MessageStore{
		prefs:     p,
		conv:      model.NewConversation(),
		observers: make(map[int]Observer),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mu.Lock()
	s.conv = s.readLocked()
	s.mu.Unlock()
	return s
}

// Subscribe registers an observer and returns a function that removes it.
func (s *MessageStore) Subscribe(o Observer) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = o
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// Conversation returns a read-only snapshot of the current conversation.
func (s *MessageStore) Conversation() *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Snapshot()
}

// Len returns the number of messages.
func (s *MessageStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conv.Len()
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Load re-reads the persisted conversation, replaces the in-memory state
// and returns a snapshot. Absent or corrupt data yields an empty
// conversation.
func (s *MessageStore) Load() *model.Conversation {
	s.mu.Lock()
	s.conv = s.readLocked()
	snap := s.conv.Snapshot()
	observers := s.observerList()
	s.mu.Unlock()

	for _, o := range observers {
		if r, ok := o.(Reloader); ok {
			r.OnConversationReloaded(snap.Snapshot())
		}
	}
	return snap
}

// Append adds msg to the end of the conversation and persists it.
// The in-memory append happens even if persisting fails.
func (s *MessageStore) Append(msg model.Message) error {
	if msg.ID == "" {
		msg.ID = model.NewID()
	}

	s.mu.Lock()
	s.conv.Append(msg)
	err := s.writeLocked(s.conv)
	observers := s.observerList()
	s.mu.Unlock()

	for _, o := range observers {
		o.OnMessageAppended(msg)
	}
	return err
}

// RemoveAt removes the message at index and persists the result.
// An invalid index falls back to clearing the whole conversation.
func (s *MessageStore) RemoveAt(index int) error {
	s.mu.Lock()
	if !s.conv.RemoveAt(index) {
		s.logger.Warn("invalid message index, clearing conversation",
			"index", index, "len", s.conv.Len())
		s.mu.Unlock()
		return s.Clear()
	}
	err := s.writeLocked(s.conv)
	observers := s.observerList()
	s.mu.Unlock()

	for _, o := range observers {
		o.OnMessageRemoved(index)
	}
	return err
}

// RemoveByID removes the message with the given correlation id.
// It returns the index the message occupied and whether it was found.
// Unlike RemoveAt, a missing id is a no-op.
func (s *MessageStore) RemoveByID(id string) (int, bool, error) {
	s.mu.Lock()
	index := s.conv.RemoveByID(id)
	if index < 0 {
		s.mu.Unlock()
		return -1, false, nil
	}
	err := s.writeLocked(s.conv)
	observers := s.observerList()
	s.mu.Unlock()

	for _, o := range observers {
		o.OnMessageRemoved(index)
	}
	return index, true, err
}

// Clear removes every message and the persisted blob.
func (s *MessageStore) Clear() error {
	s.mu.Lock()
	s.conv.Clear()
	err := s.writeLocked(s.conv)
	observers := s.observerList()
	s.mu.Unlock()

	for _, o := range observers {
		o.OnConversationCleared()
	}
	return err
}

// Save serializes conv, overwrites the persisted blob and makes conv the
// current conversation.
func (s *MessageStore) Save(conv *model.Conversation) error {
	if conv == nil {
		conv = model.NewConversation()
	}
	next := conv.Snapshot()

	s.mu.Lock()
	err := s.writeLocked(next)
	if err == nil {
		s.conv = next
	}
	snap := s.conv.Snapshot()
	observers := s.observerList()
	s.mu.Unlock()

	if err != nil {
		return err
	}
	for _, o := range observers {
		if r, ok := o.(Reloader); ok {
			r.OnConversationReloaded(snap.Snapshot())
		}
	}
	return nil
}

// Blob returns the raw persisted JSON, or "" when nothing is stored.
func (s *MessageStore) Blob() (string, error) {
	v, ok, err := s.prefs.Get(prefs.KeyMessageList)
	if err != nil || !ok {
		return "", err
	}
	return v, nil
}

// =============================================================================
// SERIALIZATION
// =============================================================================

// Encode serializes messages to the persisted JSON array layout.
func Encode(messages []model.Message) ([]byte, error) {
	if messages == nil {
		messages = []model.Message{}
	}
	return json.Marshal(messages)
}

// Decode parses the persisted JSON array layout.
func Decode(data []byte) ([]model.Message, error) {
	var messages []model.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *MessageStore) readLocked() *model.Conversation {
	raw, ok, err := s.prefs.Get(prefs.KeyMessageList)
	if err != nil {
		s.logger.Warn("failed to read message list, starting empty", "error", err)
		return model.NewConversation()
	}
	if !ok || raw == "" {
		return model.NewConversation()
	}
	messages, err := Decode([]byte(raw))
	if err != nil {
		s.logger.Warn("corrupt message list, starting empty", "error", err, "bytes", len(raw))
		return model.NewConversation()
	}
	return model.NewConversation(messages...)
}

func (s *MessageStore) writeLocked(conv *model.Conversation) error {
	if conv.IsEmpty() {
		if err := s.prefs.Remove(prefs.KeyMessageList); err != nil {
			s.logger.Error("failed to clear message list", "error", err)
			return fmt.Errorf("failed to clear message list: %w", err)
		}
		return nil
	}
	data, err := Encode(conv.Messages())
	if err != nil {
		return fmt.Errorf("failed to encode message list: %w", err)
	}
	if err := s.prefs.Put(prefs.KeyMessageList, string(data)); err != nil {
		s.logger.Error("failed to save message list", "error", err, "messages", conv.Len())
		return fmt.Errorf("failed to save message list: %w", err)
	}
	return nil
}

func (s *MessageStore) observerList() []Observer {
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]Observer, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.observers[id])
	}
	return out
}
