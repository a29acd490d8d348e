// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gptchat-tui/internal/model"
)

// storeEventKind identifies a store notification.
type storeEventKind int

const (
	eventAppended storeEventKind = iota
	eventRemoved
	eventCleared
	eventReloaded
)

// storeEvent is one queued store notification.
type storeEvent struct {
	kind  storeEventKind
	msg   model.Message
	index int
}

// storeEventsMsg carries the events queued since the last drain.
type storeEventsMsg struct {
	events []storeEvent
}

// bridge receives store notifications on any goroutine and hands them to
// Update. Callbacks never block, so they are safe to fire from inside
// Update while it mutates the store.
type bridge struct {
	mu      sync.Mutex
	pending []storeEvent
	signal  chan struct{}
	closed  chan struct{}
	once    sync.Once
}

func newBridge() *bridge {
	return &bridge{
		signal: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (b *bridge) push(ev storeEvent) {
	b.mu.Lock()
	b.pending = append(b.pending, ev)
	b.mu.Unlock()
	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// OnMessageAppended implements storage.Observer.
func (b *bridge) OnMessageAppended(msg model.Message) {
	b.push(storeEvent{kind: eventAppended, msg: msg})
}

// OnMessageRemoved implements storage.Observer.
func (b *bridge) OnMessageRemoved(index int) {
	b.push(storeEvent{kind: eventRemoved, index: index})
}

// OnConversationCleared implements storage.Observer.
func (b *bridge) OnConversationCleared() {
	b.push(storeEvent{kind: eventCleared})
}

// OnConversationReloaded implements storage.Reloader.
func (b *bridge) OnConversationReloaded(*model.Conversation) {
	b.push(storeEvent{kind: eventReloaded})
}

// drain returns and forgets the queued events.
func (b *bridge) drain() []storeEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	events := b.pending
	b.pending = nil
	return events
}

// wait returns a command that blocks until events are queued.
func (b *bridge) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-b.signal:
			return storeEventsMsg{events: b.drain()}
		case <-b.closed:
			return nil
		}
	}
}

func (b *bridge) close() {
	b.once.Do(func() { close(b.closed) })
}
