// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/gptchat-tui/internal/model"
	"github.com/jeranaias/gptchat-tui/internal/openai"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrEmptyInput is returned for empty or whitespace-only input. Nothing
	// changes.
	ErrEmptyInput = errors.New("empty input")

	// ErrMissingKey is returned while no API key is configured.
	ErrMissingKey = errors.New("OpenAI API key missing")

	// ErrBusy is returned when an exchange is already in flight.
	ErrBusy = errors.New("a request is already in progress")
)

// =============================================================================
// STATE
// =============================================================================

// State is the orchestrator state.
type State int

const (
	// Idle accepts a new submission.
	Idle State = iota

	// Sending has one exchange in flight.
	Sending

	// MissingKey refuses submissions until a key is configured.
	MissingKey
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sending:
		return "sending"
	case MissingKey:
		return "missing-key"
	default:
		return "unknown"
	}
}

// =============================================================================
// COLLABORATORS
// =============================================================================

// Store is the part of the message store the orchestrator mutates.
type Store interface {
	Append(msg model.Message) error
	RemoveByID(id string) (int, bool, error)
}

// Client starts API calls.
type Client interface {
	SendAsync(ctx context.Context, prompt string) *openai.Call
	IsConfigured() bool
}

// =============================================================================
// EXCHANGE
// =============================================================================

// Exchange is one submitted prompt and its pending call.
type Exchange struct {
	// ID is the correlation id: the id of the user's message.
	ID string

	// Prompt is the normalized text sent to the API.
	Prompt string

	// User is the appended user message.
	User model.Message

	// Started is when the call was issued.
	Started time.Time

	call *openai.Call
}

// Done is closed when the API call finishes.
func (e *Exchange) Done() <-chan struct{} {
	return e.call.Done()
}

// Result blocks until the API call finishes and returns its result.
func (e *Exchange) Result() (string, error) {
	return e.call.Result()
}

// Cancel aborts the API call.
func (e *Exchange) Cancel() {
	e.call.Cancel()
}

// =============================================================================
// OUTCOME
// =============================================================================

// OutcomeKind classifies how an exchange ended.
type OutcomeKind int

const (
	// Replied means the assistant message was appended.
	Replied OutcomeKind = iota

	// TransportFailed means the request never got an answer.
	TransportFailed

	// APIFailed means the API reported an error; the user message was
	// rolled back.
	APIFailed

	// ParseFailed means the answer matched no known shape.
	ParseFailed

	// Canceled means the user aborted the request.
	Canceled

	// Stale means the exchange was not the current one and was ignored.
	Stale
)

// String returns the outcome name.
func (k OutcomeKind) String() string {
	switch k {
	case Replied:
		return "replied"
	case TransportFailed:
		return "transport-failed"
	case APIFailed:
		return "api-failed"
	case ParseFailed:
		return "parse-failed"
	case Canceled:
		return "canceled"
	case Stale:
		return "stale"
	default:
		return "unknown"
	}
}

// Outcome reports what Complete did.
type Outcome struct {
	Kind OutcomeKind

	// Reply is the appended assistant message when Kind is Replied.
	Reply model.Message

	// Notice is the text to show the user for failures.
	Notice string

	// RolledBack is true when the user message was removed, at RemovedIndex.
	RolledBack   bool
	RemovedIndex int

	// Err is the call error, or a persistence error on success.
	Err error
}

// OK reports whether the exchange produced a reply.
func (o Outcome) OK() bool {
	return o.Kind == Replied
}

// =============================================================================
// ORCHESTRATOR
// =============================================================================

// Orchestrator runs exchanges against a store and a client.
type Orchestrator struct {
	mu      sync.Mutex
	store   Store
	client  Client
	state   State
	current *Exchange
	logger  *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates an orchestrator. It starts in MissingKey when client has no
// API key.
func New(store Store, client Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:  store,
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.state = o.restingState()
	return o
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// InFlight returns the exchange in flight, or nil.
func (o *Orchestrator) InFlight() *Exchange {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Submit appends a user message for input and starts the API call.
// ctx bounds the call; Cancel aborts it early.
func (o *Orchestrator) Submit(ctx context.Context, input string) (*Exchange, error) {
	text := norm.NFC.String(input)
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}

	o.mu.Lock()
	switch o.state {
	case MissingKey:
		o.mu.Unlock()
		return nil, ErrMissingKey
	case Sending:
		o.mu.Unlock()
		return nil, ErrBusy
	}
	o.state = Sending
	client := o.client
	o.mu.Unlock()

	msg := model.NewUserMessage(text)
	if err := o.store.Append(msg); err != nil {
		o.logger.Warn("failed to persist user message", "error", err)
	}

	ex := &Exchange{
		ID:      msg.ID,
		Prompt:  text,
		User:    msg,
		Started: time.Now(),
		call:    client.SendAsync(ctx, text),
	}

	o.mu.Lock()
	o.current = ex
	o.mu.Unlock()

	o.logger.Debug("exchange started", "id", ex.ID, "prompt_len", len(text))
	return ex, nil
}

// Complete applies the result of ex. It must run on the goroutine that
// owns the view of the conversation.
func (o *Orchestrator) Complete(ex *Exchange, text string, callErr error) Outcome {
	o.mu.Lock()
	if ex == nil || ex != o.current {
		o.mu.Unlock()
		return Outcome{Kind: Stale}
	}
	o.current = nil
	o.state = o.restingState()
	o.mu.Unlock()

	elapsed := time.Since(ex.Started)
	outcome := o.classify(ex, text, callErr)
	o.logger.Info("exchange finished",
		"id", ex.ID,
		"outcome", outcome.Kind.String(),
		"duration", elapsed)
	return outcome
}

func (o *Orchestrator) classify(ex *Exchange, text string, callErr error) Outcome {
	if callErr == nil {
		reply := model.NewAssistantMessage(text)
		err := o.store.Append(reply)
		if err != nil {
			o.logger.Warn("failed to persist reply", "error", err)
		}
		return Outcome{Kind: Replied, Reply: reply, Err: err}
	}

	var apiErr *openai.APIError
	var transportErr *openai.TransportError
	var parseErr *openai.ParseError

	switch {
	case errors.As(callErr, &apiErr):
		outcome := Outcome{Kind: APIFailed, Notice: apiErr.Message, Err: callErr}
		index, removed, err := o.store.RemoveByID(ex.ID)
		if err != nil {
			o.logger.Warn("failed to persist rollback", "error", err)
		}
		outcome.RolledBack = removed
		outcome.RemovedIndex = index
		return outcome

	case errors.As(callErr, &transportErr) && transportErr.Canceled():
		return Outcome{Kind: Canceled, Notice: "Request canceled", Err: callErr}

	case errors.As(callErr, &transportErr):
		return Outcome{Kind: TransportFailed, Notice: transportErr.Error(), Err: callErr}

	case errors.As(callErr, &parseErr):
		return Outcome{Kind: ParseFailed, Notice: parseErr.Display(), Err: callErr}

	case errors.Is(callErr, openai.ErrNotConfigured):
		o.mu.Lock()
		o.state = MissingKey
		o.mu.Unlock()
		return Outcome{Kind: TransportFailed, Notice: ErrMissingKey.Error(), Err: callErr}

	default:
		return Outcome{Kind: TransportFailed, Notice: callErr.Error(), Err: callErr}
	}
}

// Cancel aborts the exchange in flight. It reports whether there was one.
// The exchange still completes, with a Canceled outcome.
func (o *Orchestrator) Cancel() bool {
	o.mu.Lock()
	ex := o.current
	o.mu.Unlock()
	if ex == nil {
		return false
	}
	ex.Cancel()
	return true
}

// Reconfigure swaps the client after a settings change. An exchange in
// flight finishes on the old client.
func (o *Orchestrator) Reconfigure(client Client) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.client = client
	if o.state != Sending {
		o.state = o.restingState()
	}
}

// Run submits input, waits for the call and completes it. Canceling ctx
// aborts the call; the outcome is then Canceled.
func (o *Orchestrator) Run(ctx context.Context, input string) (Outcome, error) {
	ex, err := o.Submit(ctx, input)
	if err != nil {
		return Outcome{}, err
	}
	text, callErr := ex.Result()
	return o.Complete(ex, text, callErr), nil
}

// restingState is Idle or MissingKey depending on the client. Callers
// hold mu or have not published o yet.
func (o *Orchestrator) restingState() State {
	if o.client == nil || !o.client.IsConfigured() {
		return MissingKey
	}
	return Idle
}
