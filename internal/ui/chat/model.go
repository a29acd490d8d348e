// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/gptchat-tui/internal/model"
	"github.com/jeranaias/gptchat-tui/internal/render"
	"github.com/jeranaias/gptchat-tui/internal/session"
	"github.com/jeranaias/gptchat-tui/internal/storage"
	"github.com/jeranaias/gptchat-tui/internal/tasks"
	"github.com/jeranaias/gptchat-tui/internal/ui/components"
	"github.com/jeranaias/gptchat-tui/internal/ui/styles"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options wires the chat view to its collaborators.
type Options struct {
	Store        *storage.MessageStore
	Orchestrator *session.Orchestrator
	Theme        *styles.Theme
	Markdown     *render.Markdown

	// Model is shown in the header.
	Model model.ModelID

	ShowTimestamps bool

	// ShareDir receives shared messages when the clipboard fails.
	ShareDir string

	// Clipboard defaults to the system clipboard.
	Clipboard ClipboardFunc

	// SaveAPIKey stores a key typed into the missing-key prompt and
	// returns a client using it. Nil disables the prompt.
	SaveAPIKey func(key string) (session.Client, error)

	// KeyHint is shown on the missing-key banner.
	KeyHint string

	// Context bounds API calls. Defaults to context.Background.
	Context context.Context

	Logger *slog.Logger
}

// =============================================================================
// MODEL
// =============================================================================

type focus int

const (
	focusInput focus = iota
	focusList
)

// Model is the chat view.
type Model struct {
	store   *storage.MessageStore
	orch    *session.Orchestrator
	theme   *styles.Theme
	md      *render.Markdown
	ctx     context.Context
	logger  *slog.Logger
	keys    KeyMap
	modelID model.ModelID

	shareDir   string
	clipboard  ClipboardFunc
	saveAPIKey func(string) (session.Client, error)
	keyHint    string

	// Render projection of the stored conversation.
	conv       *model.Conversation
	bodies     map[string]string
	rowOffsets []int
	selected   int

	bridge      *bridge
	unsubscribe func()
	renderQueue *tasks.Queue
	renderer    *tasks.Runner

	focus          focus
	viewport       viewport.Model
	input          textinput.Model
	keyInput       textinput.Model
	spinner        spinner.Model
	toasts         *components.ToastManager
	confirm        *components.ConfirmDialog
	pager          *components.Pager
	showTimestamps bool

	width       int
	height      int
	renderWidth int
}

// New creates the chat view and subscribes it to the store. Call Close
// when the program ends.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(styles.ModeAuto)
	}
	md := opts.Markdown
	if md == nil {
		md = render.NewMarkdown(render.StyleFor(theme.IsDark))
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = systemClipboard
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask something..."
	ti.CharLimit = 8192
	ti.Focus()

	ki := textinput.New()
	ki.Prompt = "API key: "
	ki.Placeholder = "sk-..."
	ki.EchoMode = textinput.EchoPassword
	ki.EchoCharacter = '*'
	ki.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	queue := tasks.NewQueue(50)
	runner := tasks.NewRunner(queue, 10*time.Second)
	runner.Start()

	b := newBridge()
	m := Model{
		store:          opts.Store,
		orch:           opts.Orchestrator,
		theme:          theme,
		md:             md,
		ctx:            ctx,
		logger:         logger,
		keys:           DefaultKeyMap(),
		modelID:        opts.Model,
		shareDir:       opts.ShareDir,
		clipboard:      clip,
		saveAPIKey:     opts.SaveAPIKey,
		keyHint:        opts.KeyHint,
		conv:           opts.Store.Conversation(),
		bodies:         make(map[string]string),
		selected:       -1,
		bridge:         b,
		unsubscribe:    opts.Store.Subscribe(b),
		renderQueue:    queue,
		renderer:       runner,
		viewport:       viewport.New(80, 20),
		input:          ti,
		keyInput:       ki,
		spinner:        sp,
		toasts:         components.NewToastManager(),
		showTimestamps: opts.ShowTimestamps,
		width:          80,
		height:         24,
	}
	if m.keyHint == "" {
		m.keyHint = "Paste a key below, or run: gptchat settings set api-key <key>"
	}
	return m
}

// Close stops background work and unsubscribes from the store.
func (m Model) Close() {
	m.unsubscribe()
	m.bridge.close()
	m.renderer.Stop()
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the background listeners.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.bridge.wait(),
		m.waitRender(),
		components.ToastTickCmd(),
	)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case storeEventsMsg:
		m.applyStoreEvents(msg.events)
		return m, m.bridge.wait()

	case renderBatchMsg:
		changed := false
		for _, done := range msg.results {
			if done.id != "" && done.width == m.renderWidth {
				m.bodies[done.id] = done.body
				changed = true
			}
		}
		if changed {
			m.refreshViewport(false)
		}
		return m, m.waitRender()

	case renderIdleMsg:
		return m, nil

	case session.ReplyMsg:
		return m.handleReply(msg)

	case spinner.TickMsg:
		if m.orch.State() != session.Sending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case components.ToastTickMsg:
		m.toasts.Tick()
		m.layout()
		return m, components.ToastTickCmd()

	case components.ConfirmResultMsg:
		return m.handleConfirm(msg)

	case components.PagerClosedMsg:
		m.pager = nil
		return m, nil

	case shareDoneMsg:
		switch {
		case msg.err != nil:
			m.toasts.AddError("Share failed: " + msg.err.Error())
		case msg.copied:
			m.toasts.AddSuccess("Copied to clipboard")
		default:
			m.toasts.AddStatus("Clipboard unavailable, saved to " + msg.path)
		}
		m.layout()
		return m, nil

	case apiKeySavedMsg:
		if msg.err != nil {
			m.toasts.AddError("Could not save API key: " + msg.err.Error())
			m.layout()
			return m, nil
		}
		m.orch.Reconfigure(msg.client)
		m.keyInput.Reset()
		m.toasts.AddSuccess("API key saved")
		m.layout()
		return m, nil

	case SettingsChangedMsg:
		if msg.Client != nil {
			m.orch.Reconfigure(msg.Client)
		}
		if msg.Notice != "" {
			m.toasts.AddStatus(msg.Notice)
		}
		m.layout()
		return m, nil

	case ConfigReloadedMsg:
		return m.handleConfigReloaded(msg)
	}

	return m.updateInputs(msg)
}

// =============================================================================
// STORE EVENTS
// =============================================================================

// applyStoreEvents updates the projection. Appends add one trailing row;
// removals and clears rebuild from the store.
func (m *Model) applyStoreEvents(events []storeEvent) {
	rebuild := false
	appended := false
	for _, ev := range events {
		switch ev.kind {
		case eventAppended:
			if rebuild || m.conv.IndexOf(ev.msg.ID) >= 0 {
				continue
			}
			m.conv.Append(ev.msg)
			m.requestRender(ev.msg)
			appended = true
		default:
			rebuild = true
		}
	}

	if rebuild {
		m.rebuildProjection()
		m.refreshViewport(false)
		return
	}
	if appended {
		m.selected = -1
		m.refreshViewport(true)
	}
}

// rebuildProjection replaces the projection with the store's snapshot.
func (m *Model) rebuildProjection() {
	m.conv = m.store.Conversation()
	keep := make(map[string]string, m.conv.Len())
	for _, msg := range m.conv.Messages() {
		if body, ok := m.bodies[msg.ID]; ok {
			keep[msg.ID] = body
		} else {
			m.requestRender(msg)
		}
	}
	m.bodies = keep
	if m.selected >= m.conv.Len() {
		m.selected = m.conv.Len() - 1
	}
	if m.conv.IsEmpty() && m.focus == focusList {
		m.setFocus(focusInput)
	}
}

// =============================================================================
// RENDERING JOBS
// =============================================================================

// requestRender queues markdown rendering of msg at the current width.
func (m *Model) requestRender(msg model.Message) {
	if m.renderWidth <= 0 {
		return
	}
	width := m.renderWidth
	md := m.md
	text := msg.Text
	id := msg.ID
	task := tasks.NewTask("render message", func(ctx context.Context) (any, error) {
		body, err := md.Render(text, width)
		if err != nil {
			return nil, err
		}
		return renderDoneMsg{id: id, width: width, body: body}, nil
	}).WithKey(id)
	if err := m.renderQueue.Add(task); err != nil {
		m.logger.Debug("render queue rejected task", "error", err)
	}
}

// waitRender returns a command that delivers every finished render
// available once the next one arrives.
func (m Model) waitRender() tea.Cmd {
	queue := m.renderQueue
	closed := m.bridge.closed
	return func() tea.Msg {
		var batch renderBatchMsg
		select {
		case n := <-queue.Notifications():
			batch.add(n)
		case <-closed:
			return renderIdleMsg{}
		}
		for {
			select {
			case n := <-queue.Notifications():
				batch.add(n)
			default:
				return batch
			}
		}
	}
}

// =============================================================================
// RESIZE
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.input.Width = msg.Width - 4
	m.keyInput.Width = msg.Width - 12

	if w := m.bodyWidth(); w != m.renderWidth {
		m.renderWidth = w
		m.rerenderAll()
	}
	if m.pager != nil {
		m.pager.SetSize(m.width, m.height)
	}
	m.layout()
	m.refreshViewport(m.selected < 0)
	return m, nil
}

// rerenderAll drops every rendered body and queues fresh renders.
func (m *Model) rerenderAll() {
	m.bodies = make(map[string]string)
	for _, id := range projectionIDs(m.conv) {
		m.renderer.CancelKey(id)
	}
	for _, message := range m.conv.Messages() {
		m.requestRender(message)
	}
}

func projectionIDs(conv *model.Conversation) []string {
	msgs := conv.Messages()
	ids := make([]string, len(msgs))
	for i, msg := range msgs {
		ids[i] = msg.ID
	}
	return ids
}

// rowWidth is the width available to a row.
func (m Model) rowWidth() int {
	return m.width - 2
}

// bodyWidth is the wrap width of a rendered body inside its bubble.
func (m Model) bodyWidth() int {
	w := m.rowWidth() - 6
	if w < 20 {
		w = 20
	}
	return w
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.confirm != nil {
		return m, m.confirm.HandleKey(msg)
	}
	if m.pager != nil {
		return m, m.pager.Update(msg)
	}
	if m.orch.State() == session.MissingKey {
		return m.handleKeyPrompt(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		if m.orch.Cancel() {
			return m, nil
		}
		if m.focus == focusList {
			m.setFocus(focusInput)
			m.refreshViewport(false)
		}
		return m, nil

	case key.Matches(msg, m.keys.ClearAll):
		if m.conv.IsEmpty() {
			return m, nil
		}
		m.confirm = components.NewConfirmDialog("Clear all chats",
			"Delete every message in this conversation?", actionClear, "")
		return m, nil

	case key.Matches(msg, m.keys.Focus):
		if m.focus == focusInput && !m.conv.IsEmpty() {
			m.setFocus(focusList)
			if m.selected < 0 {
				m.selected = m.conv.Len() - 1
			}
		} else {
			m.setFocus(focusInput)
		}
		m.refreshViewport(false)
		return m, nil
	}

	if m.focus == focusList {
		return m.handleListKey(msg)
	}
	return m.handleInputKey(msg)
}

const (
	actionDelete = "delete"
	actionClear  = "clear"
)

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case msg.Type == tea.KeyUp && m.input.Value() == "" && !m.conv.IsEmpty():
		m.setFocus(focusList)
		m.selected = m.conv.Len() - 1
		m.refreshViewport(false)
		return m, nil

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
		m.refreshViewport(false)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.selected < m.conv.Len()-1 {
			m.selected++
		} else {
			m.setFocus(focusInput)
		}
		m.refreshViewport(false)
		return m, nil

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keys.Delete):
		selected, ok := m.selectedMessage()
		if !ok {
			return m, nil
		}
		m.confirm = components.NewConfirmDialog("Delete message",
			"Delete this message?\n\n"+render.Preview(selected.Text, 50), actionDelete, selected.ID)
		return m, nil

	case key.Matches(msg, m.keys.View):
		selected, ok := m.selectedMessage()
		if !ok || selected.IsSentByUser {
			return m, nil
		}
		body := render.HighlightMarkdown(selected.Text, m.theme.ColorProfile, m.theme.IsDark)
		title := selected.Role().DisplayName() + "  " + selected.TimeLabel()
		m.pager = components.NewPager(title, body, m.width, m.height)
		return m, nil

	case key.Matches(msg, m.keys.Share):
		selected, ok := m.selectedMessage()
		if !ok || selected.IsSentByUser {
			return m, nil
		}
		return m, shareCmd(selected, m.clipboard, m.shareDir)

	case key.Matches(msg, m.keys.Submit):
		m.setFocus(focusInput)
		m.refreshViewport(false)
		return m, nil
	}
	return m, nil
}

// handleKeyPrompt drives the API key prompt shown in MissingKey.
func (m Model) handleKeyPrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.saveAPIKey == nil {
		return m, nil
	}
	if key.Matches(msg, m.keys.Submit) {
		value := strings.TrimSpace(m.keyInput.Value())
		if value == "" {
			return m, nil
		}
		save := m.saveAPIKey
		return m, func() tea.Msg {
			client, err := save(value)
			return apiKeySavedMsg{client: client, err: err}
		}
	}
	var cmd tea.Cmd
	m.keyInput, cmd = m.keyInput.Update(msg)
	return m, cmd
}

func (m *Model) setFocus(f focus) {
	m.focus = f
	if f == focusInput {
		m.selected = -1
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m Model) selectedMessage() (model.Message, bool) {
	return m.conv.At(m.selected)
}

// =============================================================================
// SEND PIPELINE
// =============================================================================

func (m Model) submit() (tea.Model, tea.Cmd) {
	ex, err := m.orch.Submit(m.ctx, m.input.Value())
	switch {
	case errors.Is(err, session.ErrEmptyInput):
		return m, nil
	case err != nil:
		m.toasts.AddError(err.Error())
		m.layout()
		return m, nil
	}
	m.input.Reset()
	return m, tea.Batch(session.Await(ex), m.spinner.Tick)
}

func (m Model) handleReply(msg session.ReplyMsg) (tea.Model, tea.Cmd) {
	outcome := m.orch.Complete(msg.Exchange, msg.Text, msg.Err)
	switch outcome.Kind {
	case session.Replied:
		if outcome.Err != nil {
			m.toasts.AddError("Reply not saved: " + outcome.Err.Error())
		}
	case session.Stale:
		return m, nil
	case session.Canceled:
		m.toasts.AddStatus(outcome.Notice)
	default:
		m.toasts.AddError(outcome.Notice)
	}
	m.layout()
	return m, nil
}

// =============================================================================
// DIALOG RESULTS
// =============================================================================

func (m Model) handleConfirm(msg components.ConfirmResultMsg) (tea.Model, tea.Cmd) {
	m.confirm = nil
	if !msg.Confirmed {
		return m, nil
	}

	var err error
	switch msg.Action {
	case actionDelete:
		index := m.store.Conversation().IndexOf(msg.Target)
		if index < 0 {
			return m, nil
		}
		err = m.store.RemoveAt(index)
	case actionClear:
		err = m.store.Clear()
		if err == nil {
			m.toasts.AddStatus("Conversation cleared")
		}
	}
	if err != nil {
		m.toasts.AddError("Could not save: " + err.Error())
	}
	m.layout()
	return m, nil
}

func (m Model) handleConfigReloaded(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	m.showTimestamps = msg.ShowTimestamps
	if msg.Theme != nil {
		m.theme = msg.Theme
		if style := render.StyleFor(m.theme.IsDark); style != m.md.Style() {
			m.md = render.NewMarkdown(style)
			m.rerenderAll()
		}
	}
	if msg.Client != nil {
		m.orch.Reconfigure(msg.Client)
	}
	if msg.Notice != "" {
		m.toasts.AddStatus(msg.Notice)
	}
	m.layout()
	m.refreshViewport(false)
	return m, nil
}

// updateInputs forwards other messages (cursor blink) to the focused input.
func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.orch.State() == session.MissingKey {
		m.keyInput, cmd = m.keyInput.Update(msg)
		return m, cmd
	}
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
