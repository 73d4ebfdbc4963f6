package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/weicopy/cli/internal/clip"
	"github.com/weicopy/cli/internal/models"
	"github.com/weicopy/cli/internal/services"
	"github.com/weicopy/cli/internal/tasks"
)

const noticeDuration = 3 * time.Second

var tabs = []struct {
	name     string
	itemType string
}{
	{"All", ""},
	{"Text", models.TypeText},
	{"Image", models.TypeImage},
	{"File", models.TypeFile},
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	api     services.ClipboardAPI
	poller  *tasks.Poller
	router  *tasks.Router
	loader  *tasks.Loader
	backend clip.Backend
	handle  *tasks.Handle

	width  int
	height int
	tab    int
	items  []models.ClipboardItem
	list   list.Model
	input  textinput.Model
	notice string
	err    error
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, api services.ClipboardAPI, poller *tasks.Poller, router *tasks.Router, loader *tasks.Loader, backend clip.Backend) *Model {
	input := textinput.New()
	input.Placeholder = "Type a snippet and press enter to push it"
	input.CharLimit = 0

	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Shared Clipboard"
	l.SetShowHelp(false)

	return &Model{
		ctx:     ctx,
		api:     api,
		poller:  poller,
		router:  router,
		loader:  loader,
		backend: backend,
		handle:  loader.NewHandle(),
		list:    l,
		input:   input,
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

// Init starts polling and arms the snapshot listener.
func (m *Model) Init() tea.Cmd {
	m.poller.Start(m.ctx)
	return tea.Batch(m.waitForSnapshot(), textinput.Blink)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-10)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case snapshotMsg:
		m.items = msg.snap.Items
		m.refreshList()
		return m, m.waitForSnapshot()

	case pastedTextMsg:
		m.input.SetValue(msg.text)
		m.input.Focus()
		return m, m.setNotice("pasted text into compose box")

	case actionDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, m.expireNotice()
		}
		m.poller.RefreshNow(m.ctx)
		return m, m.setNotice(msg.notice)

	case payloadLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, m.expireNotice()
		}
		return m, m.setNotice(fmt.Sprintf("saved to %s", msg.path))

	case noticeExpiredMsg:
		m.notice = ""
		m.err = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.poller.Stop()
		m.handle.Release()
		return m, tea.Quit

	case "tab":
		m.tab = (m.tab + 1) % len(tabs)
		m.refreshList()
		return m, nil

	case "r":
		if !m.input.Focused() {
			m.poller.RefreshNow(m.ctx)
			return m, m.setNotice("refreshing")
		}

	case "ctrl+v":
		return m, m.pasteFromClipboard()

	case "enter":
		if text := strings.TrimSpace(m.input.Value()); text != "" {
			m.input.SetValue("")
			return m, m.pushText(text)
		}
		return m, m.copySelected()

	case "d":
		if !m.input.Focused() {
			return m, m.deleteSelected()
		}

	case "o":
		if !m.input.Focused() {
			return m, m.loadSelected()
		}

	case "/":
		// let the list's filter take over
	case "esc":
		m.input.Blur()
	case "i":
		if !m.input.Focused() {
			m.input.Focus()
			return m, textinput.Blink
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	if m.input.Focused() {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	} else {
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View renders the tab bar, item list, compose box and status line.
func (m *Model) View() string {
	var b strings.Builder

	var rendered []string
	for i, t := range tabs {
		if i == m.tab {
			rendered = append(rendered, styles.active.Render(t.name))
		} else {
			rendered = append(rendered, styles.tab.Render(t.name))
		}
	}
	b.WriteString(strings.Join(rendered, " "))
	b.WriteString("\n\n")

	b.WriteString(m.list.View())
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(styles.err.Render(fmt.Sprintf("error: %v", m.err)))
	case m.notice != "":
		b.WriteString(styles.ok.Render(m.notice))
	default:
		b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	}

	return b.String()
}

// refreshList rebuilds the visible list from the current snapshot and tab.
func (m *Model) refreshList() {
	filtered := models.FilterItems(m.items, tabs[m.tab].itemType)
	items := make([]list.Item, len(filtered))
	for i, item := range filtered {
		items[i] = clipItem{item: item}
	}
	m.list.SetItems(items)
	m.list.Title = fmt.Sprintf("Shared Clipboard / %s (%d)", tabs[m.tab].name, len(filtered))
}

func (m *Model) selectedItem() (models.ClipboardItem, bool) {
	selected := m.list.SelectedItem()
	if selected == nil {
		return models.ClipboardItem{}, false
	}
	ci, ok := selected.(clipItem)
	return ci.item, ok
}

func (m *Model) waitForSnapshot() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return nil
		case snap := <-m.poller.Updates():
			return snapshotMsg{snap: snap}
		}
	}
}

func (m *Model) pushText(text string) tea.Cmd {
	return func() tea.Msg {
		if _, err := m.api.AddText(m.ctx, text); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{notice: "snippet pushed"}
	}
}

// pasteFromClipboard captures the local clipboard: text lands in the
// compose box, images upload straight away.
func (m *Model) pasteFromClipboard() tea.Cmd {
	return func() tea.Msg {
		items, err := m.backend.Read()
		if err != nil {
			return actionDoneMsg{err: err}
		}
		payload := tasks.Classify(items)
		switch payload.Kind {
		case tasks.PayloadText:
			return pastedTextMsg{text: payload.Text}
		case tasks.PayloadImage:
			if err := m.router.Dispatch(m.ctx, payload); err != nil {
				return actionDoneMsg{err: err}
			}
			return actionDoneMsg{notice: "image uploaded"}
		default:
			return actionDoneMsg{err: fmt.Errorf("nothing usable on the clipboard")}
		}
	}
}

// copySelected puts the selected text item back on the local clipboard.
func (m *Model) copySelected() tea.Cmd {
	item, ok := m.selectedItem()
	if !ok {
		return nil
	}
	if item.Type != models.TypeText {
		return m.loadSelected()
	}
	return func() tea.Msg {
		err := m.backend.Write([]clip.Item{{MIME: "text/plain", Data: []byte(item.Content)}})
		if err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{notice: "copied to local clipboard"}
	}
}

func (m *Model) deleteSelected() tea.Cmd {
	item, ok := m.selectedItem()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		if err := m.api.Delete(m.ctx, item.ID); err != nil {
			return actionDoneMsg{err: err}
		}
		return actionDoneMsg{notice: "item deleted"}
	}
}

// loadSelected materializes the selected binary payload to a temp file,
// superseding any earlier load still in flight.
func (m *Model) loadSelected() tea.Cmd {
	item, ok := m.selectedItem()
	if !ok || !item.IsBinary() {
		return nil
	}
	return func() tea.Msg {
		path, err := m.handle.Load(m.ctx, item.ID)
		if err != nil {
			if m.ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return payloadLoadedMsg{err: err}
		}
		return payloadLoadedMsg{path: path}
	}
}

func (m *Model) setNotice(notice string) tea.Cmd {
	m.notice = notice
	m.err = nil
	return m.expireNotice()
}

func (m *Model) expireNotice() tea.Cmd {
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg{}
	})
}
