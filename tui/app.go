// Package tui is the interactive terminal front end of draftkit.
//
// The Model is a bubbletea program: a chat-style transcript, a single
// input line with "@" file completion, and modal dialogs for the save
// path and the reference directory. Translation runs on the wizard's
// background worker; its result comes back to the event loop as a
// message.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/minios-linux/draftkit/complete"
	"github.com/minios-linux/draftkit/draft"
	"github.com/minios-linux/draftkit/i18n"
	"github.com/minios-linux/draftkit/log"
	"github.com/minios-linux/draftkit/scanner"
	"github.com/minios-linux/draftkit/settings"
	"github.com/minios-linux/draftkit/wizard"
)

type mode int

const (
	modeChat mode = iota
	modeBusy
	modeSave
	modeError
	modeDir
)

type role int

const (
	roleSystem role = iota
	roleUser
)

type message struct {
	role role
	text string
}

// maxSuggestions is the number of completion rows shown at once.
const maxSuggestions = 8

// Config wires the model to its collaborators.
type Config struct {
	Wizard  *wizard.Wizard
	Scanner *scanner.Scanner
	// Translator is required.
	Translator wizard.Translator
	// SettingsPath is where a newly chosen reference directory is
	// persisted. Empty disables persistence.
	SettingsPath string
	Logger       log.Logger
	Context      context.Context
	Now          func() time.Time
}

// Model is the bubbletea model of the wizard screen.
type Model struct {
	wizard       *wizard.Wizard
	scanner      *scanner.Scanner
	completer    *complete.Completer
	translator   wizard.Translator
	settingsPath string
	logger       log.Logger
	ctx          context.Context
	now          func() time.Time

	mode      mode
	input     textinput.Model
	saveInput textinput.Model
	dirInput  textinput.Model
	spinner   spinner.Model

	messages []message
	draft    draft.Draft
	hasDraft bool
	saved    bool
	errText  string
	dirErr   string

	width    int
	height   int
	quitting bool
}

// sessionCompletedMsg carries the session published by the wizard.
type sessionCompletedMsg struct {
	session wizard.Session
}

// translatedMsg carries the worker's result.
type translatedMsg struct {
	result wizard.Result
}

// NewModel returns the model at the start of a fresh session. When the
// scanner has no root yet the reference directory dialog opens first.
func NewModel(cfg Config) Model {
	if cfg.Logger == nil {
		cfg.Logger = log.Noop
	}
	if cfg.Wizard == nil {
		cfg.Wizard = wizard.New(cfg.Logger)
	}
	if cfg.Scanner == nil {
		cfg.Scanner = scanner.New("")
	}
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	in := textinput.New()
	in.Placeholder = i18n.T("Type here... (Enter: add, Tab: next phase, @: file)")
	in.CharLimit = 0
	in.Prompt = "> "
	in.Focus()

	si := textinput.New()
	si.CharLimit = 0
	si.Prompt = ""

	di := textinput.New()
	di.Placeholder = "~/projects/my-app"
	di.CharLimit = 0
	di.Prompt = ""

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	m := Model{
		wizard:       cfg.Wizard,
		scanner:      cfg.Scanner,
		completer:    complete.New(cfg.Scanner),
		translator:   cfg.Translator,
		settingsPath: cfg.SettingsPath,
		logger:       cfg.Logger.WithValues(log.Kv{"svc": "tui"}),
		ctx:          cfg.Context,
		now:          cfg.Now,
		input:        in,
		saveInput:    si,
		dirInput:     di,
		spinner:      sp,
		width:        100,
		height:       30,
	}
	m.startSession()

	if m.scanner.Root() == "" {
		m = m.openDirDialog()
	}
	return m
}

func (m *Model) startSession() {
	m.messages = nil
	m.draft = draft.Draft{}
	m.hasDraft = false
	m.saved = false
	m.errText = ""
	m.completer.Close()
	m.input.Reset()
	m.input.Focus()
	m.saveInput.Reset()
	m.addSystem(wizard.WelcomeMessage())
}

func (m *Model) addSystem(text string) {
	m.messages = append(m.messages, message{role: roleSystem, text: text})
}

func (m *Model) addUser(text string) {
	m.messages = append(m.messages, message{role: roleUser, text: text})
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(10, msg.Width-4)
		return m, nil

	case sessionCompletedMsg:
		return m.startTranslation(msg.session)

	case translatedMsg:
		return m.finishTranslation(msg.result)

	case spinner.TickMsg:
		if m.mode != modeBusy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.mode {
		case modeChat:
			return m.updateChat(msg)
		case modeSave:
			return m.updateSave(msg)
		case modeError:
			return m.updateError(msg)
		case modeDir:
			return m.updateDir(msg)
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.mode {
	case modeChat:
		m.input, cmd = m.input.Update(msg)
	case modeSave:
		m.saveInput, cmd = m.saveInput.Update(msg)
	case modeDir:
		m.dirInput, cmd = m.dirInput.Update(msg)
	}
	return m, cmd
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+r":
		m.wizard.Reset()
		m.startSession()
		m.logger.Infof("session reset")
		return m, nil

	case "ctrl+o":
		return m.openDirDialog(), nil

	case "ctrl+s":
		if m.hasDraft && !m.saved {
			return m.openSaveDialog(), nil
		}
		return m, nil
	}

	if m.wizard.Done() {
		return m, nil
	}

	if m.completer.Active() {
		switch msg.String() {
		case "enter":
			value, pos := m.completer.Accept(m.input.Value(), m.input.Position())
			m.input.SetValue(value)
			m.input.SetCursor(pos)
			return m, nil
		case "up":
			m.completer.Prev()
			return m, nil
		case "down":
			m.completer.Next()
			return m, nil
		case "esc":
			value, pos := m.completer.Cancel(m.input.Value(), m.input.Position())
			m.input.SetValue(value)
			m.input.SetCursor(pos)
			return m, nil
		}
	}

	switch msg.String() {
	case "enter":
		return m.addItem()
	case "tab", "ctrl+n":
		return m.advance()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.completer.Update(m.input.Value(), m.input.Position())
	return m, cmd
}

func (m Model) addItem() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	from := m.wizard.Phase()
	if !m.wizard.AddItem(text) {
		return m, nil
	}
	m.addUser(text)
	m.input.Reset()
	m.completer.Close()
	if to := m.wizard.Phase(); to != from {
		m.addSystem(wizard.TransitionMessage(from, to))
	}
	return m, nil
}

func (m Model) advance() (tea.Model, tea.Cmd) {
	pending := strings.TrimSpace(m.input.Value())
	from := m.wizard.Phase()
	if pending != "" {
		m.addUser(pending)
	}
	finished := m.wizard.Advance(pending)
	m.input.Reset()
	m.completer.Close()

	if !finished {
		m.addSystem(wizard.TransitionMessage(from, m.wizard.Phase()))
		return m, nil
	}

	m.addSystem(wizard.CompletionMessage())
	m.input.Blur()
	m.mode = modeBusy
	return m, waitForSession(m.wizard.Completed())
}

func waitForSession(ch <-chan wizard.Session) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return sessionCompletedMsg{session: s}
	}
}

func waitForResult(ch <-chan wizard.Result) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-ch
		if !ok {
			return nil
		}
		return translatedMsg{result: res}
	}
}

func (m Model) startTranslation(s wizard.Session) (tea.Model, tea.Cmd) {
	if s.ID != m.wizard.Session().ID {
		return m, nil
	}
	m.mode = modeBusy
	m.addSystem(i18n.T("Translating to English... (This may take a moment)"))
	m.logger.Infof("translating session %s", s.ID)
	ch := wizard.Process(m.ctx, m.translator, s)
	return m, tea.Batch(m.spinner.Tick, waitForResult(ch))
}

func (m Model) finishTranslation(res wizard.Result) (tea.Model, tea.Cmd) {
	if res.Session.ID != m.wizard.Session().ID {
		return m, nil
	}
	if res.Err != nil {
		m.logger.Errorf("processing stopped: %v", res.Err)
		m.addSystem(fmt.Sprintf(i18n.T("Error: %v"), res.Err))
		m.mode = modeChat
		return m, nil
	}

	m.draft = res.Draft
	m.hasDraft = true
	m.addSystem(i18n.T("Translation complete. Choose where to save the draft."))
	return m.openSaveDialog(), nil
}

// ---------------------------------------------------------------------------
// Save dialog
// ---------------------------------------------------------------------------

func (m Model) openSaveDialog() Model {
	if m.saveInput.Value() == "" {
		m.saveInput.SetValue(draft.DefaultFileName(m.now()))
	}
	m.saveInput.CursorEnd()
	m.saveInput.Focus()
	m.mode = modeSave
	return m
}

func (m Model) updateSave(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.saveInput.Blur()
		m.mode = modeChat
		m.addSystem(i18n.T("Save cancelled."))
		return m, nil

	case "enter":
		return m.save()
	}

	var cmd tea.Cmd
	m.saveInput, cmd = m.saveInput.Update(msg)
	return m, cmd
}

func (m Model) save() (tea.Model, tea.Cmd) {
	path := settings.ExpandHome(strings.TrimSpace(m.saveInput.Value()))
	if path == "" {
		return m, nil
	}
	if err := m.draft.WriteFile(path); err != nil {
		m.logger.WithValues(log.Kv{"path": path}).Errorf("saving draft: %v", err)
		m.errText = fmt.Sprintf(i18n.T("Failed to save draft: %v"), err)
		m.addSystem(fmt.Sprintf(i18n.T("Error: %v"), err))
		m.saveInput.Blur()
		m.mode = modeError
		return m, nil
	}

	m.logger.WithValues(log.Kv{"path": path}).Infof("draft saved")
	m.saved = true
	m.saveInput.Blur()
	m.saveInput.Reset()
	m.mode = modeChat
	m.addSystem(fmt.Sprintf(i18n.T("Draft saved successfully to: %s"), path))
	return m, nil
}

func (m Model) updateError(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.errText = ""
		return m.openSaveDialog(), nil
	case "esc":
		m.errText = ""
		m.mode = modeChat
		return m, nil
	}
	return m, nil
}

// ---------------------------------------------------------------------------
// Reference directory dialog
// ---------------------------------------------------------------------------

func (m Model) openDirDialog() Model {
	m.completer.Close()
	m.input.Blur()
	m.dirErr = ""
	m.dirInput.SetValue(m.scanner.Root())
	m.dirInput.CursorEnd()
	m.dirInput.Focus()
	m.mode = modeDir
	return m
}

func (m Model) closeDirDialog() Model {
	m.dirInput.Blur()
	m.dirErr = ""
	m.mode = modeChat
	if !m.wizard.Done() {
		m.input.Focus()
	}
	return m
}

func (m Model) updateDir(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.closeDirDialog(), nil

	case "enter":
		return m.setRoot(m.dirInput.Value())
	}

	var cmd tea.Cmd
	m.dirInput, cmd = m.dirInput.Update(msg)
	return m, cmd
}

func (m Model) setRoot(value string) (tea.Model, tea.Cmd) {
	dir, err := settings.ValidateDir(value)
	if err != nil {
		m.dirErr = err.Error()
		return m, nil
	}

	m.scanner.SetRoot(dir)
	m.logger.WithValues(log.Kv{"root": dir}).Infof("reference directory changed")
	if m.settingsPath != "" {
		if err := settings.SetRootDir(m.settingsPath, dir); err != nil {
			m.logger.Warningf("could not save settings: %v", err)
			m.addSystem(fmt.Sprintf(i18n.T("Could not save settings: %v"), err))
		}
	}
	m.addSystem(fmt.Sprintf(i18n.T("Reference directory set to: %s"), dir))
	return m.closeDirDialog(), nil
}

// ---------------------------------------------------------------------------
// View
// ---------------------------------------------------------------------------

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	switch m.mode {
	case modeSave:
		return m.viewSaveDialog()
	case modeError:
		return m.viewError()
	case modeDir:
		return m.viewDirDialog()
	}

	var b strings.Builder
	b.WriteString(m.renderTitle() + "\n")

	bottom := m.renderBottom()
	avail := m.height - 1 - lipgloss.Height(bottom)
	b.WriteString(m.renderTranscript(avail))
	b.WriteString("\n" + bottom)
	return b.String()
}

func (m Model) renderTitle() string {
	title := titleStyle.Render("draftkit")

	var badge string
	if m.wizard.Done() {
		badge = doneBadgeStyle.Render(wizard.PhaseName(wizard.PhaseDone))
	} else {
		badge = phaseBadgeStyle.Render(fmt.Sprintf(i18n.T("Current phase: %s"), wizard.PhaseName(m.wizard.Phase())))
	}

	root := m.scanner.Root()
	if root == "" {
		root = i18n.T("no reference directory")
	}
	return title + badge + dimStyle.Render("  "+root)
}

func (m Model) renderTranscript(rows int) string {
	if rows < 1 {
		rows = 1
	}
	width := max(20, m.width-2)

	var lines []string
	for _, msg := range m.messages {
		var label string
		if msg.role == roleUser {
			label = userRoleStyle.Render(" " + i18n.T("You") + " ")
		} else {
			label = systemRoleStyle.Render(" draftkit ")
		}
		body := lipgloss.NewStyle().Width(width).Render(msg.text)
		lines = append(lines, label)
		lines = append(lines, strings.Split(body, "\n")...)
		lines = append(lines, "")
	}

	if len(lines) > rows {
		lines = lines[len(lines)-rows:]
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderBottom() string {
	var parts []string

	switch {
	case m.mode == modeBusy:
		parts = append(parts, m.spinner.View()+" "+i18n.T("Translating...")+" "+dimStyle.Render(i18n.T("Please wait...")))
		parts = append(parts, helpStyle.Render("  "+i18n.T("Ctrl+C: quit")))
	case m.wizard.Done():
		parts = append(parts, statusBarStyle.Render(wizard.CompletionMessage()))
		if m.hasDraft && !m.saved {
			parts = append(parts, helpStyle.Render("  "+i18n.T("Ctrl+S: save draft  Ctrl+R: new session  Ctrl+C: quit")))
		} else {
			parts = append(parts, helpStyle.Render("  "+i18n.T("Ctrl+R: new session  Ctrl+O: folder  Ctrl+C: quit")))
		}
	default:
		parts = append(parts, m.input.View())
		if m.completer.Active() {
			parts = append(parts, m.renderSuggestions())
			parts = append(parts, helpStyle.Render("  "+i18n.T("Enter: accept  ↑↓: select  Esc: cancel")))
		} else {
			parts = append(parts, helpStyle.Render("  "+i18n.T("Enter: add  Tab: next phase  @: file  Ctrl+O: folder  Ctrl+R: reset  Ctrl+C: quit")))
		}
	}
	return strings.Join(parts, "\n")
}

func (m Model) renderSuggestions() string {
	items := m.completer.Items()
	sel := m.completer.Selected()

	start := 0
	if sel >= maxSuggestions {
		start = sel - maxSuggestions + 1
	}
	end := min(len(items), start+maxSuggestions)

	rows := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		if i == sel {
			rows = append(rows, selectedStyle.Render(items[i]))
		} else {
			rows = append(rows, normalStyle.Render(items[i]))
		}
	}
	return suggestionBoxStyle.Render(strings.Join(rows, "\n"))
}

func (m Model) viewSaveDialog() string {
	content := fmt.Sprintf("%s\n\n%s\n\n%s",
		dialogTitleStyle.Render(i18n.T("Save Draft File")),
		m.saveInput.View(),
		dimStyle.Render(i18n.T("Enter: save  Esc: cancel")),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialogBoxStyle.Render(content))
}

func (m Model) viewError() string {
	content := fmt.Sprintf("%s\n\n%s\n\n%s",
		errorTitleStyle.Render(i18n.T("Error")),
		errorTextStyle.Render(m.errText),
		dimStyle.Render(i18n.T("Enter: try again  Esc: back")),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, errorBoxStyle.Render(content))
}

func (m Model) viewDirDialog() string {
	content := fmt.Sprintf("%s\n\n%s",
		dialogTitleStyle.Render(i18n.T("Select Reference Directory")),
		m.dirInput.View(),
	)
	if m.dirErr != "" {
		content += "\n\n" + errorTextStyle.Render(m.dirErr)
	}
	content += "\n\n" + dimStyle.Render(i18n.T("Enter: select  Esc: cancel"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, dialogBoxStyle.Render(content))
}
