// Package tui is the interactive terminal front end.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"planilhas/app"
	apperrors "planilhas/errors"
	"planilhas/interpret"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type submitDoneMsg struct {
	res interpret.Result
	err error
}

type downloadDoneMsg struct {
	path string
	err  error
}

type toastsChangedMsg struct{}

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	app    *app.App
	ctx    context.Context
	toasts <-chan struct{}

	input   textinput.Model
	spinner spinner.Model

	width      int
	height     int
	submitting bool
	status     string
	showHelp   bool
	quitting   bool
}

func New(ctx context.Context, a *app.App) Model {
	ti := textinput.New()
	ti.Placeholder = "Describe what to do with the spreadsheets, or /help"
	ti.CharLimit = 2000
	ti.Width = 80
	ti.Focus()
	if draft, err := a.Prefs().Draft(); err == nil {
		ti.SetValue(draft)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorPrimary)

	return Model{
		app:     a,
		ctx:     ctx,
		toasts:  a.Notifier().Subscribe(),
		input:   ti,
		spinner: sp,
	}
}

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, a *app.App) error {
	_, err := tea.NewProgram(New(ctx, a), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForToasts(m.toasts))
}

func waitForToasts(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return toastsChangedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(20, m.width-6)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			if m.submitting {
				return m, nil
			}
			return m.handleLine(m.input.Value())
		}
		if m.submitting {
			return m, nil
		}

	case submitDoneMsg:
		// Failures are already shown as toasts. A built submission cleared the
		// draft; one that was never built kept it.
		m.submitting = false
		m.status = ""
		if draft, err := m.app.Prefs().Draft(); err == nil {
			m.input.SetValue(draft)
		}
		if msg.err == nil && msg.res.SavedPath != "" {
			m.status = "Saved " + msg.res.SavedPath
		}
		return m, nil

	case downloadDoneMsg:
		if msg.err == nil {
			m.status = "Saved " + msg.path
		}
		return m, nil

	case toastsChangedMsg:
		return m, waitForToasts(m.toasts)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		m.app.SetDraft(v)
	}
	return m, cmd
}

// handleLine runs a command or submits the line as the instruction.
func (m Model) handleLine(line string) (tea.Model, tea.Cmd) {
	c, err := parseCommand(line)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.status = ""
	m.showHelp = false

	switch c.kind {
	case cmdQuit:
		m.quitting = true
		return m, tea.Quit
	case cmdHelp:
		m.showHelp = true
	case cmdSubmit:
		if c.arg == "" {
			return m, nil
		}
		m.submitting = true
		a, ctx, prompt := m.app, m.ctx, c.arg
		return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
			res, err := a.Submit(ctx, prompt)
			return submitDoneMsg{res: res, err: err}
		})
	case cmdDownload:
		a, ctx, ref := m.app, m.ctx, c.arg
		m.input.Reset()
		return m, func() tea.Msg {
			path, err := a.Download(ctx, ref)
			return downloadDoneMsg{path: path, err: err}
		}
	default:
		if err := m.apply(c); err != nil {
			if !apperrors.IsUnsupportedFileType(err) {
				m.status = err.Error()
			}
			return m, nil
		}
	}
	m.input.Reset()
	m.app.SetDraft("")
	return m, nil
}

func (m Model) apply(c command) error {
	switch c.kind {
	case cmdNewSession:
		_, err := m.app.NewSession()
		return err
	case cmdCount:
		_, err := m.app.SetSlotCount(c.n)
		return err
	case cmdFile:
		path := c.arg
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		return m.app.AttachFile(c.slot, path)
	case cmdAlias:
		return m.app.SetAlias(c.slot, c.arg)
	case cmdSheet:
		return m.app.SetSheet(c.slot, c.arg)
	case cmdClear:
		return m.app.ClearFile(c.slot)
	case cmdAuto:
		return m.app.SetAutoDownload(c.on)
	}
	return nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	state, err := m.app.Snapshot()
	if err != nil {
		return "error: " + err.Error() + "\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Planilhas"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  session %s", shortID(state.SessionID))))
	b.WriteString("\n\n")

	var slots strings.Builder
	for i, s := range state.Slots {
		file := mutedStyle.Render("(empty)")
		if s.Path != "" {
			file = textStyle.Render(filepath.Base(s.Path))
		}
		line := fmt.Sprintf("%d. %s", i+1, file)
		if s.Alias != "" {
			line += mutedStyle.Render(" as ") + s.Alias
		}
		if s.Sheet != nil {
			line += mutedStyle.Render(" sheet ") + *s.Sheet
		}
		slots.WriteString(line + "\n")
	}
	auto := "off"
	if state.AutoDownload {
		auto = "on"
	}
	slots.WriteString(mutedStyle.Render(fmt.Sprintf("auto-download %s, format %s", auto, state.OutFormat)))
	b.WriteString(boxStyle.Render(slots.String()))
	b.WriteString("\n\n")

	if len(state.Transcript) == 0 {
		b.WriteString(mutedStyle.Render("No messages yet."))
		b.WriteString("\n")
	}
	for _, e := range state.Transcript {
		stamp := mutedStyle.Render(e.At.Format("15:04:05"))
		if e.Role == app.RoleUser {
			b.WriteString(userStyle.Render("You") + " " + stamp + "\n")
		} else {
			b.WriteString(assistantStyle.Render("Assistant") + " " + stamp + "\n")
		}
		b.WriteString(textStyle.Render(e.Text) + "\n")
		for _, l := range e.Links {
			b.WriteString(mutedStyle.Render("  "+l.Label+": ") + l.URL + "\n")
		}
		b.WriteString("\n")
	}

	for _, t := range state.Toasts {
		b.WriteString(toastStyle.Render(t.Message))
		b.WriteString("\n")
	}

	if m.showHelp {
		b.WriteString(boxStyle.Render(helpText))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(mutedStyle.Render(m.status))
		b.WriteString("\n")
	}

	if m.submitting {
		b.WriteString(m.spinner.View() + " Processing...\n")
	} else {
		b.WriteString(m.input.View() + "\n")
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
