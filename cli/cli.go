// cli/cli.go

// Package cli is the full-screen terminal UI for routerchat. It drives the
// same session.Machine and session.Dispatcher as the line-oriented loop, so
// every dispatched question is logged exactly once.
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mwiater/routerchat/internal/openrouter"
	"github.com/mwiater/routerchat/internal/session"
	"github.com/mwiater/routerchat/models"
)

// item adapts a registry entry to the bubbles list.
type item struct {
	entry models.ModelEntry
}

// Title returns the menu label, e.g. "1. Llama 2 70B".
func (i item) Title() string { return i.entry.Key + ". " + i.entry.Name }

// Description returns the provider model ID.
func (i item) Description() string { return i.entry.ID }

// FilterValue returns the display name, used for list filtering.
func (i item) FilterValue() string { return i.entry.Name }

// transcriptLine is one rendered exchange in the chat viewport.
type transcriptLine struct {
	role    string
	content string
	failed  bool
}

// turnDoneMsg carries the outcome of a dispatched question.
type turnDoneMsg struct {
	turn session.Turn
}

// model is the Bubble Tea model. The interactive state lives in machine;
// everything else is presentation.
type model struct {
	machine    session.Machine
	dispatcher *session.Dispatcher
	logPath    string
	debug      bool

	modelList list.Model
	textArea  textarea.Model
	viewport  viewport.Model
	spinner   spinner.Model

	transcript []transcriptLine
	// notice is a one-line status shown under the input, e.g. a validation hint.
	notice    string
	lastUsage *openrouter.Usage
	lastTurn  time.Duration

	width, height    int
	requestStartTime time.Time
}

// initialModel wires the bubbles components around a fresh machine.
func initialModel(d *session.Dispatcher, logPath string, debug bool) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ta := textarea.New()
	ta.Placeholder = "Type a question, or 'quit' to exit..."
	ta.Prompt = "Ask Anything: "
	ta.ShowLineNumbers = false
	ta.CharLimit = -1
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	entries := models.List()
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = item{entry: e}
	}
	modelList := list.New(items, list.NewDefaultDelegate(), 0, 0)
	modelList.Title = "Available Free Models"

	return &model{
		machine:    session.NewMachine(),
		dispatcher: d,
		logPath:    logPath,
		debug:      debug,
		modelList:  modelList,
		textArea:   ta,
		viewport:   viewport.New(100, 5),
		spinner:    s,
	}
}

// dispatchCmd runs one turn off the UI goroutine. Only one is ever in flight
// because the machine stays in Dispatching until turnDoneMsg arrives.
func dispatchCmd(d *session.Dispatcher, entry models.ModelEntry, question string) tea.Cmd {
	return func() tea.Msg {
		return turnDoneMsg{turn: d.Dispatch(context.Background(), entry, question)}
	}
}

// Init starts the spinner animation.
func (m *model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update applies one message to the model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.machine = m.machine.Terminate()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.modelList.SetSize(msg.Width-2, msg.Height-4)
		m.textArea.SetWidth(msg.Width - 3)
		headerHeight := 3
		footerHeight := 4
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - headerHeight - footerHeight
		return m, nil

	case turnDoneMsg:
		return m, m.finishTurn(msg.turn)

	case spinner.TickMsg:
		if m.machine.State == session.Dispatching {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch m.machine.State {
	case session.SelectingModel:
		var cmd tea.Cmd
		m.modelList, cmd = m.modelList.Update(msg)
		cmds = append(cmds, cmd)
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" && m.modelList.FilterState() != list.Filtering {
			if selected, ok := m.modelList.SelectedItem().(item); ok {
				next, err := m.machine.Select(selected.entry.Key)
				if err == nil {
					m.machine = next
					m.notice = "✓ Selected: " + next.Model.Name
					cmds = append(cmds, m.textArea.Focus())
				}
			}
		}

	case session.AwaitingQuestion:
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
			return m, m.submit()
		}
		var cmd tea.Cmd
		m.textArea, cmd = m.textArea.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// submit feeds the textarea content to the machine.
func (m *model) submit() tea.Cmd {
	next, in := m.machine.Input(m.textArea.Value())
	m.machine = next
	switch in {
	case session.InputQuit:
		return tea.Quit
	case session.InputEmpty:
		m.notice = "Please enter a question."
		return nil
	}

	m.textArea.Reset()
	m.textArea.Blur()
	m.notice = ""
	m.transcript = append(m.transcript, transcriptLine{role: "You", content: m.machine.Question})
	m.requestStartTime = time.Now()
	m.viewport.GotoBottom()
	return tea.Batch(m.spinner.Tick, dispatchCmd(m.dispatcher, m.machine.Model, m.machine.Question))
}

// finishTurn records the outcome in the transcript and returns to input. The
// returned command restarts the cursor blink.
func (m *model) finishTurn(turn session.Turn) tea.Cmd {
	m.transcript = append(m.transcript, transcriptLine{
		role:    "Assistant",
		content: turn.Text(),
		failed:  !turn.Result.OK(),
	})
	m.lastUsage = turn.Result.Usage
	m.lastTurn = time.Since(m.requestStartTime)
	switch {
	case turn.LogErr != nil:
		m.notice = fmt.Sprintf("⚠ Could not save to %s: %v", m.logPath, turn.LogErr)
	case turn.Result.OK():
		m.notice = "✓ Saved to " + m.logPath
	default:
		m.notice = ""
	}
	m.machine = m.machine.Complete()
	m.viewport.GotoBottom()
	return m.textArea.Focus()
}

// View renders the current screen.
func (m *model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.machine.State {
	case session.SelectingModel:
		return lipgloss.NewStyle().Margin(1, 2).Render(m.modelList.View())
	case session.Terminated:
		return "Goodbye!\n"
	default:
		return m.chatView()
	}
}

// chatView renders the header, transcript, and input or spinner.
func (m *model) chatView() string {
	var builder strings.Builder

	headerStyle := lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	status := lipgloss.JoinHorizontal(lipgloss.Top,
		headerStyle.Render("Model: "+m.machine.Model.Name),
		headerStyle.MarginLeft(1).Render(m.machine.Model.ID),
	)
	help := lipgloss.NewStyle().Faint(true).Render(" (type quit or ctrl+c to exit)")
	builder.WriteString(status + help + "\n\n")

	userStyle := lipgloss.NewStyle().Bold(true)
	assistantStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	errorStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	var history strings.Builder
	for _, line := range m.transcript {
		var role string
		switch {
		case line.role == "You":
			role = userStyle.Render("You: ")
		case line.failed:
			role = errorStyle.Render("❌ ")
		default:
			role = assistantStyle.Render("Assistant: ")
		}
		wrapped := lipgloss.NewStyle().Width(max(m.width-lipgloss.Width(role)-2, 10)).Render(line.content)
		history.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, role, wrapped) + "\n")
	}
	m.viewport.SetContent(history.String())
	builder.WriteString(m.viewport.View())

	if m.machine.State == session.Dispatching {
		timer := fmt.Sprintf("%.1f", time.Since(m.requestStartTime).Seconds())
		builder.WriteString("\n" + m.spinner.View() + " Sending request... " + timer + "s")
	} else {
		builder.WriteString("\n" + m.textArea.View())
	}

	if m.notice != "" {
		builder.WriteString("\n" + lipgloss.NewStyle().Faint(true).Render(m.notice))
	}
	if m.debug && m.lastUsage != nil {
		builder.WriteString("\n" + formatUsage(m.lastUsage, m.lastTurn))
	}
	return builder.String()
}

// formatUsage renders token counts and latency for debug mode.
func formatUsage(u *openrouter.Usage, took time.Duration) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	return style.Render(fmt.Sprintf(
		"  >>> [Prompt: %d Tokens] [Completion: %d Tokens] [Total: %d Tokens] [Duration: %.1fs]",
		u.PromptTokens, u.CompletionTokens, u.TotalTokens, took.Seconds(),
	))
}

// StartTUI runs the full-screen UI until the user quits.
func StartTUI(d *session.Dispatcher, logPath string, debug bool) error {
	m := initialModel(d, logPath, debug)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("cli: run program: %w", err)
	}
	return nil
}
