// Package tui provides the Bubble Tea question-count prompt.
package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	promptTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	promptHintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	promptErrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// PromptModel asks for the number of exam questions.
type PromptModel struct {
	input     textinput.Model
	available int
	topics    int

	count     int
	confirmed bool
	errText   string
}

// NewPromptModel constructs a count prompt. available and topics are shown
// as a hint and used for inline validation.
func NewPromptModel(available, topics int) *PromptModel {
	input := textinput.New()
	input.Placeholder = "5"
	input.CharLimit = 4
	input.Width = 6
	input.Focus()
	return &PromptModel{input: input, available: available, topics: topics}
}

// Count returns the accepted value; Confirmed reports whether the user
// accepted rather than cancelled.
func (m *PromptModel) Count() int      { return m.count }
func (m *PromptModel) Confirmed() bool { return m.confirmed }

// Init implements tea.Model.
func (m *PromptModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *PromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.confirmed = false
			return m, tea.Quit
		case tea.KeyEnter:
			value := strings.TrimSpace(m.input.Value())
			count, err := strconv.Atoi(value)
			if err != nil || count <= 0 {
				m.errText = "enter a positive number"
				return m, nil
			}
			if count > m.available {
				m.errText = fmt.Sprintf("only %d problems available", m.available)
				return m, nil
			}
			m.count = count
			m.confirmed = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.errText != "" {
		m.errText = ""
	}
	return m, cmd
}

// View implements tea.Model.
func (m *PromptModel) View() string {
	var b strings.Builder
	b.WriteString(promptTitleStyle.Render("How many questions?"))
	b.WriteString("\n")
	b.WriteString(promptHintStyle.Render(fmt.Sprintf("%d problems across %d topics", m.available, m.topics)))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.errText != "" {
		b.WriteString(promptErrStyle.Render(m.errText))
		b.WriteString("\n")
	}
	b.WriteString(promptHintStyle.Render("enter to accept, esc to cancel"))
	b.WriteString("\n")
	return b.String()
}
