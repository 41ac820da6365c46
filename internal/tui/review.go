// Package tui provides the terminal user interface for orgmux.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/orgmux/pkg/models"
)

// Resolution is a decision entered for one escalation record.
type Resolution struct {
	// RecordID is the escalation record the decision applies to.
	RecordID string
	// Decision is the recorded decision text.
	Decision string
}

// ReviewModel walks a human through pending escalation records one decision
// at a time. It collects resolutions; persisting them is the caller's job.
type ReviewModel struct {
	records []*models.EscalationRecord
	index   int

	// deciding is true while the decision note input is active.
	deciding bool
	// approving distinguishes an approve note from a deny note.
	approving bool
	input     textinput.Model

	resolutions []Resolution
	resolved    map[string]bool
	quitting    bool

	titleStyle    lipgloss.Style
	headerStyle   lipgloss.Style
	reasonStyle   lipgloss.Style
	priorityStyle lipgloss.Style
	promptStyle   lipgloss.Style
	doneStyle     lipgloss.Style
	dimStyle      lipgloss.Style
}

// NewReview creates a ReviewModel over the given pending records.
func NewReview(records []*models.EscalationRecord) *ReviewModel {
	input := textinput.New()
	input.Placeholder = "optional note"
	input.CharLimit = 200
	input.Width = 60

	return &ReviewModel{
		records:  records,
		input:    input,
		resolved: make(map[string]bool),

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("236")).
			Padding(0, 2),
		headerStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")). // Blue
			Bold(true),
		reasonStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")), // Red
		priorityStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")). // Yellow
			Bold(true),
		promptStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		doneStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")), // Green
		dimStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")), // Gray
	}
}

// Resolutions returns the decisions entered during the session, in order.
func (m *ReviewModel) Resolutions() []Resolution {
	return m.resolutions
}

// Init implements tea.Model.
func (m *ReviewModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.deciding {
		switch keyMsg.String() {
		case "enter":
			m.commitDecision()
			return m, nil
		case "esc":
			m.deciding = false
			m.input.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
	}

	switch keyMsg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "down", "j":
		if m.index < len(m.records)-1 {
			m.index++
		}
	case "up", "k":
		if m.index > 0 {
			m.index--
		}
	case "a", "y":
		m.startDecision(true)
		return m, textinput.Blink
	case "d", "n":
		m.startDecision(false)
		return m, textinput.Blink
	}

	return m, nil
}

// startDecision opens the note input for the current record.
func (m *ReviewModel) startDecision(approve bool) {
	if len(m.records) == 0 || m.resolved[m.records[m.index].ID] {
		return
	}
	m.deciding = true
	m.approving = approve
	m.input.SetValue("")
	m.input.Focus()
}

// commitDecision records the decision for the current record and advances.
func (m *ReviewModel) commitDecision() {
	record := m.records[m.index]

	decision := "denied"
	if m.approving {
		decision = "approved"
	}
	if note := strings.TrimSpace(m.input.Value()); note != "" {
		decision = decision + ": " + note
	}

	m.resolutions = append(m.resolutions, Resolution{RecordID: record.ID, Decision: decision})
	m.resolved[record.ID] = true
	m.deciding = false
	m.input.Blur()

	// Advance past already-decided records; quit when none remain.
	for i := range m.records {
		next := (m.index + 1 + i) % len(m.records)
		if !m.resolved[m.records[next].ID] {
			m.index = next
			return
		}
	}
	m.quitting = true
}

// View implements tea.Model.
func (m *ReviewModel) View() string {
	if m.quitting {
		return ""
	}
	if len(m.records) == 0 {
		return m.doneStyle.Render("No pending escalations.") + "\n"
	}

	var sb strings.Builder
	sb.WriteString(m.titleStyle.Render(" Escalation Review "))
	sb.WriteString("\n\n")

	for i, record := range m.records {
		cursor := "  "
		if i == m.index {
			cursor = "> "
		}
		line := fmt.Sprintf("%s[%s/%s] %s", cursor, record.Role, record.Priority, record.Reason)
		switch {
		case m.resolved[record.ID]:
			sb.WriteString(m.doneStyle.Render(line + "  (resolved)"))
		case i == m.index:
			sb.WriteString(line)
		default:
			sb.WriteString(m.dimStyle.Render(line))
		}
		sb.WriteString("\n")
	}

	record := m.records[m.index]
	sb.WriteString("\n")
	sb.WriteString(m.headerStyle.Render("Task: "))
	sb.WriteString(record.TaskID)
	sb.WriteString("\n")
	sb.WriteString(m.headerStyle.Render("Reason: "))
	sb.WriteString(m.reasonStyle.Render(record.Reason))
	sb.WriteString("\n")
	if record.Recommendation != "" {
		sb.WriteString(m.headerStyle.Render("Recommendation: "))
		sb.WriteString(record.Recommendation)
		sb.WriteString("\n")
	}
	sb.WriteString(m.headerStyle.Render("Priority: "))
	sb.WriteString(m.priorityStyle.Render(string(record.Priority)))
	sb.WriteString("\n\n")

	if m.deciding {
		verb := "Deny"
		if m.approving {
			verb = "Approve"
		}
		sb.WriteString(m.promptStyle.Render(fmt.Sprintf("%s with note:", verb)))
		sb.WriteString("\n")
		sb.WriteString(m.input.View())
		sb.WriteString("\n")
		sb.WriteString(m.dimStyle.Render("(enter to confirm, esc to cancel)"))
	} else {
		sb.WriteString(m.promptStyle.Render("[A]pprove / [D]eny"))
		sb.WriteString("\n")
		sb.WriteString(m.dimStyle.Render("(j/k or arrows to move, q to quit)"))
	}
	sb.WriteString("\n")

	return sb.String()
}
