// Package tui is an interactive question-answering chat over one ingested
// session.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"docqa/internal/service"
)

// QAPort is the TUI-facing subset of the service.
type QAPort interface {
	Ask(ctx context.Context, sessionID, question string, opts service.AskOptions) (*service.Answer, error)
}

// Model is the Bubble Tea model for the chat application.
type Model struct {
	svc       QAPort
	sessionID string
	input     textinput.Model
	viewport  viewport.Model
	answer    *service.Answer
	summary   string
	status    string
	cursor    int
	ready     bool
}

// New creates a chat model bound to one session. The summary line is shown
// under the header and may be empty.
func New(svc QAPort, sessionID, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		svc:       svc,
		sessionID: sessionID,
		input:     ti,
		viewport:  vp,
		summary:   summary,
		status:    "Document loaded. Ask away.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		// account for frames around answer and question boxes
		_, ah := answerBoxStyle.GetFrameSize()
		_, qh := questionBoxStyle.GetFrameSize()
		reserved := 3 + qh + 1 // header + summary + status, plus a spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-ah)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case tea.KeyMsg:
		// Global quits
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" {
				got, err := m.svc.Ask(context.Background(), m.sessionID, q, service.AskOptions{})
				if err != nil {
					m.status = "Error: " + err.Error()
					m.answer = nil
				} else {
					m.status = fmt.Sprintf("Answered using %d of %d chunks", got.Info.ChunksUsed, got.Info.TotalChunksInDB)
					m.answer = got
					m.cursor = 0
				}
				m.input.SetValue("")
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		case "down":
			if m.answer != nil && len(m.answer.Metadata) > 0 {
				m.cursor = (m.cursor + 1) % len(m.answer.Metadata)
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		case "up":
			if m.answer != nil && len(m.answer.Metadata) > 0 {
				m.cursor = (m.cursor - 1 + len(m.answer.Metadata)) % len(m.answer.Metadata)
				m.viewport.SetContent(m.renderAnswer())
				return m, nil
			}
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Document Q&A")
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(m.summary)
	input := questionBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	body := answerBoxStyle.Render(m.viewport.View())
	return header + "\n" + summary + "\n" + body + "\n" + input + "\n" + status
}

func (m Model) renderAnswer() string {
	if m.answer == nil {
		return "No answer yet."
	}
	var b strings.Builder
	b.WriteString(m.answer.Text)
	b.WriteString("\n")
	if len(m.answer.Metadata) == 0 {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("No passages cleared the similarity filter."))
		return b.String()
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Sources (up/down to browse):"))
	b.WriteString("\n")
	for i, item := range m.answer.Metadata {
		line := fmt.Sprintf("Chunk %d  %s  %.1f%%", item.ChunkID, item.Source, item.SimilarityScore)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render(line))
			b.WriteString("\n")
			b.WriteString(item.ContentPreview)
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

var (
	answerBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	questionBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
