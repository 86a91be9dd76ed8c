// Package tui is the interactive chat of the pc command.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Werneck0live/personal-controller/internal/chat"
)

// ChatPort is the TUI-facing subset of the assistant.
type ChatPort interface {
	Chat(ctx context.Context, s *chat.Session, query string) (*chat.Response, error)
}

type answerMsg struct {
	resp *chat.Response
	err  error
}

// Model is the Bubble Tea model of the chat screen.
type Model struct {
	assistant ChatPort
	session   *chat.Session
	timeout   time.Duration

	input    textinput.Model
	viewport viewport.Model
	status   string
	waiting  bool
	ready    bool
}

func New(assistant ChatPort, session *chat.Session) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Pergunte sobre fretes, empresas, rotas..."
	ti.Focus()
	ti.CharLimit = 0
	return Model{
		assistant: assistant,
		session:   session,
		timeout:   60 * time.Second,
		input:     ti,
		viewport:  viewport.New(0, 0),
		status:    "Enter envia, Ctrl+C sai, Ctrl+L limpa a conversa.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) ask(q string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		resp, err := m.assistant.Chat(ctx, m.session, q)
		return answerMsg{resp: resp, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, bh := historyBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, input
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved-bh)
		m.refresh()
		return m, nil

	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = "Erro: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("tokens=%d confiança=%.0f%% fontes=%d",
				msg.resp.TokensUsed, msg.resp.Confidence*100, len(msg.resp.Sources))
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlL:
			m.session.Clear()
			m.status = "Conversa limpa."
			m.refresh()
			return m, nil
		case tea.KeyEnter:
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.waiting {
				return m, nil
			}
			m.input.Reset()
			m.waiting = true
			m.status = "Pensando..."
			return m, m.ask(q)
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) refresh() {
	m.viewport.SetContent(renderHistory(m.session.History()))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "Carregando..."
	}
	header := headerStyle.Render("Personal Controller")
	history := historyBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + history + "\n" + input + "\n" + status
}

// renderHistory omits system messages.
func renderHistory(msgs []chat.Message) string {
	var b strings.Builder
	for _, msg := range msgs {
		switch msg.Role {
		case chat.RoleUser:
			b.WriteString(userStyle.Render(msg.Role.Label()+":") + " " + msg.Content + "\n\n")
		case chat.RoleAssistant:
			b.WriteString(assistantStyle.Render(msg.Role.Label()+":") + " " + msg.Content + "\n")
			if msg.Metadata != nil && len(msg.Metadata.Sources) > 0 {
				b.WriteString(sourceStyle.Render("Fontes: "+strings.Join(msg.Metadata.Sources, ", ")) + "\n")
			}
			b.WriteString("\n")
		}
	}
	if b.Len() == 0 {
		return "Nenhuma mensagem ainda."
	}
	return b.String()
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	historyBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	sourceStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
