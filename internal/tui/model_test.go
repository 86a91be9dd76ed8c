package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Werneck0live/personal-controller/internal/chat"
)

type chatMock struct {
	err error
}

func (c chatMock) Chat(_ context.Context, s *chat.Session, q string) (*chat.Response, error) {
	if c.err != nil {
		return nil, c.err
	}
	s.Add(chat.RoleUser, q)
	tokens := 3
	s.AddWithMetadata(chat.RoleAssistant, "resposta", &chat.MessageMetadata{TokensUsed: &tokens, Sources: []string{"Route(Franca)"}})
	return &chat.Response{Response: "resposta", Sources: []string{"Route(Franca)"}, Confidence: 0.85, TokensUsed: 3}, nil
}

func typeText(m tea.Model, s string) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

func TestModelAsksAndRenders(t *testing.T) {
	s := chat.NewSession("tui", 0)
	var m tea.Model = New(chatMock{}, s)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = typeText(m, "quais rotas?")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.(Model).waiting)

	m, _ = m.Update(cmd())
	got := m.(Model)
	assert.False(t, got.waiting)
	assert.Contains(t, got.status, "tokens=3")
	assert.Equal(t, "", got.input.Value())

	view := renderHistory(s.History())
	assert.Contains(t, view, "quais rotas?")
	assert.Contains(t, view, "Fontes: Route(Franca)")
}

func TestModelErrorAndClear(t *testing.T) {
	s := chat.NewSession("tui", 0)
	var m tea.Model = New(chatMock{err: errors.New("falhou")}, s)
	m, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = typeText(m, "oi")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = m.Update(cmd())
	assert.Contains(t, m.(Model).status, "Erro: falhou")

	s.Add(chat.RoleUser, "x")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, "Nenhuma mensagem ainda.", renderHistory(s.History()))

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestEnterIgnoredWhenEmpty(t *testing.T) {
	var m tea.Model = New(chatMock{}, chat.NewSession("tui", 0))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}
