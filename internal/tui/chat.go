// internal/tui/chat.go

package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) updateChat(msg tea.KeyMsg) tea.Cmd {
	t := m.deps.Transcript

	switch msg.Type {
	case tea.KeyEsc:
		m.screen = m.chatReturn
		if m.chatReturn == screenMatches {
			return m.loadMatchesCmd()
		}
		return nil
	case tea.KeyEnter:
		if t.Sending() {
			return nil
		}
		return m.sendChatCmd()
	case tea.KeyCtrlG:
		return m.icebreakerCmd()
	case tea.KeyCtrlR:
		return m.refreshChatCmd()
	}

	// the draft is frozen while a send is outstanding
	if t.Sending() {
		return nil
	}
	switch msg.Type {
	case tea.KeyBackspace:
		runes := []rune(t.Draft())
		if len(runes) > 0 {
			t.SetDraft(string(runes[:len(runes)-1]))
		}
	case tea.KeyRunes, tea.KeySpace:
		t.SetDraft(t.Draft() + string(msg.Runes))
	}
	return nil
}

func (m *Model) viewChat() string {
	t := m.deps.Transcript
	var b strings.Builder

	title := "Chat"
	if c := t.Counterpart(); !c.IsZero() {
		title = c.Headline()
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")

	messages := t.Messages()
	switch {
	case m.loading && len(messages) == 0:
		b.WriteString(mutedStyle.Render("Caricamento…") + "\n")
	case len(messages) == 0:
		b.WriteString(mutedStyle.Render("Rompi il ghiaccio! Ctrl+G per un suggerimento.") + "\n")
	}
	for _, msg := range messages {
		if msg.IsMine {
			b.WriteString(mineStyle.Render("Tu: "+msg.Content) + "\n")
		} else {
			b.WriteString(theirsStyle.Render(msg.Content) + "\n")
		}
	}

	b.WriteString("\n")
	prompt := "> " + t.Draft()
	if t.Sending() {
		b.WriteString(mutedStyle.Render(prompt+"  invio…") + "\n")
	} else {
		b.WriteString(selectedStyle.Render(prompt+"_") + "\n")
	}
	b.WriteString(mutedStyle.Render("Invio manda  Ctrl+G suggerimento  Ctrl+R aggiorna  Esc indietro"))
	return b.String()
}
