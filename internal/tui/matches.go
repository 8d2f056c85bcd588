// internal/tui/matches.go

package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imadgeboyega/gravelmatch/internal/matches"
	"github.com/imadgeboyega/gravelmatch/internal/notification"
)

const previewWidth = 40

func (m *Model) updateMatches(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		m.matchSelected = clamp(m.matchSelected-1, 0, len(m.matchList)-1)
	case "down", "j":
		m.matchSelected = clamp(m.matchSelected+1, 0, len(m.matchList)-1)
	case "r":
		m.loading = true
		return m.loadMatchesCmd()
	case "enter":
		if len(m.matchList) == 0 {
			return nil
		}
		return m.enterChat(m.matchList[m.matchSelected].ID, screenMatches)
	}
	return nil
}

func (m *Model) viewMatches() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("I tuoi match") + "\n\n")

	if len(m.matchList) == 0 {
		if m.loading {
			b.WriteString(mutedStyle.Render("Caricamento…"))
		} else {
			b.WriteString(mutedStyle.Render("Ancora nessun match. Continua a scoprire rider!"))
		}
		return b.String()
	}

	for i, match := range m.matchList {
		line := m.matchLine(match)
		if i == m.matchSelected {
			b.WriteString(selectedStyle.Render("▸ ") + line + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	b.WriteString("\n" + mutedStyle.Render("↑/↓ scegli  Invio apri chat  [r] aggiorna"))
	return b.String()
}

func (m *Model) matchLine(match matches.Match) string {
	rider := match.Counterpart()
	name := rider.Headline()
	if rider.IsZero() {
		name = "Rider non disponibile"
	}

	if match.LastMessage == nil {
		return name + "  " + mutedStyle.Render("Nuovo match · "+notification.RelativeTime(match.CreatedAt.Time, m.now))
	}

	preview := match.LastMessage.Content
	if match.LastMessage.SenderID != "" && match.LastMessage.SenderID != rider.ID {
		preview = "Tu: " + preview
	}
	return name + "  " + mutedStyle.Render(truncate(preview, previewWidth)+" · "+
		notification.RelativeTime(match.LastMessage.CreatedAt.Time, m.now))
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-1]) + "…"
}
