// internal/tui/discover.go

package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/imadgeboyega/gravelmatch/internal/discovery"
)

func (m *Model) updateDiscover(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "l", "right":
		return m.swipe(discovery.ActionLike)
	case "h", "left":
		return m.swipe(discovery.ActionDislike)
	case "r":
		m.loading = true
		return m.refreshQueueCmd()
	}
	return nil
}

// swipe advances the queue right away and submits in the background
func (m *Model) swipe(action discovery.Action) tea.Cmd {
	d, err := m.deps.Engine.Begin(action)
	if err != nil {
		if !errors.Is(err, discovery.ErrNoCandidate) {
			m.setErr(err)
		}
		return nil
	}
	m.lastErr = nil
	m.pending++
	return m.submitSwipeCmd(d)
}

func (m *Model) updateCelebration(msg tea.KeyMsg) tea.Cmd {
	ev := m.TakeMatchEvent()
	if msg.String() == "c" && ev != nil && ev.MatchID != "" {
		return m.enterChat(ev.MatchID, screenDiscover)
	}
	return nil
}

func (m *Model) viewDiscover() string {
	if m.celebration() != nil {
		return m.viewCelebration()
	}

	var b strings.Builder
	filter := m.deps.Queue.Filter()
	label := "Scopri rider"
	if filter.IsActive() {
		label += selectedStyle.Render(" ●")
	}
	b.WriteString(titleStyle.Render(label))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  %d rider disponibili", m.deps.Queue.Remaining())))
	if m.pending > 0 {
		b.WriteString(mutedStyle.Render("  …"))
	}
	b.WriteString("\n\n")

	candidate, ok := m.deps.Queue.Current()
	switch {
	case m.loading && !ok:
		b.WriteString(mutedStyle.Render("Caricamento…"))
	case !ok:
		b.WriteString(cardStyle.Render("Nessun altro rider per ora.\nProva a cambiare i filtri [f] o aggiorna [r]."))
	default:
		b.WriteString(cardStyle.Render(renderCandidate(candidate)))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("[h/←] passa   [l/→] mi piace   [r] aggiorna"))
	}
	return b.String()
}

func renderCandidate(c discovery.Candidate) string {
	lines := []string{titleStyle.Render(c.Headline())}
	if s := c.Summary(); s != "" {
		lines = append(lines, s)
	}
	if c.Location != "" && c.Location != c.PreferredZone {
		lines = append(lines, mutedStyle.Render("📍 "+c.Location))
	}
	if c.Bio != "" {
		lines = append(lines, "", c.Bio)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewCelebration() string {
	ev := m.celebration()
	content := lipgloss.JoinVertical(lipgloss.Center,
		successStyle.Render("È un match! 🚴"),
		"",
		fmt.Sprintf("Tu e %s vi piacete a vicenda", ev.Candidate.Name),
		"",
		mutedStyle.Render("[c] scrivi un messaggio   qualsiasi tasto per continuare"),
	)
	return celebrationStyle.Render(content)
}
