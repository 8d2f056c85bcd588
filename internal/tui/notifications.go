// internal/tui/notifications.go

package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/imadgeboyega/gravelmatch/internal/notification"
)

func (m *Model) updateNotifications(msg tea.KeyMsg) tea.Cmd {
	items := m.deps.Notifications.Items()

	switch msg.String() {
	case "up", "k":
		m.notifSelected = clamp(m.notifSelected-1, 0, len(items)-1)
	case "down", "j":
		m.notifSelected = clamp(m.notifSelected+1, 0, len(items)-1)
	case "r":
		return m.refreshNotificationsCmd()
	case "a":
		if !m.deps.Notifications.HasUnreadItems() {
			return nil
		}
		return m.markAllReadCmd()
	case "enter":
		if len(items) == 0 {
			return nil
		}
		idx := clamp(m.notifSelected, 0, len(items)-1)
		return m.openNotificationCmd(items[idx].ID)
	}
	return nil
}

func (m *Model) viewNotifications() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Notifiche") + "\n\n")

	items := m.deps.Notifications.Items()
	if len(items) == 0 {
		b.WriteString(mutedStyle.Render("Nessuna notifica"))
		return b.String()
	}

	selected := clamp(m.notifSelected, 0, len(items)-1)
	for i, n := range items {
		line := m.notificationLine(n)
		if i == selected {
			b.WriteString(selectedStyle.Render("▸ ") + line + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	b.WriteString("\n")
	hints := "↑/↓ scegli  Invio apri  [r] aggiorna"
	if m.deps.Notifications.HasUnreadItems() {
		hints += "  [a] Segna tutte come lette"
	}
	b.WriteString(mutedStyle.Render(hints))
	return b.String()
}

func (m *Model) notificationLine(n notification.Notification) string {
	icon := "🔔"
	switch n.Type {
	case notification.TypeMatch:
		icon = "🎉"
	case notification.TypeMessage:
		icon = "💬"
	}

	title := n.Title
	if !n.Read {
		title = unreadStyle.Render("● " + title)
	}
	when := mutedStyle.Render(notification.RelativeTime(n.CreatedAt.Time, m.now))
	return icon + " " + title + "  " + truncate(n.Body, previewWidth) + "  " + when
}
