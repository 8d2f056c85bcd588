// internal/tui/login.go

package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	fieldEmail = iota
	fieldPassword
	fieldName
)

type loginForm struct {
	register   bool
	focus      int
	values     [3]string
	submitting bool
	err        error
}

func newLoginForm() loginForm {
	return loginForm{}
}

func (f *loginForm) fieldCount() int {
	if f.register {
		return 3
	}
	return 2
}

func (m *Model) updateLogin(msg tea.KeyMsg) tea.Cmd {
	f := &m.login
	if f.submitting {
		return nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		return tea.Quit
	case tea.KeyTab, tea.KeyDown:
		f.focus = (f.focus + 1) % f.fieldCount()
		return nil
	case tea.KeyShiftTab, tea.KeyUp:
		f.focus = (f.focus + f.fieldCount() - 1) % f.fieldCount()
		return nil
	case tea.KeyCtrlN:
		f.register = !f.register
		f.focus = min(f.focus, f.fieldCount()-1)
		f.err = nil
		return nil
	case tea.KeyBackspace:
		runes := []rune(f.values[f.focus])
		if len(runes) > 0 {
			f.values[f.focus] = string(runes[:len(runes)-1])
		}
		return nil
	case tea.KeyEnter:
		f.submitting = true
		f.err = nil
		m.status = ""
		if f.register {
			return m.registerCmd(f.values[fieldName], f.values[fieldEmail], f.values[fieldPassword])
		}
		return m.loginCmd(f.values[fieldEmail], f.values[fieldPassword])
	case tea.KeyRunes, tea.KeySpace:
		f.values[f.focus] += string(msg.Runes)
		return nil
	}
	return nil
}

func (m *Model) registerCmd(name, email, password string) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return loginDoneMsg{err: m.deps.Session.Register(ctx, name, email, password)}
	}
}

func (m *Model) viewLogin() string {
	f := m.login
	var b strings.Builder

	heading := "Accedi"
	if f.register {
		heading = "Registrati"
	}
	b.WriteString(titleStyle.Render(heading) + "\n\n")

	labels := []string{"Email", "Password", "Nome"}
	for i := 0; i < f.fieldCount(); i++ {
		value := f.values[i]
		if i == fieldPassword {
			value = strings.Repeat("•", len([]rune(value)))
		}
		line := labels[i] + ": " + value
		if i == f.focus {
			b.WriteString(selectedStyle.Render("▸ "+line+"_") + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	b.WriteString("\n")
	switch {
	case f.submitting:
		b.WriteString(mutedStyle.Render("Attendere…"))
	case f.err != nil:
		b.WriteString(errorStyle.Render(f.err.Error()))
	default:
		b.WriteString(mutedStyle.Render("Tab campo  Invio conferma  Ctrl+N accedi/registrati  Esc esci"))
	}
	return b.String()
}
