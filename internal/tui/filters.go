// internal/tui/filters.go

package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"github.com/imadgeboyega/gravelmatch/internal/discovery"
	"github.com/imadgeboyega/gravelmatch/internal/profile"
)

const (
	filterMinAge = iota
	filterMaxAge
	filterMinDistance
	filterMaxDistance
	filterLevel
	filterZone
	filterFieldCount
)

var filterLabels = [filterFieldCount]string{
	"Età minima",
	"Età massima",
	"Distanza minima (km)",
	"Distanza massima (km)",
	"Livello",
	"Zona",
}

// filterForm edits the staged draft; nothing reaches the queue before Apply
type filterForm struct {
	focus   int
	numbers [4]string
	err     error
}

func newFilterForm(active discovery.FilterSet) filterForm {
	f := filterForm{}
	for i, v := range []*int{active.MinAge, active.MaxAge, active.MinDistance, active.MaxDistance} {
		if v != nil {
			f.numbers[i] = strconv.Itoa(*v)
		}
	}
	return f
}

func numberEdit(field int, v *int) discovery.Edit {
	switch field {
	case filterMinAge:
		return discovery.WithMinAge(v)
	case filterMaxAge:
		return discovery.WithMaxAge(v)
	case filterMinDistance:
		return discovery.WithMinDistance(v)
	default:
		return discovery.WithMaxDistance(v)
	}
}

func (m *Model) updateFilters(msg tea.KeyMsg) tea.Cmd {
	f := &m.filters
	store := m.deps.Filters

	switch msg.Type {
	case tea.KeyEsc:
		store.DiscardDraft()
		m.screen = screenDiscover
		return nil
	case tea.KeyEnter:
		if f.err != nil {
			return nil
		}
		m.screen = screenDiscover
		m.loading = true
		return m.applyFiltersCmd()
	case tea.KeyTab, tea.KeyDown:
		f.focus = (f.focus + 1) % filterFieldCount
		return nil
	case tea.KeyShiftTab, tea.KeyUp:
		f.focus = (f.focus + filterFieldCount - 1) % filterFieldCount
		return nil
	case tea.KeyCtrlX:
		m.filters = filterForm{}
		m.screen = screenDiscover
		m.loading = true
		return m.resetFiltersCmd()
	}

	switch f.focus {
	case filterLevel:
		levels := append([]profile.ExperienceLevel{profile.LevelNone}, profile.ExperienceLevels...)
		if step := cycleStep(msg); step != 0 {
			next := cycle(levels, store.Draft().ExperienceLevel, step)
			f.err = store.Stage(discovery.WithExperienceLevel(next))
		}
	case filterZone:
		zones := append([]string{""}, profile.Zones...)
		if step := cycleStep(msg); step != 0 {
			next := cycle(zones, store.Draft().Zone, step)
			f.err = store.Stage(discovery.WithZone(next))
		}
	default:
		m.editNumber(msg)
	}
	return nil
}

func (m *Model) editNumber(msg tea.KeyMsg) {
	f := &m.filters
	text := f.numbers[f.focus]
	switch msg.Type {
	case tea.KeyBackspace:
		if text != "" {
			text = text[:len(text)-1]
		}
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			if r >= '0' && r <= '9' && len(text) < 4 {
				text += string(r)
			}
		}
	default:
		return
	}
	f.numbers[f.focus] = text

	var v *int
	if text != "" {
		n, _ := strconv.Atoi(text)
		v = &n
	}
	f.err = m.deps.Filters.Stage(numberEdit(f.focus, v))
}

func cycleStep(msg tea.KeyMsg) int {
	switch msg.String() {
	case "right", "l", " ":
		return 1
	case "left", "h":
		return -1
	}
	return 0
}

func cycle[T comparable](options []T, current T, step int) T {
	i := lo.IndexOf(options, current)
	if i < 0 {
		i = 0
	}
	return options[(i+step+len(options))%len(options)]
}

func (m *Model) viewFilters() string {
	f := m.filters
	draft := m.deps.Filters.Draft()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Filtri") + "\n\n")

	for i := 0; i < filterFieldCount; i++ {
		var value string
		switch i {
		case filterLevel:
			value = "◂ " + draft.ExperienceLevel.Label() + " ▸"
		case filterZone:
			zone := draft.Zone
			if zone == "" {
				zone = "Tutte"
			}
			value = "◂ " + zone + " ▸"
		default:
			value = f.numbers[i]
			if value == "" {
				value = mutedStyle.Render("qualsiasi")
			}
		}

		line := fmt.Sprintf("%-22s %s", filterLabels[i], value)
		if i == f.focus {
			b.WriteString(selectedStyle.Render("▸ ") + line + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	b.WriteString("\n")
	if draft.MinAge != nil && draft.MaxAge != nil && *draft.MinAge > *draft.MaxAge {
		b.WriteString(mutedStyle.Render("L'età minima supera la massima: nessun risultato") + "\n")
	}
	if f.err != nil {
		b.WriteString(errorStyle.Render(f.err.Error()) + "\n")
	}
	b.WriteString(mutedStyle.Render("Tab campo  ←/→ scegli  Invio applica  Ctrl+X azzera  Esc annulla"))
	return b.String()
}
