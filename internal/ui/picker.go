package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrNothingToPick is returned when no item can be selected.
var ErrNothingToPick = errors.New("no items to pick from")

// PickerItem is one entry shown in the interactive picker.
type PickerItem struct {
	Label    string // e.g. wallet name
	SubLabel string // shown dimmed, e.g. address
	Value    string // returned on selection
	Current  bool   // marked as the current choice; the cursor starts here
	Disabled bool   // shown but not selectable, e.g. a watch-only wallet
}

type pickerModel struct {
	title    string
	items    []PickerItem
	cursor   int
	selected *PickerItem
	quitting bool
}

func newPicker(title string, items []PickerItem) (pickerModel, error) {
	m := pickerModel{title: title, items: items, cursor: -1}
	for i, it := range items {
		if it.Disabled {
			continue
		}
		if m.cursor < 0 || it.Current {
			m.cursor = i
		}
	}
	if m.cursor < 0 {
		return m, ErrNothingToPick
	}
	return m, nil
}

// move steps the cursor by dir (+1/-1) to the next selectable item.
func (m pickerModel) move(dir int) pickerModel {
	for i := m.cursor + dir; i >= 0 && i < len(m.items); i += dir {
		if !m.items[i].Disabled {
			m.cursor = i
			break
		}
	}
	return m
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "k":
		m = m.move(-1)
	case "down", "j":
		m = m.move(1)
	case "enter", " ":
		item := m.items[m.cursor]
		m.selected = &item
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(StyleTitle.Render("  "+m.title) + "\n\n")

	for i, item := range m.items {
		prefix := "    "
		if i == m.cursor {
			prefix = "  ▸ "
		}
		label := item.Label
		if item.Current {
			label += " ●"
		}
		line := prefix + label
		switch {
		case item.Disabled:
			line = StyleDim.Render(line)
		case i == m.cursor:
			line = StyleSelected.Render(line)
		default:
			line = prefix + StyleValue.Render(label)
		}
		if item.SubLabel != "" {
			line += "  " + StyleMeta.Render(item.SubLabel)
		}
		sb.WriteString(line + "\n")
	}

	sb.WriteString("\n")
	sb.WriteString(StyleMeta.Render("  [ ↑↓ / jk ] navigate   [ Enter ] select   [ q ] cancel   ● current") + "\n")
	return sb.String()
}

// PickItem runs an interactive list picker and returns the selected item's
// Value, or "" if the user cancels.
func PickItem(title string, items []PickerItem) (string, error) {
	m, err := newPicker(title, items)
	if err != nil {
		return "", err
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return "", fmt.Errorf("picker: %w", err)
	}
	fm := final.(pickerModel)
	if fm.quitting || fm.selected == nil {
		return "", nil
	}
	return fm.selected.Value, nil
}
