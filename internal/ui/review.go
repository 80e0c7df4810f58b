package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Proposal is a staged change waiting for its second step.
type Proposal struct {
	Kind    string // e.g. "Whitelist addition"
	Detail  string // what would change
	Confirm func() error
	Cancel  func() error
}

// reviewModel is the Bubble Tea model for reviewing pending proposals.
type reviewModel struct {
	title     string
	proposals []Proposal
	cursor    int
	flash     string
	flashErr  bool
	actions   []string // applied actions, in order
}

func (m reviewModel) Init() tea.Cmd { return nil }

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.flash, m.flashErr = "", false
	switch key.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.proposals)-1 {
			m.cursor++
		}
	case "c":
		m = m.apply("confirmed", func(p Proposal) error { return p.Confirm() })
	case "x":
		m = m.apply("cancelled", func(p Proposal) error { return p.Cancel() })
	}
	return m, nil
}

func (m reviewModel) apply(verb string, fn func(Proposal) error) reviewModel {
	if len(m.proposals) == 0 {
		return m
	}
	p := m.proposals[m.cursor]
	if err := fn(p); err != nil {
		m.flash, m.flashErr = err.Error(), true
		return m
	}
	m.actions = append(m.actions, p.Kind+" "+verb)
	m.flash = p.Kind + " " + verb

	rest := make([]Proposal, 0, len(m.proposals)-1)
	rest = append(rest, m.proposals[:m.cursor]...)
	m.proposals = append(rest, m.proposals[m.cursor+1:]...)
	if m.cursor >= len(m.proposals) && m.cursor > 0 {
		m.cursor--
	}
	return m
}

func (m reviewModel) View() string {
	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(StyleTitle.Render("  "+m.title) + "\n\n")

	if len(m.proposals) == 0 {
		sb.WriteString("  " + StyleMeta.Render("Nothing pending.") + "\n")
	}
	for i, p := range m.proposals {
		prefix := "    "
		if i == m.cursor {
			prefix = "  ▸ "
		}
		line := prefix + StyleValue.Render(p.Kind) + "  " + StyleMeta.Render(p.Detail)
		if i == m.cursor {
			line = StyleSelected.Render(prefix+p.Kind) + "  " + StyleMeta.Render(p.Detail)
		}
		sb.WriteString(line + "\n")
	}

	sb.WriteString("\n")
	switch {
	case m.flash != "" && m.flashErr:
		sb.WriteString("  " + Err(m.flash))
	case m.flash != "":
		sb.WriteString("  " + Success(m.flash))
	default:
		sb.WriteString(reviewControls())
	}
	sb.WriteString("\n")
	return sb.String()
}

func reviewControls() string {
	sep := StyleMeta.Render("   ")
	var sb strings.Builder
	sb.WriteString(StyleMeta.Render("  [ ↑↓ ] navigate"))
	sb.WriteString(sep)
	sb.WriteString(StyleSuccess.Render("[ c ]"))
	sb.WriteString(StyleMeta.Render(" confirm"))
	sb.WriteString(sep)
	sb.WriteString(StyleError.Render("[ x ]"))
	sb.WriteString(StyleMeta.Render(" cancel"))
	sb.WriteString(sep)
	sb.WriteString(StyleMeta.Render("[ q ] quit"))
	return sb.String()
}

// RunReview lists proposals and lets the user confirm or cancel each one.
// It returns the actions that were applied.
func RunReview(title string, proposals []Proposal) ([]string, error) {
	m := reviewModel{title: title, proposals: proposals}
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return nil, err
	}
	return final.(reviewModel).actions, nil
}
