package ui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func press(t *testing.T, m reviewModel, keys ...tea.KeyMsg) reviewModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(reviewModel)
	}
	return m
}

type recorder struct{ calls []string }

func (r *recorder) proposal(kind string, err error) Proposal {
	return Proposal{
		Kind:    kind,
		Detail:  "detail of " + kind,
		Confirm: func() error { r.calls = append(r.calls, "confirm "+kind); return err },
		Cancel:  func() error { r.calls = append(r.calls, "cancel "+kind); return err },
	}
}

func TestReviewConfirmAndCancel(t *testing.T) {
	rec := &recorder{}
	m := reviewModel{title: "Pending", proposals: []Proposal{
		rec.proposal("Whitelist addition", nil),
		rec.proposal("Daily limit change", nil),
	}}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyDown}, runes("x"))
	assert.Equal(t, []string{"cancel Daily limit change"}, rec.calls)
	require.Len(t, m.proposals, 1)
	assert.Equal(t, 0, m.cursor, "cursor moves back when the last row goes")
	assert.Contains(t, m.View(), "Daily limit change cancelled")

	m = press(t, m, runes("c"))
	assert.Equal(t, "confirm Whitelist addition", rec.calls[1])
	assert.Empty(t, m.proposals)
	assert.Equal(t, []string{"Daily limit change cancelled", "Whitelist addition confirmed"}, m.actions)

	m = press(t, m, runes("c"))
	assert.Len(t, rec.calls, 2, "nothing left to confirm")
	assert.Contains(t, m.View(), "Nothing pending.")
}

func TestReviewFailedActionKeepsProposal(t *testing.T) {
	rec := &recorder{}
	m := reviewModel{proposals: []Proposal{rec.proposal("Whitelist removal", errors.New("caller is not the owner"))}}

	m = press(t, m, runes("c"))
	require.Len(t, m.proposals, 1)
	assert.Empty(t, m.actions)
	assert.True(t, m.flashErr)
	assert.Contains(t, m.View(), "caller is not the owner")

	m = press(t, m, runes("j"))
	assert.False(t, m.flashErr, "flash clears on the next key")
	assert.Contains(t, m.View(), "confirm")
}

func TestReviewNavigationBounds(t *testing.T) {
	rec := &recorder{}
	m := reviewModel{proposals: []Proposal{rec.proposal("a", nil), rec.proposal("b", nil)}}
	m = press(t, m, runes("k"))
	assert.Equal(t, 0, m.cursor)
	m = press(t, m, runes("j"), runes("j"), runes("j"))
	assert.Equal(t, 1, m.cursor)
}

func TestReviewQuit(t *testing.T) {
	_, cmd := reviewModel{}.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
