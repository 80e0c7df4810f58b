package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pick(t *testing.T, m pickerModel, keys ...tea.KeyMsg) pickerModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(pickerModel)
	}
	return m
}

func wallets() []PickerItem {
	return []PickerItem{
		{Label: "alice", Value: "alice"},
		{Label: "watcher", Value: "watcher", Disabled: true},
		{Label: "bob", Value: "bob", Current: true},
		{Label: "carol", Value: "carol"},
	}
}

func TestPickerStartsOnCurrent(t *testing.T) {
	m, err := newPicker("Act as", wallets())
	require.NoError(t, err)
	assert.Equal(t, 2, m.cursor)
	assert.Contains(t, m.View(), "bob ●")
}

func TestPickerSkipsDisabled(t *testing.T) {
	m, err := newPicker("Act as", wallets())
	require.NoError(t, err)

	m = pick(t, m, runes("k"))
	assert.Equal(t, 0, m.cursor, "watch-only wallet is skipped")
	m = pick(t, m, runes("k"))
	assert.Equal(t, 0, m.cursor, "stays at the top")
	m = pick(t, m, runes("j"), runes("j"), runes("j"))
	assert.Equal(t, 3, m.cursor)

	m = pick(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, m.selected)
	assert.Equal(t, "carol", m.selected.Value)
}

func TestPickerFirstSelectableWithoutCurrent(t *testing.T) {
	m, err := newPicker("Act as", []PickerItem{
		{Label: "watcher", Disabled: true},
		{Label: "alice", Value: "alice"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, m.cursor)
}

func TestPickerNothingSelectable(t *testing.T) {
	_, err := newPicker("Act as", []PickerItem{{Label: "watcher", Disabled: true}})
	assert.ErrorIs(t, err, ErrNothingToPick)
	_, err = newPicker("Act as", nil)
	assert.ErrorIs(t, err, ErrNothingToPick)
}

func TestPickerQuit(t *testing.T) {
	m, err := newPicker("Act as", wallets())
	require.NoError(t, err)
	m = pick(t, m, runes("q"))
	assert.True(t, m.quitting)
	assert.Nil(t, m.selected)
	assert.Empty(t, m.View())
}
