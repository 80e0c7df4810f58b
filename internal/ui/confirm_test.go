package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfirmFrom(t *testing.T) {
	for input, want := range map[string]bool{
		"y\n":    true,
		"YES\n":  true,
		" yes ":  true,
		"n\n":    false,
		"\n":     false,
		"":       false,
		"sure\n": false,
	} {
		var out bytes.Buffer
		got := ConfirmFrom(strings.NewReader(input), &out, "Remove controller?")
		assert.Equal(t, want, got, "input %q", input)
		assert.Contains(t, out.String(), "Remove controller? [y/N]")
	}
}
