package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixedFormatters(t *testing.T) {
	cases := map[string]struct {
		fn     func(string) string
		prefix string
	}{
		"Success": {Success, "✓"},
		"Warn":    {Warn, "⚠"},
		"Err":     {Err, "✗"},
		"Info":    {Info, "ℹ"},
		"Hint":    {Hint, "💡"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			result := tc.fn("test message")
			assert.Contains(t, result, tc.prefix)
			assert.Contains(t, result, "test message")
			assert.Contains(t, tc.fn(""), tc.prefix)
		})
	}
}

func TestInfoDifferentFromHint(t *testing.T) {
	assert.NotEqual(t, Info("message"), Hint("message"))
}

func TestPlainFormattersKeepText(t *testing.T) {
	for name, fn := range map[string]func(string) string{
		"Addr": Addr,
		"Val":  Val,
		"Meta": Meta,
		"Kind": Kind,
	} {
		t.Run(name, func(t *testing.T) {
			assert.Contains(t, fn("test"), "test")
		})
	}
}

func TestTruncateAddr(t *testing.T) {
	assert.Equal(t, "", TruncateAddr(""))
	assert.Equal(t, "0x1234", TruncateAddr("0x1234"))
	assert.Equal(t, "0x12345678", TruncateAddr("0x12345678"))

	addr := "0x1234567890abcdef1234567890abcdef12345678"
	result := TruncateAddr(addr)
	assert.Equal(t, "0x1234…5678", result)
	assert.Less(t, len(result), len(addr))
}
