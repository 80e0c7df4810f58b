package cmd

import (
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1000", "1000"},
		{"1000wei", "1000"},
		{"1eth", "1000000000000000000"},
		{"1.5eth", "1500000000000000000"},
		{"0.25 ether", "250000000000000000"},
		{"50gwei", "50000000000"},
		{"1.5 GWEI", "1500000000"},
		{"0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := parseAmount(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Dec())
		})
	}
}

func TestParseAmountErrors(t *testing.T) {
	for _, in := range []string{"", "eth", "abc", "-1", "1.5", "0.1wei", "1e-19eth"} {
		t.Run(in, func(t *testing.T) {
			_, err := parseAmount(in)
			assert.Error(t, err)
		})
	}
}

func TestParseAmountOverflow(t *testing.T) {
	_, err := parseAmount(strings.Repeat("9", 80))
	assert.ErrorContains(t, err, "overflows")
}

func TestFormatEther(t *testing.T) {
	assert.Equal(t, "0 ETH", formatEther(uint256.NewInt(0)))
	assert.Equal(t, "1 ETH", formatEther(uint256.NewInt(1_000_000_000_000_000_000)))
	assert.Equal(t, "0.5 ETH", formatEther(uint256.NewInt(500_000_000_000_000_000)))
	assert.Equal(t, "0.000000000000000001 ETH", formatEther(uint256.NewInt(1)))
}

func TestConvertPairs(t *testing.T) {
	pairs := convertPairs("1.5gwei", uint256.NewInt(1_500_000_000))
	got := map[string]string{}
	for _, p := range pairs {
		got[p[0]] = p[1]
	}
	assert.Contains(t, got["Wei"], "1500000000 wei")
	assert.Contains(t, got["Gwei"], "1.5 gwei")
	assert.Contains(t, got["Ether"], "0.0000000015 ETH")
	assert.Contains(t, got["Hex"], "0x59682f00")
}
