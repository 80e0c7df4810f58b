package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Mohsinsiddi/w3vault/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePolicy(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadPolicy(t *testing.T) {
	path := writePolicy(t, `
owner       = "alice"
controllers = ["bob", "0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"]
daily_limit = "1000000000000000000"
whitelist   = ["0xAb8483F64d9C6d1EcF9b849Ae677dD3315835cb2"]
`)
	p, err := config.LoadPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Owner)
	assert.Len(t, p.Controllers, 2)
	assert.Len(t, p.Whitelist, 1)

	limit, ok, err := p.Limit()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1000000000000000000", limit.Dec())
}

func TestPolicyWithoutLimit(t *testing.T) {
	p, err := config.LoadPolicy(writePolicy(t, `owner = "alice"`))
	require.NoError(t, err)
	_, ok, err := p.Limit()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPolicyRejections(t *testing.T) {
	for name, body := range map[string]string{
		"missing owner": `controllers = ["bob"]`,
		"unknown key":   "owner = \"alice\"\ndialy_limit = \"1\"",
		"bad limit":     "owner = \"alice\"\ndaily_limit = \"lots\"",
		"not toml":      "owner = ",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := config.LoadPolicy(writePolicy(t, body))
			assert.Error(t, err)
		})
	}
}
