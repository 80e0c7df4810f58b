package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const (
	defaultNetwork    = "ethereum"
	defaultBackend    = "json"
	defaultGasCeiling = "500000000000000000" // 0.5 ether
	defaultCurrency   = "USD"

	configFile  = "config.json"
	walletsFile = "wallets.json"

	// EnvDir overrides the config directory.
	EnvDir = "W3VAULT_CONFIG_DIR"
)

// Load reads config from dir (or creates defaults). dir defaults to
// $W3VAULT_CONFIG_DIR, then ~/.w3vault.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = os.Getenv(EnvDir)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".w3vault")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	path := filepath.Join(dir, configFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return defaults(dir), nil
	}
	cfg, err := loadJSON(path, defaults(dir))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg.configDir = dir
	if cfg.Rates == nil {
		cfg.Rates = make(map[string]string)
	}
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	return saveJSON(filepath.Join(c.configDir, configFile), c)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath is the wallet metadata file.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// Set assigns a config key by its JSON name.
func (c *Config) Set(key, value string) error {
	switch key {
	case "network":
		c.Network = value
	case "rpc_url":
		c.RPCURL = value
	case "hot_wallet":
		c.HotWallet = value
	case "default_wallet":
		c.DefaultWallet = value
	case "state_backend":
		if value != "json" && value != "leveldb" {
			return fmt.Errorf("state_backend must be json or leveldb, got %q", value)
		}
		c.StateBackend = value
	case "gas_ceiling_wei":
		if _, err := uint256.FromDecimal(value); err != nil {
			return fmt.Errorf("gas_ceiling_wei: %w", err)
		}
		c.GasCeilingWei = value
	case "oracle":
		if value != "" && !common.IsHexAddress(value) {
			return fmt.Errorf("oracle: invalid address %q", value)
		}
		c.Oracle = value
	case "price_currency":
		c.PriceCurrency = strings.ToUpper(value)
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// SetRate records a static rate for token, in wei per base unit.
func (c *Config) SetRate(token, weiPerUnit string) error {
	if !common.IsHexAddress(token) {
		return fmt.Errorf("invalid token address %q", token)
	}
	if _, err := uint256.FromDecimal(weiPerUnit); err != nil {
		return fmt.Errorf("invalid rate %q: %w", weiPerUnit, err)
	}
	if c.Rates == nil {
		c.Rates = make(map[string]string)
	}
	c.Rates[common.HexToAddress(token).Hex()] = weiPerUnit
	return nil
}

// RemoveRate deletes the static rate for token.
func (c *Config) RemoveRate(token string) error {
	key := common.HexToAddress(token).Hex()
	if _, ok := c.Rates[key]; !ok {
		return fmt.Errorf("no rate configured for %s", token)
	}
	delete(c.Rates, key)
	return nil
}

// StaticRates parses Rates.
func (c *Config) StaticRates() (map[common.Address]*uint256.Int, error) {
	out := make(map[common.Address]*uint256.Int, len(c.Rates))
	for tok, r := range c.Rates {
		if !common.IsHexAddress(tok) {
			return nil, fmt.Errorf("rates: invalid token address %q", tok)
		}
		v, err := uint256.FromDecimal(r)
		if err != nil {
			return nil, fmt.Errorf("rates: %s: %w", tok, err)
		}
		out[common.HexToAddress(tok)] = v
	}
	return out, nil
}

// GasCeiling parses GasCeilingWei.
func (c *Config) GasCeiling() (*uint256.Int, error) {
	if c.GasCeilingWei == "" {
		return uint256.MustFromDecimal(defaultGasCeiling), nil
	}
	v, err := uint256.FromDecimal(c.GasCeilingWei)
	if err != nil {
		return nil, fmt.Errorf("gas_ceiling_wei: %w", err)
	}
	return v, nil
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		Network:       defaultNetwork,
		StateBackend:  defaultBackend,
		GasCeilingWei: defaultGasCeiling,
		PriceCurrency: defaultCurrency,
		Rates:         make(map[string]string),
		configDir:     dir,
	}
}

func loadJSON[T any](path string, into *T) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, into); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return into, nil
}

func saveJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
