package config

// Config holds all w3vault configuration.
type Config struct {
	Network       string            `json:"network"`
	RPCURL        string            `json:"rpc_url"`
	HotWallet     string            `json:"hot_wallet"`     // wallet that holds the vault funds and signs sends
	DefaultWallet string            `json:"default_wallet"` // caller identity when --as is not given
	StateBackend  string            `json:"state_backend"`  // "json" | "leveldb"
	GasCeilingWei string            `json:"gas_ceiling_wei"`
	Oracle        string            `json:"oracle,omitempty"` // rate(address) contract; empty uses Rates
	Rates         map[string]string `json:"rates"`            // token address -> wei per base unit
	PriceCurrency string            `json:"price_currency"`

	// internal: config dir path used for Save()
	configDir string
}
