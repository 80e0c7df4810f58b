package config

import "time"

// Gas limits used as EstimateGas fallbacks when the node cannot simulate the tx.
const (
	GasLimitETHTransfer   = uint64(21_000)
	GasLimitERC20Transfer = uint64(60_000)
)

// Timeouts.
const (
	RPCTimeout       = 10 * time.Second // single JSON-RPC round trip
	TxConfirmTimeout = 3 * time.Minute  // standard transaction confirmation wait
)
