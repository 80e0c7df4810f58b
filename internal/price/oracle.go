package price

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/w3vault/internal/chain"
	"github.com/Mohsinsiddi/w3vault/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ErrNoRate is returned by StaticOracle for tokens without a configured rate.
var ErrNoRate = errors.New("no rate configured")

// ContractOracle reads rates from an on-chain oracle exposing
// rate(address) returns (uint256).
type ContractOracle struct {
	client  *chain.EVMClient
	address common.Address
}

// NewContractOracle returns an oracle backed by the contract at address.
func NewContractOracle(client *chain.EVMClient, address common.Address) *ContractOracle {
	return &ContractOracle{client: client, address: address}
}

// Rate returns the wei value of one base unit of token.
func (o *ContractOracle) Rate(ctx context.Context, token common.Address) (*uint256.Int, error) {
	data, err := contract.PackRate(token)
	if err != nil {
		return nil, err
	}
	ret, err := o.client.Call(ctx, chain.CallMsg{To: &o.address, Data: data})
	if err != nil {
		return nil, fmt.Errorf("oracle %s: %w", o.address.Hex(), err)
	}
	return contract.UnpackRate(ret)
}

// StaticOracle serves fixed rates, typically from the config file.
type StaticOracle struct {
	rates map[common.Address]*uint256.Int
}

// NewStaticOracle copies rates into a new oracle.
func NewStaticOracle(rates map[common.Address]*uint256.Int) *StaticOracle {
	o := &StaticOracle{rates: make(map[common.Address]*uint256.Int, len(rates))}
	for k, v := range rates {
		o.rates[k] = v.Clone()
	}
	return o
}

// Rate returns the configured rate for token.
func (o *StaticOracle) Rate(_ context.Context, token common.Address) (*uint256.Int, error) {
	r, ok := o.rates[token]
	if !ok {
		return nil, fmt.Errorf("%w for %s", ErrNoRate, token.Hex())
	}
	return r.Clone(), nil
}
