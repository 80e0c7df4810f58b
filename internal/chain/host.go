package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net"
	"sync"
	"time"

	"github.com/Mohsinsiddi/w3vault/internal/config"
	"github.com/Mohsinsiddi/w3vault/internal/contract"
	"github.com/Mohsinsiddi/w3vault/internal/vault"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

// Errors of IncomingTransfer.
var (
	ErrTxUnknown    = errors.New("transaction not found")
	ErrTxPending    = errors.New("transaction not mined yet")
	ErrNotToAccount = errors.New("transaction does not pay the hot wallet")
	ErrNoValue      = errors.New("transaction carries no value")
)

// TxSigner signs transactions for the account the vault funds live in.
type TxSigner interface {
	Address() common.Address
	Sign(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// Host is the vault's view of an EVM chain: block time as its clock, native
// sends and ERC-20 transfers signed by the hot wallet.
type Host struct {
	client  *EVMClient
	signer  TxSigner
	timeout time.Duration
	log     log.Logger

	mu      sync.Mutex // serializes nonce allocation
	chainID *big.Int
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithConfirmTimeout bounds how long a send waits for its receipt.
func WithConfirmTimeout(d time.Duration) HostOption {
	return func(h *Host) { h.timeout = d }
}

// WithHostLogger sets the logger for broadcast transactions.
func WithHostLogger(l log.Logger) HostOption {
	return func(h *Host) { h.log = l }
}

// NewHost creates a Host that signs with signer. signer may be nil for
// read-only use; sends then fail.
func NewHost(client *EVMClient, signer TxSigner, opts ...HostOption) *Host {
	h := &Host{
		client:  client,
		signer:  signer,
		timeout: config.TxConfirmTimeout,
		log:     log.Root(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Address returns the hot wallet address, the vault's own account.
func (h *Host) Address() common.Address {
	if h.signer == nil {
		return common.Address{}
	}
	return h.signer.Address()
}

// Now returns the latest block timestamp.
func (h *Host) Now(ctx context.Context) (uint64, error) {
	return h.client.BlockTimestamp(ctx)
}

// NativeBalance returns the wei balance of addr.
func (h *Host) NativeBalance(ctx context.Context, addr common.Address) (*uint256.Int, error) {
	return h.client.GetBalance(ctx, addr)
}

// SendNative sends amount wei from the hot wallet to to and waits for the
// receipt. A send that may still be mined fails with *vault.PendingTxError.
func (h *Host) SendNative(ctx context.Context, to common.Address, amount *uint256.Int) error {
	_, err := h.SendNativeTx(ctx, to, amount)
	return err
}

// SendNativeTx is SendNative returning the hash of the mined transaction.
func (h *Host) SendNativeTx(ctx context.Context, to common.Address, amount *uint256.Int) (common.Hash, error) {
	receipt, err := h.send(ctx, to, amount.ToBig(), nil, config.GasLimitETHTransfer)
	if err != nil {
		return common.Hash{}, err
	}
	return receipt.Hash, nil
}

// IncomingTransfer checks that transaction hash was mined successfully and
// paid native currency to the hot wallet, and returns its sender and value.
func (h *Host) IncomingTransfer(ctx context.Context, hash common.Hash) (common.Address, *uint256.Int, error) {
	tx, err := h.client.GetTransactionByHash(ctx, hash)
	if err != nil {
		return common.Address{}, nil, err
	}
	switch {
	case tx == nil:
		return common.Address{}, nil, fmt.Errorf("%w: %s", ErrTxUnknown, hash.Hex())
	case !tx.Mined:
		return common.Address{}, nil, fmt.Errorf("%w: %s", ErrTxPending, hash.Hex())
	case tx.To == nil || *tx.To != h.Address():
		return common.Address{}, nil, fmt.Errorf("%w: %s", ErrNotToAccount, hash.Hex())
	case tx.Value.Sign() == 0:
		return common.Address{}, nil, fmt.Errorf("%w: %s", ErrNoValue, hash.Hex())
	}
	receipt, err := h.client.GetTransactionReceipt(ctx, hash)
	if err != nil {
		return common.Address{}, nil, err
	}
	if receipt == nil {
		return common.Address{}, nil, fmt.Errorf("%w: %s", ErrTxPending, hash.Hex())
	}
	if receipt.Status == 0 {
		return common.Address{}, nil, fmt.Errorf("%w (hash: %s)", ErrReverted, hash.Hex())
	}
	value, overflow := uint256.FromBig(tx.Value)
	if overflow {
		return common.Address{}, nil, fmt.Errorf("value of %s overflows uint256", hash.Hex())
	}
	return tx.From, value, nil
}

// Transfer moves amount of token to to. The call is simulated first to read
// the token's boolean result; a false result or a revert is reported as
// false without broadcasting.
func (h *Host) Transfer(ctx context.Context, token, to common.Address, amount *uint256.Int) (bool, error) {
	if h.signer == nil {
		return false, errors.New("no signing wallet configured")
	}
	data, err := contract.PackTransfer(to, amount)
	if err != nil {
		return false, err
	}
	ret, err := h.client.Call(ctx, CallMsg{From: h.signer.Address(), To: &token, Data: data})
	if err != nil {
		if IsRevert(err) {
			h.log.Debug("Token transfer simulation reverted", "token", token, "err", err)
			return false, nil
		}
		return false, err
	}
	ok, err := contract.UnpackTransfer(ret)
	if err != nil || !ok {
		return false, err
	}
	if _, err := h.send(ctx, token, nil, data, config.GasLimitERC20Transfer); err != nil {
		var pending *vault.PendingTxError
		if errors.As(err, &pending) {
			return true, err
		}
		if errors.Is(err, ErrReverted) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// BalanceOf returns holder's balance of token.
func (h *Host) BalanceOf(ctx context.Context, token, holder common.Address) (*uint256.Int, error) {
	data, err := contract.PackBalanceOf(holder)
	if err != nil {
		return nil, err
	}
	ret, err := h.client.Call(ctx, CallMsg{To: &token, Data: data})
	if err != nil {
		return nil, err
	}
	return contract.UnpackBalanceOf(ret)
}

// send signs and broadcasts an EIP-1559 transaction and waits for it to be
// mined. fallbackGas is used when the node cannot estimate. Once the
// transaction may have reached the node, every failure but ErrReverted is a
// *vault.PendingTxError.
func (h *Host) send(ctx context.Context, to common.Address, value *big.Int, data []byte, fallbackGas uint64) (*TxReceipt, error) {
	if h.signer == nil {
		return nil, errors.New("no signing wallet configured")
	}
	tx, err := h.buildTx(ctx, to, value, data, fallbackGas)
	if err != nil {
		return nil, err
	}
	signed, err := h.signer.Sign(tx, h.chainID)
	if err != nil {
		return nil, err
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshaling signed tx: %w", err)
	}
	hash, err := h.client.SendRawTransaction(ctx, raw)
	if err != nil {
		if notSent(err) {
			return nil, fmt.Errorf("broadcasting: %w", err)
		}
		h.log.Warn("Broadcast outcome unknown", "hash", signed.Hash(), "err", err)
		return nil, &vault.PendingTxError{Hash: signed.Hash(), Err: err}
	}
	h.log.Info("Transaction sent", "hash", hash, "to", to, "nonce", signed.Nonce())
	receipt, err := h.client.WaitForReceipt(ctx, hash, h.timeout)
	if err != nil && !errors.Is(err, ErrReverted) {
		h.log.Warn("Transaction not confirmed", "hash", hash, "err", err)
		return nil, &vault.PendingTxError{Hash: hash, Err: err}
	}
	return receipt, err
}

// notSent reports whether a broadcast error proves the node never took the
// transaction: it answered with an error, or could not be dialled.
func notSent(err error) bool {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func (h *Host) buildTx(ctx context.Context, to common.Address, value *big.Int, data []byte, fallbackGas uint64) (*types.Transaction, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.chainID == nil {
		id, err := h.client.ChainID(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching chain id: %w", err)
		}
		h.chainID = id
	}
	from := h.signer.Address()
	nonce, err := h.client.GetPendingNonce(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("fetching nonce: %w", err)
	}
	head, err := h.client.LatestHeader(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching head: %w", err)
	}
	if head.BaseFee == nil {
		return nil, ErrNoBaseFee
	}
	tip, err := h.client.GasTipCap(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching priority fee: %w", err)
	}
	if value == nil {
		value = new(big.Int)
	}
	gas, err := h.client.EstimateGas(ctx, CallMsg{From: from, To: &to, Data: data, Value: value})
	if err != nil {
		h.log.Debug("Gas estimation failed, using fallback", "gas", fallbackGas, "err", err)
		gas = fallbackGas
	}
	feeCap := new(big.Int).Add(new(big.Int).Mul(head.BaseFee, big.NewInt(2)), tip)

	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   h.chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      data,
	}), nil
}
