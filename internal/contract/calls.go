package contract

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func pack(id, method string, args ...interface{}) ([]byte, error) {
	a, err := Parsed(id)
	if err != nil {
		return nil, err
	}
	data, err := a.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", method, err)
	}
	return data, nil
}

func unpackOne(id, method string, data []byte) (interface{}, error) {
	a, err := Parsed(id)
	if err != nil {
		return nil, err
	}
	out, err := a.Unpack(method, data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", method, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("decoding %s: expected 1 value, got %d", method, len(out))
	}
	return out[0], nil
}

// PackTransfer encodes ERC-20 transfer(to, amount).
func PackTransfer(to common.Address, amount *uint256.Int) ([]byte, error) {
	return pack(ERC20, "transfer", to, amount.ToBig())
}

// UnpackTransfer decodes the bool returned by transfer. Tokens that return
// nothing are treated as successful.
func UnpackTransfer(data []byte) (bool, error) {
	if len(data) == 0 {
		return true, nil
	}
	v, err := unpackOne(ERC20, "transfer", data)
	if err != nil {
		return false, err
	}
	ok, isBool := v.(bool)
	if !isBool {
		return false, fmt.Errorf("decoding transfer: unexpected %T", v)
	}
	return ok, nil
}

// PackBalanceOf encodes ERC-20 balanceOf(holder).
func PackBalanceOf(holder common.Address) ([]byte, error) {
	return pack(ERC20, "balanceOf", holder)
}

// UnpackBalanceOf decodes the uint256 returned by balanceOf.
func UnpackBalanceOf(data []byte) (*uint256.Int, error) {
	return unpackUint256(ERC20, "balanceOf", data)
}

// PackDecimals encodes ERC-20 decimals().
func PackDecimals() ([]byte, error) {
	return pack(ERC20, "decimals")
}

// UnpackDecimals decodes the uint8 returned by decimals.
func UnpackDecimals(data []byte) (uint8, error) {
	v, err := unpackOne(ERC20, "decimals", data)
	if err != nil {
		return 0, err
	}
	d, ok := v.(uint8)
	if !ok {
		return 0, fmt.Errorf("decoding decimals: unexpected %T", v)
	}
	return d, nil
}

// PackRate encodes oracle rate(token).
func PackRate(token common.Address) ([]byte, error) {
	return pack(RateOracle, "rate", token)
}

// UnpackRate decodes the uint256 returned by rate.
func UnpackRate(data []byte) (*uint256.Int, error) {
	return unpackUint256(RateOracle, "rate", data)
}

func unpackUint256(id, method string, data []byte) (*uint256.Int, error) {
	v, err := unpackOne(id, method, data)
	if err != nil {
		return nil, err
	}
	b, ok := v.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("decoding %s: unexpected %T", method, v)
	}
	out, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("decoding %s: value overflows uint256", method)
	}
	return out, nil
}
