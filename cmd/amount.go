package cmd

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/params"
	"github.com/holiman/uint256"
)

// units lists the accepted amount suffixes, longest first so "gwei" is not
// read as "wei".
var units = []struct {
	suffix   string
	decimals int64
}{
	{"ether", 18},
	{"gwei", 9},
	{"eth", 18},
	{"wei", 0},
}

// parseAmount reads an amount such as "1000", "1.5eth" or "30 gwei" and
// returns it in wei. Bare numbers are wei.
func parseAmount(s string) (*uint256.Int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	num, decimals := s, int64(0)
	for _, u := range units {
		if strings.HasSuffix(s, u.suffix) {
			num, decimals = strings.TrimSpace(strings.TrimSuffix(s, u.suffix)), u.decimals
			break
		}
	}
	if num == "" {
		return nil, fmt.Errorf("invalid amount %q", s)
	}

	r, ok := new(big.Rat).SetString(num)
	if !ok {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if r.Sign() < 0 {
		return nil, fmt.Errorf("amount %q is negative", s)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(decimals), nil)
	r.Mul(r, new(big.Rat).SetInt(scale))
	if !r.IsInt() {
		return nil, fmt.Errorf("amount %q has more precision than 1 wei", s)
	}
	v, overflow := uint256.FromBig(r.Num())
	if overflow {
		return nil, fmt.Errorf("amount %q overflows 256 bits", s)
	}
	return v, nil
}

// formatEther renders wei as ether with trailing zeros trimmed.
func formatEther(wei *uint256.Int) string {
	r := new(big.Rat).SetFrac(wei.ToBig(), big.NewInt(params.Ether))
	return trimZeros(r.FloatString(18)) + " ETH"
}
