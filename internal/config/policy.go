package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/holiman/uint256"
)

// Policy is the genesis of a vault, read by `w3vault init --policy`.
// Addresses may be given as hex or as names of configured wallets.
//
//	owner       = "alice"
//	controllers = ["bob", "0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"]
//	daily_limit = "1000000000000000000"
//	whitelist   = ["0xAb8483F64d9C6d1EcF9b849Ae677dD3315835cb2"]
type Policy struct {
	Owner       string   `toml:"owner"`
	Controllers []string `toml:"controllers"`
	DailyLimit  string   `toml:"daily_limit"` // wei; empty leaves the limit unset
	Whitelist   []string `toml:"whitelist"`
}

// LoadPolicy decodes a policy file. Unknown keys are rejected.
func LoadPolicy(path string) (*Policy, error) {
	var p Policy
	md, err := toml.DecodeFile(path, &p)
	if err != nil {
		return nil, fmt.Errorf("reading policy: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("policy: unknown keys: %s", strings.Join(keys, ", "))
	}
	if p.Owner == "" {
		return nil, fmt.Errorf("policy: owner is required")
	}
	if _, _, err := p.Limit(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Limit parses DailyLimit. ok is false when no limit is given.
func (p *Policy) Limit() (limit *uint256.Int, ok bool, err error) {
	if p.DailyLimit == "" {
		return nil, false, nil
	}
	v, err := uint256.FromDecimal(p.DailyLimit)
	if err != nil {
		return nil, false, fmt.Errorf("policy: daily_limit: %w", err)
	}
	return v, true, nil
}
