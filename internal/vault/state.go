package vault

import (
	"encoding/json"
	"errors"

	"github.com/Mohsinsiddi/w3vault/internal/control"
	"github.com/Mohsinsiddi/w3vault/internal/dailylimit"
	"github.com/Mohsinsiddi/w3vault/internal/whitelist"
	"github.com/ethereum/go-ethereum/common"
)

// State is every piece of mutable vault data. It is what a Store persists;
// its JSON form is the on-disk layout of both store backends.
type State struct {
	Access    *control.Registry   `json:"access"`
	Whitelist *whitelist.List     `json:"whitelist"`
	Limit     *dailylimit.Account `json:"daily_limit"`
	NextSeq   uint64              `json:"next_seq"`
}

// NewState creates the state of a fresh vault: empty whitelist, zero limit.
func NewState(owner common.Address, controllers ...common.Address) *State {
	acl := control.New(owner, controllers...)
	return &State{
		Access:    acl,
		Whitelist: whitelist.New(acl),
		Limit:     dailylimit.New(acl),
		NextSeq:   1,
	}
}

// Copy returns a deep copy whose components check roles against the copied
// registry.
func (s *State) Copy() *State {
	acl := s.Access.Copy()
	return &State{
		Access:    acl,
		Whitelist: s.Whitelist.Copy(acl),
		Limit:     s.Limit.Copy(acl),
		NextSeq:   s.NextSeq,
	}
}

// UnmarshalJSON implements json.Unmarshaler and rebinds the components to the
// decoded registry.
func (s *State) UnmarshalJSON(data []byte) error {
	type plain State
	var dec plain
	if err := json.Unmarshal(data, &dec); err != nil {
		return err
	}
	if dec.Access == nil {
		return errors.New("vault state: missing access registry")
	}
	if dec.Whitelist == nil {
		dec.Whitelist = whitelist.New(nil)
	}
	if dec.Limit == nil {
		dec.Limit = dailylimit.New(nil)
	}
	dec.Whitelist.Bind(dec.Access)
	dec.Limit.Bind(dec.Access)
	*s = State(dec)
	return nil
}
