// Package control implements the owner/controller access registry that gates
// every privileged vault operation.
package control

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/Mohsinsiddi/w3vault/internal/errs"
	"github.com/ethereum/go-ethereum/common"
)

// Errors.
var (
	ErrNotOwner             = fmt.Errorf("%w: caller is not the owner", errs.ErrUnauthorized)
	ErrNotController        = fmt.Errorf("%w: caller is not a controller", errs.ErrUnauthorized)
	ErrNotOwnerOrController = fmt.Errorf("%w: caller is neither owner nor controller", errs.ErrUnauthorized)
)

// Authorizer is the role check components delegate to.
type Authorizer interface {
	OnlyOwner(caller common.Address) error
	OnlyController(caller common.Address) error
}

// Registry holds the immutable owner and the mutable controller set.
// The two roles are checked independently; one identity may hold both.
type Registry struct {
	owner       common.Address
	controllers map[common.Address]struct{}
}

// New creates a registry for owner with an initial controller set.
func New(owner common.Address, controllers ...common.Address) *Registry {
	r := &Registry{
		owner:       owner,
		controllers: make(map[common.Address]struct{}, len(controllers)),
	}
	for _, c := range controllers {
		r.controllers[c] = struct{}{}
	}
	return r
}

// Owner returns the owner identity.
func (r *Registry) Owner() common.Address { return r.owner }

// IsOwner reports whether caller is the owner.
func (r *Registry) IsOwner(caller common.Address) bool { return caller == r.owner }

// IsController reports whether caller is in the controller set.
func (r *Registry) IsController(caller common.Address) bool {
	_, ok := r.controllers[caller]
	return ok
}

// Controllers returns the controller set sorted by address bytes.
func (r *Registry) Controllers() []common.Address {
	out := make([]common.Address, 0, len(r.controllers))
	for c := range r.controllers {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b common.Address) int { return bytes.Compare(a[:], b[:]) })
	return out
}

// OnlyOwner returns ErrNotOwner unless caller is the owner.
func (r *Registry) OnlyOwner(caller common.Address) error {
	if !r.IsOwner(caller) {
		return ErrNotOwner
	}
	return nil
}

// OnlyController returns ErrNotController unless caller is a controller.
func (r *Registry) OnlyController(caller common.Address) error {
	if !r.IsController(caller) {
		return ErrNotController
	}
	return nil
}

// OnlyOwnerOrController accepts either role.
func (r *Registry) OnlyOwnerOrController(caller common.Address) error {
	if !r.IsOwner(caller) && !r.IsController(caller) {
		return ErrNotOwnerOrController
	}
	return nil
}

// AddController inserts target. Re-adding a member is a no-op.
func (r *Registry) AddController(caller, target common.Address) error {
	if err := r.OnlyController(caller); err != nil {
		return err
	}
	r.controllers[target] = struct{}{}
	return nil
}

// RemoveController removes target. Removing a non-member is a no-op; a
// controller may remove itself.
func (r *Registry) RemoveController(caller, target common.Address) error {
	if err := r.OnlyController(caller); err != nil {
		return err
	}
	delete(r.controllers, target)
	return nil
}

// Copy returns a deep copy.
func (r *Registry) Copy() *Registry {
	return New(r.owner, r.Controllers()...)
}

type registryJSON struct {
	Owner       common.Address   `json:"owner"`
	Controllers []common.Address `json:"controllers"`
}

// MarshalJSON implements json.Marshaler.
func (r *Registry) MarshalJSON() ([]byte, error) {
	return json.Marshal(registryJSON{Owner: r.owner, Controllers: r.Controllers()})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Registry) UnmarshalJSON(data []byte) error {
	var dec registryJSON
	if err := json.Unmarshal(data, &dec); err != nil {
		return err
	}
	*r = *New(dec.Owner, dec.Controllers...)
	return nil
}
