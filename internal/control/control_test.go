package control_test

import (
	"encoding/json"
	"testing"

	"github.com/Mohsinsiddi/w3vault/internal/control"
	"github.com/Mohsinsiddi/w3vault/internal/errs"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	ctrlA = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	ctrlB = common.HexToAddress("0x00000000000000000000000000000000000000c2")
	eve   = common.HexToAddress("0x00000000000000000000000000000000000000e5")
)

func TestRolesAreIndependent(t *testing.T) {
	r := control.New(owner, ctrlA)

	assert.True(t, r.IsOwner(owner))
	assert.False(t, r.IsController(owner), "owner is not implicitly a controller")
	assert.True(t, r.IsController(ctrlA))
	assert.False(t, r.IsOwner(ctrlA))

	require.NoError(t, r.AddController(ctrlA, owner))
	assert.True(t, r.IsOwner(owner))
	assert.True(t, r.IsController(owner))
}

func TestAddControllerRequiresController(t *testing.T) {
	r := control.New(owner, ctrlA)

	err := r.AddController(owner, ctrlB)
	assert.ErrorIs(t, err, control.ErrNotController)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
	assert.False(t, r.IsController(ctrlB))

	err = r.AddController(eve, eve)
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
	assert.False(t, r.IsController(eve))
}

func TestControllerMembershipFoldsInOrder(t *testing.T) {
	r := control.New(owner, ctrlA)

	require.NoError(t, r.AddController(ctrlA, ctrlB))
	require.NoError(t, r.AddController(ctrlA, ctrlB))  // idempotent
	require.NoError(t, r.RemoveController(ctrlB, eve)) // removing a non-member
	require.NoError(t, r.AddController(ctrlB, eve))
	require.NoError(t, r.RemoveController(ctrlA, eve))
	require.NoError(t, r.RemoveController(ctrlA, eve))

	assert.Equal(t, []common.Address{ctrlA, ctrlB}, r.Controllers())
}

func TestControllerCanRemoveItself(t *testing.T) {
	r := control.New(owner, ctrlA)
	require.NoError(t, r.RemoveController(ctrlA, ctrlA))
	assert.Empty(t, r.Controllers())

	// Nobody is left to manage the set.
	assert.ErrorIs(t, r.AddController(ctrlA, ctrlA), control.ErrNotController)
}

func TestOnlyOwnerOrController(t *testing.T) {
	r := control.New(owner, ctrlA)
	assert.NoError(t, r.OnlyOwnerOrController(owner))
	assert.NoError(t, r.OnlyOwnerOrController(ctrlA))
	assert.ErrorIs(t, r.OnlyOwnerOrController(eve), control.ErrNotOwnerOrController)
}

func TestCopyIsIndependent(t *testing.T) {
	r := control.New(owner, ctrlA)
	cp := r.Copy()
	require.NoError(t, cp.AddController(ctrlA, ctrlB))

	assert.False(t, r.IsController(ctrlB))
	assert.True(t, cp.IsController(ctrlB))
}

func TestRegistryJSON(t *testing.T) {
	r := control.New(owner, ctrlB, ctrlA)
	data, err := json.Marshal(r)
	require.NoError(t, err)

	var back control.Registry
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, owner, back.Owner())
	assert.Equal(t, []common.Address{ctrlA, ctrlB}, back.Controllers())
}
