package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Mohsinsiddi/w3vault/internal/events"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferTopicMatchesERC20(t *testing.T) {
	// keccak256("Transfer(address,address,uint256)")
	want := common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
	assert.Equal(t, want, events.Transfer.Topic())
}

func TestKindNamesRoundTrip(t *testing.T) {
	for _, k := range []events.Kind{
		events.Deposit, events.Transfer, events.TopUpGas,
		events.WhitelistAddition, events.WhitelistRemoval, events.SetDailyLimit,
	} {
		got, err := events.ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
		assert.NotEmpty(t, k.Signature())
	}
	_, err := events.ParseKind("Withdraw")
	assert.Error(t, err)
	assert.Equal(t, "Kind(99)", events.Kind(99).String())
}

func TestParseKindCaseInsensitive(t *testing.T) {
	k, err := events.ParseKind("topupgas")
	require.NoError(t, err)
	assert.Equal(t, events.TopUpGas, k)
}

func TestEventJSON(t *testing.T) {
	to := common.HexToAddress("0x00000000000000000000000000000000000000b0")
	e := events.NewTransfer(to, common.Address{}, uint256.NewInt(5))
	e.Seq, e.Time = 3, 1700000000

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"Transfer"`)
	assert.Contains(t, string(data), `"amount":"5"`)

	var back events.Event
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, events.Transfer, back.Kind)
	assert.Equal(t, to, back.Recipient)
	assert.Equal(t, uint64(5), back.Amount.Uint64())
}

func TestConstructorsCopyInputs(t *testing.T) {
	amt := uint256.NewInt(10)
	e := events.NewDeposit(common.Address{1}, amt)
	amt.SetUint64(99)
	assert.Equal(t, uint64(10), e.Amount.Uint64())

	addrs := []common.Address{{1}, {2}}
	w := events.NewWhitelistAddition(addrs)
	addrs[0] = common.Address{9}
	assert.Equal(t, common.Address{1}, w.Addresses[0])
}

func TestSummary(t *testing.T) {
	e := events.NewTransfer(common.HexToAddress("0x00000000000000000000000000000000000000b0"), common.Address{}, uint256.NewInt(7))
	assert.Contains(t, e.Summary(), "asset native")
	assert.Contains(t, e.Summary(), "amount 7")

	l := events.NewSetDailyLimit(uint256.NewInt(100))
	assert.Equal(t, "limit 100", l.Summary())
}

func TestLogPublishesInOrder(t *testing.T) {
	log := events.NewLog()
	ch := make(chan events.Event, 4)
	sub := log.Subscribe(ch)
	defer sub.Unsubscribe()

	log.Publish([]events.Event{
		events.NewDeposit(common.Address{1}, uint256.NewInt(1)),
		events.NewSetDailyLimit(uint256.NewInt(2)),
	})

	for _, want := range []events.Kind{events.Deposit, events.SetDailyLimit} {
		select {
		case got := <-ch:
			assert.Equal(t, want, got.Kind)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}
