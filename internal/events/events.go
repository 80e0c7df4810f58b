// Package events defines the domain events a vault emits and the in-process
// feed external consumers subscribe to. The vault never reads events back;
// the persisted journal is owned by the state store.
package events

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

// Kind identifies an event type.
type Kind uint8

// Event kinds.
const (
	Deposit Kind = iota + 1
	Transfer
	TopUpGas
	WhitelistAddition
	WhitelistRemoval
	SetDailyLimit
)

var kindNames = map[Kind]string{
	Deposit:           "Deposit",
	Transfer:          "Transfer",
	TopUpGas:          "TopUpGas",
	WhitelistAddition: "WhitelistAddition",
	WhitelistRemoval:  "WhitelistRemoval",
	SetDailyLimit:     "SetDailyLimit",
}

// Solidity-style signatures, matching the logs the contract version emits.
var kindSignatures = map[Kind]string{
	Deposit:           "Deposit(address,uint256)",
	Transfer:          "Transfer(address,address,uint256)",
	TopUpGas:          "TopUpGas(address,address,uint256)",
	WhitelistAddition: "WhitelistAddition(address[])",
	WhitelistRemoval:  "WhitelistRemoval(address[])",
	SetDailyLimit:     "SetDailyLimit(uint256)",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Signature returns the event's canonical signature.
func (k Kind) Signature() string { return kindSignatures[k] }

// Topic returns keccak256(signature), the first log topic of the on-chain event.
func (k Kind) Topic() common.Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(k.Signature()))
	return common.BytesToHash(h.Sum(nil))
}

// ParseKind resolves a kind by name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	for k, n := range kindNames {
		if strings.EqualFold(n, s) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Event is one entry of the vault's append-only event log. Which fields are
// set depends on Kind.
type Event struct {
	Seq  uint64 `json:"seq"`
	Kind Kind   `json:"kind"`
	Time uint64 `json:"time"` // ledger timestamp of the operation

	Sender    common.Address   `json:"sender"`    // Deposit
	TxHash    common.Hash      `json:"tx_hash"`   // Deposit, when recorded from a transaction
	Recipient common.Address   `json:"recipient"` // Transfer, TopUpGas (the owner)
	Initiator common.Address   `json:"initiator"` // TopUpGas
	Asset     common.Address   `json:"asset"`     // Transfer; zero address = native currency
	Amount    *uint256.Int     `json:"amount,omitempty"`
	Addresses []common.Address `json:"addresses,omitempty"` // whitelist changes
	Limit     *uint256.Int     `json:"limit,omitempty"`     // SetDailyLimit
}

// NewDeposit records native currency received from sender.
func NewDeposit(sender common.Address, amount *uint256.Int) Event {
	return Event{Kind: Deposit, Sender: sender, Amount: amount.Clone()}
}

// NewTransfer records an outgoing transfer; asset is the zero address for native currency.
func NewTransfer(to, asset common.Address, amount *uint256.Int) Event {
	return Event{Kind: Transfer, Recipient: to, Asset: asset, Amount: amount.Clone()}
}

// NewTopUpGas records a gas top-up of owner requested by initiator.
func NewTopUpGas(initiator, owner common.Address, amount *uint256.Int) Event {
	return Event{Kind: TopUpGas, Initiator: initiator, Recipient: owner, Amount: amount.Clone()}
}

// NewWhitelistAddition records addresses added to the whitelist.
func NewWhitelistAddition(addrs []common.Address) Event {
	return Event{Kind: WhitelistAddition, Addresses: append([]common.Address(nil), addrs...)}
}

// NewWhitelistRemoval records addresses removed from the whitelist.
func NewWhitelistRemoval(addrs []common.Address) Event {
	return Event{Kind: WhitelistRemoval, Addresses: append([]common.Address(nil), addrs...)}
}

// NewSetDailyLimit records a daily limit taking effect.
func NewSetDailyLimit(limit *uint256.Int) Event {
	return Event{Kind: SetDailyLimit, Limit: limit.Clone()}
}

// Summary renders the event's payload on one line.
func (e Event) Summary() string {
	switch e.Kind {
	case Deposit:
		if e.TxHash != (common.Hash{}) {
			return fmt.Sprintf("from %s amount %s tx %s", e.Sender.Hex(), e.Amount.Dec(), e.TxHash.Hex())
		}
		return fmt.Sprintf("from %s amount %s", e.Sender.Hex(), e.Amount.Dec())
	case Transfer:
		asset := "native"
		if e.Asset != (common.Address{}) {
			asset = e.Asset.Hex()
		}
		return fmt.Sprintf("to %s asset %s amount %s", e.Recipient.Hex(), asset, e.Amount.Dec())
	case TopUpGas:
		return fmt.Sprintf("by %s to %s amount %s", e.Initiator.Hex(), e.Recipient.Hex(), e.Amount.Dec())
	case WhitelistAddition, WhitelistRemoval:
		parts := make([]string, len(e.Addresses))
		for i, a := range e.Addresses {
			parts[i] = a.Hex()
		}
		return strings.Join(parts, ",")
	case SetDailyLimit:
		return "limit " + e.Limit.Dec()
	}
	return ""
}

// Log fans committed events out to in-process subscribers.
type Log struct {
	feed event.FeedOf[Event]
}

// NewLog creates an event log.
func NewLog() *Log { return &Log{} }

// Subscribe delivers every event published after the call to ch. The channel
// should be buffered; publishing blocks until all subscribers received.
func (l *Log) Subscribe(ch chan<- Event) event.Subscription {
	return l.feed.Subscribe(ch)
}

// Publish delivers evs in order.
func (l *Log) Publish(evs []Event) {
	for _, e := range evs {
		l.feed.Send(e)
	}
}
