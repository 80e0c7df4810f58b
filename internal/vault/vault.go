// Package vault is the policy engine in front of a hot wallet. It composes the
// access registry, the whitelist and the daily-limit account, and moves funds
// through the host ledger only when they allow it.
//
// Every mutating operation holds the store lock, reloads the state and works
// on a copy of it. The copy, with the events the operation produced, is
// committed to the store only if every check and every external call
// succeeded; otherwise the vault is left exactly as it was.
package vault

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Mohsinsiddi/w3vault/internal/errs"
	"github.com/Mohsinsiddi/w3vault/internal/events"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

// DefaultGasCeiling is the owner balance topUpGas tops up to: 0.5 ether.
var DefaultGasCeiling = uint256.NewInt(500_000_000_000_000_000)

// Errors.
var (
	ErrNotInitialized = errors.New("vault not initialized")
	ErrExists         = errors.New("vault already initialized")

	ErrZeroAmount    = fmt.Errorf("%w: amount must be non-zero", errs.ErrInvalidArgument)
	ErrZeroValue     = fmt.Errorf("%w: token value is zero, check the oracle rate", errs.ErrInvalidArgument)
	ErrValueOverflow = fmt.Errorf("%w: amount overflows 256 bits", errs.ErrInvalidArgument)
	ErrAboveCeiling  = fmt.Errorf("%w: owner balance is already at the gas ceiling", errs.ErrProtocolState)
	ErrDepositSeen   = fmt.Errorf("%w: deposit transaction already recorded", errs.ErrProtocolState)
	ErrTokenRejected = fmt.Errorf("%w: token transfer returned false", errs.ErrExternalCall)
	ErrNoTokens      = fmt.Errorf("%w: no token backend configured", errs.ErrExternalCall)
	ErrNoOracle      = fmt.Errorf("%w: no price oracle configured", errs.ErrExternalCall)
)

// Genesis is the policy a vault starts with. It is applied as the owner's
// first proposals in the commit that creates the vault.
type Genesis struct {
	Limit     *uint256.Int     // nil leaves the limit to a later SetDailyLimit
	Whitelist []common.Address // nil leaves the whitelist bootstrap open
}

// Vault guards the funds of one hot wallet.
type Vault struct {
	mu      sync.Mutex
	state   *State
	store   Store
	ledger  Ledger
	tokens  Tokens
	oracle  Oracle
	feed    *events.Log
	self    common.Address
	ceiling *uint256.Int
	genesis *Genesis
	log     log.Logger

	outbox []events.Event // committed, not yet published; guarded by mu

	pubMu     sync.Mutex // held while publishing
	delivered uint64     // every event up to this seq was published
	ahead     map[uint64]struct{}
	following bool
}

// Option configures a Vault.
type Option func(*Vault)

// WithStore sets where state and events are committed. Defaults to NewMemStore.
func WithStore(s Store) Option {
	return func(v *Vault) { v.store = s }
}

// WithTokens sets the ERC-20 backend used for token transfers and balances.
func WithTokens(t Tokens) Option {
	return func(v *Vault) { v.tokens = t }
}

// WithOracle sets the price oracle for token transfers to non-whitelisted recipients.
func WithOracle(o Oracle) Option {
	return func(v *Vault) { v.oracle = o }
}

// WithAddress sets the vault's own on-chain account, used for balance reads.
func WithAddress(addr common.Address) Option {
	return func(v *Vault) { v.self = addr }
}

// WithGasCeiling overrides DefaultGasCeiling.
func WithGasCeiling(c *uint256.Int) Option {
	return func(v *Vault) { v.ceiling = c.Clone() }
}

// WithEventLog publishes committed events to l instead of a private log.
func WithEventLog(l *events.Log) Option {
	return func(v *Vault) { v.feed = l }
}

// WithGenesis applies g when the vault is created. Open ignores it.
func WithGenesis(g Genesis) Option {
	return func(v *Vault) { v.genesis = &g }
}

// WithLogger sets the logger. Defaults to log.Root().
func WithLogger(l log.Logger) Option {
	return func(v *Vault) { v.log = l }
}

func newVault(ledger Ledger, opts []Option) *Vault {
	v := &Vault{
		ledger:  ledger,
		store:   NewMemStore(),
		feed:    events.NewLog(),
		ceiling: DefaultGasCeiling.Clone(),
		log:     log.Root(),
		ahead:   map[uint64]struct{}{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Create initializes a new vault for owner and commits its state, with the
// genesis policy if one was given. It fails with ErrExists if the store
// already holds a vault.
func Create(ctx context.Context, ledger Ledger, owner common.Address, controllers []common.Address, opts ...Option) (*Vault, error) {
	v := newVault(ledger, opts)
	unlock, err := v.store.Lock(ctx)
	if err != nil {
		return nil, fmt.Errorf("locking store: %w", err)
	}
	defer unlock()

	existing, err := v.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}
	if existing != nil {
		return nil, ErrExists
	}
	st := NewState(owner, controllers...)
	var evs []events.Event
	if v.genesis != nil {
		if evs, err = v.applyGenesis(ctx, st, owner); err != nil {
			return nil, err
		}
	}
	if err := v.store.Commit(ctx, st, evs); err != nil {
		return nil, fmt.Errorf("committing state: %w", err)
	}
	v.state = st
	v.delivered = st.NextSeq - 1
	v.log.Info("Vault created", "owner", owner, "controllers", len(controllers), "events", len(evs))
	return v, nil
}

func (v *Vault) applyGenesis(ctx context.Context, st *State, owner common.Address) ([]events.Event, error) {
	now, err := v.ledger.Now(ctx)
	if err != nil {
		return nil, fmt.Errorf("genesis: reading ledger clock: %w", err)
	}
	var evs []events.Event
	if v.genesis.Limit != nil {
		ev, err := st.Limit.SetLimit(owner, now, v.genesis.Limit)
		if err != nil {
			return nil, fmt.Errorf("genesis daily limit: %w", err)
		}
		evs = append(evs, single(ev)...)
	}
	if v.genesis.Whitelist != nil {
		ev, err := st.Whitelist.Add(owner, v.genesis.Whitelist)
		if err != nil {
			return nil, fmt.Errorf("genesis whitelist: %w", err)
		}
		evs = append(evs, single(ev)...)
	}
	stamp(st, evs, now)
	return evs, nil
}

// Open loads an existing vault from the configured store.
func Open(ctx context.Context, ledger Ledger, opts ...Option) (*Vault, error) {
	v := newVault(ledger, opts)
	st, err := v.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading state: %w", err)
	}
	if st == nil {
		return nil, ErrNotInitialized
	}
	v.state = st
	v.delivered = st.NextSeq - 1
	return v, nil
}

// Close releases the store.
func (v *Vault) Close() error { return v.store.Close() }

// Subscribe delivers every event committed after the call to ch. Delivery
// happens after the vault is unlocked, so a subscriber may read the vault
// before draining ch; it must not call a mutating operation synchronously.
func (v *Vault) Subscribe(ch chan<- events.Event) event.Subscription {
	return v.feed.Subscribe(ch)
}

// Events returns the committed event journal.
func (v *Vault) Events(ctx context.Context) ([]events.Event, error) {
	return v.store.Events(ctx)
}

// Follow polls the journal every interval and publishes to subscribers the
// events other processes committed, until ctx is done. Events from other
// processes may be delivered after later local ones.
func (v *Vault) Follow(ctx context.Context, interval time.Duration) error {
	v.pubMu.Lock()
	v.following = true
	v.pubMu.Unlock()
	defer func() {
		v.pubMu.Lock()
		v.following = false
		v.pubMu.Unlock()
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		journal, err := v.store.Events(ctx)
		if err != nil {
			return fmt.Errorf("reading journal: %w", err)
		}
		v.pubMu.Lock()
		v.publishLocked(journal)
		v.pubMu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// apply runs fn against a copy of the stored state at the current ledger time
// and commits the copy with the returned events if fn succeeds. The events
// are published once the vault is unlocked.
func (v *Vault) apply(ctx context.Context, op string, fn func(st *State, now uint64) ([]events.Event, error)) error {
	v.mu.Lock()
	evs, err := v.commit(ctx, op, fn)
	v.outbox = append(v.outbox, evs...)
	v.mu.Unlock()
	if err != nil {
		return err
	}
	v.flush()
	return nil
}

// flush publishes the outbox in commit order. Lock order is pubMu, then mu.
func (v *Vault) flush() {
	v.pubMu.Lock()
	defer v.pubMu.Unlock()
	v.mu.Lock()
	evs := v.outbox
	v.outbox = nil
	v.mu.Unlock()
	v.publishLocked(evs)
}

// commit does the locked part of apply. v.mu must be held.
func (v *Vault) commit(ctx context.Context, op string, fn func(st *State, now uint64) ([]events.Event, error)) ([]events.Event, error) {
	unlock, err := v.store.Lock(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: locking store: %w", op, err)
	}
	defer unlock()

	current, err := v.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: loading state: %w", op, err)
	}
	if current == nil {
		return nil, ErrNotInitialized
	}
	v.state = current

	now, err := v.ledger.Now(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: reading ledger clock: %w", op, err)
	}
	next := current.Copy()
	evs, err := fn(next, now)
	if err != nil {
		if errors.Is(err, errs.ErrExternalCall) {
			v.log.Warn("Vault operation failed", "op", op, "err", err)
		} else {
			v.log.Debug("Vault operation rejected", "op", op, "err", err)
		}
		return nil, err
	}
	stamp(next, evs, now)
	if err := v.store.Commit(ctx, next, evs); err != nil {
		v.log.Error("Vault commit failed", "op", op, "err", err)
		return nil, fmt.Errorf("%s: committing state: %w", op, err)
	}
	v.state = next
	return evs, nil
}

// stamp numbers evs from st.NextSeq and dates them at now.
func stamp(st *State, evs []events.Event, now uint64) {
	for i := range evs {
		evs[i].Seq = st.NextSeq
		evs[i].Time = now
		st.NextSeq++
	}
}

// publishLocked delivers the events of evs not delivered yet. v.pubMu must
// be held.
func (v *Vault) publishLocked(evs []events.Event) {
	for _, e := range evs {
		if e.Seq <= v.delivered {
			continue
		}
		if _, ok := v.ahead[e.Seq]; ok {
			continue
		}
		v.feed.Publish([]events.Event{e})
		v.ahead[e.Seq] = struct{}{}
		for {
			if _, ok := v.ahead[v.delivered+1]; !ok {
				break
			}
			delete(v.ahead, v.delivered+1)
			v.delivered++
		}
	}
	if !v.following {
		// Gaps are events of other processes nobody will fetch.
		for seq := range v.ahead {
			v.delivered = max(v.delivered, seq)
		}
		clear(v.ahead)
	}
}

func single(ev *events.Event) []events.Event {
	if ev == nil {
		return nil
	}
	return []events.Event{*ev}
}

// Deposit records native currency received from sender. A zero amount is
// accepted and records nothing.
func (v *Vault) Deposit(ctx context.Context, sender common.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	err := v.apply(ctx, "deposit", func(*State, uint64) ([]events.Event, error) {
		return []events.Event{events.NewDeposit(sender, amount)}, nil
	})
	if err == nil {
		v.log.Info("Deposit received", "from", sender, "amount", amount)
	}
	return err
}

// DepositTx records the deposit made by transaction tx. Each transaction is
// recorded at most once.
func (v *Vault) DepositTx(ctx context.Context, tx common.Hash, sender common.Address, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	err := v.apply(ctx, "deposit", func(*State, uint64) ([]events.Event, error) {
		journal, err := v.store.Events(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading journal: %w", err)
		}
		for _, e := range journal {
			if e.Kind == events.Deposit && e.TxHash == tx {
				return nil, ErrDepositSeen
			}
		}
		ev := events.NewDeposit(sender, amount)
		ev.TxHash = tx
		return []events.Event{ev}, nil
	})
	if err == nil {
		v.log.Info("Deposit received", "from", sender, "amount", amount, "tx", tx)
	}
	return err
}

// Transfer sends amount of asset (Native or an ERC-20 contract) to to. Only
// the owner may transfer. Recipients outside the whitelist are charged against
// the daily limit at their native-currency value.
//
// A transfer that was broadcast but not seen mined is committed like a
// confirmed one, and its *PendingTxError is returned after the commit.
func (v *Vault) Transfer(ctx context.Context, caller, to, asset common.Address, amount *uint256.Int) error {
	var pending *PendingTxError
	err := v.apply(ctx, "transfer", func(st *State, now uint64) ([]events.Event, error) {
		if err := st.Access.OnlyOwner(caller); err != nil {
			return nil, err
		}
		if amount.IsZero() {
			return nil, ErrZeroAmount
		}
		if !st.Whitelist.IsWhitelisted(to) {
			value, err := v.nativeValue(ctx, asset, amount)
			if err != nil {
				return nil, err
			}
			if err := st.Limit.Charge(now, value); err != nil {
				return nil, err
			}
		}
		var err error
		if pending, err = v.move(ctx, to, asset, amount); err != nil {
			return nil, err
		}
		return []events.Event{events.NewTransfer(to, asset, amount)}, nil
	})
	if err != nil {
		return err
	}
	if pending != nil {
		v.log.Warn("Transfer broadcast but not confirmed", "to", to, "asset", asset, "amount", amount, "hash", pending.Hash)
		return pending
	}
	v.log.Info("Transfer sent", "to", to, "asset", asset, "amount", amount)
	return nil
}

// nativeValue is what amount of asset counts against the daily limit.
func (v *Vault) nativeValue(ctx context.Context, asset common.Address, amount *uint256.Int) (*uint256.Int, error) {
	if asset == Native {
		return amount.Clone(), nil
	}
	if v.oracle == nil {
		return nil, ErrNoOracle
	}
	rate, err := v.oracle.Rate(ctx, asset)
	if err != nil {
		return nil, fmt.Errorf("%w: rate of %s: %w", errs.ErrExternalCall, asset.Hex(), err)
	}
	value, overflow := new(uint256.Int).MulOverflow(rate, amount)
	if overflow {
		return nil, ErrValueOverflow
	}
	if value.IsZero() {
		return nil, ErrZeroValue
	}
	return value, nil
}

// move sends the funds. A send that may still be mined is not an error; it
// is returned as pending.
func (v *Vault) move(ctx context.Context, to, asset common.Address, amount *uint256.Int) (*PendingTxError, error) {
	if asset == Native {
		return sent(v.ledger.SendNative(ctx, to, amount), "native send")
	}
	if v.tokens == nil {
		return nil, ErrNoTokens
	}
	ok, err := v.tokens.Transfer(ctx, asset, to, amount)
	if pending, err := sent(err, "token transfer"); pending != nil || err != nil {
		return pending, err
	}
	if !ok {
		return nil, ErrTokenRejected
	}
	return nil, nil
}

// sent classifies the error of a send.
func sent(err error, what string) (*PendingTxError, error) {
	if err == nil {
		return nil, nil
	}
	var pending *PendingTxError
	if errors.As(err, &pending) {
		return pending, nil
	}
	return nil, fmt.Errorf("%w: %s: %w", errs.ErrExternalCall, what, err)
}

// TopUpGas sends native currency to the owner so it can pay for gas. The
// amount is clamped so the owner never ends up above the gas ceiling. Owner
// or any controller may call it. It returns the amount actually sent; a
// top-up that was broadcast but not seen mined is committed and returned with
// its *PendingTxError.
func (v *Vault) TopUpGas(ctx context.Context, caller common.Address, amount *uint256.Int) (*uint256.Int, error) {
	var (
		topped  *uint256.Int
		pending *PendingTxError
	)
	err := v.apply(ctx, "topUpGas", func(st *State, _ uint64) ([]events.Event, error) {
		if err := st.Access.OnlyOwnerOrController(caller); err != nil {
			return nil, err
		}
		if amount.IsZero() {
			return nil, ErrZeroAmount
		}
		owner := st.Access.Owner()
		bal, err := v.ledger.NativeBalance(ctx, owner)
		if err != nil {
			return nil, fmt.Errorf("%w: owner balance: %w", errs.ErrExternalCall, err)
		}
		if !bal.Lt(v.ceiling) {
			return nil, ErrAboveCeiling
		}
		total, overflow := new(uint256.Int).AddOverflow(bal, amount)
		if overflow {
			return nil, ErrValueOverflow
		}
		topped = amount.Clone()
		if total.Gt(v.ceiling) {
			topped.Sub(v.ceiling, bal)
		}
		if pending, err = sent(v.ledger.SendNative(ctx, owner, topped), "native send"); err != nil {
			return nil, err
		}
		return []events.Event{events.NewTopUpGas(caller, owner, topped)}, nil
	})
	if err != nil {
		return nil, err
	}
	if pending != nil {
		v.log.Warn("Gas top-up broadcast but not confirmed", "by", caller, "sent", topped, "hash", pending.Hash)
		return topped, pending
	}
	v.log.Info("Gas topped up", "by", caller, "requested", amount, "sent", topped)
	return topped, nil
}
