package campaign

import (
	"context"
	"sync"
	"time"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/coin"
	"github.com/tendermint/tendermint/libs/log"
)

// Clock supplies the current time to a Ledger.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (fn ClockFunc) Now() time.Time {
	return fn()
}

// SystemClock is the wall clock. Ledgers created without a clock use it.
var SystemClock Clock = ClockFunc(time.Now)

// Status is a snapshot of a campaign at a point in time.
type Status struct {
	ID             []byte
	Owner          crowdfund.Address
	Address        crowdfund.Address
	FundingGoal    coin.Coin
	Deadline       crowdfund.UnixTime
	TotalRaised    coin.Coin
	GoalReached    bool
	FundsWithdrawn bool
	Phase          Phase
	// Remaining is the time left until the deadline, zero once closed.
	Remaining time.Duration
}

// Status returns the state of the campaign at the block time of ctx.
func (c *Controller) Status(ctx crowdfund.Context, db crowdfund.ReadOnlyKVStore, campaignID []byte) (*Status, error) {
	now, err := blockNow(ctx)
	if err != nil {
		return nil, err
	}
	camp, err := c.campaign(db, campaignID)
	if err != nil {
		return nil, err
	}
	return statusOf(campaignID, camp, now), nil
}

func statusOf(id []byte, camp *Campaign, now crowdfund.UnixTime) *Status {
	st := &Status{
		ID:             id,
		Owner:          camp.Owner,
		Address:        camp.Address,
		FundingGoal:    camp.FundingGoal,
		Deadline:       camp.Deadline,
		TotalRaised:    camp.TotalRaised,
		GoalReached:    camp.GoalReached(),
		FundsWithdrawn: camp.FundsWithdrawn,
		Phase:          PhaseOf(camp, now),
	}
	if now < camp.Deadline {
		st.Remaining = camp.Deadline.Time().Sub(now.Time())
	}
	return st
}

// Ledger binds a single campaign to a store and a clock for in-process use.
//
// Mutating calls are mutually exclusive and reads share a lock, so a Ledger
// can be used from many goroutines. The lock is not reentrant: a CoinMover
// must not call back into the Ledger that invoked it. A callback that goes
// through the Controller with the store it was given observes the already
// updated state and is rejected.
type Ledger struct {
	mu    sync.RWMutex
	ctrl  *Controller
	db    crowdfund.CacheableKVStore
	id    []byte
	clock Clock
	log   log.Logger
}

// NewLedger creates a new campaign and returns a ledger managing it. A nil
// clock means SystemClock.
func NewLedger(db crowdfund.CacheableKVStore, ctrl *Controller, clock Clock, owner crowdfund.Address, goal coin.Coin, durationDays uint32) (*Ledger, error) {
	if clock == nil {
		clock = SystemClock
	}
	l := &Ledger{ctrl: ctrl, db: db, clock: clock, log: crowdfund.DefaultLogger}
	id, _, err := ctrl.Create(l.context(), db, owner, goal, durationDays)
	if err != nil {
		return nil, err
	}
	l.id = id
	return l, nil
}

// OpenLedger returns a ledger managing an existing campaign.
func OpenLedger(db crowdfund.CacheableKVStore, ctrl *Controller, clock Clock, campaignID []byte) (*Ledger, error) {
	if clock == nil {
		clock = SystemClock
	}
	if _, err := ctrl.Campaign(db, campaignID); err != nil {
		return nil, err
	}
	return &Ledger{ctrl: ctrl, db: db, id: campaignID, clock: clock, log: crowdfund.DefaultLogger}, nil
}

// WithLogger sets the logger used for all operations.
func (l *Ledger) WithLogger(logger log.Logger) *Ledger {
	l.mu.Lock()
	l.log = logger
	l.mu.Unlock()
	return l
}

// ID returns the key of the managed campaign.
func (l *Ledger) ID() []byte {
	return l.id
}

// context reads the clock. Each call is a new clock reading.
func (l *Ledger) context() crowdfund.Context {
	ctx := crowdfund.WithLogger(context.Background(), l.log)
	return crowdfund.WithBlockTime(ctx, l.clock.Now())
}

// Contribute escrows amount paid by caller.
func (l *Ledger) Contribute(caller crowdfund.Address, amount coin.Coin) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ctrl.Contribute(l.context(), l.db, l.id, caller, amount)
}

// Withdraw pays the whole pool to the owner.
func (l *Ledger) Withdraw(caller crowdfund.Address) (coin.Coin, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ctrl.Withdraw(l.context(), l.db, l.id, caller)
}

// Refund returns the caller's contribution.
func (l *Ledger) Refund(caller crowdfund.Address) (coin.Coin, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ctrl.Refund(l.context(), l.db, l.id, caller)
}

// Status returns a snapshot of the campaign.
func (l *Ledger) Status() (*Status, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ctrl.Status(l.context(), l.db, l.id)
}

// Contributions returns what contributor currently has in the campaign.
func (l *Ledger) Contributions(contributor crowdfund.Address) (coin.Coin, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.ctrl.ContributionOf(l.db, l.id, contributor)
}

// Owner returns the beneficiary.
func (l *Ledger) Owner() (crowdfund.Address, error) {
	st, err := l.Status()
	if err != nil {
		return nil, err
	}
	return st.Owner, nil
}

// FundingGoal returns the amount that must be raised.
func (l *Ledger) FundingGoal() (coin.Coin, error) {
	st, err := l.Status()
	if err != nil {
		return coin.Coin{}, err
	}
	return st.FundingGoal, nil
}

// Deadline returns the end of the funding period.
func (l *Ledger) Deadline() (crowdfund.UnixTime, error) {
	st, err := l.Status()
	if err != nil {
		return 0, err
	}
	return st.Deadline, nil
}

// TotalRaised returns the sum of all contributions received.
func (l *Ledger) TotalRaised() (coin.Coin, error) {
	st, err := l.Status()
	if err != nil {
		return coin.Coin{}, err
	}
	return st.TotalRaised, nil
}

// GoalReached returns true if the funding goal was met.
func (l *Ledger) GoalReached() (bool, error) {
	st, err := l.Status()
	if err != nil {
		return false, err
	}
	return st.GoalReached, nil
}

// FundsWithdrawn returns true once the owner withdrew the pool.
func (l *Ledger) FundsWithdrawn() (bool, error) {
	st, err := l.Status()
	if err != nil {
		return false, err
	}
	return st.FundsWithdrawn, nil
}
