package campaign

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/coin"
	"github.com/iov-one/crowdfund/crowdfundtest"
	"github.com/iov-one/crowdfund/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ledgerFixture struct {
	db    crowdfund.CacheableKVStore
	bank  *hookBank
	clock *testClock
	owner crowdfund.Address
	l     *Ledger
}

func newLedgerFixture(t *testing.T, goal coin.Coin, days uint32) *ledgerFixture {
	t.Helper()
	f := &ledgerFixture{
		db:    crowdfundtest.MemStore(),
		bank:  newHookBank(),
		clock: newTestClock(),
		owner: crowdfundtest.NewCondition().Address(),
	}
	l, err := NewLedger(f.db, NewController(f.bank), f.clock, f.owner, goal, days)
	require.NoError(t, err)
	f.l = l
	return f
}

func (f *ledgerFixture) contributor(t *testing.T, funds coin.Coin) crowdfund.Address {
	addr := crowdfundtest.NewCondition().Address()
	fund(t, f.db, f.bank, addr, funds)
	return addr
}

func TestWithdrawAfterGoalMet(t *testing.T) {
	f := newLedgerFixture(t, eth(10), 1)
	x := f.contributor(t, eth(10))

	require.NoError(t, f.l.Contribute(x, eth(10)))
	reached, err := f.l.GoalReached()
	require.NoError(t, err)
	assert.True(t, reached)

	f.clock.Advance(24 * time.Hour)

	got, err := f.l.Withdraw(f.owner)
	require.NoError(t, err)
	assert.True(t, eth(10).Equals(got), "released %s", got)
	assert.True(t, eth(10).Equals(balanceOf(t, f.db, f.bank, f.owner)))

	withdrawn, err := f.l.FundsWithdrawn()
	require.NoError(t, err)
	assert.True(t, withdrawn)

	_, err = f.l.Refund(x)
	assert.True(t, ErrGoalWasReached.Is(err), "%+v", err)

	_, err = f.l.Withdraw(f.owner)
	assert.True(t, ErrAlreadyWithdrawn.Is(err), "%+v", err)
}

func TestRefundAfterGoalMissed(t *testing.T) {
	f := newLedgerFixture(t, eth(10), 1)
	x := f.contributor(t, eth(5))

	require.NoError(t, f.l.Contribute(x, eth(1)))
	f.clock.Advance(25 * time.Hour)

	raised, err := f.l.TotalRaised()
	require.NoError(t, err)
	assert.True(t, eth(1).Equals(raised))

	_, err = f.l.Withdraw(f.owner)
	assert.True(t, ErrGoalNotMet.Is(err), "%+v", err)

	got, err := f.l.Refund(x)
	require.NoError(t, err)
	assert.True(t, eth(1).Equals(got))
	assert.True(t, eth(5).Equals(balanceOf(t, f.db, f.bank, x)))

	left, err := f.l.Contributions(x)
	require.NoError(t, err)
	assert.True(t, left.IsZero())

	_, err = f.l.Refund(x)
	assert.True(t, ErrNothingToRefund.Is(err), "%+v", err)

	// Refunds do not lower the raised amount.
	raised, err = f.l.TotalRaised()
	require.NoError(t, err)
	assert.True(t, eth(1).Equals(raised))
}

func TestRejectInvalidContribution(t *testing.T) {
	f := newLedgerFixture(t, eth(10), 1)
	x := f.contributor(t, eth(5))

	err := f.l.Contribute(x, eth(0))
	assert.True(t, ErrInvalidAmount.Is(err), "%+v", err)
	err = f.l.Contribute(x, eth(-1))
	assert.True(t, ErrInvalidAmount.Is(err), "%+v", err)
	err = f.l.Contribute(x, coin.NewCoin(1, 0, "BTC"))
	assert.True(t, ErrInvalidAmount.Is(err), "%+v", err)

	raised, err := f.l.TotalRaised()
	require.NoError(t, err)
	assert.True(t, raised.IsZero())
	assert.True(t, eth(5).Equals(balanceOf(t, f.db, f.bank, x)))
}

func TestWithdrawByNonOwner(t *testing.T) {
	f := newLedgerFixture(t, eth(10), 1)
	x := f.contributor(t, eth(10))
	require.NoError(t, f.l.Contribute(x, eth(10)))
	f.clock.Advance(48 * time.Hour)

	_, err := f.l.Withdraw(x)
	assert.True(t, ErrNotBeneficiary.Is(err), "%+v", err)

	withdrawn, err := f.l.FundsWithdrawn()
	require.NoError(t, err)
	assert.False(t, withdrawn)
}

func TestNothingBeforeDeadline(t *testing.T) {
	f := newLedgerFixture(t, eth(10), 2)
	x := f.contributor(t, eth(20))
	require.NoError(t, f.l.Contribute(x, eth(12)))

	f.clock.Advance(48*time.Hour - time.Second)

	_, err := f.l.Withdraw(f.owner)
	assert.True(t, ErrTooEarly.Is(err), "%+v", err)
	_, err = f.l.Refund(x)
	assert.True(t, ErrTooEarly.Is(err), "%+v", err)

	// Over funding is fine while open.
	require.NoError(t, f.l.Contribute(x, eth(1)))

	// Deadline itself is already closed.
	f.clock.Advance(time.Second)
	err = f.l.Contribute(x, eth(1))
	assert.True(t, ErrCampaignClosed.Is(err), "%+v", err)

	st, err := f.l.Status()
	require.NoError(t, err)
	assert.Equal(t, PhaseSucceeded, st.Phase)
	assert.Equal(t, time.Duration(0), st.Remaining)
	assert.True(t, eth(13).Equals(st.TotalRaised))
}

func TestTotalRaisedIsSumOfContributions(t *testing.T) {
	f := newLedgerFixture(t, coin.NewCoin(1000, 0, "ETH"), 7)
	rnd := rand.New(rand.NewSource(42))

	contributors := make([]crowdfund.Address, 5)
	for i := range contributors {
		contributors[i] = f.contributor(t, eth(1000))
	}

	want := make(map[string]coin.Coin)
	total := eth(0)
	for i := 0; i < 50; i++ {
		who := contributors[rnd.Intn(len(contributors))]
		amount := coin.NewCoin(rnd.Int63n(3), rnd.Int63n(coin.FracUnit), "ETH")
		if !amount.IsPositive() {
			continue
		}
		require.NoError(t, f.l.Contribute(who, amount))

		var err error
		prev := want[who.String()]
		if prev.Ticker == "" {
			prev = eth(0)
		}
		want[who.String()], err = prev.Add(amount)
		require.NoError(t, err)
		total, err = total.Add(amount)
		require.NoError(t, err)
		f.clock.Advance(time.Minute)
	}

	raised, err := f.l.TotalRaised()
	require.NoError(t, err)
	assert.True(t, total.Equals(raised), "want %s, got %s", total, raised)

	sum := eth(0)
	for _, who := range contributors {
		got, err := f.l.Contributions(who)
		require.NoError(t, err)
		if w, ok := want[who.String()]; ok {
			assert.True(t, w.Equals(got), "want %s, got %s", w, got)
		}
		sum, err = sum.Add(got)
		require.NoError(t, err)
	}
	assert.True(t, sum.Equals(raised))

	recs, err := f.l.ctrl.Contributions(f.db, f.l.ID())
	require.NoError(t, err)
	assert.Len(t, recs, len(want))
}

func TestGoalReachedIsMonotonic(t *testing.T) {
	f := newLedgerFixture(t, eth(3), 1)
	a := f.contributor(t, eth(10))
	b := f.contributor(t, eth(10))

	steps := []struct {
		who    crowdfund.Address
		amount coin.Coin
		want   bool
	}{
		{a, eth(1), false},
		{b, eth(1), false},
		{a, eth(1), true},
		{b, eth(4), true},
	}
	for i, s := range steps {
		require.NoError(t, f.l.Contribute(s.who, s.amount))
		reached, err := f.l.GoalReached()
		require.NoError(t, err)
		assert.Equal(t, s.want, reached, "step %d", i)
	}

	f.clock.Advance(24 * time.Hour)
	_, err := f.l.Withdraw(f.owner)
	require.NoError(t, err)
	reached, err := f.l.GoalReached()
	require.NoError(t, err)
	assert.True(t, reached)
}

func TestConcurrentContributions(t *testing.T) {
	f := newLedgerFixture(t, eth(100), 1)
	const n = 20
	contributors := make([]crowdfund.Address, n)
	for i := range contributors {
		contributors[i] = f.contributor(t, eth(5))
	}

	var wg sync.WaitGroup
	errc := make(chan error, n*2)
	for _, who := range contributors {
		wg.Add(1)
		go func(who crowdfund.Address) {
			defer wg.Done()
			errc <- f.l.Contribute(who, eth(2))
			_, err := f.l.Status()
			errc <- err
		}(who)
	}
	wg.Wait()
	close(errc)
	for err := range errc {
		require.NoError(t, err)
	}

	raised, err := f.l.TotalRaised()
	require.NoError(t, err)
	assert.True(t, eth(2*n).Equals(raised), "got %s", raised)
}

func TestWithdrawReentrancy(t *testing.T) {
	f := newLedgerFixture(t, eth(10), 1)
	x := f.contributor(t, eth(10))
	require.NoError(t, f.l.Contribute(x, eth(10)))
	f.clock.Advance(24 * time.Hour)

	var reentrant error
	ctx := atTime(f.clock.Now())
	f.bank.onMove = func(db crowdfund.KVStore) {
		_, reentrant = f.l.ctrl.Withdraw(ctx, db, f.l.ID(), f.owner)
	}

	_, err := f.l.Withdraw(f.owner)
	require.NoError(t, err)
	assert.True(t, ErrAlreadyWithdrawn.Is(reentrant), "%+v", reentrant)
	assert.True(t, eth(10).Equals(balanceOf(t, f.db, f.bank, f.owner)))
}

func TestRefundReentrancy(t *testing.T) {
	f := newLedgerFixture(t, eth(10), 1)
	x := f.contributor(t, eth(10))
	require.NoError(t, f.l.Contribute(x, eth(4)))
	f.clock.Advance(24 * time.Hour)

	var reentrant error
	ctx := atTime(f.clock.Now())
	f.bank.onMove = func(db crowdfund.KVStore) {
		_, reentrant = f.l.ctrl.Refund(ctx, db, f.l.ID(), x)
	}

	got, err := f.l.Refund(x)
	require.NoError(t, err)
	assert.True(t, eth(4).Equals(got))
	assert.True(t, ErrNothingToRefund.Is(reentrant), "%+v", reentrant)
	assert.True(t, eth(10).Equals(balanceOf(t, f.db, f.bank, x)))
}

func TestFailedTransferRollsBack(t *testing.T) {
	f := newLedgerFixture(t, eth(10), 1)
	x := f.contributor(t, eth(20))
	require.NoError(t, f.l.Contribute(x, eth(10)))
	f.clock.Advance(24 * time.Hour)

	f.bank.fail = true
	_, err := f.l.Withdraw(f.owner)
	assert.True(t, errors.ErrState.Is(err), "%+v", err)

	withdrawn, err := f.l.FundsWithdrawn()
	require.NoError(t, err)
	assert.False(t, withdrawn, "flag must not survive a failed transfer")

	f.bank.fail = false
	_, err = f.l.Withdraw(f.owner)
	require.NoError(t, err)
	assert.True(t, eth(10).Equals(balanceOf(t, f.db, f.bank, f.owner)))
}

func TestFailedRefundTransferRollsBack(t *testing.T) {
	f := newLedgerFixture(t, eth(10), 1)
	x := f.contributor(t, eth(3))
	require.NoError(t, f.l.Contribute(x, eth(3)))
	f.clock.Advance(24 * time.Hour)

	f.bank.fail = true
	_, err := f.l.Refund(x)
	require.Error(t, err)

	left, err := f.l.Contributions(x)
	require.NoError(t, err)
	assert.True(t, eth(3).Equals(left), "record must not be zeroed")

	f.bank.fail = false
	_, err = f.l.Refund(x)
	require.NoError(t, err)
}

func TestContributionWithoutFunds(t *testing.T) {
	f := newLedgerFixture(t, eth(10), 1)
	x := f.contributor(t, eth(1))

	err := f.l.Contribute(x, eth(2))
	assert.True(t, errors.ErrInsufficientAmount.Is(err), "%+v", err)

	raised, err := f.l.TotalRaised()
	require.NoError(t, err)
	assert.True(t, raised.IsZero())
	left, err := f.l.Contributions(x)
	require.NoError(t, err)
	assert.True(t, left.IsZero())
}

func TestStatusReads(t *testing.T) {
	f := newLedgerFixture(t, eth(10), 3)

	owner, err := f.l.Owner()
	require.NoError(t, err)
	assert.Equal(t, f.owner, owner)

	goal, err := f.l.FundingGoal()
	require.NoError(t, err)
	assert.True(t, eth(10).Equals(goal))

	deadline, err := f.l.Deadline()
	require.NoError(t, err)
	assert.Equal(t, crowdfund.AsUnixTime(f.clock.Now().Add(72*time.Hour)), deadline)

	st, err := f.l.Status()
	require.NoError(t, err)
	assert.Equal(t, PhaseOpen, st.Phase)
	assert.Equal(t, 72*time.Hour, st.Remaining)

	_, err = f.l.Contributions(crowdfund.Address("short"))
	assert.True(t, errors.ErrInput.Is(err), "%+v", err)

	nobody, err := f.l.Contributions(crowdfundtest.NewCondition().Address())
	require.NoError(t, err)
	assert.True(t, nobody.IsZero())
}

func TestOpenLedger(t *testing.T) {
	f := newLedgerFixture(t, eth(10), 1)

	again, err := OpenLedger(f.db, f.l.ctrl, f.clock, f.l.ID())
	require.NoError(t, err)
	owner, err := again.Owner()
	require.NoError(t, err)
	assert.Equal(t, f.owner, owner)

	_, err = OpenLedger(f.db, f.l.ctrl, f.clock, []byte{0, 0, 0, 0, 0, 0, 0, 99})
	assert.True(t, errors.ErrNotFound.Is(err), "%+v", err)
}

func TestNewLedgerInvalid(t *testing.T) {
	db := crowdfundtest.MemStore()
	ctrl := NewController(newHookBank())
	owner := crowdfundtest.NewCondition().Address()

	_, err := NewLedger(db, ctrl, newTestClock(), owner, eth(0), 1)
	assert.True(t, ErrConstructionInvalid.Is(err), "%+v", err)
	_, err = NewLedger(db, ctrl, newTestClock(), owner, eth(1), 0)
	assert.True(t, ErrConstructionInvalid.Is(err), "%+v", err)
	_, err = NewLedger(db, ctrl, newTestClock(), owner, eth(1), maxDurationDays+1)
	assert.True(t, ErrConstructionInvalid.Is(err), "%+v", err)
	// Large enough to wrap around when counted in nanoseconds.
	_, err = NewLedger(db, ctrl, newTestClock(), owner, eth(1), 213504)
	assert.True(t, ErrConstructionInvalid.Is(err), "%+v", err)
}

func TestLongestCampaignDeadline(t *testing.T) {
	db := crowdfundtest.MemStore()
	ctrl := NewController(newHookBank())
	owner := crowdfundtest.NewCondition().Address()
	clock := newTestClock()

	l, err := NewLedger(db, ctrl, clock, owner, eth(1), maxDurationDays)
	require.NoError(t, err)
	deadline, err := l.Deadline()
	require.NoError(t, err)
	want := crowdfund.AsUnixTime(clock.Now()) + maxDurationDays*24*60*60
	assert.Equal(t, want, deadline)

	clock.Advance(time.Duration(maxDurationDays-1) * 24 * time.Hour)
	x := crowdfundtest.NewCondition().Address()
	fund(t, db, ctrl.bank, x, eth(1))
	require.NoError(t, l.Contribute(x, eth(1)))
}

func TestLedgerDefaultsToSystemClock(t *testing.T) {
	db := crowdfundtest.MemStore()
	ctrl := NewController(newHookBank())
	owner := crowdfundtest.NewCondition().Address()

	before := time.Now()
	l, err := NewLedger(db, ctrl, nil, owner, eth(1), 1)
	require.NoError(t, err)
	st, err := l.Status()
	require.NoError(t, err)
	assert.Equal(t, PhaseOpen, st.Phase)
	assert.True(t, st.Deadline >= crowdfund.AsUnixTime(before.Add(24*time.Hour)), "deadline %s", st.Deadline)

	again, err := OpenLedger(db, ctrl, nil, l.ID())
	require.NoError(t, err)
	owner2, err := again.Owner()
	require.NoError(t, err)
	assert.Equal(t, owner, owner2)
}
