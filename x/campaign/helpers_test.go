package campaign

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/coin"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/x/cash"
	"github.com/stretchr/testify/require"
)

// testClock is a manually advanced Clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2019, time.May, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// hookBank is a cash controller that can fail transfers or run a callback
// from inside a transfer, with the store the transfer was given.
type hookBank struct {
	cash.BaseController
	// fail makes every transfer out of an escrow fail.
	fail bool
	// onMove is called once, before the next transfer moves any coin.
	onMove func(db crowdfund.KVStore)
}

func newHookBank() *hookBank {
	return &hookBank{BaseController: cash.NewController(cash.NewBucket())}
}

func (b *hookBank) MoveCoins(db crowdfund.KVStore, src, dest crowdfund.Address, amount coin.Coin) error {
	if fn := b.onMove; fn != nil {
		b.onMove = nil
		fn(db)
	}
	if b.fail {
		return errors.Wrap(errors.ErrState, "transfer rejected")
	}
	return b.BaseController.MoveCoins(db, src, dest, amount)
}

func eth(whole int64) coin.Coin {
	return coin.NewCoin(whole, 0, "ETH")
}

func atTime(t time.Time) crowdfund.Context {
	return crowdfund.WithBlockTime(context.Background(), t)
}

func fund(t testing.TB, db crowdfund.KVStore, bank cash.Controller, addr crowdfund.Address, amount coin.Coin) {
	t.Helper()
	require.NoError(t, bank.IssueCoins(db, addr, amount))
}

func balanceOf(t testing.TB, db crowdfund.ReadOnlyKVStore, bank cash.Controller, addr crowdfund.Address) coin.Coin {
	t.Helper()
	coins, err := bank.Balance(db, addr)
	if err != nil {
		return coin.NewCoin(0, 0, "ETH")
	}
	return coins.Get("ETH")
}
