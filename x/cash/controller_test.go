package cash

import (
	"testing"

	"github.com/iov-one/crowdfund/coin"
	"github.com/iov-one/crowdfund/crowdfundtest"
	"github.com/iov-one/crowdfund/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveCoins(t *testing.T) {
	alice := crowdfundtest.NewCondition().Address()
	bob := crowdfundtest.NewCondition().Address()

	cases := map[string]struct {
		seed      coin.Coins
		amount    coin.Coin
		wantErr   *errors.Error
		wantAlice coin.Coin
		wantBob   coin.Coin
	}{
		"full balance": {
			seed:      coin.Coins{coin.NewCoinp(10, 0, "ETH")},
			amount:    coin.NewCoin(10, 0, "ETH"),
			wantAlice: coin.NewCoin(0, 0, "ETH"),
			wantBob:   coin.NewCoin(10, 0, "ETH"),
		},
		"fraction": {
			seed:      coin.Coins{coin.NewCoinp(1, 0, "ETH")},
			amount:    coin.NewCoin(0, 250000000, "ETH"),
			wantAlice: coin.NewCoin(0, 750000000, "ETH"),
			wantBob:   coin.NewCoin(0, 250000000, "ETH"),
		},
		"insufficient funds": {
			seed:    coin.Coins{coin.NewCoinp(1, 0, "ETH")},
			amount:  coin.NewCoin(2, 0, "ETH"),
			wantErr: errors.ErrInsufficientAmount,
		},
		"other currency": {
			seed:    coin.Coins{coin.NewCoinp(5, 0, "ETH")},
			amount:  coin.NewCoin(1, 0, "BTC"),
			wantErr: errors.ErrInsufficientAmount,
		},
		"zero amount": {
			seed:    coin.Coins{coin.NewCoinp(5, 0, "ETH")},
			amount:  coin.NewCoin(0, 0, "ETH"),
			wantErr: errors.ErrAmount,
		},
		"no wallet": {
			amount:  coin.NewCoin(1, 0, "ETH"),
			wantErr: errors.ErrEmpty,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := crowdfundtest.MemStore()
			bucket := NewBucket()
			ctrl := NewController(bucket)

			if tc.seed != nil {
				w, err := WalletWith(alice, tc.seed...)
				require.NoError(t, err)
				require.NoError(t, bucket.Save(db, w))
			}

			err := ctrl.MoveCoins(db, alice, bob, tc.amount)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tc.wantErr.Is(err), "%+v", err)
				return
			}
			require.NoError(t, err)

			a, err := ctrl.Balance(db, alice)
			require.NoError(t, err)
			assert.True(t, tc.wantAlice.Equals(a.Get("ETH")), "alice holds %s", a.Get("ETH"))

			b, err := ctrl.Balance(db, bob)
			require.NoError(t, err)
			assert.True(t, tc.wantBob.Equals(b.Get("ETH")), "bob holds %s", b.Get("ETH"))
		})
	}
}

func TestIssueCoins(t *testing.T) {
	db := crowdfundtest.MemStore()
	ctrl := NewController(NewBucket())
	addr := crowdfundtest.NewCondition().Address()

	_, err := ctrl.Balance(db, addr)
	assert.True(t, errors.ErrNotFound.Is(err))

	require.NoError(t, ctrl.IssueCoins(db, addr, coin.NewCoin(3, 0, "ETH")))
	require.NoError(t, ctrl.IssueCoins(db, addr, coin.NewCoin(4, 0, "ETH")))

	got, err := ctrl.Balance(db, addr)
	require.NoError(t, err)
	assert.True(t, coin.NewCoin(7, 0, "ETH").Equals(got.Get("ETH")))

	// A balance cannot go negative.
	err = ctrl.IssueCoins(db, addr, coin.NewCoin(-8, 0, "ETH"))
	assert.True(t, errors.ErrAmount.Is(err), "%+v", err)
}
