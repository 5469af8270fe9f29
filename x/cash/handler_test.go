package cash

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/coin"
	"github.com/iov-one/crowdfund/crowdfundtest"
	"github.com/iov-one/crowdfund/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendHandler(t *testing.T) {
	perm := crowdfundtest.NewCondition()
	other := crowdfundtest.NewCondition()

	cases := map[string]struct {
		signer  crowdfund.Condition
		msg     *SendMsg
		wantErr *errors.Error
	}{
		"valid send": {
			signer: perm,
			msg: &SendMsg{
				Metadata:    &crowdfund.Metadata{Schema: 1},
				Source:      perm.Address(),
				Destination: other.Address(),
				Amount:      coin.NewCoinp(2, 0, "ETH"),
			},
		},
		"missing signature": {
			signer: other,
			msg: &SendMsg{
				Metadata:    &crowdfund.Metadata{Schema: 1},
				Source:      perm.Address(),
				Destination: other.Address(),
				Amount:      coin.NewCoinp(2, 0, "ETH"),
			},
			wantErr: errors.ErrUnauthorized,
		},
		"negative amount": {
			signer: perm,
			msg: &SendMsg{
				Metadata:    &crowdfund.Metadata{Schema: 1},
				Source:      perm.Address(),
				Destination: other.Address(),
				Amount:      coin.NewCoinp(-2, 0, "ETH"),
			},
			wantErr: errors.ErrAmount,
		},
		"too much": {
			signer: perm,
			msg: &SendMsg{
				Metadata:    &crowdfund.Metadata{Schema: 1},
				Source:      perm.Address(),
				Destination: other.Address(),
				Amount:      coin.NewCoinp(20, 0, "ETH"),
			},
			wantErr: errors.ErrInsufficientAmount,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := crowdfundtest.MemStore()
			ctrl := NewController(NewBucket())
			require.NoError(t, ctrl.IssueCoins(db, perm.Address(), coin.NewCoin(10, 0, "ETH")))

			h := NewSendHandler(&crowdfundtest.Auth{Signer: tc.signer}, ctrl)
			tx := &crowdfundtest.Tx{Msg: tc.msg}

			_, err := h.Deliver(context.Background(), db, tx)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tc.wantErr.Is(err), "%+v", err)
				return
			}
			require.NoError(t, err)

			got, err := ctrl.Balance(db, other.Address())
			require.NoError(t, err)
			assert.True(t, tc.msg.Amount.Equals(got.Get("ETH")))
		})
	}
}

func TestGenesisInitializer(t *testing.T) {
	addr := crowdfundtest.NewCondition().Address()
	raw := `{"cash": [{"address": "` + addr.String() + `", "coins": [{"whole": 50, "ticker": "ETH"}, {"whole": 1, "fractional": 5, "ticker": "BTC"}]}]}`

	var opts crowdfund.Options
	require.NoError(t, json.Unmarshal([]byte(raw), &opts))

	db := crowdfundtest.MemStore()
	require.NoError(t, Initializer{}.FromGenesis(opts, crowdfund.GenesisParams{}, db))

	coins, err := NewController(NewBucket()).Balance(db, addr)
	require.NoError(t, err)
	assert.True(t, coin.NewCoin(50, 0, "ETH").Equals(coins.Get("ETH")))
	assert.True(t, coin.NewCoin(1, 5, "BTC").Equals(coins.Get("BTC")))
}
