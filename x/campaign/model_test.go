package campaign

import (
	"testing"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/coin"
	"github.com/iov-one/crowdfund/crowdfundtest"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/orm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCampaignValidate(t *testing.T) {
	owner := crowdfundtest.NewCondition().Address()
	valid := func() *Campaign {
		c, err := NewCampaign(owner, eth(10), 1000, 7)
		require.NoError(t, err)
		c.Address = Condition(orm.EncodeSequence(1)).Address()
		return c
	}

	cases := map[string]struct {
		mutate  func(c *Campaign)
		wantErr *errors.Error
	}{
		"valid": {
			mutate: func(*Campaign) {},
		},
		"missing metadata": {
			mutate:  func(c *Campaign) { c.Metadata = nil },
			wantErr: errors.ErrMetadata,
		},
		"deadline not after creation": {
			mutate:  func(c *Campaign) { c.Deadline = c.CreatedAt },
			wantErr: ErrConstructionInvalid,
		},
		"zero goal": {
			mutate:  func(c *Campaign) { c.FundingGoal = eth(0) },
			wantErr: ErrConstructionInvalid,
		},
		"currency mismatch": {
			mutate:  func(c *Campaign) { c.TotalRaised = coin.NewCoin(1, 0, "BTC") },
			wantErr: errors.ErrCurrency,
		},
		"negative raised": {
			mutate:  func(c *Campaign) { c.TotalRaised = eth(-1) },
			wantErr: errors.ErrAmount,
		},
		"missing escrow address": {
			mutate:  func(c *Campaign) { c.Address = nil },
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			c := valid()
			tc.mutate(c)
			assertIs(t, tc.wantErr, c.Validate())
		})
	}
}

func TestCampaignPersistence(t *testing.T) {
	c, err := NewCampaign(crowdfundtest.NewCondition().Address(), coin.NewCoin(3, 500, "ETH"), 12345, 2)
	require.NoError(t, err)
	c.Address = Condition(orm.EncodeSequence(9)).Address()
	c.TotalRaised = coin.NewCoin(1, 1, "ETH")

	bz, err := c.Marshal()
	require.NoError(t, err)
	var got Campaign
	require.NoError(t, got.Unmarshal(bz))
	assert.Equal(t, c, &got)

	cpy := c.Copy().(*Campaign)
	cpy.Owner[0] ^= 0xff
	assert.NotEqual(t, c.Owner, cpy.Owner)
}

func TestContributionValidate(t *testing.T) {
	rec := &Contribution{
		Metadata:    &crowdfund.Metadata{Schema: 1},
		CampaignID:  orm.EncodeSequence(1),
		Contributor: crowdfundtest.NewCondition().Address(),
		Amount:      eth(0),
	}
	assert.NoError(t, rec.Validate())

	rec.Amount = eth(-2)
	assertIs(t, errors.ErrAmount, rec.Validate())

	rec.Amount = eth(2)
	rec.CampaignID = []byte{1}
	assertIs(t, errors.ErrInput, rec.Validate())
}

func TestCreateMsgValidate(t *testing.T) {
	meta := &crowdfund.Metadata{Schema: 1}
	cases := map[string]struct {
		msg     crowdfund.Msg
		wantErr *errors.Error
	}{
		"valid create": {
			msg: &CreateMsg{Metadata: meta, FundingGoal: coin.NewCoinp(10, 0, "ETH"), DurationDays: 7},
		},
		"create without goal": {
			msg:     &CreateMsg{Metadata: meta, DurationDays: 7},
			wantErr: ErrConstructionInvalid,
		},
		"create too long": {
			msg:     &CreateMsg{Metadata: meta, FundingGoal: coin.NewCoinp(10, 0, "ETH"), DurationDays: maxDurationDays + 1},
			wantErr: ErrConstructionInvalid,
		},
		"contribute without amount": {
			msg:     &ContributeMsg{Metadata: meta, CampaignID: orm.EncodeSequence(1)},
			wantErr: ErrInvalidAmount,
		},
		"contribute bad currency": {
			msg:     &ContributeMsg{Metadata: meta, CampaignID: orm.EncodeSequence(1), Amount: coin.NewCoinp(1, 0, "eth")},
			wantErr: errors.ErrCurrency,
		},
		"refund missing metadata": {
			msg:     &RefundMsg{CampaignID: orm.EncodeSequence(1)},
			wantErr: errors.ErrMetadata,
		},
		"withdraw missing id": {
			msg:     &WithdrawMsg{Metadata: meta},
			wantErr: errors.ErrEmpty,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assertIs(t, tc.wantErr, tc.msg.Validate())
		})
	}
}
