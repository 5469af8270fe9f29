package campaign

import (
	"testing"
	"time"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/crowdfundtest"
	"github.com/iov-one/crowdfund/errors"
	"github.com/stretchr/testify/assert"
)

func TestPhaseGuards(t *testing.T) {
	owner := crowdfundtest.NewCondition().Address()
	other := crowdfundtest.NewCondition().Address()
	created := crowdfund.UnixTime(1000)

	camp := func(raised int64, withdrawn bool) *Campaign {
		c, err := NewCampaign(owner, eth(10), created, 1)
		if err != nil {
			t.Fatalf("cannot create campaign: %s", err)
		}
		c.TotalRaised = eth(raised)
		c.FundsWithdrawn = withdrawn
		return c
	}
	open := created.Add(time.Hour)
	closed := created.Add(24 * time.Hour)

	cases := map[string]struct {
		c             *Campaign
		now           crowdfund.UnixTime
		wantPhase     Phase
		contributeErr *errors.Error
		ownerErr      *errors.Error
		strangerErr   *errors.Error
		refundErr     *errors.Error
	}{
		"open": {
			c:           camp(3, false),
			now:         open,
			wantPhase:   PhaseOpen,
			ownerErr:    ErrTooEarly,
			strangerErr: ErrNotBeneficiary,
			refundErr:   ErrTooEarly,
		},
		"open with goal met": {
			c:           camp(12, false),
			now:         open,
			wantPhase:   PhaseOpen,
			ownerErr:    ErrTooEarly,
			strangerErr: ErrNotBeneficiary,
			refundErr:   ErrTooEarly,
		},
		"succeeded": {
			c:             camp(10, false),
			now:           closed,
			wantPhase:     PhaseSucceeded,
			contributeErr: ErrCampaignClosed,
			strangerErr:   ErrNotBeneficiary,
			refundErr:     ErrGoalWasReached,
		},
		"settled": {
			c:             camp(10, true),
			now:           closed,
			wantPhase:     PhaseSettled,
			contributeErr: ErrCampaignClosed,
			ownerErr:      ErrAlreadyWithdrawn,
			strangerErr:   ErrNotBeneficiary,
			refundErr:     ErrGoalWasReached,
		},
		"failed": {
			c:             camp(9, false),
			now:           closed,
			wantPhase:     PhaseFailed,
			contributeErr: ErrCampaignClosed,
			ownerErr:      ErrGoalNotMet,
			strangerErr:   ErrNotBeneficiary,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			assert.Equal(t, tc.wantPhase, PhaseOf(tc.c, tc.now))
			assertIs(t, tc.contributeErr, canContribute(tc.c, tc.now, eth(1)))
			assertIs(t, tc.ownerErr, canWithdraw(tc.c, tc.now, owner))
			assertIs(t, tc.strangerErr, canWithdraw(tc.c, tc.now, other))
			assertIs(t, tc.refundErr, canRefund(tc.c, tc.now, eth(1)))
		})
	}
}

func TestRefundNeedsBalance(t *testing.T) {
	c, err := NewCampaign(crowdfundtest.NewCondition().Address(), eth(10), 1000, 1)
	assert.NoError(t, err)
	closed := crowdfund.UnixTime(1000).Add(24 * time.Hour)
	assertIs(t, ErrNothingToRefund, canRefund(c, closed, eth(0)))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "open", PhaseOpen.String())
	assert.Equal(t, "settled", PhaseSettled.String())
	assert.Equal(t, "unknown", Phase(42).String())
}

func assertIs(t *testing.T, want *errors.Error, got error) {
	t.Helper()
	if want == nil {
		assert.NoError(t, got)
		return
	}
	assert.True(t, want.Is(got), "want %q, got %+v", want, got)
}
