package campaign

import (
	"github.com/iov-one/crowdfund/errors"
)

// x/campaign reserves 1100 ~ 1199.
var (
	ErrInvalidAmount       = errors.Register(1100, "invalid contribution amount")
	ErrCampaignClosed      = errors.Register(1101, "campaign closed")
	ErrNotBeneficiary      = errors.Register(1102, "not the beneficiary")
	ErrTooEarly            = errors.Register(1103, "funding period not yet over")
	ErrGoalNotMet          = errors.Register(1104, "funding goal not met")
	ErrGoalWasReached      = errors.Register(1105, "goal was reached, no refunds")
	ErrAlreadyWithdrawn    = errors.Register(1106, "funds already withdrawn")
	ErrNothingToRefund     = errors.Register(1107, "nothing to refund")
	ErrConstructionInvalid = errors.Register(1108, "invalid campaign parameters")
)
