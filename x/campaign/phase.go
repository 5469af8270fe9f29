package campaign

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/coin"
	"github.com/iov-one/crowdfund/errors"
)

// Phase is the state of a campaign at a given time. It is derived from the
// campaign fields and the clock and is never stored.
type Phase int

const (
	// PhaseOpen accepts contributions.
	PhaseOpen Phase = iota
	// PhaseSucceeded is closed with the goal met and the funds not yet
	// withdrawn.
	PhaseSucceeded
	// PhaseSettled is closed with the funds withdrawn by the owner.
	PhaseSettled
	// PhaseFailed is closed with the goal missed. Contributors can
	// reclaim their funds.
	PhaseFailed
)

var phaseNames = map[Phase]string{
	PhaseOpen:      "open",
	PhaseSucceeded: "succeeded",
	PhaseSettled:   "settled",
	PhaseFailed:    "failed",
}

func (p Phase) String() string {
	if n, ok := phaseNames[p]; ok {
		return n
	}
	return "unknown"
}

// PhaseOf returns the phase of the campaign at the time now.
func PhaseOf(c *Campaign, now crowdfund.UnixTime) Phase {
	switch {
	case c.FundsWithdrawn:
		return PhaseSettled
	case now < c.Deadline:
		return PhaseOpen
	case c.GoalReached():
		return PhaseSucceeded
	default:
		return PhaseFailed
	}
}

// canContribute returns an error if amount cannot be added to the campaign
// at the time now.
func canContribute(c *Campaign, now crowdfund.UnixTime, amount coin.Coin) error {
	if PhaseOf(c, now) != PhaseOpen {
		return errors.Wrapf(ErrCampaignClosed, "deadline %s", c.Deadline)
	}
	if !amount.IsPositive() {
		return errors.Wrapf(ErrInvalidAmount, "non-positive amount %s", amount)
	}
	if !amount.SameType(c.FundingGoal) {
		return errors.Wrapf(ErrInvalidAmount, "campaign accepts %s only", c.FundingGoal.Ticker)
	}
	if err := amount.Validate(); err != nil {
		return errors.Wrap(ErrInvalidAmount, err.Error())
	}
	return nil
}

// canWithdraw returns an error if caller cannot withdraw the pool at the
// time now.
func canWithdraw(c *Campaign, now crowdfund.UnixTime, caller crowdfund.Address) error {
	if !c.Owner.Equals(caller) {
		return errors.Wrap(ErrNotBeneficiary, "only the owner can withdraw")
	}
	switch PhaseOf(c, now) {
	case PhaseOpen:
		return errors.Wrapf(ErrTooEarly, "deadline %s", c.Deadline)
	case PhaseFailed:
		return errors.Wrapf(ErrGoalNotMet, "raised %s of %s", c.TotalRaised, c.FundingGoal)
	case PhaseSettled:
		return ErrAlreadyWithdrawn
	}
	return nil
}

// canRefund returns an error if a contributor with given balance cannot be
// refunded at the time now.
func canRefund(c *Campaign, now crowdfund.UnixTime, balance coin.Coin) error {
	switch PhaseOf(c, now) {
	case PhaseOpen:
		return errors.Wrapf(ErrTooEarly, "deadline %s", c.Deadline)
	case PhaseSucceeded, PhaseSettled:
		return ErrGoalWasReached
	}
	if !balance.IsPositive() {
		return ErrNothingToRefund
	}
	return nil
}
