package campaign

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/codec"
	"github.com/iov-one/crowdfund/coin"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/orm"
)

func init() {
	codec.RegisterMsg(&CreateMsg{})
	codec.RegisterMsg(&ContributeMsg{})
	codec.RegisterMsg(&WithdrawMsg{})
	codec.RegisterMsg(&RefundMsg{})
}

const (
	pathCreate     = "campaign/create"
	pathContribute = "campaign/contribute"
	pathWithdraw   = "campaign/withdraw"
	pathRefund     = "campaign/refund"

	// maxDurationDays keeps the deadline within a sane range.
	maxDurationDays = 3650
)

var _ crowdfund.Msg = (*CreateMsg)(nil)

// CreateMsg opens a new campaign owned by the signer.
type CreateMsg struct {
	Metadata     *crowdfund.Metadata `json:"metadata"`
	FundingGoal  *coin.Coin          `json:"funding_goal"`
	DurationDays uint32              `json:"duration_days"`
}

func (CreateMsg) Path() string {
	return pathCreate
}

func (m *CreateMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if coin.IsEmpty(m.FundingGoal) || !m.FundingGoal.IsPositive() {
		return errors.Wrap(ErrConstructionInvalid, "funding goal must be positive")
	}
	if err := m.FundingGoal.Validate(); err != nil {
		return errors.Wrap(err, "funding goal")
	}
	if m.DurationDays == 0 || m.DurationDays > maxDurationDays {
		return errors.Wrapf(ErrConstructionInvalid, "duration must be between 1 and %d days", maxDurationDays)
	}
	return nil
}

var _ crowdfund.Msg = (*ContributeMsg)(nil)

// ContributeMsg moves Amount from the signer into the campaign escrow.
type ContributeMsg struct {
	Metadata   *crowdfund.Metadata `json:"metadata"`
	CampaignID []byte              `json:"campaign_id"`
	Amount     *coin.Coin          `json:"amount"`
}

func (ContributeMsg) Path() string {
	return pathContribute
}

func (m *ContributeMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if err := orm.ValidateSequence(m.CampaignID); err != nil {
		return errors.Wrap(err, "campaign id")
	}
	if coin.IsEmpty(m.Amount) {
		return errors.Wrap(ErrInvalidAmount, "amount required")
	}
	if err := m.Amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	return nil
}

var _ crowdfund.Msg = (*WithdrawMsg)(nil)

// WithdrawMsg releases the whole pool of a successful campaign to its owner.
type WithdrawMsg struct {
	Metadata   *crowdfund.Metadata `json:"metadata"`
	CampaignID []byte              `json:"campaign_id"`
}

func (WithdrawMsg) Path() string {
	return pathWithdraw
}

func (m *WithdrawMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	return errors.Wrap(orm.ValidateSequence(m.CampaignID), "campaign id")
}

var _ crowdfund.Msg = (*RefundMsg)(nil)

// RefundMsg returns the signer's contribution to a failed campaign.
type RefundMsg struct {
	Metadata   *crowdfund.Metadata `json:"metadata"`
	CampaignID []byte              `json:"campaign_id"`
}

func (RefundMsg) Path() string {
	return pathRefund
}

func (m *RefundMsg) Validate() error {
	if err := m.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	return errors.Wrap(orm.ValidateSequence(m.CampaignID), "campaign id")
}
