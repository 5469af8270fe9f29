package cash

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/codec"
	"github.com/iov-one/crowdfund/coin"
	"github.com/iov-one/crowdfund/errors"
)

func init() {
	codec.RegisterMsg(&SendMsg{})
}

// Ensure we implement the Msg interface
var _ crowdfund.Msg = (*SendMsg)(nil)

const (
	sendTxCost int64 = 100

	maxMemoSize int = 128
)

// SendMsg moves coins from Source to Destination. It must be signed by the
// Source account owner.
type SendMsg struct {
	Metadata    *crowdfund.Metadata `json:"metadata"`
	Source      crowdfund.Address   `json:"source"`
	Destination crowdfund.Address   `json:"destination"`
	Amount      *coin.Coin          `json:"amount"`
	Memo        string              `json:"memo,omitempty"`
}

// Path returns the routing path for this message
func (SendMsg) Path() string {
	return "cash/send"
}

// Validate makes sure that this is sensible
func (s *SendMsg) Validate() error {
	if err := s.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if coin.IsEmpty(s.Amount) || !s.Amount.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "non-positive SendMsg: %#v", s.Amount)
	}
	if err := s.Amount.Validate(); err != nil {
		return errors.Wrap(err, "amount")
	}
	if err := s.Source.Validate(); err != nil {
		return errors.Wrap(err, "source")
	}
	if err := s.Destination.Validate(); err != nil {
		return errors.Wrap(err, "destination")
	}
	if len(s.Memo) > maxMemoSize {
		return errors.Wrap(errors.ErrState, "memo too long")
	}
	return nil
}
