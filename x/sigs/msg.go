package sigs

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/codec"
	"github.com/iov-one/crowdfund/errors"
)

func init() {
	codec.RegisterMsg(&BumpSequenceMsg{})
}

var _ crowdfund.Msg = (*BumpSequenceMsg)(nil)

// BumpSequenceMsg increments the sequence of the main signer by Increment.
// It lets a key holder invalidate any signed but not yet submitted
// transactions.
type BumpSequenceMsg struct {
	Metadata  *crowdfund.Metadata `json:"metadata"`
	Increment uint32              `json:"increment"`
}

func (BumpSequenceMsg) Path() string {
	return "sigs/bump_sequence"
}

func (msg *BumpSequenceMsg) Validate() error {
	if err := msg.Metadata.Validate(); err != nil {
		return errors.Wrap(err, "metadata")
	}
	if msg.Increment < minSequenceIncrement {
		return errors.Wrapf(errors.ErrMsg, "increment must be at least %d", minSequenceIncrement)
	}
	if msg.Increment > maxSequenceIncrement {
		return errors.Wrapf(errors.ErrMsg, "increment must not be greater than %d", maxSequenceIncrement)
	}
	return nil
}

const (
	minSequenceIncrement = 1
	maxSequenceIncrement = 1000
)
