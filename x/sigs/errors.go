package sigs

import (
	"github.com/iov-one/crowdfund/errors"
)

// x/sigs reserves 120 ~ 129.
var (
	// ErrInvalidSequence is returned when a signature carries a sequence
	// other than the one expected for the signer.
	ErrInvalidSequence = errors.Register(120, "invalid sequence number")
)
