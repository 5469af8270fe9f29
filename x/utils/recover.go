package utils

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
)

// Recovery turns a panic in the rest of the stack into an ErrPanic, so a
// single broken transaction cannot halt the node.
type Recovery struct{}

var _ crowdfund.Decorator = Recovery{}

// NewRecovery returns a Recovery decorator.
func NewRecovery() Recovery {
	return Recovery{}
}

// Check recovers from panics in CheckTx.
func (Recovery) Check(ctx crowdfund.Context, store crowdfund.KVStore, tx crowdfund.Tx, next crowdfund.Checker) (_ *crowdfund.CheckResult, err error) {
	defer errors.Recover(&err)
	return next.Check(ctx, store, tx)
}

// Deliver recovers from panics in DeliverTx.
func (Recovery) Deliver(ctx crowdfund.Context, store crowdfund.KVStore, tx crowdfund.Tx, next crowdfund.Deliverer) (_ *crowdfund.DeliverResult, err error) {
	defer errors.Recover(&err)
	return next.Deliver(ctx, store, tx)
}
