package utils

import (
	"time"

	"github.com/iov-one/crowdfund"
)

// Logging logs the outcome and duration of every transaction. Failures are
// logged as errors. Successful checks go to debug and successful delivers
// to info.
type Logging struct{}

var _ crowdfund.Decorator = Logging{}

// NewLogging returns a Logging decorator.
func NewLogging() Logging {
	return Logging{}
}

// Check logs the CheckTx outcome.
func (Logging) Check(ctx crowdfund.Context, store crowdfund.KVStore, tx crowdfund.Tx, next crowdfund.Checker) (*crowdfund.CheckResult, error) {
	start := time.Now()
	res, err := next.Check(ctx, store, tx)
	var msg string
	if res != nil {
		msg = res.Log
	}
	logResult(ctx, time.Since(start), msg, err, false)
	return res, err
}

// Deliver logs the DeliverTx outcome.
func (Logging) Deliver(ctx crowdfund.Context, store crowdfund.KVStore, tx crowdfund.Tx, next crowdfund.Deliverer) (*crowdfund.DeliverResult, error) {
	start := time.Now()
	res, err := next.Deliver(ctx, store, tx)
	var msg string
	if res != nil {
		msg = res.Log
	}
	logResult(ctx, time.Since(start), msg, err, true)
	return res, err
}

// logResult emits an entry even for an empty message, the keys carry the
// useful part.
func logResult(ctx crowdfund.Context, took time.Duration, msg string, err error, deliver bool) {
	logger := crowdfund.GetLogger(ctx).With("duration", took/time.Microsecond)
	switch {
	case err != nil:
		logger.With("err", err).Error(msg)
	case deliver:
		logger.Info(msg)
	default:
		logger.Debug(msg)
	}
}
