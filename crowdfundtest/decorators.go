package crowdfundtest

import "github.com/iov-one/crowdfund"

// Decorator counts its calls and passes the transaction on to the next
// handler. CheckErr and DeliverErr, when set, are returned instead.
type Decorator struct {
	checkCall   int
	deliverCall int

	CheckErr   error
	DeliverErr error
}

var _ crowdfund.Decorator = (*Decorator)(nil)

func (d *Decorator) Check(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx, next crowdfund.Checker) (*crowdfund.CheckResult, error) {
	d.checkCall++
	if d.CheckErr != nil {
		return nil, d.CheckErr
	}
	return next.Check(ctx, db, tx)
}

func (d *Decorator) Deliver(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx, next crowdfund.Deliverer) (*crowdfund.DeliverResult, error) {
	d.deliverCall++
	if d.DeliverErr != nil {
		return nil, d.DeliverErr
	}
	return next.Deliver(ctx, db, tx)
}

func (d *Decorator) CheckCallCount() int   { return d.checkCall }
func (d *Decorator) DeliverCallCount() int { return d.deliverCall }
func (d *Decorator) CallCount() int        { return d.checkCall + d.deliverCall }

// Decorate wraps h with d.
func Decorate(h crowdfund.Handler, d crowdfund.Decorator) crowdfund.Handler {
	return decorated{next: h, d: d}
}

type decorated struct {
	next crowdfund.Handler
	d    crowdfund.Decorator
}

func (s decorated) Check(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.CheckResult, error) {
	return s.d.Check(ctx, db, tx, s.next)
}

func (s decorated) Deliver(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.DeliverResult, error) {
	return s.d.Deliver(ctx, db, tx, s.next)
}
