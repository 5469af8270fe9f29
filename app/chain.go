package app

import (
	"reflect"

	"github.com/iov-one/crowdfund"
)

// Decorators is an ordered stack of decorators waiting for the Handler
// they wrap. The first decorator runs first.
//
//   app.ChainDecorators(
//     utils.NewLogging(),
//     utils.NewRecovery(),
//     sigs.NewDecorator(),
//     utils.NewSavepoint().OnDeliver(),
//   ).WithHandler(router)
type Decorators struct {
	chain []crowdfund.Decorator
}

// ChainDecorators starts a stack. Nil decorators, including typed nil
// pointers, are skipped so optional steps can be passed unconditionally.
func ChainDecorators(ds ...crowdfund.Decorator) Decorators {
	return Decorators{}.Chain(ds...)
}

// Chain returns a new stack with ds appended.
func (d Decorators) Chain(ds ...crowdfund.Decorator) Decorators {
	chain := make([]crowdfund.Decorator, 0, len(d.chain)+len(ds))
	chain = append(chain, d.chain...)
	for _, dec := range ds {
		if !isNilDecorator(dec) {
			chain = append(chain, dec)
		}
	}
	return Decorators{chain: chain}
}

func isNilDecorator(d crowdfund.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler closes the stack with h.
func (d Decorators) WithHandler(h crowdfund.Handler) crowdfund.Handler {
	for i := len(d.chain) - 1; i >= 0; i-- {
		h = link{dec: d.chain[i], next: h}
	}
	return h
}

// link runs one decorator around the rest of the stack.
type link struct {
	dec  crowdfund.Decorator
	next crowdfund.Handler
}

var _ crowdfund.Handler = link{}

func (l link) Check(ctx crowdfund.Context, store crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.CheckResult, error) {
	return l.dec.Check(ctx, store, tx, l.next)
}

func (l link) Deliver(ctx crowdfund.Context, store crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.DeliverResult, error) {
	return l.dec.Deliver(ctx, store, tx, l.next)
}
