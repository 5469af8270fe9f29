package sigs

import (
	"context"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/x"
)

type ctxKey struct{}

// withSigners is unexported, only the Decorator may declare signers.
func withSigners(ctx crowdfund.Context, signers []crowdfund.Condition) crowdfund.Context {
	return context.WithValue(ctx, ctxKey{}, signers)
}

// Authenticate reads the signers verified by the Decorator.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns the signers of the current transaction, possibly
// none.
func (Authenticate) GetConditions(ctx crowdfund.Context) []crowdfund.Condition {
	signers, _ := ctx.Value(ctxKey{}).([]crowdfund.Condition)
	return signers
}

// HasAddress returns true if addr belongs to one of the signers.
func (a Authenticate) HasAddress(ctx crowdfund.Context, addr crowdfund.Address) bool {
	for _, cond := range a.GetConditions(ctx) {
		if cond.Address().Equals(addr) {
			return true
		}
	}
	return false
}
