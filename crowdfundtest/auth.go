package crowdfundtest

import (
	"context"

	"github.com/iov-one/crowdfund"
)

// Auth authenticates a fixed set of conditions, whatever the context.
// Signer and Signers are merged, set either or both.
type Auth struct {
	Signer  crowdfund.Condition
	Signers []crowdfund.Condition
}

func (a *Auth) GetConditions(crowdfund.Context) []crowdfund.Condition {
	if a.Signer == nil {
		return a.Signers
	}
	conds := make([]crowdfund.Condition, 0, len(a.Signers)+1)
	conds = append(conds, a.Signers...)
	return append(conds, a.Signer)
}

func (a *Auth) HasAddress(ctx crowdfund.Context, addr crowdfund.Address) bool {
	return hasAddress(a.GetConditions(ctx), addr)
}

// CtxAuth authenticates the conditions stored in the context under Key.
// Two instances with different keys never see each other's conditions.
type CtxAuth struct {
	Key string
}

type authKey string

// SetConditions returns a context authenticating conds.
func (a *CtxAuth) SetConditions(ctx crowdfund.Context, conds ...crowdfund.Condition) crowdfund.Context {
	return context.WithValue(ctx, authKey(a.Key), conds)
}

func (a *CtxAuth) GetConditions(ctx crowdfund.Context) []crowdfund.Condition {
	conds, _ := ctx.Value(authKey(a.Key)).([]crowdfund.Condition)
	return conds
}

func (a *CtxAuth) HasAddress(ctx crowdfund.Context, addr crowdfund.Address) bool {
	return hasAddress(a.GetConditions(ctx), addr)
}

func hasAddress(conds []crowdfund.Condition, addr crowdfund.Address) bool {
	for _, c := range conds {
		if c.Address().Equals(addr) {
			return true
		}
	}
	return false
}
