package x

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
)

// Authenticator tells which conditions a transaction satisfies. Handlers
// receive one in their constructor, so they do not depend on how the
// conditions were proven. Signatures are checked by x/sigs, a campaign
// escrow is unlocked by the campaign handlers.
type Authenticator interface {
	// GetConditions returns all satisfied conditions.
	GetConditions(crowdfund.Context) []crowdfund.Condition
	// HasAddress returns true if a satisfied condition controls addr.
	HasAddress(crowdfund.Context, crowdfund.Address) bool
}

// MultiAuth satisfies what any of its authenticators satisfies.
type MultiAuth []Authenticator

var _ Authenticator = MultiAuth{}

// ChainAuth combines authenticators.
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth(impls)
}

// GetConditions returns the conditions of all authenticators, in order.
func (m MultiAuth) GetConditions(ctx crowdfund.Context) []crowdfund.Condition {
	var res []crowdfund.Condition
	for _, a := range m {
		res = append(res, a.GetConditions(ctx)...)
	}
	return res
}

// HasAddress returns true if any authenticator controls addr.
func (m MultiAuth) HasAddress(ctx crowdfund.Context, addr crowdfund.Address) bool {
	for _, a := range m {
		if a.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// GetAddresses returns the addresses of all satisfied conditions.
func GetAddresses(ctx crowdfund.Context, auth Authenticator) []crowdfund.Address {
	conds := auth.GetConditions(ctx)
	addrs := make([]crowdfund.Address, 0, len(conds))
	for _, c := range conds {
		addrs = append(addrs, c.Address())
	}
	return addrs
}

// MainSigner returns the first satisfied condition, nil if there is none.
func MainSigner(ctx crowdfund.Context, auth Authenticator) crowdfund.Condition {
	if conds := auth.GetConditions(ctx); len(conds) > 0 {
		return conds[0]
	}
	return nil
}

// AnySigner returns the address of the main signer. A transaction without
// any signer fails with ErrUnauthorized.
func AnySigner(ctx crowdfund.Context, auth Authenticator) (crowdfund.Address, error) {
	if signer := MainSigner(ctx, auth); signer != nil {
		return signer.Address(), nil
	}
	return nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
}

// HasAllConditions returns true if every required condition is satisfied.
func HasAllConditions(ctx crowdfund.Context, auth Authenticator, required []crowdfund.Condition) bool {
	have := auth.GetConditions(ctx)
	for _, r := range required {
		if !containsCondition(have, r) {
			return false
		}
	}
	return true
}

func containsCondition(set []crowdfund.Condition, c crowdfund.Condition) bool {
	for _, s := range set {
		if s.Equals(c) {
			return true
		}
	}
	return false
}
