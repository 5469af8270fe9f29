/*
Package sigs verifies transaction signatures and keeps a sequence per public
key so that a signed transaction cannot be replayed.

The Decorator puts the conditions of all valid signers in the context, where
Authenticate reads them back for the handlers further down the stack.
*/
package sigs

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
)

// signatureVerifyCost is the gas charged in CheckTx for every signature.
const signatureVerifyCost = 500

// RegisterQuery exposes the signer records under "/auth".
func RegisterQuery(qr crowdfund.QueryRouter) {
	NewBucket().Register("auth", qr)
}

// Decorator rejects transactions with an invalid signature. Unless
// AllowMissingSigs is set, at least one signature is required.
type Decorator struct {
	allowMissingSigs bool
}

var _ crowdfund.Decorator = Decorator{}

func NewDecorator() Decorator {
	return Decorator{}
}

// AllowMissingSigs returns a copy that lets unsigned transactions through.
func (d Decorator) AllowMissingSigs() Decorator {
	d.allowMissingSigs = true
	return d
}

func (d Decorator) Check(ctx crowdfund.Context, store crowdfund.KVStore, tx crowdfund.Tx, next crowdfund.Checker) (*crowdfund.CheckResult, error) {
	ctx, n, err := d.authenticate(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	res, err := next.Check(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	res.GasAllocated += int64(n) * signatureVerifyCost
	return res, nil
}

func (d Decorator) Deliver(ctx crowdfund.Context, store crowdfund.KVStore, tx crowdfund.Tx, next crowdfund.Deliverer) (*crowdfund.DeliverResult, error) {
	ctx, _, err := d.authenticate(ctx, store, tx)
	if err != nil {
		return nil, err
	}
	return next.Deliver(ctx, store, tx)
}

// authenticate returns ctx extended with the signers and their count.
func (d Decorator) authenticate(ctx crowdfund.Context, store crowdfund.KVStore, tx crowdfund.Tx) (crowdfund.Context, int, error) {
	signed, ok := tx.(SignedTx)
	switch {
	case !ok && d.allowMissingSigs:
		return ctx, 0, nil
	case !ok:
		return nil, 0, errors.Wrap(errors.ErrUnauthorized, "transaction cannot carry signatures")
	}

	signers, err := VerifyTxSignatures(store, signed, crowdfund.GetChainID(ctx))
	if err != nil {
		return nil, 0, errors.Wrap(err, "signatures")
	}
	if len(signers) == 0 && !d.allowMissingSigs {
		return nil, 0, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	return withSigners(ctx, signers), len(signers), nil
}
