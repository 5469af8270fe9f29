package sigs

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/orm"
	"github.com/iov-one/crowdfund/x"
)

// RegisterRoutes registers the BumpSequenceMsg handler.
func RegisterRoutes(r crowdfund.Registry, auth x.Authenticator) {
	r.Handle(BumpSequenceMsg{}.Path(), bumpSequenceHandler{auth: auth, users: NewBucket()})
}

// bumpSequenceHandler lets a signer skip sequence values, invalidating any
// transaction already signed with them.
type bumpSequenceHandler struct {
	auth  x.Authenticator
	users Bucket
}

func (h bumpSequenceHandler) Check(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.CheckResult, error) {
	if _, _, err := h.load(ctx, db, tx); err != nil {
		return nil, err
	}
	return &crowdfund.CheckResult{}, nil
}

func (h bumpSequenceHandler) Deliver(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*crowdfund.DeliverResult, error) {
	msg, obj, err := h.load(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	user := AsUser(obj)
	if user.Sequence > maxSequenceValue-int64(msg.Increment) {
		return nil, errors.Wrap(errors.ErrOverflow, "sequence")
	}
	user.Sequence += int64(msg.Increment)
	if err := h.users.Save(db, obj); err != nil {
		return nil, errors.Wrap(err, "save user")
	}
	return &crowdfund.DeliverResult{}, nil
}

// load returns the message and the record of the main signer. The record
// always exists, the Decorator creates it while verifying the signature.
func (h bumpSequenceHandler) load(ctx crowdfund.Context, db crowdfund.KVStore, tx crowdfund.Tx) (*BumpSequenceMsg, orm.Object, error) {
	var msg BumpSequenceMsg
	if err := crowdfund.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "missing signature")
	}
	obj, err := h.users.Get(db, signer.Address())
	if err != nil {
		return nil, nil, errors.Wrap(err, "load user")
	}
	if AsUser(obj) == nil {
		return nil, nil, errors.Wrap(errors.ErrNotFound, "user")
	}
	return &msg, obj, nil
}
