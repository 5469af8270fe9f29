package utils

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
)

// Savepoint runs the rest of the stack on a cache of the store. The cache
// is written only if the handler succeeds, so a failed transaction leaves
// no partial transfer or half updated campaign behind.
//
// A zero Savepoint does nothing, enable it with OnCheck and OnDeliver.
type Savepoint struct {
	onCheck   bool
	onDeliver bool
}

var _ crowdfund.Decorator = Savepoint{}

// NewSavepoint returns a savepoint enabled for no phase.
func NewSavepoint() Savepoint {
	return Savepoint{}
}

// OnCheck enables the savepoint for CheckTx.
func (s Savepoint) OnCheck() Savepoint {
	s.onCheck = true
	return s
}

// OnDeliver enables the savepoint for DeliverTx.
func (s Savepoint) OnDeliver() Savepoint {
	s.onDeliver = true
	return s
}

// Check runs next inside a savepoint if enabled for CheckTx.
func (s Savepoint) Check(ctx crowdfund.Context, store crowdfund.KVStore, tx crowdfund.Tx, next crowdfund.Checker) (*crowdfund.CheckResult, error) {
	var res *crowdfund.CheckResult
	err := atomically(s.onCheck, store, func(db crowdfund.KVStore) (err error) {
		res, err = next.Check(ctx, db, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Deliver runs next inside a savepoint if enabled for DeliverTx.
func (s Savepoint) Deliver(ctx crowdfund.Context, store crowdfund.KVStore, tx crowdfund.Tx, next crowdfund.Deliverer) (*crowdfund.DeliverResult, error) {
	var res *crowdfund.DeliverResult
	err := atomically(s.onDeliver, store, func(db crowdfund.KVStore) (err error) {
		res, err = next.Deliver(ctx, db, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// atomically calls fn with a cache of store and writes it back only if fn
// succeeds. A disabled savepoint or a store that cannot be cached is passed
// through.
func atomically(enabled bool, store crowdfund.KVStore, fn func(crowdfund.KVStore) error) error {
	cacheable, ok := store.(crowdfund.CacheableKVStore)
	if !enabled || !ok {
		return fn(store)
	}
	cache := cacheable.CacheWrap()
	if err := fn(cache); err != nil {
		cache.Discard()
		return err
	}
	return errors.Wrap(cache.Write(), "writing savepoint")
}
