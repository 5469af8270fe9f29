package app

import (
	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
)

// CommitStore wraps the persistent store with the two caches of a running
// node. DeliverTx writes go to the deliver cache and reach disk on Commit.
// CheckTx writes go to the check cache and are always thrown away.
type CommitStore struct {
	committed crowdfund.CommitKVStore
	deliver   crowdfund.KVCacheWrap
	check     crowdfund.KVCacheWrap
}

// NewCommitStore loads the latest version of store. It panics if the state
// on disk cannot be loaded.
func NewCommitStore(store crowdfund.CommitKVStore) *CommitStore {
	if err := store.LoadLatestVersion(); err != nil {
		panic(err)
	}
	cs := &CommitStore{committed: store}
	cs.resetCaches()
	return cs
}

func (cs *CommitStore) resetCaches() {
	cs.deliver = cs.committed.CacheWrap()
	cs.check = cs.committed.CacheWrap()
}

// CommitInfo returns the height and hash of the last commit.
func (cs *CommitStore) CommitInfo() (crowdfund.CommitID, error) {
	return cs.committed.LatestVersion()
}

// Commit writes the deliver cache to disk and starts a new block with fresh
// caches.
func (cs *CommitStore) Commit() (crowdfund.CommitID, error) {
	if err := cs.deliver.Write(); err != nil {
		return crowdfund.CommitID{}, errors.Wrap(err, "flush deliver cache")
	}
	cs.check.Discard()

	id, err := cs.committed.Commit()
	if err != nil {
		return id, err
	}
	cs.resetCaches()
	return id, nil
}

// CheckStore returns the cache used by CheckTx.
func (cs *CommitStore) CheckStore() crowdfund.CacheableKVStore {
	return cs.check
}

// DeliverStore returns the cache used by DeliverTx.
func (cs *CommitStore) DeliverStore() crowdfund.CacheableKVStore {
	return cs.deliver
}

// ReadStore returns a view of the last committed state.
func (cs *CommitStore) ReadStore() crowdfund.ReadOnlyKVStore {
	return cs.committed.CacheWrap()
}

// The chain id is kept in the state so restarts do not need the genesis.
const chainIDKey = "_cf:chainID"

func mustLoadChainID(kv crowdfund.ReadOnlyKVStore) string {
	raw, err := kv.Get([]byte(chainIDKey))
	if err != nil {
		panic(err)
	}
	return string(raw)
}

// saveChainID stores the chain id. It can be written only once.
func saveChainID(kv crowdfund.KVStore, chainID string) error {
	if !crowdfund.IsValidChainID(chainID) {
		return errors.Wrapf(errors.ErrInput, "chain id: %v", chainID)
	}
	switch exists, err := kv.Has([]byte(chainIDKey)); {
	case err != nil:
		return errors.Wrap(err, "load chain id")
	case exists:
		return errors.Wrap(errors.ErrUnauthorized, "chain id is set at genesis only")
	}
	return errors.Wrap(kv.Set([]byte(chainIDKey), []byte(chainID)), "save chain id")
}
