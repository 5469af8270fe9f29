// Package iavl persists the application state in a versioned iavl tree on
// top of goleveldb. Every Commit produces a new version and its merkle root.
package iavl

import (
	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/store"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

const (
	// DefaultCacheSize is the number of tree nodes kept in memory.
	DefaultCacheSize = 10000
	// DefaultHistory is how many versions are kept before pruning.
	DefaultHistory = 20
)

// CommitStore is the root store of a node. Blocks write through CacheWrap,
// Commit turns the working tree into a new version.
type CommitStore struct {
	db      dbm.DB
	tree    *iavl.MutableTree
	history int64
}

var _ store.CommitKVStore = CommitStore{}

// OpenCommitStore opens or creates the leveldb database name in dir.
func OpenCommitStore(dir, name string) (CommitStore, error) {
	db, err := dbm.NewGoLevelDB(name, dir)
	if err != nil {
		return CommitStore{}, errors.Wrapf(errors.ErrDatabase, "open %s in %s: %s", name, dir, err)
	}
	return newCommitStore(db), nil
}

// NewCommitStore is OpenCommitStore for callers that cannot recover from a
// failure to open the database.
func NewCommitStore(dir, name string) CommitStore {
	s, err := OpenCommitStore(dir, name)
	if err != nil {
		panic(err)
	}
	return s
}

// NewMemCommitStore returns a store that is lost on exit, for tests and
// throw away nodes.
func NewMemCommitStore() CommitStore {
	return newCommitStore(dbm.NewMemDB())
}

func newCommitStore(db dbm.DB) CommitStore {
	return CommitStore{
		db:      db,
		tree:    iavl.NewMutableTree(db, DefaultCacheSize),
		history: DefaultHistory,
	}
}

// WithHistory returns a store keeping n versions. Zero keeps all of them.
func (s CommitStore) WithHistory(n int64) CommitStore {
	s.history = n
	return s
}

// Close releases the database. The store is unusable afterwards.
func (s CommitStore) Close() {
	s.db.Close()
}

// Get reads the last committed version, ignoring uncommitted writes.
func (s CommitStore) Get(key []byte) ([]byte, error) {
	_, val := s.tree.GetVersioned(key, s.tree.Version())
	return val, nil
}

// Commit saves the working tree as a new version and prunes the version
// that fell out of the history window.
func (s CommitStore) Commit() (store.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if old := version - s.history; s.history > 0 && old > 0 {
		if err := s.tree.DeleteVersion(old); err != nil {
			return store.CommitID{}, errors.Wrapf(errors.ErrDatabase, "prune version %d: %s", old, err)
		}
	}
	return store.CommitID{Version: version, Hash: hash}, nil
}

// LoadLatestVersion loads the newest complete version from disk. A crash
// during Commit leaves the previous version in place.
func (s CommitStore) LoadLatestVersion() error {
	if _, err := s.tree.Load(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

func (s CommitStore) LatestVersion() (store.CommitID, error) {
	return store.CommitID{Version: s.tree.Version(), Hash: s.tree.Hash()}, nil
}

// Adapter exposes the working tree. Writes cannot be rolled back other
// than by reloading the last version, so callers should go through
// CacheWrap.
func (s CommitStore) Adapter() store.CacheableKVStore {
	return store.BTreeCacheable{KVStore: treeStore{s.tree}}
}

func (s CommitStore) CacheWrap() store.KVCacheWrap {
	return s.Adapter().CacheWrap()
}

// treeStore is the KVStore view of the working tree.
type treeStore struct {
	tree *iavl.MutableTree
}

var _ store.KVStore = treeStore{}

func (t treeStore) Get(key []byte) ([]byte, error) {
	_, val := t.tree.Get(key)
	return val, nil
}

func (t treeStore) Has(key []byte) (bool, error) {
	return t.tree.Has(key), nil
}

func (t treeStore) Set(key, value []byte) error {
	t.tree.Set(key, value)
	return nil
}

func (t treeStore) Delete(key []byte) error {
	t.tree.Remove(key)
	return nil
}

func (t treeStore) NewBatch() store.Batch {
	return store.NewNonAtomicBatch(t)
}

func (t treeStore) Iterator(start, end []byte) (store.Iterator, error) {
	return t.rangeOf(start, end, true), nil
}

func (t treeStore) ReverseIterator(start, end []byte) (store.Iterator, error) {
	return t.rangeOf(start, end, false), nil
}

// rangeOf loads the whole range up front. The tree cannot be modified while
// IterateRange runs.
func (t treeStore) rangeOf(start, end []byte, ascending bool) store.Iterator {
	var models []store.Model
	t.tree.IterateRange(start, end, ascending, func(key, value []byte) bool {
		models = append(models, store.Pair(key, value))
		return false
	})
	return store.NewSliceIterator(models)
}
