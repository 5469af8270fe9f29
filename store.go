package crowdfund

// ReadOnlyKVStore reads raw state. Handlers receive the full KVStore,
// queries only this part.
type ReadOnlyKVStore interface {
	// Get returns nil if key is not set.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)

	// Iterator returns the keys in [start, end) in ascending order. A nil
	// bound is open. No writes may happen in the range while the iterator
	// is in use.
	Iterator(start, end []byte) (Iterator, error)
	// ReverseIterator is like Iterator in descending order.
	ReverseIterator(start, end []byte) (Iterator, error)
}

// SetDeleter is the write half shared by KVStore and Batch. Keys and
// values passed in must not be modified afterwards.
type SetDeleter interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// KVStore is the state a transaction works on.
type KVStore interface {
	ReadOnlyKVStore
	SetDeleter
	NewBatch() Batch
}

// Batch groups writes that reach the store together on Write.
type Batch interface {
	SetDeleter
	Write() error
}

// Iterator walks a key range. Next returns errors.ErrIteratorDone after
// the last element, any other error is a failure.
//
//   it, err := db.Iterator(start, end)
//   ...
//   defer it.Release()
//   for {
//     key, value, err := it.Next()
//     if errors.ErrIteratorDone.Is(err) {
//       break
//     }
//     ...
//   }
type Iterator interface {
	// Next returns the next element. The returned slices must not be
	// modified.
	Next() (key, value []byte, err error)
	Release()
}

// CacheableKVStore can stack a scratch pad of writes on top of itself.
// Every transaction runs in one, so a failed transaction leaves no trace.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap holds writes that are visible to its own reads but not to
// the parent until Write. Discard drops them. A cache can be wrapped
// again to nest savepoints.
type KVCacheWrap interface {
	CacheableKVStore
	Write() error
	Discard()
}

// CommitKVStore is the persistent root store. Blocks change it through a
// CacheWrap, Commit then makes a new version durable.
type CommitKVStore interface {
	// Get reads the last committed state.
	Get(key []byte) ([]byte, error)
	CacheWrap() KVCacheWrap
	Commit() (CommitID, error)

	// LoadLatestVersion loads the last complete version. After a crash
	// during Commit it may be an older one.
	LoadLatestVersion() error
	LatestVersion() (CommitID, error)
}

// CommitID names a committed version by its height and merkle root.
type CommitID struct {
	Version int64
	Hash    []byte
}
