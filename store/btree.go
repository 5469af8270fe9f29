package store

import (
	"bytes"

	"github.com/google/btree"
)

// DefaultFreeListSize is the number of btree nodes kept for reuse.
const DefaultFreeListSize = btree.DefaultFreeListSize

// btreeDegree keeps nodes small, caches of a single transaction hold few
// keys.
const btreeDegree = 2

// BTreeCacheable gives any KVStore btree based cache wraps.
type BTreeCacheable struct {
	KVStore
}

var _ CacheableKVStore = BTreeCacheable{}

// CacheWrap returns a cache that is written to the store on Write.
func (b BTreeCacheable) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b.KVStore, b.NewBatch(), nil)
}

// MemStore returns an empty in-memory store without persistence.
func MemStore() CacheableKVStore {
	var empty EmptyKVStore
	return NewBTreeCacheWrap(empty, empty.NewBatch(), nil)
}

// ShowOpser lists the operations recorded by a store.
type ShowOpser interface {
	ShowOps() []Op
}

// LogableStore returns an in-memory store together with the log of all
// writes done to it.
func LogableStore() (CacheableKVStore, ShowOpser) {
	var empty EmptyKVStore
	batch := NewNonAtomicBatch(empty)
	return NewBTreeCacheWrap(empty, batch, nil), batch
}

// BTreeCacheWrap keeps pending writes in a btree in front of a read only
// parent. Writes are mirrored in a batch that reaches the parent on Write.
// Reads see the pending writes first.
type BTreeCacheWrap struct {
	tree   *btree.BTree
	free   *btree.FreeList
	parent ReadOnlyKVStore
	batch  Batch
}

var _ KVCacheWrap = BTreeCacheWrap{}

// NewBTreeCacheWrap returns a cache over parent. All writes go through
// batch. A nil free list allocates a new one, sharing it between nested
// caches saves memory.
func NewBTreeCacheWrap(parent ReadOnlyKVStore, batch Batch, free *btree.FreeList) BTreeCacheWrap {
	if free == nil {
		free = btree.NewFreeList(DefaultFreeListSize)
	}
	return BTreeCacheWrap{
		tree:   btree.NewWithFreeList(btreeDegree, free),
		free:   free,
		parent: parent,
		batch:  batch,
	}
}

// CacheWrap returns a nested cache written to this one.
func (b BTreeCacheWrap) CacheWrap() KVCacheWrap {
	return NewBTreeCacheWrap(b, b.NewBatch(), b.free)
}

// NewBatch returns a batch writing to this cache.
func (b BTreeCacheWrap) NewBatch() Batch {
	return NewNonAtomicBatch(b)
}

// Write flushes all pending writes to the parent and empties the cache.
func (b BTreeCacheWrap) Write() error {
	err := b.batch.Write()
	b.Discard()
	return err
}

// Discard drops all pending writes. Nodes go back to the free list.
func (b BTreeCacheWrap) Discard() {
	for b.tree.DeleteMin() != nil {
	}
}

// Set records a pending write.
func (b BTreeCacheWrap) Set(key, value []byte) error {
	b.tree.ReplaceOrInsert(&cacheItem{key: key, value: value})
	return b.batch.Set(key, value)
}

// Delete records a pending removal. It hides the key of the parent.
func (b BTreeCacheWrap) Delete(key []byte) error {
	b.tree.ReplaceOrInsert(&cacheItem{key: key, deleted: true})
	return b.batch.Delete(key)
}

// Get returns the pending value of key, or the parent value if the key was
// not touched.
func (b BTreeCacheWrap) Get(key []byte) ([]byte, error) {
	if item := b.lookup(key); item != nil {
		return item.value, nil
	}
	return b.parent.Get(key)
}

// Has is like Get, without loading the value.
func (b BTreeCacheWrap) Has(key []byte) (bool, error) {
	if item := b.lookup(key); item != nil {
		return !item.deleted, nil
	}
	return b.parent.Has(key)
}

func (b BTreeCacheWrap) lookup(key []byte) *cacheItem {
	found := b.tree.Get(&cacheItem{key: key})
	if found == nil {
		return nil
	}
	return found.(*cacheItem)
}

// Iterator returns all keys in [start, end) in ascending order, merging the
// cache with the parent.
func (b BTreeCacheWrap) Iterator(start, end []byte) (Iterator, error) {
	parent, err := b.parent.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return newItemIter(collectItems(b.tree, start, end), parent, false), nil
}

// ReverseIterator is like Iterator in descending order.
func (b BTreeCacheWrap) ReverseIterator(start, end []byte) (Iterator, error) {
	parent, err := b.parent.ReverseIterator(start, end)
	if err != nil {
		return nil, err
	}
	items := collectItems(b.tree, start, end)
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return newItemIter(items, parent, true), nil
}

// cacheItem is a pending write. A deleted item never carries a value.
type cacheItem struct {
	key     []byte
	value   []byte
	deleted bool
}

var _ btree.Item = (*cacheItem)(nil)

func (c *cacheItem) Less(than btree.Item) bool {
	return bytes.Compare(c.key, than.(*cacheItem).key) < 0
}
