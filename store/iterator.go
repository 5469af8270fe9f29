package store

import (
	"bytes"

	"github.com/google/btree"
	"github.com/iov-one/crowdfund/errors"
)

// collectItems returns the items of bt within [start, end) in ascending
// order. A nil bound is open.
func collectItems(bt *btree.BTree, start, end []byte) []*cacheItem {
	var items []*cacheItem
	collect := func(i btree.Item) bool {
		items = append(items, i.(*cacheItem))
		return true
	}
	from, to := &cacheItem{key: start}, &cacheItem{key: end}
	switch {
	case start == nil && end == nil:
		bt.Ascend(collect)
	case start == nil:
		bt.AscendLessThan(to, collect)
	case end == nil:
		bt.AscendGreaterOrEqual(from, collect)
	default:
		bt.AscendRange(from, to, collect)
	}
	return items
}

// itemIter merges cached items with the parent iterator. Both must be
// sorted in the same direction. A cached item shadows the parent element
// with the same key, and a deleted one hides it.
type itemIter struct {
	items   []*cacheItem
	reverse bool

	parent     Iterator
	parentKey  []byte
	parentVal  []byte
	hasParent  bool // parentKey is loaded and not returned yet
	parentDone bool
}

var _ Iterator = (*itemIter)(nil)

func newItemIter(items []*cacheItem, parent Iterator, reverse bool) *itemIter {
	return &itemIter{items: items, reverse: reverse, parent: parent}
}

// Next returns the next visible element or ErrIteratorDone.
func (i *itemIter) Next() (key, value []byte, err error) {
	for {
		if err := i.fillParent(); err != nil {
			return nil, nil, err
		}
		if len(i.items) == 0 {
			if !i.hasParent {
				return nil, nil, errors.ErrIteratorDone
			}
			return i.takeParent()
		}

		item := i.items[0]
		if i.hasParent {
			order := bytes.Compare(item.key, i.parentKey)
			if i.reverse {
				order = -order
			}
			if order > 0 {
				return i.takeParent()
			}
			if order == 0 {
				i.hasParent = false
			}
		}
		i.items = i.items[1:]
		if !item.deleted {
			return item.key, item.value, nil
		}
	}
}

func (i *itemIter) takeParent() ([]byte, []byte, error) {
	i.hasParent = false
	return i.parentKey, i.parentVal, nil
}

func (i *itemIter) fillParent() error {
	if i.hasParent || i.parentDone {
		return nil
	}
	key, value, err := i.parent.Next()
	switch {
	case errors.ErrIteratorDone.Is(err):
		i.parentDone = true
		return nil
	case err != nil:
		return err
	}
	i.parentKey, i.parentVal, i.hasParent = key, value, true
	return nil
}

// Release releases the parent iterator.
func (i *itemIter) Release() {
	i.parent.Release()
	i.items = nil
}
