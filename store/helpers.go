package store

import (
	"github.com/iov-one/crowdfund/errors"
)

// SliceIterator iterates over models held in memory.
type SliceIterator struct {
	data []Model
}

var _ Iterator = (*SliceIterator)(nil)

// NewSliceIterator returns an iterator over data, in slice order.
func NewSliceIterator(data []Model) *SliceIterator {
	return &SliceIterator{data: data}
}

// Next returns the next model or ErrIteratorDone.
func (s *SliceIterator) Next() (key, value []byte, err error) {
	if len(s.data) == 0 {
		return nil, nil, errors.ErrIteratorDone
	}
	m := s.data[0]
	s.data = s.data[1:]
	return m.Key, m.Value, nil
}

// Release drops the remaining models.
func (s *SliceIterator) Release() {
	s.data = nil
}

// EmptyKVStore holds nothing and ignores writes. It is the bottom layer of
// in-memory stores.
type EmptyKVStore struct{}

var _ KVStore = EmptyKVStore{}

func (EmptyKVStore) Get(key []byte) ([]byte, error) { return nil, nil }
func (EmptyKVStore) Has(key []byte) (bool, error) { return false, nil }
func (EmptyKVStore) Set(key, value []byte) error { return nil }
func (EmptyKVStore) Delete(key []byte) error { return nil }
func (e EmptyKVStore) NewBatch() Batch { return NewNonAtomicBatch(e) }

func (EmptyKVStore) Iterator(start, end []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

func (EmptyKVStore) ReverseIterator(start, end []byte) (Iterator, error) {
	return NewSliceIterator(nil), nil
}

// Op is a recorded write, either a set or a delete.
type Op struct {
	del   bool
	key   []byte
	value []byte
}

// SetOp records setting key to value.
func SetOp(key, value []byte) Op {
	return Op{key: key, value: value}
}

// DelOp records removing key.
func DelOp(key []byte) Op {
	return Op{key: key, del: true}
}

// Apply performs the write on out.
func (o Op) Apply(out SetDeleter) error {
	if o.del {
		return out.Delete(o.key)
	}
	return out.Set(o.key, o.value)
}

// IsSetOp returns true if this operation sets a value.
func (o Op) IsSetOp() bool {
	return !o.del
}

// Key returns the key this operation touches.
func (o Op) Key() []byte {
	return o.key
}

// Value returns the value set by this operation, nil for deletes.
func (o Op) Value() []byte {
	return o.value
}

// NonAtomicBatch records writes and replays them in order on Write. A
// failure halfway leaves the first writes applied, so it must only back
// in-memory stores.
type NonAtomicBatch struct {
	out SetDeleter
	ops []Op
}

var _ Batch = (*NonAtomicBatch)(nil)

// NewNonAtomicBatch returns an empty batch writing to out.
func NewNonAtomicBatch(out SetDeleter) *NonAtomicBatch {
	return &NonAtomicBatch{out: out}
}

// Set records a set.
func (b *NonAtomicBatch) Set(key, value []byte) error {
	b.ops = append(b.ops, SetOp(key, value))
	return nil
}

// Delete records a delete.
func (b *NonAtomicBatch) Delete(key []byte) error {
	b.ops = append(b.ops, DelOp(key))
	return nil
}

// Write replays all recorded writes and empties the batch.
func (b *NonAtomicBatch) Write() error {
	for n, op := range b.ops {
		if err := op.Apply(b.out); err != nil {
			b.ops = b.ops[n:]
			return errors.Wrap(err, "batch write")
		}
	}
	b.ops = nil
	return nil
}

// ShowOps returns the recorded writes, for tests.
func (b *NonAtomicBatch) ShowOps() []Op {
	return b.ops
}
