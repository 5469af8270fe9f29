package orm

import (
	"reflect"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
)

// Model is an entity stored in a ModelBucket. It is CloneableData under a
// name that reads better at call sites.
type Model interface {
	crowdfund.Persistent
	Validate() error
	Copy() CloneableData
}

// ModelBucket stores models of a single type by primary key.
type ModelBucket interface {
	// One loads the model stored under key into dest. A missing entity is
	// ErrNotFound, a dest of another type is ErrType.
	One(db crowdfund.ReadOnlyKVStore, key []byte, dest Model) error

	// ByIndex returns all entities the named index holds under value,
	// together with their primary keys.
	ByIndex(db crowdfund.ReadOnlyKVStore, indexName string, value []byte) ([][]byte, []Model, error)

	// Put validates and saves m. A nil key takes the next value of the
	// bucket sequence. The key used is returned.
	Put(db crowdfund.KVStore, key []byte, m Model) ([]byte, error)

	// Delete removes the entity under key, or returns ErrNotFound.
	Delete(db crowdfund.KVStore, key []byte) error

	// Has returns ErrNotFound if nothing is stored under key.
	Has(db crowdfund.KVStore, key []byte) error

	// Register exposes the bucket and its indexes to abci queries.
	Register(name string, r crowdfund.QueryRouter)
}

// ModelBucketOption configures a ModelBucket on creation.
type ModelBucketOption func(*modelBucket)

// WithIndex adds an index maintained on every Put and Delete. A unique
// index rejects a second entity with the same value.
func WithIndex(name string, fn Indexer, unique bool) ModelBucketOption {
	return func(mb *modelBucket) {
		mb.b = mb.b.WithIndex(name, fn, unique)
	}
}

// NewModelBucket returns a bucket for models of the same type as m.
func NewModelBucket(name string, m Model, opts ...ModelBucketOption) ModelBucket {
	b := NewBucket(name, NewSimpleObj(nil, m))
	mb := &modelBucket{b: b, seq: b.Sequence(SeqID), typ: reflect.TypeOf(m)}
	for _, opt := range opts {
		opt(mb)
	}
	return mb
}

type modelBucket struct {
	b   Bucket
	seq Sequence
	typ reflect.Type
}

var _ ModelBucket = (*modelBucket)(nil)

func (mb *modelBucket) Register(name string, r crowdfund.QueryRouter) {
	mb.b.Register(name, r)
}

func (mb *modelBucket) One(db crowdfund.ReadOnlyKVStore, key []byte, dest Model) error {
	obj, err := mb.b.Get(db, key)
	switch {
	case err != nil:
		return err
	case obj == nil || obj.Value() == nil:
		return errors.Wrapf(errors.ErrNotFound, "%T %X", dest, key)
	}
	src := reflect.ValueOf(obj.Value())
	dst := reflect.ValueOf(dest)
	if !src.Type().AssignableTo(dst.Type()) {
		return errors.Wrapf(errors.ErrType, "cannot load %T into %T", obj.Value(), dest)
	}
	dst.Elem().Set(src.Elem())
	return nil
}

func (mb *modelBucket) ByIndex(db crowdfund.ReadOnlyKVStore, indexName string, value []byte) ([][]byte, []Model, error) {
	objs, err := mb.b.GetIndexed(db, indexName, value)
	if err != nil {
		return nil, nil, err
	}
	var (
		keys   = make([][]byte, 0, len(objs))
		models = make([]Model, 0, len(objs))
	)
	for _, obj := range objs {
		if obj == nil || obj.Value() == nil {
			continue
		}
		keys = append(keys, obj.Key())
		models = append(models, obj.Value())
	}
	return keys, models, nil
}

func (mb *modelBucket) Put(db crowdfund.KVStore, key []byte, m Model) ([]byte, error) {
	if t := reflect.TypeOf(m); t != mb.typ {
		return nil, errors.Wrapf(errors.ErrType, "bucket holds %v, not %v", mb.typ, t)
	}
	if err := m.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model")
	}
	if len(key) == 0 {
		next, err := mb.seq.NextVal(db)
		if err != nil {
			return nil, errors.Wrap(err, "next id")
		}
		key = next
	}
	if err := mb.b.Save(db, NewSimpleObj(key, m)); err != nil {
		return nil, errors.Wrap(err, "save")
	}
	return key, nil
}

func (mb *modelBucket) Delete(db crowdfund.KVStore, key []byte) error {
	if err := mb.Has(db, key); err != nil {
		return err
	}
	return mb.b.Delete(db, key)
}

func (mb *modelBucket) Has(db crowdfund.KVStore, key []byte) error {
	// The store panics on a nil key.
	if key == nil {
		return errors.ErrNotFound
	}
	switch ok, err := db.Has(mb.b.DBKey(key)); {
	case err != nil:
		return err
	case !ok:
		return errors.ErrNotFound
	}
	return nil
}
