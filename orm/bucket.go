/*
Package orm maps typed objects onto the flat key value store.

Every kind of object lives in its own Bucket, a named and prefixed section
of the store. A bucket can keep secondary indexes in sync with its content
and hand out sequences to allocate primary keys.
*/
package orm

import (
	"fmt"
	"regexp"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
)

// SeqID is the name of the sequence a bucket uses for its primary keys.
const SeqID = "id"

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// Bucket stores objects of a single type under a common prefix.
//
// Bucket is not type safe and is meant to be embedded in a wrapper that only
// accepts one concrete type.
type Bucket struct {
	name    string
	prefix  []byte
	proto   Object
	indexes map[string]Index
}

var _ crowdfund.QueryHandler = Bucket{}

// NewBucket returns a bucket storing objects like proto. It panics on an
// invalid name, as buckets are declared at initialization.
func NewBucket(name string, proto Object) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}
	return Bucket{
		name:   name,
		prefix: []byte(name + ":"),
		proto:  proto,
	}
}

// Name returns the name of this bucket.
func (b Bucket) Name() string {
	return b.name
}

// Register exposes the bucket under /name and each index under
// /name/index. An empty name defaults to the bucket name.
func (b Bucket) Register(name string, r crowdfund.QueryRouter) {
	if name == "" {
		name = b.name
	}
	path := "/" + name
	r.Register(path, b)
	for idxName, idx := range b.indexes {
		r.Register(path+"/"+idxName, idx)
	}
}

// Query loads a single key or all keys sharing a prefix.
func (b Bucket) Query(db crowdfund.ReadOnlyKVStore, mod string, data []byte) ([]crowdfund.Model, error) {
	switch mod {
	case crowdfund.KeyQueryMod:
		key := b.DBKey(data)
		value, err := db.Get(key)
		if err != nil || value == nil {
			return nil, err
		}
		return []crowdfund.Model{crowdfund.Pair(key, value)}, nil
	case crowdfund.PrefixQueryMod:
		return queryPrefix(db, b.DBKey(data))
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}
}

// DBKey returns the absolute key of an object. The result never shares
// memory with the bucket prefix.
func (b Bucket) DBKey(key []byte) []byte {
	out := make([]byte, 0, len(b.prefix)+len(key))
	out = append(out, b.prefix...)
	return append(out, key...)
}

// Get loads the object stored under key. A missing object is not an error,
// nil is returned instead.
func (b Bucket) Get(db crowdfund.ReadOnlyKVStore, key []byte) (Object, error) {
	raw, err := db.Get(b.DBKey(key))
	if err != nil || raw == nil {
		return nil, err
	}
	return b.Parse(key, raw)
}

// Parse decodes a stored value into a fresh object of the bucket type.
func (b Bucket) Parse(key, value []byte) (Object, error) {
	obj := emptyClone(b.proto)
	if err := obj.Value().Unmarshal(value); err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "bucket %s: %s", b.name, err)
	}
	obj.SetKey(key)
	return obj, nil
}

// Save validates and writes the object, updating all indexes.
func (b Bucket) Save(db crowdfund.KVStore, obj Object) error {
	if err := obj.Validate(); err != nil {
		return err
	}
	raw, err := obj.Value().Marshal()
	if err != nil {
		return err
	}
	if err := b.reindex(db, obj.Key(), obj); err != nil {
		return err
	}
	return db.Set(b.DBKey(obj.Key()), raw)
}

// Delete removes the object stored under key and its index entries.
func (b Bucket) Delete(db crowdfund.KVStore, key []byte) error {
	if err := b.reindex(db, key, nil); err != nil {
		return err
	}
	return db.Delete(b.DBKey(key))
}

// reindex brings every index from the stored state of key to obj. A nil obj
// removes the key from all indexes.
func (b Bucket) reindex(db crowdfund.KVStore, key []byte, obj Object) error {
	if len(b.indexes) == 0 {
		return nil
	}
	prev, err := b.Get(db, key)
	if err != nil {
		return err
	}
	if prev == nil && obj == nil {
		return nil
	}
	for _, idx := range b.indexes {
		if err := idx.Update(db, prev, obj); err != nil {
			return err
		}
	}
	return nil
}

// Sequence returns the named sequence of this bucket.
func (b Bucket) Sequence(name string) Sequence {
	return NewSequence(b.name, name)
}

// WithIndex returns a copy of the bucket that also maintains the given
// index. Registering the same name twice panics.
func (b Bucket) WithIndex(name string, fn Indexer, unique bool) Bucket {
	if _, ok := b.indexes[name]; ok {
		panic(fmt.Sprintf("Index %s registered twice", name))
	}
	indexes := make(map[string]Index, len(b.indexes)+1)
	for n, idx := range b.indexes {
		indexes[n] = idx
	}
	indexes[name] = NewIndex(b.name+"_"+name, fn, unique, b.DBKey)
	b.indexes = indexes
	return b
}

// GetIndexed returns all objects stored under value in the named index.
func (b Bucket) GetIndexed(db crowdfund.ReadOnlyKVStore, name string, value []byte) ([]Object, error) {
	idx, ok := b.indexes[name]
	if !ok {
		return nil, errors.Wrap(ErrInvalidIndex, name)
	}
	refs, err := idx.GetAt(db, value)
	if err != nil {
		return nil, err
	}
	objs := make([]Object, 0, len(refs))
	for _, ref := range refs {
		obj, err := b.Get(db, ref)
		if err != nil {
			return nil, err
		}
		objs = append(objs, obj)
	}
	return objs, nil
}
