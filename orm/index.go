package orm

import (
	"bytes"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
)

// Index entries live next to the bucket data, under a prefix that can never
// collide with a bucket name.
const indexPrefix = "_i."

// Indexer returns the secondary index value of an object. A nil value leaves
// the object out of the index.
type Indexer func(Object) ([]byte, error)

// Index maps values computed by an Indexer to the primary keys of the objects
// that produced them. A unique index stores a single primary key per value,
// otherwise a MultiRef is stored.
type Index struct {
	name   string
	prefix []byte
	unique bool
	fn     Indexer
	refKey func([]byte) []byte
}

var _ Indexed = Index{}

// NewIndex returns an index stored under the given name. refKey turns a
// primary key into the absolute key of the indexed object.
func NewIndex(name string, fn Indexer, unique bool, refKey func([]byte) []byte) Index {
	return Index{
		name:   name,
		prefix: []byte(indexPrefix + name + ":"),
		unique: unique,
		fn:     fn,
		refKey: refKey,
	}
}

// IndexKey returns the absolute key of an index value. The result never
// shares memory with the index prefix.
func (i Index) IndexKey(value []byte) []byte {
	out := make([]byte, 0, len(i.prefix)+len(value))
	out = append(out, i.prefix...)
	return append(out, value...)
}

// Update moves the primary key of an object to its current index value.
// A nil prev is an insert and a nil save a removal.
func (i Index) Update(db crowdfund.KVStore, prev Object, save Object) error {
	if prev == nil && save == nil {
		return errors.Wrap(errors.ErrHuman, "index update without object")
	}
	if prev != nil && save != nil && !bytes.Equal(prev.Key(), save.Key()) {
		return errors.Wrap(errors.ErrImmutable, "primary key cannot change")
	}

	oldVal, err := i.valueOf(prev)
	if err != nil {
		return err
	}
	newVal, err := i.valueOf(save)
	if err != nil {
		return err
	}
	if prev != nil && save != nil && bytes.Equal(oldVal, newVal) {
		return nil
	}

	if oldVal != nil {
		if err := i.remove(db, oldVal, prev.Key()); err != nil {
			return errors.Wrapf(err, "index %s", i.name)
		}
	}
	if newVal != nil {
		if err := i.insert(db, newVal, save.Key()); err != nil {
			return errors.Wrapf(err, "index %s", i.name)
		}
	}
	return nil
}

func (i Index) valueOf(obj Object) ([]byte, error) {
	if obj == nil {
		return nil, nil
	}
	return i.fn(obj)
}

// GetAt returns the primary keys stored under an index value.
func (i Index) GetAt(db crowdfund.ReadOnlyKVStore, value []byte) ([][]byte, error) {
	raw, err := db.Get(i.IndexKey(value))
	if err != nil || raw == nil {
		return nil, err
	}
	return i.decode(raw)
}

func (i Index) decode(raw []byte) ([][]byte, error) {
	if i.unique {
		return [][]byte{raw}, nil
	}
	var refs MultiRef
	if err := refs.Unmarshal(raw); err != nil {
		return nil, errors.Wrapf(errors.ErrDatabase, "index %s: %s", i.name, err)
	}
	return refs.Refs, nil
}

// Query answers index queries. Returned models are the indexed objects, not
// the index entries.
func (i Index) Query(db crowdfund.ReadOnlyKVStore, mod string, data []byte) ([]crowdfund.Model, error) {
	var refs [][]byte
	switch mod {
	case crowdfund.KeyQueryMod:
		found, err := i.GetAt(db, data)
		if err != nil {
			return nil, err
		}
		refs = found
	case crowdfund.PrefixQueryMod:
		entries, err := queryPrefix(db, i.IndexKey(data))
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			found, err := i.decode(e.Value)
			if err != nil {
				return nil, err
			}
			refs = append(refs, found...)
		}
	default:
		return nil, errors.Wrapf(errors.ErrInput, "unknown mod: %s", mod)
	}

	var res []crowdfund.Model
	for _, ref := range refs {
		key := i.refKey(ref)
		val, err := db.Get(key)
		if err != nil {
			return nil, err
		}
		if val == nil {
			return nil, errors.Wrapf(errors.ErrDatabase, "index %s references missing key %X", i.name, ref)
		}
		res = append(res, crowdfund.Pair(key, val))
	}
	return res, nil
}

func (i Index) insert(db crowdfund.KVStore, value, pk []byte) error {
	key := i.IndexKey(value)
	raw, err := db.Get(key)
	if err != nil {
		return err
	}
	if i.unique {
		if raw != nil {
			return errors.Wrap(errors.ErrDuplicate, "unique constraint violated")
		}
		return db.Set(key, pk)
	}

	var refs MultiRef
	if raw != nil {
		if err := refs.Unmarshal(raw); err != nil {
			return errors.Wrap(errors.ErrDatabase, err.Error())
		}
	}
	if err := refs.Add(pk); err != nil {
		return err
	}
	return setRefs(db, key, &refs)
}

func (i Index) remove(db crowdfund.KVStore, value, pk []byte) error {
	key := i.IndexKey(value)
	raw, err := db.Get(key)
	if err != nil {
		return err
	}
	if raw == nil {
		return errors.Wrap(errors.ErrNotFound, "no index entry")
	}
	if i.unique {
		if !bytes.Equal(raw, pk) {
			return errors.Wrap(errors.ErrNotFound, "index entry owned by another object")
		}
		return db.Delete(key)
	}

	var refs MultiRef
	if err := refs.Unmarshal(raw); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	if err := refs.Remove(pk); err != nil {
		return err
	}
	if len(refs.Refs) == 0 {
		return db.Delete(key)
	}
	return setRefs(db, key, &refs)
}

func setRefs(db crowdfund.KVStore, key []byte, refs *MultiRef) error {
	raw, err := refs.Marshal()
	if err != nil {
		return err
	}
	return db.Set(key, raw)
}
