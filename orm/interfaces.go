package orm

import (
	"github.com/iov-one/crowdfund"
)

// Object is what is stored in the bucket
// Key is joined with the prefix to set the full key
// Value is the data stored
//
// this can be light wrapper around an amino encoded type
type Object interface {
	Keyed
	Cloneable
	// Validate returns error if the object is not in a valid
	// state to save to the db (eg. field missing, out of range, ...)
	Validate() error
	Value() CloneableData
}

// Reader defines an interface that allows reading objects from the db
type Reader interface {
	Get(db crowdfund.ReadOnlyKVStore, key []byte) (Object, error)
}

// Keyed is anything that can identify itself
type Keyed interface {
	Key() []byte
	SetKey([]byte)
}

// Cloneable will create a new object that can be loaded into
type Cloneable interface {
	Clone() Object
}

// CloneableData is an intelligent Value that can be embedded
// in a simple object to handle much of the details.
type CloneableData interface {
	crowdfund.Persistent
	Validate() error
	Copy() CloneableData
}

// Indexed is a secondary index maintained by a Bucket.
type Indexed interface {
	crowdfund.QueryHandler
	Update(db crowdfund.KVStore, prev Object, save Object) error
	GetAt(db crowdfund.ReadOnlyKVStore, value []byte) ([][]byte, error)
}
