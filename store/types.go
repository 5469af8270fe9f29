package store

import "github.com/iov-one/crowdfund"

// Move references for all storage types into this package
// for shorter names everywhere

type ReadOnlyKVStore = crowdfund.ReadOnlyKVStore
type SetDeleter = crowdfund.SetDeleter
type KVStore = crowdfund.KVStore
type Batch = crowdfund.Batch
type Iterator = crowdfund.Iterator
type CacheableKVStore = crowdfund.CacheableKVStore
type KVCacheWrap = crowdfund.KVCacheWrap
type CommitKVStore = crowdfund.CommitKVStore
type CommitID = crowdfund.CommitID
type Model = crowdfund.Model

// Pair constructs a model from a key-value pair
var Pair = crowdfund.Pair
