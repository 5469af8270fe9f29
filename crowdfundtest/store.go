package crowdfundtest

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/store"
	"github.com/iov-one/crowdfund/store/iavl"
)

// CommitKVStore returns a store instance that is using a filesystem backend
// engine to store the data.
// This implementation should be used instead of MemStore when you want the
// exact same storage implementation as the production instance is using.
func CommitKVStore(t testing.TB) (db crowdfund.CommitKVStore, cleanup func()) {
	dbpath, err := ioutil.TempDir("", "crowdfundtest")
	if err != nil {
		t.Fatalf("cannot create a temporary directory: %s", err)
	}

	s := iavl.NewCommitStore(dbpath, "db")
	return s, func() {
		s.Close()
		os.RemoveAll(dbpath)
	}
}

// MemStore returns an in memory store that supports savepoints.
func MemStore() crowdfund.CacheableKVStore {
	return store.MemStore()
}
