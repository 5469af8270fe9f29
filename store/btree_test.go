package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeBase() (CacheableKVStore, func()) {
	return MemStore(), func() {}
}

func TestBTreeCacheSuite(t *testing.T) {
	suite := NewTestSuite(makeBase)
	t.Run("savepoints", suite.Savepoints)
	t.Run("cache conflicts", suite.CacheConflicts)
	t.Run("iteration", suite.Iteration)
}

func TestNestedDiscardKeepsParent(t *testing.T) {
	base := MemStore()
	require.NoError(t, base.Set([]byte("total"), []byte("1")))

	savepoint := base.CacheWrap()
	require.NoError(t, savepoint.Set([]byte("total"), []byte("2")))
	require.NoError(t, savepoint.Set([]byte("flag"), []byte("x")))

	inner := savepoint.CacheWrap()
	require.NoError(t, inner.Delete([]byte("flag")))
	inner.Discard()

	got, err := savepoint.Get([]byte("flag"))
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), got)

	savepoint.Discard()
	got, err = base.Get([]byte("total"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), got)
}

func TestLogableStoreRecordsOps(t *testing.T) {
	kv, ops := LogableStore()
	require.NoError(t, kv.Set([]byte("a"), []byte("1")))
	require.NoError(t, kv.Delete([]byte("b")))

	got := ops.ShowOps()
	require.Len(t, got, 2)
	assert.True(t, got[0].IsSetOp())
	assert.Equal(t, []byte("a"), got[0].Key())
	assert.False(t, got[1].IsSetOp())
}
