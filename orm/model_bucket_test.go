package orm

import (
	"testing"

	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelBucket(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("refs", &MultiRef{}, WithIndex("first", firstRef, false))

	k1, err := b.Put(db, nil, refs("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, EncodeSequence(1), k1)

	k2, err := b.Put(db, nil, refs("a"))
	require.NoError(t, err)
	assert.Equal(t, EncodeSequence(2), k2)

	_, err = b.Put(db, []byte("custom"), refs("z"))
	require.NoError(t, err)

	var got MultiRef
	require.NoError(t, b.One(db, k1, &got))
	assert.Len(t, got.Refs, 2)

	keys, models, err := b.ByIndex(db, "first", []byte("a"))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{k1, k2}, keys)
	assert.Len(t, models, 2)

	require.NoError(t, b.Has(db, k2))
	require.NoError(t, b.Delete(db, k2))
	assert.True(t, errors.ErrNotFound.Is(b.Has(db, k2)))
	assert.True(t, errors.ErrNotFound.Is(b.Delete(db, k2)))
	assert.True(t, errors.ErrNotFound.Is(b.One(db, k2, &got)))
}

func TestModelBucketRejectsInvalid(t *testing.T) {
	db := store.MemStore()
	b := NewModelBucket("refs", &MultiRef{})

	_, err := b.Put(db, []byte("k"), &MultiRef{})
	assert.True(t, errors.ErrEmpty.Is(err))

	has := b.Has(db, nil)
	assert.True(t, errors.ErrNotFound.Is(has))
}

func TestMultiRef(t *testing.T) {
	m, err := NewMultiRef([]byte("c"), []byte("a"), []byte("b"))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, m.Refs)

	assert.True(t, errors.ErrDuplicate.Is(m.Add([]byte("b"))))
	require.NoError(t, m.Remove([]byte("b")))
	assert.True(t, errors.ErrNotFound.Is(m.Remove([]byte("b"))))

	bz, err := m.Marshal()
	require.NoError(t, err)
	var back MultiRef
	require.NoError(t, back.Unmarshal(bz))
	assert.Equal(t, m.Refs, back.Refs)
}
