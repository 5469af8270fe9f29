package crowdfundtest

import (
	"context"
	"testing"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuth(t *testing.T) {
	a, b := NewCondition(), NewCondition()

	auth := &Auth{Signer: a}
	assert.True(t, auth.HasAddress(context.Background(), a.Address()))
	assert.False(t, auth.HasAddress(context.Background(), b.Address()))

	ctxAuth := &CtxAuth{Key: "k"}
	ctx := ctxAuth.SetConditions(context.Background(), b)
	assert.True(t, ctxAuth.HasAddress(ctx, b.Address()))
	assert.False(t, ctxAuth.HasAddress(ctx, a.Address()))
	assert.Nil(t, (&CtxAuth{Key: "other"}).GetConditions(ctx))
}

func TestDecoratedHandler(t *testing.T) {
	db := MemStore()
	h := &Handler{WriteKey: []byte("k"), WriteValue: []byte("v")}
	d := &Decorator{}
	stack := Decorate(h, d)

	_, err := stack.Deliver(context.Background(), db, &Tx{})
	require.NoError(t, err)
	assert.Equal(t, 1, h.DeliverCallCount())
	assert.Equal(t, 1, d.DeliverCallCount())

	val, err := db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)

	d.CheckErr = errors.ErrUnauthorized
	_, err = stack.Check(context.Background(), db, &Tx{})
	assert.True(t, errors.ErrUnauthorized.Is(err))
	assert.Equal(t, 0, h.CheckCallCount())
	assert.Equal(t, 2, d.CallCount())
}

func TestCommitKVStore(t *testing.T) {
	db, cleanup := CommitKVStore(t)
	defer cleanup()

	wrap := db.CacheWrap()
	require.NoError(t, wrap.Set([]byte("a"), []byte("b")))
	require.NoError(t, wrap.Write())
	_, err := db.Commit()
	require.NoError(t, err)

	val, err := db.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), val)

	var _ crowdfund.Msg = &Msg{}
}
