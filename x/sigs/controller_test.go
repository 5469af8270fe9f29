package sigs

import (
	"testing"

	"github.com/iov-one/crowdfund/crowdfundtest"
	"github.com/iov-one/crowdfund/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSignBytes(t *testing.T) {
	bz := []byte("transaction content")

	cases := map[string]struct {
		chainID string
		seq     int64
		wantErr *errors.Error
	}{
		"valid": {
			chainID: "crowdfund-1",
			seq:     7,
		},
		"negative sequence": {
			chainID: "crowdfund-1",
			seq:     -1,
			wantErr: ErrInvalidSequence,
		},
		"invalid chain": {
			chainID: "x",
			seq:     1,
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			res, err := BuildSignBytes(bz, tc.chainID, tc.seq)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tc.wantErr.Is(err), "%+v", err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, res, 64)

			other, err := BuildSignBytes(bz, tc.chainID, tc.seq+1)
			require.NoError(t, err)
			assert.NotEqual(t, res, other)
		})
	}
}

func TestVerifySignature(t *testing.T) {
	const chainID = "test-chain"
	db := crowdfundtest.MemStore()
	key := crowdfundtest.NewKey()
	tx := NewStdTx([]byte("foo/bar"))

	sig0, err := SignTx(key, tx, chainID, 0)
	require.NoError(t, err)
	sig1, err := SignTx(key, tx, chainID, 1)
	require.NoError(t, err)

	// Wrong chain invalidates the signature.
	_, err = VerifySignature(db, sig0, []byte("foo/bar"), "other-chain")
	assert.True(t, errors.ErrUnauthorized.Is(err), "%+v", err)

	// Sequence must be followed.
	_, err = VerifySignature(db, sig1, []byte("foo/bar"), chainID)
	assert.True(t, ErrInvalidSequence.Is(err), "%+v", err)

	cond, err := VerifySignature(db, sig0, []byte("foo/bar"), chainID)
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey().Condition(), cond)

	// Replay is rejected.
	_, err = VerifySignature(db, sig0, []byte("foo/bar"), chainID)
	assert.True(t, ErrInvalidSequence.Is(err), "%+v", err)

	cond, err = VerifySignature(db, sig1, []byte("foo/bar"), chainID)
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey().Condition(), cond)

	n, err := NextNonce(db, key.PublicKey().Address())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = NextNonce(db, crowdfundtest.NewCondition().Address())
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestVerifyTxSignatures(t *testing.T) {
	const chainID = "test-chain"
	db := crowdfundtest.MemStore()
	a, b := crowdfundtest.NewKey(), crowdfundtest.NewKey()

	tx := NewStdTx([]byte("campaign/contribute"))
	sa, err := SignTx(a, tx, chainID, 0)
	require.NoError(t, err)
	sb, err := SignTx(b, tx, chainID, 0)
	require.NoError(t, err)
	tx.Signatures = []*StdSignature{sa, sb}

	signers, err := VerifyTxSignatures(db, tx, chainID)
	require.NoError(t, err)
	require.Len(t, signers, 2)
	assert.Equal(t, a.PublicKey().Condition(), signers[0])
	assert.Equal(t, b.PublicKey().Condition(), signers[1])

	// Second run fails because the sequence moved.
	_, err = VerifyTxSignatures(db, tx, chainID)
	assert.True(t, ErrInvalidSequence.Is(err), "%+v", err)
}

func TestUserSequence(t *testing.T) {
	key := crowdfundtest.NewKey()
	user := AsUser(NewUser(key.PublicKey()))
	require.NoError(t, user.Validate())

	assert.True(t, ErrInvalidSequence.Is(user.CheckAndIncrementSequence(1)))
	require.NoError(t, user.CheckAndIncrementSequence(0))
	assert.EqualValues(t, 1, user.Sequence)

	user.Sequence = maxSequenceValue
	err := user.CheckAndIncrementSequence(maxSequenceValue)
	assert.True(t, errors.ErrOverflow.Is(err), "%+v", err)

	noKey := AsUser(NewUser(nil))
	noKey.Sequence = 3
	assert.True(t, ErrInvalidSequence.Is(noKey.Validate()))
}
