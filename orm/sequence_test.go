package orm

import (
	"bytes"
	"testing"

	"github.com/iov-one/crowdfund/errors"
	"github.com/iov-one/crowdfund/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence(t *testing.T) {
	db := store.MemStore()
	a := NewSequence("bucket", "a")
	b := NewSequence("bucket", "b")

	latest, err := a.Latest(db)
	require.NoError(t, err)
	assert.Equal(t, int64(0), latest)

	first, err := a.NextVal(db)
	require.NoError(t, err)
	second, err := a.NextVal(db)
	require.NoError(t, err)
	assert.Equal(t, -1, bytes.Compare(first, second))

	n, err := a.NextInt(db)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// sequences do not share state
	n, err = b.NextInt(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	latest, err = a.Latest(db)
	require.NoError(t, err)
	assert.Equal(t, int64(3), latest)
}

func TestDecodeSequence(t *testing.T) {
	cases := map[string]struct {
		raw     []byte
		want    int64
		wantErr *errors.Error
	}{
		"nil is zero": {
			raw:  nil,
			want: 0,
		},
		"eight bytes": {
			raw:  EncodeSequence(513),
			want: 513,
		},
		"wrong length": {
			raw:     []byte{1, 2, 3},
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := DecodeSequence(tc.raw)
			if tc.wantErr != nil {
				require.True(t, tc.wantErr.Is(err), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
