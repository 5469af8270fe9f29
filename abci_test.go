package crowdfund

import (
	"fmt"
	"testing"

	"github.com/iov-one/crowdfund/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/common"
)

func TestDeliverOrError(t *testing.T) {
	cases := map[string]struct {
		result   *DeliverResult
		err      error
		wantCode uint32
		wantLog  string
	}{
		"success keeps data and tags": {
			result: &DeliverResult{
				Data: []byte{1},
				Log:  "ok",
				Tags: []common.KVPair{{Key: []byte("action"), Value: []byte("contribute")}},
			},
			wantCode: 0,
			wantLog:  "ok",
		},
		"registered error is exposed": {
			err:      errors.Wrap(errors.ErrUnauthorized, "no signature"),
			wantCode: 2,
			wantLog:  "cannot deliver tx: no signature: unauthorized",
		},
		"internal error is redacted": {
			err:      fmt.Errorf("disk on fire"),
			wantCode: 1,
			wantLog:  "cannot deliver tx: internal error",
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			res := DeliverOrError(tc.result, tc.err, false)
			assert.Equal(t, tc.wantCode, res.Code)
			assert.Equal(t, tc.wantLog, res.Log)
			if tc.err == nil {
				assert.Equal(t, tc.result.Data, res.Data)
				assert.Equal(t, tc.result.Tags, res.Tags)
			}
		})
	}
}

func TestParseDeliverOrError(t *testing.T) {
	res := DeliverTxError(errors.Wrap(errors.ErrNotFound, "campaign"), false)
	_, err := ParseDeliverOrError(res)
	require.True(t, errors.ErrNotFound.Is(err))

	ok := DeliverResult{Data: []byte("id"), Log: "created"}
	parsed, err := ParseDeliverOrError(ok.ToABCI())
	require.NoError(t, err)
	assert.Equal(t, []byte("id"), parsed.Data)
}

func TestCheckOrError(t *testing.T) {
	res := CheckOrError(NewCheck(100, "fine"), nil, false)
	assert.Equal(t, uint32(0), res.Code)
	assert.Equal(t, int64(100), res.GasWanted)

	res = CheckOrError(nil, errors.ErrMsg, true)
	assert.Equal(t, uint32(4), res.Code)
	assert.Equal(t, "cannot check tx: invalid message", res.Log)
}
