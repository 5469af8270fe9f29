package server

import (
	"context"
	"testing"

	"github.com/iov-one/crowdfund"
	"github.com/iov-one/crowdfund/app"
	"github.com/iov-one/crowdfund/store/iavl"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

func newTestApp() abci.Application {
	store := app.NewStoreApp("test", iavl.NewMemCommitStore(), crowdfund.NewQueryRouter(), context.Background())
	return app.NewBaseApp(store, nil, app.NewRouter(), false)
}

func TestServe(t *testing.T) {
	a := newTestApp()
	svr, err := Serve(a, "tcp://127.0.0.1:0", log.NewNopLogger())
	require.NoError(t, err)
	require.True(t, svr.IsRunning())
	require.NoError(t, svr.Stop())
}

func TestServeInvalidAddress(t *testing.T) {
	a := newTestApp()
	_, err := Serve(a, "not-an-address", log.NewNopLogger())
	require.Error(t, err)
}
